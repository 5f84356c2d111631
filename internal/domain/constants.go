package domain

// Параметры бронирования по умолчанию
const (
	DefaultMinBookingDelayHours = 1
	DefaultMaxBookingDelayDays  = 30
	DefaultReminderMinutes      = 15
	DefaultBusinessName         = "SMC"
)

// Ограничения бизнес-валидации
const (
	MaxMessageLength          = 255
	MaxNameLength             = 100
	MaxDescriptionLength      = 1000
	MaxReasonLength           = 500
	MaxServiceDurationMinutes = 12 * 60
	MaxMinBookingDelayHours   = 24 * 7
	MaxMaxBookingDelayDays    = 365
	MaxReminderMinutes        = 24 * 60
	RandomPasswordLength      = 12
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
