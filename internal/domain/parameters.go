package domain

import "time"

// Parameters настройки бизнеса, единственная запись
type Parameters struct {
	ID           int64
	BusinessName string
	Description  *string
	Logo         *string
	ContactEmail *string
	ContactPhone *string
	Address      *string

	EmailNotifications bool
	SMSNotifications   bool
	ReminderMinutes    int

	MinBookingDelayHours int // за сколько часов минимум можно записаться
	MaxBookingDelayDays  int // 0 = без ограничения

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultParameters параметры, если запись в БД ещё не создана
func DefaultParameters() *Parameters {
	return &Parameters{
		BusinessName:         DefaultBusinessName,
		EmailNotifications:   true,
		ReminderMinutes:      DefaultReminderMinutes,
		MinBookingDelayHours: DefaultMinBookingDelayHours,
		MaxBookingDelayDays:  DefaultMaxBookingDelayDays,
	}
}

// HasMaxBookingDelay есть ли ограничение на запись заранее
func (p *Parameters) HasMaxBookingDelay() bool {
	return p.MaxBookingDelayDays > 0
}
