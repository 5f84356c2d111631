package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ErrInvalidBookingStatus неизвестный статус бронирования
var ErrInvalidBookingStatus = errors.New("invalid booking status")

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// allowedTransitions допустимые переходы между статусами
// Из cancelled и completed выйти нельзя
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// ParseBookingStatus разбирает статус из строки
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch status := BookingStatus(s); status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBookingStatus, s)
	}
}

// CanTransitionTo проверяет, разрешён ли переход в next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal true для cancelled и completed
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking бронирование услуги у сотрудника
type Booking struct {
	ID              int64
	EmployeeID      int64
	ClientID        int64
	ServiceID       int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int // копируется из услуги при создании
	Status          BookingStatus
	ParentBookingID *int64 // связь с родительским бронированием группы
	Message         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive отменённые бронирования не занимают время сотрудника
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// EndTime время окончания бронирования
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// IsChild true, если бронирование входит в группу родителя
func (b *Booking) IsChild() bool {
	return b.ParentBookingID != nil
}

// ActiveStatuses статусы, занимающие время сотрудника
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// BookingsFilter параметры выборки бронирований
// Передаётся по значению и не меняется после построения
type BookingsFilter struct {
	EmployeeID *int64
	ClientID   *int64
	ServiceID  *int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Status     *BookingStatus
	Limit      uint64 // 0 = без ограничения
}
