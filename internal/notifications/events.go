package notifications

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Типы событий бронирования
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent сообщение о бронировании для внешних потребителей
type BookingEvent struct {
	EventID         string    `json:"eventId"`
	EventType       string    `json:"eventType"`
	BookingID       int64     `json:"bookingId"`
	EmployeeID      int64     `json:"employeeId"`
	ClientID        int64     `json:"clientId"`
	ServiceID       int64     `json:"serviceId"`
	ParentBookingID *int64    `json:"parentBookingId,omitempty"`
	Date            string    `json:"date"` // "2024-06-04"
	Time            string    `json:"time"` // "10:00"
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previousStatus,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func newBookingEvent(id, eventType string, b *domain.Booking, previous domain.BookingStatus, at time.Time) BookingEvent {
	return BookingEvent{
		EventID:         id,
		EventType:       eventType,
		BookingID:       b.ID,
		EmployeeID:      b.EmployeeID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		ParentBookingID: b.ParentBookingID,
		Date:            b.BookingDate.Format(domain.DateFormat),
		Time:            b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		PreviousStatus:  string(previous),
		OccurredAt:      at.UTC(),
	}
}
