package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidAction возвращается при неизвестном действии над бронированием
	ErrInvalidAction = errors.New("invalid booking action")
)

// Action действие над бронированием
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// Target статус, в который переводит действие
func (a Action) Target() (domain.BookingStatus, error) {
	switch a {
	case ActionConfirm:
		return domain.StatusConfirmed, nil
	case ActionCancel:
		return domain.StatusCancelled, nil
	case ActionComplete:
		return domain.StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, string(a))
	}
}

// Request модели

// ListBookingsRequest фильтры списка бронирований, все поля опциональны
type ListBookingsRequest struct {
	EmployeeID *int64
	ClientID   *int64
	ServiceID  *int64
	DateFrom   *string // "2024-06-03"
	DateTo     *string
	Status     *string
}

// ChangeStatusRequest запрос на смену статуса
type ChangeStatusRequest struct {
	BookingID int64
	Action    Action
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	EmployeeID      int64   `json:"employeeId"`
	ClientID        int64   `json:"clientId"`
	ServiceID       int64   `json:"serviceId"`
	BookingDate     string  `json:"bookingDate"` // "2024-06-03"
	StartTime       string  `json:"startTime"`   // "10:00"
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ParentBookingID *int64  `json:"parentBookingId,omitempty"`
	Message         *string `json:"message,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		ParentBookingID: b.ParentBookingID,
		Message:         b.Message,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if end, err := b.EndTime(); err == nil {
		resp.EndTime = end.String()
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
