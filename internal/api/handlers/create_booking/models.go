package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	EmployeeID      int64          `json:"employeeId"`
	ServiceID       int64          `json:"serviceId"`
	BookingDate     string         `json:"bookingDate"` // "2024-06-04"
	StartTime       string         `json:"startTime"`   // "10:00"
	ParentBookingID *int64         `json:"parentBookingId,omitempty"`
	Message         *string        `json:"message,omitempty"`
	Client          *ClientRequest `json:"client,omitempty"`
}

// ClientRequest данные клиента для записи без авторизации или от имени клиента
type ClientRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	EmployeeID      int64   `json:"employeeId"`
	ClientID        int64   `json:"clientId"`
	ServiceID       int64   `json:"serviceId"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ParentBookingID *int64  `json:"parentBookingId,omitempty"`
	Message         *string `json:"message,omitempty"`
	ClientCreated   bool    `json:"clientCreated"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

var (
	errInvalidDate = errors.New("invalid bookingDate")
	errInvalidTime = errors.New("invalid startTime")
)

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(caller *domain.Principal) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	req := &createBooking.Request{
		Caller:          caller,
		EmployeeID:      r.EmployeeID,
		ServiceID:       r.ServiceID,
		Date:            bookingDate,
		StartTime:       startTime,
		ParentBookingID: r.ParentBookingID,
		Message:         r.Message,
	}
	if r.Client != nil {
		req.Client = &domain.ClientProfile{
			FirstName:   r.Client.FirstName,
			LastName:    r.Client.LastName,
			Email:       r.Client.Email,
			PhoneNumber: r.Client.PhoneNumber,
			PostalCode:  r.Client.PostalCode,
		}
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		EmployeeID:      resp.EmployeeID,
		ClientID:        resp.ClientID,
		ServiceID:       resp.ServiceID,
		BookingDate:     resp.BookingDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ParentBookingID: resp.ParentBookingID,
		Message:         resp.Message,
		ClientCreated:   resp.ClientCreated,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
