package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	err := validate.First(
		validate.ID("employeeId", req.EmployeeID),
		validate.ID("serviceId", req.ServiceID),
		validate.OptionalMaxLength("message", req.Message, domain.MaxMessageLength),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.ParentBookingID != nil {
		if err := validate.ID("parentBookingId", *req.ParentBookingID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	if req.Client != nil {
		if err := validateClient(req.Client); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return nil
}

// validateClient проверяет данные клиента для создания учётной записи
func validateClient(c *domain.ClientProfile) error {
	return validate.First(
		validate.Required("firstName", c.FirstName, domain.MaxNameLength),
		validate.Required("lastName", c.LastName, domain.MaxNameLength),
		validate.Email("email", c.Email),
		validate.Phone("phoneNumber", c.PhoneNumber),
		validate.PostalCode("postalCode", c.PostalCode),
	)
}

// validateDate проверяет, что дата не в прошлом и не дальше maxBookingDelayDays
func validateDate(bookingDate time.Time, now time.Time, maxBookingDelayDays int) error {
	today := domain.DateOnly(now)
	date := domain.DateOnly(bookingDate)

	if date.Before(today) {
		return ErrInvalidDate
	}

	// 0 = без ограничения
	if maxBookingDelayDays == 0 {
		return nil
	}

	if date.After(today.AddDate(0, 0, maxBookingDelayDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxBookingDelayDays)
	}

	return nil
}

// validateBookingTime проверяет, что до начала не меньше minBookingDelayHours
// Дата и время трактуются в часовом поясе бизнеса (now.Location())
func validateBookingTime(bookingDate time.Time, startTime types.TimeString, now time.Time, minBookingDelayHours int) error {
	minutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	y, m, d := bookingDate.Date()
	startsAt := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Add(time.Duration(minutes) * time.Minute)
	earliest := now.Add(time.Duration(minBookingDelayHours) * time.Hour)

	if startsAt.Before(earliest) {
		return fmt.Errorf("%w: must book at least %d hours in advance", ErrTooLateToBook, minBookingDelayHours)
	}

	return nil
}

// validateParent проверяет, что дочернее бронирование можно привязать к родителю:
// тот же сотрудник, та же дата, родитель не в конечном статусе
func validateParent(parent *domain.Booking, req *Request) error {
	if parent.Status.IsTerminal() {
		return fmt.Errorf("%w: parent booking id=%d is %s", ErrInvalidParentBooking, parent.ID, parent.Status)
	}
	if parent.EmployeeID != req.EmployeeID {
		return fmt.Errorf("%w: parent booking belongs to another employee", ErrInvalidParentBooking)
	}
	if !domain.SameDate(parent.BookingDate, req.Date) {
		return fmt.Errorf("%w: parent booking is on another date", ErrInvalidParentBooking)
	}
	return nil
}
