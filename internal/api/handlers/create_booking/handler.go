package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidInput       = "некорректные данные бронирования"
	msgSlotOccupied       = "выбранное время уже занято"
	msgOutsideHours       = "выбранное время вне рабочего времени сотрудника"
	msgConcurrentConflict = "слот изменился во время записи, повторите запрос"
	msgDuplicateEmail     = "пользователь с таким email уже существует, войдите в аккаунт"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна для записи"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgEmployeeNotCapable = "сотрудник не оказывает эту услугу"
	msgParentNotFound     = "родительское бронирование не найдено"
	msgInvalidParent      = "нельзя привязать бронирование к выбранному родительскому"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgForbidden          = "нельзя записывать других клиентов"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Авторизация опциональна: без X-User-ID клиент создаётся по данным из тела запроса
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var caller *domain.Principal
	if p, ok := middleware.GetPrincipal(r.Context()); ok {
		caller = &p
	}

	useCaseReq, err := req.ToUseCaseRequest(caller)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrOccupied):
			h.logger.Warn("POST /bookings - Slot occupied: employee_id=%d, date=%s, time=%s",
				req.EmployeeID, req.BookingDate, req.StartTime)
			handlers.RespondConflict(w, msgSlotOccupied)

		case errors.Is(err, availability.ErrOutsideWorkingHours):
			h.logger.Warn("POST /bookings - Outside working hours: employee_id=%d, date=%s, time=%s",
				req.EmployeeID, req.BookingDate, req.StartTime)
			handlers.RespondConflict(w, msgOutsideHours)

		case errors.Is(err, createBooking.ErrConcurrentBookingConflict):
			h.logger.Warn("POST /bookings - Concurrent conflict: employee_id=%d", req.EmployeeID)
			handlers.RespondConflict(w, msgConcurrentConflict)

		case errors.Is(err, createBooking.ErrDuplicateEmail):
			h.logger.Warn("POST /bookings - Duplicate email")
			handlers.RespondConflict(w, msgDuplicateEmail)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrEmployeeNotFound):
			h.logger.Warn("POST /bookings - Employee not found: employee_id=%d", req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createBooking.ErrParentBookingNotFound):
			h.logger.Warn("POST /bookings - Parent booking not found: parent_id=%v", req.ParentBookingID)
			handlers.RespondNotFound(w, msgParentNotFound)

		case errors.Is(err, createBooking.ErrServiceInactive):
			h.logger.Warn("POST /bookings - Service inactive: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createBooking.ErrEmployeeNotCapable):
			h.logger.Warn("POST /bookings - Employee not capable: employee_id=%d, service_id=%d",
				req.EmployeeID, req.ServiceID)
			handlers.RespondBadRequest(w, msgEmployeeNotCapable)

		case errors.Is(err, createBooking.ErrInvalidParentBooking):
			h.logger.Warn("POST /bookings - Invalid parent booking: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParent)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgDateTooFar, err, createBooking.ErrDateTooFarInFuture))

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgTooLateToBook, err, createBooking.ErrTooLateToBook))

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, createBooking.ErrInvalidInput))

		case errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings - Access denied: %v", err)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: employee_id=%d, service_id=%d, error=%v",
				req.EmployeeID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, client_id=%d, employee_id=%d",
		result.ID, result.ClientID, result.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
