package change_booking_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidAction      = "неизвестное действие, ожидается confirm, cancel или complete"
	msgNotFound           = "бронирование не найдено"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgInvalidTransition  = "недопустимая смена статуса бронирования"
	msgConcurrentConflict = "бронирование изменено другим запросом, обновите данные"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/{action}
// action: confirm, cancel, complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/{action} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	action := models.Action(mux.Vars(r)["action"])
	if _, err := action.Target(); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/{action} - %v", err)
		handlers.RespondBadRequest(w, msgInvalidAction)
		return
	}

	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/%s - Missing user ID", action)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), caller, &models.ChangeStatusRequest{
		BookingID: bookingID,
		Action:    action,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/%s - Booking not found: booking_id=%d", action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/%s - Access denied: booking_id=%d, user_id=%d",
				action, bookingID, caller.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/%s - Invalid transition: %v", action, err)
			handlers.RespondConflict(w, handlers.DetailMessage(msgInvalidTransition, err, bookings.ErrInvalidTransition))

		case errors.Is(err, bookings.ErrConcurrentBookingConflict):
			h.logger.Warn("PATCH /bookings/{id}/%s - Concurrent update: booking_id=%d", action, bookingID)
			handlers.RespondConflict(w, msgConcurrentConflict)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAction)

		default:
			h.logger.Error("PATCH /bookings/{id}/%s - Failed to change status: booking_id=%d, error=%v",
				action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/%s - Status changed: booking_id=%d, status=%s, user_id=%d",
		action, bookingID, booking.Status, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
