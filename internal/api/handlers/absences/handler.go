package absences

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidAbsenceID   = "некорректный ID отсутствия"
	msgInvalidEmployeeID  = "некорректный ID сотрудника"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректный период отсутствия"
	msgNotFound           = "отсутствие не найдено"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
)

// Handler периоды отсутствия сотрудников
type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/absences?employeeId=3
// Без employeeId сотрудник получает свои отсутствия
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}
	target := caller.UserID
	if employeeID != nil {
		target = *employeeID
	}

	result, err := h.service.ListAbsences(r.Context(), caller, target)
	if err != nil {
		h.respondError(w, "GET /absences", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/absences
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.AbsenceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /absences - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateAbsence(r.Context(), caller, &req)
	if err != nil {
		h.respondError(w, "POST /absences", err)
		return
	}

	h.logger.Info("POST /absences - Absence created: absence_id=%d, employee_id=%d, %s..%s",
		result.ID, result.EmployeeID, result.StartDate, result.EndDate)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update PUT /api/v1/absences/{absenceId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	var req models.AbsenceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /absences/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateAbsence(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, "PUT /absences/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/absences/{absenceId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAbsence(r.Context(), caller, id); err != nil {
		h.respondError(w, "DELETE /absences/{id}", err)
		return
	}

	h.logger.Info("DELETE /absences/{id} - Absence deleted: absence_id=%d, user_id=%d", id, caller.UserID)
	handlers.RespondNoContent(w)
}

func callerAndID(w http.ResponseWriter, r *http.Request) (domain.Principal, int64, bool) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return domain.Principal{}, 0, false
	}
	id, err := handlers.PathInt64(r, "absenceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAbsenceID)
		return domain.Principal{}, 0, false
	}
	return caller, id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrAbsenceNotFound):
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, schedule.ErrEmployeeNotFound):
		h.logger.Warn("%s - Employee not found: %v", op, err)
		handlers.RespondNotFound(w, msgEmployeeNotFound)

	case errors.Is(err, schedule.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", op)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, schedule.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, schedule.ErrInvalidInput))

	default:
		h.logger.Error("%s - Failed: %v", op, err)
		handlers.RespondInternalError(w)
	}
}
