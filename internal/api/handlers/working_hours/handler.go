package working_hours

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
	msgInvalidRuleID      = "некорректный ID правила"
	msgInvalidEmployeeID  = "некорректный ID сотрудника"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные рабочие часы"
	msgNotFound           = "правило рабочих часов не найдено"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
)

// Handler рабочие часы сотрудников
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

// List GET /api/v1/working-hours?employeeId=3
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil || employeeID == nil {
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	result, err := h.service.ListWorkingHours(r.Context(), *employeeID)
	if err != nil {
		h.respondError(w, "GET /working-hours", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/working-hours
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.WorkingHourRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /working-hours - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateWorkingHour(r.Context(), caller, &req)
	if err != nil {
		h.respondError(w, "POST /working-hours", err)
		return
	}

	h.logger.Info("POST /working-hours - Rule created: rule_id=%d, employee_id=%d", result.ID, result.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update PUT /api/v1/working-hours/{ruleId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	var req models.WorkingHourRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /working-hours/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateWorkingHour(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, "PUT /working-hours/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/working-hours/{ruleId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteWorkingHour(r.Context(), caller, id); err != nil {
		h.respondError(w, "DELETE /working-hours/{id}", err)
		return
	}

	h.logger.Info("DELETE /working-hours/{id} - Rule deleted: rule_id=%d, user_id=%d", id, caller.UserID)
	handlers.RespondNoContent(w)
}

func callerAndID(w http.ResponseWriter, r *http.Request) (domain.Principal, int64, bool) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return domain.Principal{}, 0, false
	}
	id, err := handlers.PathInt64(r, "ruleId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return domain.Principal{}, 0, false
	}
	return caller, id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrRuleNotFound):
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
