package services

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

const (
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные услуги"
	msgNotFound           = "услуга не найдена"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgInUse              = "нельзя удалить услугу, на которую есть бронирования"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
)

// Handler CRUD услуг
type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/services?includeInactive=true
// Неактивные услуги видит только администратор
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	result, err := h.service.List(r.Context(), optionalCaller(r), includeInactive)
	if err != nil {
		h.respondError(w, "GET /services", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/v1/services/{serviceId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	result, err := h.service.GetByID(r.Context(), optionalCaller(r), id)
	if err != nil {
		h.respondError(w, "GET /services/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/services
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.respondError(w, "POST /services", err)
		return
	}

	h.logger.Info("POST /services - Service created: service_id=%d, user_id=%d", result.ID, caller.UserID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update PUT /api/v1/services/{serviceId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req models.ServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /services/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, "PUT /services/{id}", err)
		return
	}

	h.logger.Info("PUT /services/{id} - Service updated: service_id=%d, user_id=%d", id, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Toggle PATCH /api/v1/services/{serviceId}/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ToggleActive(r.Context(), caller, id)
	if err != nil {
		h.respondError(w, "PATCH /services/{id}/toggle", err)
		return
	}

	h.logger.Info("PATCH /services/{id}/toggle - service_id=%d, is_active=%t", id, result.IsActive)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/services/{serviceId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondError(w, "DELETE /services/{id}", err)
		return
	}

	h.logger.Info("DELETE /services/{id} - Service deleted: service_id=%d, user_id=%d", id, caller.UserID)
	handlers.RespondNoContent(w)
}

// SetEmployees PUT /api/v1/services/{serviceId}/employees
// Полностью заменяет список сотрудников услуги
func (h *Handler) SetEmployees(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req SetEmployeesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /services/{id}/employees - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.SetEmployees(r.Context(), caller, id, req.EmployeeIDs)
	if err != nil {
		h.respondError(w, "PUT /services/{id}/employees", err)
		return
	}

	h.logger.Info("PUT /services/{id}/employees - service_id=%d, employees=%v", id, result.EmployeeIDs)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) callerAndID(w http.ResponseWriter, r *http.Request) (domain.Principal, int64, bool) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return domain.Principal{}, 0, false
	}
	id, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return domain.Principal{}, 0, false
	}
	return caller, id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound):
		h.logger.Warn("%s - Service not found: %v", op, err)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, catalog.ErrEmployeeNotFound):
		h.logger.Warn("%s - Employee not found: %v", op, err)
		handlers.RespondNotFound(w, msgEmployeeNotFound)

	case errors.Is(err, catalog.ErrServiceInUse):
		h.logger.Warn("%s - Service in use: %v", op, err)
		handlers.RespondConflict(w, msgInUse)

	case errors.Is(err, catalog.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", op)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, catalog.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, catalog.ErrInvalidInput))

	default:
		h.logger.Error("%s - Failed: %v", op, err)
		handlers.RespondInternalError(w)
	}
}

func optionalCaller(r *http.Request) *domain.Principal {
	if p, ok := middleware.GetPrincipal(r.Context()); ok {
		return &p
	}
	return nil
}
