package invitations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	invitationsService "github.com/m04kA/SMC-AppointmentService/internal/service/invitations"
	"github.com/m04kA/SMC-AppointmentService/internal/service/invitations/models"
)

const (
	msgInvalidInvitationID = "некорректный ID приглашения"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidInput        = "некорректные данные приглашения"
	msgNotFound            = "приглашение не найдено"
	msgServiceNotFound     = "услуга не найдена"
	msgExists              = "приглашение на этот email уже существует"
	msgNotPending          = "приглашение уже обработано"
	msgAlreadyMember       = "у пользователя уже есть эта роль"
	msgEmailTaken          = "email уже занят"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
)

// Handler приглашения персонала
type Handler struct {
	service InvitationService
	logger  Logger
}

func NewHandler(service InvitationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/invitations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /invitations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.respondError(w, "POST /invitations", err)
		return
	}

	h.logger.Info("POST /invitations - Invitation created: invitation_id=%d, user_id=%d", result.ID, caller.UserID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// List GET /api/v1/invitations?email=&status=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := models.ListQuery{
		Email:  handlers.QueryString(r, "email"),
		Status: handlers.QueryString(r, "status"),
	}

	result, err := h.service.List(r.Context(), caller, query)
	if err != nil {
		h.respondError(w, "GET /invitations", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/v1/invitations/{invitationId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetByID(r.Context(), caller, id)
	if err != nil {
		h.respondError(w, "GET /invitations/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// UpdateStatus PUT /api/v1/invitations/{invitationId}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /invitations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, "PUT /invitations/{id}", err)
		return
	}

	h.logger.Info("PUT /invitations/{id} - invitation_id=%d, status=%s", id, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/invitations/{invitationId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondError(w, "DELETE /invitations/{id}", err)
		return
	}

	h.logger.Info("DELETE /invitations/{id} - Invitation deleted: invitation_id=%d, user_id=%d", id, caller.UserID)
	handlers.RespondNoContent(w)
}

// Accept POST /api/v1/invitations/accept
// Доступно без авторизации, доступ даёт токен
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var req models.AcceptRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /invitations/accept - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Accept(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /invitations/accept", err)
		return
	}

	h.logger.Info("POST /invitations/accept - invitation_id=%d, user_id=%d, created=%t", result.InvitationID, result.UserID, result.UserCreated)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Decline POST /api/v1/invitations/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	var req models.DeclineRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /invitations/decline - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.Decline(r.Context(), &req); err != nil {
		h.respondError(w, "POST /invitations/decline", err)
		return
	}

	handlers.RespondNoContent(w)
}

func (h *Handler) callerAndID(w http.ResponseWriter, r *http.Request) (domain.Principal, int64, bool) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return domain.Principal{}, 0, false
	}
	id, err := handlers.PathInt64(r, "invitationId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidInvitationID)
		return domain.Principal{}, 0, false
	}
	return caller, id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, invitationsService.ErrInvitationNotFound):
		h.logger.Warn("%s - Invitation not found: %v", op, err)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, invitationsService.ErrServiceNotFound):
		h.logger.Warn("%s - Service not found: %v", op, err)
		handlers.RespondNotFound(w, msgServiceNotFound)

	case errors.Is(err, invitationsService.ErrInvitationExists):
		h.logger.Warn("%s - Invitation exists: %v", op, err)
		handlers.RespondConflict(w, msgExists)

	case errors.Is(err, invitationsService.ErrInvitationNotPending):
		h.logger.Warn("%s - Invitation not pending: %v", op, err)
		handlers.RespondConflict(w, msgNotPending)

	case errors.Is(err, invitationsService.ErrAlreadyMember):
		h.logger.Warn("%s - Already member: %v", op, err)
		handlers.RespondConflict(w, msgAlreadyMember)

	case errors.Is(err, invitationsService.ErrEmailTaken):
		h.logger.Warn("%s - Email taken: %v", op, err)
		handlers.RespondConflict(w, msgEmailTaken)

	case errors.Is(err, invitationsService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", op)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, invitationsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, invitationsService.ErrInvalidInput))

	default:
		h.logger.Error("%s - Failed: %v", op, err)
		handlers.RespondInternalError(w)
	}
}
