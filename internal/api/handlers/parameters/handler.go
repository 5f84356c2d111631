package parameters

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	parametersService "github.com/m04kA/SMC-AppointmentService/internal/service/parameters"
	"github.com/m04kA/SMC-AppointmentService/internal/service/parameters/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
)

// Handler параметры бизнеса
type Handler struct {
	service ParametersService
	logger  Logger
}

func NewHandler(service ParametersService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Get GET /api/v1/parameters
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("GET /parameters - Failed to get parameters: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PUT /api/v1/parameters
// Частичное обновление: отсутствующие поля не меняются
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateParametersRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /parameters - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), caller, &req)
	if err != nil {
		switch {
		case errors.Is(err, parametersService.ErrAccessDenied):
			h.logger.Warn("PUT /parameters - Access denied: user_id=%d", caller.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, parametersService.ErrInvalidInput):
			h.logger.Warn("PUT /parameters - Invalid input: %v", err)
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, parametersService.ErrInvalidInput))

		default:
			h.logger.Error("PUT /parameters - Failed to update parameters: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /parameters - Parameters updated by user_id=%d", caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
