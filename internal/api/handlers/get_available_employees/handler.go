package get_available_employees

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailableEmployees "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_employees"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime      = "некорректный формат времени, ожидается HH:MM"
	msgInvalidInput     = "некорректные параметры запроса"
	msgServiceNotFound  = "услуга не найдена"
	msgServiceInactive  = "услуга недоступна для записи"
)

type Handler struct {
	useCase GetAvailableEmployeesUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableEmployeesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/available-employees?serviceId=2&date=2024-06-04&time=10:00
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	useCaseReq, err := ToUseCaseRequest(query.Get("serviceId"), query.Get("date"), query.Get("time"))
	if err != nil {
		h.logger.Warn("GET /users/available-employees - Invalid parameters: %v", err)
		switch {
		case errors.Is(err, errInvalidServiceID):
			handlers.RespondBadRequest(w, msgInvalidServiceID)
		case errors.Is(err, errInvalidTime):
			handlers.RespondBadRequest(w, msgInvalidTime)
		default:
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableEmployees.ErrServiceNotFound):
			h.logger.Warn("GET /users/available-employees - Service not found: service_id=%d", useCaseReq.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableEmployees.ErrServiceInactive):
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, getAvailableEmployees.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, getAvailableEmployees.ErrInvalidInput))

		default:
			h.logger.Error("GET /users/available-employees - Failed to find employees: service_id=%d, error=%v",
				useCaseReq.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/available-employees - service_id=%d, date=%s, time=%s, available=%d",
		useCaseReq.ServiceID, query.Get("date"), useCaseReq.StartTime, len(result.EmployeeIDs))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
