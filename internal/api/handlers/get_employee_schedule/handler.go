package get_employee_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidEmployeeID = "некорректный ID сотрудника"
	msgInvalidInput      = "некорректные параметры запроса"
	msgEmployeeNotFound  = "сотрудник не найден"
)

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

// Handle GET /api/v1/employees/{employeeId}/schedule?date=2024-06-04
// Итоговые рабочие интервалы сотрудника с учётом отсутствий и исключений
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.PathInt64(r, "employeeId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	date := r.URL.Query().Get("date")

	result, err := h.service.GetDaySchedule(r.Context(), employeeID, date)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /employees/{id}/schedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, handlers.DetailMessage(msgInvalidInput, err, schedule.ErrInvalidInput))

		case errors.Is(err, schedule.ErrEmployeeNotFound):
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		default:
			h.logger.Error("GET /employees/{id}/schedule - Failed: employee_id=%d, error=%v", employeeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /employees/{id}/schedule - employee_id=%d, date=%s, source=%s, minutes=%d",
		employeeID, result.Date, result.Source, result.TotalMinutes)
	handlers.RespondJSON(w, http.StatusOK, result)
}
