package working_hours

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

type ScheduleService interface {
	ListWorkingHours(ctx context.Context, employeeID int64) (*models.WorkingHourListResponse, error)
	CreateWorkingHour(ctx context.Context, caller domain.Principal, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error)
	UpdateWorkingHour(ctx context.Context, caller domain.Principal, id int64, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error)
	DeleteWorkingHour(ctx context.Context, caller domain.Principal, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
