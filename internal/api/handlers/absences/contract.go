package absences

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

type ScheduleService interface {
	ListAbsences(ctx context.Context, caller domain.Principal, employeeID int64) (*models.AbsenceListResponse, error)
	CreateAbsence(ctx context.Context, caller domain.Principal, req *models.AbsenceRequest) (*models.AbsenceResponse, error)
	UpdateAbsence(ctx context.Context, caller domain.Principal, id int64, req *models.AbsenceRequest) (*models.AbsenceResponse, error)
	DeleteAbsence(ctx context.Context, caller domain.Principal, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
