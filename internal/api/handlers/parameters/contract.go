package parameters

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/parameters/models"
)

type ParametersService interface {
	Get(ctx context.Context) (*models.ParametersResponse, error)
	Update(ctx context.Context, caller domain.Principal, req *models.UpdateParametersRequest) (*models.ParametersResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
