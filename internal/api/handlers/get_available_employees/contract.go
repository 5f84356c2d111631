package get_available_employees

import (
	"context"

	getAvailableEmployees "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_employees"
)

type GetAvailableEmployeesUseCase interface {
	Execute(ctx context.Context, req *getAvailableEmployees.Request) (*getAvailableEmployees.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
