package parameters

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ParametersRepository интерфейс репозитория параметров бизнеса
type ParametersRepository interface {
	Get(ctx context.Context) (*domain.Parameters, error)
	Upsert(ctx context.Context, p *domain.Parameters) (*domain.Parameters, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
