package get_available_employees

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	// GetByID возвращает услугу вместе с сотрудниками, которые её оказывают
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// SlotEvaluator проверка слота для одного сотрудника
type SlotEvaluator interface {
	Evaluate(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
