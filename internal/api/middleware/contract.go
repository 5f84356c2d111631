package middleware

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UserLoader загружает пользователя для аутентификации
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// HTTPRecorder метрики HTTP запросов
type HTTPRecorder interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
