package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// LockEmployee внутри транзакции блокирует строку сотрудника (FOR UPDATE)
	LockEmployee(ctx context.Context, id int64) (*domain.User, error)
}

// ParametersRepository интерфейс репозитория параметров бизнеса
type ParametersRepository interface {
	Get(ctx context.Context) (*domain.Parameters, error)
}

// SlotEvaluator проверка слота сотрудника, внутри транзакции читает бронирования с блокировкой
type SlotEvaluator interface {
	Evaluate(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, error)
}

// EventPublisher публикация событий о бронированиях
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error
}

// ConflictObserver считает отказы по конфликтам (метрики)
type ConflictObserver interface {
	IncBookingConflict(reason string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
