package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// RuleRepository интерфейс репозитория рабочих часов
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.WorkingHourRule) (*domain.WorkingHourRule, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkingHourRule, error)
	Update(ctx context.Context, rule *domain.WorkingHourRule) (*domain.WorkingHourRule, error)
	Delete(ctx context.Context, id int64) error
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.WorkingHourRule, error)
}

// AbsenceRepository интерфейс репозитория отсутствий
type AbsenceRepository interface {
	Create(ctx context.Context, a *domain.Absence) (*domain.Absence, error)
	GetByID(ctx context.Context, id int64) (*domain.Absence, error)
	Update(ctx context.Context, a *domain.Absence) (*domain.Absence, error)
	Delete(ctx context.Context, id int64) error
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Absence, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ScheduleResolver рассчитывает рабочее время сотрудника на дату
type ScheduleResolver interface {
	ResolveSchedule(ctx context.Context, employeeID int64, date time.Time) (availability.Resolution, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
