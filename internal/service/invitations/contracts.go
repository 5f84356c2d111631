package invitations

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// InvitationRepository интерфейс репозитория приглашений
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	GetByID(ctx context.Context, id int64) (*domain.Invitation, error)
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	List(ctx context.Context, filter domain.InvitationsFilter) ([]*domain.Invitation, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.InvitationStatus) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	SetRoles(ctx context.Context, id int64, roles domain.RoleSet) error
}

// CatalogRepository интерфейс репозитория услуг
type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	AssignEmployee(ctx context.Context, employeeID int64, serviceIDs []int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
