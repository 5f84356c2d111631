package services

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

type CatalogService interface {
	List(ctx context.Context, caller *domain.Principal, includeInactive bool) (*models.ServiceListResponse, error)
	GetByID(ctx context.Context, caller *domain.Principal, id int64) (*models.ServiceResponse, error)
	Create(ctx context.Context, caller domain.Principal, req *models.ServiceRequest) (*models.ServiceResponse, error)
	Update(ctx context.Context, caller domain.Principal, id int64, req *models.ServiceRequest) (*models.ServiceResponse, error)
	ToggleActive(ctx context.Context, caller domain.Principal, id int64) (*models.ToggleResponse, error)
	Delete(ctx context.Context, caller domain.Principal, id int64) error
	SetEmployees(ctx context.Context, caller domain.Principal, id int64, ids []int64) (*models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
