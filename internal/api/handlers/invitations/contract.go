package invitations

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/invitations/models"
)

type InvitationService interface {
	Create(ctx context.Context, caller domain.Principal, req *models.CreateRequest) (*models.InvitationResponse, error)
	List(ctx context.Context, caller domain.Principal, query models.ListQuery) (*models.InvitationListResponse, error)
	GetByID(ctx context.Context, caller domain.Principal, id int64) (*models.InvitationResponse, error)
	UpdateStatus(ctx context.Context, caller domain.Principal, id int64, req *models.UpdateStatusRequest) (*models.InvitationResponse, error)
	Delete(ctx context.Context, caller domain.Principal, id int64) error
	Accept(ctx context.Context, req *models.AcceptRequest) (*models.AcceptResponse, error)
	Decline(ctx context.Context, req *models.DeclineRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
