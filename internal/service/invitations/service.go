package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	invitationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/invitation"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/service/invitations/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/password"
)

// Service сервис приглашений персонала
type Service struct {
	invitationRepo InvitationRepository
	userRepo       UserRepository
	catalogRepo    CatalogRepository
	txManager      TransactionManager
	passwordCost   int
	logger         Logger
}

// NewService создает новый экземпляр сервиса приглашений
func NewService(
	invitationRepo InvitationRepository,
	userRepo UserRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		catalogRepo:    catalogRepo,
		txManager:      txManager,
		passwordCost:   bcrypt.DefaultCost,
		logger:         logger,
	}
}

// WithPasswordCost задаёт стоимость bcrypt для учётных записей, созданных по приглашению
func (s *Service) WithPasswordCost(cost int) *Service {
	if cost > 0 {
		s.passwordCost = cost
	}
	return s
}

// Create создает приглашение со свежим токеном
func (s *Service) Create(ctx context.Context, caller domain.Principal, req *models.CreateRequest) (*models.InvitationResponse, error) {
	s.logger.Info("Create: inviting %q as %q by user=%d", req.Email, req.Role, caller.UserID)

	if err := s.checkAccess("Create", caller); err != nil {
		return nil, err
	}
	role, serviceIDs, err := validateCreate(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	for _, id := range serviceIDs {
		if _, err := s.catalogRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				s.logger.Warn("Create: service id=%d not found", id)
				return nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, id)
			}
			s.logger.Error("Create: failed to get service id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: Create - catalog error: %v", ErrInternal, err)
		}
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.Roles.Has(role) {
			s.logger.Warn("Create: user id=%d already has role %s", existing.ID, role)
			return nil, ErrAlreadyMember
		}
	case !errors.Is(err, userRepo.ErrUserNotFound):
		s.logger.Error("Create: failed to look up user: %v", err)
		return nil, fmt.Errorf("%w: Create - user repository error: %v", ErrInternal, err)
	}

	created, err := s.invitationRepo.Create(ctx, &domain.Invitation{
		Email:      strings.TrimSpace(req.Email),
		Role:       role,
		ServiceIDs: serviceIDs,
		Status:     domain.InvitationPending,
		Token:      uuid.NewString(),
	})
	if err != nil {
		if errors.Is(err, invitationRepo.ErrInvitationExists) {
			s.logger.Warn("Create: invitation for %q already exists", req.Email)
			return nil, ErrInvitationExists
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created invitation id=%d", created.ID)
	return models.FromDomainInvitation(created), nil
}

// List приглашения с фильтром по email и статусу
func (s *Service) List(ctx context.Context, caller domain.Principal, query models.ListQuery) (*models.InvitationListResponse, error) {
	if err := s.checkAccess("List", caller); err != nil {
		return nil, err
	}

	filter := domain.InvitationsFilter{Email: query.Email}
	if query.Status != nil {
		status, err := domain.ParseInvitationStatus(*query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}

	list, err := s.invitationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainInvitationList(list), nil
}

func (s *Service) GetByID(ctx context.Context, caller domain.Principal, id int64) (*models.InvitationResponse, error) {
	if err := s.checkAccess("GetByID", caller); err != nil {
		return nil, err
	}

	inv, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainInvitation(inv), nil
}

// UpdateStatus отзывает или отклоняет ожидающее приглашение
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Principal, id int64, req *models.UpdateStatusRequest) (*models.InvitationResponse, error) {
	s.logger.Info("UpdateStatus: invitation id=%d status=%q by user=%d", id, req.Status, caller.UserID)

	if err := s.checkAccess("UpdateStatus", caller); err != nil {
		return nil, err
	}
	status, err := parseAdminStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: validation failed: %v", err)
		return nil, err
	}

	var updated *domain.Invitation
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		inv, err := s.get(txCtx, "UpdateStatus", id)
		if err != nil {
			return err
		}
		if err := s.transition(txCtx, inv, status); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, s.txError("UpdateStatus", err)
	}

	s.logger.Info("UpdateStatus: invitation id=%d is now %s", id, status)
	return models.FromDomainInvitation(updated), nil
}

// Delete удаляет приглашение в любом статусе
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	if err := s.checkAccess("Delete", caller); err != nil {
		return err
	}

	if err := s.invitationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, invitationRepo.ErrInvitationNotFound) {
			s.logger.Warn("Delete: invitation id=%d not found", id)
			return ErrInvitationNotFound
		}
		s.logger.Error("Delete: repository error for invitation id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted invitation id=%d", id)
	return nil
}

// Accept принимает приглашение по токену
// Существующий пользователь получает роль приглашения, иначе создаётся учётная запись
// Сотрудник сразу назначается на услуги приглашения
func (s *Service) Accept(ctx context.Context, req *models.AcceptRequest) (*models.AcceptResponse, error) {
	if err := validateToken(req.Token); err != nil {
		s.logger.Warn("Accept: %v", err)
		return nil, err
	}

	var resp *models.AcceptResponse
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		inv, err := s.getByToken(txCtx, "Accept", req.Token)
		if err != nil {
			return err
		}
		if inv.Status.IsFinal() {
			return fmt.Errorf("%w: id=%d status=%s", ErrInvitationNotPending, inv.ID, inv.Status)
		}

		user, created, err := s.grantRole(txCtx, inv, req)
		if err != nil {
			return err
		}

		if inv.Role == domain.RoleEmployee {
			if err := s.catalogRepo.AssignEmployee(txCtx, user.ID, inv.ServiceIDs); err != nil {
				if errors.Is(err, catalogRepo.ErrServiceNotFound) {
					return fmt.Errorf("%w: %v", ErrServiceNotFound, err)
				}
				return fmt.Errorf("%w: failed to assign services: %v", ErrInternal, err)
			}
		}

		if err := s.transition(txCtx, inv, domain.InvitationAccepted); err != nil {
			return err
		}

		resp = &models.AcceptResponse{
			InvitationID: inv.ID,
			UserID:       user.ID,
			Roles:        user.Roles.Strings(),
			ServiceIDs:   models.FromDomainInvitation(inv).ServiceIDs,
			UserCreated:  created,
		}
		return nil
	})
	if err != nil {
		return nil, s.txError("Accept", err)
	}

	s.logger.Info("Accept: invitation id=%d accepted by user id=%d", resp.InvitationID, resp.UserID)
	return resp, nil
}

// Decline отклоняет приглашение по токену
func (s *Service) Decline(ctx context.Context, req *models.DeclineRequest) error {
	if err := validateToken(req.Token); err != nil {
		s.logger.Warn("Decline: %v", err)
		return err
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		inv, err := s.getByToken(txCtx, "Decline", req.Token)
		if err != nil {
			return err
		}
		return s.transition(txCtx, inv, domain.InvitationDeclined)
	})
	if err != nil {
		return s.txError("Decline", err)
	}

	return nil
}

// Вспомогательные методы

// grantRole выдаёт роль приглашения, при необходимости создавая пользователя
func (s *Service) grantRole(ctx context.Context, inv *domain.Invitation, req *models.AcceptRequest) (*domain.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		if existing.Roles.Has(inv.Role) {
			return existing, false, nil
		}
		roles := existing.Roles | domain.NewRoleSet(inv.Role)
		if err := s.userRepo.SetRoles(ctx, existing.ID, roles); err != nil {
			return nil, false, fmt.Errorf("%w: failed to update roles: %v", ErrInternal, err)
		}
		existing.Roles = roles
		return existing, false, nil
	case !errors.Is(err, userRepo.ErrUserNotFound):
		return nil, false, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}

	if err := validateNewUser(req); err != nil {
		return nil, false, err
	}

	hash, err := password.RandomHash(domain.RandomPasswordLength, s.passwordCost)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        inv.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(inv.Role),
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailAlreadyExists) {
			return nil, false, ErrEmailTaken
		}
		return nil, false, fmt.Errorf("%w: failed to create user: %v", ErrInternal, err)
	}

	return user, true, nil
}

// transition переводит ожидающее приглашение в новый статус
func (s *Service) transition(ctx context.Context, inv *domain.Invitation, to domain.InvitationStatus) error {
	if inv.Status.IsFinal() {
		return fmt.Errorf("%w: id=%d status=%s", ErrInvitationNotPending, inv.ID, inv.Status)
	}

	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, inv.Status, to); err != nil {
		if errors.Is(err, invitationRepo.ErrStatusConflict) {
			return fmt.Errorf("%w: id=%d", ErrInvitationNotPending, inv.ID)
		}
		return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	inv.Status = to
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, invitationRepo.ErrInvitationNotFound) {
			s.logger.Warn("%s: invitation id=%d not found", op, id)
			return nil, ErrInvitationNotFound
		}
		s.logger.Error("%s: repository error for invitation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return inv, nil
}

func (s *Service) getByToken(ctx context.Context, op string, token string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, invitationRepo.ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return inv, nil
}

func (s *Service) checkAccess(op string, caller domain.Principal) error {
	if !caller.Can(domain.CapManageInvitations) {
		s.logger.Warn("%s: user=%d is not allowed to manage invitations", op, caller.UserID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) txError(op string, err error) error {
	switch {
	case errors.Is(err, ErrInvitationNotFound),
		errors.Is(err, ErrInvitationNotPending),
		errors.Is(err, ErrServiceNotFound),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidInput):
		s.logger.Warn("%s: %v", op, err)
		return err
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: %v", op, err)
		return err
	default:
		s.logger.Error("%s: transaction failed: %v", op, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
