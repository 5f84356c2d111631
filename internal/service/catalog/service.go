package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

// Service сервис каталога услуг
type Service struct {
	serviceRepo ServiceRepository
	userRepo    UserRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// List возвращает услуги по имени
// Неактивные услуги видит только администратор и только по запросу
func (s *Service) List(ctx context.Context, caller *domain.Principal, includeInactive bool) (*models.ServiceListResponse, error) {
	activeOnly := !(includeInactive && canManage(caller))

	services, err := s.serviceRepo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceList(services), nil
}

// GetByID получает услугу, неактивная услуга для посетителей не существует
func (s *Service) GetByID(ctx context.Context, caller *domain.Principal, id int64) (*models.ServiceResponse, error) {
	service, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !service.IsActive && !canManage(caller) {
		s.logger.Warn("GetByID: service id=%d is inactive", id)
		return nil, ErrServiceNotFound
	}

	return models.FromDomainService(service), nil
}

// Create создает услугу и, если указано, назначает сотрудников
func (s *Service) Create(ctx context.Context, caller domain.Principal, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Create: creating service %q by user=%d", req.Name, caller.UserID)

	if err := s.checkAccess("Create", caller); err != nil {
		return nil, err
	}
	if err := validateService(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}
	employeeIDs, err := normalizeEmployeeIDs(req.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	var created *domain.Service
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		service, err := s.serviceRepo.Create(txCtx, req.ToDomain())
		if err != nil {
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}

		if len(employeeIDs) > 0 {
			if err := s.assignEmployees(txCtx, service.ID, employeeIDs); err != nil {
				return err
			}
		}

		service.EmployeeIDs = employeeIDs
		created = service
		return nil
	})
	if err != nil {
		return nil, s.txError("Create", err)
	}

	s.logger.Info("Create: successfully created service id=%d", created.ID)
	return models.FromDomainService(created), nil
}

// Update перезаписывает поля услуги, список сотрудников не меняется
func (s *Service) Update(ctx context.Context, caller domain.Principal, id int64, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Update: updating service id=%d by user=%d", id, caller.UserID)

	if err := s.checkAccess("Update", caller); err != nil {
		return nil, err
	}
	if err := validateService(req); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	current, err := s.get(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	service := req.ToDomain()
	service.ID = id
	if req.IsActive == nil {
		service.IsActive = current.IsActive
	}

	updated, err := s.serviceRepo.Update(ctx, service)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Update: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}
	updated.EmployeeIDs = current.EmployeeIDs

	s.logger.Info("Update: successfully updated service id=%d", id)
	return models.FromDomainService(updated), nil
}

// ToggleActive включает или выключает услугу
func (s *Service) ToggleActive(ctx context.Context, caller domain.Principal, id int64) (*models.ToggleResponse, error) {
	if err := s.checkAccess("ToggleActive", caller); err != nil {
		return nil, err
	}

	active, err := s.serviceRepo.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("ToggleActive: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("ToggleActive: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: ToggleActive - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ToggleActive: service id=%d active=%v", id, active)
	return &models.ToggleResponse{ID: id, IsActive: active}, nil
}

// Delete удаляет услугу без бронирований
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	if err := s.checkAccess("Delete", caller); err != nil {
		return err
	}

	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, catalogRepo.ErrServiceNotFound):
			s.logger.Warn("Delete: service id=%d not found", id)
			return ErrServiceNotFound
		case errors.Is(err, catalogRepo.ErrServiceInUse):
			s.logger.Warn("Delete: service id=%d has bookings", id)
			return ErrServiceInUse
		}
		s.logger.Error("Delete: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted service id=%d", id)
	return nil
}

// SetEmployees заменяет список сотрудников, оказывающих услугу
func (s *Service) SetEmployees(ctx context.Context, caller domain.Principal, id int64, ids []int64) (*models.ServiceResponse, error) {
	s.logger.Info("SetEmployees: service id=%d employees=%v by user=%d", id, ids, caller.UserID)

	if err := s.checkAccess("SetEmployees", caller); err != nil {
		return nil, err
	}
	employeeIDs, err := normalizeEmployeeIDs(ids)
	if err != nil {
		return nil, err
	}

	var service *domain.Service
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.get(txCtx, "SetEmployees", id)
		if err != nil {
			return err
		}
		if err := s.assignEmployees(txCtx, id, employeeIDs); err != nil {
			return err
		}
		current.EmployeeIDs = employeeIDs
		service = current
		return nil
	})
	if err != nil {
		return nil, s.txError("SetEmployees", err)
	}

	return models.FromDomainService(service), nil
}

// Вспомогательные методы

// assignEmployees проверяет, что все пользователи существуют и являются сотрудниками
func (s *Service) assignEmployees(ctx context.Context, serviceID int64, employeeIDs []int64) error {
	for _, employeeID := range employeeIDs {
		user, err := s.userRepo.GetByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return fmt.Errorf("%w: id=%d", ErrEmployeeNotFound, employeeID)
			}
			return fmt.Errorf("%w: failed to get user id=%d: %v", ErrInternal, employeeID, err)
		}
		if !user.IsEmployee() {
			return fmt.Errorf("%w: user id=%d is not an employee", ErrEmployeeNotFound, employeeID)
		}
	}

	if err := s.serviceRepo.SetEmployees(ctx, serviceID, employeeIDs); err != nil {
		return fmt.Errorf("%w: failed to set employees: %v", ErrInternal, err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("%s: service id=%d not found", op, id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("%s: repository error for service id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return service, nil
}

func (s *Service) checkAccess(op string, caller domain.Principal) error {
	if !caller.Can(domain.CapManageServices) {
		s.logger.Warn("%s: user=%d is not allowed to manage services", op, caller.UserID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) txError(op string, err error) error {
	switch {
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrEmployeeNotFound):
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

func canManage(caller *domain.Principal) bool {
	return caller != nil && caller.Can(domain.CapManageServices)
}
