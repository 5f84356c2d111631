package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	absenceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/absence"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	workingHoursRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/workinghours"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// Service сервис расписания сотрудников: рабочие часы и отсутствия
type Service struct {
	ruleRepo    RuleRepository
	absenceRepo AbsenceRepository
	userRepo    UserRepository
	resolver    ScheduleResolver
	logger      Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	ruleRepo RuleRepository,
	absenceRepo AbsenceRepository,
	userRepo UserRepository,
	resolver ScheduleResolver,
	logger Logger,
) *Service {
	return &Service{
		ruleRepo:    ruleRepo,
		absenceRepo: absenceRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

// Рабочие часы

// ListWorkingHours правила сотрудника, доступно без авторизации
func (s *Service) ListWorkingHours(ctx context.Context, employeeID int64) (*models.WorkingHourListResponse, error) {
	if err := validate.ID("employeeId", employeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rules, err := s.ruleRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("ListWorkingHours: repository error for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: ListWorkingHours - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRules(rules), nil
}

// CreateWorkingHour добавляет правило себе или, для администратора, любому сотруднику
func (s *Service) CreateWorkingHour(ctx context.Context, caller domain.Principal, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error) {
	s.logger.Info("CreateWorkingHour: employee=%d recurring=%v by user=%d", req.EmployeeID, req.IsRecurring, caller.UserID)

	rule, err := toDomainRule(req)
	if err != nil {
		s.logger.Warn("CreateWorkingHour: validation failed: %v", err)
		return nil, err
	}
	if err := s.checkEmployeeAccess(ctx, "CreateWorkingHour", caller, rule.EmployeeID); err != nil {
		return nil, err
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("CreateWorkingHour: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateWorkingHour - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateWorkingHour: created rule id=%d", created.ID)
	resp := models.FromDomainRule(created)
	return &resp, nil
}

// UpdateWorkingHour перезаписывает правило, сотрудника сменить нельзя
func (s *Service) UpdateWorkingHour(ctx context.Context, caller domain.Principal, id int64, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error) {
	current, err := s.getRule(ctx, "UpdateWorkingHour", id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, current.EmployeeID) {
		s.logger.Warn("UpdateWorkingHour: access denied for user=%d to rule id=%d", caller.UserID, id)
		return nil, ErrAccessDenied
	}

	req.EmployeeID = current.EmployeeID
	rule, err := toDomainRule(req)
	if err != nil {
		s.logger.Warn("UpdateWorkingHour: validation failed: %v", err)
		return nil, err
	}
	rule.ID = id

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		if errors.Is(err, workingHoursRepo.ErrRuleNotFound) {
			return nil, ErrRuleNotFound
		}
		s.logger.Error("UpdateWorkingHour: repository error for rule id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateWorkingHour - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainRule(updated)
	return &resp, nil
}

// DeleteWorkingHour удаляет правило
func (s *Service) DeleteWorkingHour(ctx context.Context, caller domain.Principal, id int64) error {
	current, err := s.getRule(ctx, "DeleteWorkingHour", id)
	if err != nil {
		return err
	}
	if !canManage(caller, current.EmployeeID) {
		s.logger.Warn("DeleteWorkingHour: access denied for user=%d to rule id=%d", caller.UserID, id)
		return ErrAccessDenied
	}

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, workingHoursRepo.ErrRuleNotFound) {
			return ErrRuleNotFound
		}
		s.logger.Error("DeleteWorkingHour: repository error for rule id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteWorkingHour - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteWorkingHour: deleted rule id=%d", id)
	return nil
}

// Отсутствия

// ListAbsences отсутствия сотрудника, видит сам сотрудник и администратор
func (s *Service) ListAbsences(ctx context.Context, caller domain.Principal, employeeID int64) (*models.AbsenceListResponse, error) {
	if err := validate.ID("employeeId", employeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !canManage(caller, employeeID) {
		s.logger.Warn("ListAbsences: access denied for user=%d to employee=%d", caller.UserID, employeeID)
		return nil, ErrAccessDenied
	}

	absences, err := s.absenceRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("ListAbsences: repository error for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: ListAbsences - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAbsences(absences), nil
}

// CreateAbsence добавляет период отсутствия
func (s *Service) CreateAbsence(ctx context.Context, caller domain.Principal, req *models.AbsenceRequest) (*models.AbsenceResponse, error) {
	s.logger.Info("CreateAbsence: employee=%d %s..%s by user=%d", req.EmployeeID, req.StartDate, req.EndDate, caller.UserID)

	absence, err := toDomainAbsence(req)
	if err != nil {
		s.logger.Warn("CreateAbsence: validation failed: %v", err)
		return nil, err
	}
	if err := s.checkEmployeeAccess(ctx, "CreateAbsence", caller, absence.EmployeeID); err != nil {
		return nil, err
	}

	created, err := s.absenceRepo.Create(ctx, absence)
	if err != nil {
		s.logger.Error("CreateAbsence: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateAbsence - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainAbsence(created)
	return &resp, nil
}

// UpdateAbsence меняет даты и причину отсутствия
func (s *Service) UpdateAbsence(ctx context.Context, caller domain.Principal, id int64, req *models.AbsenceRequest) (*models.AbsenceResponse, error) {
	current, err := s.getAbsence(ctx, "UpdateAbsence", id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, current.EmployeeID) {
		s.logger.Warn("UpdateAbsence: access denied for user=%d to absence id=%d", caller.UserID, id)
		return nil, ErrAccessDenied
	}

	req.EmployeeID = current.EmployeeID
	absence, err := toDomainAbsence(req)
	if err != nil {
		s.logger.Warn("UpdateAbsence: validation failed: %v", err)
		return nil, err
	}
	absence.ID = id

	updated, err := s.absenceRepo.Update(ctx, absence)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			return nil, ErrAbsenceNotFound
		}
		s.logger.Error("UpdateAbsence: repository error for absence id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateAbsence - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainAbsence(updated)
	return &resp, nil
}

// DeleteAbsence удаляет отсутствие, доступно только администратору
func (s *Service) DeleteAbsence(ctx context.Context, caller domain.Principal, id int64) error {
	if !caller.Can(domain.CapDeleteAbsences) {
		s.logger.Warn("DeleteAbsence: user=%d is not allowed to delete absences", caller.UserID)
		return ErrAccessDenied
	}

	if err := s.absenceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			s.logger.Warn("DeleteAbsence: absence id=%d not found", id)
			return ErrAbsenceNotFound
		}
		s.logger.Error("DeleteAbsence: repository error for absence id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteAbsence - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteAbsence: deleted absence id=%d", id)
	return nil
}

// Расписание на дату

// GetDaySchedule итоговое рабочее время сотрудника на дату
func (s *Service) GetDaySchedule(ctx context.Context, employeeID int64, date string) (*models.DayScheduleResponse, error) {
	if err := validate.ID("employeeId", employeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	day, err := validate.Date("date", date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.getEmployee(ctx, "GetDaySchedule", employeeID); err != nil {
		return nil, err
	}

	res, err := s.resolver.ResolveSchedule(ctx, employeeID, day)
	if err != nil {
		s.logger.Error("GetDaySchedule: failed to resolve schedule for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: GetDaySchedule - resolve: %v", ErrInternal, err)
	}

	return models.FromResolution(employeeID, day, res), nil
}

// Вспомогательные методы

// checkEmployeeAccess проверяет права вызывающего и что целевой пользователь сотрудник
func (s *Service) checkEmployeeAccess(ctx context.Context, op string, caller domain.Principal, employeeID int64) error {
	if !canManage(caller, employeeID) {
		s.logger.Warn("%s: access denied for user=%d to employee=%d", op, caller.UserID, employeeID)
		return ErrAccessDenied
	}
	_, err := s.getEmployee(ctx, op, employeeID)
	return err
}

func (s *Service) getEmployee(ctx context.Context, op string, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user id=%d not found", op, id)
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("%s: failed to get user id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - failed to get user: %v", ErrInternal, op, err)
	}
	if !user.IsEmployee() {
		s.logger.Warn("%s: user id=%d is not an employee", op, id)
		return nil, ErrEmployeeNotFound
	}
	return user, nil
}

func (s *Service) getRule(ctx context.Context, op string, id int64) (*domain.WorkingHourRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, workingHoursRepo.ErrRuleNotFound) {
			s.logger.Warn("%s: rule id=%d not found", op, id)
			return nil, ErrRuleNotFound
		}
		s.logger.Error("%s: repository error for rule id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return rule, nil
}

func (s *Service) getAbsence(ctx context.Context, op string, id int64) (*domain.Absence, error) {
	absence, err := s.absenceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			s.logger.Warn("%s: absence id=%d not found", op, id)
			return nil, ErrAbsenceNotFound
		}
		s.logger.Error("%s: repository error for absence id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return absence, nil
}

// canManage администратор управляет любым расписанием, сотрудник только своим
func canManage(caller domain.Principal, employeeID int64) bool {
	if caller.Can(domain.CapManageAnySchedule) {
		return true
	}
	return caller.Can(domain.CapManageOwnSchedule) && caller.UserID == employeeID
}
