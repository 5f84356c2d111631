package parameters

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	parametersRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/parameters"
	"github.com/m04kA/SMC-AppointmentService/internal/service/parameters/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// Service сервис параметров бизнеса
type Service struct {
	parametersRepo ParametersRepository
	logger         Logger
}

// NewService создает новый экземпляр сервиса параметров
func NewService(parametersRepo ParametersRepository, logger Logger) *Service {
	return &Service{
		parametersRepo: parametersRepo,
		logger:         logger,
	}
}

// Get возвращает параметры, до первого сохранения значения по умолчанию
func (s *Service) Get(ctx context.Context) (*models.ParametersResponse, error) {
	params, err := s.load(ctx, "Get")
	if err != nil {
		return nil, err
	}
	return models.FromDomainParameters(params), nil
}

// Update частично обновляет параметры, доступно только администратору
func (s *Service) Update(ctx context.Context, caller domain.Principal, req *models.UpdateParametersRequest) (*models.ParametersResponse, error) {
	s.logger.Info("Update: updating parameters by user=%d", caller.UserID)

	if !caller.Can(domain.CapManageParameters) {
		s.logger.Warn("Update: user=%d is not allowed to manage parameters", caller.UserID)
		return nil, ErrAccessDenied
	}

	// 1. Текущие параметры или значения по умолчанию
	params, err := s.load(ctx, "Update")
	if err != nil {
		return nil, err
	}

	// 2. Применяем изменения и валидируем результат целиком
	req.ApplyTo(params)
	if err := validateParameters(params); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 3. Сохраняем
	saved, err := s.parametersRepo.Upsert(ctx, params)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated parameters")
	return models.FromDomainParameters(saved), nil
}

func (s *Service) load(ctx context.Context, op string) (*domain.Parameters, error) {
	params, err := s.parametersRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, parametersRepo.ErrParametersNotFound) {
			return domain.DefaultParameters(), nil
		}
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return params, nil
}

// validateParameters валидирует параметры бизнеса
func validateParameters(p *domain.Parameters) error {
	err := validate.First(
		validate.Required("businessName", p.BusinessName, domain.MaxNameLength),
		validate.OptionalMaxLength("description", p.Description, domain.MaxDescriptionLength),
		validate.OptionalMaxLength("logo", p.Logo, domain.MaxDescriptionLength),
		validate.OptionalMaxLength("address", p.Address, domain.MaxReasonLength),
		validate.Phone("contactPhone", p.ContactPhone),
		validate.Range("reminderMinutes", p.ReminderMinutes, 0, domain.MaxReminderMinutes),
		validate.Range("minBookingDelayHours", p.MinBookingDelayHours, 0, domain.MaxMinBookingDelayHours),
		validate.Range("maxBookingDelayDays", p.MaxBookingDelayDays, 0, domain.MaxMaxBookingDelayDays),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if p.ContactEmail != nil {
		if err := validate.Email("contactEmail", *p.ContactEmail); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	// Окно записи должно быть шире минимальной задержки
	if p.MaxBookingDelayDays > 0 && p.MinBookingDelayHours > p.MaxBookingDelayDays*24 {
		return fmt.Errorf("%w: minBookingDelayHours exceeds maxBookingDelayDays", ErrInvalidInput)
	}

	return nil
}
