package create_booking

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	parametersRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/parameters"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/pkg/password"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	serviceRepo    ServiceRepository
	userRepo       UserRepository
	parametersRepo ParametersRepository
	evaluator      SlotEvaluator
	publisher      EventPublisher
	observer       ConflictObserver
	txManager      TransactionManager
	timeProvider   TimeProvider
	passwordCost   int
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
// observer может быть nil
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	parametersRepo ParametersRepository,
	evaluator SlotEvaluator,
	publisher EventPublisher,
	observer ConflictObserver,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		serviceRepo:    serviceRepo,
		userRepo:       userRepo,
		parametersRepo: parametersRepo,
		evaluator:      evaluator,
		publisher:      publisher,
		observer:       observer,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		passwordCost:   bcrypt.DefaultCost,
		logger:         logger,
	}
}

// WithPasswordCost задаёт стоимость bcrypt для паролей новых клиентов
func (uc *UseCase) WithPasswordCost(cost int) *UseCase {
	if cost > 0 {
		uc.passwordCost = cost
	}
	return uc
}

// Execute выполняет use case создания бронирования
// Проверка слота и запись выполняются в одной сериализуемой транзакции
// под блокировкой строки сотрудника
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: employee=%d, service=%d, date=%s, time=%s, parent=%v",
		req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.ParentBookingID != nil)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Кто клиент и в каком статусе создаётся бронирование
	initialStatus, err := resolveFlow(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)

	// 3. Ограничения по времени записи из параметров бизнеса
	params, err := uc.parametersRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, parametersRepo.ErrParametersNotFound) {
			uc.logger.Error("CreateBooking: failed to get parameters: %v", err)
			return nil, fmt.Errorf("%w: failed to get parameters: %v", ErrInternal, err)
		}
		params = domain.DefaultParameters()
	}

	if err := validateDate(date, now, params.MaxBookingDelayDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}
	if err := validateBookingTime(date, req.StartTime, now, params.MinBookingDelayHours); err != nil {
		uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
		return nil, err
	}

	// 4. Услуга и её исполнители
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", service.ID)
		return nil, ErrServiceInactive
	}
	if !service.HasEmployee(req.EmployeeID) {
		uc.logger.Warn("CreateBooking: employee id=%d does not provide service id=%d", req.EmployeeID, service.ID)
		return nil, ErrEmployeeNotCapable
	}

	var (
		result        *domain.Booking
		clientCreated bool
	)

	// 5. Проверка и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result, clientCreated = nil, false

		// 5.1. Блокируем сотрудника: параллельные записи к нему выполняются по очереди
		employee, err := uc.userRepo.LockEmployee(txCtx, req.EmployeeID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return ErrEmployeeNotFound
			}
			return fmt.Errorf("%w: failed to lock employee: %w", ErrInternal, err)
		}
		if !employee.IsEmployee() {
			return ErrEmployeeNotFound
		}

		// 5.2. Родительское бронирование
		if req.ParentBookingID != nil {
			parent, err := uc.bookingRepo.GetByID(txCtx, *req.ParentBookingID)
			if err != nil {
				if errors.Is(err, bookingRepo.ErrBookingNotFound) {
					return ErrParentBookingNotFound
				}
				return fmt.Errorf("%w: failed to get parent booking: %w", ErrInternal, err)
			}
			if err := validateParent(parent, req); err != nil {
				return err
			}
		}

		// 5.3. Повторная проверка слота с блокировкой бронирований сотрудника
		slot, err := uc.evaluator.Evaluate(txCtx, availability.SlotQuery{
			EmployeeID:      req.EmployeeID,
			Date:            date,
			Start:           req.StartTime,
			DurationMinutes: service.DurationMinutes,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to evaluate slot: %w", ErrInternal, err)
		}
		if slot.Verdict != availability.VerdictFree {
			return fmt.Errorf("%w: employee=%d date=%s time=%s",
				slot.Verdict.Err(), req.EmployeeID, date.Format(domain.DateFormat), req.StartTime)
		}

		// 5.4. Клиент
		clientID, created, err := uc.resolveClient(txCtx, req)
		if err != nil {
			return err
		}

		// 5.5. Бронирование; длительность фиксируется на момент записи
		booking, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			EmployeeID:      req.EmployeeID,
			ClientID:        clientID,
			ServiceID:       service.ID,
			BookingDate:     date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          initialStatus,
			ParentBookingID: req.ParentBookingID,
			Message:         req.Message,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result, clientCreated = booking, created
		return nil
	})

	if err != nil {
		return nil, uc.handleTxError(err, req)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d status=%s client=%d (created=%v)",
		result.ID, result.Status, result.ClientID, clientCreated)

	// 6. Событие публикуется после фиксации; ошибка публикации не отменяет бронирование
	if err := uc.publisher.PublishBookingCreated(ctx, result); err != nil {
		uc.logger.Error("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return toResponse(result, clientCreated), nil
}

// resolveFlow определяет начальный статус и проверяет, что данных клиента достаточно
func resolveFlow(req *Request) (domain.BookingStatus, error) {
	switch {
	case req.Caller == nil:
		if req.Client == nil {
			return "", fmt.Errorf("%w: client details are required", ErrInvalidInput)
		}
		return domain.StatusPending, nil

	case req.Client != nil:
		if !req.Caller.Can(domain.CapBookOnBehalf) {
			return "", fmt.Errorf("%w: cannot book on behalf of another client", ErrAccessDenied)
		}
		return domain.StatusConfirmed, nil

	case req.Caller.Roles.IsStaff():
		return domain.StatusConfirmed, nil

	default:
		return domain.StatusPending, nil
	}
}

// resolveClient возвращает ID клиента, при необходимости создавая учётную запись
func (uc *UseCase) resolveClient(ctx context.Context, req *Request) (int64, bool, error) {
	if req.Client == nil {
		return req.Caller.UserID, false, nil
	}

	existing, err := uc.userRepo.GetByEmail(ctx, req.Client.Email)
	switch {
	case err == nil:
		// Анонимный клиент не может записаться на чужой email
		if req.Caller == nil {
			return 0, false, ErrDuplicateEmail
		}
		// Сотрудника или администратора нельзя записать клиентом по email
		if !existing.Roles.Has(domain.RoleClient) {
			return 0, false, fmt.Errorf("%w: client.email belongs to a non-client account", ErrInvalidInput)
		}
		return existing.ID, false, nil
	case !errors.Is(err, userRepo.ErrUserNotFound):
		return 0, false, fmt.Errorf("%w: failed to look up client: %w", ErrInternal, err)
	}

	hash, err := password.RandomHash(domain.RandomPasswordLength, uc.passwordCost)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	client, err := uc.userRepo.Create(ctx, &domain.User{
		FirstName:    req.Client.FirstName,
		LastName:     req.Client.LastName,
		Email:        req.Client.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(domain.RoleClient),
		PhoneNumber:  req.Client.PhoneNumber,
		PostalCode:   req.Client.PostalCode,
	})
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailAlreadyExists) {
			return 0, false, ErrDuplicateEmail
		}
		return 0, false, fmt.Errorf("%w: failed to create client: %w", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: created client account id=%d", client.ID)
	return client.ID, true, nil
}

// handleTxError логирует ошибку транзакции и приводит её к ошибке use case
func (uc *UseCase) handleTxError(err error, req *Request) error {
	switch {
	case txmanager.IsSerializationFailure(err):
		uc.observeConflict("serialization")
		uc.logger.Warn("CreateBooking: concurrent conflict for employee id=%d: %v", req.EmployeeID, err)
		return fmt.Errorf("%w: %v", ErrConcurrentBookingConflict, err)

	case errors.Is(err, availability.ErrOccupied):
		uc.observeConflict("occupied")
		uc.logger.Warn("CreateBooking: slot occupied: %v", err)
		return err

	case errors.Is(err, availability.ErrOutsideWorkingHours):
		uc.observeConflict("outside_working_hours")
		uc.logger.Warn("CreateBooking: slot outside working hours: %v", err)
		return err

	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		return err

	case errors.Is(err, txmanager.ErrBeginTx), errors.Is(err, txmanager.ErrCommitTx):
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)

	default:
		uc.logger.Warn("CreateBooking: rejected: %v", err)
		return err
	}
}

func (uc *UseCase) observeConflict(reason string) {
	if uc.observer != nil {
		uc.observer.IncBookingConflict(reason)
	}
}

func toResponse(b *domain.Booking, clientCreated bool) *Response {
	// Время окончания уже проверено при оценке слота
	end, _ := b.EndTime()

	return &Response{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		BookingDate:     b.BookingDate,
		StartTime:       b.StartTime,
		EndTime:         end,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		ParentBookingID: b.ParentBookingID,
		Message:         b.Message,
		ClientCreated:   clientCreated,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
