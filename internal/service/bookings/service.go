package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// upcomingLimit сколько предстоящих бронирований отдаётся за раз
const upcomingLimit = 50

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Клиент видит только свои бронирования, сотрудники и администраторы любые
func (s *Service) GetByID(ctx context.Context, caller domain.Principal, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, caller.UserID)

	booking, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !canView(caller, booking) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", caller.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// List возвращает бронирования по фильтрам
// Без права просмотра всех бронирований выборка ограничивается бронированиями клиента
func (s *Service) List(ctx context.Context, caller domain.Principal, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := toDomainFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	if !caller.Can(domain.CapViewAllBookings) {
		if filter.ClientID != nil && *filter.ClientID != caller.UserID {
			s.logger.Warn("List: user=%d requested bookings of client=%d", caller.UserID, *filter.ClientID)
			return nil, ErrAccessDenied
		}
		filter.ClientID = &caller.UserID
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings for user=%d", len(bookings), caller.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// ListUpcoming ближайшие активные бронирования вызывающего
// Сотрудник видит свои записи, администратор все, клиент свои
func (s *Service) ListUpcoming(ctx context.Context, caller domain.Principal) (*models.BookingListResponse, error) {
	filter := bookingRepo.UpcomingFilter{
		From:  s.timeProvider.Now(),
		Limit: upcomingLimit,
	}

	switch {
	case caller.Roles.Has(domain.RoleAdmin):
	case caller.Roles.Has(domain.RoleEmployee):
		filter.EmployeeID = &caller.UserID
	default:
		filter.ClientID = &caller.UserID
	}

	bookings, err := s.bookingRepo.ListUpcoming(ctx, filter)
	if err != nil {
		s.logger.Error("ListUpcoming: repository error for user=%d: %v", caller.UserID, err)
		return nil, fmt.Errorf("%w: ListUpcoming - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// ChangeStatus подтверждает, отменяет или завершает бронирование
// Отменить своё бронирование может клиент, остальные действия только персонал
// Отмена родителя в той же транзакции отменяет его активные дочерние бронирования
func (s *Service) ChangeStatus(ctx context.Context, caller domain.Principal, req *models.ChangeStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("ChangeStatus: %s booking id=%d by user=%d", req.Action, req.BookingID, caller.UserID)

	target, err := req.Action.Target()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		booking   *domain.Booking
		previous  domain.BookingStatus
		cancelled []int64
	)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.get(txCtx, "ChangeStatus", req.BookingID)
		if err != nil {
			return err
		}

		if !canChangeStatus(caller, b, target) {
			s.logger.Warn("ChangeStatus: access denied for user=%d to booking id=%d", caller.UserID, b.ID)
			return ErrAccessDenied
		}

		if !b.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, b.ID, b.Status, target); err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrStatusConflict):
				return ErrConcurrentBookingConflict
			case errors.Is(err, bookingRepo.ErrBookingNotFound):
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: ChangeStatus - update status: %v", ErrInternal, err)
		}

		if target == domain.StatusCancelled {
			ids, err := s.bookingRepo.CancelChildren(txCtx, b.ID)
			if err != nil {
				return fmt.Errorf("%w: ChangeStatus - cancel children: %v", ErrInternal, err)
			}
			cancelled = ids
		}

		previous = b.Status
		b.Status = target
		booking = b
		return nil
	})
	if err != nil {
		if !isKnown(err) {
			s.logger.Error("ChangeStatus: transaction failed for booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		s.logger.Warn("ChangeStatus: booking id=%d: %v", req.BookingID, err)
		return nil, err
	}

	s.logger.Info("ChangeStatus: booking id=%d %s -> %s, cascaded=%v", booking.ID, previous, target, cancelled)

	s.publish(ctx, booking, previous)
	for _, id := range cancelled {
		child, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			s.logger.Error("ChangeStatus: failed to load cancelled child id=%d: %v", id, err)
			continue
		}
		// CancelChildren не возвращает прежний статус дочерних бронирований
		s.publish(ctx, child, "")
	}

	return models.FromDomainBooking(booking), nil
}

// Delete удаляет бронирование, доступно только администратору
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	s.logger.Info("Delete: deleting booking id=%d by user=%d", id, caller.UserID)

	if !caller.Can(domain.CapDeleteBookings) {
		s.logger.Warn("Delete: user=%d is not allowed to delete bookings", caller.UserID)
		return ErrAccessDenied
	}

	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Delete: booking id=%d not found", id)
			return ErrBookingNotFound
		}
		s.logger.Error("Delete: repository error for booking id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted booking id=%d", id)
	return nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) publish(ctx context.Context, booking *domain.Booking, previous domain.BookingStatus) {
	if err := s.publisher.PublishStatusChanged(ctx, booking, previous); err != nil {
		s.logger.Error("publish: failed to publish status change for booking id=%d: %v", booking.ID, err)
	}
}

// canView клиент бронирования или персонал
func canView(caller domain.Principal, b *domain.Booking) bool {
	return b.ClientID == caller.UserID || caller.Can(domain.CapViewAllBookings)
}

func canChangeStatus(caller domain.Principal, b *domain.Booking, target domain.BookingStatus) bool {
	if caller.Can(domain.CapUpdateBookings) {
		return true
	}
	return target == domain.StatusCancelled && b.ClientID == caller.UserID
}

func isKnown(err error) bool {
	for _, known := range []error{
		ErrBookingNotFound,
		ErrAccessDenied,
		ErrInvalidTransition,
		ErrConcurrentBookingConflict,
		ErrInternal,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// toDomainFilter конвертирует и валидирует фильтры запроса
func toDomainFilter(req *models.ListBookingsRequest) (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		EmployeeID: req.EmployeeID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
	}

	for name, id := range map[string]*int64{
		"employeeId": req.EmployeeID,
		"clientId":   req.ClientID,
		"serviceId":  req.ServiceID,
	} {
		if id != nil {
			if err := validate.ID(name, *id); err != nil {
				return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}

	if req.DateFrom != nil {
		from, err := validate.Date("dateFrom", *req.DateFrom)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.DateFrom = &from
	}
	if req.DateTo != nil {
		to, err := validate.Date("dateTo", *req.DateTo)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return filter, fmt.Errorf("%w: dateFrom must not be after dateTo", ErrInvalidInput)
	}

	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}

	return filter, nil
}
