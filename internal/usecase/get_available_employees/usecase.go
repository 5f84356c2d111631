package get_available_employees

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

// defaultMaxParallel сколько сотрудников проверяется одновременно, если лимит не задан
const defaultMaxParallel = 8

// UseCase use case поиска сотрудников, свободных для услуги в заданное время
type UseCase struct {
	serviceRepo ServiceRepository
	evaluator   SlotEvaluator
	maxParallel int
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
// maxParallel ограничивает число одновременных проверок (и соединений с БД)
func NewUseCase(serviceRepo ServiceRepository, evaluator SlotEvaluator, maxParallel int, logger Logger) *UseCase {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	return &UseCase{
		serviceRepo: serviceRepo,
		evaluator:   evaluator,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// Execute проверяет каждого сотрудника, оказывающего услугу, и возвращает свободных
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableEmployees: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)

	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableEmployees: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableEmployees: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GetAvailableEmployees: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	response := &Response{
		ServiceID:       service.ID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: service.DurationMinutes,
		EmployeeIDs:     []int64{},
	}

	if len(service.EmployeeIDs) == 0 {
		uc.logger.Info("GetAvailableEmployees: service id=%d has no employees", service.ID)
		return response, nil
	}

	var (
		mu   sync.Mutex
		free = make([]int64, 0, len(service.EmployeeIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.maxParallel)

	for _, employeeID := range service.EmployeeIDs {
		q := availability.SlotQuery{
			EmployeeID:      employeeID,
			Date:            date,
			Start:           req.StartTime,
			DurationMinutes: service.DurationMinutes,
		}

		g.Go(func() error {
			result, err := uc.evaluator.Evaluate(gctx, q)
			if err != nil {
				return fmt.Errorf("employee id=%d: %w", q.EmployeeID, err)
			}
			if result.Verdict != availability.VerdictFree {
				return nil
			}

			mu.Lock()
			free = append(free, q.EmployeeID)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Error("GetAvailableEmployees: evaluation failed for service id=%d: %v", service.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	response.EmployeeIDs = free

	uc.logger.Info("GetAvailableEmployees: service=%d date=%s time=%s free=%d/%d",
		service.ID, date.Format(domain.DateFormat), req.StartTime, len(free), len(service.EmployeeIDs))

	return response, nil
}
