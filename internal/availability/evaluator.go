package availability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/tracing"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// RuleRepository правила рабочих часов: регулярные для дня недели даты и исключения на саму дату
type RuleRepository interface {
	ListApplicable(ctx context.Context, employeeID int64, date time.Time) ([]domain.WorkingHourRule, error)
}

// AbsenceRepository отсутствия сотрудника, покрывающие дату
type AbsenceRepository interface {
	ListByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]domain.Absence, error)
}

// BookingRepository неотменённые бронирования сотрудника на дату
// Внутри транзакции реализация должна блокировать строки (FOR UPDATE)
type BookingRepository interface {
	ListActiveByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.Booking, error)
}

// VerdictObserver считает вердикты (метрики), может быть nil
type VerdictObserver interface {
	IncVerdict(verdict string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SlotQuery параметры проверки одного слота одного сотрудника
type SlotQuery struct {
	EmployeeID      int64
	Date            time.Time
	Start           types.TimeString
	DurationMinutes int
}

// SlotResult вердикт и наборы, по которым он получен
type SlotResult struct {
	EmployeeID int64
	Verdict    Verdict
	Working    IntervalSet
	Occupied   IntervalSet
}

// Evaluator читает расписание и бронирования сотрудника и проверяет слот
// Сам по себе не хранит состояния и безопасен для конкурентного использования
type Evaluator struct {
	rules    RuleRepository
	absences AbsenceRepository
	bookings BookingRepository
	observer VerdictObserver
	logger   Logger
}

func NewEvaluator(
	rules RuleRepository,
	absences AbsenceRepository,
	bookings BookingRepository,
	observer VerdictObserver,
	logger Logger,
) *Evaluator {
	return &Evaluator{
		rules:    rules,
		absences: absences,
		bookings: bookings,
		observer: observer,
		logger:   logger,
	}
}

// ResolveSchedule рабочее время сотрудника на дату
func (e *Evaluator) ResolveSchedule(ctx context.Context, employeeID int64, date time.Time) (Resolution, error) {
	rules, err := e.rules.ListApplicable(ctx, employeeID, date)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: list working hours for employee=%d: %w", ErrStorage, employeeID, err)
	}

	absences, err := e.absences.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: list absences for employee=%d: %w", ErrStorage, employeeID, err)
	}

	res := ResolveDay(date, rules, absences)
	for _, skipped := range res.Skipped {
		e.logger.Warn("Availability: employee=%d date=%s skipped: %v",
			employeeID, date.Format(domain.DateFormat), skipped)
	}
	return res, nil
}

// Evaluate проверяет, свободен ли сотрудник на слот
func (e *Evaluator) Evaluate(ctx context.Context, q SlotQuery) (SlotResult, error) {
	ctx, span := tracing.Tracer("availability").Start(ctx, "Evaluator.Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("employee.id", q.EmployeeID),
		attribute.String("slot.date", q.Date.Format(domain.DateFormat)),
		attribute.String("slot.start", q.Start.String()),
		attribute.Int("slot.duration_minutes", q.DurationMinutes),
	)

	start, err := q.Start.Minutes()
	if err != nil {
		return SlotResult{}, fmt.Errorf("%w: start: %v", ErrInvalidQuery, err)
	}
	if q.DurationMinutes <= 0 {
		return SlotResult{}, fmt.Errorf("%w: duration must be positive", ErrInvalidQuery)
	}

	res, err := e.ResolveSchedule(ctx, q.EmployeeID, q.Date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve schedule")
		return SlotResult{}, err
	}

	result := SlotResult{EmployeeID: q.EmployeeID, Working: res.Hours}

	// Нерабочее время определяется без чтения бронирований
	if !res.Hours.Contains(start, start+q.DurationMinutes) {
		result.Verdict = VerdictOutsideWorkingHours
		e.finish(span, result.Verdict)
		return result, nil
	}

	bookings, err := e.bookings.ListActiveByEmployeeAndDate(ctx, q.EmployeeID, q.Date)
	if err != nil {
		err = fmt.Errorf("%w: list bookings for employee=%d: %w", ErrStorage, q.EmployeeID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list bookings")
		return SlotResult{}, err
	}

	occupied, skipped := OccupiedFromBookings(bookings)
	for _, s := range skipped {
		e.logger.Warn("Availability: employee=%d skipped booking: %v", q.EmployeeID, s)
	}

	result.Occupied = occupied
	result.Verdict = CheckSlot(res.Hours, occupied, start, q.DurationMinutes)
	e.finish(span, result.Verdict)
	return result, nil
}

func (e *Evaluator) finish(span trace.Span, v Verdict) {
	span.SetAttributes(attribute.String("slot.verdict", v.String()))
	if e.observer != nil {
		e.observer.IncVerdict(v.String())
	}
}
