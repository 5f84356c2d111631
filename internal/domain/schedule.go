package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidWeekday неизвестный день недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidRule правило рабочих часов заполнено некорректно
	ErrInvalidRule = errors.New("invalid working hour rule")

	// ErrInvalidAbsence отсутствие заполнено некорректно
	ErrInvalidAbsence = errors.New("invalid absence")
)

// Weekday день недели, понедельник = 1, воскресенье = 7
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayOf день недели даты
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// ParseWeekday принимает английское название ("Monday") или номер "1".."7"
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i := 1; i < len(weekdayNames); i++ {
		if weekdayNames[i] == name || fmt.Sprint(i) == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	name := weekdayNames[w]
	return strings.ToUpper(name[:1]) + name[1:]
}

// WorkingHourRule правило рабочих часов сотрудника
// Регулярное правило привязано к дню недели, исключение к конкретной дате
type WorkingHourRule struct {
	ID          int64
	EmployeeID  int64
	IsRecurring bool
	DayOfWeek   *Weekday   // только для регулярных
	Date        *time.Time // только для исключений
	StartTime   types.TimeString
	EndTime     types.TimeString
	Priority    bool // исключение с приоритетом полностью заменяет остальные правила на дату

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет согласованность правила перед записью
func (r *WorkingHourRule) Validate() error {
	if r.IsRecurring {
		if r.DayOfWeek == nil || !r.DayOfWeek.Valid() {
			return fmt.Errorf("%w: recurring rule requires dayOfWeek", ErrInvalidRule)
		}
	} else if r.Date == nil {
		return fmt.Errorf("%w: exceptional rule requires date", ErrInvalidRule)
	}

	start, err := r.StartTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidRule, err)
	}
	end, err := r.EndTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: endTime: %v", ErrInvalidRule, err)
	}
	if start >= end {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidRule)
	}
	return nil
}

// Absence период отсутствия сотрудника, даты включительно
type Absence struct {
	ID         int64
	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Absence) Validate() error {
	if a.StartDate.IsZero() || a.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidAbsence)
	}
	if DateOnly(a.StartDate).After(DateOnly(a.EndDate)) {
		return fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidAbsence)
	}
	return nil
}

// Covers true, если дата попадает в период отсутствия
func (a *Absence) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(a.StartDate)) && !d.After(DateOnly(a.EndDate))
}

// DateOnly отбрасывает время и часовой пояс, оставляя календарную дату
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate сравнивает календарные даты
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
