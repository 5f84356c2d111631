package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Source откуда взято рабочее время на дату
type Source string

const (
	SourceNone        Source = "none"
	SourceAbsence     Source = "absence"
	SourcePriority    Source = "priority_exception"
	SourceExceptional Source = "exception_and_recurring"
	SourceRecurring   Source = "recurring"
)

// Resolution итоговое рабочее время сотрудника на дату
type Resolution struct {
	Hours   IntervalSet
	Source  Source
	Skipped []error // пропущенные некорректные правила, каждое оборачивает ErrInvalidInterval
}

// Absent сотрудник отсутствует весь день
func (r Resolution) Absent() bool {
	return r.Source == SourceAbsence
}

// ResolveDay сводит правила рабочих часов и отсутствия сотрудника в набор на одну дату
//
// Порядок:
//  1. отсутствие на дату - пустой набор, остальное не рассматривается
//  2. есть исключения с приоритетом - только их объединение
//  3. есть обычные исключения - они вместе с регулярными правилами дня недели
//  4. иначе только регулярные правила дня недели
//
// Некорректные правила не прерывают расчёт и попадают в Skipped
func ResolveDay(date time.Time, rules []domain.WorkingHourRule, absences []domain.Absence) Resolution {
	var skipped []error

	for i := range absences {
		a := &absences[i]
		if err := a.Validate(); err != nil {
			skipped = append(skipped, fmt.Errorf("%w: absence id=%d: %v", ErrInvalidInterval, a.ID, err))
			continue
		}
		if a.Covers(date) {
			return Resolution{Source: SourceAbsence, Skipped: skipped}
		}
	}

	weekday := domain.WeekdayOf(date)

	var recurring, exceptional, priority []Interval
	for i := range rules {
		r := &rules[i]

		applies := false
		if r.IsRecurring {
			applies = r.DayOfWeek != nil && *r.DayOfWeek == weekday
		} else {
			applies = r.Date != nil && domain.SameDate(*r.Date, date)
		}
		if !applies {
			continue
		}

		in, err := ruleInterval(r)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}

		switch {
		case r.IsRecurring:
			recurring = append(recurring, in)
		case r.Priority:
			priority = append(priority, in)
		default:
			exceptional = append(exceptional, in)
		}
	}

	switch {
	case len(priority) > 0:
		return Resolution{Hours: Normalize(priority), Source: SourcePriority, Skipped: skipped}
	case len(exceptional) > 0:
		return Resolution{
			Hours:   Normalize(exceptional).Union(Normalize(recurring)),
			Source:  SourceExceptional,
			Skipped: skipped,
		}
	case len(recurring) > 0:
		return Resolution{Hours: Normalize(recurring), Source: SourceRecurring, Skipped: skipped}
	default:
		return Resolution{Source: SourceNone, Skipped: skipped}
	}
}

func ruleInterval(r *domain.WorkingHourRule) (Interval, error) {
	start, err := r.StartTime.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: rule id=%d start %q: %v", ErrInvalidInterval, r.ID, r.StartTime, err)
	}
	end, err := r.EndTime.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: rule id=%d end %q: %v", ErrInvalidInterval, r.ID, r.EndTime, err)
	}
	if start >= end {
		return Interval{}, fmt.Errorf("%w: rule id=%d %s-%s", ErrInvalidInterval, r.ID, r.StartTime, r.EndTime)
	}
	return Interval{Start: start, End: end}, nil
}
