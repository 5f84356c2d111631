package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recurring(id int64, wd domain.Weekday, start, end string) domain.WorkingHourRule {
	return domain.WorkingHourRule{
		ID:          id,
		EmployeeID:  1,
		IsRecurring: true,
		DayOfWeek:   ptr.Ptr(wd),
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
	}
}

func exceptional(id int64, d time.Time, start, end string, priority bool) domain.WorkingHourRule {
	return domain.WorkingHourRule{
		ID:         id,
		EmployeeID: 1,
		Date:       ptr.Ptr(d),
		StartTime:  types.TimeString(start),
		EndTime:    types.TimeString(end),
		Priority:   priority,
	}
}

func absence(from, to time.Time) domain.Absence {
	return domain.Absence{EmployeeID: 1, StartDate: from, EndDate: to}
}

func TestResolveDay_RecurringOnly(t *testing.T) {
	monday := date(2024, 6, 3)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Monday, "09:00", "12:00"),
		recurring(2, domain.Monday, "13:00", "17:00"),
		recurring(3, domain.Tuesday, "08:00", "20:00"),
	}

	res := ResolveDay(monday, rules, nil)

	assert.Equal(t, SourceRecurring, res.Source)
	assert.Equal(t, []Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)}, res.Hours.Intervals())
	assert.Empty(t, res.Skipped)
}

func TestResolveDay_AbsenceWins(t *testing.T) {
	monday := date(2024, 6, 3)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Monday, "09:00", "17:00"),
		exceptional(2, monday, "18:00", "20:00", true),
	}

	res := ResolveDay(monday, rules, []domain.Absence{absence(monday, monday)})

	assert.True(t, res.Absent())
	assert.True(t, res.Hours.IsEmpty())
}

func TestResolveDay_AbsenceRangeInclusive(t *testing.T) {
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Monday, "09:00", "17:00"),
		recurring(2, domain.Wednesday, "09:00", "17:00"),
		recurring(3, domain.Thursday, "09:00", "17:00"),
	}
	absences := []domain.Absence{absence(date(2024, 6, 3), date(2024, 6, 5))}

	assert.True(t, ResolveDay(date(2024, 6, 3), rules, absences).Hours.IsEmpty())
	assert.True(t, ResolveDay(date(2024, 6, 5), rules, absences).Hours.IsEmpty())
	assert.False(t, ResolveDay(date(2024, 6, 6), rules, absences).Hours.IsEmpty())
}

func TestResolveDay_PriorityReplacesEverything(t *testing.T) {
	tuesday := date(2024, 6, 4)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Tuesday, "09:00", "17:00"),
		exceptional(2, tuesday, "18:00", "20:00", false),
		exceptional(3, tuesday, "10:00", "12:00", true),
		exceptional(4, tuesday, "14:00", "15:00", true),
	}

	res := ResolveDay(tuesday, rules, nil)

	assert.Equal(t, SourcePriority, res.Source)
	assert.Equal(t, []Interval{iv(10, 0, 12, 0), iv(14, 0, 15, 0)}, res.Hours.Intervals())
}

func TestResolveDay_ExceptionAddsToRecurring(t *testing.T) {
	tuesday := date(2024, 6, 4)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Tuesday, "09:00", "17:00"),
		exceptional(2, tuesday, "18:00", "20:00", false),
	}

	res := ResolveDay(tuesday, rules, nil)

	assert.Equal(t, SourceExceptional, res.Source)
	assert.Equal(t, []Interval{iv(9, 0, 17, 0), iv(18, 0, 20, 0)}, res.Hours.Intervals())
}

func TestResolveDay_ExceptionForOtherDateIgnored(t *testing.T) {
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Tuesday, "09:00", "17:00"),
		exceptional(2, date(2024, 6, 11), "06:00", "08:00", true),
	}

	res := ResolveDay(date(2024, 6, 4), rules, nil)

	assert.Equal(t, SourceRecurring, res.Source)
	assert.Equal(t, []Interval{iv(9, 0, 17, 0)}, res.Hours.Intervals())
}

func TestResolveDay_ExceptionOnDayWithoutRecurring(t *testing.T) {
	sunday := date(2024, 6, 9)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Monday, "09:00", "17:00"),
		exceptional(2, sunday, "10:00", "14:00", false),
	}

	res := ResolveDay(sunday, rules, nil)

	assert.Equal(t, []Interval{iv(10, 0, 14, 0)}, res.Hours.Intervals())
}

func TestResolveDay_NoRules(t *testing.T) {
	res := ResolveDay(date(2024, 6, 9), nil, nil)

	assert.Equal(t, SourceNone, res.Source)
	assert.True(t, res.Hours.IsEmpty())
}

func TestResolveDay_InvalidRulesSkipped(t *testing.T) {
	monday := date(2024, 6, 3)
	rules := []domain.WorkingHourRule{
		recurring(1, domain.Monday, "09:00", "12:00"),
		recurring(2, domain.Monday, "17:00", "13:00"),
		recurring(3, domain.Monday, "ab:cd", "15:00"),
		exceptional(4, monday, "12:00", "12:00", true),
	}

	res := ResolveDay(monday, rules, nil)

	assert.Equal(t, SourceRecurring, res.Source, "invalid priority rule does not override")
	assert.Equal(t, []Interval{iv(9, 0, 12, 0)}, res.Hours.Intervals())
	require.Len(t, res.Skipped, 3)
	for _, err := range res.Skipped {
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
}

func TestResolveDay_InvalidAbsenceSkipped(t *testing.T) {
	monday := date(2024, 6, 3)
	rules := []domain.WorkingHourRule{recurring(1, domain.Monday, "09:00", "17:00")}
	absences := []domain.Absence{absence(date(2024, 6, 5), date(2024, 6, 1))}

	res := ResolveDay(monday, rules, absences)

	assert.False(t, res.Absent())
	assert.Equal(t, []Interval{iv(9, 0, 17, 0)}, res.Hours.Intervals())
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0], ErrInvalidInterval)
}
