package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type mockRules struct{ mock.Mock }

func (m *mockRules) ListApplicable(ctx context.Context, employeeID int64, d time.Time) ([]domain.WorkingHourRule, error) {
	args := m.Called(ctx, employeeID, d)
	rules, _ := args.Get(0).([]domain.WorkingHourRule)
	return rules, args.Error(1)
}

type mockAbsences struct{ mock.Mock }

func (m *mockAbsences) ListByEmployeeAndDate(ctx context.Context, employeeID int64, d time.Time) ([]domain.Absence, error) {
	args := m.Called(ctx, employeeID, d)
	absences, _ := args.Get(0).([]domain.Absence)
	return absences, args.Error(1)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) ListActiveByEmployeeAndDate(ctx context.Context, employeeID int64, d time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, employeeID, d)
	bookings, _ := args.Get(0).([]*domain.Booking)
	return bookings, args.Error(1)
}

type countingObserver struct{ verdicts []string }

func (o *countingObserver) IncVerdict(v string) { o.verdicts = append(o.verdicts, v) }

func TestEvaluator_Evaluate(t *testing.T) {
	monday := date(2024, 6, 3)
	rules := []domain.WorkingHourRule{recurring(1, domain.Monday, "09:00", "17:00")}
	existing := []*domain.Booking{booking(10, "10:00", 30, domain.StatusConfirmed)}

	tests := []struct {
		name  string
		start string
		want  Verdict
	}{
		{name: "free slot", start: "11:00", want: VerdictFree},
		{name: "occupied slot", start: "10:15", want: VerdictOccupied},
		{name: "adjacent slot", start: "10:30", want: VerdictFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, a, b := &mockRules{}, &mockAbsences{}, &mockBookings{}
			obs := &countingObserver{}
			r.On("ListApplicable", mock.Anything, int64(1), monday).Return(rules, nil)
			a.On("ListByEmployeeAndDate", mock.Anything, int64(1), monday).Return([]domain.Absence(nil), nil)
			b.On("ListActiveByEmployeeAndDate", mock.Anything, int64(1), monday).Return(existing, nil)

			e := NewEvaluator(r, a, b, obs, logger.Discard())
			res, err := e.Evaluate(context.Background(), SlotQuery{
				EmployeeID:      1,
				Date:            monday,
				Start:           types.TimeString(tt.start),
				DurationMinutes: 30,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Verdict)
			assert.Equal(t, []string{tt.want.String()}, obs.verdicts)
			r.AssertExpectations(t)
			a.AssertExpectations(t)
			b.AssertExpectations(t)
		})
	}
}

func TestEvaluator_OutsideHoursSkipsBookings(t *testing.T) {
	monday := date(2024, 6, 3)
	r, a, b := &mockRules{}, &mockAbsences{}, &mockBookings{}
	r.On("ListApplicable", mock.Anything, int64(1), monday).
		Return([]domain.WorkingHourRule{recurring(1, domain.Monday, "09:00", "17:00")}, nil)
	a.On("ListByEmployeeAndDate", mock.Anything, int64(1), monday).
		Return([]domain.Absence{absence(monday, monday)}, nil)

	e := NewEvaluator(r, a, b, nil, logger.Discard())
	res, err := e.Evaluate(context.Background(), SlotQuery{EmployeeID: 1, Date: monday, Start: "10:00", DurationMinutes: 30})

	require.NoError(t, err)
	assert.Equal(t, VerdictOutsideWorkingHours, res.Verdict)
	b.AssertNotCalled(t, "ListActiveByEmployeeAndDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluator_StorageErrors(t *testing.T) {
	monday := date(2024, 6, 3)
	dbErr := errors.New("connection reset")

	r, a, b := &mockRules{}, &mockAbsences{}, &mockBookings{}
	r.On("ListApplicable", mock.Anything, int64(1), monday).Return(nil, dbErr)

	e := NewEvaluator(r, a, b, nil, logger.Discard())
	_, err := e.Evaluate(context.Background(), SlotQuery{EmployeeID: 1, Date: monday, Start: "10:00", DurationMinutes: 30})

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, dbErr)
}

func TestEvaluator_InvalidQuery(t *testing.T) {
	e := NewEvaluator(&mockRules{}, &mockAbsences{}, &mockBookings{}, nil, logger.Discard())

	_, err := e.Evaluate(context.Background(), SlotQuery{EmployeeID: 1, Date: date(2024, 6, 3), Start: "25:00", DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = e.Evaluate(context.Background(), SlotQuery{EmployeeID: 1, Date: date(2024, 6, 3), Start: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestEvaluator_ResolveSchedule(t *testing.T) {
	tuesday := date(2024, 6, 4)
	r, a := &mockRules{}, &mockAbsences{}
	r.On("ListApplicable", mock.Anything, int64(7), tuesday).Return([]domain.WorkingHourRule{
		recurring(1, domain.Tuesday, "09:00", "17:00"),
		exceptional(2, tuesday, "18:00", "20:00", false),
		recurring(3, domain.Tuesday, "19:00", "18:00"),
	}, nil)
	a.On("ListByEmployeeAndDate", mock.Anything, int64(7), tuesday).Return([]domain.Absence(nil), nil)

	e := NewEvaluator(r, a, &mockBookings{}, nil, logger.Discard())
	res, err := e.ResolveSchedule(context.Background(), 7, tuesday)

	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(9, 0, 17, 0), iv(18, 0, 20, 0)}, res.Hours.Intervals())
	assert.Len(t, res.Skipped, 1)
}
