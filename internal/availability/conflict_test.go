package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func booking(id int64, start string, duration int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:              id,
		EmployeeID:      1,
		StartTime:       types.TimeString(start),
		DurationMinutes: duration,
		Status:          status,
	}
}

func TestCheckSlot(t *testing.T) {
	working := NewIntervalSet(iv(9, 0, 17, 0))
	occupied := NewIntervalSet(iv(10, 0, 10, 30))

	tests := []struct {
		name     string
		start    int
		duration int
		want     Verdict
	}{
		{name: "exact match with booking", start: hm(10, 0), duration: 30, want: VerdictOccupied},
		{name: "partial overlap", start: hm(10, 15), duration: 30, want: VerdictOccupied},
		{name: "covers booking", start: hm(9, 30), duration: 90, want: VerdictOccupied},
		{name: "adjacent after", start: hm(10, 30), duration: 30, want: VerdictFree},
		{name: "adjacent before", start: hm(9, 30), duration: 30, want: VerdictFree},
		{name: "before opening", start: hm(8, 45), duration: 30, want: VerdictOutsideWorkingHours},
		{name: "past closing", start: hm(16, 45), duration: 30, want: VerdictOutsideWorkingHours},
		{name: "ends at closing", start: hm(16, 30), duration: 30, want: VerdictFree},
		{name: "zero duration", start: hm(12, 0), duration: 0, want: VerdictOutsideWorkingHours},
		{name: "past midnight", start: hm(23, 50), duration: 30, want: VerdictOutsideWorkingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckSlot(working, occupied, tt.start, tt.duration))
		})
	}
}

func TestCheckSlot_GapBetweenShifts(t *testing.T) {
	working := NewIntervalSet(iv(9, 0, 12, 0), iv(13, 0, 17, 0))

	assert.Equal(t, VerdictOutsideWorkingHours, CheckSlot(working, IntervalSet{}, hm(11, 30), 60))
	assert.Equal(t, VerdictFree, CheckSlot(working, IntervalSet{}, hm(13, 0), 60))
}

func TestCheckSlot_OutsideHoursBeatsOccupied(t *testing.T) {
	occupied := NewIntervalSet(iv(10, 0, 11, 0))

	assert.Equal(t, VerdictOutsideWorkingHours, CheckSlot(IntervalSet{}, occupied, hm(10, 0), 30))
}

func TestOccupiedFromBookings(t *testing.T) {
	parent := booking(1, "10:00", 30, domain.StatusConfirmed)
	child := booking(2, "10:30", 30, domain.StatusPending)
	child.ParentBookingID = ptr.Ptr(int64(1))
	cancelled := booking(3, "12:00", 60, domain.StatusCancelled)
	completed := booking(4, "08:00", 30, domain.StatusCompleted)
	broken := booking(5, "xx", 30, domain.StatusConfirmed)

	set, skipped := OccupiedFromBookings([]*domain.Booking{parent, child, cancelled, completed, broken, nil})

	assert.Equal(t, []Interval{iv(8, 0, 8, 30), iv(10, 0, 11, 0)}, set.Intervals())
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], ErrInvalidInterval)
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "free", VerdictFree.String())
	assert.NoError(t, VerdictFree.Err())
	assert.ErrorIs(t, VerdictOccupied.Err(), ErrOccupied)
	assert.ErrorIs(t, VerdictOutsideWorkingHours.Err(), ErrOutsideWorkingHours)
}

// Сценарии из требований к расчёту доступности
func TestScenarios(t *testing.T) {
	t.Run("absence on recurring monday", func(t *testing.T) {
		monday := date(2024, 6, 3)
		res := ResolveDay(monday,
			[]domain.WorkingHourRule{recurring(1, domain.Monday, "09:00", "17:00")},
			[]domain.Absence{absence(monday, monday)},
		)

		assert.Equal(t, VerdictOutsideWorkingHours, CheckSlot(res.Hours, IntervalSet{}, hm(10, 0), 30))
	})

	t.Run("non-priority exception unions with recurring", func(t *testing.T) {
		tuesday := date(2024, 6, 4)
		res := ResolveDay(tuesday, []domain.WorkingHourRule{
			recurring(1, domain.Tuesday, "09:00", "17:00"),
			exceptional(2, tuesday, "18:00", "20:00", false),
		}, nil)

		assert.Equal(t, []Interval{iv(9, 0, 17, 0), iv(18, 0, 20, 0)}, res.Hours.Intervals())
	})

	t.Run("overlapping booking", func(t *testing.T) {
		working := NewIntervalSet(iv(9, 0, 17, 0))
		occupied, _ := OccupiedFromBookings([]*domain.Booking{booking(1, "10:00", 30, domain.StatusConfirmed)})

		assert.Equal(t, VerdictOccupied, CheckSlot(working, occupied, hm(10, 15), 30))
	})
}
