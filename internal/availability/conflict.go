package availability

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Verdict результат проверки слота
type Verdict int

const (
	VerdictFree Verdict = iota
	VerdictOccupied
	VerdictOutsideWorkingHours
)

func (v Verdict) String() string {
	switch v {
	case VerdictFree:
		return "free"
	case VerdictOccupied:
		return "occupied"
	case VerdictOutsideWorkingHours:
		return "outside_working_hours"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Err ошибка для занятого или нерабочего слота, nil для свободного
func (v Verdict) Err() error {
	switch v {
	case VerdictOccupied:
		return ErrOccupied
	case VerdictOutsideWorkingHours:
		return ErrOutsideWorkingHours
	default:
		return nil
	}
}

// CheckSlot проверяет слот [start, start+duration)
// Слот должен целиком лежать в одном рабочем интервале и не пересекаться с занятым временем
func CheckSlot(working, occupied IntervalSet, start, duration int) Verdict {
	end := start + duration
	if duration <= 0 || start < 0 || end > DayMinutes {
		return VerdictOutsideWorkingHours
	}
	if !working.Contains(start, end) {
		return VerdictOutsideWorkingHours
	}
	if occupied.Overlaps(start, end) {
		return VerdictOccupied
	}
	return VerdictFree
}

// BookingInterval занятый бронированием интервал
func BookingInterval(b *domain.Booking) (Interval, error) {
	start, err := b.StartTime.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: booking id=%d: %v", ErrInvalidInterval, b.ID, err)
	}
	if b.DurationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: booking id=%d has duration %d", ErrInvalidInterval, b.ID, b.DurationMinutes)
	}
	return Interval{Start: start, End: start + b.DurationMinutes}, nil
}

// OccupiedFromBookings собирает занятое время из бронирований
// Родительские и дочерние бронирования учитываются каждое своим интервалом, отменённые пропускаются
func OccupiedFromBookings(bookings []*domain.Booking) (IntervalSet, []error) {
	var (
		raw     = make([]Interval, 0, len(bookings))
		skipped []error
	)
	for _, b := range bookings {
		if b == nil || !b.IsActive() {
			continue
		}
		in, err := BookingInterval(b)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		raw = append(raw, in)
	}
	return Normalize(raw), skipped
}
