package availability

import "errors"

var (
	// ErrInvalidInterval правило или отсутствие с некорректными границами, пропускается
	ErrInvalidInterval = errors.New("availability: invalid interval")

	// ErrOutsideWorkingHours слот не помещается в рабочее время сотрудника
	ErrOutsideWorkingHours = errors.New("availability: slot is outside working hours")

	// ErrOccupied слот пересекается с существующим бронированием
	ErrOccupied = errors.New("availability: slot is occupied")

	// ErrInvalidQuery некорректные параметры проверки слота
	ErrInvalidQuery = errors.New("availability: invalid slot query")

	// ErrStorage ошибка чтения расписания или бронирований
	ErrStorage = errors.New("availability: storage error")
)
