package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service услуга, которую можно забронировать
type Service struct {
	ID              int64
	Name            string
	Description     *string
	DurationMinutes int
	Price           *float64
	IsActive        bool
	EmployeeIDs     []int64 // сотрудники, умеющие оказывать услугу

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration длительность в формате "HH:MM"
func (s *Service) Duration() string {
	return types.FormatDuration(s.DurationMinutes)
}

// HasEmployee true, если сотрудник может оказывать услугу
func (s *Service) HasEmployee(employeeID int64) bool {
	for _, id := range s.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
