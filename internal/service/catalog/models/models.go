package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ServiceRequest данные для создания и обновления услуги
type ServiceRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Price           *float64 `json:"price,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`    // по умолчанию true
	EmployeeIDs     []int64  `json:"employeeIds,omitempty"` // только при создании
}

// ToDomain конвертирует запрос в domain модель
func (r *ServiceRequest) ToDomain() *domain.Service {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return &domain.Service{
		Name:            r.Name,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		IsActive:        active,
	}
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Duration        string   `json:"duration"` // "01:30"
	Price           *float64 `json:"price,omitempty"`
	IsActive        bool     `json:"isActive"`
	EmployeeIDs     []int64  `json:"employeeIds"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServiceListResponse ответ со списком услуг
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// ToggleResponse новое значение флага активности
type ToggleResponse struct {
	ID       int64 `json:"id"`
	IsActive bool  `json:"isActive"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}

	employeeIDs := s.EmployeeIDs
	if employeeIDs == nil {
		employeeIDs = []int64{}
	}

	return &ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		Duration:        s.Duration(),
		Price:           s.Price,
		IsActive:        s.IsActive,
		EmployeeIDs:     employeeIDs,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует список domain моделей в DTO
func FromDomainServiceList(services []*domain.Service) *ServiceListResponse {
	resp := &ServiceListResponse{
		Services: make([]ServiceResponse, 0, len(services)),
	}
	for _, s := range services {
		resp.Services = append(resp.Services, *FromDomainService(s))
	}
	return resp
}
