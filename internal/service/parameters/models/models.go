package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// UpdateParametersRequest запрос на обновление параметров
// Все поля опциональны - обновляются только переданные значения
type UpdateParametersRequest struct {
	BusinessName         *string `json:"businessName,omitempty"`
	Description          *string `json:"description,omitempty"`
	Logo                 *string `json:"logo,omitempty"`
	ContactEmail         *string `json:"contactEmail,omitempty"`
	ContactPhone         *string `json:"contactPhone,omitempty"`
	Address              *string `json:"address,omitempty"`
	EmailNotifications   *bool   `json:"emailNotifications,omitempty"`
	SMSNotifications     *bool   `json:"smsNotifications,omitempty"`
	ReminderMinutes      *int    `json:"reminderMinutes,omitempty"`
	MinBookingDelayHours *int    `json:"minBookingDelayHours,omitempty"`
	MaxBookingDelayDays  *int    `json:"maxBookingDelayDays,omitempty"` // 0 = без ограничений
}

// ApplyTo применяет переданные поля к параметрам
func (r *UpdateParametersRequest) ApplyTo(p *domain.Parameters) {
	if r.BusinessName != nil {
		p.BusinessName = *r.BusinessName
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Logo != nil {
		p.Logo = r.Logo
	}
	if r.ContactEmail != nil {
		p.ContactEmail = r.ContactEmail
	}
	if r.ContactPhone != nil {
		p.ContactPhone = r.ContactPhone
	}
	if r.Address != nil {
		p.Address = r.Address
	}
	if r.EmailNotifications != nil {
		p.EmailNotifications = *r.EmailNotifications
	}
	if r.SMSNotifications != nil {
		p.SMSNotifications = *r.SMSNotifications
	}
	if r.ReminderMinutes != nil {
		p.ReminderMinutes = *r.ReminderMinutes
	}
	if r.MinBookingDelayHours != nil {
		p.MinBookingDelayHours = *r.MinBookingDelayHours
	}
	if r.MaxBookingDelayDays != nil {
		p.MaxBookingDelayDays = *r.MaxBookingDelayDays
	}
}

// Response модели

// ParametersResponse ответ с параметрами бизнеса
type ParametersResponse struct {
	BusinessName         string  `json:"businessName"`
	Description          *string `json:"description,omitempty"`
	Logo                 *string `json:"logo,omitempty"`
	ContactEmail         *string `json:"contactEmail,omitempty"`
	ContactPhone         *string `json:"contactPhone,omitempty"`
	Address              *string `json:"address,omitempty"`
	EmailNotifications   bool    `json:"emailNotifications"`
	SMSNotifications     bool    `json:"smsNotifications"`
	ReminderMinutes      int     `json:"reminderMinutes"`
	MinBookingDelayHours int     `json:"minBookingDelayHours"`
	MaxBookingDelayDays  int     `json:"maxBookingDelayDays"`
	IsDefault            bool    `json:"isDefault"` // true, пока параметры не сохранены

	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainParameters конвертирует domain модель в DTO
func FromDomainParameters(p *domain.Parameters) *ParametersResponse {
	if p == nil {
		return nil
	}

	resp := &ParametersResponse{
		BusinessName:         p.BusinessName,
		Description:          p.Description,
		Logo:                 p.Logo,
		ContactEmail:         p.ContactEmail,
		ContactPhone:         p.ContactPhone,
		Address:              p.Address,
		EmailNotifications:   p.EmailNotifications,
		SMSNotifications:     p.SMSNotifications,
		ReminderMinutes:      p.ReminderMinutes,
		MinBookingDelayHours: p.MinBookingDelayHours,
		MaxBookingDelayDays:  p.MaxBookingDelayDays,
		IsDefault:            p.ID == 0,
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
