package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CreateRequest данные нового приглашения
type CreateRequest struct {
	Email      string  `json:"email"`
	Role       string  `json:"role"`                 // employee или admin
	ServiceIDs []int64 `json:"serviceIds,omitempty"` // только для employee
}

// UpdateStatusRequest новый статус приглашения
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AcceptRequest принятие приглашения по токену
// Имя обязательно, если учётной записи с email приглашения ещё нет
type AcceptRequest struct {
	Token       string  `json:"token"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// DeclineRequest отказ от приглашения по токену
type DeclineRequest struct {
	Token string `json:"token"`
}

// ListQuery фильтр списка
type ListQuery struct {
	Email  *string
	Status *string
}

// InvitationResponse ответ с данными приглашения
type InvitationResponse struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ServiceIDs []int64   `json:"serviceIds"`
	Status     string    `json:"status"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// InvitationListResponse ответ со списком приглашений
type InvitationListResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

// AcceptResponse результат принятия приглашения
type AcceptResponse struct {
	InvitationID int64    `json:"invitationId"`
	UserID       int64    `json:"userId"`
	Roles        []string `json:"roles"`
	ServiceIDs   []int64  `json:"serviceIds"`
	UserCreated  bool     `json:"userCreated"`
}

// FromDomainInvitation конвертирует domain модель в DTO
func FromDomainInvitation(inv *domain.Invitation) *InvitationResponse {
	if inv == nil {
		return nil
	}

	serviceIDs := inv.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}

	return &InvitationResponse{
		ID:         inv.ID,
		Email:      inv.Email,
		Role:       string(inv.Role),
		ServiceIDs: serviceIDs,
		Status:     string(inv.Status),
		Token:      inv.Token,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

func FromDomainInvitationList(list []*domain.Invitation) *InvitationListResponse {
	resp := &InvitationListResponse{Invitations: make([]InvitationResponse, 0, len(list))}
	for _, inv := range list {
		resp.Invitations = append(resp.Invitations, *FromDomainInvitation(inv))
	}
	return resp
}
