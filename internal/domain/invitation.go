package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInvitationStatus неизвестный статус приглашения
var ErrInvalidInvitationStatus = errors.New("invalid invitation status")

// InvitationStatus статус приглашения сотрудника или администратора
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationRevoked  InvitationStatus = "revoked"
)

func ParseInvitationStatus(s string) (InvitationStatus, error) {
	switch st := InvitationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationRevoked:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidInvitationStatus, s)
	}
}

// IsFinal приглашение больше нельзя принять или отклонить
func (s InvitationStatus) IsFinal() bool {
	return s != InvitationPending
}

// Invitation приглашение в команду
// ServiceIDs назначаются сотруднику при принятии
type Invitation struct {
	ID         int64
	Email      string
	Role       Role
	ServiceIDs []int64
	Status     InvitationStatus
	Token      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvitationsFilter фильтр списка приглашений, nil поля не фильтруют
type InvitationsFilter struct {
	Email  *string
	Status *InvitationStatus
}

// IsInvitableRole приглашать можно только персонал
func IsInvitableRole(r Role) bool {
	return r == RoleEmployee || r == RoleAdmin
}
