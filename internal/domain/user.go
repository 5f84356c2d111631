package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRole неизвестная роль
var ErrInvalidRole = errors.New("invalid role")

// Role роль пользователя
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

var roleBits = map[Role]RoleSet{
	RoleClient:   1 << 0,
	RoleEmployee: 1 << 1,
	RoleAdmin:    1 << 2,
}

// allRoles в порядке возрастания полномочий
var allRoles = []Role{RoleClient, RoleEmployee, RoleAdmin}

// ParseRole разбирает роль. "employé" принимается для старых данных
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return RoleClient, nil
	case "employee", "employé":
		return RoleEmployee, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// RoleSet набор ролей пользователя
type RoleSet uint8

func NewRoleSet(roles ...Role) RoleSet {
	var set RoleSet
	for _, r := range roles {
		set |= roleBits[r]
	}
	return set
}

// ParseRoleSet разбирает роли из строк (колонка roles text[])
func ParseRoleSet(values []string) (RoleSet, error) {
	var set RoleSet
	for _, v := range values {
		r, err := ParseRole(v)
		if err != nil {
			return 0, err
		}
		set |= roleBits[r]
	}
	return set, nil
}

func (s RoleSet) Has(r Role) bool {
	bit, ok := roleBits[r]
	return ok && s&bit != 0
}

func (s RoleSet) IsEmpty() bool {
	return s == 0
}

// IsStaff сотрудник или администратор
func (s RoleSet) IsStaff() bool {
	return s.Has(RoleEmployee) || s.Has(RoleAdmin)
}

func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Has(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// Capability действие, требующее авторизации
type Capability int

const (
	CapManageServices Capability = iota + 1
	CapManageParameters
	CapManageAnySchedule
	CapManageOwnSchedule
	CapViewAllBookings
	CapUpdateBookings
	CapDeleteBookings
	CapDeleteAbsences
	CapBookOnBehalf
	CapManageInvitations
)

var capabilityRoles = map[Capability]RoleSet{
	CapManageServices:    NewRoleSet(RoleAdmin),
	CapManageParameters:  NewRoleSet(RoleAdmin),
	CapManageAnySchedule: NewRoleSet(RoleAdmin),
	CapManageOwnSchedule: NewRoleSet(RoleEmployee, RoleAdmin),
	CapViewAllBookings:   NewRoleSet(RoleEmployee, RoleAdmin),
	CapUpdateBookings:    NewRoleSet(RoleEmployee, RoleAdmin),
	CapDeleteBookings:    NewRoleSet(RoleAdmin),
	CapDeleteAbsences:    NewRoleSet(RoleAdmin),
	CapBookOnBehalf:      NewRoleSet(RoleEmployee, RoleAdmin),
	CapManageInvitations: NewRoleSet(RoleAdmin),
}

// Can проверяет, даёт ли набор ролей право на действие
func Can(roles RoleSet, c Capability) bool {
	return roles&capabilityRoles[c] != 0
}

// User пользователь системы: клиент, сотрудник или администратор
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Roles        RoleSet
	PhoneNumber  *string
	PostalCode   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsEmployee() bool {
	return u.Roles.Has(RoleEmployee)
}

// Principal аутентифицированный пользователь запроса
type Principal struct {
	UserID int64
	Roles  RoleSet
}

func (p Principal) Can(c Capability) bool {
	return Can(p.Roles, c)
}

// ClientProfile данные клиента для бронирования без авторизации
type ClientProfile struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	PostalCode  *string
}
