package invitations

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/invitations/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// validateCreate проверяет приглашение и возвращает роль и услуги без дубликатов
func validateCreate(req *models.CreateRequest) (domain.Role, []int64, error) {
	if err := validate.Email("email", req.Email); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil || !domain.IsInvitableRole(role) {
		return "", nil, fmt.Errorf("%w: role must be employee or admin", ErrInvalidInput)
	}

	if role != domain.RoleEmployee && len(req.ServiceIDs) > 0 {
		return "", nil, fmt.Errorf("%w: serviceIds are allowed only for employee invitations", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(req.ServiceIDs))
	serviceIDs := make([]int64, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if err := validate.ID("serviceIds", id); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		serviceIDs = append(serviceIDs, id)
	}
	sort.Slice(serviceIDs, func(i, j int) bool { return serviceIDs[i] < serviceIDs[j] })

	return role, serviceIDs, nil
}

// validateToken токен приглашения это UUID
func validateToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return fmt.Errorf("%w: token is malformed", ErrInvalidInput)
	}
	return nil
}

func validateNewUser(req *models.AcceptRequest) error {
	err := validate.First(
		validate.Required("firstName", req.FirstName, domain.MaxNameLength),
		validate.Required("lastName", req.LastName, domain.MaxNameLength),
		validate.Phone("phoneNumber", req.PhoneNumber),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// parseAdminStatus администратор может только отозвать или отклонить приглашение
func parseAdminStatus(value string) (domain.InvitationStatus, error) {
	status, err := domain.ParseInvitationStatus(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if status != domain.InvitationRevoked && status != domain.InvitationDeclined {
		return "", fmt.Errorf("%w: status can be changed only to revoked or declined", ErrInvalidInput)
	}
	return status, nil
}
