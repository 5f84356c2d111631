package catalog

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// validateService проверяет поля услуги
func validateService(req *models.ServiceRequest) error {
	err := validate.First(
		validate.Required("name", req.Name, domain.MaxNameLength),
		validate.OptionalMaxLength("description", req.Description, domain.MaxDescriptionLength),
		validate.Range("durationMinutes", req.DurationMinutes, 1, domain.MaxServiceDurationMinutes),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	return nil
}

// normalizeEmployeeIDs проверяет ID и убирает дубликаты, порядок по возрастанию
func normalizeEmployeeIDs(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))

	for _, id := range ids {
		if err := validate.ID("employeeIds", id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}
