package get_available_employees

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if err := validate.ID("serviceId", req.ServiceID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	return nil
}
