package schedule

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
	"github.com/m04kA/SMC-AppointmentService/pkg/validate"
)

// toDomainRule валидирует запрос и собирает правило рабочих часов
func toDomainRule(req *models.WorkingHourRequest) (*domain.WorkingHourRule, error) {
	if err := validate.ID("employeeId", req.EmployeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
	}

	rule := &domain.WorkingHourRule{
		EmployeeID:  req.EmployeeID,
		IsRecurring: req.IsRecurring,
		StartTime:   start,
		EndTime:     end,
		Priority:    req.Priority,
	}

	if req.IsRecurring {
		if req.Date != nil {
			return nil, fmt.Errorf("%w: recurring rule must not have a date", ErrInvalidInput)
		}
		if req.Priority {
			return nil, fmt.Errorf("%w: only exceptions can have priority", ErrInvalidInput)
		}
		if req.DayOfWeek == nil {
			return nil, fmt.Errorf("%w: dayOfWeek is required", ErrInvalidInput)
		}
		day, err := domain.ParseWeekday(*req.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("%w: dayOfWeek: %v", ErrInvalidInput, err)
		}
		rule.DayOfWeek = &day
	} else {
		if req.DayOfWeek != nil {
			return nil, fmt.Errorf("%w: exception must not have a dayOfWeek", ErrInvalidInput)
		}
		if req.Date == nil {
			return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
		}
		date, err := validate.Date("date", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		rule.Date = &date
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return rule, nil
}

// toDomainAbsence валидирует запрос и собирает период отсутствия
func toDomainAbsence(req *models.AbsenceRequest) (*domain.Absence, error) {
	if err := validate.ID("employeeId", req.EmployeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.OptionalMaxLength("reason", req.Reason, domain.MaxReasonLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start, err := validate.Date("startDate", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := validate.Date("endDate", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	absence := &domain.Absence{
		EmployeeID: req.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	}
	if err := absence.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return absence, nil
}
