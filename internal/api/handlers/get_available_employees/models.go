package get_available_employees

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableEmployees "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_employees"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	errInvalidServiceID = errors.New("invalid serviceId")
	errInvalidDate      = errors.New("invalid date")
	errInvalidTime      = errors.New("invalid time")
)

// AvailableEmployeesResponse HTTP response model
type AvailableEmployeesResponse struct {
	ServiceID       int64   `json:"serviceId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	EmployeeIDs     []int64 `json:"employeeIds"`
}

// ToUseCaseRequest парсит query параметры serviceId, date, time
func ToUseCaseRequest(serviceIDStr, dateStr, timeStr string) (*getAvailableEmployees.Request, error) {
	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidServiceID, serviceIDStr)
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidDate, dateStr)
	}

	startTime, err := types.NewTimeStringFromString(timeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidTime, timeStr)
	}

	return &getAvailableEmployees.Request{
		ServiceID: serviceID,
		Date:      date,
		StartTime: startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableEmployees.Response) *AvailableEmployeesResponse {
	ids := resp.EmployeeIDs
	if ids == nil {
		ids = []int64{}
	}
	return &AvailableEmployeesResponse{
		ServiceID:       resp.ServiceID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		EmployeeIDs:     ids,
	}
}
