package models

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// WorkingHourRequest правило рабочих часов
// Для регулярного правила указывается dayOfWeek, для исключения date
type WorkingHourRequest struct {
	EmployeeID  int64   `json:"employeeId"`
	IsRecurring bool    `json:"isRecurring"`
	DayOfWeek   *string `json:"dayOfWeek,omitempty"` // "monday" или "1".."7"
	Date        *string `json:"date,omitempty"`      // "2024-06-03"
	StartTime   string  `json:"startTime"`           // "09:00"
	EndTime     string  `json:"endTime"`
	Priority    bool    `json:"priority"`
}

// WorkingHourResponse правило рабочих часов
type WorkingHourResponse struct {
	ID          int64   `json:"id"`
	EmployeeID  int64   `json:"employeeId"`
	IsRecurring bool    `json:"isRecurring"`
	DayOfWeek   *string `json:"dayOfWeek,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Priority    bool    `json:"priority"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkingHourListResponse список правил
type WorkingHourListResponse struct {
	WorkingHours []WorkingHourResponse `json:"workingHours"`
}

// AbsenceRequest период отсутствия, даты включительно
type AbsenceRequest struct {
	EmployeeID int64   `json:"employeeId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Reason     *string `json:"reason,omitempty"`
}

// AbsenceResponse период отсутствия
type AbsenceResponse struct {
	ID         int64   `json:"id"`
	EmployeeID int64   `json:"employeeId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Reason     *string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AbsenceListResponse список отсутствий
type AbsenceListResponse struct {
	Absences []AbsenceResponse `json:"absences"`
}

// TimeRange интервал рабочего времени
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayScheduleResponse рабочее время сотрудника на дату
type DayScheduleResponse struct {
	EmployeeID   int64       `json:"employeeId"`
	Date         string      `json:"date"`
	Source       string      `json:"source"`
	Absent       bool        `json:"absent"`
	Intervals    []TimeRange `json:"intervals"`
	TotalMinutes int         `json:"totalMinutes"`
}

// Методы конвертации

func FromDomainRule(r *domain.WorkingHourRule) WorkingHourResponse {
	resp := WorkingHourResponse{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		IsRecurring: r.IsRecurring,
		StartTime:   r.StartTime.String(),
		EndTime:     r.EndTime.String(),
		Priority:    r.Priority,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DayOfWeek != nil {
		day := strings.ToLower(r.DayOfWeek.String())
		resp.DayOfWeek = &day
	}
	if r.Date != nil {
		date := r.Date.Format(domain.DateFormat)
		resp.Date = &date
	}
	return resp
}

func FromDomainRules(rules []domain.WorkingHourRule) *WorkingHourListResponse {
	resp := &WorkingHourListResponse{WorkingHours: make([]WorkingHourResponse, 0, len(rules))}
	for i := range rules {
		resp.WorkingHours = append(resp.WorkingHours, FromDomainRule(&rules[i]))
	}
	return resp
}

func FromDomainAbsence(a *domain.Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		StartDate:  a.StartDate.Format(domain.DateFormat),
		EndDate:    a.EndDate.Format(domain.DateFormat),
		Reason:     a.Reason,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func FromDomainAbsences(absences []domain.Absence) *AbsenceListResponse {
	resp := &AbsenceListResponse{Absences: make([]AbsenceResponse, 0, len(absences))}
	for i := range absences {
		resp.Absences = append(resp.Absences, FromDomainAbsence(&absences[i]))
	}
	return resp
}

// FromResolution конвертирует рассчитанное рабочее время
func FromResolution(employeeID int64, date time.Time, res availability.Resolution) *DayScheduleResponse {
	intervals := res.Hours.Intervals()
	resp := &DayScheduleResponse{
		EmployeeID:   employeeID,
		Date:         date.Format(domain.DateFormat),
		Source:       string(res.Source),
		Absent:       res.Absent(),
		Intervals:    make([]TimeRange, 0, len(intervals)),
		TotalMinutes: res.Hours.TotalMinutes(),
	}
	for _, in := range intervals {
		resp.Intervals = append(resp.Intervals, TimeRange{
			Start: types.FormatDuration(in.Start),
			End:   types.FormatDuration(in.End),
		})
	}
	return resp
}
