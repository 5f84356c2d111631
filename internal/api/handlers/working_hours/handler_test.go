package working_hours

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) ListWorkingHours(ctx context.Context, employeeID int64) (*models.WorkingHourListResponse, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHourListResponse), args.Error(1)
}

func (m *mockService) CreateWorkingHour(ctx context.Context, caller domain.Principal, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHourResponse), args.Error(1)
}

func (m *mockService) UpdateWorkingHour(ctx context.Context, caller domain.Principal, id int64, req *models.WorkingHourRequest) (*models.WorkingHourResponse, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHourResponse), args.Error(1)
}

func (m *mockService) DeleteWorkingHour(ctx context.Context, caller domain.Principal, id int64) error {
	return m.Called(ctx, caller, id).Error(0)
}

var employee = domain.Principal{UserID: 3, Roles: domain.NewRoleSet(domain.RoleEmployee)}

func TestHandler_List(t *testing.T) {
	svc := &mockService{}
	svc.On("ListWorkingHours", mock.Anything, int64(3)).
		Return(&models.WorkingHourListResponse{WorkingHours: []models.WorkingHourResponse{}}, nil)
	h := NewHandler(svc, logger.Discard())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/working-hours?employeeId=3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"workingHours":[]`)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/working-hours", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create(t *testing.T) {
	svc := &mockService{}
	svc.On("CreateWorkingHour", mock.Anything, employee, mock.MatchedBy(func(req *models.WorkingHourRequest) bool {
		return req.IsRecurring && *req.DayOfWeek == "monday" && req.StartTime == "09:00"
	})).Return(&models.WorkingHourResponse{ID: 7, EmployeeID: 3}, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/working-hours", strings.NewReader(
		`{"employeeId":3,"isRecurring":true,"dayOfWeek":"monday","startTime":"09:00","endTime":"17:00"}`))
	r = r.WithContext(middleware.WithPrincipal(r.Context(), employee))
	rec := httptest.NewRecorder()

	NewHandler(svc, logger.Discard()).Create(rec, r)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_UpdateErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{schedule.ErrRuleNotFound, http.StatusNotFound},
		{schedule.ErrAccessDenied, http.StatusForbidden},
		{fmt.Errorf("%w: startTime must be before endTime", schedule.ErrInvalidInput), http.StatusBadRequest},
		{schedule.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		svc := &mockService{}
		svc.On("UpdateWorkingHour", mock.Anything, employee, int64(7), mock.Anything).Return(nil, tt.err)

		r := httptest.NewRequest(http.MethodPut, "/api/v1/working-hours/7", strings.NewReader(
			`{"employeeId":3,"isRecurring":true,"dayOfWeek":"monday","startTime":"18:00","endTime":"17:00"}`))
		r = mux.SetURLVars(r, map[string]string{"ruleId": "7"})
		r = r.WithContext(middleware.WithPrincipal(r.Context(), employee))
		rec := httptest.NewRecorder()

		NewHandler(svc, logger.Discard()).Update(rec, r)

		assert.Equal(t, tt.code, rec.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	svc := &mockService{}
	svc.On("DeleteWorkingHour", mock.Anything, employee, int64(7)).Return(nil)

	r := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/v1/working-hours/7", nil),
		map[string]string{"ruleId": "7"})
	r = r.WithContext(middleware.WithPrincipal(r.Context(), employee))
	rec := httptest.NewRecorder()

	NewHandler(svc, logger.Discard()).Delete(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
