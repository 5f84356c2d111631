package parameters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	parametersService "github.com/m04kA/SMC-AppointmentService/internal/service/parameters"
	"github.com/m04kA/SMC-AppointmentService/internal/service/parameters/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) Get(ctx context.Context) (*models.ParametersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParametersResponse), args.Error(1)
}

func (m *mockService) Update(ctx context.Context, caller domain.Principal, req *models.UpdateParametersRequest) (*models.ParametersResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParametersResponse), args.Error(1)
}

var admin = domain.Principal{UserID: 1, Roles: domain.NewRoleSet(domain.RoleAdmin)}

func put(h *Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPut, "/api/v1/parameters", strings.NewReader(body))
	r = r.WithContext(middleware.WithPrincipal(r.Context(), admin))
	rec := httptest.NewRecorder()
	h.Update(rec, r)
	return rec
}

func TestHandler_Get(t *testing.T) {
	svc := &mockService{}
	svc.On("Get", mock.Anything).Return(&models.ParametersResponse{
		MinBookingDelayHours: 1, MaxBookingDelayDays: 30, IsDefault: true,
	}, nil)
	rec := httptest.NewRecorder()

	NewHandler(svc, logger.Discard()).Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/parameters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isDefault":true`)
}

func TestHandler_UpdatePartial(t *testing.T) {
	svc := &mockService{}
	svc.On("Update", mock.Anything, admin, mock.MatchedBy(func(req *models.UpdateParametersRequest) bool {
		return req.MaxBookingDelayDays != nil && *req.MaxBookingDelayDays == 0 && req.BusinessName == nil
	})).Return(&models.ParametersResponse{}, nil)

	rec := put(NewHandler(svc, logger.Discard()), `{"maxBookingDelayDays":0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_UpdateErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{parametersService.ErrAccessDenied, http.StatusForbidden},
		{fmt.Errorf("%w: reminderMinutes: out of range", parametersService.ErrInvalidInput), http.StatusBadRequest},
		{parametersService.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		svc := &mockService{}
		svc.On("Update", mock.Anything, admin, mock.Anything).Return(nil, tt.err)

		assert.Equal(t, tt.code, put(NewHandler(svc, logger.Discard()), `{"reminderMinutes":5000}`).Code)
	}

	assert.Equal(t, http.StatusBadRequest, put(NewHandler(&mockService{}, logger.Discard()), `{"unknown":1}`).Code)
}
