package list_bookings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) List(ctx context.Context, caller domain.Principal, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingListResponse), args.Error(1)
}

var admin = domain.Principal{UserID: 1, Roles: domain.NewRoleSet(domain.RoleAdmin)}

func list(h *Handler, query string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?"+query, nil)
	r = r.WithContext(middleware.WithPrincipal(r.Context(), admin))
	rec := httptest.NewRecorder()
	h.Handle(rec, r)
	return rec
}

func TestHandler_Filters(t *testing.T) {
	svc := &mockService{}
	svc.On("List", mock.Anything, admin, mock.MatchedBy(func(req *models.ListBookingsRequest) bool {
		return *req.EmployeeID == 3 && req.ClientID == nil &&
			*req.DateFrom == "2024-06-03" && *req.Status == "confirmed"
	})).Return(&models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}}}, nil)

	rec := list(NewHandler(svc, logger.Discard()), "employeeId=3&dateFrom=2024-06-03&status=confirmed")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_BadQuery(t *testing.T) {
	svc := &mockService{}
	rec := list(NewHandler(svc, logger.Discard()), "clientId=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_InvalidFilterFromService(t *testing.T) {
	svc := &mockService{}
	svc.On("List", mock.Anything, admin, mock.Anything).
		Return(nil, fmt.Errorf("%w: status: unknown value", bookings.ErrInvalidInput))

	rec := list(NewHandler(svc, logger.Discard()), "status=archived")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "status: unknown value")
}
