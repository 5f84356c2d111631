package change_booking_status

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) ChangeStatus(ctx context.Context, caller domain.Principal, req *models.ChangeStatusRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

var employee = domain.Principal{UserID: 3, Roles: domain.NewRoleSet(domain.RoleEmployee)}

func patch(h *Handler, id, action string, withCaller bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+id+"/"+action, nil)
	r = mux.SetURLVars(r, map[string]string{"bookingId": id, "action": action})
	if withCaller {
		r = r.WithContext(middleware.WithPrincipal(r.Context(), employee))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, r)
	return rec
}

func TestHandler_Confirm(t *testing.T) {
	svc := &mockService{}
	svc.On("ChangeStatus", mock.Anything, employee, &models.ChangeStatusRequest{BookingID: 15, Action: models.ActionConfirm}).
		Return(&models.BookingResponse{ID: 15, Status: "confirmed"}, nil)

	rec := patch(NewHandler(svc, logger.Discard()), "15", "confirm", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
	svc.AssertExpectations(t)
}

func TestHandler_RejectsBeforeService(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Discard())

	assert.Equal(t, http.StatusBadRequest, patch(h, "abc", "confirm", true).Code)
	assert.Equal(t, http.StatusBadRequest, patch(h, "15", "archive", true).Code)
	assert.Equal(t, http.StatusUnauthorized, patch(h, "15", "cancel", false).Code)
	svc.AssertNotCalled(t, "ChangeStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{bookings.ErrBookingNotFound, http.StatusNotFound},
		{bookings.ErrAccessDenied, http.StatusForbidden},
		{fmt.Errorf("%w: cancelled -> confirmed", bookings.ErrInvalidTransition), http.StatusConflict},
		{bookings.ErrConcurrentBookingConflict, http.StatusConflict},
		{bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		svc := &mockService{}
		svc.On("ChangeStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

		rec := patch(NewHandler(svc, logger.Discard()), "15", "complete", true)

		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}
