package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createBooking.Response), args.Error(1)
}

const anonymousBody = `{
	"employeeId": 3,
	"serviceId": 2,
	"bookingDate": "2024-06-04",
	"startTime": "10:00",
	"message": "first visit",
	"client": {"firstName": "Anna", "lastName": "Petrova", "email": "anna@example.com"}
}`

func serve(ctx context.Context, h *Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Handle(rec, r)
	return rec
}

func TestHandler_Created(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Discard())
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createBooking.Request) bool {
		return req.Caller == nil &&
			req.EmployeeID == 3 &&
			req.Date.Equal(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)) &&
			req.StartTime == "10:00" &&
			req.Client != nil && req.Client.Email == "anna@example.com"
	})).Return(&createBooking.Response{
		ID: 15, EmployeeID: 3, ClientID: 9, ServiceID: 2,
		BookingDate: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00", EndTime: "10:30", DurationMinutes: 30,
		Status: "pending", ClientCreated: true, CreatedAt: now, UpdatedAt: now,
	}, nil)

	rec := serve(context.Background(), h, anonymousBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(15), resp.ID)
	assert.Equal(t, "2024-06-04", resp.BookingDate)
	assert.Equal(t, "10:30", resp.EndTime)
	assert.True(t, resp.ClientCreated)
	uc.AssertExpectations(t)
}

func TestHandler_PassesCaller(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Discard())
	ctx := middleware.WithPrincipal(context.Background(),
		domain.Principal{UserID: 9, Roles: domain.NewRoleSet(domain.RoleClient)})

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createBooking.Request) bool {
		return req.Caller != nil && req.Caller.UserID == 9 && req.Client == nil
	})).Return(&createBooking.Response{ID: 1, StartTime: "10:00", EndTime: "10:30"}, nil)

	rec := serve(ctx, h, `{"employeeId":3,"serviceId":2,"bookingDate":"2024-06-04","startTime":"10:00"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	uc.AssertExpectations(t)
}

func TestHandler_BadRequestBeforeUseCase(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"broken json", `{`, msgInvalidRequestBody},
		{"unknown field", `{"companyId": 1}`, msgInvalidRequestBody},
		{"bad date", `{"bookingDate":"04.06.2024","startTime":"10:00"}`, msgInvalidDate},
		{"bad time", `{"bookingDate":"2024-06-04","startTime":"25:00"}`, msgInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			rec := serve(context.Background(), NewHandler(uc, logger.Discard()), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body.Error)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"occupied", fmt.Errorf("%w: employee=3", availability.ErrOccupied), http.StatusConflict, msgSlotOccupied},
		{"outside hours", availability.ErrOutsideWorkingHours, http.StatusConflict, msgOutsideHours},
		{"concurrent", createBooking.ErrConcurrentBookingConflict, http.StatusConflict, msgConcurrentConflict},
		{"duplicate email", createBooking.ErrDuplicateEmail, http.StatusConflict, msgDuplicateEmail},
		{"service not found", createBooking.ErrServiceNotFound, http.StatusNotFound, msgServiceNotFound},
		{"employee not found", createBooking.ErrEmployeeNotFound, http.StatusNotFound, msgEmployeeNotFound},
		{"parent not found", createBooking.ErrParentBookingNotFound, http.StatusNotFound, msgParentNotFound},
		{"inactive", createBooking.ErrServiceInactive, http.StatusBadRequest, msgServiceInactive},
		{"not capable", createBooking.ErrEmployeeNotCapable, http.StatusBadRequest, msgEmployeeNotCapable},
		{"too late", fmt.Errorf("%w: must book at least 1 hours in advance", createBooking.ErrTooLateToBook),
			http.StatusBadRequest, msgTooLateToBook + ": must book at least 1 hours in advance"},
		{"invalid input", fmt.Errorf("%w: email: invalid format", createBooking.ErrInvalidInput),
			http.StatusBadRequest, msgInvalidInput + ": email: invalid format"},
		{"access denied", createBooking.ErrAccessDenied, http.StatusForbidden, msgForbidden},
		{"internal", createBooking.ErrInternal, http.StatusInternalServerError, "внутренняя ошибка сервера"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(context.Background(), NewHandler(uc, logger.Discard()), anonymousBody)

			assert.Equal(t, tt.code, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}
