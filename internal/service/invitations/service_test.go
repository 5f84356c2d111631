package invitations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	invitationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/invitation"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/service/invitations/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const token = "0b7f4a3e-5c1d-4a8e-9f2b-6d3c8e1a7b90"

type mockInvitations struct{ mock.Mock }

func (m *mockInvitations) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	args := m.Called(ctx, inv)
	if created, ok := args.Get(0).(*domain.Invitation); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvitations) GetByID(ctx context.Context, id int64) (*domain.Invitation, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*domain.Invitation); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvitations) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	args := m.Called(ctx, token)
	if inv, ok := args.Get(0).(*domain.Invitation); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvitations) List(ctx context.Context, filter domain.InvitationsFilter) ([]*domain.Invitation, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]*domain.Invitation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvitations) UpdateStatus(ctx context.Context, id int64, from, to domain.InvitationStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockInvitations) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) SetRoles(ctx context.Context, id int64, roles domain.RoleSet) error {
	return m.Called(ctx, id, roles).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.Service); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) AssignEmployee(ctx context.Context, employeeID int64, serviceIDs []int64) error {
	return m.Called(ctx, employeeID, serviceIDs).Error(0)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

var (
	admin  = domain.Principal{UserID: 1, Roles: domain.NewRoleSet(domain.RoleAdmin)}
	worker = domain.Principal{UserID: 3, Roles: domain.NewRoleSet(domain.RoleEmployee)}
)

type env struct {
	svc         *Service
	invitations *mockInvitations
	users       *mockUsers
	catalog     *mockCatalog
}

func newEnv() *env {
	e := &env{invitations: &mockInvitations{}, users: &mockUsers{}, catalog: &mockCatalog{}}
	e.svc = NewService(e.invitations, e.users, e.catalog, inlineTx{}, logger.Discard()).
		WithPasswordCost(bcrypt.MinCost)
	return e
}

func pending(role domain.Role, serviceIDs ...int64) *domain.Invitation {
	return &domain.Invitation{
		ID:         10,
		Email:      "marie@example.com",
		Role:       role,
		ServiceIDs: serviceIDs,
		Status:     domain.InvitationPending,
		Token:      token,
	}
}

func TestService_Create(t *testing.T) {
	e := newEnv()
	e.catalog.On("GetByID", mock.Anything, int64(1)).Return(&domain.Service{ID: 1}, nil)
	e.catalog.On("GetByID", mock.Anything, int64(4)).Return(&domain.Service{ID: 4}, nil)
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").Return(nil, userRepo.ErrUserNotFound)
	e.invitations.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invitation) bool {
		_, err := uuid.Parse(inv.Token)
		return err == nil &&
			inv.Role == domain.RoleEmployee &&
			inv.Status == domain.InvitationPending &&
			assert.ObjectsAreEqual([]int64{1, 4}, inv.ServiceIDs)
	})).Return(&domain.Invitation{ID: 10, Email: "marie@example.com", Role: domain.RoleEmployee, ServiceIDs: []int64{1, 4}, Status: domain.InvitationPending, Token: token}, nil)

	resp, err := e.svc.Create(context.Background(), admin, &models.CreateRequest{
		Email:      "marie@example.com",
		Role:       "employee",
		ServiceIDs: []int64{4, 1, 4},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, token, resp.Token)
	e.invitations.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	cases := map[string]*models.CreateRequest{
		"bad email":          {Email: "not-an-email", Role: "employee"},
		"client role":        {Email: "marie@example.com", Role: "client"},
		"unknown role":       {Email: "marie@example.com", Role: "owner"},
		"services for admin": {Email: "marie@example.com", Role: "admin", ServiceIDs: []int64{1}},
		"bad service id":     {Email: "marie@example.com", Role: "employee", ServiceIDs: []int64{0}},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv()
			_, err := e.svc.Create(context.Background(), admin, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			e.invitations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_RequiresAdmin(t *testing.T) {
	e := newEnv()

	_, err := e.svc.Create(context.Background(), worker, &models.CreateRequest{Email: "marie@example.com", Role: "employee"})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Create_UnknownService(t *testing.T) {
	e := newEnv()
	e.catalog.On("GetByID", mock.Anything, int64(9)).Return(nil, catalogRepo.ErrServiceNotFound)

	_, err := e.svc.Create(context.Background(), admin, &models.CreateRequest{
		Email: "marie@example.com", Role: "employee", ServiceIDs: []int64{9},
	})

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	e := newEnv()
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").Return(nil, userRepo.ErrUserNotFound)
	e.invitations.On("Create", mock.Anything, mock.Anything).Return(nil, invitationRepo.ErrInvitationExists)

	_, err := e.svc.Create(context.Background(), admin, &models.CreateRequest{Email: "marie@example.com", Role: "admin"})

	assert.ErrorIs(t, err, ErrInvitationExists)
}

func TestService_Create_AlreadyMember(t *testing.T) {
	e := newEnv()
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").
		Return(&domain.User{ID: 7, Roles: domain.NewRoleSet(domain.RoleEmployee)}, nil)

	_, err := e.svc.Create(context.Background(), admin, &models.CreateRequest{Email: "marie@example.com", Role: "employee"})

	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestService_List_ParsesStatus(t *testing.T) {
	e := newEnv()
	status := domain.InvitationAccepted
	e.invitations.On("List", mock.Anything, domain.InvitationsFilter{Status: &status}).
		Return([]*domain.Invitation{{ID: 1, Role: domain.RoleAdmin, Status: status}}, nil)

	resp, err := e.svc.List(context.Background(), admin, models.ListQuery{Status: ptr.Ptr("accepted")})
	require.NoError(t, err)
	require.Len(t, resp.Invitations, 1)
	assert.Equal(t, []int64{}, resp.Invitations[0].ServiceIDs)

	_, err = e.svc.List(context.Background(), admin, models.ListQuery{Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_UpdateStatus_Revoke(t *testing.T) {
	e := newEnv()
	e.invitations.On("GetByID", mock.Anything, int64(10)).Return(pending(domain.RoleAdmin), nil)
	e.invitations.On("UpdateStatus", mock.Anything, int64(10), domain.InvitationPending, domain.InvitationRevoked).Return(nil)

	resp, err := e.svc.UpdateStatus(context.Background(), admin, 10, &models.UpdateStatusRequest{Status: "revoked"})

	require.NoError(t, err)
	assert.Equal(t, "revoked", resp.Status)
}

func TestService_UpdateStatus_Rules(t *testing.T) {
	e := newEnv()
	accepted := pending(domain.RoleEmployee)
	accepted.Status = domain.InvitationAccepted
	e.invitations.On("GetByID", mock.Anything, int64(10)).Return(accepted, nil)

	_, err := e.svc.UpdateStatus(context.Background(), admin, 10, &models.UpdateStatusRequest{Status: "accepted"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.UpdateStatus(context.Background(), admin, 10, &models.UpdateStatusRequest{Status: "revoked"})
	assert.ErrorIs(t, err, ErrInvitationNotPending)
	e.invitations.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Delete_NotFound(t *testing.T) {
	e := newEnv()
	e.invitations.On("Delete", mock.Anything, int64(404)).Return(invitationRepo.ErrInvitationNotFound)

	assert.ErrorIs(t, e.svc.Delete(context.Background(), admin, 404), ErrInvitationNotFound)
}

func TestService_Accept_CreatesEmployee(t *testing.T) {
	e := newEnv()
	e.invitations.On("GetByToken", mock.Anything, token).Return(pending(domain.RoleEmployee, 1, 4), nil)
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").Return(nil, userRepo.ErrUserNotFound)
	e.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		cost, err := bcrypt.Cost([]byte(u.PasswordHash))
		return err == nil && cost == bcrypt.MinCost &&
			u.Email == "marie@example.com" &&
			u.Roles == domain.NewRoleSet(domain.RoleEmployee)
	})).Return(&domain.User{ID: 42, Roles: domain.NewRoleSet(domain.RoleEmployee)}, nil)
	e.catalog.On("AssignEmployee", mock.Anything, int64(42), []int64{1, 4}).Return(nil)
	e.invitations.On("UpdateStatus", mock.Anything, int64(10), domain.InvitationPending, domain.InvitationAccepted).Return(nil)

	resp, err := e.svc.Accept(context.Background(), &models.AcceptRequest{
		Token: token, FirstName: "Marie", LastName: "Curie",
	})

	require.NoError(t, err)
	assert.True(t, resp.UserCreated)
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, []string{"employee"}, resp.Roles)
	assert.Equal(t, []int64{1, 4}, resp.ServiceIDs)
	e.catalog.AssertExpectations(t)
	e.invitations.AssertExpectations(t)
}

func TestService_Accept_UpgradesExistingClient(t *testing.T) {
	e := newEnv()
	e.invitations.On("GetByToken", mock.Anything, token).Return(pending(domain.RoleAdmin), nil)
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").
		Return(&domain.User{ID: 5, Roles: domain.NewRoleSet(domain.RoleClient)}, nil)
	e.users.On("SetRoles", mock.Anything, int64(5), domain.NewRoleSet(domain.RoleClient, domain.RoleAdmin)).Return(nil)
	e.invitations.On("UpdateStatus", mock.Anything, int64(10), domain.InvitationPending, domain.InvitationAccepted).Return(nil)

	resp, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: token})

	require.NoError(t, err)
	assert.False(t, resp.UserCreated)
	assert.ElementsMatch(t, []string{"client", "admin"}, resp.Roles)
	e.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	e.catalog.AssertNotCalled(t, "AssignEmployee", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Accept_NewUserNeedsName(t *testing.T) {
	e := newEnv()
	e.invitations.On("GetByToken", mock.Anything, token).Return(pending(domain.RoleEmployee), nil)
	e.users.On("GetByEmail", mock.Anything, "marie@example.com").Return(nil, userRepo.ErrUserNotFound)

	_, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: token})

	assert.ErrorIs(t, err, ErrInvalidInput)
	e.invitations.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Accept_Errors(t *testing.T) {
	t.Run("malformed token", func(t *testing.T) {
		e := newEnv()
		_, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: "abc"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		e.invitations.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		e := newEnv()
		e.invitations.On("GetByToken", mock.Anything, token).Return(nil, invitationRepo.ErrInvitationNotFound)
		_, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: token})
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("already declined", func(t *testing.T) {
		e := newEnv()
		inv := pending(domain.RoleEmployee)
		inv.Status = domain.InvitationDeclined
		e.invitations.On("GetByToken", mock.Anything, token).Return(inv, nil)
		_, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: token})
		assert.ErrorIs(t, err, ErrInvitationNotPending)
		e.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("service deleted meanwhile", func(t *testing.T) {
		e := newEnv()
		e.invitations.On("GetByToken", mock.Anything, token).Return(pending(domain.RoleEmployee, 9), nil)
		e.users.On("GetByEmail", mock.Anything, "marie@example.com").
			Return(&domain.User{ID: 5, Roles: domain.NewRoleSet(domain.RoleEmployee)}, nil)
		e.catalog.On("AssignEmployee", mock.Anything, int64(5), []int64{9}).Return(catalogRepo.ErrServiceNotFound)
		_, err := e.svc.Accept(context.Background(), &models.AcceptRequest{Token: token})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}

func TestService_Decline(t *testing.T) {
	e := newEnv()
	e.invitations.On("GetByToken", mock.Anything, token).Return(pending(domain.RoleEmployee), nil)
	e.invitations.On("UpdateStatus", mock.Anything, int64(10), domain.InvitationPending, domain.InvitationDeclined).
		Return(invitationRepo.ErrStatusConflict)

	err := e.svc.Decline(context.Background(), &models.DeclineRequest{Token: token})

	assert.ErrorIs(t, err, ErrInvitationNotPending)
}
