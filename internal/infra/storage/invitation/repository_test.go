package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

const testToken = "6f1c1c9e-2a57-4d55-9b2e-1d0f3a7c9e11"

func newRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db := dbmetrics.New(sqlDB, nil)
	return NewRepository(db), db, mock
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO invitations \(email,role,service_ids,status,token\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING id, created_at, updated_at`).
		WithArgs("marie@example.com", "employee", sqlmock.AnyArg(), "pending", testToken).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), now, now))

	inv, err := repo.Create(context.Background(), &domain.Invitation{
		Email:      " Marie@Example.com",
		Role:       domain.RoleEmployee,
		ServiceIDs: []int64{1, 2},
		Status:     domain.InvitationPending,
		Token:      testToken,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), inv.ID)
	assert.Equal(t, "marie@example.com", inv.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO invitations`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "invitations_email_key"})

	_, err := repo.Create(context.Background(), &domain.Invitation{
		Email:  "marie@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.InvitationPending,
		Token:  testToken,
	})

	assert.ErrorIs(t, err, ErrInvitationExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM invitations WHERE id = \$1$`).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows(columns).AddRow(
			int64(3), "marie@example.com", "employee", "{1,2}", "pending", testToken, now, now,
		))

	inv, err := repo.GetByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, inv.Role)
	assert.Equal(t, domain.InvitationPending, inv.Status)
	assert.Equal(t, []int64{1, 2}, inv.ServiceIDs)
	assert.Equal(t, testToken, inv.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM invitations WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(mock.NewRows(columns))

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestRepository_GetByToken_LocksInTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM invitations WHERE token = \$1 FOR UPDATE`).
		WithArgs(testToken).
		WillReturnRows(mock.NewRows(columns).AddRow(
			int64(3), "marie@example.com", "admin", "{}", "pending", testToken, now, now,
		))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	inv, err := repo.GetByToken(dbmetrics.WithTx(context.Background(), tx), testToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, inv.Role)
	assert.Empty(t, inv.ServiceIDs)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_WithFilter(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()
	email := "MARIE@example.com"
	status := domain.InvitationPending

	mock.ExpectQuery(`SELECT .* FROM invitations WHERE email = \$1 AND status = \$2 ORDER BY created_at DESC, id DESC`).
		WithArgs("marie@example.com", "pending").
		WillReturnRows(mock.NewRows(columns).AddRow(
			int64(3), "marie@example.com", "employee", "{4}", "pending", testToken, now, now,
		))

	list, err := repo.List(context.Background(), domain.InvitationsFilter{Email: &email, Status: &status})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []int64{4}, list[0].ServiceIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_Empty(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM invitations ORDER BY`).
		WillReturnRows(mock.NewRows(columns))

	list, err := repo.List(context.Background(), domain.InvitationsFilter{})

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`UPDATE invitations SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
		WithArgs("accepted", int64(3), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 3, domain.InvitationPending, domain.InvitationAccepted)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_Conflict(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`UPDATE invitations SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 3, domain.InvitationPending, domain.InvitationDeclined)

	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestRepository_Delete(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM invitations WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM invitations WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrInvitationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
