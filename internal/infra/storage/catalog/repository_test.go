package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

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

	mock.ExpectQuery(`INSERT INTO services \(name,description,duration_minutes,price,is_active\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING id`).
		WithArgs("Haircut", nil, 45, 25.5, true).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(2), now, now))

	s, err := repo.Create(context.Background(), &domain.Service{
		Name:            "Haircut",
		DurationMinutes: 45,
		Price:           ptr.Ptr(25.5),
		IsActive:        true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_WithEmployees(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM services WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(mock.NewRows(columns).AddRow(int64(2), "Haircut", "short", 45, "25.50", true, now, now))
	mock.ExpectQuery(`SELECT service_id, employee_id FROM service_employees WHERE service_id IN \(\$1\) ORDER BY service_id ASC, employee_id ASC`).
		WithArgs(int64(2)).
		WillReturnRows(mock.NewRows([]string{"service_id", "employee_id"}).AddRow(int64(2), int64(3)).AddRow(int64(2), int64(5)))

	s, err := repo.GetByID(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, s.EmployeeIDs)
	require.NotNil(t, s.Price)
	assert.InDelta(t, 25.5, *s.Price, 0.001)
	assert.Equal(t, "00:45", s.Duration())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM services WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 2)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestRepository_List_ActiveOnly(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM services WHERE is_active = \$1 ORDER BY name ASC, id ASC`).
		WithArgs(true).
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(4), "Coloring", nil, 90, nil, true, now, now).
			AddRow(int64(2), "Haircut", nil, 45, nil, true, now, now))
	mock.ExpectQuery(`SELECT service_id, employee_id FROM service_employees WHERE service_id IN \(\$1,\$2\)`).
		WithArgs(int64(4), int64(2)).
		WillReturnRows(mock.NewRows([]string{"service_id", "employee_id"}).AddRow(int64(2), int64(3)))

	services, err := repo.List(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Empty(t, services[0].EmployeeIDs)
	assert.NotNil(t, services[0].EmployeeIDs)
	assert.Equal(t, []int64{3}, services[1].EmployeeIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ToggleActive(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE services SET is_active = NOT is_active, updated_at = NOW\(\) WHERE id = \$1 RETURNING is_active`).
		WithArgs(int64(2)).
		WillReturnRows(mock.NewRows([]string{"is_active"}).AddRow(false))

	active, err := repo.ToggleActive(context.Background(), 2)

	require.NoError(t, err)
	assert.False(t, active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetEmployees(t *testing.T) {
	repo, db, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM service_employees WHERE service_id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO service_employees \(service_id,employee_id\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(2), int64(3), int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.SetEmployees(dbmetrics.WithTx(context.Background(), tx), 2, []int64{3, 5}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetEmployees_Empty(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM service_employees`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetEmployees(context.Background(), 2, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM services WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 2), ErrServiceNotFound)
}

func TestRepository_Delete_InUse(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM services WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "bookings_service_id_fkey"})

	assert.ErrorIs(t, repo.Delete(context.Background(), 2), ErrServiceInUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AssignEmployee(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO service_employees \(service_id,employee_id\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(1), int64(7), int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.AssignEmployee(context.Background(), 7, []int64{1, 3}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AssignEmployee_UnknownService(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO service_employees`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "service_employees_service_id_fkey"})

	err := repo.AssignEmployee(context.Background(), 7, []int64{99})

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestRepository_AssignEmployee_NoServices(t *testing.T) {
	repo, _, mock := newRepo(t)

	require.NoError(t, repo.AssignEmployee(context.Background(), 7, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
