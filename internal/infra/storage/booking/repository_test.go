package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func newRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db := dbmetrics.New(sqlDB, nil)
	return NewRepository(db), db, mock
}

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func bookingRow(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows(columns)
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO bookings \(employee_id,client_id,service_id,booking_date,start_time,duration_minutes,status,parent_booking_id,message\) VALUES .* RETURNING id, created_at, updated_at`).
		WithArgs(int64(3), int64(9), int64(2), day, types.TimeString("10:00"), 30, domain.StatusPending, nil, "first visit").
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(15), now, now))

	created, err := repo.Create(context.Background(), &domain.Booking{
		EmployeeID:      3,
		ClientID:        9,
		ServiceID:       2,
		BookingDate:     day,
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		Message:         ptr.Ptr("first visit"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(15), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE id = \$1$`).
		WithArgs(int64(15)).
		WillReturnRows(bookingRow(mock).AddRow(
			int64(15), int64(3), int64(9), int64(2), day, "10:00:00", 30, "confirmed", int64(14), nil, now, now,
		))

	b, err := repo.GetByID(context.Background(), 15)

	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), b.StartTime)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	require.NotNil(t, b.ParentBookingID)
	assert.Equal(t, int64(14), *b.ParentBookingID)
	assert.Nil(t, b.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveByEmployeeAndDate_LocksInTx(t *testing.T) {
	repo, db, mock := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM bookings WHERE employee_id = \$1 AND booking_date = \$2 AND status <> \$3 ORDER BY start_time ASC FOR UPDATE`).
		WithArgs(int64(3), day, domain.StatusCancelled).
		WillReturnRows(bookingRow(mock).
			AddRow(int64(1), int64(3), int64(9), int64(2), day, "10:00:00", 30, "confirmed", nil, nil, now, now).
			AddRow(int64(2), int64(3), int64(8), int64(2), day, "10:30:00", 30, "pending", int64(1), "group", now, now))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	bookings, err := repo.ListActiveByEmployeeAndDate(ctx, 3, day.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "group", *bookings[1].Message)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_Filter(t *testing.T) {
	repo, _, mock := newRepo(t)
	from := day
	to := day.AddDate(0, 0, 7)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE employee_id = \$1 AND booking_date >= \$2 AND booking_date <= \$3 AND status = \$4 ORDER BY booking_date ASC, start_time ASC, id ASC`).
		WithArgs(int64(3), from, to, domain.StatusConfirmed).
		WillReturnRows(bookingRow(mock))

	bookings, err := repo.List(context.Background(), domain.BookingsFilter{
		EmployeeID: ptr.Ptr(int64(3)),
		DateFrom:   &from,
		DateTo:     &to,
		Status:     ptr.Ptr(domain.StatusConfirmed),
	})

	require.NoError(t, err)
	assert.Empty(t, bookings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
		WithArgs(domain.StatusConfirmed, int64(15), domain.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs(domain.StatusCompleted, int64(15), domain.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), 15, domain.StatusPending, domain.StatusConfirmed))

	err := repo.UpdateStatus(context.Background(), 15, domain.StatusConfirmed, domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CancelChildren(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE parent_booking_id = \$2 AND status IN \(\$3,\$4\) RETURNING id`).
		WithArgs(domain.StatusCancelled, int64(15), "pending", "confirmed").
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(16)).AddRow(int64(17)))

	ids, err := repo.CancelChildren(context.Background(), 15)

	require.NoError(t, err)
	assert.Equal(t, []int64{16, 17}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
		WithArgs(int64(15)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 15)

	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExecErrorKeepsCause(t *testing.T) {
	repo, _, mock := newRepo(t)
	cause := errors.New("deadlock")

	mock.ExpectExec(`DELETE FROM bookings`).WillReturnError(cause)

	err := repo.Delete(context.Background(), 1)

	assert.ErrorIs(t, err, ErrExecQuery)
	assert.ErrorIs(t, err, cause)
}
