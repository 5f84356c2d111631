package parameters

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(dbmetrics.New(sqlDB, nil)), mock
}

func TestRepository_Get(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM parameters ORDER BY id ASC LIMIT 1`).
		WillReturnRows(mock.NewRows(columns).AddRow(
			int64(1), "Salon Lumiere", nil, nil, "contact@lumiere.fr", nil, "1 rue de Paris",
			true, false, 30, 2, 60, now, now,
		))

	p, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Salon Lumiere", p.BusinessName)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.ContactEmail)
	assert.Equal(t, "contact@lumiere.fr", *p.ContactEmail)
	assert.Equal(t, 2, p.MinBookingDelayHours)
	assert.Equal(t, 60, p.MaxBookingDelayDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM parameters`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())

	assert.ErrorIs(t, err, ErrParametersNotFound)
}

func TestRepository_Upsert(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO parameters .* ON CONFLICT \(id\) DO UPDATE SET .* RETURNING id, created_at, updated_at`).
		WithArgs(1, "Salon", ptr.Ptr("desc"), nil, nil, nil, nil, true, true, 15, 1, 0).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	p, err := repo.Upsert(context.Background(), &domain.Parameters{
		BusinessName:         "Salon",
		Description:          ptr.Ptr("desc"),
		EmailNotifications:   true,
		SMSNotifications:     true,
		ReminderMinutes:      15,
		MinBookingDelayHours: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.False(t, p.HasMaxBookingDelay())
	require.NoError(t, mock.ExpectationsWereMet())
}
