package parameters

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// singletonID параметры бизнеса хранятся одной строкой
const singletonID = 1

var columns = []string{
	"id",
	"business_name",
	"description",
	"logo",
	"contact_email",
	"contact_phone",
	"address",
	"email_notifications",
	"sms_notifications",
	"reminder_minutes",
	"min_booking_delay_hours",
	"max_booking_delay_days",
	"created_at",
	"updated_at",
}

// Repository репозиторий параметров бизнеса
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория параметров
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает текущие параметры
// Если строка ещё не создана, возвращает ErrParametersNotFound
func (r *Repository) Get(ctx context.Context) (*domain.Parameters, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("parameters").
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		p                    domain.Parameters
		description, logo    sql.NullString
		email, phone, addr   sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.BusinessName,
		&description,
		&logo,
		&email,
		&phone,
		&addr,
		&p.EmailNotifications,
		&p.SMSNotifications,
		&p.ReminderMinutes,
		&p.MinBookingDelayHours,
		&p.MaxBookingDelayDays,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrParametersNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan parameters: %w", ErrScanRow, err)
	}

	p.Description = nullable(description)
	p.Logo = nullable(logo)
	p.ContactEmail = nullable(email)
	p.ContactPhone = nullable(phone)
	p.Address = nullable(addr)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создает или полностью перезаписывает параметры
func (r *Repository) Upsert(ctx context.Context, p *domain.Parameters) (*domain.Parameters, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("parameters").
		Columns(
			"id",
			"business_name",
			"description",
			"logo",
			"contact_email",
			"contact_phone",
			"address",
			"email_notifications",
			"sms_notifications",
			"reminder_minutes",
			"min_booking_delay_hours",
			"max_booking_delay_days",
		).
		Values(
			singletonID,
			p.BusinessName,
			p.Description,
			p.Logo,
			p.ContactEmail,
			p.ContactPhone,
			p.Address,
			p.EmailNotifications,
			p.SMSNotifications,
			p.ReminderMinutes,
			p.MinBookingDelayHours,
			p.MaxBookingDelayDays,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			description = EXCLUDED.description,
			logo = EXCLUDED.logo,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			address = EXCLUDED.address,
			email_notifications = EXCLUDED.email_notifications,
			sms_notifications = EXCLUDED.sms_notifications,
			reminder_minutes = EXCLUDED.reminder_minutes,
			min_booking_delay_hours = EXCLUDED.min_booking_delay_hours,
			max_booking_delay_days = EXCLUDED.max_booking_delay_days,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
