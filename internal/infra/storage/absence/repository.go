package absence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"employee_id",
	"start_date",
	"end_date",
	"reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий отсутствий сотрудников
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отсутствие
func (r *Repository) Create(ctx context.Context, a *domain.Absence) (*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("absences").
		Columns("employee_id", "start_date", "end_date", "reason").
		Values(a.EmployeeID, domain.DateOnly(a.StartDate), domain.DateOnly(a.EndDate), a.Reason).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает отсутствие по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("absences").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAbsence(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAbsenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan absence: %w", ErrScanRow, err)
	}

	return &a, nil
}

// Update перезаписывает период и причину
func (r *Repository) Update(ctx context.Context, a *domain.Absence) (*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("absences").
		Set("start_date", domain.DateOnly(a.StartDate)).
		Set("end_date", domain.DateOnly(a.EndDate)).
		Set("reason", a.Reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID}).
		Suffix("RETURNING employee_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.EmployeeID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAbsenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// Delete удаляет отсутствие
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("absences").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAbsenceNotFound
	}

	return nil
}

// ListByEmployee все отсутствия сотрудника по возрастанию начала
func (r *Repository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Absence, error) {
	builder := psqlbuilder.Select(columns...).
		From("absences").
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("start_date ASC", "id ASC")

	return r.list(ctx, "ListByEmployee", builder)
}

// ListByEmployeeAndDate отсутствия, покрывающие дату (границы включительно)
func (r *Repository) ListByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]domain.Absence, error) {
	d := domain.DateOnly(date)

	builder := psqlbuilder.Select(columns...).
		From("absences").
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.LtOrEq{"start_date": d}).
		Where(squirrel.GtOrEq{"end_date": d})

	return r.list(ctx, "ListByEmployeeAndDate", builder)
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	absences := make([]domain.Absence, 0)
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		absences = append(absences, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return absences, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAbsence(row rowScanner) (domain.Absence, error) {
	var (
		a                    domain.Absence
		reason               sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(&a.ID, &a.EmployeeID, &a.StartDate, &a.EndDate, &reason, &createdAt, &updatedAt)
	if err != nil {
		return a, err
	}

	a.StartDate = domain.DateOnly(a.StartDate)
	a.EndDate = domain.DateOnly(a.EndDate)
	if reason.Valid {
		a.Reason = &reason.String
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}
