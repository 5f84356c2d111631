package workinghours

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
	"is_recurring",
	"day_of_week",
	"work_date",
	"start_time",
	"end_time",
	"priority",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил рабочих часов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория рабочих часов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает правило
func (r *Repository) Create(ctx context.Context, rule *domain.WorkingHourRule) (*domain.WorkingHourRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayOfWeek, workDate := ruleKey(rule)

	query, args, err := psqlbuilder.Insert("working_hours").
		Columns("employee_id", "is_recurring", "day_of_week", "work_date", "start_time", "end_time", "priority").
		Values(rule.EmployeeID, rule.IsRecurring, dayOfWeek, workDate, rule.StartTime, rule.EndTime, rule.Priority).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// GetByID получает правило по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.WorkingHourRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("working_hours").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %w", ErrScanRow, err)
	}

	return &rule, nil
}

// Update перезаписывает правило целиком
func (r *Repository) Update(ctx context.Context, rule *domain.WorkingHourRule) (*domain.WorkingHourRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayOfWeek, workDate := ruleKey(rule)

	query, args, err := psqlbuilder.Update("working_hours").
		Set("is_recurring", rule.IsRecurring).
		Set("day_of_week", dayOfWeek).
		Set("work_date", workDate).
		Set("start_time", rule.StartTime).
		Set("end_time", rule.EndTime).
		Set("priority", rule.Priority).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": rule.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// Delete удаляет правило
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("working_hours").
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
		return ErrRuleNotFound
	}

	return nil
}

// ListByEmployee все правила сотрудника: сначала регулярные по дню недели, затем исключения по дате
func (r *Repository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.WorkingHourRule, error) {
	builder := psqlbuilder.Select(columns...).
		From("working_hours").
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("is_recurring DESC", "day_of_week ASC NULLS LAST", "work_date ASC NULLS LAST", "start_time ASC")

	return r.list(ctx, "ListByEmployee", builder)
}

// ListApplicable правила, относящиеся к дате: регулярные для её дня недели и исключения на саму дату
func (r *Repository) ListApplicable(ctx context.Context, employeeID int64, date time.Time) ([]domain.WorkingHourRule, error) {
	builder := psqlbuilder.Select(columns...).
		From("working_hours").
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"is_recurring": true},
				squirrel.Eq{"day_of_week": int(domain.WeekdayOf(date))},
			},
			squirrel.And{
				squirrel.Eq{"is_recurring": false},
				squirrel.Eq{"work_date": domain.DateOnly(date)},
			},
		}).
		OrderBy("start_time ASC")

	return r.list(ctx, "ListApplicable", builder)
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]domain.WorkingHourRule, error) {
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

	rules := make([]domain.WorkingHourRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return rules, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (domain.WorkingHourRule, error) {
	var (
		rule                 domain.WorkingHourRule
		dayOfWeek            sql.NullInt64
		workDate             sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&rule.ID,
		&rule.EmployeeID,
		&rule.IsRecurring,
		&dayOfWeek,
		&workDate,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Priority,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return rule, err
	}

	if dayOfWeek.Valid {
		wd := domain.Weekday(dayOfWeek.Int64)
		rule.DayOfWeek = &wd
	}
	if workDate.Valid {
		d := domain.DateOnly(workDate.Time)
		rule.Date = &d
	}
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// ruleKey значения day_of_week и work_date, лишнее поле обнуляется по типу правила
func ruleKey(rule *domain.WorkingHourRule) (interface{}, interface{}) {
	if rule.IsRecurring {
		if rule.DayOfWeek == nil {
			return nil, nil
		}
		return int(*rule.DayOfWeek), nil
	}
	if rule.Date == nil {
		return nil, nil
	}
	return nil, domain.DateOnly(*rule.Date)
}
