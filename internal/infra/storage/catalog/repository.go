package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

var columns = []string{
	"id",
	"name",
	"description",
	"duration_minutes",
	"price",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий каталога услуг и назначенных на них сотрудников
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает услугу без сотрудников, назначение через SetEmployees
func (r *Repository) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns("name", "description", "duration_minutes", "price", "is_active").
		Values(s.Name, s.Description, s.DurationMinutes, s.Price, s.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// GetByID получает услугу вместе со списком сотрудников
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %w", ErrScanRow, err)
	}

	employees, err := r.employeesByService(ctx, id)
	if err != nil {
		return nil, err
	}
	if ids, ok := employees[id]; ok {
		s.EmployeeIDs = ids
	}

	return s, nil
}

// List все услуги по имени, activeOnly оставляет только активные
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From("services")
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		services = append(services, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	if len(ids) == 0 {
		return services, nil
	}

	employees, err := r.employeesByService(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if ids, ok := employees[s.ID]; ok {
			s.EmployeeIDs = ids
		}
	}

	return services, nil
}

// Update перезаписывает описательные поля услуги
func (r *Repository) Update(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("name", s.Name).
		Set("description", s.Description).
		Set("duration_minutes", s.DurationMinutes).
		Set("price", s.Price).
		Set("is_active", s.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// ToggleActive инвертирует флаг активности и возвращает новое значение
func (r *Repository) ToggleActive(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("is_active", squirrel.Expr("NOT is_active")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING is_active").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ToggleActive - build update query: %v", ErrBuildQuery, err)
	}

	var active bool
	err = executor.QueryRowContext(ctx, query, args...).Scan(&active)
	if err == sql.ErrNoRows {
		return false, ErrServiceNotFound
	}
	if err != nil {
		return false, fmt.Errorf("%w: ToggleActive - execute update: %w", ErrExecQuery, err)
	}

	return active, nil
}

// Delete удаляет услугу, связи с сотрудниками удаляются каскадно
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if txmanager.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: id=%d", ErrServiceInUse, id)
		}
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// SetEmployees заменяет список сотрудников услуги
// Выполнять в транзакции: удаление и вставка должны примениться вместе
func (r *Repository) SetEmployees(ctx context.Context, serviceID int64, employeeIDs []int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("service_employees").
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetEmployees - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetEmployees - execute delete: %w", ErrExecQuery, err)
	}

	if len(employeeIDs) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("service_employees").Columns("service_id", "employee_id")
	for _, employeeID := range employeeIDs {
		insert = insert.Values(serviceID, employeeID)
	}

	query, args, err = insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetEmployees - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetEmployees - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// AssignEmployee добавляет сотрудника к услугам, существующие связи не трогает
func (r *Repository) AssignEmployee(ctx context.Context, employeeID int64, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("service_employees").Columns("service_id", "employee_id")
	for _, serviceID := range serviceIDs {
		insert = insert.Values(serviceID, employeeID)
	}

	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("%w: AssignEmployee - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if txmanager.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: one of %v", ErrServiceNotFound, serviceIDs)
		}
		return fmt.Errorf("%w: AssignEmployee - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ListEmployeeIDs сотрудники, оказывающие услугу, по возрастанию ID
func (r *Repository) ListEmployeeIDs(ctx context.Context, serviceID int64) ([]int64, error) {
	employees, err := r.employeesByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if ids, ok := employees[serviceID]; ok {
		return ids, nil
	}
	return []int64{}, nil
}

func (r *Repository) employeesByService(ctx context.Context, serviceIDs ...int64) (map[int64][]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("service_id", "employee_id").
		From("service_employees").
		Where(squirrel.Eq{"service_id": serviceIDs}).
		OrderBy("service_id ASC", "employee_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: employeesByService - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: employeesByService - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]int64, len(serviceIDs))
	for rows.Next() {
		var serviceID, employeeID int64
		if err := rows.Scan(&serviceID, &employeeID); err != nil {
			return nil, fmt.Errorf("%w: employeesByService - scan row: %v", ErrScanRow, err)
		}
		result[serviceID] = append(result[serviceID], employeeID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: employeesByService - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	var (
		s                    domain.Service
		description          sql.NullString
		price                sql.NullFloat64
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(&s.ID, &s.Name, &description, &s.DurationMinutes, &price, &s.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		s.Description = &description.String
	}
	if price.Valid {
		s.Price = &price.Float64
	}
	s.EmployeeIDs = []int64{}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
