package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

var columns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"password_hash",
	"roles",
	"phone_number",
	"postal_code",
	"created_at",
	"updated_at",
}

// Repository репозиторий пользователей
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает пользователя
// Уникальный индекс по lower(email) гарантирует одну учётную запись на email
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("users").
		Columns("first_name", "last_name", "email", "password_hash", "roles", "phone_number", "postal_code").
		Values(
			user.FirstName,
			user.LastName,
			normalizeEmail(user.Email),
			user.PasswordHash,
			pq.Array(user.Roles.Strings()),
			user.PhoneNumber,
			user.PostalCode,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&user.ID, &createdAt, &updatedAt)
	if err != nil {
		if txmanager.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, user.Email)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	return user, nil
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// GetByEmail получает пользователя по email без учёта регистра
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "GetByEmail", squirrel.Eq{"email": normalizeEmail(email)}, false)
}

// LockEmployee блокирует строку сотрудника до конца транзакции
// Все записи бронирований к одному сотруднику выполняются последовательно
func (r *Repository) LockEmployee(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "LockEmployee", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// SetRoles перезаписывает набор ролей пользователя
func (r *Repository) SetRoles(ctx context.Context, id int64, roles domain.RoleSet) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("users").
		Set("roles", pq.Array(roles.Strings())).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetRoles - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetRoles - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetRoles - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer, lock bool) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From("users").Where(where)
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	user, err := scanUser(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan user: %w", ErrScanRow, op, err)
	}

	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user                 domain.User
		roles                pq.StringArray
		phone, postal        sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&phone,
		&postal,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	set, err := domain.ParseRoleSet(roles)
	if err != nil {
		return nil, err
	}
	user.Roles = set

	if phone.Valid {
		user.PhoneNumber = &phone.String
	}
	if postal.Valid {
		user.PostalCode = &postal.String
	}
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
