package invitation

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
	"email",
	"role",
	"service_ids",
	"status",
	"token",
	"created_at",
	"updated_at",
}

// Repository репозиторий приглашений
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет приглашение, на один email одно приглашение
func (r *Repository) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inv.Email = normalizeEmail(inv.Email)
	if inv.ServiceIDs == nil {
		inv.ServiceIDs = []int64{}
	}

	query, args, err := psqlbuilder.Insert("invitations").
		Columns("email", "role", "service_ids", "status", "token").
		Values(inv.Email, string(inv.Role), pq.Array(inv.ServiceIDs), string(inv.Status), inv.Token).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&inv.ID, &createdAt, &updatedAt)
	if err != nil {
		if txmanager.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvitationExists, inv.Email)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time

	return inv, nil
}

// GetByID получает приглашение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Invitation, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByToken получает приглашение по токену
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.getOne(ctx, "GetByToken", squirrel.Eq{"token": token})
}

// List приглашения по фильтру, новые первыми
func (r *Repository) List(ctx context.Context, filter domain.InvitationsFilter) ([]*domain.Invitation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From("invitations")
	if filter.Email != nil {
		builder = builder.Where(squirrel.Eq{"email": normalizeEmail(*filter.Email)})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := builder.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	invitations := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return invitations, nil
}

// UpdateStatus меняет статус, только если он всё ещё равен from
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.InvitationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("invitations").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id=%d expected=%s", ErrStatusConflict, id, from)
	}

	return nil
}

// Delete удаляет приглашение
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("invitations").
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
		return ErrInvitationNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Invitation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From("invitations").Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	inv, err := scanInvitation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan invitation: %w", ErrScanRow, op, err)
	}

	return inv, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	var (
		inv                  domain.Invitation
		role, status         string
		serviceIDs           pq.Int64Array
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(&inv.ID, &inv.Email, &role, &serviceIDs, &status, &inv.Token, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if inv.Role, err = domain.ParseRole(role); err != nil {
		return nil, err
	}
	if inv.Status, err = domain.ParseInvitationStatus(status); err != nil {
		return nil, err
	}

	inv.ServiceIDs = []int64(serviceIDs)
	if inv.ServiceIDs == nil {
		inv.ServiceIDs = []int64{}
	}
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time

	return &inv, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
