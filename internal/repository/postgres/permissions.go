package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
)

// PermissionRepository implements port.PermissionRepository using PostgreSQL.
type PermissionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository wires a permission repository backed by any
// executor that satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	return &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByUser returns all permissions granted to a user.
func (r *PermissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.UserPermission, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "software_id", "access_type", "granted_by", "request_id", "granted_at").
		From("uap.user_permissions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("granted_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.UserPermission, 0)
	for rows.Next() {
		var p domain.UserPermission
		if err := rows.Scan(&p.ID, &p.UserID, &p.SoftwareID, &p.AccessType, &p.GrantedBy, &p.RequestID, &p.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

// CountBySoftware returns how many granted permissions reference the
// software.
func (r *PermissionRepository) CountBySoftware(ctx context.Context, softwareID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("uap.user_permissions").
		Where(squirrel.Eq{"software_id": softwareID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count permissions sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan permissions count: %w", err)
	}

	return int(count), nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
