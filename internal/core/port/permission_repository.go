package port

import (
	"context"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

// PermissionRepository handles granted user permissions.
type PermissionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.UserPermission, error)
	CountBySoftware(ctx context.Context, softwareID string) (int, error)
}
