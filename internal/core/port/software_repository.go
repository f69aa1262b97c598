package port

import (
	"context"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

// SoftwareUpdate carries a partial catalog update; nil fields are left
// untouched.
type SoftwareUpdate struct {
	Name         *string
	Description  *string
	AccessLevels []domain.AccessLevel
}

// SoftwareRepository handles catalog persistence.
type SoftwareRepository interface {
	Create(ctx context.Context, software domain.Software) error
	List(ctx context.Context) ([]domain.Software, error)
	GetByID(ctx context.Context, id string) (*domain.Software, error)
	GetByName(ctx context.Context, name string) (*domain.Software, error)
	Update(ctx context.Context, id string, update SoftwareUpdate) (*domain.Software, error)
	// DeleteCascade removes the software and its dependent access requests
	// in one transaction. It returns the number of cascaded requests, or a
	// repository.SoftwareDependencyError when granted user permissions
	// block the deletion.
	DeleteCascade(ctx context.Context, id string) (int, error)
}
