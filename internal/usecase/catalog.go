package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/repository"
)

var (
	// ErrSoftwareNotFound indicates the catalog entry does not exist.
	ErrSoftwareNotFound = errors.New("software not found")
	// ErrSoftwareNameTaken indicates a catalog entry with the name exists.
	ErrSoftwareNameTaken = errors.New("software with this name already exists")
)

// CreateSoftwareInput captures the payload for creating a catalog entry.
type CreateSoftwareInput struct {
	Name         string
	Description  string
	AccessLevels []string
}

// UpdateSoftwareInput carries a partial catalog update; nil fields are
// left unchanged.
type UpdateSoftwareInput struct {
	Name         *string
	Description  *string
	AccessLevels []string
}

// DeleteSoftwareResult reports the outcome of a cascade deletion.
type DeleteSoftwareResult struct {
	RemovedRequests int
}

// CatalogService manages the software catalog.
type CatalogService struct {
	software port.SoftwareRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(software port.SoftwareRepository, events port.EventPublisher, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		software: software,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock injects a custom clock, primarily for testing.
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create adds a catalog entry. Name uniqueness is a case-sensitive exact
// match, backed by a unique index in the store.
func (s *CatalogService) Create(ctx context.Context, input CreateSoftwareInput) (domain.Software, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Software{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return domain.Software{}, fmt.Errorf("%w: description is required", ErrValidation)
	}

	levels, err := parseAccessLevels(input.AccessLevels)
	if err != nil {
		return domain.Software{}, err
	}

	if existing, err := s.software.GetByName(ctx, name); err == nil && existing != nil {
		return domain.Software{}, ErrSoftwareNameTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.Software{}, fmt.Errorf("lookup software by name: %w", err)
	}

	software := domain.Software{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		AccessLevels: levels,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.software.Create(ctx, software); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return domain.Software{}, ErrSoftwareNameTaken
		}
		return domain.Software{}, fmt.Errorf("create software: %w", err)
	}

	return software, nil
}

// List returns the full catalog; filtering and search are client concerns.
func (s *CatalogService) List(ctx context.Context) ([]domain.Software, error) {
	return s.software.List(ctx)
}

// Get returns one catalog entry.
func (s *CatalogService) Get(ctx context.Context, id string) (domain.Software, error) {
	software, err := s.software.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Software{}, ErrSoftwareNotFound
		}
		return domain.Software{}, fmt.Errorf("lookup software: %w", err)
	}
	return *software, nil
}

// Update applies a partial update; access levels, when provided, are
// revalidated against the enum and must be non-empty.
func (s *CatalogService) Update(ctx context.Context, id string, input UpdateSoftwareInput) (domain.Software, error) {
	update := port.SoftwareUpdate{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.Software{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		update.Name = &name
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return domain.Software{}, fmt.Errorf("%w: description must not be empty", ErrValidation)
		}
		update.Description = &description
	}

	if input.AccessLevels != nil {
		levels, err := parseAccessLevels(input.AccessLevels)
		if err != nil {
			return domain.Software{}, err
		}
		update.AccessLevels = levels
	}

	software, err := s.software.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Software{}, ErrSoftwareNotFound
		case errors.Is(err, repository.ErrDuplicateName):
			return domain.Software{}, ErrSoftwareNameTaken
		}
		return domain.Software{}, fmt.Errorf("update software: %w", err)
	}

	return *software, nil
}

// Delete removes a catalog entry; dependent access requests are cascaded
// in the same transaction, while granted user permissions block the
// deletion with a repository.SoftwareDependencyError.
func (s *CatalogService) Delete(ctx context.Context, actorID, id string) (DeleteSoftwareResult, error) {
	software, err := s.software.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeleteSoftwareResult{}, ErrSoftwareNotFound
		}
		return DeleteSoftwareResult{}, fmt.Errorf("lookup software: %w", err)
	}

	removed, err := s.software.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeleteSoftwareResult{}, ErrSoftwareNotFound
		}
		var depErr *repository.SoftwareDependencyError
		if errors.As(err, &depErr) {
			return DeleteSoftwareResult{}, err
		}
		return DeleteSoftwareResult{}, fmt.Errorf("delete software: %w", err)
	}

	if s.events != nil {
		event := domain.SoftwareDeletedEvent{
			SoftwareID:      software.ID,
			Name:            software.Name,
			RemovedRequests: removed,
			DeletedBy:       actorID,
			DeletedAt:       s.now().UTC(),
		}
		if err := s.events.PublishSoftwareDeleted(ctx, event); err != nil {
			s.logger.Warn("publish software deleted event failed", zap.Error(err))
		}
	}

	return DeleteSoftwareResult{RemovedRequests: removed}, nil
}

func parseAccessLevels(raw []string) ([]domain.AccessLevel, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one access level is required", ErrValidation)
	}

	levels := make([]domain.AccessLevel, 0, len(raw))
	seen := make(map[domain.AccessLevel]struct{}, len(raw))
	for _, value := range raw {
		level, ok := domain.ParseAccessLevel(value)
		if !ok {
			return nil, fmt.Errorf("%w: access levels must be Read, Write, or Admin", ErrValidation)
		}
		if _, dup := seen[level]; dup {
			continue
		}
		seen[level] = struct{}{}
		levels = append(levels, level)
	}

	return levels, nil
}
