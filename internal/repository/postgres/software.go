package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/repository"
)

// SoftwareRepository implements port.SoftwareRepository using PostgreSQL.
type SoftwareRepository struct {
	pool    pgPool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSoftwareRepository wires a PostgreSQL-backed catalog repository.
func NewSoftwareRepository(pool pgPool) *SoftwareRepository {
	return &SoftwareRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var softwareColumns = []string{"id", "name", "description", "access_levels", "created_at"}

// Create inserts a catalog entry.
func (r *SoftwareRepository) Create(ctx context.Context, software domain.Software) error {
	stmt, args, err := r.builder.Insert("uap.software").
		Columns(softwareColumns...).
		Values(software.ID, software.Name, software.Description, levelsToStrings(software.AccessLevels), software.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert software sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err, "software_name_key") {
			return repository.ErrDuplicateName
		}
		return fmt.Errorf("insert software: %w", err)
	}

	return nil
}

// List returns the full catalog, newest entries first.
func (r *SoftwareRepository) List(ctx context.Context) ([]domain.Software, error) {
	stmt, args, err := r.builder.Select(softwareColumns...).
		From("uap.software").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list software sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query software: %w", err)
	}
	defer rows.Close()

	catalog := make([]domain.Software, 0)
	for rows.Next() {
		record, err := scanSoftware(rows)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate software: %w", err)
	}

	return catalog, nil
}

// GetByID retrieves a catalog entry by identifier.
func (r *SoftwareRepository) GetByID(ctx context.Context, id string) (*domain.Software, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByName retrieves a catalog entry by its exact name.
func (r *SoftwareRepository) GetByName(ctx context.Context, name string) (*domain.Software, error) {
	return r.getBy(ctx, squirrel.Eq{"name": name})
}

func (r *SoftwareRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Software, error) {
	stmt, args, err := r.builder.Select(softwareColumns...).
		From("uap.software").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select software sql: %w", err)
	}

	record, err := scanSoftware(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &record, nil
}

// Update applies a partial update and returns the refreshed record.
func (r *SoftwareRepository) Update(ctx context.Context, id string, update port.SoftwareUpdate) (*domain.Software, error) {
	builder := r.builder.Update("uap.software").Where(squirrel.Eq{"id": id})

	changed := false
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
		changed = true
	}
	if update.Description != nil {
		builder = builder.Set("description", *update.Description)
		changed = true
	}
	if update.AccessLevels != nil {
		builder = builder.Set("access_levels", levelsToStrings(update.AccessLevels))
		changed = true
	}

	if !changed {
		return r.GetByID(ctx, id)
	}

	stmt, args, err := builder.
		Suffix("RETURNING id, name, description, access_levels, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update software sql: %w", err)
	}

	record, err := scanSoftware(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err, "software_name_key") {
			return nil, repository.ErrDuplicateName
		}
		return nil, err
	}

	return &record, nil
}

// DeleteCascade removes the software and its dependent access requests in
// one transaction. Granted user permissions block the deletion with a
// SoftwareDependencyError carrying dependent counts.
func (r *SoftwareRepository) DeleteCascade(ctx context.Context, id string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete software tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID string
	if err := tx.QueryRow(ctx,
		`SELECT id FROM uap.software WHERE id = $1 FOR UPDATE`, id,
	).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("lock software row: %w", err)
	}

	var permissions int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM uap.user_permissions WHERE software_id = $1`, id,
	).Scan(&permissions); err != nil {
		return 0, fmt.Errorf("count dependent permissions: %w", err)
	}

	var requests int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM uap.access_requests WHERE software_id = $1`, id,
	).Scan(&requests); err != nil {
		return 0, fmt.Errorf("count dependent requests: %w", err)
	}

	if permissions > 0 {
		return 0, &repository.SoftwareDependencyError{
			AccessRequests:  requests,
			UserPermissions: permissions,
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM uap.access_requests WHERE software_id = $1`, id); err != nil {
		return 0, fmt.Errorf("delete dependent requests: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM uap.software WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("delete software: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit delete software tx: %w", err)
	}

	return requests, nil
}

func scanSoftware(row pgx.Row) (domain.Software, error) {
	var (
		record domain.Software
		levels []string
	)

	if err := row.Scan(&record.ID, &record.Name, &record.Description, &levels, &record.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Software{}, pgx.ErrNoRows
		}
		return domain.Software{}, fmt.Errorf("scan software: %w", err)
	}

	record.AccessLevels = stringsToLevels(levels)
	return record, nil
}

func levelsToStrings(levels []domain.AccessLevel) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = string(l)
	}
	return out
}

func stringsToLevels(values []string) []domain.AccessLevel {
	out := make([]domain.AccessLevel, len(values))
	for i, v := range values {
		out[i] = domain.AccessLevel(v)
	}
	return out
}

var _ port.SoftwareRepository = (*SoftwareRepository)(nil)
