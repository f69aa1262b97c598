package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/repository"
)

// AccessRequestRepository implements port.AccessRequestRepository using
// PostgreSQL. Lifecycle invariants (single pending request per pair,
// decide-from-Pending-only) are enforced with read-check-then-write
// transactions; the partial unique index on pending rows backstops the
// duplicate check under concurrency.
type AccessRequestRepository struct {
	pool    pgPool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccessRequestRepository wires a PostgreSQL-backed request repository.
func NewAccessRequestRepository(pool pgPool) *AccessRequestRepository {
	return &AccessRequestRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const requestColumns = `r.id, r.user_id, r.software_id, r.access_type, r.reason, r.status,
	r.created_at, r.updated_at, r.processed_by, r.comments, u.username, s.name`

const requestFrom = `uap.access_requests r
	JOIN uap.users u ON u.id = r.user_id
	JOIN uap.software s ON s.id = r.software_id`

// CreatePending inserts a new request in the Pending state, refusing the
// insert when the same user already has a pending request for the software.
func (r *AccessRequestRepository) CreatePending(ctx context.Context, request domain.AccessRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create request tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM uap.access_requests
		  WHERE user_id = $1 AND software_id = $2 AND status = $3
		  FOR UPDATE`,
		request.UserID, request.SoftwareID, domain.RequestStatusPending,
	).Scan(&existingID)
	if err == nil {
		return repository.ErrDuplicatePending
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check pending request: %w", err)
	}

	stmt, args, err := r.builder.Insert("uap.access_requests").
		Columns("id", "user_id", "software_id", "access_type", "reason", "status", "created_at").
		Values(request.ID, request.UserID, request.SoftwareID, request.AccessType, request.Reason, request.Status, request.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert request sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err, "access_requests_pending_pair_idx") {
			return repository.ErrDuplicatePending
		}
		return fmt.Errorf("insert request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create request tx: %w", err)
	}

	return nil
}

// List returns every request, newest first.
func (r *AccessRequestRepository) List(ctx context.Context) ([]domain.AccessRequest, error) {
	return r.list(ctx, "", nil, "r.created_at DESC")
}

// ListByUser returns the requests belonging to one user, newest first.
func (r *AccessRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.AccessRequest, error) {
	return r.list(ctx, "r.user_id = $1", []any{userID}, "r.created_at DESC")
}

// ListPending returns the pending triage queue, oldest first.
func (r *AccessRequestRepository) ListPending(ctx context.Context) ([]domain.AccessRequest, error) {
	return r.list(ctx, "r.status = $1", []any{domain.RequestStatusPending}, "r.created_at ASC")
}

func (r *AccessRequestRepository) list(ctx context.Context, where string, args []any, order string) ([]domain.AccessRequest, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s", requestColumns, requestFrom)
	if where != "" {
		stmt += " WHERE " + where
	}
	stmt += " ORDER BY " + order

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.AccessRequest, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// GetByID retrieves one request with its user and software names joined.
func (r *AccessRequestRepository) GetByID(ctx context.Context, id string) (*domain.AccessRequest, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE r.id = $1", requestColumns, requestFrom)

	request, err := scanRequest(r.exec.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &request, nil
}

// Decide resolves a pending request. Approvals record the granted
// permission in the same transaction so the grant cannot be lost between
// the status flip and the permission write.
func (r *AccessRequestRepository) Decide(ctx context.Context, id string, decision port.RequestDecision) (*domain.AccessRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin decide request tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		current    domain.RequestStatus
		userID     string
		softwareID string
		accessType domain.AccessLevel
	)
	err = tx.QueryRow(ctx,
		`SELECT status, user_id, software_id, access_type
		   FROM uap.access_requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current, &userID, &softwareID, &accessType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lock request row: %w", err)
	}

	if current != domain.RequestStatusPending {
		return nil, &repository.RequestStateError{Status: current}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE uap.access_requests
		    SET status = $2, updated_at = $3, processed_by = $4, comments = COALESCE($5, comments)
		  WHERE id = $1`,
		id, decision.Status, decision.DecidedAt, decision.DecidedBy, decision.Comments,
	); err != nil {
		return nil, fmt.Errorf("update request status: %w", err)
	}

	if decision.Status == domain.RequestStatusApproved {
		if _, err := tx.Exec(ctx,
			`INSERT INTO uap.user_permissions (id, user_id, software_id, access_type, granted_by, request_id, granted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (user_id, software_id, access_type) DO NOTHING`,
			uuid.NewString(), userID, softwareID, accessType, decision.DecidedBy, id, decision.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("record granted permission: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit decide request tx: %w", err)
	}

	return r.GetByID(ctx, id)
}

func scanRequest(row pgx.Row) (domain.AccessRequest, error) {
	var request domain.AccessRequest
	if err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.SoftwareID,
		&request.AccessType,
		&request.Reason,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.ProcessedBy,
		&request.Comments,
		&request.Username,
		&request.SoftwareName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AccessRequest{}, pgx.ErrNoRows
		}
		return domain.AccessRequest{}, fmt.Errorf("scan request: %w", err)
	}
	return request, nil
}

var _ port.AccessRequestRepository = (*AccessRequestRepository)(nil)
