package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/repository"
)

var requestRowColumns = []string{
	"id", "user_id", "software_id", "access_type", "reason", "status",
	"created_at", "updated_at", "processed_by", "comments", "username", "name",
}

func TestAccessRequestRepository_CreatePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	request := domain.AccessRequest{
		ID:         "req-1",
		UserID:     "user-1",
		SoftwareID: "sw-1",
		AccessType: domain.AccessLevelRead,
		Reason:     "need dashboards",
		Status:     domain.RequestStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM uap\.access_requests`).
		WithArgs("user-1", "sw-1", domain.RequestStatusPending).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO uap\.access_requests`).
		WithArgs(request.ID, request.UserID, request.SoftwareID, request.AccessType, request.Reason, request.Status, request.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.CreatePending(context.Background(), request); err != nil {
		t.Fatalf("CreatePending returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_CreatePendingDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	request := domain.AccessRequest{
		ID:         "req-2",
		UserID:     "user-1",
		SoftwareID: "sw-1",
		AccessType: domain.AccessLevelRead,
		Reason:     "again",
		Status:     domain.RequestStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM uap\.access_requests`).
		WithArgs("user-1", "sw-1", domain.RequestStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("req-1"))
	mock.ExpectRollback()

	err = repo.CreatePending(context.Background(), request)
	if !errors.Is(err, repository.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(requestRowColumns).AddRow(
		"req-1", "user-1", "sw-1", domain.AccessLevelRead, "need dashboards",
		domain.RequestStatusPending, createdAt, nil, nil, nil, "alice", "Grafana",
	)

	mock.ExpectQuery(`SELECT .* FROM uap\.access_requests r`).
		WithArgs("req-1").
		WillReturnRows(rows)

	request, err := repo.GetByID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if request.Username != "alice" || request.SoftwareName != "Grafana" {
		t.Errorf("unexpected joined names: %q %q", request.Username, request.SoftwareName)
	}
	if request.Status != domain.RequestStatusPending {
		t.Errorf("unexpected status %q", request.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM uap\.access_requests r`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_DecideApprove(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	decidedAt := time.Now().UTC()
	comments := "approved for Q3"
	decision := port.RequestDecision{
		Status:    domain.RequestStatusApproved,
		DecidedBy: "manager-1",
		DecidedAt: decidedAt,
		Comments:  &comments,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id, software_id, access_type`).
		WithArgs("req-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "user_id", "software_id", "access_type"}).
			AddRow(domain.RequestStatusPending, "user-1", "sw-1", domain.AccessLevelRead))
	mock.ExpectExec(`UPDATE uap\.access_requests`).
		WithArgs("req-1", decision.Status, decision.DecidedAt, decision.DecidedBy, decision.Comments).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO uap\.user_permissions`).
		WithArgs(pgxmock.AnyArg(), "user-1", "sw-1", domain.AccessLevelRead, "manager-1", "req-1", decidedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	rows := pgxmock.NewRows(requestRowColumns).AddRow(
		"req-1", "user-1", "sw-1", domain.AccessLevelRead, "need dashboards",
		domain.RequestStatusApproved, decidedAt.Add(-time.Hour), &decidedAt, &decision.DecidedBy, &comments, "alice", "Grafana",
	)
	mock.ExpectQuery(`SELECT .* FROM uap\.access_requests r`).
		WithArgs("req-1").
		WillReturnRows(rows)

	request, err := repo.Decide(context.Background(), "req-1", decision)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if request.Status != domain.RequestStatusApproved {
		t.Errorf("unexpected status %q", request.Status)
	}
	if request.ProcessedBy == nil || *request.ProcessedBy != "manager-1" {
		t.Errorf("unexpected processed_by: %v", request.ProcessedBy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_DecideRejectSkipsGrant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	decidedAt := time.Now().UTC()
	decision := port.RequestDecision{
		Status:    domain.RequestStatusRejected,
		DecidedBy: "manager-1",
		DecidedAt: decidedAt,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id, software_id, access_type`).
		WithArgs("req-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "user_id", "software_id", "access_type"}).
			AddRow(domain.RequestStatusPending, "user-1", "sw-1", domain.AccessLevelRead))
	mock.ExpectExec(`UPDATE uap\.access_requests`).
		WithArgs("req-1", decision.Status, decision.DecidedAt, decision.DecidedBy, decision.Comments).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	rows := pgxmock.NewRows(requestRowColumns).AddRow(
		"req-1", "user-1", "sw-1", domain.AccessLevelRead, "need dashboards",
		domain.RequestStatusRejected, decidedAt.Add(-time.Hour), &decidedAt, &decision.DecidedBy, nil, "alice", "Grafana",
	)
	mock.ExpectQuery(`SELECT .* FROM uap\.access_requests r`).
		WithArgs("req-1").
		WillReturnRows(rows)

	request, err := repo.Decide(context.Background(), "req-1", decision)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if request.Status != domain.RequestStatusRejected {
		t.Errorf("unexpected status %q", request.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_DecideAlreadyResolved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id, software_id, access_type`).
		WithArgs("req-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "user_id", "software_id", "access_type"}).
			AddRow(domain.RequestStatusRejected, "user-1", "sw-1", domain.AccessLevelRead))
	mock.ExpectRollback()

	_, err = repo.Decide(context.Background(), "req-1", port.RequestDecision{
		Status:    domain.RequestStatusApproved,
		DecidedBy: "manager-1",
		DecidedAt: time.Now().UTC(),
	})

	var stateErr *repository.RequestStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected RequestStateError, got %v", err)
	}
	if stateErr.Status != domain.RequestStatusRejected {
		t.Errorf("unexpected status in error: %q", stateErr.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccessRequestRepository_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccessRequestRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(requestRowColumns).
		AddRow("req-1", "user-1", "sw-1", domain.AccessLevelRead, "first",
			domain.RequestStatusPending, now.Add(-2*time.Hour), nil, nil, nil, "alice", "Grafana").
		AddRow("req-2", "user-2", "sw-1", domain.AccessLevelWrite, "second",
			domain.RequestStatusPending, now.Add(-time.Hour), nil, nil, nil, "bob", "Grafana")

	mock.ExpectQuery(`SELECT .* FROM uap\.access_requests r .* ORDER BY r\.created_at ASC`).
		WithArgs(domain.RequestStatusPending).
		WillReturnRows(rows)

	requests, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if requests[0].ID != "req-1" || requests[1].ID != "req-2" {
		t.Errorf("unexpected order: %q, %q", requests[0].ID, requests[1].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
