package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

func TestPermissionRepository_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPermissionRepository(mock)

	grantedAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "user_id", "software_id", "access_type", "granted_by", "request_id", "granted_at"}).
		AddRow("perm-1", "user-1", "sw-1", domain.AccessLevelRead, "manager-1", "req-1", grantedAt)

	mock.ExpectQuery(`SELECT id, user_id, software_id, access_type, granted_by, request_id, granted_at FROM uap\.user_permissions`).
		WithArgs("user-1").
		WillReturnRows(rows)

	permissions, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(permissions) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(permissions))
	}
	if permissions[0].AccessType != domain.AccessLevelRead || permissions[0].GrantedBy != "manager-1" {
		t.Errorf("unexpected permission: %+v", permissions[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPermissionRepository_CountBySoftware(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPermissionRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM uap\.user_permissions`).
		WithArgs("sw-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	count, err := repo.CountBySoftware(context.Background(), "sw-1")
	if err != nil {
		t.Fatalf("CountBySoftware returned error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
