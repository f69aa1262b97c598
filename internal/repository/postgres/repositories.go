package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Software    *SoftwareRepository
	Requests    *AccessRequestRepository
	Permissions *PermissionRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Software:    NewSoftwareRepository(pool),
		Requests:    NewAccessRequestRepository(pool),
		Permissions: NewPermissionRepository(pool),
	}
}
