package repository

import (
	"errors"
	"fmt"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateName indicates a uniqueness violation on a name column.
	ErrDuplicateName = errors.New("repository: name already exists")
	// ErrDuplicatePending indicates a pending access request already exists
	// for the same (user, software) pair.
	ErrDuplicatePending = errors.New("repository: pending request already exists")
)

// RequestStateError is returned when a decision targets a request that
// already left the Pending state.
type RequestStateError struct {
	Status domain.RequestStatus
}

func (e *RequestStateError) Error() string {
	return fmt.Sprintf("repository: request is already %s", e.Status)
}

// SoftwareDependencyError reports the dependents blocking a catalog
// deletion.
type SoftwareDependencyError struct {
	AccessRequests  int
	UserPermissions int
}

func (e *SoftwareDependencyError) Error() string {
	return fmt.Sprintf("repository: software has dependents (requests=%d permissions=%d)",
		e.AccessRequests, e.UserPermissions)
}
