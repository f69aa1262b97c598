package domain

// Operation names a guarded API capability. Each operation declares its
// own allowed-role set; the hierarchy is not strictly nested (everyone
// may create requests, only Admin may write the catalog).
type Operation string

const (
	OpCatalogRead   Operation = "catalog:read"
	OpCatalogWrite  Operation = "catalog:write"
	OpRequestCreate Operation = "request:create"
	OpRequestRead   Operation = "request:read"
	OpRequestDecide Operation = "request:decide"
)

var policy = map[Operation]map[Role]struct{}{
	OpCatalogRead:   roleSet(RoleEmployee, RoleManager, RoleAdmin),
	OpCatalogWrite:  roleSet(RoleAdmin),
	OpRequestCreate: roleSet(RoleEmployee, RoleManager, RoleAdmin),
	OpRequestRead:   roleSet(RoleEmployee, RoleManager, RoleAdmin),
	OpRequestDecide: roleSet(RoleManager, RoleAdmin),
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether the role may perform the operation. Unknown
// operations are denied.
func (r Role) Allows(op Operation) bool {
	allowed, ok := policy[op]
	if !ok {
		return false
	}
	_, ok = allowed[r]
	return ok
}

// CanSeeAllRequests reports whether listings are unscoped for the role.
// Employees only ever see their own requests.
func (r Role) CanSeeAllRequests() bool {
	return r == RoleManager || r == RoleAdmin
}
