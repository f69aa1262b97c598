package domain

import "testing"

func TestRoleAllows(t *testing.T) {
	cases := []struct {
		name string
		role Role
		op   Operation
		want bool
	}{
		{"employee reads catalog", RoleEmployee, OpCatalogRead, true},
		{"employee cannot write catalog", RoleEmployee, OpCatalogWrite, false},
		{"employee creates requests", RoleEmployee, OpRequestCreate, true},
		{"employee cannot decide", RoleEmployee, OpRequestDecide, false},
		{"manager decides", RoleManager, OpRequestDecide, true},
		{"manager cannot write catalog", RoleManager, OpCatalogWrite, false},
		{"admin writes catalog", RoleAdmin, OpCatalogWrite, true},
		{"admin decides", RoleAdmin, OpRequestDecide, true},
		{"unknown operation denied", RoleAdmin, Operation("catalog:purge"), false},
		{"unknown role denied", Role("Contractor"), OpCatalogRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.role.Allows(tc.op); got != tc.want {
				t.Errorf("Allows(%q) for %q = %v, want %v", tc.op, tc.role, got, tc.want)
			}
		})
	}
}

func TestCanSeeAllRequests(t *testing.T) {
	if RoleEmployee.CanSeeAllRequests() {
		t.Error("employees must only see their own requests")
	}
	if !RoleManager.CanSeeAllRequests() {
		t.Error("managers see all requests")
	}
	if !RoleAdmin.CanSeeAllRequests() {
		t.Error("admins see all requests")
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"Employee", "Manager", "Admin"} {
		if _, ok := ParseRole(valid); !ok {
			t.Errorf("ParseRole(%q) rejected a valid role", valid)
		}
	}
	for _, invalid := range []string{"", "employee", "ADMIN", "Superuser"} {
		if _, ok := ParseRole(invalid); ok {
			t.Errorf("ParseRole(%q) accepted an invalid role", invalid)
		}
	}
}

func TestParseDecision(t *testing.T) {
	if _, ok := ParseDecision("Pending"); ok {
		t.Error("Pending is not a terminal decision")
	}
	if status, ok := ParseDecision("Approved"); !ok || status != RequestStatusApproved {
		t.Errorf("ParseDecision(Approved) = %q, %v", status, ok)
	}
	if status, ok := ParseDecision("Rejected"); !ok || status != RequestStatusRejected {
		t.Errorf("ParseDecision(Rejected) = %q, %v", status, ok)
	}
}

func TestRequestStatusIsTerminal(t *testing.T) {
	if RequestStatusPending.IsTerminal() {
		t.Error("Pending must allow transitions")
	}
	if !RequestStatusApproved.IsTerminal() || !RequestStatusRejected.IsTerminal() {
		t.Error("Approved and Rejected are terminal")
	}
}

func TestSoftwareSupportsLevel(t *testing.T) {
	software := Software{AccessLevels: []AccessLevel{AccessLevelRead, AccessLevelWrite}}

	if !software.SupportsLevel(AccessLevelRead) {
		t.Error("expected Read to be supported")
	}
	if software.SupportsLevel(AccessLevelAdmin) {
		t.Error("Admin is not in the software's levels")
	}
}
