package auth

import "testing"

func TestPortalAllows(t *testing.T) {
	tests := []struct {
		name   string
		portal string
		role   string
		want   bool
	}{
		{name: "admin portal accepts super admin", portal: PortalAdmin, role: RoleSuperAdmin, want: true},
		{name: "admin portal accepts hr admin", portal: PortalAdmin, role: RoleHRAdmin, want: true},
		{name: "admin portal rejects employee", portal: PortalAdmin, role: RoleEmployee, want: false},
		{name: "employee portal accepts employee", portal: PortalEmployee, role: RoleEmployee, want: true},
		{name: "employee portal rejects hr admin", portal: PortalEmployee, role: RoleHRAdmin, want: false},
		{name: "employee portal rejects super admin", portal: PortalEmployee, role: RoleSuperAdmin, want: false},
		{name: "unknown portal rejects everyone", portal: "mobile", role: RoleEmployee, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := PortalAllows(tc.portal, tc.role); got != tc.want {
				t.Fatalf("PortalAllows(%q, %q) = %v, want %v", tc.portal, tc.role, got, tc.want)
			}
		})
	}
}

func TestEmployeeCannotDecideLeave(t *testing.T) {
	if RoleHasPermission(RoleEmployee, PermLeaveDecide) {
		t.Fatal("employee role must not hold leave.decide")
	}
	if !RoleHasPermission(RoleHRAdmin, PermLeaveDecide) {
		t.Fatal("hr admin role must hold leave.decide")
	}
}

func TestAdminRolesShareFullPermissionSet(t *testing.T) {
	super := RolePermissions[RoleSuperAdmin]
	hr := RolePermissions[RoleHRAdmin]
	if len(super) != len(hr) {
		t.Fatalf("expected identical admin permission sets, got %d vs %d", len(super), len(hr))
	}
	for _, perm := range super {
		if !RoleHasPermission(RoleHRAdmin, perm) {
			t.Fatalf("hr admin missing %s", perm)
		}
	}
}
