package auth

const (
	PermEmployeesRead     = "core.employees.read"
	PermEmployeesWrite    = "core.employees.write"
	PermOrgRead           = "core.org.read"
	PermOrgWrite          = "core.org.write"
	PermUsersCreate       = "auth.users.create"
	PermAttendanceSelf    = "attendance.self"
	PermAttendanceReports = "attendance.reports"
	PermLeaveSelf         = "leave.self"
	PermLeaveDecide       = "leave.decide"
	PermPayrollSelf       = "payroll.self"
	PermPayrollManage     = "payroll.manage"
	PermPerformanceSelf   = "performance.self"
	PermPerformanceManage = "performance.manage"
	PermNotificationsRead = "notifications.read"
	PermAuditRead         = "audit.read"
)

var adminPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermOrgRead,
	PermOrgWrite,
	PermUsersCreate,
	PermAttendanceSelf,
	PermAttendanceReports,
	PermLeaveSelf,
	PermLeaveDecide,
	PermPayrollSelf,
	PermPayrollManage,
	PermPerformanceSelf,
	PermPerformanceManage,
	PermNotificationsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOrgRead,
		PermAttendanceSelf,
		PermLeaveSelf,
		PermPayrollSelf,
		PermPerformanceSelf,
		PermNotificationsRead,
	},
	RoleHRAdmin:    adminPermissions,
	RoleSuperAdmin: adminPermissions,
}

func RoleHasPermission(role, permission string) bool {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}
