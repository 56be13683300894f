package domain

// Permission tokens stored in roles.permissions.
const (
	PermEmployeeCreate   = "EMPLOYEE_CREATE"
	PermEmployeeRead     = "EMPLOYEE_READ"
	PermEmployeeUpdate   = "EMPLOYEE_UPDATE"
	PermEmployeeDelete   = "EMPLOYEE_DELETE"
	PermUserManage       = "USER_MANAGE"
	PermDepartmentManage = "DEPARTMENT_MANAGE"
	PermLeaveTypeManage  = "LEAVE_TYPE_MANAGE"
	PermPayrollGenerate  = "PAYROLL_GENERATE"
)

// AllPermissions is every permission token, granted to ADMIN by the seeder.
var AllPermissions = []string{
	PermEmployeeCreate,
	PermEmployeeRead,
	PermEmployeeUpdate,
	PermEmployeeDelete,
	PermUserManage,
	PermDepartmentManage,
	PermLeaveTypeManage,
	PermPayrollGenerate,
}

// DefaultPermissions is the seeded permission set per role.
var DefaultPermissions = map[Name][]string{
	Admin: AllPermissions,
	HR: {
		PermEmployeeCreate,
		PermEmployeeRead,
		PermEmployeeUpdate,
	},
	Employee: {
		PermEmployeeRead,
	},
}
