package rbac

import (
	"employee-management/backend/internal/policy/engine"
	roledomain "employee-management/backend/internal/role/domain"
)

// Operation names. Each HTTP route names exactly one.
const (
	OpAuthRegister       = "auth.register"
	OpAuthLogout         = "auth.logout"
	OpAuthChangePassword = "auth.change_password"

	OpUserCreate        = "users.create"
	OpUserList          = "users.list"
	OpUserGet           = "users.get"
	OpUserUpdate        = "users.update"
	OpUserToggleStatus  = "users.toggle_status"
	OpUserAssignRole    = "users.assign_role"
	OpUserResetPassword = "users.reset_password"
	OpUserListPending   = "users.list_pending"
	OpUserApprove       = "users.approve"
	OpUserReject        = "users.reject"

	OpEmployeeCreate  = "employees.create"
	OpEmployeeList    = "employees.list"
	OpEmployeeGet     = "employees.get"
	OpEmployeeUpdate  = "employees.update"
	OpEmployeeDelete  = "employees.delete"
	OpEmployeeProfile = "employees.profile"

	OpDepartmentCreate = "departments.create"
	OpDepartmentList   = "departments.list"
	OpDepartmentUpdate = "departments.update"
	OpDepartmentDelete = "departments.delete"
	OpDepartmentAssign = "departments.assign"

	OpDesignationCreate = "designations.create"
	OpDesignationList   = "designations.list"
	OpDesignationUpdate = "designations.update"
	OpDesignationDelete = "designations.delete"
	OpDesignationAssign = "designations.assign"

	OpAttendanceCheckIn  = "attendance.check_in"
	OpAttendanceCheckOut = "attendance.check_out"
	OpAttendancePersonal = "attendance.personal"
	OpAttendanceList     = "attendance.list"

	OpLeaveTypeCreate   = "leave.types.create"
	OpLeaveTypeList     = "leave.types.list"
	OpLeaveApply        = "leave.apply"
	OpLeavePersonal     = "leave.personal"
	OpLeaveList         = "leave.list"
	OpLeaveUpdateStatus = "leave.update_status"

	OpSalarySet    = "salary.set"
	OpSalaryUpdate = "salary.update"
	OpSalaryList   = "salary.list"
	OpSalaryGet    = "salary.get"
	OpSalaryMine   = "salary.mine"

	OpPayrollGenerate     = "payroll.generate"
	OpPayrollList         = "payroll.list"
	OpPayrollEmployee     = "payroll.employee"
	OpPayrollMine         = "payroll.mine"
	OpPayrollUpdateStatus = "payroll.update_status"

	OpAuditList = "audit.list"
)

var (
	adminOnly  = roles(roledomain.Admin)
	adminOrHR  = roles(roledomain.Admin, roledomain.HR)
	anyoneAuth = roles(roledomain.Names...)
)

// Policy is the route authorization table evaluated by the OPA engine.
var Policy = engine.Table{
	OpAuthRegister:       {Roles: adminOrHR},
	OpAuthLogout:         {Roles: anyoneAuth},
	OpAuthChangePassword: {Roles: anyoneAuth},

	OpUserCreate:        {Roles: adminOrHR},
	OpUserList:          {Roles: adminOrHR},
	OpUserGet:           {Roles: anyoneAuth},
	OpUserUpdate:        {Roles: adminOrHR},
	OpUserToggleStatus:  {Roles: adminOnly, Permission: roledomain.PermUserManage},
	OpUserAssignRole:    {Roles: adminOnly, Permission: roledomain.PermUserManage},
	OpUserResetPassword: {Roles: adminOrHR},
	OpUserListPending:   {Roles: adminOrHR},
	OpUserApprove:       {Roles: adminOrHR},
	OpUserReject:        {Roles: adminOrHR},

	OpEmployeeCreate:  {Roles: adminOrHR, Permission: roledomain.PermEmployeeCreate},
	OpEmployeeList:    {Roles: adminOrHR, Permission: roledomain.PermEmployeeRead},
	OpEmployeeGet:     {Roles: adminOrHR, Permission: roledomain.PermEmployeeRead},
	OpEmployeeUpdate:  {Roles: adminOrHR, Permission: roledomain.PermEmployeeUpdate},
	OpEmployeeDelete:  {Roles: adminOrHR},
	OpEmployeeProfile: {Roles: anyoneAuth},

	OpDepartmentCreate: {Roles: adminOnly, Permission: roledomain.PermDepartmentManage},
	OpDepartmentList:   {Roles: adminOrHR},
	OpDepartmentUpdate: {Roles: adminOnly, Permission: roledomain.PermDepartmentManage},
	OpDepartmentDelete: {Roles: adminOnly, Permission: roledomain.PermDepartmentManage},
	OpDepartmentAssign: {Roles: adminOrHR},

	OpDesignationCreate: {Roles: adminOrHR},
	OpDesignationList:   {Roles: adminOrHR},
	OpDesignationUpdate: {Roles: adminOrHR},
	OpDesignationDelete: {Roles: adminOrHR},
	OpDesignationAssign: {Roles: adminOrHR},

	OpAttendanceCheckIn:  {Roles: anyoneAuth},
	OpAttendanceCheckOut: {Roles: anyoneAuth},
	OpAttendancePersonal: {Roles: anyoneAuth},
	OpAttendanceList:     {Roles: adminOrHR},

	OpLeaveTypeCreate:   {Roles: adminOnly, Permission: roledomain.PermLeaveTypeManage},
	OpLeaveTypeList:     {Roles: anyoneAuth},
	OpLeaveApply:        {Roles: anyoneAuth},
	OpLeavePersonal:     {Roles: anyoneAuth},
	OpLeaveList:         {Roles: adminOrHR},
	OpLeaveUpdateStatus: {Roles: adminOrHR},

	OpSalarySet:    {Roles: adminOrHR},
	OpSalaryUpdate: {Roles: adminOrHR},
	OpSalaryList:   {Roles: adminOrHR},
	OpSalaryGet:    {Roles: adminOrHR},
	OpSalaryMine:   {Roles: anyoneAuth},

	OpPayrollGenerate:     {Roles: adminOnly, Permission: roledomain.PermPayrollGenerate},
	OpPayrollList:         {Roles: adminOrHR},
	OpPayrollEmployee:     {Roles: adminOrHR},
	OpPayrollMine:         {Roles: anyoneAuth},
	OpPayrollUpdateStatus: {Roles: adminOrHR},

	OpAuditList: {Roles: adminOnly},
}

func roles(names ...roledomain.Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
