// Package server assembles the HTTP router and the gRPC health listener.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	attendancehandler "employee-management/backend/internal/attendance/handler"
	audithandler "employee-management/backend/internal/audit/handler"
	auditrepo "employee-management/backend/internal/audit/repository"
	employeehandler "employee-management/backend/internal/employee/handler"
	healthhandler "employee-management/backend/internal/health/handler"
	identityhandler "employee-management/backend/internal/identity/handler"
	leavehandler "employee-management/backend/internal/leave/handler"
	organizationhandler "employee-management/backend/internal/organization/handler"
	payrollhandler "employee-management/backend/internal/payroll/handler"
	"employee-management/backend/internal/platform/rbac"
	principalhandler "employee-management/backend/internal/principal/handler"
	salaryhandler "employee-management/backend/internal/salary/handler"
	"employee-management/backend/internal/server/middleware"
	"employee-management/backend/internal/telemetry"
)

// requestTimeout bounds every /api request.
const requestTimeout = 30 * time.Second

// Deps holds everything the router mounts.
type Deps struct {
	Tokens middleware.AccessValidator
	Gate   middleware.Authorizer
	// AuditRepo receives one entry per mutating /api request. If nil, requests are not audited.
	AuditRepo auditrepo.Repository
	// Events receives http_request activity events. If nil, none are emitted.
	Events telemetry.EventEmitter

	CORSOrigins []string
	// LoginLimit throttles login, signup and forgot-password per client.
	LoginLimit middleware.RateLimitConfig

	Health       *healthhandler.Handler
	Auth         *identityhandler.AuthHandler
	Users        *principalhandler.Handler
	Employees    *employeehandler.Handler
	Organization *organizationhandler.Handler
	Attendance   *attendancehandler.Handler
	Leave        *leavehandler.Handler
	Salary       *salaryhandler.Handler
	Payroll      *payrollhandler.Handler
	AuditLogs    *audithandler.Handler
}

// NewRouter returns the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Telemetry(d.Events, map[string]bool{"/healthz": true}))

	r.Get("/healthz", d.Health.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		limited := middleware.RateLimit(d.LoginLimit)
		r.With(limited).Post("/auth/login", d.Auth.Login)
		r.With(limited).Post("/auth/signup", d.Auth.Signup)
		r.With(limited).Post("/auth/forgot-password", d.Auth.ForgotPassword)
		r.Post("/auth/refresh-token", d.Auth.RefreshToken)
		r.Post("/auth/reset-password/{token}", d.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens))
			if d.AuditRepo != nil {
				r.Use(middleware.Audit(d.AuditRepo))
			}
			op := func(operation string) func(http.Handler) http.Handler {
				return middleware.Authorize(d.Gate, operation)
			}

			r.With(op(rbac.OpAuthRegister)).Post("/auth/register", d.Auth.Register)
			r.With(op(rbac.OpAuthLogout)).Post("/auth/logout", d.Auth.Logout)
			r.With(op(rbac.OpAuthChangePassword)).Post("/auth/change-password", d.Auth.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.With(op(rbac.OpUserCreate)).Post("/", d.Users.Create)
				r.With(op(rbac.OpUserList)).Get("/", d.Users.List)
				r.With(op(rbac.OpUserListPending)).Get("/pending", d.Users.ListPending)
				r.With(op(rbac.OpUserGet)).Get("/{id}", d.Users.Get)
				r.With(op(rbac.OpUserUpdate)).Put("/{id}", d.Users.Update)
				r.With(op(rbac.OpUserToggleStatus)).Patch("/{id}/status", d.Users.ToggleStatus)
				r.With(op(rbac.OpUserAssignRole)).Patch("/{id}/role", d.Users.AssignRole)
				r.With(op(rbac.OpUserResetPassword)).Patch("/{id}/reset-password", d.Users.ResetPassword)
				r.With(op(rbac.OpUserApprove)).Put("/{id}/approve", d.Users.Approve)
				r.With(op(rbac.OpUserReject)).Put("/{id}/reject", d.Users.Reject)
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(op(rbac.OpEmployeeProfile)).Get("/profile/me", d.Employees.Profile)
				r.With(op(rbac.OpEmployeeProfile)).Put("/profile/me", d.Employees.UpdateProfile)
				r.With(op(rbac.OpEmployeeCreate)).Post("/", d.Employees.Create)
				r.With(op(rbac.OpEmployeeList)).Get("/", d.Employees.List)
				r.With(op(rbac.OpEmployeeGet)).Get("/{id}", d.Employees.Get)
				r.With(op(rbac.OpEmployeeUpdate)).Put("/{id}", d.Employees.Update)
				r.With(op(rbac.OpEmployeeDelete)).Delete("/{id}", d.Employees.Delete)
			})

			r.Route("/departments", func(r chi.Router) {
				r.With(op(rbac.OpDepartmentCreate)).Post("/", d.Organization.CreateDepartment)
				r.With(op(rbac.OpDepartmentList)).Get("/", d.Organization.ListDepartments)
				r.With(op(rbac.OpDepartmentUpdate)).Put("/{id}", d.Organization.UpdateDepartment)
				r.With(op(rbac.OpDepartmentDelete)).Delete("/{id}", d.Organization.DeleteDepartment)
				r.With(op(rbac.OpDepartmentAssign)).Post("/{id}/assign-employees", d.Organization.AssignEmployees)
			})

			r.Route("/designations", func(r chi.Router) {
				r.With(op(rbac.OpDesignationCreate)).Post("/", d.Organization.CreateDesignation)
				r.With(op(rbac.OpDesignationList)).Get("/", d.Organization.ListDesignations)
				r.With(op(rbac.OpDesignationUpdate)).Put("/{id}", d.Organization.UpdateDesignation)
				r.With(op(rbac.OpDesignationDelete)).Delete("/{id}", d.Organization.DeleteDesignation)
				r.With(op(rbac.OpDesignationAssign)).Post("/{id}/assign-employee", d.Organization.AssignDesignation)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(op(rbac.OpAttendanceCheckIn)).Post("/check-in", d.Attendance.CheckIn)
				r.With(op(rbac.OpAttendanceCheckOut)).Post("/check-out", d.Attendance.CheckOut)
				r.With(op(rbac.OpAttendancePersonal)).Get("/personal/{id}", d.Attendance.Personal)
				r.With(op(rbac.OpAttendanceList)).Get("/all", d.Attendance.All)
			})

			r.Route("/leave", func(r chi.Router) {
				r.With(op(rbac.OpLeaveTypeCreate)).Post("/types", d.Leave.AddType)
				r.With(op(rbac.OpLeaveTypeList)).Get("/types", d.Leave.ListTypes)
				r.With(op(rbac.OpLeaveApply)).Post("/apply", d.Leave.Apply)
				r.With(op(rbac.OpLeavePersonal)).Get("/personal/{id}", d.Leave.Personal)
				r.With(op(rbac.OpLeaveList)).Get("/all", d.Leave.All)
				r.With(op(rbac.OpLeaveUpdateStatus)).Put("/{id}/status", d.Leave.UpdateStatus)
			})

			r.Route("/salary", func(r chi.Router) {
				r.With(op(rbac.OpSalarySet)).Post("/", d.Salary.Set)
				r.With(op(rbac.OpSalaryList)).Get("/", d.Salary.List)
				r.With(op(rbac.OpSalaryMine)).Get("/my-salary", d.Salary.Mine)
				r.With(op(rbac.OpSalaryGet)).Get("/employee/{employeeId}", d.Salary.ForEmployee)
				r.With(op(rbac.OpSalaryUpdate)).Put("/{id}", d.Salary.Update)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.With(op(rbac.OpPayrollGenerate)).Post("/generate", d.Payroll.Generate)
				r.With(op(rbac.OpPayrollList)).Get("/", d.Payroll.List)
				r.With(op(rbac.OpPayrollMine)).Get("/my-history", d.Payroll.Mine)
				r.With(op(rbac.OpPayrollEmployee)).Get("/employee/{employeeId}", d.Payroll.ForEmployee)
				r.With(op(rbac.OpPayrollUpdateStatus)).Put("/{id}", d.Payroll.UpdateStatus)
			})

			r.With(op(rbac.OpAuditList)).Get("/audit-logs", d.AuditLogs.List)
		})
	})
	return r
}
