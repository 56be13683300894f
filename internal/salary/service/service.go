// Package service implements salary configuration.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	employeedomain "employee-management/backend/internal/employee/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/salary/domain"
	salaryrepo "employee-management/backend/internal/salary/repository"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

// Errors returned by Service.
var (
	ErrFieldsRequired      = errs.New(errs.Validation, "Employee ID and basic salary are required")
	ErrNegativeAmount      = errs.New(errs.Validation, "Salary amounts must not be negative")
	ErrEmployeeNotFound    = errs.New(errs.NotFound, "Employee not found")
	ErrAlreadySet          = errs.New(errs.Validation, "Salary already set for this employee. Use update instead.")
	ErrNotFound            = errs.New(errs.NotFound, "Salary record not found")
	ErrEmployeeHasNoSalary = errs.New(errs.NotFound, "Salary record not found for this employee")
	ErrNoEmployeeRecord    = errs.New(errs.NotFound, "Employee record not found")
	ErrSetHRSalary         = errs.New(errs.Forbidden, "Only ADMIN can set salaries for HR users")
	ErrUpdateHRSalary      = errs.New(errs.Forbidden, "Only ADMIN can update salaries for HR users")
)

// EmployeeLookup finds non-deleted employee profiles.
type EmployeeLookup interface {
	GetByID(ctx context.Context, id string) (*employeedomain.Employee, error)
}

// PrincipalLookup finds accounts with their role name joined.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*principaldomain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*principaldomain.Principal, error)
}

// Profiles resolves references to employee profiles and their display views. Implemented by the
// identity resolver.
type Profiles interface {
	ResolveRef(ctx context.Context, ref identitydomain.Ref) (*employeedomain.Employee, error)
	Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error)
}

// SetInput is the payload of Set. Basic is required.
type SetInput struct {
	EmployeeID string
	Basic      *float64
	Allowances float64
	Deductions float64
}

// Patch is a partial update; nil fields are kept.
type Patch struct {
	Basic      *float64
	Allowances *float64
	Deductions *float64
}

// Entry is a salary with the view of its employee.
type Entry struct {
	Salary *domain.Salary
	View   identitydomain.ProfileView
}

// Service implements the salary routes.
type Service struct {
	repo       salaryrepo.Repository
	employees  EmployeeLookup
	principals PrincipalLookup
	profiles   Profiles
	events     telemetry.EventEmitter
	now        func() time.Time
}

// NewService returns a salary Service. events may be nil.
func NewService(repo salaryrepo.Repository, employees EmployeeLookup, principals PrincipalLookup, profiles Profiles, events telemetry.EventEmitter) *Service {
	return &Service{
		repo:       repo,
		employees:  employees,
		principals: principals,
		profiles:   profiles,
		events:     events,
		now:        time.Now,
	}
}

// Set creates the salary of an employee that has none.
func (s *Service) Set(ctx context.Context, callerID, callerRole string, in SetInput) (*Entry, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" || in.Basic == nil {
		return nil, ErrFieldsRequired
	}
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if e == nil {
		return nil, ErrEmployeeNotFound
	}
	if err := s.guardHR(ctx, e, callerRole, ErrSetHRSalary); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sal := &domain.Salary{
		ID:         uuid.New().String(),
		EmployeeID: e.ID,
		Basic:      *in.Basic,
		Allowances: in.Allowances,
		Deductions: in.Deductions,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := sal.Validate(); err != nil {
		return nil, ErrNegativeAmount
	}
	if err := s.repo.Create(ctx, sal); err != nil {
		if errors.Is(err, salaryrepo.ErrSalaryExists) {
			return nil, ErrAlreadySet
		}
		return nil, errs.Internal(err)
	}
	s.emit(callerID, sal)
	return s.entry(ctx, sal)
}

// Update applies p to salary id and recomputes the net amount.
func (s *Service) Update(ctx context.Context, callerID, callerRole, id string, p Patch) (*Entry, error) {
	sal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if sal == nil {
		return nil, ErrNotFound
	}
	e, err := s.employees.GetByID(ctx, sal.EmployeeID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if e != nil {
		if err := s.guardHR(ctx, e, callerRole, ErrUpdateHRSalary); err != nil {
			return nil, err
		}
	}
	if p.Basic != nil {
		sal.Basic = *p.Basic
	}
	if p.Allowances != nil {
		sal.Allowances = *p.Allowances
	}
	if p.Deductions != nil {
		sal.Deductions = *p.Deductions
	}
	if err := sal.Validate(); err != nil {
		return nil, ErrNegativeAmount
	}
	sal.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, sal); err != nil {
		return nil, errs.Internal(err)
	}
	s.emit(callerID, sal)
	return s.entry(ctx, sal)
}

// List returns every salary with its employee's view.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	list, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, errs.Internal(err)
	}
	refs := make([]identitydomain.Ref, len(list))
	for i, sal := range list {
		refs[i] = identitydomain.EmployeeRef(sal.EmployeeID)
	}
	views, err := s.profiles.Views(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(list))
	for i, sal := range list {
		out[i] = Entry{Salary: sal, View: views[refs[i]]}
	}
	return out, nil
}

// ForEmployee returns the salary of the profile employeeID resolves to.
func (s *Service) ForEmployee(ctx context.Context, employeeID string) (*Entry, error) {
	e, err := s.profiles.ResolveRef(ctx, identitydomain.UnknownRef(strings.TrimSpace(employeeID)))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEmployeeHasNoSalary
	}
	sal, err := s.repo.GetByEmployee(ctx, e.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if sal == nil {
		return nil, ErrEmployeeHasNoSalary
	}
	return s.entry(ctx, sal)
}

// Mine returns the caller's own salary.
func (s *Service) Mine(ctx context.Context, callerID string) (*Entry, error) {
	e, err := s.profiles.ResolveRef(ctx, identitydomain.PrincipalRef(callerID))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNoEmployeeRecord
	}
	sal, err := s.repo.GetByEmployee(ctx, e.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if sal == nil {
		return nil, ErrNotFound
	}
	return s.entry(ctx, sal)
}

// guardHR returns deny when e belongs to an HR account and the caller is not ADMIN.
func (s *Service) guardHR(ctx context.Context, e *employeedomain.Employee, callerRole string, deny error) error {
	if callerRole == string(roledomain.Admin) {
		return nil
	}
	role, err := s.accountRole(ctx, e)
	if err != nil {
		return err
	}
	if role == string(roledomain.HR) {
		return deny
	}
	return nil
}

// accountRole is the role name of e's account: the linked principal, else a same-email principal.
func (s *Service) accountRole(ctx context.Context, e *employeedomain.Employee) (string, error) {
	var (
		p   *principaldomain.Principal
		err error
	)
	if e.PrincipalID != nil {
		p, err = s.principals.GetByID(ctx, *e.PrincipalID)
	} else {
		p, err = s.principals.GetByEmail(ctx, e.Email)
	}
	if err != nil {
		return "", errs.Internal(err)
	}
	if p == nil {
		return "", nil
	}
	return p.RoleName, nil
}

func (s *Service) entry(ctx context.Context, sal *domain.Salary) (*Entry, error) {
	ref := identitydomain.EmployeeRef(sal.EmployeeID)
	views, err := s.profiles.Views(ctx, []identitydomain.Ref{ref})
	if err != nil {
		return nil, err
	}
	return &Entry{Salary: sal, View: views[ref]}, nil
}

func (s *Service) emit(callerID string, sal *domain.Salary) {
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventSalarySet, callerID, sal.EmployeeID,
		map[string]any{"salaryId": sal.ID, "net": sal.Net}))
}
