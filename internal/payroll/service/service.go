// Package service implements monthly payroll generation and payment tracking.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	employeedomain "employee-management/backend/internal/employee/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/payroll/domain"
	payrollrepo "employee-management/backend/internal/payroll/repository"
	"employee-management/backend/internal/platform/errs"
	salarydomain "employee-management/backend/internal/salary/domain"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

// Errors returned by Service.
var (
	ErrPeriodRequired   = errs.New(errs.Validation, "Month and year are required")
	ErrInvalidMonth     = errs.New(errs.Validation, "Month must be a month name such as January")
	ErrNotFound         = errs.New(errs.NotFound, "Payroll record not found")
	ErrInvalidStatus    = errs.New(errs.Validation, "Status must be Paid or Pending")
	ErrNoEmployeeRecord = errs.New(errs.NotFound, "Employee record not found")
)

// Salaries lists the salary configurations payroll is generated from.
type Salaries interface {
	List(ctx context.Context, liveOnly bool) ([]*salarydomain.Salary, error)
}

// Profiles resolves references to employee profiles and their display views. Implemented by the
// identity resolver.
type Profiles interface {
	ResolveRef(ctx context.Context, ref identitydomain.Ref) (*employeedomain.Employee, error)
	Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error)
}

// Entry is a payroll record with the view of its employee.
type Entry struct {
	Payroll *domain.Payroll
	View    identitydomain.ProfileView
}

// GenerateResult reports one generation run. Errors has one message per skipped employee.
type GenerateResult struct {
	Created []*domain.Payroll
	Errors  []string
}

// Service implements the payroll routes.
type Service struct {
	repo     payrollrepo.Repository
	salaries Salaries
	profiles Profiles
	events   telemetry.EventEmitter
	now      func() time.Time
}

// NewService returns a payroll Service. events may be nil.
func NewService(repo payrollrepo.Repository, salaries Salaries, profiles Profiles, events telemetry.EventEmitter) *Service {
	return &Service{repo: repo, salaries: salaries, profiles: profiles, events: events, now: time.Now}
}

// Generate creates a Pending record for month and year from every salary of a non-deleted employee.
// Employees that already have a record for the period are skipped and reported.
func (s *Service) Generate(ctx context.Context, callerID, month string, year int) (*GenerateResult, error) {
	if strings.TrimSpace(month) == "" || year == 0 {
		return nil, ErrPeriodRequired
	}
	month, ok := domain.ParseMonth(month)
	if !ok {
		return nil, ErrInvalidMonth
	}
	salaries, err := s.salaries.List(ctx, true)
	if err != nil {
		return nil, errs.Internal(err)
	}
	refs := make([]identitydomain.Ref, len(salaries))
	for i, sal := range salaries {
		refs[i] = identitydomain.EmployeeRef(sal.EmployeeID)
	}
	views, err := s.profiles.Views(ctx, refs)
	if err != nil {
		return nil, err
	}
	res := &GenerateResult{}
	now := s.now().UTC()
	for i, sal := range salaries {
		p := &domain.Payroll{
			ID:         uuid.New().String(),
			EmployeeID: sal.EmployeeID,
			Month:      month,
			Year:       year,
			Basic:      sal.Basic,
			Allowances: sal.Allowances,
			Deductions: sal.Deductions,
			Net:        sal.Net,
			Status:     domain.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		name := views[refs[i]].Name
		if name == "" {
			name = sal.EmployeeID
		}
		if err := s.repo.Create(ctx, p); err != nil {
			if errors.Is(err, payrollrepo.ErrPayrollExists) {
				res.Errors = append(res.Errors, fmt.Sprintf("Payroll already exists for %s for %s %d", name, month, year))
				continue
			}
			logs.With("payroll").WithError(err).WithField("employee_id", sal.EmployeeID).Error("create payroll")
			res.Errors = append(res.Errors, fmt.Sprintf("Failed for %s", name))
			continue
		}
		res.Created = append(res.Created, p)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPayrollGenerated, callerID, "",
		map[string]any{"month": month, "year": year, "created": len(res.Created), "skipped": len(res.Errors)}))
	return res, nil
}

// List returns the records of a period with views. Empty month or zero year matches any.
func (s *Service) List(ctx context.Context, month string, year int) ([]Entry, error) {
	if strings.TrimSpace(month) != "" {
		m, ok := domain.ParseMonth(month)
		if !ok {
			return nil, ErrInvalidMonth
		}
		month = m
	}
	list, err := s.repo.List(ctx, month, year)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return s.entries(ctx, list)
}

// ForEmployee returns the history of the profile employeeID resolves to. Unknown ids yield an empty list.
func (s *Service) ForEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error) {
	e, err := s.profiles.ResolveRef(ctx, identitydomain.UnknownRef(strings.TrimSpace(employeeID)))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	list, err := s.repo.ListByEmployee(ctx, e.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// Mine returns the caller's own history with views.
func (s *Service) Mine(ctx context.Context, callerID string) ([]Entry, error) {
	e, err := s.profiles.ResolveRef(ctx, identitydomain.PrincipalRef(callerID))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNoEmployeeRecord
	}
	list, err := s.repo.ListByEmployee(ctx, e.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return s.entries(ctx, list)
}

// UpdateStatus sets the status of record id. A nil status keeps the current one, so paymentDate alone
// can be corrected.
func (s *Service) UpdateStatus(ctx context.Context, callerID, id string, status *domain.Status, paymentDate *time.Time) (*domain.Payroll, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	next := p.Status
	if status != nil {
		next = *status
	}
	p.SetStatus(next, paymentDate, s.now())
	if err := s.repo.UpdateStatus(ctx, p); err != nil {
		return nil, errs.Internal(err)
	}
	if p.Status == domain.StatusPaid {
		telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPayrollPaid, callerID, p.EmployeeID,
			map[string]any{"payrollId": p.ID, "month": p.Month, "year": p.Year, "net": p.Net}))
	}
	return p, nil
}

func (s *Service) entries(ctx context.Context, list []*domain.Payroll) ([]Entry, error) {
	refs := make([]identitydomain.Ref, len(list))
	for i, p := range list {
		refs[i] = identitydomain.EmployeeRef(p.EmployeeID)
	}
	views, err := s.profiles.Views(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(list))
	for i, p := range list {
		out[i] = Entry{Payroll: p, View: views[refs[i]]}
	}
	return out, nil
}
