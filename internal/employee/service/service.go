// Package service implements employee profile management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"employee-management/backend/internal/employee/domain"
	employeerepo "employee-management/backend/internal/employee/repository"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

// Errors returned by Service.
var (
	ErrNameEmailRequired  = errs.New(errs.Validation, "Name and email are required")
	ErrEmailTaken         = errs.New(errs.Conflict, "Employee email already exists")
	ErrNotFound           = errs.New(errs.NotFound, "Employee not found")
	ErrProfileNotFound    = errs.New(errs.NotFound, "Employee profile not found")
	ErrInvalidStatus      = errs.New(errs.Validation, "Status must be Active or Inactive")
	ErrDesignationUnknown = errs.New(errs.Validation, "Designation not found")
)

// Store is the employee persistence used by the service.
type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) error
	Update(ctx context.Context, e *domain.Employee) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Employee, error)
	DeleteCascade(ctx context.Context, e *domain.Employee) error
}

// ProfileResolver finds the employee profile of a reference. Implemented by the identity resolver.
type ProfileResolver interface {
	ResolveRef(ctx context.Context, ref identitydomain.Ref) (*domain.Employee, error)
}

// DesignationChecker reports whether a designation exists.
type DesignationChecker interface {
	DesignationExists(ctx context.Context, id string) (bool, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Input is the payload of Create. JoiningDate defaults to now.
type Input struct {
	Name          string
	Email         string
	Phone         string
	Department    string
	DesignationID string
	JoiningDate   *time.Time
	Status        domain.Status
}

// Patch is a partial update; nil fields are kept.
type Patch struct {
	Name          *string
	Email         *string
	Phone         *string
	Department    *string
	DesignationID *string
	JoiningDate   *time.Time
	Status        *domain.Status
}

// Service implements the employees routes.
type Service struct {
	employees    Store
	resolver     ProfileResolver
	designations DesignationChecker
	tx           Transactor
	events       telemetry.EventEmitter
	now          func() time.Time
}

// NewService returns an employee Service. designations and events may be nil.
func NewService(employees Store, resolver ProfileResolver, designations DesignationChecker, tx Transactor, events telemetry.EventEmitter) *Service {
	return &Service{
		employees:    employees,
		resolver:     resolver,
		designations: designations,
		tx:           tx,
		events:       events,
		now:          time.Now,
	}
}

// Create adds an employee profile with no linked principal.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Employee, error) {
	name := strings.TrimSpace(in.Name)
	email := principaldomain.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, ErrNameEmailRequired
	}
	now := s.now().UTC()
	e := &domain.Employee{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
		Department:  strings.TrimSpace(in.Department),
		JoiningDate: now,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.JoiningDate != nil {
		e.JoiningDate = in.JoiningDate.UTC()
	}
	if err := s.setDesignation(ctx, e, in.DesignationID); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, ErrInvalidStatus
	}
	if err := s.employees.Create(ctx, e); err != nil {
		if errors.Is(err, employeerepo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errs.Internal(err)
	}
	return s.Get(ctx, e.ID)
}

// List returns non-deleted profiles matching f. Profiles of ADMIN accounts are never listed.
func (s *Service) List(ctx context.Context, f domain.Filter) ([]*domain.Employee, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.ExcludeRole = string(roledomain.Admin)
	list, err := s.employees.List(ctx, f)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// Get returns the non-deleted employee id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// Update applies p to employee id.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*domain.Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil && principaldomain.NormalizeEmail(*p.Email) != "" {
		e.Email = principaldomain.NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		e.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Department != nil {
		e.Department = strings.TrimSpace(*p.Department)
	}
	if p.DesignationID != nil {
		if err := s.setDesignation(ctx, e, *p.DesignationID); err != nil {
			return nil, err
		}
	}
	if p.JoiningDate != nil {
		e.JoiningDate = p.JoiningDate.UTC()
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if err := e.Validate(); err != nil {
		return nil, ErrInvalidStatus
	}
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, e.ID)
}

// Delete hard-deletes employee id with its attendance, salary, payroll, leave requests and linked
// principal in one transaction. The principal's refresh sessions go with it; access tokens already
// issued stay valid until they expire.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.employees.DeleteCascade(ctx, e)
	}); err != nil {
		return errs.Internal(err)
	}
	meta := map[string]any{"email": e.Email}
	if e.PrincipalID != nil {
		meta["principalId"] = *e.PrincipalID
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventEmployeeDeleted, actorID, e.ID, meta))
	return nil
}

// Profile returns the caller's own profile.
func (s *Service) Profile(ctx context.Context, principalID string) (*domain.Employee, error) {
	e, err := s.resolver.ResolveRef(ctx, identitydomain.PrincipalRef(principalID))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrProfileNotFound
	}
	return e, nil
}

// UpdateProfile lets the caller change their own name and phone. Other fields are not self-service.
func (s *Service) UpdateProfile(ctx context.Context, principalID string, name, phone *string) (*domain.Employee, error) {
	e, err := s.Profile(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		e.Name = strings.TrimSpace(*name)
	}
	if phone != nil {
		e.Phone = strings.TrimSpace(*phone)
	}
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, e.ID)
}

func (s *Service) setDesignation(ctx context.Context, e *domain.Employee, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		e.DesignationID = nil
		e.DesignationName = ""
		return nil
	}
	if s.designations != nil {
		ok, err := s.designations.DesignationExists(ctx, id)
		if err != nil {
			return errs.Internal(err)
		}
		if !ok {
			return ErrDesignationUnknown
		}
	}
	e.DesignationID = &id
	return nil
}

func (s *Service) save(ctx context.Context, e *domain.Employee) error {
	e.UpdatedAt = s.now().UTC()
	if err := s.employees.Update(ctx, e); err != nil {
		if errors.Is(err, employeerepo.ErrEmailTaken) {
			return ErrEmailTaken
		}
		return errs.Internal(err)
	}
	return nil
}
