// Package service manages departments and designations.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/organization/domain"
	orgrepo "employee-management/backend/internal/organization/repository"
	"employee-management/backend/internal/platform/errs"
)

// Errors returned by Service.
var (
	ErrDepartmentNameRequired  = errs.New(errs.Validation, "Department name required")
	ErrDepartmentExists        = errs.New(errs.Conflict, "Department already exists")
	ErrDepartmentNotFound      = errs.New(errs.NotFound, "Department not found")
	ErrEmployeeIDsRequired     = errs.New(errs.Validation, "employeeIds must list at least one employee")
	ErrDesignationNameRequired = errs.New(errs.Validation, "Designation name required")
	ErrDesignationDeptRequired = errs.New(errs.Validation, "Department required")
	ErrDesignationExists       = errs.New(errs.Conflict, "Designation already exists in this department")
	ErrDesignationNotFound     = errs.New(errs.NotFound, "Designation not found")
	ErrEmployeeIDRequired      = errs.New(errs.Validation, "Employee ID is required")
	ErrEmployeeNotFound        = errs.New(errs.NotFound, "Employee not found")
)

// EmployeeStore is the employee persistence needed for assignments.
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (*employeedomain.Employee, error)
	SetDepartment(ctx context.Context, ids []string, department string) (int64, error)
	SetDesignation(ctx context.Context, id, designationID string) error
}

// Service implements the departments and designations routes.
type Service struct {
	repo      orgrepo.Repository
	employees EmployeeStore
	now       func() time.Time
}

// NewService returns an organization Service.
func NewService(repo orgrepo.Repository, employees EmployeeStore) *Service {
	return &Service{repo: repo, employees: employees, now: time.Now}
}

// CreateDepartment adds a department with a unique name.
func (s *Service) CreateDepartment(ctx context.Context, name, description string) (*domain.Department, error) {
	now := s.now().UTC()
	d := &domain.Department{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.Validate(); err != nil {
		return nil, ErrDepartmentNameRequired
	}
	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		if errors.Is(err, orgrepo.ErrDepartmentExists) {
			return nil, ErrDepartmentExists
		}
		return nil, errs.Internal(err)
	}
	return d, nil
}

// ListDepartments returns live departments.
func (s *Service) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	list, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// UpdateDepartment changes name and description; empty values keep the current ones.
func (s *Service) UpdateDepartment(ctx context.Context, id, name, description string) (*domain.Department, error) {
	d, err := s.department(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(name); v != "" {
		d.Name = v
	}
	if v := strings.TrimSpace(description); v != "" {
		d.Description = v
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateDepartment(ctx, d); err != nil {
		if errors.Is(err, orgrepo.ErrDepartmentExists) {
			return nil, ErrDepartmentExists
		}
		return nil, errs.Internal(err)
	}
	return d, nil
}

// DeleteDepartment soft-deletes department id.
func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := s.department(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteDepartment(ctx, id); err != nil {
		return errs.Internal(err)
	}
	return nil
}

// AssignEmployees sets the department of each live employee in employeeIDs to the department's name.
// Unknown and deleted ids are skipped. Returns the number of employees assigned.
func (s *Service) AssignEmployees(ctx context.Context, id string, employeeIDs []string) (*domain.Department, int64, error) {
	ids := compact(employeeIDs)
	if len(ids) == 0 {
		return nil, 0, ErrEmployeeIDsRequired
	}
	d, err := s.department(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.employees.SetDepartment(ctx, ids, d.Name)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	return d, n, nil
}

// CreateDesignation adds a designation, unique by name within its department.
func (s *Service) CreateDesignation(ctx context.Context, name, description, department string) (*domain.Designation, error) {
	now := s.now().UTC()
	d := &domain.Designation{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Department:  department,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validateDesignation(d); err != nil {
		return nil, err
	}
	if err := s.repo.CreateDesignation(ctx, d); err != nil {
		if errors.Is(err, orgrepo.ErrDesignationExists) {
			return nil, ErrDesignationExists
		}
		return nil, errs.Internal(err)
	}
	return d, nil
}

// ListDesignations returns live designations, optionally of one department.
func (s *Service) ListDesignations(ctx context.Context, department string) ([]*domain.Designation, error) {
	list, err := s.repo.ListDesignations(ctx, strings.TrimSpace(department))
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// UpdateDesignation changes name, description and department; empty values keep the current ones.
func (s *Service) UpdateDesignation(ctx context.Context, id, name, description, department string) (*domain.Designation, error) {
	d, err := s.designation(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(name); v != "" {
		d.Name = v
	}
	if v := strings.TrimSpace(description); v != "" {
		d.Description = v
	}
	if v := strings.TrimSpace(department); v != "" {
		d.Department = v
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateDesignation(ctx, d); err != nil {
		if errors.Is(err, orgrepo.ErrDesignationExists) {
			return nil, ErrDesignationExists
		}
		return nil, errs.Internal(err)
	}
	return d, nil
}

// DeleteDesignation soft-deletes designation id.
func (s *Service) DeleteDesignation(ctx context.Context, id string) error {
	if _, err := s.designation(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteDesignation(ctx, id); err != nil {
		return errs.Internal(err)
	}
	return nil
}

// AssignDesignation gives employeeID the designation id.
func (s *Service) AssignDesignation(ctx context.Context, id, employeeID string) (*domain.Designation, *employeedomain.Employee, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, nil, ErrEmployeeIDRequired
	}
	d, err := s.designation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, nil, errs.Internal(err)
	}
	if e == nil {
		return nil, nil, ErrEmployeeNotFound
	}
	if err := s.employees.SetDesignation(ctx, e.ID, d.ID); err != nil {
		return nil, nil, errs.Internal(err)
	}
	e.DesignationID = &d.ID
	e.DesignationName = d.Name
	return d, e, nil
}

// DesignationExists reports whether a live designation with id exists.
func (s *Service) DesignationExists(ctx context.Context, id string) (bool, error) {
	d, err := s.repo.GetDesignation(ctx, id)
	if err != nil {
		return false, err
	}
	return d != nil, nil
}

func (s *Service) validateDesignation(d *domain.Designation) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrDesignationNameRequired
	}
	if strings.TrimSpace(d.Department) == "" {
		return ErrDesignationDeptRequired
	}
	return d.Validate()
}

func (s *Service) department(ctx context.Context, id string) (*domain.Department, error) {
	d, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if d == nil {
		return nil, ErrDepartmentNotFound
	}
	return d, nil
}

func (s *Service) designation(ctx context.Context, id string) (*domain.Designation, error) {
	d, err := s.repo.GetDesignation(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if d == nil {
		return nil, ErrDesignationNotFound
	}
	return d, nil
}

// compact trims ids and drops blanks and duplicates, keeping order.
func compact(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
