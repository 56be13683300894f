package repository

import (
	"context"

	"employee-management/backend/internal/employee/domain"
)

// Repository defines persistence for employee profiles. Get methods skip soft-deleted rows.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	GetByPrincipalID(ctx context.Context, principalID string) (*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) error
	// UpsertForPrincipal inserts e or, when a profile with the same email exists, links it to
	// e.PrincipalID instead of duplicating it. Returns the stored row.
	UpsertForPrincipal(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Employee, error)
	// SetDepartment sets the department of every listed employee and returns how many rows changed.
	SetDepartment(ctx context.Context, ids []string, department string) (int64, error)
	SetDesignation(ctx context.Context, id, designationID string) error
	// DeleteCascade hard-deletes e and everything keyed on it: attendance, salary, payroll,
	// leave requests and the linked principal.
	DeleteCascade(ctx context.Context, e *domain.Employee) error
}
