package repository

import (
	"context"

	"employee-management/backend/internal/salary/domain"
)

// Repository defines persistence for salaries. Get methods return nil when nothing matches.
type Repository interface {
	// Create returns ErrSalaryExists when the employee already has a salary.
	Create(ctx context.Context, s *domain.Salary) error
	GetByID(ctx context.Context, id string) (*domain.Salary, error)
	GetByEmployee(ctx context.Context, employeeID string) (*domain.Salary, error)
	Update(ctx context.Context, s *domain.Salary) error
	// List returns every salary. When liveOnly is set, salaries of soft-deleted employees are skipped.
	List(ctx context.Context, liveOnly bool) ([]*domain.Salary, error)
}
