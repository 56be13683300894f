package repository

import (
	"context"

	"employee-management/backend/internal/payroll/domain"
)

// Repository defines persistence for payroll records.
type Repository interface {
	// Create returns ErrPayrollExists when the employee already has a record for the month and year.
	Create(ctx context.Context, p *domain.Payroll) error
	// GetByID returns the record for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Payroll, error)
	// List returns records of the period; a zero month or year matches any.
	List(ctx context.Context, month string, year int) ([]*domain.Payroll, error)
	// ListByEmployee returns the employee's records, newest year first.
	ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error)
	UpdateStatus(ctx context.Context, p *domain.Payroll) error
}
