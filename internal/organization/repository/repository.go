package repository

import (
	"context"

	"employee-management/backend/internal/organization/domain"
)

// Repository defines persistence for departments and designations. Get and List skip soft-deleted rows.
type Repository interface {
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	CreateDepartment(ctx context.Context, d *domain.Department) error
	UpdateDepartment(ctx context.Context, d *domain.Department) error
	SoftDeleteDepartment(ctx context.Context, id string) error

	GetDesignation(ctx context.Context, id string) (*domain.Designation, error)
	// ListDesignations returns live designations, optionally only those of department.
	ListDesignations(ctx context.Context, department string) ([]*domain.Designation, error)
	CreateDesignation(ctx context.Context, d *domain.Designation) error
	UpdateDesignation(ctx context.Context, d *domain.Designation) error
	SoftDeleteDesignation(ctx context.Context, id string) error
}
