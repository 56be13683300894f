package repository

import (
	"context"

	"employee-management/backend/internal/leave/domain"
)

// Repository defines persistence for leave types and requests.
type Repository interface {
	// CreateType returns ErrTypeExists when the name is taken.
	CreateType(ctx context.Context, t *domain.Type) error
	// GetType returns the non-deleted type for id, or nil if not found.
	GetType(ctx context.Context, id string) (*domain.Type, error)
	ListTypes(ctx context.Context) ([]*domain.Type, error)
	// SeedTypes inserts types by name. Existing names are left alone unless overwrite is set.
	SeedTypes(ctx context.Context, types []domain.Type, overwrite bool) error

	CreateRequest(ctx context.Context, r *domain.Request) error
	// GetRequest returns the request for id with its type name, or nil if not found.
	GetRequest(ctx context.Context, id string) (*domain.Request, error)
	// ListRequests returns requests newest first; a non-empty employeeID keeps only that employee's.
	ListRequests(ctx context.Context, employeeID string) ([]*domain.Request, error)
	UpdateStatus(ctx context.Context, r *domain.Request) error
}
