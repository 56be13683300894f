package repository

import (
	"context"

	"employee-management/backend/internal/role/domain"
)

// Repository defines persistence for roles.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name domain.Name) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	// Upsert creates the role or replaces its permissions when the name already exists.
	Upsert(ctx context.Context, r *domain.Role) (*domain.Role, error)
}
