package repository

import (
	"context"

	"employee-management/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	// List returns entries matching f, newest first.
	List(ctx context.Context, f domain.Filter) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
