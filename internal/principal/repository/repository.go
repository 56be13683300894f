package repository

import (
	"context"
	"time"

	"employee-management/backend/internal/principal/domain"
)

// Repository defines persistence for principals.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	// GetByResetTokenHash returns the principal holding an unexpired reset token with the given hash.
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.Principal, error)
	Create(ctx context.Context, p *domain.Principal) error
	// Update writes name and email.
	Update(ctx context.Context, p *domain.Principal) error
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id, roleID string) error
	// SetPassword replaces the password hash and clears any reset token.
	SetPassword(ctx context.Context, id, hash string) error
	SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Principal, error)
	Delete(ctx context.Context, id string) error
	// TransitionApproval moves a PENDING principal to d.State in one conditional update.
	// Returns nil, nil when no PENDING row with id exists.
	TransitionApproval(ctx context.Context, id string, d domain.Decision) (*domain.Principal, error)
	// ClearExpiredResetTokens removes reset tokens that expired before now and returns how many were cleared.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
