package repository

import (
	"context"
	"time"

	"employee-management/backend/internal/session/domain"
)

// Repository defines persistence for refresh sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByPrincipal(ctx context.Context, principalID string) error
	// RotateRefreshToken replaces the refresh jti and hash only while the session still holds oldJti.
	// Returns false when another refresh won the race.
	RotateRefreshToken(ctx context.Context, sessionID, oldJti, newJti, refreshTokenHash string, at time.Time) (bool, error)
	// DeleteExpired removes sessions that expired or were revoked before cutoff and returns how many.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
