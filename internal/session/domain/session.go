package domain

import "time"

// Session is one refresh-token login of a principal.
type Session struct {
	ID               string
	PrincipalID      string
	ExpiresAt        time.Time
	RevokedAt        *time.Time // nil when not revoked
	LastSeenAt       *time.Time
	IPAddress        string
	RefreshJti       string // current refresh token jti; rotated on every refresh
	RefreshTokenHash string // SHA-256 hash of the current refresh token
	CreatedAt        time.Time
}

// Usable reports whether the session is neither revoked nor expired at now.
func (s *Session) Usable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
