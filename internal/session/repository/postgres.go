package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/session/domain"
)

const selectSession = `SELECT id, principal_id, refresh_jti, refresh_token_hash, expires_at, revoked_at, last_seen_at,
ip_address, created_at FROM sessions`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, err := scan(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectSession+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListByPrincipal returns every session of the principal, newest first.
func (r *PostgresRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*domain.Session, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx,
		selectSession+` WHERE principal_id = $1 ORDER BY created_at DESC`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO sessions (id, principal_id, refresh_jti, refresh_token_hash, expires_at, ip_address, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.PrincipalID, s.RefreshJti, s.RefreshTokenHash, s.ExpiresAt, s.IPAddress, s.CreatedAt)
	return err
}

// Revoke marks the session revoked. Already revoked sessions keep their original revocation time.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

// RevokeAllByPrincipal revokes every open session of the principal.
func (r *PostgresRepository) RevokeAllByPrincipal(ctx context.Context, principalID string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE principal_id = $1 AND revoked_at IS NULL`, principalID)
	return err
}

// RotateRefreshToken swaps the session's refresh jti and hash when it still holds oldJti.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, sessionID, oldJti, newJti, refreshTokenHash string, at time.Time) (bool, error) {
	res, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE sessions SET refresh_jti = $3, refresh_token_hash = $4, last_seen_at = $5
WHERE id = $1 AND refresh_jti = $2 AND revoked_at IS NULL`,
		sessionID, oldJti, newJti, refreshTokenHash, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpired deletes sessions that expired or were revoked before cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1 OR revoked_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*domain.Session, error) {
	var (
		s         domain.Session
		revokedAt sql.NullTime
		lastSeen  sql.NullTime
	)
	if err := sc.Scan(&s.ID, &s.PrincipalID, &s.RefreshJti, &s.RefreshTokenHash, &s.ExpiresAt, &revokedAt, &lastSeen,
		&s.IPAddress, &s.CreatedAt); err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	if lastSeen.Valid {
		s.LastSeenAt = &lastSeen.Time
	}
	return &s, nil
}
