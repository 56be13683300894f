package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/principal/domain"
)

// ErrEmailTaken is returned by Create and Update when another principal holds the email.
var ErrEmailTaken = errors.New("principal email already exists")

const principalColumns = `p.id, p.name, p.email, p.password_hash, p.role_id, r.name, p.is_active, p.approval_state,
p.approved_by, p.approved_at, p.rejection_reason, p.reset_token_hash, p.reset_token_expires_at, p.created_at, p.updated_at`

const selectPrincipal = `SELECT ` + principalColumns + ` FROM principals p JOIN roles r ON r.id = p.role_id`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a principal repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByID returns the principal for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectPrincipal+` WHERE p.id = $1`, id))
}

// GetByEmail returns the principal with the given email (case-insensitive), or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectPrincipal+` WHERE lower(p.email) = $1`, domain.NormalizeEmail(email)))
}

// GetByResetTokenHash returns the principal whose reset token matches hash and has not expired at now.
func (r *PostgresRepository) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.Principal, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx,
		selectPrincipal+` WHERE p.reset_token_hash = $1 AND p.reset_token_expires_at > $2`, hash, now))
}

// Create persists the principal. The principal must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Principal) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO principals (id, name, email, password_hash, role_id, is_active, approval_state,
	approved_by, approved_at, rejection_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, domain.NormalizeEmail(p.Email), p.PasswordHash, p.RoleID, p.Active, string(p.ApprovalState),
		p.ApprovedBy, p.ApprovedAt, nullString(p.RejectionReason), p.CreatedAt, p.UpdatedAt)
	if db.IsUniqueViolation(err, "principals_email_key") {
		return ErrEmailTaken
	}
	return err
}

// Update writes the principal's name and email.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Principal) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE principals SET name = $2, email = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.Name, domain.NormalizeEmail(p.Email), time.Now().UTC())
	if db.IsUniqueViolation(err, "principals_email_key") {
		return ErrEmailTaken
	}
	return err
}

// SetActive sets the active flag. No-op if the principal does not exist.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE principals SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, time.Now().UTC())
	return err
}

// SetRole points the principal at another role.
func (r *PostgresRepository) SetRole(ctx context.Context, id, roleID string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE principals SET role_id = $2, updated_at = $3 WHERE id = $1`, id, roleID, time.Now().UTC())
	return err
}

// SetPassword replaces the password hash and clears any outstanding reset token.
func (r *PostgresRepository) SetPassword(ctx context.Context, id, hash string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE principals SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $3
WHERE id = $1`, id, hash, time.Now().UTC())
	return err
}

// SetResetToken stores the hash of a forgot-password token and its expiry.
func (r *PostgresRepository) SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE principals SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = $4 WHERE id = $1`,
		id, hash, expiresAt, time.Now().UTC())
	return err
}

// List returns principals, newest first, optionally narrowed to one approval state.
func (r *PostgresRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Principal, error) {
	query := selectPrincipal
	var args []any
	if f.State != "" {
		query += ` WHERE p.approval_state = $1`
		args = append(args, string(f.State))
	}
	query += ` ORDER BY p.created_at DESC`
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Principal
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the principal. Its refresh sessions go with it through the foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `DELETE FROM principals WHERE id = $1`, id)
	return err
}

// TransitionApproval applies d to the principal only while it is still PENDING. The state check and the
// write are one statement, so of two concurrent deciders exactly one gets a row back.
func (r *PostgresRepository) TransitionApproval(ctx context.Context, id string, d domain.Decision) (*domain.Principal, error) {
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx, `
WITH p AS (
	UPDATE principals
	SET approval_state = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = $4
	WHERE id = $1 AND approval_state = 'PENDING'
	RETURNING *
)
SELECT `+principalColumns+` FROM p JOIN roles r ON r.id = p.role_id`,
		id, string(d.State), nullString(d.DeciderID), d.At, nullString(d.Reason))
	return scanOne(row)
}

// ClearExpiredResetTokens nulls reset tokens that expired before now.
func (r *PostgresRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE principals SET reset_token_hash = NULL, reset_token_expires_at = NULL
WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.Principal, error) {
	var (
		p          domain.Principal
		state      string
		approvedBy sql.NullString
		approvedAt sql.NullTime
		reason     sql.NullString
		resetHash  sql.NullString
		resetExp   sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.RoleID, &p.RoleName, &p.Active, &state,
		&approvedBy, &approvedAt, &reason, &resetHash, &resetExp, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ApprovalState = domain.ApprovalState(state)
	if approvedBy.Valid {
		p.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	p.RejectionReason = reason.String
	p.ResetTokenHash = resetHash.String
	if resetExp.Valid {
		t := resetExp.Time
		p.ResetTokenExpiresAt = &t
	}
	return &p, nil
}

func scanOne(row *sql.Row) (*domain.Principal, error) {
	p, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
