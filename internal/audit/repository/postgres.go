package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"employee-management/backend/internal/audit/domain"
	"employee-management/backend/internal/db"
)

// defaultListLimit caps List when the filter sets no limit.
const defaultListLimit = 100

const selectAuditLog = `SELECT id, principal_id, action, resource, ip, metadata, created_at FROM audit_logs`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	a, err := scan(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectAuditLog+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List returns audit logs matching f, newest first.
func (r *PostgresRepository) List(ctx context.Context, f domain.Filter) ([]*domain.AuditLog, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("principal_id", f.PrincipalID)
	add("action", f.Action)
	add("resource", f.Resource)

	q := selectAuditLog
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO audit_logs (id, principal_id, action, resource, ip, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.PrincipalID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.AuditLog, error) {
	var a domain.AuditLog
	if err := s.Scan(&a.ID, &a.PrincipalID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
