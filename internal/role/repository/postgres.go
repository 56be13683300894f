package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/role/domain"
)

const roleColumns = `id, name, permissions, created_at, updated_at`

type PostgresRepository struct {
	conn db.DBTX

	// pgtype.Map is not safe for concurrent use.
	mu    sync.Mutex
	types *pgtype.Map
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn, types: pgtype.NewMap()}
}

// GetByID returns the role for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return r.scanOne(row)
}

// GetByName returns the role with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name domain.Name) (*domain.Role, error) {
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, string(name))
	return r.scanOne(row)
}

// List returns every role ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Role
	for rows.Next() {
		role, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Upsert inserts the role keyed by name; an existing role keeps its id and gets the new permissions.
func (r *PostgresRepository) Upsert(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	now := time.Now().UTC()
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx, `
INSERT INTO roles (id, name, permissions, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (name) DO UPDATE SET permissions = EXCLUDED.permissions, updated_at = EXCLUDED.updated_at
RETURNING `+roleColumns,
		role.ID, string(role.Name), role.Permissions, now)
	return r.scanOne(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(s scanner) (*domain.Role, error) {
	var (
		role  domain.Role
		name  string
		perms []string
	)
	r.mu.Lock()
	err := s.Scan(&role.ID, &name, r.types.SQLScanner(&perms), &role.CreatedAt, &role.UpdatedAt)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	role.Name = domain.Name(name)
	role.Permissions = perms
	return &role, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.Role, error) {
	role, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}
