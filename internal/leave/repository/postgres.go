package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/leave/domain"
)

// ErrTypeExists is returned by CreateType when a leave type with the name exists.
var ErrTypeExists = errors.New("leave type already exists")

const selectRequest = `SELECT r.id, r.employee_id, r.leave_type_id, COALESCE(t.name, ''), r.start_date, r.end_date,
r.reason, r.status, r.applied_at, r.approved_by, r.created_at, r.updated_at
FROM leave_requests r LEFT JOIN leave_types t ON t.id = r.leave_type_id`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a leave repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) CreateType(ctx context.Context, t *domain.Type) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO leave_types (id, name, description, days_per_year, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`,
		t.ID, t.Name, t.Description, t.DaysPerYear, t.CreatedAt)
	if db.IsUniqueViolation(err, "leave_types_name_key") {
		return ErrTypeExists
	}
	return err
}

func (r *PostgresRepository) GetType(ctx context.Context, id string) (*domain.Type, error) {
	t, err := scanType(db.Conn(ctx, r.conn).QueryRowContext(ctx, `
SELECT id, name, description, days_per_year, is_deleted, created_at, updated_at
FROM leave_types WHERE id = $1 AND NOT is_deleted`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *PostgresRepository) ListTypes(ctx context.Context) ([]*domain.Type, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, `
SELECT id, name, description, days_per_year, is_deleted, created_at, updated_at
FROM leave_types WHERE NOT is_deleted ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Type
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SeedTypes(ctx context.Context, types []domain.Type, overwrite bool) error {
	query := `
INSERT INTO leave_types (id, name, description, days_per_year, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (name) DO NOTHING`
	if overwrite {
		query = `
INSERT INTO leave_types (id, name, description, days_per_year, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, days_per_year = EXCLUDED.days_per_year,
	is_deleted = FALSE, updated_at = EXCLUDED.updated_at`
	}
	conn := db.Conn(ctx, r.conn)
	now := time.Now().UTC()
	for _, t := range types {
		if _, err := conn.ExecContext(ctx, query, uuid.New().String(), t.Name, t.Description, t.DaysPerYear, now); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) CreateRequest(ctx context.Context, req *domain.Request) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO leave_requests (id, employee_id, leave_type_id, start_date, end_date, reason, status, applied_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $8)`,
		req.ID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.Reason, string(req.Status), req.AppliedAt)
	return err
}

func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	req, err := scanRequest(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectRequest+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (r *PostgresRepository) ListRequests(ctx context.Context, employeeID string) ([]*domain.Request, error) {
	query, args := selectRequest, []any{}
	if employeeID != "" {
		query += ` WHERE r.employee_id = $1`
		args = append(args, employeeID)
	}
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query+` ORDER BY r.applied_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, req *domain.Request) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE leave_requests SET status = $2, approved_by = $3, updated_at = $4 WHERE id = $1`,
		req.ID, string(req.Status), req.ApprovedBy, req.UpdatedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanType(s scanner) (*domain.Type, error) {
	var t domain.Type
	if err := s.Scan(&t.ID, &t.Name, &t.Description, &t.DaysPerYear, &t.Deleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanRequest(s scanner) (*domain.Request, error) {
	var (
		req        domain.Request
		status     string
		approvedBy sql.NullString
	)
	if err := s.Scan(&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.LeaveTypeName, &req.StartDate, &req.EndDate,
		&req.Reason, &status, &req.AppliedAt, &approvedBy, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.Status = domain.Status(status)
	if approvedBy.Valid {
		req.ApprovedBy = &approvedBy.String
	}
	return &req, nil
}
