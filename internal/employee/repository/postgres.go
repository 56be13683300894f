package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/employee/domain"
)

// ErrEmailTaken is returned by Create and Update when another profile holds the email.
var ErrEmailTaken = errors.New("employee email already exists")

const employeeColumns = `e.id, e.principal_id, e.name, e.email, e.phone, e.department, e.designation_id,
COALESCE(d.name, ''), e.joining_date, e.status, e.is_deleted, e.created_at, e.updated_at`

const selectEmployee = `SELECT ` + employeeColumns + ` FROM employees e LEFT JOIN designations d ON d.id = e.designation_id`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an employee repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByID returns the non-deleted employee for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectEmployee+` WHERE e.id = $1 AND NOT e.is_deleted`, id))
}

// GetByEmail returns the non-deleted employee with the given email (case-insensitive), or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx,
		selectEmployee+` WHERE lower(e.email) = $1 AND NOT e.is_deleted`, normalize(email)))
}

// GetByPrincipalID returns the non-deleted employee linked to principalID, or nil if none.
func (r *PostgresRepository) GetByPrincipalID(ctx context.Context, principalID string) (*domain.Employee, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx,
		selectEmployee+` WHERE e.principal_id = $1 AND NOT e.is_deleted`, principalID))
}

// Create persists the employee. The employee must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Employee) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO employees (id, principal_id, name, email, phone, department, designation_id, joining_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.PrincipalID, e.Name, normalize(e.Email), e.Phone, e.Department, e.DesignationID,
		e.JoiningDate, string(e.Status), e.CreatedAt, e.UpdatedAt)
	if db.IsUniqueViolation(err, "employees_email_key") {
		return ErrEmailTaken
	}
	return err
}

// UpsertForPrincipal inserts e, or links an existing same-email profile to e.PrincipalID. An existing link
// is kept. The profile is undeleted so an approved account always ends with a visible profile.
func (r *PostgresRepository) UpsertForPrincipal(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx, `
WITH e AS (
	INSERT INTO employees (id, principal_id, name, email, phone, department, joining_date, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, '', $5, $6, $7, $8, $8)
	ON CONFLICT ((lower(email))) DO UPDATE
	SET principal_id = COALESCE(employees.principal_id, EXCLUDED.principal_id),
		is_deleted = FALSE,
		updated_at = EXCLUDED.updated_at
	RETURNING *
)
SELECT `+employeeColumns+` FROM e LEFT JOIN designations d ON d.id = e.designation_id`,
		e.ID, e.PrincipalID, e.Name, normalize(e.Email), e.Department, e.JoiningDate, string(e.Status), e.CreatedAt)
	return scanOne(row)
}

// Update writes every mutable field of e.
func (r *PostgresRepository) Update(ctx context.Context, e *domain.Employee) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE employees SET name = $2, email = $3, phone = $4, department = $5, designation_id = $6,
	joining_date = $7, status = $8, updated_at = $9
WHERE id = $1`,
		e.ID, e.Name, normalize(e.Email), e.Phone, e.Department, e.DesignationID, e.JoiningDate, string(e.Status), time.Now().UTC())
	if db.IsUniqueViolation(err, "employees_email_key") {
		return ErrEmailTaken
	}
	return err
}

// List returns non-deleted employees matching f, newest first.
func (r *PostgresRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Employee, error) {
	var (
		where = []string{"NOT e.is_deleted"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(e.name ILIKE %[1]s OR e.email ILIKE %[1]s OR e.phone ILIKE %[1]s OR e.department ILIKE %[1]s)", p))
	}
	if f.Department != "" {
		where = append(where, "e.department = "+arg(f.Department))
	}
	if f.DesignationID != "" {
		where = append(where, "e.designation_id = "+arg(f.DesignationID))
	}
	if f.Status != "" {
		where = append(where, "e.status = "+arg(string(f.Status)))
	}
	if f.ExcludeRole != "" {
		where = append(where, `NOT EXISTS (
	SELECT 1 FROM principals p JOIN roles r ON r.id = p.role_id
	WHERE r.name = `+arg(f.ExcludeRole)+` AND (p.id = e.principal_id OR lower(p.email) = lower(e.email)))`)
	}
	query := selectEmployee + " WHERE " + strings.Join(where, " AND ") + " ORDER BY e.created_at DESC"
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Employee
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetDepartment assigns department to the non-deleted employees in ids.
func (r *PostgresRepository) SetDepartment(ctx context.Context, ids []string, department string) (int64, error) {
	res, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE employees SET department = $2, updated_at = $3 WHERE id = ANY($1) AND NOT is_deleted`,
		ids, department, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetDesignation points the employee at a designation.
func (r *PostgresRepository) SetDesignation(ctx context.Context, id, designationID string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE employees SET designation_id = $2, updated_at = $3 WHERE id = $1`, id, designationID, time.Now().UTC())
	return err
}

// DeleteCascade removes the employee and its dependent rows. Call it inside a transaction.
// Attendance may be keyed on either the profile or the linked principal; both go.
func (r *PostgresRepository) DeleteCascade(ctx context.Context, e *domain.Employee) error {
	conn := db.Conn(ctx, r.conn)
	principalID := ""
	if e.PrincipalID != nil {
		principalID = *e.PrincipalID
	}
	stmts := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM attendance WHERE (subject_kind = 'employee' AND subject_id = $1) OR (subject_kind = 'principal' AND subject_id = $2)`, []any{e.ID, principalID}},
		{`DELETE FROM salaries WHERE employee_id = $1`, []any{e.ID}},
		{`DELETE FROM payrolls WHERE employee_id = $1`, []any{e.ID}},
		{`DELETE FROM leave_requests WHERE employee_id = $1`, []any{e.ID}},
		{`DELETE FROM principals WHERE id = $1 OR lower(email) = $2`, []any{principalID, normalize(e.Email)}},
		{`DELETE FROM employees WHERE id = $1`, []any{e.ID}},
	}
	for _, s := range stmts {
		if _, err := conn.ExecContext(ctx, s.query, s.args...); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.Employee, error) {
	var (
		e             domain.Employee
		principalID   sql.NullString
		designationID sql.NullString
		status        string
	)
	if err := s.Scan(&e.ID, &principalID, &e.Name, &e.Email, &e.Phone, &e.Department, &designationID,
		&e.DesignationName, &e.JoiningDate, &status, &e.Deleted, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if principalID.Valid {
		e.PrincipalID = &principalID.String
	}
	if designationID.Valid {
		e.DesignationID = &designationID.String
	}
	e.Status = domain.Status(status)
	return &e, nil
}

func scanOne(row *sql.Row) (*domain.Employee, error) {
	e, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
