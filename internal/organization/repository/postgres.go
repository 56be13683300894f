package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/organization/domain"
)

var (
	// ErrDepartmentExists is returned when a department with the name already exists.
	ErrDepartmentExists = errors.New("department already exists")
	// ErrDesignationExists is returned when the department already has a live designation with the name.
	ErrDesignationExists = errors.New("designation already exists in department")
)

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

const departmentColumns = `id, name, description, is_deleted, created_at, updated_at`

// GetDepartment returns the live department for id, or nil if not found.
func (r *PostgresRepository) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	row := db.Conn(ctx, r.conn).QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1 AND NOT is_deleted`, id)
	var d domain.Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Deleted, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDepartments returns live departments by name with the number of live employees in each.
func (r *PostgresRepository) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, `
SELECT d.id, d.name, d.description, d.is_deleted, d.created_at, d.updated_at,
	(SELECT count(*) FROM employees e WHERE e.department = d.name AND NOT e.is_deleted)
FROM departments d
WHERE NOT d.is_deleted
ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Deleted, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// CreateDepartment persists d. The department must have ID set.
func (r *PostgresRepository) CreateDepartment(ctx context.Context, d *domain.Department) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`INSERT INTO departments (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		d.ID, d.Name, d.Description, d.CreatedAt)
	if db.IsUniqueViolation(err, "departments_name_key") {
		return ErrDepartmentExists
	}
	return err
}

// UpdateDepartment writes name and description.
func (r *PostgresRepository) UpdateDepartment(ctx context.Context, d *domain.Department) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE departments SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		d.ID, d.Name, d.Description, time.Now().UTC())
	if db.IsUniqueViolation(err, "departments_name_key") {
		return ErrDepartmentExists
	}
	return err
}

// SoftDeleteDepartment marks the department deleted.
func (r *PostgresRepository) SoftDeleteDepartment(ctx context.Context, id string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE departments SET is_deleted = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return err
}

const designationColumns = `id, name, description, department, is_deleted, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDesignation(s scanner) (*domain.Designation, error) {
	var d domain.Designation
	if err := s.Scan(&d.ID, &d.Name, &d.Description, &d.Department, &d.Deleted, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDesignation returns the live designation for id, or nil if not found.
func (r *PostgresRepository) GetDesignation(ctx context.Context, id string) (*domain.Designation, error) {
	d, err := scanDesignation(db.Conn(ctx, r.conn).QueryRowContext(ctx,
		`SELECT `+designationColumns+` FROM designations WHERE id = $1 AND NOT is_deleted`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// ListDesignations returns live designations ordered by department and name.
func (r *PostgresRepository) ListDesignations(ctx context.Context, department string) ([]*domain.Designation, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx,
		`SELECT `+designationColumns+` FROM designations
WHERE NOT is_deleted AND ($1 = '' OR department = $1)
ORDER BY department, name`, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Designation
	for rows.Next() {
		d, err := scanDesignation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDesignation persists d. The designation must have ID set.
func (r *PostgresRepository) CreateDesignation(ctx context.Context, d *domain.Designation) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`INSERT INTO designations (id, name, description, department, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		d.ID, d.Name, d.Description, d.Department, d.CreatedAt)
	if db.IsUniqueViolation(err, "designations_name_department_key") {
		return ErrDesignationExists
	}
	return err
}

// UpdateDesignation writes name, description and department.
func (r *PostgresRepository) UpdateDesignation(ctx context.Context, d *domain.Designation) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE designations SET name = $2, description = $3, department = $4, updated_at = $5 WHERE id = $1`,
		d.ID, d.Name, d.Description, d.Department, time.Now().UTC())
	if db.IsUniqueViolation(err, "designations_name_department_key") {
		return ErrDesignationExists
	}
	return err
}

// SoftDeleteDesignation marks the designation deleted.
func (r *PostgresRepository) SoftDeleteDesignation(ctx context.Context, id string) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE designations SET is_deleted = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return err
}
