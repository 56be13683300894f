package repository

import (
	"context"
	"database/sql"
	"errors"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/salary/domain"
)

// ErrSalaryExists is returned by Create when the employee already has a salary.
var ErrSalaryExists = errors.New("salary already exists for employee")

const selectSalary = `SELECT s.id, s.employee_id, s.basic_salary, s.allowances, s.deductions, s.net_salary, s.created_at, s.updated_at
FROM salaries s`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a salary repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, s *domain.Salary) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO salaries (id, employee_id, basic_salary, allowances, deductions, net_salary, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		s.ID, s.EmployeeID, s.Basic, s.Allowances, s.Deductions, s.Net, s.CreatedAt)
	if db.IsUniqueViolation(err, "salaries_employee_id_key") {
		return ErrSalaryExists
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Salary, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectSalary+` WHERE s.id = $1`, id))
}

func (r *PostgresRepository) GetByEmployee(ctx context.Context, employeeID string) (*domain.Salary, error) {
	return scanOne(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectSalary+` WHERE s.employee_id = $1`, employeeID))
}

func (r *PostgresRepository) Update(ctx context.Context, s *domain.Salary) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE salaries SET basic_salary = $2, allowances = $3, deductions = $4, net_salary = $5, updated_at = $6
WHERE id = $1`,
		s.ID, s.Basic, s.Allowances, s.Deductions, s.Net, s.UpdatedAt)
	return err
}

func (r *PostgresRepository) List(ctx context.Context, liveOnly bool) ([]*domain.Salary, error) {
	query := selectSalary
	if liveOnly {
		query += ` JOIN employees e ON e.id = s.employee_id WHERE NOT e.is_deleted`
	}
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query+` ORDER BY s.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Salary
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*domain.Salary, error) {
	var s domain.Salary
	if err := sc.Scan(&s.ID, &s.EmployeeID, &s.Basic, &s.Allowances, &s.Deductions, &s.Net, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanOne(row *sql.Row) (*domain.Salary, error) {
	s, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}
