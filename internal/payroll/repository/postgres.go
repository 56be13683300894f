package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"employee-management/backend/internal/db"
	"employee-management/backend/internal/payroll/domain"
)

// ErrPayrollExists is returned by Create when the period already has a record for the employee.
var ErrPayrollExists = errors.New("payroll already exists for period")

const selectPayroll = `SELECT id, employee_id, month, year, basic_salary, allowances, deductions, net_salary, status,
payment_date, created_at, updated_at
FROM payrolls`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a payroll repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Payroll) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO payrolls (id, employee_id, month, year, basic_salary, allowances, deductions, net_salary, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		p.ID, p.EmployeeID, p.Month, p.Year, p.Basic, p.Allowances, p.Deductions, p.Net, string(p.Status), p.CreatedAt)
	if db.IsUniqueViolation(err, "payroll_employee_period_key") {
		return ErrPayrollExists
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Payroll, error) {
	p, err := scan(db.Conn(ctx, r.conn).QueryRowContext(ctx, selectPayroll+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PostgresRepository) List(ctx context.Context, month string, year int) ([]*domain.Payroll, error) {
	var (
		where []string
		args  []any
	)
	if month != "" {
		args = append(args, month)
		where = append(where, fmt.Sprintf("month = $%d", len(args)))
	}
	if year != 0 {
		args = append(args, year)
		where = append(where, fmt.Sprintf("year = $%d", len(args)))
	}
	query := selectPayroll
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return r.query(ctx, query+" ORDER BY year DESC, created_at DESC", args...)
}

func (r *PostgresRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error) {
	return r.query(ctx, selectPayroll+` WHERE employee_id = $1 ORDER BY year DESC, created_at DESC`, employeeID)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, p *domain.Payroll) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx,
		`UPDATE payrolls SET status = $2, payment_date = $3, updated_at = $4 WHERE id = $1`,
		p.ID, string(p.Status), p.PaymentDate, p.UpdatedAt)
	return err
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Payroll, error) {
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Payroll
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.Payroll, error) {
	var (
		p      domain.Payroll
		status string
		paidAt sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.EmployeeID, &p.Month, &p.Year, &p.Basic, &p.Allowances, &p.Deductions, &p.Net,
		&status, &paidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	if paidAt.Valid {
		t := paidAt.Time
		p.PaymentDate = &t
	}
	return &p, nil
}
