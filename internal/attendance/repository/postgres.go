package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"employee-management/backend/internal/attendance/domain"
	"employee-management/backend/internal/db"
	identitydomain "employee-management/backend/internal/identity/domain"
)

// ErrAlreadyCheckedIn is returned by Create when the subject has a record for the day.
var ErrAlreadyCheckedIn = errors.New("already checked in for the day")

const selectRecord = `SELECT id, subject_kind, subject_id, day, check_in, check_out, status, total_hours, created_at, updated_at
FROM attendance`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an attendance repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// Create persists r. The record must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	_, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
INSERT INTO attendance (id, subject_kind, subject_id, day, check_in, status, total_hours, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)`,
		rec.ID, rec.Subject.Kind.String(), rec.Subject.ID, rec.Day, rec.CheckIn, string(rec.Status), rec.CreatedAt)
	if db.IsUniqueViolation(err, "attendance_subject_day_key") {
		return ErrAlreadyCheckedIn
	}
	return err
}

func (r *PostgresRepository) GetForDay(ctx context.Context, subject identitydomain.Ref, day time.Time) (*domain.Record, error) {
	rec, err := scan(db.Conn(ctx, r.conn).QueryRowContext(ctx,
		selectRecord+` WHERE subject_kind = $1 AND subject_id = $2 AND day = $3`,
		subject.Kind.String(), subject.ID, domain.Day(day)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Close updates only an open record. It returns domain.ErrAlreadyCheckedOut when the record was closed
// by a concurrent request.
func (r *PostgresRepository) Close(ctx context.Context, rec *domain.Record) error {
	res, err := db.Conn(ctx, r.conn).ExecContext(ctx, `
UPDATE attendance SET check_out = $2, total_hours = $3, updated_at = $4
WHERE id = $1 AND check_out IS NULL`,
		rec.ID, rec.CheckOut, rec.TotalHours, rec.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyCheckedOut
	}
	return nil
}

func (r *PostgresRepository) ListBySubject(ctx context.Context, subject identitydomain.Ref, rng domain.Range) ([]*domain.Record, error) {
	return r.list(ctx, rng, "subject_kind = $1 AND subject_id = $2", subject.Kind.String(), subject.ID)
}

func (r *PostgresRepository) List(ctx context.Context, rng domain.Range) ([]*domain.Record, error) {
	return r.list(ctx, rng, "")
}

func (r *PostgresRepository) list(ctx context.Context, rng domain.Range, cond string, args ...any) ([]*domain.Record, error) {
	var where []string
	if cond != "" {
		where = append(where, cond)
	}
	if !rng.From.IsZero() {
		args = append(args, rng.From)
		where = append(where, fmt.Sprintf("day >= $%d", len(args)))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		where = append(where, fmt.Sprintf("day < $%d", len(args)))
	}
	query := selectRecord
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY day DESC, check_in DESC"
	rows, err := db.Conn(ctx, r.conn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.Record, error) {
	var (
		rec      domain.Record
		kind     string
		checkOut sql.NullTime
		status   string
	)
	if err := s.Scan(&rec.ID, &kind, &rec.Subject.ID, &rec.Day, &rec.CheckIn, &checkOut, &status,
		&rec.TotalHours, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Subject.Kind = parseKind(kind)
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOut = &t
	}
	rec.Status = domain.Status(status)
	return &rec, nil
}

func parseKind(s string) identitydomain.Kind {
	if s == identitydomain.KindPrincipal.String() {
		return identitydomain.KindPrincipal
	}
	return identitydomain.KindEmployee
}
