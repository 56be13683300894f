package repository

import (
	"context"
	"time"

	"employee-management/backend/internal/attendance/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
)

// Repository defines persistence for attendance records.
type Repository interface {
	// Create inserts r. Returns ErrAlreadyCheckedIn when the subject already has a record for r.Day.
	Create(ctx context.Context, r *domain.Record) error
	// GetForDay returns the subject's record for day, or nil if none.
	GetForDay(ctx context.Context, subject identitydomain.Ref, day time.Time) (*domain.Record, error)
	// Close writes the check-out time and total hours of r.
	Close(ctx context.Context, r *domain.Record) error
	// ListBySubject returns the subject's records within rng, newest day first.
	ListBySubject(ctx context.Context, subject identitydomain.Ref, rng domain.Range) ([]*domain.Record, error)
	// List returns every record within rng, newest day first.
	List(ctx context.Context, rng domain.Range) ([]*domain.Record, error)
}
