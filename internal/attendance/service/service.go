// Package service implements daily check-in, check-out and attendance reports.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"employee-management/backend/internal/attendance/domain"
	attendancerepo "employee-management/backend/internal/attendance/repository"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/errs"
	roledomain "employee-management/backend/internal/role/domain"
)

// Errors returned by Service.
var (
	ErrSubjectNotFound   = errs.New(errs.NotFound, "Employee not found")
	ErrAlreadyCheckedIn  = errs.New(errs.Conflict, "Already checked in for today")
	ErrNoCheckIn         = errs.New(errs.NotFound, "Check-in record not found for today")
	ErrAlreadyCheckedOut = errs.New(errs.Validation, "Already checked out for today")
	ErrInvalidMonth      = errs.New(errs.Validation, "month must be between 1 and 12")
	ErrMonthRequiresYear = errs.New(errs.Validation, "month and year must be given together")
	ErrNotOwnAttendance  = errs.New(errs.Forbidden, "You can only view your own attendance")
)

// Subjects resolves references to the rows that own attendance and to their display views.
// Implemented by the identity resolver.
type Subjects interface {
	Subject(ctx context.Context, ref identitydomain.Ref) (identitydomain.Ref, bool, error)
	Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error)
}

// Caller is the authenticated principal making a request.
type Caller struct {
	PrincipalID string
	Role        string
}

// Period selects attendance days. Date wins over Month and Year; Month needs Year.
type Period struct {
	Date  *time.Time
	Month int
	Year  int
}

// Entry is a record with the view of its subject.
type Entry struct {
	Record *domain.Record
	View   identitydomain.ProfileView
}

// Service implements the attendance routes.
type Service struct {
	repo     attendancerepo.Repository
	subjects Subjects
	now      func() time.Time
}

// NewService returns an attendance Service.
func NewService(repo attendancerepo.Repository, subjects Subjects) *Service {
	return &Service{repo: repo, subjects: subjects, now: time.Now}
}

// CheckIn opens today's record for employeeID, or for the caller when employeeID is empty.
func (s *Service) CheckIn(ctx context.Context, callerID, employeeID string) (*domain.Record, error) {
	subject, err := s.subject(ctx, callerID, employeeID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.Record{
		ID:        uuid.New().String(),
		Subject:   subject,
		Day:       domain.Day(now),
		CheckIn:   now,
		Status:    domain.StatusPresent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, attendancerepo.ErrAlreadyCheckedIn) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, errs.Internal(err)
	}
	return rec, nil
}

// CheckOut closes today's record for employeeID, or for the caller when employeeID is empty.
func (s *Service) CheckOut(ctx context.Context, callerID, employeeID string) (*domain.Record, error) {
	subject, err := s.subject(ctx, callerID, employeeID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec, err := s.repo.GetForDay(ctx, subject, domain.Day(now))
	if err != nil {
		return nil, errs.Internal(err)
	}
	if rec == nil {
		return nil, ErrNoCheckIn
	}
	if err := rec.Close(now); err != nil {
		return nil, ErrAlreadyCheckedOut
	}
	if err := s.repo.Close(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedOut) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, errs.Internal(err)
	}
	return rec, nil
}

// Personal returns the attendance history of id, newest first. EMPLOYEE callers may only read their own.
// An id that names nobody yields an empty history.
func (s *Service) Personal(ctx context.Context, caller Caller, id string, p Period) ([]*domain.Record, error) {
	rng, err := s.rangeOf(p)
	if err != nil {
		return nil, err
	}
	subject, ok, err := s.subjects.Subject(ctx, identitydomain.UnknownRef(strings.TrimSpace(id)))
	if err != nil {
		return nil, err
	}
	if caller.Role == string(roledomain.Employee) {
		own, ownOK, err := s.subjects.Subject(ctx, identitydomain.PrincipalRef(caller.PrincipalID))
		if err != nil {
			return nil, err
		}
		if !ok || !ownOK || own != subject {
			return nil, ErrNotOwnAttendance
		}
	}
	if !ok {
		return nil, nil
	}
	list, err := s.repo.ListBySubject(ctx, subject, rng)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// All returns every record in the period with its subject's view, newest first. A non-empty department
// keeps only entries whose view has that department.
func (s *Service) All(ctx context.Context, p Period, department string) ([]Entry, error) {
	rng, err := s.rangeOf(p)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, rng)
	if err != nil {
		return nil, errs.Internal(err)
	}
	refs := make([]identitydomain.Ref, len(list))
	for i, rec := range list {
		refs[i] = rec.Subject
	}
	views, err := s.subjects.Views(ctx, refs)
	if err != nil {
		return nil, err
	}
	department = strings.TrimSpace(department)
	out := make([]Entry, 0, len(list))
	for _, rec := range list {
		v := views[rec.Subject]
		if department != "" && (v.Missing || v.Department != department) {
			continue
		}
		out = append(out, Entry{Record: rec, View: v})
	}
	return out, nil
}

func (s *Service) subject(ctx context.Context, callerID, employeeID string) (identitydomain.Ref, error) {
	ref := identitydomain.PrincipalRef(callerID)
	if id := strings.TrimSpace(employeeID); id != "" {
		ref = identitydomain.UnknownRef(id)
	}
	subject, ok, err := s.subjects.Subject(ctx, ref)
	if err != nil {
		return identitydomain.Ref{}, err
	}
	if !ok {
		return identitydomain.Ref{}, ErrSubjectNotFound
	}
	return subject, nil
}

func (s *Service) rangeOf(p Period) (domain.Range, error) {
	switch {
	case p.Date != nil:
		return domain.DayRange(*p.Date), nil
	case p.Month == 0 && p.Year == 0:
		return domain.Range{}, nil
	case p.Month < 0 || p.Month > 12:
		return domain.Range{}, ErrInvalidMonth
	case p.Month == 0:
		from := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return domain.Range{From: from, To: from.AddDate(1, 0, 0)}, nil
	case p.Year == 0:
		return domain.Range{}, ErrMonthRequiresYear
	default:
		return domain.MonthRange(p.Year, time.Month(p.Month)), nil
	}
}
