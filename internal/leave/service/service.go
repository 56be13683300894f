// Package service implements leave types and leave requests.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	employeedomain "employee-management/backend/internal/employee/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/leave/domain"
	leaverepo "employee-management/backend/internal/leave/repository"
	"employee-management/backend/internal/platform/errs"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

// Errors returned by Service.
var (
	ErrTypeNameRequired = errs.New(errs.Validation, "Leave type name is required")
	ErrTypeExists       = errs.New(errs.Conflict, "Leave type already exists")
	ErrTypeNotFound     = errs.New(errs.NotFound, "Leave type not found")
	ErrFieldsRequired   = errs.New(errs.Validation, "All fields are required")
	ErrDateOrder        = errs.New(errs.Validation, "End date must not be before start date")
	ErrProfileNotFound  = errs.New(errs.NotFound, "Employee profile not found. Please contact admin.")
	ErrRequestNotFound  = errs.New(errs.NotFound, "Leave request not found")
	ErrInvalidStatus    = errs.New(errs.Validation, "Status must be Approved or Rejected")
	ErrNotOwnLeave      = errs.New(errs.Forbidden, "You can only view your own leave requests")
)

// Profiles resolves references to employee profiles and their display views. Implemented by the
// identity resolver.
type Profiles interface {
	ResolveRef(ctx context.Context, ref identitydomain.Ref) (*employeedomain.Employee, error)
	Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error)
}

// ApplyInput is the payload of Apply.
type ApplyInput struct {
	EmployeeID  string
	LeaveTypeID string
	StartDate   *time.Time
	EndDate     *time.Time
	Reason      string
}

// Entry is a request with the view of its employee.
type Entry struct {
	Request *domain.Request
	View    identitydomain.ProfileView
}

// Service implements the leave routes.
type Service struct {
	repo     leaverepo.Repository
	profiles Profiles
	events   telemetry.EventEmitter
	now      func() time.Time
}

// NewService returns a leave Service. events may be nil.
func NewService(repo leaverepo.Repository, profiles Profiles, events telemetry.EventEmitter) *Service {
	return &Service{repo: repo, profiles: profiles, events: events, now: time.Now}
}

// AddType creates a leave type with a unique name.
func (s *Service) AddType(ctx context.Context, name, description string, daysPerYear int) (*domain.Type, error) {
	now := s.now().UTC()
	t := &domain.Type{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		DaysPerYear: daysPerYear,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrTypeNameRequired
	}
	if err := t.Validate(); err != nil {
		return nil, errs.New(errs.Validation, err.Error())
	}
	if err := s.repo.CreateType(ctx, t); err != nil {
		if errors.Is(err, leaverepo.ErrTypeExists) {
			return nil, ErrTypeExists
		}
		return nil, errs.Internal(err)
	}
	return t, nil
}

// ListTypes returns the live leave types, creating the defaults first when there are none.
func (s *Service) ListTypes(ctx context.Context) ([]*domain.Type, error) {
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if len(types) > 0 {
		return types, nil
	}
	if err := s.repo.SeedTypes(ctx, domain.DefaultTypes, false); err != nil {
		return nil, errs.Internal(err)
	}
	types, err = s.repo.ListTypes(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return types, nil
}

// Apply files a Pending request for the profile that in.EmployeeID resolves to.
func (s *Service) Apply(ctx context.Context, callerID string, in ApplyInput) (*Entry, error) {
	if strings.TrimSpace(in.EmployeeID) == "" || strings.TrimSpace(in.LeaveTypeID) == "" ||
		in.StartDate == nil || in.EndDate == nil || strings.TrimSpace(in.Reason) == "" {
		return nil, ErrFieldsRequired
	}
	e, err := s.profiles.ResolveRef(ctx, identitydomain.UnknownRef(strings.TrimSpace(in.EmployeeID)))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrProfileNotFound
	}
	t, err := s.repo.GetType(ctx, strings.TrimSpace(in.LeaveTypeID))
	if err != nil {
		return nil, errs.Internal(err)
	}
	if t == nil {
		return nil, ErrTypeNotFound
	}
	now := s.now().UTC()
	req := &domain.Request{
		ID:            uuid.New().String(),
		EmployeeID:    e.ID,
		LeaveTypeID:   t.ID,
		LeaveTypeName: t.Name,
		StartDate:     in.StartDate.UTC(),
		EndDate:       in.EndDate.UTC(),
		Reason:        strings.TrimSpace(in.Reason),
		Status:        domain.StatusPending,
		AppliedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := req.Validate(); err != nil {
		return nil, ErrDateOrder
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, errs.Internal(err)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventLeaveApplied, callerID, req.ID,
		map[string]any{"employeeId": e.ID, "leaveType": t.Name, "days": req.Days()}))
	return s.entry(ctx, req)
}

// Personal returns the requests of the profile id resolves to, newest first. EMPLOYEE callers may only
// read their own. An id that names no profile yields an empty list.
func (s *Service) Personal(ctx context.Context, callerID, callerRole, id string) ([]*domain.Request, error) {
	e, err := s.profiles.ResolveRef(ctx, identitydomain.UnknownRef(strings.TrimSpace(id)))
	if err != nil {
		return nil, err
	}
	if callerRole == string(roledomain.Employee) {
		own, err := s.profiles.ResolveRef(ctx, identitydomain.PrincipalRef(callerID))
		if err != nil {
			return nil, err
		}
		if e == nil || own == nil || own.ID != e.ID {
			return nil, ErrNotOwnLeave
		}
	}
	if e == nil {
		return nil, nil
	}
	list, err := s.repo.ListRequests(ctx, e.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// All returns every request with its employee's view, newest first.
func (s *Service) All(ctx context.Context) ([]Entry, error) {
	list, err := s.repo.ListRequests(ctx, "")
	if err != nil {
		return nil, errs.Internal(err)
	}
	refs := make([]identitydomain.Ref, len(list))
	for i, r := range list {
		refs[i] = identitydomain.EmployeeRef(r.EmployeeID)
	}
	views, err := s.profiles.Views(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(list))
	for i, r := range list {
		out[i] = Entry{Request: r, View: views[refs[i]]}
	}
	return out, nil
}

// UpdateStatus records the reviewer's decision on request id.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status, deciderID string) (*Entry, error) {
	if !status.IsDecision() {
		return nil, ErrInvalidStatus
	}
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	req.Status = status
	req.ApprovedBy = &deciderID
	req.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, req); err != nil {
		return nil, errs.Internal(err)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventLeaveDecided, deciderID, req.ID,
		map[string]any{"employeeId": req.EmployeeID, "status": string(status)}))
	return s.entry(ctx, req)
}

func (s *Service) entry(ctx context.Context, req *domain.Request) (*Entry, error) {
	ref := identitydomain.EmployeeRef(req.EmployeeID)
	views, err := s.profiles.Views(ctx, []identitydomain.Ref{ref})
	if err != nil {
		return nil, err
	}
	return &Entry{Request: req, View: views[ref]}, nil
}
