// Package service runs approval decisions and the login-time approval gate.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	approvaldomain "employee-management/backend/internal/approval/domain"
	"employee-management/backend/internal/audit"
	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

const (
	msgPending          = "Your account is pending admin approval. Please wait for approval before logging in."
	msgRejectedFallback = "Your account registration has been rejected. Please contact support."
)

var (
	// ErrPrincipalNotFound is returned when the principal to decide on does not exist.
	ErrPrincipalNotFound = errs.New(errs.NotFound, "User not found")
	// ErrAlreadyDecided is returned when the principal is no longer PENDING.
	ErrAlreadyDecided = errs.New(errs.Conflict, "already decided")
	// ErrPending is returned by CheckLogin for a principal awaiting a decision.
	ErrPending = errs.New(errs.Forbidden, msgPending).
			WithDetails(map[string]any{"approvalStatus": string(principaldomain.StatePending)})
)

// PrincipalStore is the principal persistence used by decisions.
type PrincipalStore interface {
	GetByID(ctx context.Context, id string) (*principaldomain.Principal, error)
	TransitionApproval(ctx context.Context, id string, d principaldomain.Decision) (*principaldomain.Principal, error)
}

// ProfileStore creates the employee profile of an approved principal.
type ProfileStore interface {
	UpsertForPrincipal(ctx context.Context, e *employeedomain.Employee) (*employeedomain.Employee, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Approval is the outcome of Approve.
type Approval struct {
	Principal *principaldomain.Principal
	Profile   *employeedomain.Employee
}

// Service moves principals out of PENDING. Every transition is one conditional update, so of two
// concurrent decisions on the same principal exactly one succeeds.
type Service struct {
	principals PrincipalStore
	profiles   ProfileStore
	tx         Transactor
	audit      audit.AuditLogger
	events     telemetry.EventEmitter
	now        func() time.Time
}

// NewService returns an approval service. auditLogger and events may be nil.
func NewService(principals PrincipalStore, profiles ProfileStore, tx Transactor, auditLogger audit.AuditLogger, events telemetry.EventEmitter) *Service {
	return &Service{
		principals: principals,
		profiles:   profiles,
		tx:         tx,
		audit:      auditLogger,
		events:     events,
		now:        time.Now,
	}
}

// Approve moves principalID from PENDING to APPROVED and creates (or links) its employee profile in the
// same transaction. The profile department follows the principal's role.
func (s *Service) Approve(ctx context.Context, principalID, deciderID string) (*Approval, error) {
	now := s.now().UTC()
	var out Approval
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.decide(ctx, principalID, principaldomain.Decision{
			State:     principaldomain.StateApproved,
			DeciderID: deciderID,
			At:        now,
		})
		if err != nil {
			return err
		}
		profile, err := s.profiles.UpsertForPrincipal(ctx, &employeedomain.Employee{
			ID:          uuid.New().String(),
			PrincipalID: &p.ID,
			Name:        p.Name,
			Email:       p.Email,
			Department:  employeedomain.DepartmentForRole(p.RoleName),
			JoiningDate: now,
			Status:      employeedomain.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return errs.Internal(err)
		}
		out = Approval{Principal: p, Profile: profile}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, deciderID, out.Principal, audit.ActionApproved, telemetrydomain.EventPrincipalApproved, nil)
	return &out, nil
}

// Reject moves principalID from PENDING to REJECTED, storing the optional reason. No profile is created.
func (s *Service) Reject(ctx context.Context, principalID, deciderID, reason string) (*principaldomain.Principal, error) {
	reason = strings.TrimSpace(reason)
	p, err := s.decide(ctx, principalID, principaldomain.Decision{
		State:     principaldomain.StateRejected,
		DeciderID: deciderID,
		At:        s.now().UTC(),
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if reason != "" {
		meta = map[string]any{"reason": reason}
	}
	s.record(ctx, deciderID, p, audit.ActionRejected, telemetrydomain.EventPrincipalRejected, meta)
	return p, nil
}

// decide applies d with the conditional update and explains a lost guard.
func (s *Service) decide(ctx context.Context, principalID string, d principaldomain.Decision) (*principaldomain.Principal, error) {
	if !approvaldomain.CanTransition(principaldomain.StatePending, d.State) {
		return nil, errs.Newf(errs.Validation, "cannot move a principal to %s", d.State)
	}
	p, err := s.principals.TransitionApproval(ctx, principalID, d)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p != nil {
		return p, nil
	}
	current, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if current == nil {
		return nil, ErrPrincipalNotFound
	}
	return nil, ErrAlreadyDecided.WithDetails(map[string]any{"approvalStatus": string(current.ApprovalState)})
}

func (s *Service) record(ctx context.Context, deciderID string, p *principaldomain.Principal, action, eventType string, meta map[string]any) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, deciderID, action, audit.ResourcePrincipal, "principal="+p.ID)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(eventType, deciderID, p.ID, meta))
}

// CheckLogin is the approval gate applied after credentials are verified. ADMIN and HR accounts pass
// regardless of state; other accounts must be APPROVED.
func CheckLogin(p *principaldomain.Principal, roleName string) error {
	switch roledomain.Name(roleName) {
	case roledomain.Admin, roledomain.HR:
		return nil
	}
	switch p.ApprovalState {
	case principaldomain.StatePending:
		return ErrPending
	case principaldomain.StateRejected:
		msg := p.RejectionReason
		if msg == "" {
			msg = msgRejectedFallback
		}
		return errs.New(errs.Forbidden, msg).
			WithDetails(map[string]any{"approvalStatus": string(principaldomain.StateRejected)})
	}
	return nil
}
