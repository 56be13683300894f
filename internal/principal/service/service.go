// Package service manages principals on behalf of administrators.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	approvalservice "employee-management/backend/internal/approval/service"
	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/platform/errs"
	"employee-management/backend/internal/platform/rbac"
	"employee-management/backend/internal/principal/domain"
	principalrepo "employee-management/backend/internal/principal/repository"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/security"
)

const minPasswordLen = 6

// Errors returned by Service.
var (
	ErrNotFound         = errs.New(errs.NotFound, "User not found")
	ErrRoleNotFound     = errs.New(errs.NotFound, "Role not found")
	ErrEmailTaken       = errs.New(errs.Conflict, "Email already exists")
	ErrFieldsRequired   = errs.New(errs.Validation, "All fields are required")
	ErrPasswordRequired = errs.New(errs.Validation, "New password required")
	ErrPasswordTooShort = errs.New(errs.Validation, "Password must be at least 6 characters")
	ErrNotSelf          = errs.New(errs.Forbidden, "You do not have permission to perform this action")
)

// Store is the principal persistence used by the service.
type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	Create(ctx context.Context, p *domain.Principal) error
	Update(ctx context.Context, p *domain.Principal) error
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id, roleID string) error
	SetPassword(ctx context.Context, id, hash string) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Principal, error)
}

// RoleStore resolves role names.
type RoleStore interface {
	GetByName(ctx context.Context, name roledomain.Name) (*roledomain.Role, error)
}

// SessionRevoker ends every session of a principal.
type SessionRevoker interface {
	RevokeAllByPrincipal(ctx context.Context, principalID string) error
}

// Approver runs approval decisions. Implemented by the approval service.
type Approver interface {
	Approve(ctx context.Context, principalID, deciderID string) (*approvalservice.Approval, error)
	Reject(ctx context.Context, principalID, deciderID, reason string) (*domain.Principal, error)
}

// CreateInput is an administrator-created account without an employee profile.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	RoleName string
}

// Service implements the users routes.
type Service struct {
	principals Store
	roles      RoleStore
	sessions   SessionRevoker
	approvals  Approver
	hasher     *security.Hasher
	now        func() time.Time
}

// NewService returns a principal Service.
func NewService(principals Store, roles RoleStore, sessions SessionRevoker, approvals Approver, hasher *security.Hasher) *Service {
	return &Service{
		principals: principals,
		roles:      roles,
		sessions:   sessions,
		approvals:  approvals,
		hasher:     hasher,
		now:        time.Now,
	}
}

// Create adds an APPROVED principal.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*domain.Principal, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.RoleName == "" {
		return nil, ErrFieldsRequired
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	role, err := s.role(ctx, in.RoleName)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, errs.Internal(err)
	}
	now := s.now().UTC()
	p := &domain.Principal{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		RoleID:        role.ID,
		RoleName:      string(role.Name),
		Active:        true,
		ApprovalState: domain.StateApproved,
		ApprovedBy:    &actorID,
		ApprovedAt:    &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.principals.Create(ctx, p); err != nil {
		if errors.Is(err, principalrepo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errs.Internal(err)
	}
	return p, nil
}

// List returns every principal, or those in state when it is set.
func (s *Service) List(ctx context.Context, state domain.ApprovalState) ([]*domain.Principal, error) {
	list, err := s.principals.List(ctx, domain.Filter{State: state})
	if err != nil {
		return nil, errs.Internal(err)
	}
	return list, nil
}

// ListPending returns principals awaiting an approval decision.
func (s *Service) ListPending(ctx context.Context) ([]*domain.Principal, error) {
	return s.List(ctx, domain.StatePending)
}

// Get returns principal id. ADMIN and HR callers may read anyone; others only themselves.
func (s *Service) Get(ctx context.Context, id, callerID, callerRole string) (*domain.Principal, error) {
	if id != callerID && !rbac.HasRole(callerRole, roledomain.Admin, roledomain.HR) {
		return nil, ErrNotSelf
	}
	return s.get(ctx, id)
}

// Update changes name and email; empty values keep the current ones.
func (s *Service) Update(ctx context.Context, id, name, email string) (*domain.Principal, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(name); v != "" {
		p.Name = v
	}
	if v := domain.NormalizeEmail(email); v != "" {
		p.Email = v
	}
	if err := s.principals.Update(ctx, p); err != nil {
		if errors.Is(err, principalrepo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errs.Internal(err)
	}
	return p, nil
}

// ToggleActive flips the active flag. Deactivation also ends the principal's sessions.
func (s *Service) ToggleActive(ctx context.Context, id string) (*domain.Principal, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Active = !p.Active
	if err := s.principals.SetActive(ctx, id, p.Active); err != nil {
		return nil, errs.Internal(err)
	}
	if !p.Active {
		s.revokeSessions(ctx, id)
	}
	return p, nil
}

// AssignRole gives the principal the named role.
func (s *Service) AssignRole(ctx context.Context, id, roleName string) (*domain.Principal, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.principals.SetRole(ctx, id, role.ID); err != nil {
		return nil, errs.Internal(err)
	}
	p.RoleID = role.ID
	p.RoleName = string(role.Name)
	return p, nil
}

// ResetPassword sets a new password chosen by an administrator and ends the principal's sessions.
func (s *Service) ResetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return errs.Internal(err)
	}
	if err := s.principals.SetPassword(ctx, id, hash); err != nil {
		return errs.Internal(err)
	}
	s.revokeSessions(ctx, id)
	return nil
}

// Approve approves a PENDING principal and creates its employee profile.
func (s *Service) Approve(ctx context.Context, id, deciderID string) (*approvalservice.Approval, error) {
	return s.approvals.Approve(ctx, id, deciderID)
}

// Reject rejects a PENDING principal with an optional reason.
func (s *Service) Reject(ctx context.Context, id, deciderID, reason string) (*domain.Principal, error) {
	return s.approvals.Reject(ctx, id, deciderID, reason)
}

func (s *Service) get(ctx context.Context, id string) (*domain.Principal, error) {
	p, err := s.principals.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) role(ctx context.Context, name string) (*roledomain.Role, error) {
	n, ok := roledomain.ParseName(name)
	if !ok {
		return nil, ErrRoleNotFound
	}
	role, err := s.roles.GetByName(ctx, n)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func (s *Service) revokeSessions(ctx context.Context, id string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAllByPrincipal(ctx, id); err != nil {
		logs.With("principal").WithError(err).WithFields(logrus.Fields{"principal_id": id}).Warn("revoke sessions failed")
	}
}
