// Package seed writes the reference data a fresh database needs: roles, the first administrator
// and the leave type catalogue. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	leavedomain "employee-management/backend/internal/leave/domain"
	"employee-management/backend/internal/logs"
	principaldomain "employee-management/backend/internal/principal/domain"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/security"
)

// ErrAdminPasswordRequired is returned by Admin when no password is configured.
var ErrAdminPasswordRequired = errors.New("seed: ADMIN_PASSWORD must be set")

// RoleStore writes roles.
type RoleStore interface {
	Upsert(ctx context.Context, role *roledomain.Role) (*roledomain.Role, error)
	GetByName(ctx context.Context, name roledomain.Name) (*roledomain.Role, error)
}

// PrincipalStore writes principals.
type PrincipalStore interface {
	GetByEmail(ctx context.Context, email string) (*principaldomain.Principal, error)
	Create(ctx context.Context, p *principaldomain.Principal) error
}

// LeaveTypeStore writes leave types.
type LeaveTypeStore interface {
	SeedTypes(ctx context.Context, types []leavedomain.Type, overwrite bool) error
}

// AdminAccount is the administrator created by Admin.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Seeder runs the seed steps.
type Seeder struct {
	roles      RoleStore
	principals PrincipalStore
	leaveTypes LeaveTypeStore
	hasher     *security.Hasher
	now        func() time.Time
}

// New returns a Seeder.
func New(roles RoleStore, principals PrincipalStore, leaveTypes LeaveTypeStore, hasher *security.Hasher) *Seeder {
	return &Seeder{roles: roles, principals: principals, leaveTypes: leaveTypes, hasher: hasher, now: time.Now}
}

// Roles upserts every role with its default permissions.
func (s *Seeder) Roles(ctx context.Context) error {
	for _, name := range roledomain.Names {
		role, err := s.roles.Upsert(ctx, &roledomain.Role{
			ID:          uuid.New().String(),
			Name:        name,
			Permissions: roledomain.DefaultPermissions[name],
		})
		if err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		logs.With("seed").WithField("role", role.Name).WithField("permissions", len(role.Permissions)).Info("role seeded")
	}
	return nil
}

// Admin creates an APPROVED, active ADMIN principal. An existing account with the email is left
// unchanged and created is false. Roles must have been seeded.
func (s *Seeder) Admin(ctx context.Context, acct AdminAccount) (created bool, err error) {
	email := principaldomain.NormalizeEmail(acct.Email)
	if acct.Password == "" {
		return false, ErrAdminPasswordRequired
	}
	existing, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("seed admin lookup: %w", err)
	}
	if existing != nil {
		logs.With("seed").WithField("email", email).Info("admin already exists")
		return false, nil
	}
	role, err := s.roles.GetByName(ctx, roledomain.Admin)
	if err != nil {
		return false, fmt.Errorf("seed admin role: %w", err)
	}
	if role == nil {
		return false, errors.New("seed: ADMIN role missing; run the roles step first")
	}
	hash, err := s.hasher.Hash([]byte(acct.Password))
	if err != nil {
		return false, fmt.Errorf("seed admin hash: %w", err)
	}
	now := s.now().UTC()
	name := strings.TrimSpace(acct.Name)
	if name == "" {
		name = "Super Admin"
	}
	p := &principaldomain.Principal{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		RoleID:        role.ID,
		Active:        true,
		ApprovalState: principaldomain.StateApproved,
		ApprovedAt:    &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.principals.Create(ctx, p); err != nil {
		return false, fmt.Errorf("seed admin create: %w", err)
	}
	logs.With("seed").WithField("email", email).Info("admin created")
	return true, nil
}

// LeaveTypes writes the full leave type catalogue, overwriting the allowance and description of
// existing types with the same name.
func (s *Seeder) LeaveTypes(ctx context.Context) error {
	if err := s.leaveTypes.SeedTypes(ctx, leavedomain.SeedTypes, true); err != nil {
		return fmt.Errorf("seed leave types: %w", err)
	}
	logs.With("seed").WithField("count", len(leavedomain.SeedTypes)).Info("leave types seeded")
	return nil
}

// All runs Roles, Admin and LeaveTypes in order.
func (s *Seeder) All(ctx context.Context, acct AdminAccount) error {
	if err := s.Roles(ctx); err != nil {
		return err
	}
	if _, err := s.Admin(ctx, acct); err != nil {
		return err
	}
	return s.LeaveTypes(ctx)
}
