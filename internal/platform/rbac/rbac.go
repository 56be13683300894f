// Package rbac decides what an authenticated principal may do.
package rbac

import (
	"context"

	"github.com/sirupsen/logrus"

	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/platform/errs"
	"employee-management/backend/internal/policy/engine"
	principaldomain "employee-management/backend/internal/principal/domain"
	roledomain "employee-management/backend/internal/role/domain"
)

// ErrForbidden is returned by Authorize when the policy denies the call.
var ErrForbidden = errs.New(errs.Forbidden, "You do not have permission to perform this action")

// ErrAccountUnavailable is returned by Authorize when the caller's account is gone or disabled.
var ErrAccountUnavailable = errs.New(errs.Forbidden, "User not allowed")

// PrincipalGetter loads a principal by id.
type PrincipalGetter interface {
	GetByID(ctx context.Context, id string) (*principaldomain.Principal, error)
}

// RoleGetter loads a role by id.
type RoleGetter interface {
	GetByID(ctx context.Context, id string) (*roledomain.Role, error)
}

// HasRole reports whether role is one of allowed. Comparison is exact.
func HasRole(role string, allowed ...roledomain.Name) bool {
	for _, a := range allowed {
		if role == string(a) {
			return true
		}
	}
	return false
}

// Gate checks permissions and policy-table operations against stored principals and roles.
type Gate struct {
	principals PrincipalGetter
	roles      RoleGetter
	policy     engine.Evaluator
}

// NewGate returns a Gate. roles is usually a CachedRoles.
func NewGate(principals PrincipalGetter, roles RoleGetter, policy engine.Evaluator) *Gate {
	return &Gate{principals: principals, roles: roles, policy: policy}
}

// HasPermission reports whether principalID's role grants permission. Missing or inactive principals,
// unresolvable roles and lookup failures all deny; failures are logged.
func (g *Gate) HasPermission(ctx context.Context, principalID, permission string) bool {
	_, role, err := g.load(ctx, principalID)
	if err != nil {
		logs.With("rbac").WithError(err).WithFields(logrus.Fields{
			"principal_id": principalID,
			"permission":   permission,
		}).Error("permission check failed")
		return false
	}
	return role.Has(permission)
}

// Authorize returns nil when principalID may run operation, ErrForbidden when the policy denies it,
// ErrAccountUnavailable when the account is missing or inactive, and an Unexpected error when a lookup
// or the policy evaluation fails.
func (g *Gate) Authorize(ctx context.Context, principalID, operation string) error {
	p, role, err := g.load(ctx, principalID)
	if err != nil {
		return errs.Internal(err)
	}
	if p == nil {
		return ErrAccountUnavailable
	}
	if role == nil {
		return ErrForbidden
	}
	in := engine.Input{Operation: operation, Role: string(role.Name), Permissions: role.Permissions}
	allowed, err := g.policy.Allow(ctx, in)
	if err != nil {
		return errs.Internal(err)
	}
	if !allowed {
		logs.With("rbac").WithFields(logrus.Fields{
			"principal_id": principalID,
			"role":         in.Role,
			"operation":    operation,
		}).Debug("operation denied")
		return ErrForbidden
	}
	return nil
}

// load returns the active principal and its role. p is nil when the principal is missing or inactive;
// role is nil when the role row is missing.
func (g *Gate) load(ctx context.Context, principalID string) (*principaldomain.Principal, *roledomain.Role, error) {
	if principalID == "" {
		return nil, nil, nil
	}
	p, err := g.principals.GetByID(ctx, principalID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil || !p.Active {
		return nil, nil, nil
	}
	role, err := g.roles.GetByID(ctx, p.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return p, role, nil
}
