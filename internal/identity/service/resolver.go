package service

import (
	"context"

	employeedomain "employee-management/backend/internal/employee/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
)

// ErrProfileNotFound is returned by callers when a reference resolves to no employee profile.
var ErrProfileNotFound = errs.New(errs.NotFound, "profile not found")

// PrincipalLookup is the minimal principal repository needed by the resolver.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*principaldomain.Principal, error)
}

// EmployeeLookup is the minimal employee repository needed by the resolver.
type EmployeeLookup interface {
	GetByID(ctx context.Context, id string) (*employeedomain.Employee, error)
	GetByPrincipalID(ctx context.Context, principalID string) (*employeedomain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeedomain.Employee, error)
}

// Resolver maps an identifier that may name a principal or an employee profile to the employee profile.
type Resolver struct {
	principals PrincipalLookup
	employees  EmployeeLookup
}

// NewResolver returns a Resolver over the given repositories.
func NewResolver(principals PrincipalLookup, employees EmployeeLookup) *Resolver {
	return &Resolver{principals: principals, employees: employees}
}

// Resolve is ResolveRef for an id of unknown kind.
func (r *Resolver) Resolve(ctx context.Context, id string) (*employeedomain.Employee, error) {
	return r.ResolveRef(ctx, identitydomain.UnknownRef(id))
}

// ResolveRef returns the employee profile for ref, or nil, nil when nothing matches.
// Lookup order: employee by id, principal by id, then that principal's linked profile, then its email.
// Lookups the ref's kind rules out are skipped.
func (r *Resolver) ResolveRef(ctx context.Context, ref identitydomain.Ref) (*employeedomain.Employee, error) {
	if ref.ID == "" {
		return nil, nil
	}
	if ref.MayBeEmployee() {
		e, err := r.employees.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if e != nil {
			return e, nil
		}
	}
	if !ref.MayBePrincipal() {
		return nil, nil
	}
	p, err := r.principals.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil {
		return nil, nil
	}
	return r.profileOf(ctx, p)
}

// Subject returns the record that owns per-person rows for ref: its employee profile when one exists,
// else the principal itself (accounts such as the seeded admin have no profile). ok is false when
// ref names nothing.
func (r *Resolver) Subject(ctx context.Context, ref identitydomain.Ref) (subject identitydomain.Ref, ok bool, err error) {
	e, err := r.ResolveRef(ctx, ref)
	if err != nil {
		return identitydomain.Ref{}, false, err
	}
	if e != nil {
		return identitydomain.EmployeeRef(e.ID), true, nil
	}
	if !ref.MayBePrincipal() || ref.ID == "" {
		return identitydomain.Ref{}, false, nil
	}
	p, err := r.principals.GetByID(ctx, ref.ID)
	if err != nil {
		return identitydomain.Ref{}, false, errs.Internal(err)
	}
	if p == nil {
		return identitydomain.Ref{}, false, nil
	}
	return identitydomain.PrincipalRef(p.ID), true, nil
}

// View builds the display view for ref. An employee profile is preferred; a principal with no profile
// gets a synthesized view labelled "Admin"; a ref that names nothing gets a zero view with Missing set.
func (r *Resolver) View(ctx context.Context, ref identitydomain.Ref) (identitydomain.ProfileView, error) {
	if ref.ID == "" {
		return identitydomain.ProfileView{Missing: true}, nil
	}
	if ref.MayBeEmployee() {
		e, err := r.employees.GetByID(ctx, ref.ID)
		if err != nil {
			return identitydomain.ProfileView{}, errs.Internal(err)
		}
		if e != nil {
			return EmployeeView(e), nil
		}
	}
	if !ref.MayBePrincipal() {
		return identitydomain.ProfileView{Missing: true}, nil
	}
	p, err := r.principals.GetByID(ctx, ref.ID)
	if err != nil {
		return identitydomain.ProfileView{}, errs.Internal(err)
	}
	if p == nil {
		return identitydomain.ProfileView{Missing: true}, nil
	}
	e, err := r.profileOf(ctx, p)
	if err != nil {
		return identitydomain.ProfileView{}, err
	}
	if e != nil {
		return EmployeeView(e), nil
	}
	return PrincipalView(p), nil
}

// Views builds View for each distinct ref, looking each one up once.
func (r *Resolver) Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error) {
	out := make(map[identitydomain.Ref]identitydomain.ProfileView, len(refs))
	for _, ref := range refs {
		if _, ok := out[ref]; ok {
			continue
		}
		v, err := r.View(ctx, ref)
		if err != nil {
			return nil, err
		}
		out[ref] = v
	}
	return out, nil
}

// EmployeeView is the view of an employee profile. Empty department and designation read "Admin".
func EmployeeView(e *employeedomain.Employee) identitydomain.ProfileView {
	v := identitydomain.ProfileView{
		Name:        e.Name,
		Email:       e.Email,
		Department:  e.Department,
		Designation: identitydomain.Designation{Name: e.DesignationName},
	}
	if v.Department == "" {
		v.Department = identitydomain.FallbackLabel
	}
	if v.Designation.Name == "" {
		v.Designation.Name = identitydomain.FallbackLabel
	}
	return v
}

// PrincipalView is the synthesized view of a principal that has no employee profile.
func PrincipalView(p *principaldomain.Principal) identitydomain.ProfileView {
	return identitydomain.ProfileView{
		Name:        p.Name,
		Email:       p.Email,
		Department:  identitydomain.FallbackLabel,
		Designation: identitydomain.Designation{Name: identitydomain.FallbackLabel},
	}
}

// profileOf finds p's profile through the principal_id link, falling back to the email join for rows
// created before the link existed. A same-email profile linked to another principal is not a match.
func (r *Resolver) profileOf(ctx context.Context, p *principaldomain.Principal) (*employeedomain.Employee, error) {
	e, err := r.employees.GetByPrincipalID(ctx, p.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if e != nil {
		return e, nil
	}
	e, err = r.employees.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if e == nil || (e.PrincipalID != nil && *e.PrincipalID != p.ID) {
		return nil, nil
	}
	return e, nil
}
