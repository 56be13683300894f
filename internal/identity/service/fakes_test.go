package service

import (
	"context"
	"sync"
	"time"

	employeedomain "employee-management/backend/internal/employee/domain"
	principaldomain "employee-management/backend/internal/principal/domain"
	principalrepo "employee-management/backend/internal/principal/repository"
	roledomain "employee-management/backend/internal/role/domain"
	sessiondomain "employee-management/backend/internal/session/domain"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

type memPrincipalRepo struct {
	mu   sync.Mutex
	byID map[string]*principaldomain.Principal
}

func newMemPrincipalRepo() *memPrincipalRepo {
	return &memPrincipalRepo{byID: map[string]*principaldomain.Principal{}}
}

func (r *memPrincipalRepo) put(p *principaldomain.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
}

func (r *memPrincipalRepo) GetByID(ctx context.Context, id string) (*principaldomain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPrincipalRepo) GetByEmail(ctx context.Context, email string) (*principaldomain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Email == principaldomain.NormalizeEmail(email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPrincipalRepo) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*principaldomain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.ResetTokenHash == hash && p.ResetTokenExpiresAt != nil && p.ResetTokenExpiresAt.After(now) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPrincipalRepo) Create(ctx context.Context, p *principaldomain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == p.Email {
			return principalrepo.ErrEmailTaken
		}
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memPrincipalRepo) SetPassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		p.PasswordHash = hash
		p.ResetTokenHash = ""
		p.ResetTokenExpiresAt = nil
	}
	return nil
}

func (r *memPrincipalRepo) SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		p.ResetTokenHash = hash
		p.ResetTokenExpiresAt = &expiresAt
	}
	return nil
}

type memRoleRepo struct {
	byName map[roledomain.Name]*roledomain.Role
}

func newMemRoleRepo() *memRoleRepo {
	r := &memRoleRepo{byName: map[roledomain.Name]*roledomain.Role{}}
	for _, n := range roledomain.Names {
		r.byName[n] = &roledomain.Role{ID: "role-" + string(n), Name: n, Permissions: roledomain.DefaultPermissions[n]}
	}
	return r
}

func (r *memRoleRepo) GetByName(ctx context.Context, name roledomain.Name) (*roledomain.Role, error) {
	return r.byName[name], nil
}

type memEmployeeRepo struct {
	mu   sync.Mutex
	byID map[string]*employeedomain.Employee
}

func newMemEmployeeRepo(es ...*employeedomain.Employee) *memEmployeeRepo {
	r := &memEmployeeRepo{byID: map[string]*employeedomain.Employee{}}
	for _, e := range es {
		r.byID[e.ID] = e
	}
	return r
}

func (r *memEmployeeRepo) GetByID(ctx context.Context, id string) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok && !e.Deleted {
		return e, nil
	}
	return nil, nil
}

func (r *memEmployeeRepo) GetByPrincipalID(ctx context.Context, principalID string) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if !e.Deleted && e.PrincipalID != nil && *e.PrincipalID == principalID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memEmployeeRepo) GetByEmail(ctx context.Context, email string) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if !e.Deleted && principaldomain.NormalizeEmail(e.Email) == principaldomain.NormalizeEmail(email) {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memEmployeeRepo) UpsertForPrincipal(ctx context.Context, e *employeedomain.Employee) (*employeedomain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if principaldomain.NormalizeEmail(existing.Email) == principaldomain.NormalizeEmail(e.Email) {
			if existing.PrincipalID == nil {
				existing.PrincipalID = e.PrincipalID
			}
			existing.Deleted = false
			return existing, nil
		}
	}
	cp := *e
	r.byID[e.ID] = &cp
	return &cp, nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: map[string]*sessiondomain.Session{}}
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.m[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok && s.RevokedAt == nil {
		t := time.Now()
		s.RevokedAt = &t
	}
	return nil
}

func (r *memSessionRepo) RevokeAllByPrincipal(ctx context.Context, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := time.Now()
	for _, s := range r.m {
		if s.PrincipalID == principalID && s.RevokedAt == nil {
			s.RevokedAt = &t
		}
	}
	return nil
}

func (r *memSessionRepo) RotateRefreshToken(ctx context.Context, sessionID, oldJti, newJti, refreshTokenHash string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[sessionID]
	if !ok || s.RefreshJti != oldJti || s.RevokedAt != nil {
		return false, nil
	}
	s.RefreshJti = newJti
	s.RefreshTokenHash = refreshTokenHash
	s.LastSeenAt = &at
	return true, nil
}

func (r *memSessionRepo) revokedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.m {
		if s.RevokedAt != nil {
			n++
		}
	}
	return n
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingAudit) LogEvent(ctx context.Context, principalID, action, resource, metadata string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingAudit) has(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

type chanEmitter chan *telemetrydomain.Event

func (c chanEmitter) Emit(ctx context.Context, e *telemetrydomain.Event) error {
	c <- e
	return nil
}
