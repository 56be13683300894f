package service

import (
	"context"
	"sync"
	"testing"

	approvalservice "employee-management/backend/internal/approval/service"
	"employee-management/backend/internal/platform/errs"
	"employee-management/backend/internal/principal/domain"
	principalrepo "employee-management/backend/internal/principal/repository"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/security"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Principal
}

func newMemStore(ps ...*domain.Principal) *memStore {
	m := &memStore{rows: map[string]*domain.Principal{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, p *domain.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == p.Email {
			return principalrepo.ErrEmailTaken
		}
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memStore) Update(ctx context.Context, p *domain.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.rows {
		if id != p.ID && existing.Email == p.Email {
			return principalrepo.ErrEmailTaken
		}
	}
	m.rows[p.ID].Name = p.Name
	m.rows[p.ID].Email = p.Email
	return nil
}

func (m *memStore) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Active = active
	return nil
}

func (m *memStore) SetRole(ctx context.Context, id, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].RoleID = roleID
	return nil
}

func (m *memStore) SetPassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].PasswordHash = hash
	return nil
}

func (m *memStore) List(ctx context.Context, f domain.Filter) ([]*domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Principal
	for _, p := range m.rows {
		if f.State == "" || p.ApprovalState == f.State {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memRoles struct{}

func (memRoles) GetByName(ctx context.Context, name roledomain.Name) (*roledomain.Role, error) {
	return &roledomain.Role{ID: "role-" + string(name), Name: name}, nil
}

type countingRevoker struct {
	mu      sync.Mutex
	revoked []string
}

func (c *countingRevoker) RevokeAllByPrincipal(ctx context.Context, principalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked = append(c.revoked, principalID)
	return nil
}

type stubApprover struct{ approved []string }

func (s *stubApprover) Approve(ctx context.Context, principalID, deciderID string) (*approvalservice.Approval, error) {
	s.approved = append(s.approved, principalID)
	return &approvalservice.Approval{Principal: &domain.Principal{ID: principalID, ApprovalState: domain.StateApproved}}, nil
}

func (s *stubApprover) Reject(ctx context.Context, principalID, deciderID, reason string) (*domain.Principal, error) {
	return &domain.Principal{ID: principalID, ApprovalState: domain.StateRejected, RejectionReason: reason}, nil
}

func newTestService(ps ...*domain.Principal) (*Service, *memStore, *countingRevoker) {
	store := newMemStore(ps...)
	rev := &countingRevoker{}
	return NewService(store, memRoles{}, rev, &stubApprover{}, security.NewHasher(4)), store, rev
}

func TestCreate(t *testing.T) {
	svc, store, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateInput{Name: " Ann ", Email: "Ann@X.com", Password: "secret1", RoleName: "hr"}, "p-admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Email != "ann@x.com" || p.Name != "Ann" || p.RoleName != "HR" || p.ApprovalState != domain.StateApproved || !p.Active {
		t.Errorf("principal = %+v", p)
	}
	if p.ApprovedBy == nil || *p.ApprovedBy != "p-admin" {
		t.Errorf("ApprovedBy = %v", p.ApprovedBy)
	}
	stored, _ := store.GetByID(context.Background(), p.ID)
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Error("password not hashed")
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "B", Email: "ann@x.com", Password: "secret1", RoleName: "EMPLOYEE"}, "p-admin")
	if !errs.IsKind(err, errs.Conflict) {
		t.Errorf("duplicate email: want Conflict, got %v", err)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	testCases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing name", CreateInput{Email: "a@x.com", Password: "secret1", RoleName: "HR"}, ErrFieldsRequired},
		{"short password", CreateInput{Name: "A", Email: "a@x.com", Password: "abc", RoleName: "HR"}, ErrPasswordTooShort},
		{"unknown role", CreateInput{Name: "A", Email: "a@x.com", Password: "secret1", RoleName: "OWNER"}, ErrRoleNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in, "p-admin"); err != tc.want {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestGet_SelfOrStaff(t *testing.T) {
	svc, _, _ := newTestService(
		&domain.Principal{ID: "p-1", Email: "a@x.com"},
		&domain.Principal{ID: "p-2", Email: "b@x.com"},
	)
	testCases := []struct {
		name       string
		id, caller string
		role       string
		want       error
	}{
		{"self", "p-1", "p-1", "EMPLOYEE", nil},
		{"other as employee", "p-2", "p-1", "EMPLOYEE", ErrNotSelf},
		{"other as HR", "p-2", "p-1", "HR", nil},
		{"missing as admin", "p-9", "p-1", "ADMIN", ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Get(context.Background(), tc.id, tc.caller, tc.role); err != tc.want {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestToggleActive_RevokesOnDeactivate(t *testing.T) {
	svc, _, rev := newTestService(&domain.Principal{ID: "p-1", Email: "a@x.com", Active: true})
	p, err := svc.ToggleActive(context.Background(), "p-1")
	if err != nil || p.Active {
		t.Fatalf("ToggleActive = %+v, %v", p, err)
	}
	if len(rev.revoked) != 1 {
		t.Errorf("revoked = %v, want one call", rev.revoked)
	}
	p, _ = svc.ToggleActive(context.Background(), "p-1")
	if !p.Active || len(rev.revoked) != 1 {
		t.Errorf("reactivate: active=%v revoked=%v", p.Active, rev.revoked)
	}
}

func TestAssignRole(t *testing.T) {
	svc, store, _ := newTestService(&domain.Principal{ID: "p-1", Email: "a@x.com", RoleID: "role-EMPLOYEE"})
	p, err := svc.AssignRole(context.Background(), "p-1", "hr")
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	stored, _ := store.GetByID(context.Background(), "p-1")
	if p.RoleName != "HR" || stored.RoleID != "role-HR" {
		t.Errorf("role = %q stored %q", p.RoleName, stored.RoleID)
	}
	if _, err := svc.AssignRole(context.Background(), "p-1", "nope"); err != ErrRoleNotFound {
		t.Errorf("unknown role: err = %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, store, rev := newTestService(&domain.Principal{ID: "p-1", Email: "a@x.com", PasswordHash: "old"})
	if err := svc.ResetPassword(context.Background(), "p-1", ""); err != ErrPasswordRequired {
		t.Errorf("empty: err = %v", err)
	}
	if err := svc.ResetPassword(context.Background(), "p-1", "newpass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	stored, _ := store.GetByID(context.Background(), "p-1")
	if !security.NewHasher(4).Matches(stored.PasswordHash, []byte("newpass")) {
		t.Error("stored hash does not match new password")
	}
	if len(rev.revoked) != 1 {
		t.Errorf("revoked = %v", rev.revoked)
	}
}

func TestListPending(t *testing.T) {
	svc, _, _ := newTestService(
		&domain.Principal{ID: "p-1", ApprovalState: domain.StatePending},
		&domain.Principal{ID: "p-2", ApprovalState: domain.StateApproved},
	)
	list, err := svc.ListPending(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != "p-1" {
		t.Errorf("ListPending = %v, %v", list, err)
	}
}
