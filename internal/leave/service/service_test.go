package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	employeedomain "employee-management/backend/internal/employee/domain"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/leave/domain"
	leaverepo "employee-management/backend/internal/leave/repository"
	"employee-management/backend/internal/platform/errs"
)

type memRepo struct {
	mu    sync.Mutex
	types []*domain.Type
	reqs  []*domain.Request
	seeds int
}

func (m *memRepo) CreateType(ctx context.Context, t *domain.Type) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.types {
		if x.Name == t.Name {
			return leaverepo.ErrTypeExists
		}
	}
	c := *t
	m.types = append(m.types, &c)
	return nil
}

func (m *memRepo) GetType(ctx context.Context, id string) (*domain.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.types {
		if x.ID == id && !x.Deleted {
			c := *x
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ListTypes(ctx context.Context) ([]*domain.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Type
	for _, x := range m.types {
		if !x.Deleted {
			c := *x
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memRepo) SeedTypes(ctx context.Context, types []domain.Type, overwrite bool) error {
	m.mu.Lock()
	m.seeds++
	m.mu.Unlock()
	for _, t := range types {
		t.ID = "type-" + t.Name
		_ = m.CreateType(ctx, &t)
	}
	return nil
}

func (m *memRepo) CreateRequest(ctx context.Context, r *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.reqs = append(m.reqs, &c)
	return nil
}

func (m *memRepo) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.reqs {
		if x.ID == id {
			c := *x
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ListRequests(ctx context.Context, employeeID string) ([]*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Request
	for _, x := range m.reqs {
		if employeeID == "" || x.EmployeeID == employeeID {
			c := *x
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, r *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.reqs {
		if x.ID == r.ID {
			x.Status, x.ApprovedBy = r.Status, r.ApprovedBy
		}
	}
	return nil
}

// stubProfiles links principal p-1 to profile e-1 and p-2 to e-2. p-admin has no profile.
type stubProfiles struct{}

func (stubProfiles) ResolveRef(ctx context.Context, ref identitydomain.Ref) (*employeedomain.Employee, error) {
	switch ref.ID {
	case "p-1", "e-1":
		return &employeedomain.Employee{ID: "e-1", Name: "Ann"}, nil
	case "p-2", "e-2":
		return &employeedomain.Employee{ID: "e-2", Name: "Bob"}, nil
	}
	return nil, nil
}

func (stubProfiles) Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error) {
	out := map[identitydomain.Ref]identitydomain.ProfileView{}
	for _, r := range refs {
		out[r] = identitydomain.ProfileView{Name: "name of " + r.ID, Department: "General"}
	}
	return out, nil
}

func newTestService() (*Service, *memRepo) {
	repo := &memRepo{}
	return NewService(repo, stubProfiles{}, nil), repo
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestListTypes_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	types, err := svc.ListTypes(ctx)
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if len(types) != 3 {
		t.Fatalf("ListTypes = %d types, want the 3 defaults", len(types))
	}
	byName := map[string]int{}
	for _, ty := range types {
		byName[ty.Name] = ty.DaysPerYear
	}
	if byName["Sick Leave"] != 12 || byName["Casual Leave"] != 10 || byName["Annual Leave"] != 20 {
		t.Errorf("defaults = %v", byName)
	}
	if _, err := svc.ListTypes(ctx); err != nil {
		t.Fatal(err)
	}
	if repo.seeds != 1 {
		t.Errorf("seeded %d times, want 1", repo.seeds)
	}
}

func TestAddType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	if _, err := svc.AddType(ctx, "Study Leave", "exams", 5); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	if _, err := svc.AddType(ctx, "Study Leave", "", 5); err != ErrTypeExists {
		t.Errorf("duplicate: want ErrTypeExists, got %v", err)
	}
	if _, err := svc.AddType(ctx, " ", "", 5); err != ErrTypeNameRequired {
		t.Errorf("blank: want ErrTypeNameRequired, got %v", err)
	}
	if _, err := svc.AddType(ctx, "Negative", "", -1); !errs.IsKind(err, errs.Validation) {
		t.Errorf("negative days: want Validation, got %v", err)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	types, _ := svc.ListTypes(ctx)
	typeID := types[0].ID

	valid := ApplyInput{EmployeeID: "p-1", LeaveTypeID: typeID, StartDate: datePtr(2026, 3, 4), EndDate: datePtr(2026, 3, 6), Reason: "flu"}
	testCases := []struct {
		name string
		in   func(ApplyInput) ApplyInput
		want error
	}{
		{"missing reason", func(in ApplyInput) ApplyInput { in.Reason = ""; return in }, ErrFieldsRequired},
		{"missing end", func(in ApplyInput) ApplyInput { in.EndDate = nil; return in }, ErrFieldsRequired},
		{"no profile", func(in ApplyInput) ApplyInput { in.EmployeeID = "p-admin"; return in }, ErrProfileNotFound},
		{"unknown type", func(in ApplyInput) ApplyInput { in.LeaveTypeID = "nope"; return in }, ErrTypeNotFound},
		{"end before start", func(in ApplyInput) ApplyInput { in.EndDate = datePtr(2026, 3, 1); return in }, ErrDateOrder},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(ctx, "p-1", tc.in(valid)); err != tc.want {
				t.Errorf("Apply = %v, want %v", err, tc.want)
			}
		})
	}

	got, err := svc.Apply(ctx, "p-1", valid)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Request.EmployeeID != "e-1" || got.Request.Status != domain.StatusPending || got.Request.LeaveTypeName == "" {
		t.Errorf("request = %+v", got.Request)
	}
	if got.View.Name != "name of e-1" {
		t.Errorf("view = %+v", got.View)
	}
}

func TestPersonal_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	types, _ := svc.ListTypes(ctx)
	in := ApplyInput{EmployeeID: "e-2", LeaveTypeID: types[0].ID, StartDate: datePtr(2026, 3, 4), EndDate: datePtr(2026, 3, 4), Reason: "x"}
	if _, err := svc.Apply(ctx, "p-2", in); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Personal(ctx, "p-1", "EMPLOYEE", "e-2"); err != ErrNotOwnLeave {
		t.Errorf("other employee: want ErrNotOwnLeave, got %v", err)
	}
	list, err := svc.Personal(ctx, "p-2", "EMPLOYEE", "p-2")
	if err != nil || len(list) != 1 {
		t.Errorf("own = %d, %v; want 1", len(list), err)
	}
	list, err = svc.Personal(ctx, "p-hr", "HR", "e-2")
	if err != nil || len(list) != 1 {
		t.Errorf("HR = %d, %v; want 1", len(list), err)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	types, _ := svc.ListTypes(ctx)
	in := ApplyInput{EmployeeID: "e-1", LeaveTypeID: types[0].ID, StartDate: datePtr(2026, 3, 4), EndDate: datePtr(2026, 3, 4), Reason: "x"}
	applied, _ := svc.Apply(ctx, "p-1", in)

	if _, err := svc.UpdateStatus(ctx, applied.Request.ID, domain.StatusPending, "p-hr"); err != ErrInvalidStatus {
		t.Errorf("Pending: want ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", domain.StatusApproved, "p-hr"); err != ErrRequestNotFound {
		t.Errorf("missing: want ErrRequestNotFound, got %v", err)
	}
	got, err := svc.UpdateStatus(ctx, applied.Request.ID, domain.StatusApproved, "p-hr")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Request.Status != domain.StatusApproved || *got.Request.ApprovedBy != "p-hr" {
		t.Errorf("request = %+v", got.Request)
	}
	if stored, _ := repo.GetRequest(ctx, applied.Request.ID); stored.Status != domain.StatusApproved {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestAll_AttachesViews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	types, _ := svc.ListTypes(ctx)
	for _, id := range []string{"e-1", "e-2"} {
		in := ApplyInput{EmployeeID: id, LeaveTypeID: types[0].ID, StartDate: datePtr(2026, 3, 4), EndDate: datePtr(2026, 3, 4), Reason: "x"}
		if _, err := svc.Apply(ctx, "p-hr", in); err != nil {
			t.Fatal(err)
		}
	}
	all, err := svc.All(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("All = %d, %v", len(all), err)
	}
	for _, e := range all {
		if e.View.Name != "name of "+e.Request.EmployeeID {
			t.Errorf("view of %s = %+v", e.Request.EmployeeID, e.View)
		}
	}
}
