package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"employee-management/backend/internal/attendance/domain"
	attendancerepo "employee-management/backend/internal/attendance/repository"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/errs"
)

type memRepo struct {
	mu   sync.Mutex
	rows []*domain.Record
}

func (m *memRepo) Create(ctx context.Context, r *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.rows {
		if x.Subject == r.Subject && x.Day.Equal(r.Day) {
			return attendancerepo.ErrAlreadyCheckedIn
		}
	}
	c := *r
	m.rows = append(m.rows, &c)
	return nil
}

func (m *memRepo) GetForDay(ctx context.Context, subject identitydomain.Ref, day time.Time) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.rows {
		if x.Subject == subject && x.Day.Equal(day) {
			c := *x
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Close(ctx context.Context, r *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.rows {
		if x.ID == r.ID {
			if x.CheckOut != nil {
				return domain.ErrAlreadyCheckedOut
			}
			x.CheckOut, x.TotalHours = r.CheckOut, r.TotalHours
		}
	}
	return nil
}

func (m *memRepo) ListBySubject(ctx context.Context, subject identitydomain.Ref, rng domain.Range) ([]*domain.Record, error) {
	all, _ := m.List(ctx, rng)
	var out []*domain.Record
	for _, r := range all {
		if r.Subject == subject {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) List(ctx context.Context, rng domain.Range) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Record
	for _, x := range m.rows {
		if (!rng.From.IsZero() && x.Day.Before(rng.From)) || (!rng.To.IsZero() && !x.Day.Before(rng.To)) {
			continue
		}
		c := *x
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

// stubSubjects knows principal p-1 (profile e-1, Engineering), admin p-admin (no profile) and p-2 (profile e-2, Sales).
type stubSubjects struct{}

func (stubSubjects) Subject(ctx context.Context, ref identitydomain.Ref) (identitydomain.Ref, bool, error) {
	switch ref.ID {
	case "p-1", "e-1":
		return identitydomain.EmployeeRef("e-1"), true, nil
	case "p-2", "e-2":
		return identitydomain.EmployeeRef("e-2"), true, nil
	case "p-admin":
		if ref.MayBePrincipal() {
			return identitydomain.PrincipalRef("p-admin"), true, nil
		}
	}
	return identitydomain.Ref{}, false, nil
}

func (stubSubjects) Views(ctx context.Context, refs []identitydomain.Ref) (map[identitydomain.Ref]identitydomain.ProfileView, error) {
	out := map[identitydomain.Ref]identitydomain.ProfileView{}
	for _, r := range refs {
		switch r.ID {
		case "e-1":
			out[r] = identitydomain.ProfileView{Name: "Ann", Department: "Engineering"}
		case "e-2":
			out[r] = identitydomain.ProfileView{Name: "Bob", Department: "Sales"}
		case "p-admin":
			out[r] = identitydomain.ProfileView{Name: "Admin", Department: identitydomain.FallbackLabel}
		default:
			out[r] = identitydomain.ProfileView{Missing: true}
		}
	}
	return out, nil
}

func newTestService(now time.Time) (*Service, *memRepo) {
	repo := &memRepo{}
	svc := NewService(repo, stubSubjects{})
	svc.now = func() time.Time { return now }
	return svc, repo
}

var morning = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func TestCheckIn_DefaultsToCaller(t *testing.T) {
	svc, _ := newTestService(morning)
	rec, err := svc.CheckIn(context.Background(), "p-1", "")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Subject != identitydomain.EmployeeRef("e-1") || rec.Status != domain.StatusPresent {
		t.Errorf("record = %+v", rec)
	}
	if !rec.Day.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day = %v", rec.Day)
	}
}

func TestCheckIn_PrincipalWithoutProfile(t *testing.T) {
	svc, _ := newTestService(morning)
	rec, err := svc.CheckIn(context.Background(), "p-admin", "")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Subject != identitydomain.PrincipalRef("p-admin") {
		t.Errorf("Subject = %+v, want principal p-admin", rec.Subject)
	}
}

func TestCheckIn_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(morning)
	if _, err := svc.CheckIn(ctx, "p-1", ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	// The principal id and the profile id name the same subject.
	if _, err := svc.CheckIn(ctx, "p-9", "e-1"); err != ErrAlreadyCheckedIn {
		t.Errorf("second CheckIn: want ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckIn_UnknownSubject(t *testing.T) {
	svc, _ := newTestService(morning)
	if _, err := svc.CheckIn(context.Background(), "p-1", "ghost"); !errs.IsKind(err, errs.NotFound) {
		t.Errorf("want NotFound, got %v", err)
	}
}

func TestCheckOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(morning)

	if _, err := svc.CheckOut(ctx, "p-1", ""); err != ErrNoCheckIn {
		t.Fatalf("CheckOut before CheckIn: want ErrNoCheckIn, got %v", err)
	}
	if _, err := svc.CheckIn(ctx, "p-1", ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	svc.now = func() time.Time { return morning.Add(7*time.Hour + 45*time.Minute) }
	rec, err := svc.CheckOut(ctx, "p-1", "")
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.TotalHours != 7.75 {
		t.Errorf("TotalHours = %v, want 7.75", rec.TotalHours)
	}
	if _, err := svc.CheckOut(ctx, "p-1", ""); err != ErrAlreadyCheckedOut {
		t.Errorf("second CheckOut: want ErrAlreadyCheckedOut, got %v", err)
	}
}

func seed(t *testing.T, svc *Service, days ...time.Time) {
	t.Helper()
	for _, d := range days {
		svc.now = func() time.Time { return d }
		for _, p := range []string{"p-1", "p-2", "p-admin"} {
			if _, err := svc.CheckIn(context.Background(), p, ""); err != nil {
				t.Fatalf("CheckIn(%s, %v): %v", p, d, err)
			}
		}
	}
}

func TestPersonal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(morning)
	seed(t, svc, morning.AddDate(0, -1, 0), morning, morning.AddDate(0, 0, 1))

	list, err := svc.Personal(ctx, Caller{PrincipalID: "p-1", Role: "EMPLOYEE"}, "p-1", Period{})
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if len(list) != 3 || !list[0].Day.After(list[1].Day) {
		t.Errorf("history = %d records, want 3 newest first", len(list))
	}

	list, err = svc.Personal(ctx, Caller{PrincipalID: "p-1", Role: "EMPLOYEE"}, "e-1", Period{Month: 3, Year: 2026})
	if err != nil {
		t.Fatalf("Personal(month): %v", err)
	}
	if len(list) != 2 {
		t.Errorf("March history = %d records, want 2", len(list))
	}
}

func TestPersonal_EmployeeReadsOnlyOwn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(morning)
	seed(t, svc, morning)

	if _, err := svc.Personal(ctx, Caller{PrincipalID: "p-1", Role: "EMPLOYEE"}, "e-2", Period{}); err != ErrNotOwnAttendance {
		t.Errorf("employee reading other: want ErrNotOwnAttendance, got %v", err)
	}
	list, err := svc.Personal(ctx, Caller{PrincipalID: "p-hr", Role: "HR"}, "e-2", Period{})
	if err != nil || len(list) != 1 {
		t.Errorf("HR reading other = %d, %v; want 1 record", len(list), err)
	}
	list, err = svc.Personal(ctx, Caller{PrincipalID: "p-hr", Role: "HR"}, "ghost", Period{})
	if err != nil || len(list) != 0 {
		t.Errorf("HR reading unknown = %d, %v; want empty", len(list), err)
	}
}

func TestAll_Filters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(morning)
	seed(t, svc, morning.AddDate(0, -1, 0), morning)

	testCases := []struct {
		name       string
		period     Period
		department string
		want       int
	}{
		{"everything", Period{}, "", 6},
		{"one day", Period{Date: &morning}, "", 3},
		{"month", Period{Month: 2, Year: 2026}, "", 3},
		{"department over fallback view", Period{}, identitydomain.FallbackLabel, 2},
		{"department and day", Period{Date: &morning}, "Sales", 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.All(ctx, tc.period, tc.department)
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("All = %d entries, want %d", len(got), tc.want)
			}
		})
	}
}

func TestAll_InvalidPeriod(t *testing.T) {
	svc, _ := newTestService(morning)
	for _, p := range []Period{{Month: 13, Year: 2026}, {Month: 3}} {
		if _, err := svc.All(context.Background(), p, ""); !errs.IsKind(err, errs.Validation) {
			t.Errorf("All(%+v): want Validation, got %v", p, err)
		}
	}
}
