package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	auditdomain "employee-management/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
	err     error
}

func (m *memAuditRepo) GetByID(ctx context.Context, id string) (*auditdomain.AuditLog, error) {
	return nil, nil
}

func (m *memAuditRepo) List(ctx context.Context, f auditdomain.Filter) ([]*auditdomain.AuditLog, error) {
	return nil, nil
}

func (m *memAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, a)
	return nil
}

func auditRouter(repo *memAuditRepo, caller *Caller) http.Handler {
	r := chi.NewRouter()
	r.Use(RealIP)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != nil {
				req = req.WithContext(WithCaller(req.Context(), *caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Use(Audit(repo))
	r.Patch("/api/users/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestAudit_MutatingRoute(t *testing.T) {
	repo := &memAuditRepo{}
	h := auditRouter(repo, &Caller{PrincipalID: "p-admin"})
	req := httptest.NewRequest(http.MethodPatch, "/api/users/u-1/approve", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.PrincipalID != "p-admin" || e.Action != "approve" || e.Resource != "user" || e.IP != "10.1.2.3" {
		t.Errorf("entry = %+v", e)
	}
	var meta auditMetadata
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata %q: %v", e.Metadata, err)
	}
	if meta.Status != http.StatusOK || meta.Path != "/api/users/u-1/approve" {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestAudit_SkipsReadsAndAnonymous(t *testing.T) {
	repo := &memAuditRepo{}
	auditRouter(repo, &Caller{PrincipalID: "p-admin"}).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users", nil))
	auditRouter(repo, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/api/users/u-1/approve", nil))
	if len(repo.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(repo.entries))
	}
}

func TestAudit_RepositoryErrorDoesNotChangeResponse(t *testing.T) {
	repo := &memAuditRepo{err: errors.New("database error")}
	rec := httptest.NewRecorder()
	auditRouter(repo, &Caller{PrincipalID: "p-admin"}).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/users/u-1/approve", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
