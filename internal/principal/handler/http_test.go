package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	approvalservice "employee-management/backend/internal/approval/service"
	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/principal/domain"
	"employee-management/backend/internal/principal/service"
	"employee-management/backend/internal/server/middleware"
)

type stubService struct {
	p        *domain.Principal
	decider  string
	reason   string
	getError error
}

func (s *stubService) Create(ctx context.Context, in service.CreateInput, actorID string) (*domain.Principal, error) {
	return s.p, nil
}

func (s *stubService) List(ctx context.Context, state domain.ApprovalState) ([]*domain.Principal, error) {
	return []*domain.Principal{s.p}, nil
}

func (s *stubService) ListPending(ctx context.Context) ([]*domain.Principal, error) {
	return []*domain.Principal{s.p}, nil
}

func (s *stubService) Get(ctx context.Context, id, callerID, callerRole string) (*domain.Principal, error) {
	if s.getError != nil {
		return nil, s.getError
	}
	return s.p, nil
}

func (s *stubService) Update(ctx context.Context, id, name, email string) (*domain.Principal, error) {
	return s.p, nil
}

func (s *stubService) ToggleActive(ctx context.Context, id string) (*domain.Principal, error) {
	s.p.Active = !s.p.Active
	return s.p, nil
}

func (s *stubService) AssignRole(ctx context.Context, id, roleName string) (*domain.Principal, error) {
	return s.p, nil
}

func (s *stubService) ResetPassword(ctx context.Context, id, password string) error { return nil }

func (s *stubService) Approve(ctx context.Context, id, deciderID string) (*approvalservice.Approval, error) {
	s.decider = deciderID
	return &approvalservice.Approval{
		Principal: s.p,
		Profile:   &employeedomain.Employee{ID: "e-1", Name: s.p.Name, Department: "General", Status: employeedomain.StatusActive},
	}, nil
}

func (s *stubService) Reject(ctx context.Context, id, deciderID, reason string) (*domain.Principal, error) {
	s.decider, s.reason = deciderID, reason
	return s.p, nil
}

func newStub() *stubService {
	return &stubService{p: &domain.Principal{
		ID: "p-1", Name: "Ann", Email: "ann@x.com", RoleName: "EMPLOYEE", Active: true,
		ApprovalState: domain.StatePending, PasswordHash: "$2a$secret", ResetTokenHash: "reset-secret",
	}}
}

func do(t *testing.T, method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithCaller(req.Context(), middleware.Caller{PrincipalID: "p-admin", Role: "ADMIN"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestResponsesOmitSecrets(t *testing.T) {
	h := NewHandler(newStub())
	for _, rec := range []*httptest.ResponseRecorder{
		do(t, http.MethodGet, "/api/users", "/api/users", "", h.List),
		do(t, http.MethodGet, "/api/users/{id}", "/api/users/p-1", "", h.Get),
		do(t, http.MethodGet, "/api/users/pending", "/api/users/pending", "", h.ListPending),
	} {
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if s := rec.Body.String(); strings.Contains(s, "secret") || strings.Contains(s, "password") {
			t.Errorf("response leaks secret: %s", s)
		}
	}
}

func TestApprove_UsesCallerAsDecider(t *testing.T) {
	stub := newStub()
	h := NewHandler(stub)
	rec := do(t, http.MethodPut, "/api/users/{id}/approve", "/api/users/p-1/approve", "", h.Approve)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.decider != "p-admin" {
		t.Errorf("decider = %q", stub.decider)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if emp, _ := body["employee"].(map[string]any); emp["id"] != "e-1" {
		t.Errorf("employee = %v", body["employee"])
	}
}

func TestReject_PassesReason(t *testing.T) {
	stub := newStub()
	h := NewHandler(stub)
	rec := do(t, http.MethodPut, "/api/users/{id}/reject", "/api/users/p-1/reject", `{"reason":"duplicate account"}`, h.Reject)
	if rec.Code != http.StatusOK || stub.reason != "duplicate account" {
		t.Errorf("status = %d reason = %q", rec.Code, stub.reason)
	}
}

func TestGet_NotSelf(t *testing.T) {
	stub := newStub()
	stub.getError = service.ErrNotSelf
	rec := do(t, http.MethodGet, "/api/users/{id}", "/api/users/p-2", "", NewHandler(stub).Get)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAssignRole_Required(t *testing.T) {
	rec := do(t, http.MethodPatch, "/api/users/{id}/role", "/api/users/p-1/role", `{}`, NewHandler(newStub()).AssignRole)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToggleStatus_Message(t *testing.T) {
	rec := do(t, http.MethodPatch, "/api/users/{id}/status", "/api/users/p-1/status", "", NewHandler(newStub()).ToggleStatus)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "User deactivated" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestEmailFormat(t *testing.T) {
	h := NewHandler(newStub())
	testCases := []struct {
		name    string
		method  string
		pattern string
		target  string
		body    string
		handler http.HandlerFunc
		bad     bool
	}{
		{"create bad", http.MethodPost, "/api/users", "/api/users", `{"name":"Ann","email":"nope","password":"secret1"}`, h.Create, true},
		{"create ok", http.MethodPost, "/api/users", "/api/users", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`, h.Create, false},
		{"update bad", http.MethodPut, "/api/users/{id}", "/api/users/p-1", `{"email":"ann@"}`, h.Update, true},
		{"update ok", http.MethodPut, "/api/users/{id}", "/api/users/p-1", `{"email":"ann@x.com"}`, h.Update, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, tc.method, tc.pattern, tc.target, tc.body, tc.handler)
			if got := rec.Code == http.StatusBadRequest; got != tc.bad {
				t.Errorf("status = %d, want bad=%v", rec.Code, tc.bad)
			}
		})
	}
}
