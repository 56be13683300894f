package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"employee-management/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	mu        sync.Mutex
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) List(ctx context.Context, f domain.Filter) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(ctx context.Context) string { return "192.168.1.1" })

	logger.LogEvent(context.Background(), "principal-1", ActionApproved, ResourcePrincipal, "target=p-2")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.PrincipalID != "principal-1" {
		t.Errorf("principal_id = %q, want %q", entry.PrincipalID, "principal-1")
	}
	if entry.Action != ActionApproved || entry.Resource != ResourcePrincipal {
		t.Errorf("action/resource = %q/%q", entry.Action, entry.Resource)
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != "target=p-2" {
		t.Errorf("metadata = %q", entry.Metadata)
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NoExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil).LogEvent(context.Background(), "", ActionLoginFailure, ResourceAuthentication, "")
	if len(repo.entries) != 1 || repo.entries[0].IP != "unknown" {
		t.Fatalf("entries = %+v, want one entry with ip unknown", repo.entries)
	}
}

func TestLogger_LogEvent_CreateErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, nil).LogEvent(context.Background(), "p", ActionLogout, ResourceAuthentication, "")
	if len(repo.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(repo.entries))
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "p", ActionLogout, ResourceAuthentication, "")
	NewLogger(nil, nil).LogEvent(context.Background(), "p", ActionLogout, ResourceAuthentication, "")
}
