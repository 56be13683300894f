package handler

import (
	"context"
	"net/http"
	"time"

	"employee-management/backend/internal/audit/domain"
	"employee-management/backend/internal/platform/errs"
	"employee-management/backend/internal/platform/httpx"
)

// maxLimit bounds the limit query parameter.
const maxLimit = 500

// Lister reads audit logs. Implemented by the audit repository.
type Lister interface {
	List(ctx context.Context, f domain.Filter) ([]*domain.AuditLog, error)
}

// Handler serves /api/audit-logs.
type Handler struct {
	repo Lister
}

// NewHandler returns an audit log Handler.
func NewHandler(repo Lister) *Handler {
	return &Handler{repo: repo}
}

// AuditLogJSON is the wire form of an audit log entry.
type AuditLogJSON struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"userId"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	IP          string    `json:"ip"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

// List handles GET /api/audit-logs?userId=&action=&resource=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if limit < 0 || limit > maxLimit {
		httpx.WriteError(w, r, errs.Newf(errs.Validation, "limit must be between 0 and %d", maxLimit))
		return
	}
	q := r.URL.Query()
	list, err := h.repo.List(r.Context(), domain.Filter{
		PrincipalID: q.Get("userId"),
		Action:      q.Get("action"),
		Resource:    q.Get("resource"),
		Limit:       limit,
	})
	if err != nil {
		httpx.WriteError(w, r, errs.Internal(err))
		return
	}
	out := make([]AuditLogJSON, 0, len(list))
	for _, a := range list {
		out = append(out, AuditLogJSON{
			ID:          a.ID,
			PrincipalID: a.PrincipalID,
			Action:      a.Action,
			Resource:    a.Resource,
			IP:          a.IP,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
