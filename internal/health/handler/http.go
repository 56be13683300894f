package handler

import (
	"context"
	"net/http"
	"time"

	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/platform/httpx"
)

// checkTimeout bounds each readiness probe.
const checkTimeout = 2 * time.Second

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is implemented by the policy engine.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves /healthz.
type Handler struct {
	db     Pinger
	policy PolicyChecker
}

// NewHandler returns a health Handler. Nil checks are skipped.
func NewHandler(db Pinger, policy PolicyChecker) *Handler {
	return &Handler{db: db, policy: policy}
}

// Check runs every readiness probe and returns the first failure.
func (h *Handler) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return err
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Check(r.Context()); err != nil {
		logs.With("health").WithError(err).Warn("readiness check failed")
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
