package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"employee-management/backend/internal/audit"
	"employee-management/backend/internal/audit/domain"
	auditrepo "employee-management/backend/internal/audit/repository"
	"employee-management/backend/internal/logs"
)

// auditMetadata is the JSON stored in AuditLog.Metadata by Audit.
type auditMetadata struct {
	Status int    `json:"status"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Audit records an audit log entry after each mutating request of an authenticated caller.
// It must run after Authenticate. Create is best-effort: failures are logged and do not change the response.
func Audit(repo auditrepo.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !audit.Mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			c, ok := CallerFrom(r.Context())
			if !ok {
				return
			}
			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			meta, _ := json.Marshal(auditMetadata{Status: status, Method: r.Method, Path: r.URL.Path})
			ar := audit.ParseRoute(r.Method, pattern)
			entry := &domain.AuditLog{
				ID:          uuid.New().String(),
				PrincipalID: c.PrincipalID,
				Action:      ar.Action,
				Resource:    ar.Resource,
				IP:          ClientIP(r.Context()),
				Metadata:    string(meta),
				CreatedAt:   time.Now().UTC(),
			}
			if err := repo.Create(r.Context(), entry); err != nil {
				logs.With("audit").WithError(err).WithField("action", ar.Action).Warn("failed to create audit log")
			}
		})
	}
}
