package middleware

import (
	"context"
	"net/http"

	"employee-management/backend/internal/platform/httpx"
)

// Authorizer decides whether a principal may run a policy-table operation. Implemented by *rbac.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, principalID, operation string) error
}

// Authorize guards a route with operation. It must run after Authenticate.
func Authorize(gate Authorizer, operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := CallerFrom(r.Context())
			if !ok {
				httpx.WriteError(w, r, ErrNoToken)
				return
			}
			if err := gate.Authorize(r.Context(), c.PrincipalID, operation); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
