package middleware

import (
	"net/http"
	"strings"

	"employee-management/backend/internal/platform/errs"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/security"
)

const bearerPrefix = "bearer "

var (
	// ErrNoToken is answered when a protected route is called without a bearer token.
	ErrNoToken = errs.New(errs.Unauthenticated, "Not authorized, no token")
	// ErrTokenFailed is answered when the bearer token does not validate.
	ErrTokenFailed = errs.New(errs.Unauthenticated, "Not authorized, token failed")
)

// AccessValidator validates access tokens. Implemented by *security.TokenProvider.
type AccessValidator interface {
	ValidateAccess(token string) (*security.AccessIdentity, error)
}

// Authenticate validates the bearer access token and stores the Caller in the request context.
// Requests without a valid token are answered with 401.
func Authenticate(tokens AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.WriteError(w, r, ErrNoToken)
				return
			}
			id, err := tokens.ValidateAccess(token)
			if err != nil {
				httpx.WriteError(w, r, ErrTokenFailed)
				return
			}
			ctx := WithCaller(r.Context(), Caller{
				PrincipalID: id.PrincipalID,
				Role:        id.Role,
				Email:       id.Email,
				SessionID:   id.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
