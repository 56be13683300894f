package middleware

import "context"

type contextKey struct{ name string }

var (
	callerKey   = contextKey{"caller"}
	clientIPKey = contextKey{"client_ip"}
)

// Caller is the authenticated identity decoded from the access token.
type Caller struct {
	PrincipalID string
	Role        string
	Email       string
	SessionID   string
}

// WithCaller returns a context carrying c. Handlers read it back with CallerFrom.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the caller set by Authenticate and true, or a zero Caller and false.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok && c.PrincipalID != ""
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the IP stored by the ClientIP middleware, or "unknown".
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
