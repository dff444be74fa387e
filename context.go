package portalcore

import "context"

type clientIPContextKey struct{}
type scopeIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. It is carried into
// audit events emitted for the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithScopeID attaches the browsing-scope identifier to ctx so audit events
// from concurrent portal instances stay attributable.
func WithScopeID(ctx context.Context, scopeID string) context.Context {
	return context.WithValue(ctx, scopeIDContextKey{}, scopeID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func scopeIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	scopeID, _ := ctx.Value(scopeIDContextKey{}).(string)
	return scopeID
}
