package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/veltacloud/portalcore/token"
)

type sessionClaimsContextKey struct{}

// SessionFromContext returns the claims attached by RequireSession.
func SessionFromContext(ctx context.Context) (*token.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsContextKey{}).(*token.SessionClaims)
	return claims, ok
}

// RequireSession rejects requests without a valid portal session token and
// attaches the parsed claims to the request context.
func RequireSession(manager *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := manager.Parse(raw)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	raw := value[len(bearer):]
	if raw == "" {
		return "", false
	}

	return raw, true
}
