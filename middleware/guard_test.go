package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veltacloud/portalcore/token"
)

func testManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager(token.Config{
		TTL:        15 * time.Minute,
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "portalcore",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func guardedEcho(t *testing.T, manager *token.Manager) http.Handler {
	t.Helper()
	return RequireSession(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("expected claims in the request context")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(claims.Nichandle))
	}))
}

func TestRequireSessionAcceptsValidToken(t *testing.T) {
	manager := testManager(t)
	handler := guardedEcho(t, manager)

	signed, err := manager.Mint("xx1234-ovh", "x@example.net", "account")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "xx1234-ovh" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRequireSessionRejections(t *testing.T) {
	manager := testManager(t)
	handler := RequireSession(manager)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("the handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireSessionNilManager(t *testing.T) {
	handler := RequireSession(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("the handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionFromContextWithoutGuard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := SessionFromContext(req.Context()); ok {
		t.Fatal("expected no claims outside the guard")
	}
}
