package portalcore

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestBeginDelegatedAuthPersistsTripleAndPends(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	req, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1")
	if err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}
	if req.ValidationURL != "https://validate.example.net/grant/1" {
		t.Fatalf("unexpected validation URL %q", req.ValidationURL)
	}
	if req.State == "" {
		t.Fatal("expected a non-empty state nonce")
	}

	session := portal.Current()
	if session.Status != StatusPendingValidation {
		t.Fatalf("expected pending_validation, got %s", session.Status)
	}
	if !session.Credential.Complete() {
		t.Fatal("expected the full credential triple in the session")
	}

	rec, err := portal.store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load failed: %v", err)
	}
	if rec == nil || rec.Credential.ConsumerKey != "ck-1" {
		t.Fatalf("expected the triple persisted, got %+v", rec)
	}
}

func TestBeginDelegatedAuthFailurePersistsNothing(t *testing.T) {
	stub := newRemoteAPIStub(t)
	stub.credentialStatus = http.StatusInternalServerError
	stub.credential = map[string]any{"message": "upstream down"}
	portal := newSessionPortal(t, stub)

	_, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1")
	if !errors.Is(err, ErrAuthRequestFailed) {
		t.Fatalf("expected ErrAuthRequestFailed, got %v", err)
	}

	rec, err := portal.store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nothing persisted after a failed request, got %+v", rec)
	}
	if portal.Current().Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", portal.Current().Status)
	}
}

func TestBeginDelegatedAuthIncompleteResponseRejected(t *testing.T) {
	stub := newRemoteAPIStub(t)
	stub.credential = map[string]any{"state": "pendingValidation"}
	portal := newSessionPortal(t, stub)

	_, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1")
	if !errors.Is(err, ErrAuthRequestRejected) {
		t.Fatalf("expected ErrAuthRequestRejected, got %v", err)
	}
}

func TestBeginDelegatedAuthSendsApplicationHeaders(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1"); err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}
	if stub.bootstrapApp != "ak-1" || stub.bootstrapSecret != "as-1" {
		t.Fatalf("expected application headers on the bootstrap request, got app=%q secret=%q",
			stub.bootstrapApp, stub.bootstrapSecret)
	}
	if stub.bootstrapConsumer != "" {
		t.Fatalf("expected no consumer header before validation, got %q", stub.bootstrapConsumer)
	}
}

func TestBeginDelegatedAuthRequiresApplicationPair(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "", "as-1"); !errors.Is(err, ErrAuthRequestRejected) {
		t.Fatalf("expected ErrAuthRequestRejected without an app key, got %v", err)
	}
	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", ""); !errors.Is(err, ErrAuthRequestRejected) {
		t.Fatalf("expected ErrAuthRequestRejected without an app secret, got %v", err)
	}
}

func TestCurrentReturnsIndependentCredentialCopy(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1"); err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}

	snapshot := portal.Current()
	if snapshot.Credential == nil {
		t.Fatal("expected a credential on the pending session")
	}
	snapshot.Credential.ConsumerKey = "tampered"
	if portal.Current().Credential.ConsumerKey != "ck-1" {
		t.Fatal("mutating a snapshot credential must not affect the session")
	}
}

func TestRehydrateAbsentCredentialIsUnauthenticated(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	session, err := portal.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if session.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", session.Status)
	}
	if stub.meCalls != 0 {
		t.Fatalf("expected no resolution call without a credential, got %d", stub.meCalls)
	}
}

func TestRehydrateResolvesProfile(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1"); err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}

	session, err := portal.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if session.Status != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %s", session.Status)
	}
	if session.User == nil || session.User.Nichandle != "xx1234-ovh" {
		t.Fatalf("expected resolved profile, got %+v", session.User)
	}
	if !session.User.Trusted {
		t.Fatal("expected trusted flag carried over")
	}
}

func TestRehydrateFailurePurgesCredential(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1"); err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}

	stub.meStatus = http.StatusForbidden
	stub.me = map[string]any{"message": "This credential is not valid", "errorCode": "INVALID_CREDENTIAL"}

	session, err := portal.Rehydrate(context.Background())
	if !errors.Is(err, ErrSessionResolution) {
		t.Fatalf("expected ErrSessionResolution, got %v", err)
	}
	if session.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after purge, got %s", session.Status)
	}

	rec, loadErr := portal.store.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("store.Load failed: %v", loadErr)
	}
	if rec != nil {
		t.Fatalf("expected the dead credential purged, got %+v", rec)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)

	if _, err := portal.BeginDelegatedAuth(context.Background(), "ak-1", "as-1"); err != nil {
		t.Fatalf("BeginDelegatedAuth failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := portal.Logout(context.Background()); err != nil {
			t.Fatalf("Logout #%d failed: %v", i+1, err)
		}
	}
	if portal.Current().Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", portal.Current().Status)
	}
}

func TestSessionTokenDisabledWithoutSigningKey(t *testing.T) {
	stub := newRemoteAPIStub(t)
	portal := newSessionPortal(t, stub)
	authenticate(t, portal)

	_, err := portal.SessionToken(context.Background())
	if !errors.Is(err, ErrSessionTokenDisabled) {
		t.Fatalf("expected ErrSessionTokenDisabled, got %v", err)
	}
}

func TestSessionTokenRequiresAuthenticatedSession(t *testing.T) {
	stub := newRemoteAPIStub(t)
	server := stub.serve(t)

	cfg := testConfig()
	cfg.API.Endpoint = server.URL
	cfg.SessionToken.SigningKey = []byte("0123456789abcdef0123456789abcdef")

	portal, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(portal.Close)

	if _, err := portal.SessionToken(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	authenticate(t, portal)
	signed, err := portal.SessionToken(context.Background())
	if err != nil {
		t.Fatalf("SessionToken failed: %v", err)
	}

	claims, err := portal.TokenManager().Parse(signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Nichandle != "xx1234-ovh" {
		t.Fatalf("unexpected nichandle %q", claims.Nichandle)
	}
}
