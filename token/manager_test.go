package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := Config{
		TTL:        15 * time.Minute,
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "portalcore",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	base := Config{TTL: time.Minute, SigningKey: []byte("0123456789abcdef0123456789abcdef")}

	bad := base
	bad.TTL = 0
	if _, err := NewManager(bad); err == nil {
		t.Fatal("expected an error for zero TTL")
	}

	bad = base
	bad.SigningKey = []byte("short")
	if _, err := NewManager(bad); err == nil {
		t.Fatal("expected an error for a short signing key")
	}

	bad = base
	bad.Leeway = 5 * time.Minute
	if _, err := NewManager(bad); err == nil {
		t.Fatal("expected an error for excessive leeway")
	}
}

func TestMintParseRoundTrip(t *testing.T) {
	m := testManager(t, nil)

	signed, err := m.Mint("xx1234-ovh", "x@example.net", "account")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	claims, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Nichandle != "xx1234-ovh" {
		t.Fatalf("unexpected nichandle %q", claims.Nichandle)
	}
	if claims.Email != "x@example.net" || claims.AuthMethod != "account" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "portalcore" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestMintRequiresNichandle(t *testing.T) {
	m := testManager(t, nil)
	if _, err := m.Mint("", "x@example.net", "account"); err == nil {
		t.Fatal("expected an error without a nichandle")
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := testManager(t, nil)
	other := testManager(t, func(c *Config) {
		c.SigningKey = []byte("ffffffffffffffffffffffffffffffff")
	})

	signed, err := m.Mint("xx1234-ovh", "", "")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := other.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := testManager(t, nil)

	now := time.Now().Add(-time.Hour)
	claims := SessionClaims{
		Nichandle: "xx1234-ovh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portalcore",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := m.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsAlgNone(t *testing.T) {
	m := testManager(t, nil)

	claims := SessionClaims{
		Nichandle: "xx1234-ovh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portalcore",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := m.Parse(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	m := testManager(t, nil)
	other := testManager(t, func(c *Config) { c.Issuer = "someone-else" })

	signed, err := other.Mint("xx1234-ovh", "", "")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := m.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsMissingNichandle(t *testing.T) {
	m := testManager(t, nil)

	claims := jwt.RegisteredClaims{
		Issuer:    "portalcore",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := m.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without a nichandle claim, got %v", err)
	}
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager
	if _, err := m.Mint("xx1234-ovh", "", ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := m.Parse("x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
