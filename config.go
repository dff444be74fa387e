package portalcore

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by portalcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API          APIConfig
	Store        StoreConfig
	SessionToken SessionTokenConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by portalcore APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	// Endpoint is the origin of the remote cloud-provider API,
	// e.g. "https://api.example-cloud.net".
	Endpoint string
	// BasePath is the fixed proxy base path prepended to every logical
	// path.
	BasePath string
	// Redirection is the URL the external validation page sends the user
	// back to once the credential grant is approved.
	Redirection string
	Timeout     time.Duration
	// MaxResponseBytes bounds remote response bodies.
	MaxResponseBytes int64
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by portalcore APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix string
	// ScopeID isolates one persisted credential record per browsing
	// context when a shared backend (Redis) is used.
	ScopeID string
	TTL     time.Duration
}

/*
====================================
SESSION TOKEN CONFIG
====================================
*/

// SessionTokenConfig defines a public type used by portalcore APIs.
//
// SessionTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionTokenConfig struct {
	// SigningKey enables local session-token minting when non-empty.
	// HS256 only; the key must be at least 32 bytes.
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by portalcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by portalcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BasePath:         "/api/v6",
			Timeout:          30 * time.Second,
			MaxResponseBytes: 1 << 20,
		},
		Store: StoreConfig{
			RedisPrefix: "portal",
			TTL:         24 * time.Hour,
		},
		SessionToken: SessionTokenConfig{
			TTL:    15 * time.Minute,
			Issuer: "portalcore",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.SessionToken.SigningKey) > 0 {
		out.SessionToken.SigningKey = append([]byte(nil), cfg.SessionToken.SigningKey...)
	}
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	endpoint := strings.TrimSpace(c.API.Endpoint)
	if endpoint == "" {
		return errors.New("API endpoint required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API endpoint must be an absolute URL")
	}
	if c.API.BasePath != "" && !strings.HasPrefix(c.API.BasePath, "/") {
		return errors.New("API base path must start with /")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API timeout must be positive")
	}
	if c.API.MaxResponseBytes <= 0 {
		return errors.New("API max response size must be positive")
	}
	if c.Store.TTL < 0 {
		return errors.New("store TTL must not be negative")
	}
	if len(c.SessionToken.SigningKey) > 0 {
		if len(c.SessionToken.SigningKey) < 32 {
			return errors.New("session token signing key must be at least 32 bytes")
		}
		if c.SessionToken.TTL <= 0 {
			return errors.New("session token TTL must be positive")
		}
		if c.SessionToken.Leeway < 0 || c.SessionToken.Leeway > 2*time.Minute {
			return errors.New("invalid session token leeway")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}
