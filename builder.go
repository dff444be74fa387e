package portalcore

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/veltacloud/portalcore/credstore"
	"github.com/veltacloud/portalcore/internal/api"
	"github.com/veltacloud/portalcore/token"
)

// Builder defines a public type used by portalcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	store      credstore.Store
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithEndpoint describes the withendpoint operation and its observable behavior.
//
// WithEndpoint may return an error when input validation, dependency calls, or security checks fail.
// WithEndpoint does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEndpoint(endpoint string) *Builder {
	b.config.API.Endpoint = endpoint
	return b
}

// WithRedirection describes the withredirection operation and its observable behavior.
//
// WithRedirection may return an error when input validation, dependency calls, or security checks fail.
// WithRedirection does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedirection(target string) *Builder {
	b.config.API.Redirection = target
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Portal, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	switch {
	case store != nil && b.redis != nil:
		return nil, errors.New("WithStore and WithRedis are mutually exclusive")
	case b.redis != nil:
		if cfg.Store.ScopeID == "" {
			return nil, errors.New("redis store requires a scope id")
		}
		redisStore, err := credstore.NewRedisStore(b.redis, credstore.RedisOptions{
			Prefix:  cfg.Store.RedisPrefix,
			ScopeID: cfg.Store.ScopeID,
			TTL:     cfg.Store.TTL,
		})
		if err != nil {
			return nil, err
		}
		store = redisStore
	case store == nil:
		store = credstore.NewMemoryStore()
	}

	client, err := api.NewClient(api.Config{
		Endpoint:         cfg.API.Endpoint,
		BasePath:         cfg.API.BasePath,
		Timeout:          cfg.API.Timeout,
		MaxResponseBytes: cfg.API.MaxResponseBytes,
		HTTPClient:       b.httpClient,
	})
	if err != nil {
		return nil, err
	}

	var tokens *token.Manager
	if len(cfg.SessionToken.SigningKey) > 0 {
		tokens, err = token.NewManager(token.Config{
			TTL:        cfg.SessionToken.TTL,
			SigningKey: cfg.SessionToken.SigningKey,
			Issuer:     cfg.SessionToken.Issuer,
			Leeway:     cfg.SessionToken.Leeway,
		})
		if err != nil {
			return nil, err
		}
	}

	p := &Portal{
		config:  cfg,
		store:   store,
		client:  client,
		tokens:  tokens,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		session: Session{Status: StatusUnauthenticated},
	}

	services := &apiSecurityService{portal: p}
	p.controller = newSecurityController(p, services, services)

	b.built = true
	return p, nil
}
