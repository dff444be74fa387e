package portalcore

import (
	"sync"

	"github.com/veltacloud/portalcore/credstore"
	"github.com/veltacloud/portalcore/internal/api"
	"github.com/veltacloud/portalcore/token"
)

// Portal defines a public type used by portalcore APIs.
//
// Portal instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Portal struct {
	config     Config
	store      credstore.Store
	client     *api.Client
	tokens     *token.Manager
	audit      *auditDispatcher
	metrics    *Metrics
	controller *SecurityController

	mu      sync.Mutex
	session Session
}

// Security describes the security operation and its observable behavior.
//
// Security may return an error when input validation, dependency calls, or security checks fail.
// Security does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) Security() *SecurityController {
	if p == nil {
		return nil
	}
	return p.controller
}

// TokenManager describes the tokenmanager operation and its observable behavior.
//
// TokenManager may return an error when input validation, dependency calls, or security checks fail.
// TokenManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) TokenManager() *token.Manager {
	if p == nil {
		return nil
	}
	return p.tokens
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) Close() {
	if p == nil {
		return
	}
	if p.audit != nil {
		p.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) AuditDropped() uint64 {
	if p == nil || p.audit == nil {
		return 0
	}
	return p.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) MetricsSnapshot() MetricsSnapshot {
	if p == nil || p.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return p.metrics.Snapshot()
}

func (p *Portal) metricInc(id MetricID) {
	if p == nil || p.metrics == nil {
		return
	}
	p.metrics.Inc(id)
}

// Current returns a snapshot of the session. The credential and profile are
// copied so callers cannot mutate portal state through the returned value.
func (p *Portal) Current() Session {
	if p == nil {
		return Session{Status: StatusUnauthenticated}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return copySession(p.session)
}

func (p *Portal) setSession(session Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = session
}

func (p *Portal) currentNichandle() string {
	if p == nil {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.User == nil {
		return ""
	}
	return p.session.User.Nichandle
}

// currentCredential returns the credential for one request, or nil when the
// handshake never started. The copy is never retained by callers.
func (p *Portal) currentCredential() *Credential {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Credential == nil {
		return nil
	}
	cred := *p.session.Credential
	return &cred
}

func (p *Portal) authorizedClient() (*api.Client, error) {
	cred := p.currentCredential()
	if cred == nil || !cred.Complete() {
		return nil, ErrNotAuthenticated
	}
	return p.client.WithCredential(cred.AppKey, cred.AppSecret, cred.ConsumerKey), nil
}

func copySession(s Session) Session {
	out := Session{Status: s.Status}
	if s.Credential != nil {
		cred := *s.Credential
		out.Credential = &cred
	}
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	return out
}
