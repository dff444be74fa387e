package portalcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SecurityController defines a public type used by portalcore APIs.
//
// SecurityController instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityController struct {
	portal *Portal
	query  SecurityQueryService
	mutate SecurityMutationService

	mu      sync.Mutex
	loading bool
	loadErr error
	status  *SecurityStatus
	modal   modalState
	ipErr   error
}

func newSecurityController(p *Portal, query SecurityQueryService, mutate SecurityMutationService) *SecurityController {
	return &SecurityController{
		portal: p,
		query:  query,
		mutate: mutate,
	}
}

// reset drops all cached status and modal state. Called on logout.
func (c *SecurityController) reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.loadErr = nil
	c.status = nil
	c.modal = modalState{}
	c.ipErr = nil
}

// View describes the view operation and its observable behavior.
//
// View may return an error when input validation, dependency calls, or security checks fail.
// View does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) View() SecurityView {
	if c == nil {
		return SecurityView{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return SecurityView{
		Loading: c.loading,
		LoadErr: c.loadErr,
		Status:  c.status,
		Modal:   c.modal.view(),
		IPErr:   c.ipErr,
	}
}

// Reload describes the reload operation and its observable behavior.
//
// Reload may return an error when input validation, dependency calls, or security checks fail.
// Reload does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) Reload(ctx context.Context) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	c.loading = true
	c.mu.Unlock()

	start := time.Now()

	var (
		wg           sync.WaitGroup
		twoFactor    *TwoFactorStatus
		twoFactorErr error
		rules        []IPRestriction
		rulesErr     error
		defaultRule  *IPDefaultRule
		defaultErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		twoFactor, twoFactorErr = c.query.TwoFactorStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		rules, rulesErr = c.query.IPRestrictions(ctx)
	}()
	go func() {
		defer wg.Done()
		defaultRule, defaultErr = c.query.IPDefaultRule(ctx)
	}()
	wg.Wait()

	var firstErr error
	for _, err := range []error{twoFactorErr, rulesErr, defaultErr} {
		if err != nil {
			firstErr = err
			break
		}
	}

	c.mu.Lock()
	c.loading = false
	if firstErr != nil {
		// One failed fetch poisons the whole result. A half-populated page
		// is worse than a retryable banner.
		c.status = nil
		c.loadErr = fmt.Errorf("%w: %v", ErrLoadFailed, firstErr)
		err := c.loadErr
		c.mu.Unlock()

		c.portal.metricInc(MetricStatusReloadFailure)
		c.portal.emitAudit(ctx, auditEventStatusReloadFailure, false, "", err, nil)
		return err
	}

	c.status = &SecurityStatus{
		TwoFactor:      twoFactor,
		IPRestrictions: rules,
		IPDefaultRule:  defaultRule,
	}
	c.loadErr = nil
	c.mu.Unlock()

	c.portal.metricInc(MetricStatusReloadSuccess)
	if c.portal != nil && c.portal.metrics != nil {
		c.portal.metrics.Observe(MetricReloadLatency, time.Since(start))
	}
	c.portal.emitAudit(ctx, auditEventStatusReloadSuccess, true, "", nil, nil)
	return nil
}

// OpenModal describes the openmodal operation and its observable behavior.
//
// OpenModal may return an error when input validation, dependency calls, or security checks fail.
// OpenModal does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) OpenModal(ctx context.Context, kind ModalKind) (string, error) {
	if c == nil {
		return "", ErrPortalNotReady
	}
	if kind == ModalNone || kind.isDelete() {
		return "", fmt.Errorf("%w: cannot open %s", ErrModalMismatch, kind)
	}
	return c.open(ctx, kind, 0)
}

// OpenDeleteModal describes the opendeletemodal operation and its observable behavior.
//
// OpenDeleteModal may return an error when input validation, dependency calls, or security checks fail.
// OpenDeleteModal does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) OpenDeleteModal(ctx context.Context, kind ModalKind, targetID int64) (string, error) {
	if c == nil {
		return "", ErrPortalNotReady
	}
	if !kind.isDelete() {
		return "", fmt.Errorf("%w: %s is not a delete modal", ErrModalMismatch, kind)
	}
	return c.open(ctx, kind, targetID)
}

// open installs a fresh modal in the single slot. Any modal already open is
// discarded; its in-flight completions become stale by token mismatch.
func (c *SecurityController) open(ctx context.Context, kind ModalKind, targetID int64) (string, error) {
	token := uuid.NewString()

	c.mu.Lock()
	c.modal = modalState{
		kind:     kind,
		token:    token,
		targetID: targetID,
	}
	c.mu.Unlock()

	c.portal.metricInc(MetricModalOpened)
	c.portal.emitAudit(ctx, auditEventModalOpened, true, kind.String(), nil, nil)
	return token, nil
}

// CloseModal describes the closemodal operation and its observable behavior.
//
// CloseModal may return an error when input validation, dependency calls, or security checks fail.
// CloseModal does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) CloseModal(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	kind := c.modal.kind
	c.modal = modalState{}
	c.mu.Unlock()

	if kind == ModalNone {
		return
	}
	c.portal.metricInc(MetricModalClosed)
	c.portal.emitAudit(ctx, auditEventModalClosed, true, kind.String(), nil, nil)
}

// begin marks the modal identified by token as having a mutation in flight.
// The returned error tells the caller whether its modal is still current.
func (c *SecurityController) begin(kind ModalKind, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal.kind != kind || c.modal.token != token {
		return ErrModalMismatch
	}
	if c.modal.loading {
		return ErrMutationInFlight
	}
	c.modal.loading = true
	c.modal.err = nil
	c.modal.success = ""
	return nil
}

// apply runs fn against the modal state only when token still identifies the
// open modal. A stale token means the modal was replaced or closed while the
// mutation was in flight; the completion is dropped without touching state.
func (c *SecurityController) apply(ctx context.Context, token string, fn func(*modalState)) bool {
	c.mu.Lock()
	if c.modal.token != token {
		c.mu.Unlock()
		c.portal.metricInc(MetricStaleCompletionDropped)
		c.portal.emitAudit(ctx, auditEventStaleCompletionDropped, true, "", nil, nil)
		return false
	}
	fn(&c.modal)
	c.mu.Unlock()
	return true
}

// fail records a mutation failure on the still-current modal and reports it
// to the caller. Stale failures are dropped like any other completion.
func (c *SecurityController) fail(ctx context.Context, token, op string, err error) error {
	mutErr := newMutationError(op, err)
	applied := c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.err = mutErr
	})
	if !applied {
		return nil
	}

	c.portal.metricInc(MetricMutationFailure)
	c.portal.emitAudit(ctx, auditEventMutationFailure, false, c.modalKind().String(), mutErr, func() map[string]string {
		return map[string]string{"op": op}
	})
	return mutErr
}

// finish closes the modal identified by token and triggers exactly one full
// status reload. A stale token closes nothing and reloads nothing.
func (c *SecurityController) finish(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.modal.token != token {
		c.mu.Unlock()
		c.portal.metricInc(MetricStaleCompletionDropped)
		c.portal.emitAudit(ctx, auditEventStaleCompletionDropped, true, "", nil, nil)
		return nil
	}
	kind := c.modal.kind
	c.modal = modalState{}
	c.mu.Unlock()

	c.portal.metricInc(MetricModalClosed)
	c.portal.emitAudit(ctx, auditEventModalClosed, true, kind.String(), nil, nil)

	return c.Reload(ctx)
}

func (c *SecurityController) modalKind() ModalKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal.kind
}
