package portalcore

import "context"

// RequestPasswordChange describes the requestpasswordchange operation and its observable behavior.
//
// RequestPasswordChange may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordChange does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) RequestPasswordChange(ctx context.Context, token string) error {
	if c == nil {
		return ErrPortalNotReady
	}
	if err := c.begin(ModalPassword, token); err != nil {
		return err
	}

	if err := c.mutate.RequestPasswordChange(ctx); err != nil {
		return c.fail(ctx, token, "changePassword", err)
	}

	// A confirmation mail goes out; nothing on the security page changes
	// until the user follows it. The modal stays open on the success state
	// and no refetch happens.
	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.success = "confirmation email sent"
	}) {
		return nil
	}

	c.portal.metricInc(MetricPasswordChangeRequested)
	c.portal.emitAudit(ctx, auditEventPasswordChangeRequest, true, ModalPassword.String(), nil, nil)
	return nil
}
