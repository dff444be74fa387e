package portalcore

import "context"

// RegisterU2F describes the registeru2f operation and its observable behavior.
//
// RegisterU2F may return an error when input validation, dependency calls, or security checks fail.
// RegisterU2F does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) RegisterU2F(ctx context.Context, token string) (*U2FRegistration, error) {
	if c == nil {
		return nil, ErrPortalNotReady
	}
	if err := c.begin(ModalU2F, token); err != nil {
		return nil, err
	}

	reg, err := c.mutate.RegisterU2F(ctx)
	if err != nil {
		return nil, c.fail(ctx, token, "registerU2f", err)
	}

	// The device ceremony happens outside this package. The modal stays
	// open showing the success state; the status list is not refetched
	// until the enrollment actually completes elsewhere.
	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.u2f = reg
		m.success = "registration requested"
	}) {
		return nil, nil
	}

	c.portal.metricInc(MetricU2FRegistered)
	c.portal.emitAudit(ctx, auditEventU2FRegistered, true, ModalU2F.String(), nil, nil)
	out := *reg
	return &out, nil
}
