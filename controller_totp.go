package portalcore

import "context"

// RequestTOTPSecret describes the requesttotpsecret operation and its observable behavior.
//
// RequestTOTPSecret may return an error when input validation, dependency calls, or security checks fail.
// RequestTOTPSecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) RequestTOTPSecret(ctx context.Context, token string) (*TOTPSecret, error) {
	if c == nil {
		return nil, ErrPortalNotReady
	}

	c.mu.Lock()
	if c.modal.kind == ModalTOTP && c.modal.token == token && c.modal.totpSecret != nil {
		c.mu.Unlock()
		// One secret per modal open. Minting a second would orphan the
		// first pending enrollment on the remote side.
		return nil, ErrSecretPending
	}
	c.mu.Unlock()

	if err := c.begin(ModalTOTP, token); err != nil {
		return nil, err
	}

	secret, err := c.mutate.CreateTOTP(ctx)
	if err != nil {
		return nil, c.fail(ctx, token, "createTotp", err)
	}

	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.totpSecret = secret
	}) {
		return nil, nil
	}

	c.portal.emitAudit(ctx, auditEventTOTPSecretCreated, true, ModalTOTP.String(), nil, nil)
	out := *secret
	return &out, nil
}

// SubmitTOTPCode describes the submittotpcode operation and its observable behavior.
//
// SubmitTOTPCode may return an error when input validation, dependency calls, or security checks fail.
// SubmitTOTPCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) SubmitTOTPCode(ctx context.Context, token, code string) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	var pendingID int64
	if c.modal.totpSecret != nil {
		pendingID = c.modal.totpSecret.ID
	}
	c.mu.Unlock()
	if pendingID == 0 {
		return ErrModalMismatch
	}

	if err := c.begin(ModalTOTP, token); err != nil {
		return err
	}

	if err := c.mutate.ValidateTOTP(ctx, pendingID, code); err != nil {
		return c.fail(ctx, token, "validateTotp", err)
	}

	c.portal.metricInc(MetricTOTPEnrolled)
	c.portal.emitAudit(ctx, auditEventTOTPValidated, true, ModalTOTP.String(), nil, nil)
	return c.finish(ctx, token)
}
