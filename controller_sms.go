package portalcore

import "context"

// SubmitSMSPhone describes the submitsmsphone operation and its observable behavior.
//
// SubmitSMSPhone may return an error when input validation, dependency calls, or security checks fail.
// SubmitSMSPhone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) SubmitSMSPhone(ctx context.Context, token, phone string) error {
	if c == nil {
		return ErrPortalNotReady
	}
	if err := c.begin(ModalSMS, token); err != nil {
		return err
	}

	// A failed code send leaves a pending enrollment behind. A retry with
	// the same number reuses it instead of registering a duplicate entry.
	c.mu.Lock()
	id := c.modal.pendingSMSID
	if c.modal.smsPhone != phone {
		id = 0
	}
	c.mu.Unlock()

	if id == 0 {
		var err error
		id, err = c.mutate.AddSMS(ctx, phone)
		if err != nil {
			return c.fail(ctx, token, "addSms", err)
		}
	}

	if err := c.mutate.SendSMSCode(ctx, id); err != nil {
		// The number is registered but no code went out. Stay on the phone
		// step and remember the pending entry so a retry re-sends against
		// it rather than enrolling the number twice.
		c.apply(ctx, token, func(m *modalState) {
			m.pendingSMSID = id
			m.smsPhone = phone
		})
		return c.fail(ctx, token, "sendSmsCode", err)
	}

	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.smsStep = SMSStepCode
		m.smsPhone = phone
		m.pendingSMSID = id
	}) {
		return nil
	}

	c.portal.emitAudit(ctx, auditEventSMSEnrollStarted, true, ModalSMS.String(), nil, nil)
	return nil
}

// ResendSMSCode describes the resendsmscode operation and its observable behavior.
//
// ResendSMSCode may return an error when input validation, dependency calls, or security checks fail.
// ResendSMSCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) ResendSMSCode(ctx context.Context, token string) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	pendingID := c.modal.pendingSMSID
	c.mu.Unlock()
	if pendingID == 0 {
		return ErrModalMismatch
	}

	if err := c.begin(ModalSMS, token); err != nil {
		return err
	}

	if err := c.mutate.SendSMSCode(ctx, pendingID); err != nil {
		return c.fail(ctx, token, "sendSmsCode", err)
	}

	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
	}) {
		return nil
	}

	c.portal.emitAudit(ctx, auditEventSMSCodeResent, true, ModalSMS.String(), nil, nil)
	return nil
}

// SubmitSMSCode describes the submitsmscode operation and its observable behavior.
//
// SubmitSMSCode may return an error when input validation, dependency calls, or security checks fail.
// SubmitSMSCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) SubmitSMSCode(ctx context.Context, token, code string) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	pendingID := c.modal.pendingSMSID
	c.mu.Unlock()
	if pendingID == 0 {
		return ErrModalMismatch
	}

	if err := c.begin(ModalSMS, token); err != nil {
		return err
	}

	if err := c.mutate.ValidateSMS(ctx, pendingID, code); err != nil {
		return c.fail(ctx, token, "validateSms", err)
	}

	c.portal.metricInc(MetricSMSEnrolled)
	c.portal.emitAudit(ctx, auditEventSMSValidated, true, ModalSMS.String(), nil, nil)
	return c.finish(ctx, token)
}
