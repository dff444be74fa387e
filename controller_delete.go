package portalcore

import "context"

// ConfirmDelete describes the confirmdelete operation and its observable behavior.
//
// ConfirmDelete may return an error when input validation, dependency calls, or security checks fail.
// ConfirmDelete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) ConfirmDelete(ctx context.Context, token string) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	kind := c.modal.kind
	targetID := c.modal.targetID
	c.mu.Unlock()

	if !kind.isDelete() || targetID == 0 {
		return ErrModalMismatch
	}

	if err := c.begin(kind, token); err != nil {
		return err
	}

	var err error
	var op string
	switch kind {
	case ModalDeleteSMS:
		op = "deleteSms"
		err = c.mutate.DeleteSMS(ctx, targetID)
	case ModalDeleteTOTP:
		op = "deleteTotp"
		err = c.mutate.DeleteTOTP(ctx, targetID)
	case ModalDeleteU2F:
		op = "deleteU2f"
		err = c.mutate.DeleteU2F(ctx, targetID)
	}
	if err != nil {
		return c.fail(ctx, token, op, err)
	}

	c.portal.metricInc(MetricMechanismDeleted)
	c.portal.emitAudit(ctx, auditEventMechanismDeleted, true, kind.String(), nil, func() map[string]string {
		return map[string]string{"op": op}
	})
	return c.finish(ctx, token)
}
