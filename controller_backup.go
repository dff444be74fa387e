package portalcore

import (
	"context"
	"strconv"
)

// GenerateBackupCodes describes the generatebackupcodes operation and its observable behavior.
//
// GenerateBackupCodes may return an error when input validation, dependency calls, or security checks fail.
// GenerateBackupCodes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) GenerateBackupCodes(ctx context.Context, token string) ([]string, error) {
	if c == nil {
		return nil, ErrPortalNotReady
	}
	if err := c.begin(ModalBackup, token); err != nil {
		return nil, err
	}

	codes, err := c.mutate.GenerateBackupCodes(ctx)
	if err != nil {
		return nil, c.fail(ctx, token, "generateBackupCodes", err)
	}

	if !c.apply(ctx, token, func(m *modalState) {
		m.loading = false
		m.backupStep = BackupStepConfirm
		m.backupCodes = codes
	}) {
		return nil, nil
	}

	c.portal.metricInc(MetricBackupCodesGenerated)
	c.portal.emitAudit(ctx, auditEventBackupCodesGenerated, true, ModalBackup.String(), nil, func() map[string]string {
		return map[string]string{"count": strconv.Itoa(len(codes))}
	})
	return append([]string(nil), codes...), nil
}

// ConfirmBackupCode describes the confirmbackupcode operation and its observable behavior.
//
// ConfirmBackupCode may return an error when input validation, dependency calls, or security checks fail.
// ConfirmBackupCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) ConfirmBackupCode(ctx context.Context, token, code string) error {
	if c == nil {
		return ErrPortalNotReady
	}

	c.mu.Lock()
	step := c.modal.backupStep
	c.mu.Unlock()
	if step != BackupStepConfirm {
		return ErrModalMismatch
	}

	if err := c.begin(ModalBackup, token); err != nil {
		return err
	}

	if err := c.mutate.ValidateBackupCode(ctx, code); err != nil {
		// The generated codes must stay visible: the user still has to
		// copy them before retrying the confirmation.
		return c.fail(ctx, token, "validateBackupCode", err)
	}

	c.portal.metricInc(MetricBackupCodesConfirmed)
	c.portal.emitAudit(ctx, auditEventBackupCodesConfirmed, true, ModalBackup.String(), nil, nil)
	return c.finish(ctx, token)
}

// Disable2FA describes the disable2fa operation and its observable behavior.
//
// Disable2FA may return an error when input validation, dependency calls, or security checks fail.
// Disable2FA does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) Disable2FA(ctx context.Context, token, code string) error {
	if c == nil {
		return ErrPortalNotReady
	}
	if err := c.begin(ModalDisable2FA, token); err != nil {
		return err
	}

	if err := c.mutate.Disable2FA(ctx, code); err != nil {
		return c.fail(ctx, token, "disable2fa", err)
	}

	c.portal.metricInc(MetricTwoFactorDisabled)
	c.portal.emitAudit(ctx, auditEventTwoFactorDisabled, true, ModalDisable2FA.String(), nil, nil)
	return c.finish(ctx, token)
}
