package portalcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventAuthRequestSuccess     = "auth_request_success"
	auditEventAuthRequestFailure     = "auth_request_failure"
	auditEventSessionRehydrated      = "session_rehydrated"
	auditEventSessionResolutionFail  = "session_resolution_failed"
	auditEventSessionLogout          = "session_logout"
	auditEventSessionTokenIssued     = "session_token_issued"
	auditEventStatusReloadSuccess    = "status_reload_success"
	auditEventStatusReloadFailure    = "status_reload_failure"
	auditEventModalOpened            = "modal_opened"
	auditEventModalClosed            = "modal_closed"
	auditEventStaleCompletionDropped = "stale_completion_dropped"
	auditEventSMSEnrollStarted       = "sms_enroll_started"
	auditEventSMSCodeResent          = "sms_code_resent"
	auditEventSMSValidated           = "sms_validated"
	auditEventTOTPSecretCreated      = "totp_secret_created"
	auditEventTOTPValidated          = "totp_validated"
	auditEventU2FRegistered          = "u2f_registration_requested"
	auditEventBackupCodesGenerated   = "backup_codes_generated"
	auditEventBackupCodesConfirmed   = "backup_codes_confirmed"
	auditEventTwoFactorDisabled      = "two_factor_disabled"
	auditEventMechanismDeleted       = "mechanism_deleted"
	auditEventIPRuleAdded            = "ip_rule_added"
	auditEventIPRuleDeleted          = "ip_rule_deleted"
	auditEventPasswordChangeRequest  = "password_change_requested"
	auditEventMutationFailure        = "mutation_failure"
)

// AuditErrorCode defines a public type used by portalcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrAuthRequestFailed   AuditErrorCode = "auth_request_failed"
	auditErrAuthRequestRejected AuditErrorCode = "auth_request_rejected"
	auditErrSessionResolution   AuditErrorCode = "session_resolution_failed"
	auditErrNotAuthenticated    AuditErrorCode = "not_authenticated"
	auditErrLoadFailed          AuditErrorCode = "load_failed"
	auditErrMutationFailed      AuditErrorCode = "mutation_failed"
	auditErrModalMismatch       AuditErrorCode = "modal_mismatch"
	auditErrStoreUnavailable    AuditErrorCode = "store_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (p *Portal) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	modal string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if p == nil || p.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		At:        time.Now().UTC(),
		Type:      eventType,
		Nichandle: p.currentNichandle(),
		ScopeID:   scopeIDFromContext(ctx),
		Modal:     modal,
		ClientIP:  clientIPFromContext(ctx),
		Success:   success,
		Detail:    metadata,
	}
	if event.ScopeID == "" {
		event.ScopeID = p.config.Store.ScopeID
	}
	if code := auditErrorCode(err); code != "" {
		event.ErrorCode = string(code)
	}

	p.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAuthRequestRejected):
		return auditErrAuthRequestRejected
	case errors.Is(err, ErrAuthRequestFailed):
		return auditErrAuthRequestFailed
	case errors.Is(err, ErrSessionResolution):
		return auditErrSessionResolution
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrLoadFailed):
		return auditErrLoadFailed
	case errors.Is(err, ErrMutationFailed):
		return auditErrMutationFailed
	case errors.Is(err, ErrModalMismatch), errors.Is(err, ErrMutationInFlight), errors.Is(err, ErrSecretPending):
		return auditErrModalMismatch
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}
