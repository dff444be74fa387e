package internaldefs

import (
	portalcore "github.com/veltacloud/portalcore"
)

// CounterDef defines a public type used by portalcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   portalcore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by portalcore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   portalcore.MetricID
	Name string
	Help string
}

// Bound pairs the Prometheus `le` label of one latency bucket with a suffix
// safe for use inside an instrument name.
type Bound struct {
	Label  string
	Suffix string
}

// CounterDefs is an exported constant or variable used by the customer portal core.
var CounterDefs = []CounterDef{
	{ID: portalcore.MetricAuthRequestSuccess, Name: "portal_auth_request_success_total", Help: "Successful delegated credential requests."},
	{ID: portalcore.MetricAuthRequestFailure, Name: "portal_auth_request_failure_total", Help: "Failed or rejected delegated credential requests."},
	{ID: portalcore.MetricSessionRehydrated, Name: "portal_session_rehydrated_total", Help: "Stored credentials resolved into authenticated sessions."},
	{ID: portalcore.MetricSessionResolutionFailed, Name: "portal_session_resolution_failed_total", Help: "Stored credentials purged after failed resolution."},
	{ID: portalcore.MetricSessionLogout, Name: "portal_session_logout_total", Help: "Logout operations."},
	{ID: portalcore.MetricSessionTokenIssued, Name: "portal_session_token_issued_total", Help: "Signed session tokens minted."},
	{ID: portalcore.MetricStatusReloadSuccess, Name: "portal_status_reload_success_total", Help: "Successful security status reloads."},
	{ID: portalcore.MetricStatusReloadFailure, Name: "portal_status_reload_failure_total", Help: "Failed security status reloads."},
	{ID: portalcore.MetricModalOpened, Name: "portal_modal_opened_total", Help: "Enrollment modals opened."},
	{ID: portalcore.MetricModalClosed, Name: "portal_modal_closed_total", Help: "Enrollment modals closed."},
	{ID: portalcore.MetricStaleCompletionDropped, Name: "portal_stale_completion_dropped_total", Help: "Mutation completions dropped after the modal changed."},
	{ID: portalcore.MetricMutationFailure, Name: "portal_mutation_failure_total", Help: "Failed security mutations."},
	{ID: portalcore.MetricSMSEnrolled, Name: "portal_sms_enrolled_total", Help: "Completed SMS enrollments."},
	{ID: portalcore.MetricTOTPEnrolled, Name: "portal_totp_enrolled_total", Help: "Completed TOTP enrollments."},
	{ID: portalcore.MetricU2FRegistered, Name: "portal_u2f_registered_total", Help: "Requested U2F registrations."},
	{ID: portalcore.MetricBackupCodesGenerated, Name: "portal_backup_codes_generated_total", Help: "Backup code set generations."},
	{ID: portalcore.MetricBackupCodesConfirmed, Name: "portal_backup_codes_confirmed_total", Help: "Confirmed backup code sets."},
	{ID: portalcore.MetricTwoFactorDisabled, Name: "portal_two_factor_disabled_total", Help: "Two-factor disable operations."},
	{ID: portalcore.MetricMechanismDeleted, Name: "portal_mechanism_deleted_total", Help: "Deleted second-factor mechanisms."},
	{ID: portalcore.MetricIPRuleAdded, Name: "portal_ip_rule_added_total", Help: "Added IP restriction rules."},
	{ID: portalcore.MetricIPRuleDeleted, Name: "portal_ip_rule_deleted_total", Help: "Deleted IP restriction rules."},
	{ID: portalcore.MetricPasswordChangeRequested, Name: "portal_password_change_requested_total", Help: "Requested password change confirmations."},
}

// HistogramDefs is an exported constant or variable used by the customer portal core.
var HistogramDefs = []HistogramDef{
	{ID: portalcore.MetricReloadLatency, Name: "portal_reload_latency_seconds", Help: "Security status reload latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the customer portal core.
var HistogramBounds = []Bound{
	{Label: "0.005", Suffix: "0_005"},
	{Label: "0.01", Suffix: "0_01"},
	{Label: "0.025", Suffix: "0_025"},
	{Label: "0.05", Suffix: "0_05"},
	{Label: "0.1", Suffix: "0_1"},
	{Label: "0.25", Suffix: "0_25"},
	{Label: "0.5", Suffix: "0_5"},
	{Label: "+Inf", Suffix: "inf"},
}

// CumulativeBuckets folds a raw snapshot slice into the fixed cumulative
// bucket array Prometheus expects. Short or missing slices count as zeroes.
func CumulativeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(out); i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
