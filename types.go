package portalcore

import "time"

// SessionStatus represents the lifecycle state of the delegated-credential
// session.
type SessionStatus uint8

const (
	// StatusUnauthenticated is an exported constant or variable used by the customer portal core.
	StatusUnauthenticated SessionStatus = iota
	// StatusPendingValidation is an exported constant or variable used by the customer portal core.
	StatusPendingValidation
	// StatusAuthenticated is an exported constant or variable used by the customer portal core.
	StatusAuthenticated
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s SessionStatus) String() string {
	switch s {
	case StatusPendingValidation:
		return "pending_validation"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Credential is the delegated-credential triple authorizing scoped API
// access. An empty ConsumerKey marks the handshake incomplete.
type Credential struct {
	AppKey      string
	AppSecret   string
	ConsumerKey string
}

// Complete describes the complete operation and its observable behavior.
//
// Complete may return an error when input validation, dependency calls, or security checks fail.
// Complete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Credential) Complete() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.ConsumerKey != ""
}

// UserProfile is the identity resolved from a complete credential via the
// remote identity endpoint. It is cached alongside the credential for the
// session's lifetime.
type UserProfile struct {
	Nichandle    string
	Email        string
	FirstName    string
	Name         string
	SupportLevel string
	AuthMethod   string
	Trusted      bool
}

// Session is the authenticated/unauthenticated state exposed to the rest of
// the application. Status is StatusAuthenticated exactly when the credential
// is complete and the user profile resolved.
type Session struct {
	Credential *Credential
	User       *UserProfile
	Status     SessionStatus
}

// MechanismStatus is the remote lifecycle state of one enrolled second-factor
// entry.
type MechanismStatus string

const (
	// MechanismEnabled is an exported constant or variable used by the customer portal core.
	MechanismEnabled MechanismStatus = "enabled"
	// MechanismPending is an exported constant or variable used by the customer portal core.
	MechanismPending MechanismStatus = "pendingValidation"
	// MechanismDisabled is an exported constant or variable used by the customer portal core.
	MechanismDisabled MechanismStatus = "disabled"
)

// SMSEntry defines a public type used by portalcore APIs.
//
// SMSEntry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMSEntry struct {
	ID          int64
	PhoneNumber string
	Description string
	Status      MechanismStatus
	LastUsed    time.Time
}

// TOTPEntry defines a public type used by portalcore APIs.
//
// TOTPEntry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPEntry struct {
	ID          int64
	Description string
	Status      MechanismStatus
	LastUsed    time.Time
}

// U2FEntry defines a public type used by portalcore APIs.
//
// U2FEntry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type U2FEntry struct {
	ID          int64
	Description string
	Status      MechanismStatus
	LastUsed    time.Time
}

// BackupCodeStatus is the single backup-code record of an account: how many
// one-time codes remain and whether the set is active.
type BackupCodeStatus struct {
	Remaining int
	Status    MechanismStatus
}

// TwoFactorStatus aggregates the four independent second-factor collections
// returned by the remote status endpoint.
type TwoFactorStatus struct {
	SMS        []SMSEntry
	TOTP       []TOTPEntry
	U2F        []U2FEntry
	BackupCode *BackupCodeStatus
}

// Enabled reports whether at least one mechanism has status enabled.
func (s *TwoFactorStatus) Enabled() bool {
	if s == nil {
		return false
	}
	for _, entry := range s.SMS {
		if entry.Status == MechanismEnabled {
			return true
		}
	}
	for _, entry := range s.TOTP {
		if entry.Status == MechanismEnabled {
			return true
		}
	}
	for _, entry := range s.U2F {
		if entry.Status == MechanismEnabled {
			return true
		}
	}
	if s.BackupCode != nil && s.BackupCode.Status == MechanismEnabled {
		return true
	}
	return false
}

// IPRule defines a public type used by portalcore APIs.
//
// IPRule instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IPRule string

const (
	// IPRuleAccept is an exported constant or variable used by the customer portal core.
	IPRuleAccept IPRule = "accept"
	// IPRuleDeny is an exported constant or variable used by the customer portal core.
	IPRuleDeny IPRule = "deny"
)

// Display returns the user-facing label for the rule: "allow" for accept,
// "deny" for deny.
func (r IPRule) Display() string {
	if r == IPRuleDeny {
		return "deny"
	}
	return "allow"
}

// Valid describes the valid operation and its observable behavior.
//
// Valid may return an error when input validation, dependency calls, or security checks fail.
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r IPRule) Valid() bool {
	return r == IPRuleAccept || r == IPRuleDeny
}

// IPRestriction is one IP/CIDR access rule of the account.
type IPRestriction struct {
	ID      int64
	IP      string
	Rule    IPRule
	Warning bool
}

// IPDefaultRule is the singleton fallback rule applied when no explicit
// restriction matches.
type IPDefaultRule struct {
	Rule    IPRule
	Warning bool
}

// TOTPSecret is the transient secret material minted by the remote API during
// TOTP enrollment. It is held in memory only and cleared when the modal
// closes.
type TOTPSecret struct {
	ID     int64
	Secret string
	URI    string
}

// U2FRegistration is the registration request returned by the remote API for
// a hardware-key enrollment. The actual device ceremony is completed by the
// external device layer.
type U2FRegistration struct {
	ID        int64
	AppID     string
	Challenge string
	Version   string
}

// SecurityStatus is the joined result of the three status fetches issued on
// load. It is replaced wholesale after every successful mutation, never
// patched.
type SecurityStatus struct {
	TwoFactor      *TwoFactorStatus
	IPRestrictions []IPRestriction
	IPDefaultRule  *IPDefaultRule
}
