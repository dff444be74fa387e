package portalcore

import "errors"

var (
	// ErrAuthRequestFailed is an exported constant or variable used by the customer portal core.
	ErrAuthRequestFailed = errors.New("delegated credential request failed")
	// ErrAuthRequestRejected is an exported constant or variable used by the customer portal core.
	ErrAuthRequestRejected = errors.New("delegated credential request rejected")
	// ErrSessionResolution is an exported constant or variable used by the customer portal core.
	ErrSessionResolution = errors.New("stored credential no longer resolves")
	// ErrNotAuthenticated is an exported constant or variable used by the customer portal core.
	ErrNotAuthenticated = errors.New("session not authenticated")
	// ErrSessionTokenDisabled is an exported constant or variable used by the customer portal core.
	ErrSessionTokenDisabled = errors.New("session token minting disabled")
	// ErrLoadFailed is an exported constant or variable used by the customer portal core.
	ErrLoadFailed = errors.New("security status load failed")
	// ErrMutationFailed is an exported constant or variable used by the customer portal core.
	ErrMutationFailed = errors.New("security mutation failed")
	// ErrModalMismatch is an exported constant or variable used by the customer portal core.
	ErrModalMismatch = errors.New("action does not match the open modal")
	// ErrMutationInFlight is an exported constant or variable used by the customer portal core.
	ErrMutationInFlight = errors.New("mutation already in flight for this modal")
	// ErrSecretPending is an exported constant or variable used by the customer portal core.
	ErrSecretPending = errors.New("totp secret already pending validation")
	// ErrPortalNotReady is an exported constant or variable used by the customer portal core.
	ErrPortalNotReady = errors.New("portal not initialized")
	// ErrStoreUnavailable is an exported constant or variable used by the customer portal core.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// MutationError carries the human-readable remote message for a failed
// enrollment action. It is surfaced inline in the open modal and satisfies
// errors.Is(err, ErrMutationFailed).
type MutationError struct {
	Op      string
	Message string
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *MutationError) Error() string {
	if e == nil {
		return "mutation failed"
	}
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// Is describes the is operation and its observable behavior.
//
// Is may return an error when input validation, dependency calls, or security checks fail.
// Is does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *MutationError) Is(target error) bool {
	return target == ErrMutationFailed
}
