// Package portalcore implements the security core of a customer portal:
// the delegated-credential session lifecycle against a remote cloud-provider
// API and the multi-step enrollment state machine for SMS, TOTP, U2F, and
// backup-code second factors plus IP access rules.
//
// The package is designed for event-driven UI frontends: Portal and
// SecurityController methods are safe to call from multiple goroutines after
// initialization through [Builder.Build], and every enrollment completion is
// gated on a per-modal token so a response that arrives after the user
// switched flows can never corrupt unrelated state.
//
// # Architecture boundaries
//
// portalcore is the public surface. It exposes [Portal], [Builder], [Config],
// [SecurityController], and value types (Session, TwoFactorStatus, ModalView,
// etc.). The remote HTTP transport lives under internal/api and is never
// exported; credential persistence goes through the [credstore.Store]
// interface so it can be swapped for an in-memory fake in tests.
//
// # What this package must NOT do
//
//   - Verify delegated credentials cryptographically; the remote API owns
//     token validity and the package only observes resolution success.
//   - Patch cached security status optimistically; every successful mutation
//     triggers a full refetch so the remote API stays the single source of
//     truth.
//   - Retry remote calls implicitly. Every error path returns control to an
//     interactive retry affordance.
package portalcore
