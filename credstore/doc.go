// Package credstore persists the delegated-credential record and the cached
// user profile for the lifetime of one browsing scope.
//
// # Design
//
// Records are plain JSON with no schema versioning. Any parse failure or
// shape mismatch on load is treated as an absent record rather than an error,
// so a corrupted store degrades to the unauthenticated state instead of
// crashing the portal.
//
// # Architecture boundaries
//
// This package owns record serialization and invalidation. It must not call
// the remote API, and it must not import portalcore (the root package
// converts between its value types and Record).
package credstore
