// Package api is the single HTTP surface of the portal core. Every remote
// call goes through one proxied base path and carries up to three custom
// headers derived from the current delegated credential.
//
// # Architecture boundaries
//
// This package owns transport concerns only: header injection, JSON codec,
// response size limits, and mapping of remote failures into *Error values.
// It knows nothing about sessions, modals, or enrollment semantics.
//
// # What this package must NOT do
//
//   - Retry requests. The portal treats every call as independently fallible.
//   - Let a raw transport error escape; callers always see *Error.
package api
