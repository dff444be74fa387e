// Package middleware provides the HTTP guard for surfaces that consume the
// portal session token: requests without a valid bearer token are rejected
// before reaching the handler, and the parsed claims are attached to the
// request context.
package middleware
