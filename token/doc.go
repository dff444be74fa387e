// Package token mints and parses the short-lived session token the portal
// hands to presentational layers, so that navigation, billing tabs, and BFF
// cookies can assert the authenticated identity without ever touching the
// delegated-credential triple.
//
// Tokens are HS256 JWTs. Parsing pins the algorithm; a token signed with any
// other method is rejected regardless of its header.
package token
