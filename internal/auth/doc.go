// Package auth provides the bearer-token gate for news-mcp.
//
// # Shared Secret
//
// The validate tool is guarded by a single shared secret configured as
// auth.bearer_token (or MCP_BEARER_TOKEN). A presented token is accepted iff
// it is non-empty and byte-for-byte equal to the secret. There is no hashing,
// expiry or per-identity distinction.
//
// When no secret is configured the gate never validates, so an unconfigured
// server never hands out its identity payload.
//
//	gate := auth.NewGate(cfg.Auth.BearerToken)
//	if gate.Validate(token) {
//	    // disclose identity
//	}
//
// # HTTP Helpers
//
// The REST binding accepts the token in an Authorization header:
//
//	Authorization: Bearer <token>
//
// BearerToken and RequestToken parse the header. RedactHeaders masks
// credential-bearing headers before they are echoed or logged; the secret
// itself is never logged by this package.
package auth
