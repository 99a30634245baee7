// ABOUTME: Shared-secret bearer token gate guarding the privileged validate tool
// ABOUTME: Compares a presented token byte-for-byte against the configured secret

package auth

import "crypto/subtle"

// TokenValidator reports whether a presented bearer token is acceptable.
type TokenValidator interface {
	Validate(presented string) bool
}

// Gate validates bearer tokens against a single configured secret.
// The secret is a shared string, not a principal: there is no hashing,
// expiry or per-identity distinction.
type Gate struct {
	secret []byte
}

// NewGate creates a gate for the given secret. An empty secret produces a
// gate that never validates.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Configured reports whether a non-empty secret was supplied.
func (g *Gate) Configured() bool {
	return len(g.secret) > 0
}

// Validate returns true iff presented is non-empty and equal to the secret.
func (g *Gate) Validate(presented string) bool {
	if presented == "" || len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), g.secret) == 1
}
