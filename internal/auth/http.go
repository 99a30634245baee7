// ABOUTME: Bearer token extraction for the HTTP bindings
// ABOUTME: Parses "Authorization: Bearer <token>" headers without logging them

package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Header parsing errors
var (
	ErrMissingAuthorization   = errors.New("missing authorization header")
	ErrMalformedAuthorization = errors.New("invalid authorization header format")
	ErrEmptyToken             = errors.New("empty token")
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthorization
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrMalformedAuthorization
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// RequestToken extracts the bearer token from the request's Authorization header.
func RequestToken(r *http.Request) (string, error) {
	return BearerToken(r.Header.Get("Authorization"))
}

// RedactHeaders returns a copy of h with credential-bearing headers masked,
// suitable for echoing back or logging.
func RedactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range []string{"Authorization", "Proxy-Authorization", "Cookie"} {
		if out.Get(name) != "" {
			out.Set(name, "[redacted]")
		}
	}
	return out
}
