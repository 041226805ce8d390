package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// WebhookAuth enforces the static credential the NLU platform is configured to
// send with every fulfillment call. The token is accepted either as a bearer
// token or as the basic-auth password. An empty token disables the check.
func WebhookAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !webhookCredentialMatches(r, token) {
				w.Header().Set("WWW-Authenticate", `Basic realm="webhook"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func webhookCredentialMatches(r *http.Request, token string) bool {
	return CredentialMatches(r.Header.Get("Authorization"), token)
}

// CredentialMatches reports whether an Authorization header value carries the
// webhook token, either as a bearer token or as the basic-auth password.
func CredentialMatches(authorization, token string) bool {
	if token == "" {
		return true
	}
	probe := http.Request{Header: http.Header{"Authorization": {authorization}}}
	if _, password, ok := probe.BasicAuth(); ok {
		return constantTimeEqual(password, token)
	}
	if !strings.HasPrefix(authorization, "Bearer ") {
		return false
	}
	return constantTimeEqual(strings.TrimPrefix(authorization, "Bearer "), token)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
