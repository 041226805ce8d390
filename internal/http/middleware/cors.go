package middleware

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
	corsAllowMethods = "POST, OPTIONS"
	corsMaxAge       = "600"
)

// CORS lets browser-based agent test consoles call the webhook. Origins are
// matched exactly; "*" echoes back whatever Origin the browser sent.
// Preflights from unlisted origins are refused.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := lo.Compact(lo.Map(allowedOrigins, func(o string, _ int) string {
		return strings.TrimRight(strings.TrimSpace(o), "/")
	}))
	wildcard := lo.Contains(origins, "*")
	listed := lo.SliceToMap(origins, func(o string) (string, bool) { return o, true })

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !wildcard && !listed[origin] {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
