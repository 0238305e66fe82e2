package httpapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// NewAPIKeyMiddleware enforces X-Api-Key on all API endpoints. An empty
// configured key disables the check entirely (local development).
//
// Keys are compared as SHA-256 digests so the comparison is constant time
// regardless of length.
func NewAPIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(apiKey))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			got := sha256.Sum256([]byte(r.Header.Get("X-Api-Key")))
			if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid api key", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
