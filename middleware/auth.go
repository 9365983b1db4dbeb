package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyAuthMiddleware guards the admin API with a single bearer key
type APIKeyAuthMiddleware struct {
	apiKey string
}

func NewAPIKeyAuthMiddleware(apiKey string) *APIKeyAuthMiddleware {
	return &APIKeyAuthMiddleware{apiKey: apiKey}
}

// Middleware rejects requests whose Authorization header does not carry the
// configured bearer key. Comparison is constant-time.
func (m *APIKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.apiKey == "" {
			http.Error(w, `{"error":"admin API is not configured"}`, http.StatusServiceUnavailable)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(m.apiKey)) != 1 {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
