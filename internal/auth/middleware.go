package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/capscollective/portal/internal/metrics"
)

type contextKey string

const identityContextKey contextKey = "identity"

// BearerMiddleware authenticates API requests by verifying the bearer
// credential against the identity provider. It performs no store access:
// a request with no usable token is rejected before any data-store I/O.
type BearerMiddleware struct {
	verifier TokenVerifier
}

// NewBearerMiddleware creates a new BearerMiddleware.
func NewBearerMiddleware(v TokenVerifier) *BearerMiddleware {
	return &BearerMiddleware{verifier: v}
}

// Authenticate extracts and verifies a Bearer token.
// WHEN valid: injects the caller Identity into the request context.
// WHEN missing/malformed/expired/untrusted: returns 401 and stops the chain.
func (m *BearerMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
			writeUnauthorized(w)
			return
		}
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		if rawToken == "" {
			metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
			writeUnauthorized(w)
			return
		}

		identity, err := m.verifier.Verify(r.Context(), rawToken)
		if err != nil {
			metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext retrieves the verified caller identity from the context.
// Returns nil when the request did not pass Authenticate.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// writeUnauthorized writes a 401 JSON response in the portal envelope.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "unauthorized"})
}
