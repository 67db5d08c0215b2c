package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	h "crewplanner/internal/delivery/http/helpers"
)

// RequireCronSecret returns a wrapper that validates the shared bearer secret
// presented by the external cron trigger. An empty configured secret rejects
// every request, so an unconfigured deployment cannot be swept by strangers.
func RequireCronSecret(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if secret == "" || !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			presented := strings.TrimSpace(auth[len(prefix):])
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			next(w, r)
		}
	}
}
