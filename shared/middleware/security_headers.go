package middleware

import (
	"net/http"
)

// apiCSP forbids every kind of active content, responses are JSON or raw file bytes.
const apiCSP = "default-src 'none'; frame-ancestors 'none'; sandbox"

// SecurityHeaders sets hardening headers on every response.
// HSTS is only sent when the service is reached over https.
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			// downloaded files must not be reinterpreted by the browser
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", apiCSP)
			if isHTTPS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
