package security

import (
	"net/http"
	"strconv"
)

const defaultHSTSMaxAge = 180 * 24 * 60 * 60

// Headers adds browser hardening headers to every response. API responses
// carry member balances, so they are never cached.
type Headers struct {
	// HSTS is only emitted on TLS requests.
	HSTS       bool
	HSTSMaxAge int
}

// Middleware implements chi middleware.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Cache-Control", "no-store")
		if h.HSTS && r.TLS != nil {
			maxAge := h.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = defaultHSTSMaxAge
			}
			headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(maxAge))
		}
		next.ServeHTTP(w, r)
	})
}
