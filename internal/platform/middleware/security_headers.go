package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns middleware that sets security response headers on
// every request. The board carries patient-identifying data, so responses
// must never be cached and the API must not be embeddable.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			h.Set("X-Frame-Options", "DENY")

			// Rely on Content-Security-Policy instead of the legacy filter
			h.Set("X-XSS-Protection", "0")

			// Strict CSP for a JSON API: no resource loading, no framing
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			// HSTS, one year including subdomains
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			h.Set("Referrer-Policy", "no-referrer")

			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Responses contain patient data
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
