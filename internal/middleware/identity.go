package middleware

// identity.go holds the helper that names the caller of a request for the
// rate limiter and for access logs.

import "github.com/labstack/echo/v4"

// EditorID returns the subject stored by JWTAuth, or "anon" for requests
// that did not pass through it.
func EditorID(c echo.Context) string {
	if s, ok := c.Get(ctxEditor).(string); ok && s != "" {
		return s
	}
	return "anon"
}
