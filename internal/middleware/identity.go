package middleware

// identity.go holds the context keys shared across middleware files and the
// accessors handlers use to read them.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/model"
)

const (
	ctxScope   = "scope"
	ctxSession = "session"
)

// ScopeOf returns the browser scope id set by BrowserScope, or "" when the
// middleware did not run.
func ScopeOf(c echo.Context) string {
	if v, ok := c.Get(ctxScope).(string); ok {
		return v
	}
	return ""
}

// SessionOf returns the session loaded by RequireSession.
func SessionOf(c echo.Context) (model.SessionState, bool) {
	s, ok := c.Get(ctxSession).(model.SessionState)
	return s, ok
}

// scopeID is the rate-limit identity of a request: its scope id or "anon".
func scopeID(c echo.Context) string {
	if s := ScopeOf(c); s != "" {
		return s
	}
	return "anon"
}
