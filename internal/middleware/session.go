package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
)

// RequireSession returns a middleware that lets a request through only when
// the browser's stored session is logged in.  The loaded session is put in
// the context for SessionOf.  Anonymous requests are answered by deny, so
// page routes can redirect while API routes return JSON.  It assumes
// BrowserScope ran first.
func RequireSession(store kv.Store, deny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope := ScopeOf(c)
			if scope == "" {
				return deny(c)
			}
			sessions := repository.NewSessionRepo(kv.NewLocal(store, scope))
			s, err := sessions.Get(c.Request().Context())
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
			}
			if !s.IsLoggedIn {
				return deny(c)
			}
			c.Set(ctxSession, s)
			return next(c)
		}
	}
}

// RedirectTo answers with a 303 to path; used as the deny handler of page
// routes.
func RedirectTo(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, path)
	}
}

// Unauthorized is the deny handler of API routes.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
}
