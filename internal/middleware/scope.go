package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // cookies and status codes
	"time"     // cookie expiry

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/oxbridge-lms/internal/utils" // scope token signing
)

// ScopeCookie names the cookie holding the signed browser scope token.
const ScopeCookie = "lms_scope"

// ScopeConfig controls the browser scope cookie.
type ScopeConfig struct {
	Secret  string // HMAC key for the scope token
	TTLDays int    // cookie and token lifetime
	Secure  bool   // mark the cookie Secure (HTTPS only)
}

// BrowserScope returns an Echo middleware that gives every browser a stable
// scope id.  A valid signed cookie is reused; a missing, expired or forged
// one is replaced by a fresh scope, which behaves like a browser with empty
// local storage.  Handlers read the id through ScopeOf.
func BrowserScope(cfg ScopeConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(ScopeCookie); err == nil && ck.Value != "" {
				if scope, err := utils.ParseScopeToken(cfg.Secret, ck.Value); err == nil {
					c.Set(ctxScope, scope)
					return next(c)
				}
			}

			tok, err := utils.NewScopeToken(cfg.Secret, cfg.TTLDays)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue scope failed"})
			}
			c.SetCookie(&http.Cookie{
				Name:     ScopeCookie,
				Value:    tok.Token,
				Path:     "/",
				Expires:  tok.Exp,
				MaxAge:   int(time.Until(tok.Exp) / time.Second),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(ctxScope, tok.Scope)
			return next(c)
		}
	}
}
