package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/banner"
	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

// LandingHandler serves the signed-in landing page and logout.
type LandingHandler struct{ *Deps }

func NewLandingHandler(d *Deps) *LandingHandler { return &LandingHandler{Deps: d} }

func (h *LandingHandler) banner(c echo.Context) *banner.Controller {
	return banner.NewController(h.sessions(c), AuthPath)
}

// Root: GET /.  Sends the browser to whichever page fits its session.
func (h *LandingHandler) Root(c echo.Context) error {
	s, err := h.sessions(c).Get(c.Request().Context())
	if err != nil {
		return h.internalError(c, "load session failed", err)
	}
	if s.IsLoggedIn {
		return c.Redirect(http.StatusSeeOther, LandingPath)
	}
	return c.Redirect(http.StatusSeeOther, AuthPath)
}

// Landing: GET /landing.
func (h *LandingHandler) Landing(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.banner(c).Load(ctx)
	if err != nil {
		return h.internalError(c, "load session failed", err)
	}
	if b.Redirect != "" {
		return c.Redirect(http.StatusSeeOther, b.Redirect)
	}
	if b.Partial {
		h.Log.Warn(ctx, "logged-in session without identity", "scope", middleware.ScopeOf(c))
	}
	subject, sessionID, err := h.sessions(c).Study(ctx)
	if err != nil {
		return h.internalError(c, "load study session failed", err)
	}
	return c.Render(http.StatusOK, view.PageLanding, view.LandingPage{
		Banner:        b,
		Courses:       h.Catalog.Courses(),
		LastSubject:   subject,
		LastSessionID: sessionID,
	})
}

// Logout: POST /logout.
func (h *LandingHandler) Logout(c echo.Context) error {
	target, err := h.banner(c).Logout(c.Request().Context())
	if err != nil {
		return h.internalError(c, "logout failed", err)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// APISession: GET /v1/session.  Anonymous browsers get {"redirect": "/auth"}.
func (h *LandingHandler) APISession(c echo.Context) error {
	b, err := h.banner(c).Load(c.Request().Context())
	if err != nil {
		return h.internalError(c, "load session failed", err)
	}
	return c.JSON(http.StatusOK, b)
}

// APILogout: POST /v1/logout.
func (h *LandingHandler) APILogout(c echo.Context) error {
	target, err := h.banner(c).Logout(c.Request().Context())
	if err != nil {
		return h.internalError(c, "logout failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect": target})
}
