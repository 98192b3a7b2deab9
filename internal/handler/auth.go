package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/authflow"
	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

// AuthHandler serves the login and registration forms, both as HTML pages
// and as the JSON API used for live field validation.
type AuthHandler struct{ *Deps }

func NewAuthHandler(d *Deps) *AuthHandler { return &AuthHandler{Deps: d} }

// ----- DTOs -----

type fieldReq struct {
	Field  string          `json:"field"`
	Event  string          `json:"event"` // blur | input
	Values authflow.Values `json:"values"`
}

func (h *AuthHandler) form(c echo.Context, kind authflow.Kind) *authflow.Form {
	return authflow.NewForm(kind, authflow.Deps{
		Users:       h.users(c),
		Sessions:    h.sessions(c),
		Scheduler:   h.Scheduler,
		Delay:       h.Cfg.RedirectDelay,
		LandingPath: LandingPath,
	})
}

func (h *AuthHandler) page(c echo.Context, status int, active authflow.Kind, login, register authflow.View, v authflow.Values) error {
	v.Password, v.Confirm = "", ""
	p := view.AuthPage{
		Active:   string(active),
		Login:    view.Panel(login),
		Register: view.Panel(register),
		Values:   v,
	}
	if login.State == authflow.StateSubmitting || register.State == authflow.StateSubmitting {
		p.Refresh = view.RefreshAfter(h.Cfg.RedirectDelay, LandingPath)
	}
	return c.Render(status, view.PageAuth, p)
}

// panels returns fresh views for both forms with cur replacing its kind.
func (h *AuthHandler) panels(c echo.Context, cur authflow.View) (login, register authflow.View) {
	login, register = h.form(c, authflow.KindLogin).View(), h.form(c, authflow.KindRegister).View()
	if cur.Kind == authflow.KindLogin {
		login = cur
	} else {
		register = cur
	}
	return login, register
}

// Page: GET /auth.  A browser that is already signed in goes straight to
// the landing page.
func (h *AuthHandler) Page(c echo.Context) error {
	s, err := h.sessions(c).Get(c.Request().Context())
	if err != nil {
		return h.internalError(c, "load session failed", err)
	}
	if s.IsLoggedIn {
		return c.Redirect(http.StatusSeeOther, LandingPath)
	}
	active := authflow.KindLogin
	if c.QueryParam("form") == string(authflow.KindRegister) {
		active = authflow.KindRegister
	}
	return h.page(c, http.StatusOK, active,
		h.form(c, authflow.KindLogin).View(),
		h.form(c, authflow.KindRegister).View(),
		authflow.Values{})
}

// Submit: POST /auth/:form.  Invalid input re-renders the page with inline
// errors.  A successful sign-in renders the disabled "Signing In..." form
// at once; the page refreshes to the landing page when the delay is up.
func (h *AuthHandler) Submit(c echo.Context) error {
	kind, ok := authflow.ParseKind(c.Param("form"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	var vals authflow.Values
	if err := c.Bind(&vals); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	f := h.form(c, kind)
	v, err := f.Dispatch(c.Request().Context(), authflow.Submit{Values: vals})
	if err != nil {
		return h.internalError(c, "submit failed", err)
	}
	login, register := h.panels(c, v)
	if v.State == authflow.StateInvalid {
		return h.page(c, http.StatusUnprocessableEntity, kind, login, register, vals)
	}

	h.signedIn(c, kind, f)
	return h.page(c, http.StatusOK, kind, login, register, vals)
}

// Cancel: POST /auth/:form/cancel.  Stops a pending redirect and shows the
// form enabled again; the session written by the submit stays.  When
// nothing is pending the browser goes on to the landing page.
func (h *AuthHandler) Cancel(c echo.Context) error {
	kind, ok := authflow.ParseKind(c.Param("form"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	f := h.redirects.take(middleware.ScopeOf(c), kind)
	if f == nil || !f.Cancel() {
		return c.Redirect(http.StatusSeeOther, LandingPath)
	}
	login, register := h.panels(c, f.View())
	u := f.User()
	return h.page(c, http.StatusOK, kind, login, register, authflow.Values{Name: u.Name, Email: u.Email})
}

// APISubmit: POST /v1/auth/:form/submit.  Same flow as Submit with the
// form view as JSON: 422 when any field is invalid, otherwise the
// submitting view with the redirect target and its delay.
func (h *AuthHandler) APISubmit(c echo.Context) error {
	kind, ok := authflow.ParseKind(c.Param("form"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown form"})
	}
	var vals authflow.Values
	if err := c.Bind(&vals); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	f := h.form(c, kind)
	v, err := f.Dispatch(c.Request().Context(), authflow.Submit{Values: vals})
	if err != nil {
		return h.internalError(c, "submit failed", err)
	}
	if v.State == authflow.StateInvalid {
		return c.JSON(http.StatusUnprocessableEntity, view.FormJSON(v))
	}

	h.signedIn(c, kind, f)
	return c.JSON(http.StatusOK, view.FormJSON(v))
}

// APICancel: POST /v1/auth/:form/cancel.  409 when no redirect is pending.
func (h *AuthHandler) APICancel(c echo.Context) error {
	kind, ok := authflow.ParseKind(c.Param("form"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown form"})
	}
	f := h.redirects.take(middleware.ScopeOf(c), kind)
	if f == nil || !f.Cancel() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no pending redirect"})
	}
	return c.JSON(http.StatusOK, view.FormJSON(f.View()))
}

// APIField: POST /v1/auth/:form/field.  Applies one blur or input event to
// a fresh form and returns the resulting errors; the client merges the
// named field's error into what it shows.
func (h *AuthHandler) APIField(c echo.Context) error {
	kind, ok := authflow.ParseKind(c.Param("form"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown form"})
	}
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var cmd authflow.Command
	field := authflow.Field(req.Field)
	switch req.Event {
	case "blur":
		cmd = authflow.Blur{Field: field, Values: req.Values}
	case "input":
		cmd = authflow.Input{Field: field, Values: req.Values}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event must be blur or input"})
	}

	v, err := h.form(c, kind).Dispatch(c.Request().Context(), cmd)
	if errors.Is(err, authflow.ErrUnknownField) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown field"})
	}
	if err != nil {
		return h.internalError(c, "validate field failed", err)
	}
	return c.JSON(http.StatusOK, view.FormJSON(v))
}

func (h *AuthHandler) signedIn(c echo.Context, kind authflow.Kind, f *authflow.Form) {
	u := f.User()
	k := queue.KindUserLoggedIn
	if kind == authflow.KindRegister {
		k = queue.KindUserRegistered
	}
	ev := queue.NewEvent(k, middleware.ScopeOf(c))
	ev.UserName, ev.UserEmail = u.Name, u.Email
	h.publish(ev)
	h.redirects.put(ev.Scope, f)
	h.Log.Info(c.Request().Context(), "signed in", "form", kind, "scope", ev.Scope)
}
