package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
	"github.com/iliyamo/oxbridge-lms/internal/study"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

// StudyHandler serves the "start studying" modal.  Routes are behind
// RequireSession.
type StudyHandler struct{ *Deps }

func NewStudyHandler(d *Deps) *StudyHandler { return &StudyHandler{Deps: d} }

type studyReq struct {
	Subject string `json:"subject" form:"subject"`
	Action  string `json:"action" form:"action"` // "" confirms, "cancel" dismisses the prompt
}

func (h *StudyHandler) launcher(c echo.Context) *study.Launcher {
	return study.NewLauncher(h.sessions(c), h.IDs, h.Cfg.DeepLinkHost, h.Cfg.TelegramBot)
}

// Page: GET /study shows the subject prompt.
func (h *StudyHandler) Page(c echo.Context) error {
	v, err := h.launcher(c).Open(c.Request().Context())
	if err != nil {
		return h.internalError(c, "open study prompt failed", err)
	}
	return c.Render(http.StatusOK, view.PageStudy, view.NewStudyPage(v, ""))
}

// Confirm: POST /study.  The prompt's Cancel button posts action=cancel and
// lands back on the landing page.
func (h *StudyHandler) Confirm(c echo.Context) error {
	var req studyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Action == "cancel" {
		if _, err := h.cancel(c); err != nil {
			return h.internalError(c, "cancel study prompt failed", err)
		}
		return c.Redirect(http.StatusSeeOther, LandingPath)
	}
	v, err := h.confirm(c, req.Subject)
	if err != nil {
		return h.internalError(c, "start study session failed", err)
	}
	status := http.StatusOK
	if v.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	return c.Render(status, view.PageStudy, view.NewStudyPage(v, req.Subject))
}

// APIConfirm: POST /v1/study.  {"action":"cancel"} returns the closed view.
func (h *StudyHandler) APIConfirm(c echo.Context) error {
	var req studyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Action {
	case "":
	case "cancel":
		v, err := h.cancel(c)
		if err != nil {
			return h.internalError(c, "cancel study prompt failed", err)
		}
		return c.JSON(http.StatusOK, v)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be cancel"})
	}
	v, err := h.confirm(c, req.Subject)
	if err != nil {
		return h.internalError(c, "start study session failed", err)
	}
	if v.Error != "" {
		return c.JSON(http.StatusUnprocessableEntity, v)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *StudyHandler) cancel(c echo.Context) (study.View, error) {
	l := h.launcher(c)
	if _, err := l.Open(c.Request().Context()); err != nil {
		return study.View{}, err
	}
	return l.Cancel(), nil
}

func (h *StudyHandler) confirm(c echo.Context, subject string) (study.View, error) {
	ctx := c.Request().Context()
	l := h.launcher(c)
	if _, err := l.Open(ctx); err != nil {
		return study.View{}, err
	}
	v, err := l.Confirm(ctx, subject)
	if err != nil {
		return v, err
	}
	if v.Session != nil {
		ev := queue.NewEvent(queue.KindStudyLaunched, middleware.ScopeOf(c))
		ev.UserName, ev.Subject, ev.SessionID = v.Session.UserName, v.Session.Subject, v.Session.SessionID
		if s, ok := middleware.SessionOf(c); ok {
			ev.UserEmail = s.UserEmail
		}
		h.publish(ev)
	}
	return v, nil
}
