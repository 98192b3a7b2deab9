// Package view renders the HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/authflow"
	"github.com/iliyamo/oxbridge-lms/internal/banner"
	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/study"
)

//go:embed templates/*.html
var files embed.FS

// Page template names.
const (
	PageAuth    = "auth.html"
	PageLanding = "landing.html"
	PageStudy   = "study.html"
	PageCourse  = "course.html"
)

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	t *template.Template
}

func New() (*Renderer, error) {
	t, err := template.New("").ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}

// FormPanel is one of the two auth forms.
type FormPanel struct {
	Errors         map[string]string
	SubmitLabel    string
	SubmitDisabled bool
}

func Panel(v authflow.View) FormPanel {
	return FormPanel{Errors: v.Messages(), SubmitLabel: v.SubmitLabel, SubmitDisabled: v.SubmitDisabled}
}

// AuthPage shows the login and register forms; Active picks the visible tab.
// Refresh is the meta refresh content while a sign-in redirect is pending.
type AuthPage struct {
	Active   string
	Login    FormPanel
	Register FormPanel
	Values   authflow.Values
	Refresh  string
}

// RefreshAfter builds a meta refresh value, rounding d up to whole seconds.
func RefreshAfter(d time.Duration, target string) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d;url=%s", secs, target)
}

type LandingPage struct {
	Banner        banner.Banner
	Courses       []model.Course
	LastSubject   string
	LastSessionID string
}

type StudyPage struct {
	Prompting bool
	Confirmed bool
	Subject   string
	Message   string
	Session   *model.StudySession
}

func NewStudyPage(v study.View, subject string) StudyPage {
	return StudyPage{
		Prompting: v.State == study.StatePrompting,
		Confirmed: v.State == study.StateConfirmed,
		Subject:   subject,
		Message:   v.Message,
		Session:   v.Session,
	}
}

type CoursePage struct {
	Title      string
	List       bool
	ComingSoon bool
	Items      []catalog.ViewerItem
	Document   *model.Document
	Index      int
	EmbedURL   string
}

func NewCoursePage(s catalog.ViewerState) CoursePage {
	p := CoursePage{
		Title:      s.Course,
		List:       s.State == catalog.StateList,
		ComingSoon: s.State == catalog.StateComingSoon,
		Items:      s.Items,
		Document:   s.Document,
		EmbedURL:   s.EmbedURL,
	}
	if s.Index != nil {
		p.Index = *s.Index
	}
	return p
}

// FormResponse is the JSON body of the auth API: the form view plus the
// rendered message for every error code.
type FormResponse struct {
	authflow.View
	Messages map[string]string `json:"messages"`
}

func FormJSON(v authflow.View) FormResponse {
	return FormResponse{View: v, Messages: v.Messages()}
}
