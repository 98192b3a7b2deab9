// Package banner gates the landing page on the session flags and renders
// the personalised greeting.
package banner

import (
	"context"
	"fmt"

	"github.com/iliyamo/oxbridge-lms/internal/repository"
)

const (
	genericGreeting = "Welcome!"
	genericHero     = "Welcome to OXBRIDGE"
	heroSubtitle    = "We're excited to help you unlock your potential!"
)

// Banner is the outcome of loading the landing page. When Redirect is set
// nothing else should be rendered.
type Banner struct {
	Redirect     string `json:"redirect,omitempty"`
	UserName     string `json:"userName,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	Greeting     string `json:"greeting,omitempty"`
	HeroTitle    string `json:"heroTitle,omitempty"`
	HeroSubtitle string `json:"heroSubtitle,omitempty"`
	// Partial marks a logged-in session that lacks its name or email.
	Partial bool `json:"partial,omitempty"`
}

type Controller struct {
	Sessions *repository.SessionRepo
	AuthPath string
}

func NewController(sessions *repository.SessionRepo, authPath string) *Controller {
	return &Controller{Sessions: sessions, AuthPath: authPath}
}

// Load returns the banner for the current browser, or a redirect to the auth
// page when nobody is logged in.
func (c *Controller) Load(ctx context.Context) (Banner, error) {
	s, err := c.Sessions.Get(ctx)
	if err != nil {
		return Banner{}, err
	}
	if !s.IsLoggedIn {
		return Banner{Redirect: c.AuthPath}, nil
	}
	b := Banner{
		UserName:  s.UserName,
		UserEmail: s.UserEmail,
		Greeting:  genericGreeting,
		HeroTitle: genericHero,
		Partial:   !s.Complete(),
	}
	if s.UserName != "" {
		b.Greeting = fmt.Sprintf("Welcome, %s!", s.UserName)
		b.HeroTitle = fmt.Sprintf("Welcome to OXBRIDGE, %s!", s.UserName)
		b.HeroSubtitle = heroSubtitle
	}
	return b, nil
}

// Logout clears the session and returns where to send the browser.
func (c *Controller) Logout(ctx context.Context) (string, error) {
	if err := c.Sessions.Clear(ctx); err != nil {
		return "", err
	}
	return c.AuthPath, nil
}
