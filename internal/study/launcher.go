// Package study implements the study-session launcher: it asks for a
// subject, mints a session id and builds the chat deep link.
package study

import (
	"context"
	"sync"

	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
	"github.com/iliyamo/oxbridge-lms/internal/validate"
)

type State string

const (
	StateClosed    State = "closed"
	StatePrompting State = "prompting"
	StateConfirmed State = "confirmed"
)

// View is the launcher modal as a renderer sees it.
type View struct {
	State   State               `json:"state"`
	Error   validate.Code       `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Session *model.StudySession `json:"session,omitempty"`
}

// Launcher is the subject prompt plus the confirmation modal.
type Launcher struct {
	Sessions *repository.SessionRepo
	IDs      *IDGenerator
	BotName  string
	Host     string

	mu       sync.Mutex
	state    State
	userName string
	errCode  validate.Code
	session  *model.StudySession
}

func NewLauncher(sessions *repository.SessionRepo, ids *IDGenerator, host, bot string) *Launcher {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Launcher{Sessions: sessions, IDs: ids, Host: host, BotName: bot, state: StateClosed}
}

// Open shows the subject prompt for the signed-in user.
func (l *Launcher) Open(ctx context.Context) (View, error) {
	s, err := l.Sessions.Get(ctx)
	if err != nil {
		return l.View(), err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StatePrompting
	l.userName = s.UserName
	l.errCode = ""
	l.session = nil
	return l.viewLocked(), nil
}

// Confirm validates the subject and, when present, persists it, mints a
// session id and moves to the confirmation view. An empty subject keeps the
// prompt open with SubjectRequired.
func (l *Launcher) Confirm(ctx context.Context, subject string) (View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		l.state = StatePrompting
	}
	subject = validate.Trim(subject)
	if subject == "" {
		l.errCode = validate.SubjectRequired
		return l.viewLocked(), nil
	}
	l.errCode = ""

	if err := l.Sessions.SetCourse(ctx, subject); err != nil {
		return l.viewLocked(), err
	}
	id, err := l.IDs.Next()
	if err != nil {
		return l.viewLocked(), err
	}
	if err := l.Sessions.SetSessionID(ctx, id); err != nil {
		return l.viewLocked(), err
	}
	greeting := Greeting(l.userName, subject, id)
	l.session = &model.StudySession{
		SessionID: id,
		UserName:  l.userName,
		Subject:   subject,
		Greeting:  greeting,
		Link:      DeepLink(l.Host, l.BotName, greeting),
	}
	l.state = StateConfirmed
	return l.viewLocked(), nil
}

// Cancel backs out of the subject prompt without launching anything.
func (l *Launcher) Cancel() View { return l.Close() }

// Close dismisses whichever modal is showing.
func (l *Launcher) Close() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateClosed
	l.errCode = ""
	l.session = nil
	return l.viewLocked()
}

func (l *Launcher) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *Launcher) viewLocked() View {
	v := View{State: l.state, Error: l.errCode}
	if l.errCode != "" {
		v.Message = l.errCode.Message()
	}
	if l.session != nil {
		s := *l.session
		v.Session = &s
	}
	return v
}
