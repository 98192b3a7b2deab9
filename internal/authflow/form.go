// Package authflow drives the login and registration forms as explicit
// state machines. Commands (submit, blur, input) are dispatched to a Form,
// which answers with a View snapshot that any rendering surface can draw.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/oxbridge-lms/internal/delay"
	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
	"github.com/iliyamo/oxbridge-lms/internal/validate"
)

type Kind string

const (
	KindLogin    Kind = "login"
	KindRegister Kind = "register"
)

// ParseKind maps a route segment to a form kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindLogin, KindRegister:
		return Kind(s), true
	}
	return "", false
}

type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateInvalid     State = "invalid"
	StateSubmitting  State = "submitting"
	StateRedirecting State = "redirecting"
)

type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldConfirm  Field = "confirm"
)

// ErrUnknownField is returned for blur/input events on a field the form
// does not have.
var ErrUnknownField = errors.New("authflow: unknown field")

// Values are the current contents of the form inputs. Login ignores Name
// and Confirm.
type Values struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

type Command interface{ command() }

// Submit validates the whole form and, when valid, signs the user in.
type Submit struct{ Values Values }

// Blur re-validates a single field when it loses focus.
type Blur struct {
	Field  Field
	Values Values
}

// Input clears the field's error as the user types.
type Input struct {
	Field  Field
	Values Values
}

func (Submit) command() {}
func (Blur) command()   {}
func (Input) command()  {}

// Deps are the collaborators of a Form.
type Deps struct {
	Users     *repository.UserRepo
	Sessions  *repository.SessionRepo
	Scheduler *delay.Scheduler
	// Delay is the pause between a successful submit and the redirect.
	Delay time.Duration
	// LandingPath is where a signed-in user is sent.
	LandingPath string
	// Navigate is called with LandingPath when the delay elapses. May be nil.
	Navigate func(target string)
	Now      func() time.Time
}

// Form is one login or registration form. It is safe for concurrent use; the
// delayed redirect fires on another goroutine.
type Form struct {
	kind Kind
	deps Deps

	mu       sync.Mutex
	state    State
	errs     map[Field]validate.Code
	user     model.User
	redirect *delay.Handle
}

func NewForm(kind Kind, deps Deps) *Form {
	if deps.Scheduler == nil {
		deps.Scheduler = delay.NewScheduler()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Form{kind: kind, deps: deps, state: StateIdle, errs: map[Field]validate.Code{}}
}

func (f *Form) Kind() Kind { return f.kind }

// View returns the current snapshot.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked(f.state)
}

// User returns the account that signed in, valid once the form is submitting.
func (f *Form) User() model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

// Redirect returns the pending redirect task, nil before a successful submit.
func (f *Form) Redirect() *delay.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}

// Cancel aborts a pending redirect and re-enables the form. The session
// flags written by the submit stay in place.
func (f *Form) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redirect == nil || !f.redirect.Cancel() {
		return false
	}
	f.redirect = nil
	f.state = StateIdle
	return true
}

// Dispatch applies cmd and returns the resulting view.
func (f *Form) Dispatch(ctx context.Context, cmd Command) (View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch c := cmd.(type) {
	case Submit:
		return f.submit(ctx, c.Values)
	case Blur:
		if !f.hasField(c.Field) {
			return f.viewLocked(f.state), fmt.Errorf("%w: %s", ErrUnknownField, c.Field)
		}
		if err := f.blur(ctx, c.Field, c.Values); err != nil {
			return f.viewLocked(f.state), err
		}
	case Input:
		if !f.hasField(c.Field) {
			return f.viewLocked(f.state), fmt.Errorf("%w: %s", ErrUnknownField, c.Field)
		}
		f.input(c.Field, c.Values)
	default:
		return f.viewLocked(f.state), fmt.Errorf("authflow: unsupported command %T", cmd)
	}
	return f.viewLocked(f.state), nil
}

func (f *Form) hasField(field Field) bool {
	switch field {
	case FieldEmail, FieldPassword:
		return true
	case FieldName, FieldConfirm:
		return f.kind == KindRegister
	}
	return false
}

func (f *Form) submit(ctx context.Context, v Values) (View, error) {
	if f.state == StateSubmitting || f.state == StateRedirecting {
		// the submit control is disabled while a redirect is pending
		return f.viewLocked(f.state), nil
	}
	f.state = StateValidating
	f.errs = map[Field]validate.Code{}

	var (
		user model.User
		err  error
	)
	if f.kind == KindLogin {
		user, err = f.validateLogin(ctx, v)
	} else {
		user, err = f.validateRegister(ctx, v)
	}
	if err != nil {
		f.state = StateIdle
		return f.viewLocked(StateIdle), err
	}
	if len(f.errs) > 0 {
		f.state = StateIdle
		return f.viewLocked(StateInvalid), nil
	}

	if f.kind == KindRegister {
		if err := f.deps.Users.Upsert(ctx, user); err != nil {
			f.state = StateIdle
			return f.viewLocked(StateIdle), err
		}
	}
	if err := f.deps.Sessions.Set(ctx, model.SessionState{
		IsLoggedIn: true,
		UserName:   user.Name,
		UserEmail:  user.Email,
	}); err != nil {
		f.state = StateIdle
		return f.viewLocked(StateIdle), err
	}

	f.user = user
	f.state = StateSubmitting
	navigate, target := f.deps.Navigate, f.deps.LandingPath
	f.redirect = f.deps.Scheduler.Schedule(f.deps.Delay, func() {
		f.mu.Lock()
		f.state = StateRedirecting
		f.mu.Unlock()
		if navigate != nil {
			navigate(target)
		}
	})
	return f.viewLocked(StateSubmitting), nil
}

// validateLogin checks the input shape first and only then consults the
// credential store.
func (f *Form) validateLogin(ctx context.Context, v Values) (model.User, error) {
	if !validate.IsValidEmail(v.Email) {
		f.errs[FieldEmail] = validate.InvalidEmailShape
	}
	if !validate.IsValidPassword(v.Password) {
		f.errs[FieldPassword] = validate.PasswordTooShort
	}
	if len(f.errs) > 0 {
		return model.User{}, nil
	}
	u, err := f.deps.Users.Authenticate(ctx, v.Email, v.Password)
	switch {
	case errors.Is(err, repository.ErrNoSuchAccount):
		f.errs[FieldEmail] = validate.NoSuchAccount
		return model.User{}, nil
	case errors.Is(err, repository.ErrWrongPassword):
		f.errs[FieldPassword] = validate.WrongPassword
		return model.User{}, nil
	case err != nil:
		return model.User{}, err
	}
	return u, nil
}

// validateRegister runs every check so all problems show at once.
func (f *Form) validateRegister(ctx context.Context, v Values) (model.User, error) {
	if validate.IsBlank(v.Name) {
		f.errs[FieldName] = validate.BlankName
	}
	if !validate.IsValidEmail(v.Email) {
		f.errs[FieldEmail] = validate.InvalidEmailShape
	} else {
		_, exists, err := f.deps.Users.FindByEmail(ctx, v.Email)
		if err != nil {
			return model.User{}, err
		}
		if exists {
			f.errs[FieldEmail] = validate.EmailAlreadyRegistered
		}
	}
	if !validate.IsValidPassword(v.Password) {
		f.errs[FieldPassword] = validate.PasswordTooShort
	}
	if v.Password != v.Confirm {
		f.errs[FieldConfirm] = validate.PasswordMismatch
	}
	return model.User{
		Name:      validate.Trim(v.Name),
		Email:     v.Email,
		Password:  v.Password,
		CreatedAt: f.deps.Now().UTC(),
	}, nil
}

// blur shows an error for an invalid non-empty field. It never clears one.
func (f *Form) blur(ctx context.Context, field Field, v Values) error {
	switch field {
	case FieldEmail:
		if v.Email == "" {
			return nil
		}
		if !validate.IsValidEmail(v.Email) {
			f.errs[FieldEmail] = validate.InvalidEmailShape
			return nil
		}
		if f.kind == KindRegister {
			_, exists, err := f.deps.Users.FindByEmail(ctx, v.Email)
			if err != nil {
				return err
			}
			if exists {
				f.errs[FieldEmail] = validate.EmailAlreadyRegistered
			}
		}
	case FieldPassword, FieldConfirm:
		value := v.Password
		if field == FieldConfirm {
			value = v.Confirm
		}
		if value != "" && !validate.IsValidPassword(value) {
			f.errs[field] = validate.PasswordTooShort
		}
	case FieldName:
		if validate.IsBlank(v.Name) {
			f.errs[FieldName] = validate.BlankName
		}
	}
	return nil
}

// input optimistically clears the field's error. The confirmation field is
// re-checked against the live password instead.
func (f *Form) input(field Field, v Values) {
	delete(f.errs, field)
	if field == FieldConfirm && v.Confirm != "" && v.Password != v.Confirm {
		f.errs[FieldConfirm] = validate.PasswordMismatch
	}
}
