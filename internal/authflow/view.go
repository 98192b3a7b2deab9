package authflow

import "github.com/iliyamo/oxbridge-lms/internal/validate"

// View is what a renderer needs to draw a form.
type View struct {
	Kind           Kind                    `json:"form"`
	State          State                   `json:"state"`
	Errors         map[Field]validate.Code `json:"errors"`
	SubmitLabel    string                  `json:"submitLabel"`
	SubmitDisabled bool                    `json:"submitDisabled"`
	Redirect       string                  `json:"redirect,omitempty"`
	// RedirectInMs is the pause before the redirect, set while submitting.
	RedirectInMs int64 `json:"redirectInMs,omitempty"`
}

// Message returns the error text for field, or "" when the field is valid.
func (v View) Message(field Field) string {
	if c, ok := v.Errors[field]; ok {
		return c.Message()
	}
	return ""
}

// Messages returns the error texts keyed by field name.
func (v View) Messages() map[string]string {
	out := make(map[string]string, len(v.Errors))
	for f, c := range v.Errors {
		out[string(f)] = c.Message()
	}
	return out
}

var labels = map[Kind][2]string{
	KindLogin:    {"Sign In", "Signing In..."},
	KindRegister: {"Create Account", "Creating Account..."},
}

// viewLocked builds a snapshot reporting state. Callers hold f.mu.
func (f *Form) viewLocked(state State) View {
	errs := make(map[Field]validate.Code, len(f.errs))
	for k, c := range f.errs {
		errs[k] = c
	}
	v := View{
		Kind:        f.kind,
		State:       state,
		Errors:      errs,
		SubmitLabel: labels[f.kind][0],
	}
	if state == StateSubmitting || state == StateRedirecting {
		v.SubmitLabel = labels[f.kind][1]
		v.SubmitDisabled = true
		v.Redirect = f.deps.LandingPath
	}
	if state == StateSubmitting {
		v.RedirectInMs = f.deps.Delay.Milliseconds()
	}
	return v
}
