package handler

import (
	"sync"

	"github.com/iliyamo/oxbridge-lms/internal/authflow"
)

// pendingRedirects holds the forms whose post-sign-in redirect has not
// fired yet, one per browser scope and form, so a later request can cancel
// it.  Entries drop out once the redirect fires or is cancelled.
type pendingRedirects struct {
	mu    sync.Mutex
	forms map[string]*authflow.Form
}

func pendingKey(scope string, kind authflow.Kind) string { return scope + "|" + string(kind) }

func (p *pendingRedirects) put(scope string, f *authflow.Form) {
	h := f.Redirect()
	if h == nil {
		return
	}
	key := pendingKey(scope, f.Kind())
	p.mu.Lock()
	if p.forms == nil {
		p.forms = make(map[string]*authflow.Form)
	}
	p.forms[key] = f
	p.mu.Unlock()

	go func() {
		<-h.Done()
		p.mu.Lock()
		if p.forms[key] == f {
			delete(p.forms, key)
		}
		p.mu.Unlock()
	}()
}

// take removes and returns the pending form, nil when there is none.
func (p *pendingRedirects) take(scope string, kind authflow.Kind) *authflow.Form {
	key := pendingKey(scope, kind)
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.forms[key]
	delete(p.forms, key)
	return f
}
