package materials

import (
	"context"
	"strings"
)

// LocalRoute is the URL prefix the router serves MATERIALS_DIR under.
const LocalRoute = "/materials/"

// Local serves documents from the application's own static route.
type Local struct {
	base string
}

func NewLocal(base string) *Local {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Local{base: base}
}

func (l *Local) Resolve(_ context.Context, path string) (string, error) {
	p, err := clean(path)
	if err != nil {
		return "", err
	}
	return l.base + escapePath(p), nil
}
