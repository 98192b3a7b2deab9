// Package kv provides the key/string-value storage that stands in for a
// browser's local storage. Every key belongs to a scope (one browser), and
// the Local type gives callers the flat per-browser view.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is a scope-partitioned key/value store. Values are opaque strings.
type Store interface {
	Get(ctx context.Context, scope, key string) (string, error)
	Set(ctx context.Context, scope, key, value string) error
	// Delete removes all given keys of a scope in one step. Missing keys are
	// ignored.
	Delete(ctx context.Context, scope string, keys ...string) error
}

// Local is one browser's view of the store.
type Local struct {
	store Store
	scope string
}

func NewLocal(store Store, scope string) *Local {
	return &Local{store: store, scope: scope}
}

// Scope returns the identifier of the browser this view belongs to.
func (l *Local) Scope() string { return l.scope }

// Get returns the value and whether it was present.
func (l *Local) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := l.store.Get(ctx, l.scope, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (l *Local) Set(ctx context.Context, key, value string) error {
	return l.store.Set(ctx, l.scope, key, value)
}

func (l *Local) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return l.store.Delete(ctx, l.scope, keys...)
}
