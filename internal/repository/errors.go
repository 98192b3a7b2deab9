// Package repository defines error types that are reused across the
// browser-storage repositories.  These sentinel values allow higher layers
// such as the auth flow and the handlers to distinguish between the
// different failure scenarios with errors.Is.
package repository

import "errors"

// ErrNoSuchAccount is returned by Authenticate when no registered user has
// the given email.  The auth flow shows it next to the email field.
var ErrNoSuchAccount = errors.New("no account found with this email")

// ErrWrongPassword is returned by Authenticate when the email is known but
// the password differs.  The auth flow shows it next to the password field.
var ErrWrongPassword = errors.New("incorrect password")

// ErrCorruptRecord wraps a decode failure of a stored value, e.g. a user
// list that is not valid JSON.  It is never recovered from automatically.
var ErrCorruptRecord = errors.New("corrupt stored record")
