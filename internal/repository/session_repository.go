package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/model"
)

// SessionRepo persists the session flags of one browser.
type SessionRepo struct{ Local *kv.Local }

func NewSessionRepo(local *kv.Local) *SessionRepo { return &SessionRepo{Local: local} }

// Get returns the stored session, or the zero (logged out) session when the
// key is absent.
func (r *SessionRepo) Get(ctx context.Context) (model.SessionState, error) {
	raw, ok, err := r.Local.Get(ctx, KeySession)
	if err != nil {
		return model.SessionState{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return model.SessionState{}, nil
	}
	var s model.SessionState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.SessionState{}, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, KeySession, err)
	}
	return s, nil
}

// Set writes all session fields in one value.
func (r *SessionRepo) Set(ctx context.Context, s model.SessionState) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.Local.Set(ctx, KeySession, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the session together with the study keys. Registered users
// are left alone.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.Local.Remove(ctx, KeySession, KeyUserCourse, KeySessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepo) SetCourse(ctx context.Context, subject string) error {
	return r.Local.Set(ctx, KeyUserCourse, subject)
}

func (r *SessionRepo) SetSessionID(ctx context.Context, id string) error {
	return r.Local.Set(ctx, KeySessionID, id)
}

// Study returns the last launched subject and session id, empty when absent.
func (r *SessionRepo) Study(ctx context.Context) (course, sessionID string, err error) {
	if course, _, err = r.Local.Get(ctx, KeyUserCourse); err != nil {
		return "", "", err
	}
	if sessionID, _, err = r.Local.Get(ctx, KeySessionID); err != nil {
		return "", "", err
	}
	return course, sessionID, nil
}
