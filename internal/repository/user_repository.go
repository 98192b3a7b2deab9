package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/model"
)

// UserRepo is the credential store of one browser. The whole user list lives
// under a single key and is rewritten on every change.
type UserRepo struct{ Local *kv.Local }

func NewUserRepo(local *kv.Local) *UserRepo { return &UserRepo{Local: local} }

// List returns the registered users in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	raw, ok, err := r.Local.Get(ctx, KeyRegisteredUsers)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok {
		return []model.User{}, nil
	}
	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, KeyRegisteredUsers, err)
	}
	for i, u := range users {
		if u.Email == "" {
			return nil, fmt.Errorf("%w: %s: entry %d has no email", ErrCorruptRecord, KeyRegisteredUsers, i)
		}
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Upsert replaces the first user with the same email, or appends the user.
// Fields are never merged: the new record wins entirely.
func (r *UserRepo) Upsert(ctx context.Context, u model.User) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].Email == u.Email {
			users[i] = u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, u)
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := r.Local.Set(ctx, KeyRegisteredUsers, string(raw)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// FindByEmail returns the first user whose email equals email exactly.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

// Authenticate checks a plaintext password against the stored record.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, ok, err := r.FindByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNoSuchAccount
	}
	if u.Password != password {
		return model.User{}, ErrWrongPassword
	}
	return u, nil
}
