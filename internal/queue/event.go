// Package queue defines the audit events exchanged over the message broker
// and the consumer that appends them to the study log.
package queue

import "time"

// QueueName is the durable queue every audit event is routed to.
const QueueName = "lms.events"

// Kind names what happened in a browser scope.
type Kind string

const (
	KindUserRegistered Kind = "user.registered"
	KindUserLoggedIn   Kind = "user.logged_in"
	KindStudyLaunched  Kind = "study.launched"
)

// Event is published after a successful registration, login or study
// launch.  It carries enough context to be logged without reading the
// browser's store.
type Event struct {
	Kind       Kind   `json:"kind"`
	Scope      string `json:"scope"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email,omitempty"`
	Subject    string `json:"subject,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(kind Kind, scope string) Event {
	return Event{Kind: kind, Scope: scope, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
