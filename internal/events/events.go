package events

import (
	"context"
	"time"
)

const (
	TypeContactSubmitted     = "contact.submitted"
	TypeApplicationSubmitted = "application.submitted"
)

// Producer publishes submission events (NATS/Kafka).
type Producer interface {
	SendMessage(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Typed is implemented by events that know their routing name.
type Typed interface {
	EventType() string
}

// ContactSubmitted is emitted after a contact message is stored. The message
// body itself is not included.
type ContactSubmitted struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (ContactSubmitted) EventType() string { return TypeContactSubmitted }

// ApplicationSubmitted is emitted after a job application is stored.
type ApplicationSubmitted struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	JobTitle  string    `json:"jobTitle"`
	JobSlug   string    `json:"jobSlug"`
	HasResume bool      `json:"hasResume"`
	AppliedAt time.Time `json:"appliedAt"`
}

func (ApplicationSubmitted) EventType() string { return TypeApplicationSubmitted }

// TypeOf returns the routing name of value, or "" when it has none.
func TypeOf(value interface{}) string {
	if t, ok := value.(Typed); ok {
		return t.EventType()
	}
	return ""
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) SendMessage(context.Context, string, interface{}) error { return nil }

func (Nop) Close() error { return nil }
