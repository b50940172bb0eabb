// Package messages defines the NATS messaging contracts of the service:
// typed event structs, their subject constants, and a validating publisher.
package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/jacobpanov/compiler-explorer/util"
)

// Message represents any message in the system.
type Message interface {
	Subject() string
	Validate() error
}

// Event represents something that has happened.
type Event interface {
	Message
	IsEvent()
	Timestamp() time.Time
}

// Subject patterns. The * token is the short-link id.
const (
	ShortLinkCreatedSubjectPattern  = "event.shortlink.*.created"
	ShortLinkResolvedSubjectPattern = "event.shortlink.*.resolved"
)

// eventSubjectPatterns lists every subject shape the publisher accepts.
var eventSubjectPatterns = []string{
	ShortLinkCreatedSubjectPattern,
	ShortLinkResolvedSubjectPattern,
}

// ShortLinkCreatedEvent indicates a session state fragment was stored
// under a new short-link id.
type ShortLinkCreatedEvent struct {
	LinkID    string    `json:"link_id"`
	ByteSize  int       `json:"byte_size"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewShortLinkCreatedEvent creates a short-link created event.
func NewShortLinkCreatedEvent(linkID string, byteSize int) *ShortLinkCreatedEvent {
	return &ShortLinkCreatedEvent{
		LinkID:    linkID,
		ByteSize:  byteSize,
		CreatedAt: time.Now(),
	}
}

// WithClient tags the event with the requesting client's session id.
func (e *ShortLinkCreatedEvent) WithClient(id string) *ShortLinkCreatedEvent {
	e.ClientID = id
	return e
}

func (e ShortLinkCreatedEvent) Subject() string {
	return fmt.Sprintf("event.shortlink.%s.created", e.LinkID)
}
func (e ShortLinkCreatedEvent) IsEvent()             {}
func (e ShortLinkCreatedEvent) Timestamp() time.Time { return e.CreatedAt }
func (e ShortLinkCreatedEvent) Validate() error {
	if e.LinkID == "" {
		return fmt.Errorf("link_id is required")
	}
	return nil
}

// ShortLinkResolvedEvent indicates a stored short link was looked up.
type ShortLinkResolvedEvent struct {
	LinkID     string    `json:"link_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// NewShortLinkResolvedEvent creates a short-link resolved event.
func NewShortLinkResolvedEvent(linkID string) *ShortLinkResolvedEvent {
	return &ShortLinkResolvedEvent{LinkID: linkID, ResolvedAt: time.Now()}
}

func (e ShortLinkResolvedEvent) Subject() string {
	return fmt.Sprintf("event.shortlink.%s.resolved", e.LinkID)
}
func (e ShortLinkResolvedEvent) IsEvent()             {}
func (e ShortLinkResolvedEvent) Timestamp() time.Time { return e.ResolvedAt }
func (e ShortLinkResolvedEvent) Validate() error {
	if e.LinkID == "" {
		return fmt.Errorf("link_id is required")
	}
	return nil
}

// Publisher provides type-safe message publishing.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new type-safe publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishEvent publishes an event with validation. The event's subject
// must match one of the declared patterns; anything else is a bug in the
// event type, not a payload problem.
func (p *Publisher) PublishEvent(ctx context.Context, evt Event) error {
	if err := evt.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}
	subject := evt.Subject()
	if !subjectAllowed(subject) {
		return fmt.Errorf("subject %q matches no declared event pattern", subject)
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func subjectAllowed(subject string) bool {
	for _, pattern := range eventSubjectPatterns {
		if util.SubjectMatches(pattern, subject) {
			return true
		}
	}
	return false
}
