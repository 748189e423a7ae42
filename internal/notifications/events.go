// Package notifications publishes mutation events to the external
// notification fan-out service over Redis pub/sub.
package notifications

import (
	"context"

	"pulse/internal/models"
)

// Event names carried on the wire.
const (
	EventPostCreated     = "post.created"
	EventPostDeleted     = "post.deleted"
	EventCommentAdded    = "comment.added"
	EventCommentDeleted  = "comment.deleted"
	EventReactionApplied = "reaction.applied"
	EventReactionCleared = "reaction.cleared"
)

// Event is one mutation event. Emitted at-least-once after the owning
// transaction commits, never before.
type Event struct {
	EventID     string             `json:"event_id"`
	Event       string             `json:"event"`
	SubjectType models.SubjectType `json:"subject_type"`
	SubjectID   uint               `json:"subject_id"`
	ActorID     uint               `json:"actor_id"`
	ScopeID     *uint              `json:"scope_id,omitempty"`
}

// Sink receives committed mutation events. Implemented by Notifier; services
// depend on the interface so tests can capture emissions.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NopSink discards events. Used when Redis is unavailable.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(context.Context, Event) {}
