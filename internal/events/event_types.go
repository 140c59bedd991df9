package events

import (
	"time"

	"github.com/spec-kit/voting-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered EventType = "identity_registered"
	EventPasswordChanged    EventType = "password_changed"
	EventVoteCast           EventType = "vote_cast"
	EventCandidateCreated   EventType = "candidate_created"
	EventCandidateUpdated   EventType = "candidate_updated"
	EventCandidateDeleted   EventType = "candidate_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ActorID     string      `json:"actor_id"`
	CandidateID string      `json:"candidate_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}

// IdentityRegisteredPayload payload.
type IdentityRegisteredPayload struct {
	Role domain.Role `json:"role"`
}

// CandidatePayload payload for candidate lifecycle events.
type CandidatePayload struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}
