package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	Role      string `json:"role"`
	SessionID string `json:"sessionId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

const (
	ActorShopper = "shopper"
	ActorAdmin   = "admin"
)

// Shopper returns the actor for storefront traffic tied to a cart session.
func Shopper(sessionID string) *ActorRef {
	return &ActorRef{Role: ActorShopper, SessionID: sessionID}
}

// Admin returns the actor for back-office mutations.
func Admin() *ActorRef {
	return &ActorRef{Role: ActorAdmin}
}
