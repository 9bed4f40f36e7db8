package model

import "time"

type EventType string

const (
	EventRelationCreated EventType = "relation.created"
	EventRelationRenewed EventType = "relation.renewed"
	EventStarAwarded     EventType = "star.awarded"
	EventStarReceived    EventType = "star.received"
	EventStreakAdvanced  EventType = "streak.advanced"
	EventRevealGranted   EventType = "reveal.granted"
	EventRevealRequested EventType = "reveal.requested"
	EventRevealDeclined  EventType = "reveal.declined"
)

// Event is one outbound notification addressed to a single user.
// Delivered best-effort; correctness never depends on delivery.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    UserID      `json:"userId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
