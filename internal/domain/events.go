package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies an auction lifecycle event.
type EventType string

const (
	EventAuctionStarted   EventType = "started"
	EventOfferReceived    EventType = "offer_received"
	EventAuctionCompleted EventType = "completed"
	EventAuctionCancelled EventType = "cancelled"
)

// AuctionEvent is the fire-and-forget notification emitted at defined points
// of the auction state machine. Payload carries event-specific fields and is
// serialized as-is for subscribers.
type AuctionEvent struct {
	Type      EventType      `json:"type"`
	AuctionID uuid.UUID      `json:"auction_id"`
	TenantID  string         `json:"tenant_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
