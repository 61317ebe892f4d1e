// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeAuctionStarted   MsgType = "auction_started"
	MsgTypeOfferReceived    MsgType = "offer_received"
	MsgTypeAuctionCompleted MsgType = "auction_completed"
	MsgTypeAuctionCancelled MsgType = "auction_cancelled"
	MsgTypeError            MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// AuctionEventMessage — wire envelope for all auction lifecycle events.
// ──────────────────────────────────────────────────────────────────────────────

// AuctionEventMessage is the broadcast envelope for auction lifecycle events.
// Payload carries event-specific fields (partner id, winner summary, etc.) so
// borrower dashboards can update live without polling the status endpoint.
type AuctionEventMessage struct {
	Type      MsgType        `json:"type"`
	AuctionID uuid.UUID      `json:"auction_id"`
	TenantID  string         `json:"tenant_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
