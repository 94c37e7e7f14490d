// Package events is the outbound notification boundary of the auction
// service. Downstream consumers (UI, settlement) subscribe to the bus;
// publishing is best-effort and never fails a bid.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=events.go -destination=mock_events.go -package=events

// Event types emitted by the bidding service.
const (
	TypeBidPlaced    = "bid.placed"
	TypeBidWithdrawn = "bid.withdrawn"
	TypeAuctionEnded = "auction.ended"
)

// Event is the wire payload published on the bus.
type Event struct {
	Type       string           `json:"type"`
	ItemID     string           `json:"item_id"`
	BidID      string           `json:"bid_id,omitempty"`
	BidderID   string           `json:"bidder_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Sold       bool             `json:"sold"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher publishes auction events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
