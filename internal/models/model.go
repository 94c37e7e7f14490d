package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of an auction item
type ItemStatus string

const (
	ItemActive ItemStatus = "active"
	ItemEnded  ItemStatus = "ended"
)

// BidStatus is the lifecycle state of a single bid in the ledger
type BidStatus string

const (
	BidActive    BidStatus = "ACTIVE"
	BidOutbid    BidStatus = "OUTBID"
	BidWithdrawn BidStatus = "WITHDRAWN"
	BidWinning   BidStatus = "WINNING"
	BidExpired   BidStatus = "EXPIRED"
)

// User represents a participant in the auction
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// AuctionItem represents a listing open for competitive bidding until a
// fixed end time. AuctionEnd is immutable once set. ReservePrice is the
// seller's minimum acceptable winning bid and is never disclosed to
// bidders.
type AuctionItem struct {
	ItemID        string           `json:"item_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	ReservePrice  *decimal.Decimal `json:"-"`
	AuctionEnd    time.Time        `json:"auction_end"`
	OwnerID       string           `json:"owner_id"`
	Status        ItemStatus       `json:"status"`
	Sold          bool             `json:"sold"`
	CreatedAt     time.Time        `json:"created_at"`
}

// HasReserve reports whether the seller set a reserve price.
func (i AuctionItem) HasReserve() bool {
	return i.ReservePrice != nil
}

// Bid represents a user's bid on an item. The ledger is append-only: a bid
// is never deleted, only its status changes.
// Invariant: at most one bid per item holds status ACTIVE at any time.
type Bid struct {
	BidID     string          `json:"bid_id"`
	ItemID    string          `json:"item_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BidStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsLeading reports whether the bid still counts toward the current price
// (it has not been superseded, withdrawn or expired).
func (b Bid) IsLeading() bool {
	return b.Status == BidActive || b.Status == BidWinning
}

// AuctionState is the derived view of an auction: recomputed from the
// ledger on every read, never persisted.
type AuctionState struct {
	HighestBid    decimal.Decimal `json:"highest_bid"`
	BidCount      int             `json:"bid_count"`
	ReserveMet    bool            `json:"reserve_met"`
	TimeRemaining time.Duration   `json:"time_remaining"`
	Ended         bool            `json:"ended"`
}
