package helpers

import (
	"time"

	"auction-ledger/internal/countdown"
	model "auction-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs. Money travels as decimal strings; the reserve
// price is accepted on creation but never serialized back.

type CreateItemRequest struct {
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	StartingPrice decimal.Decimal  `json:"starting_price" binding:"required"`
	ReservePrice  *decimal.Decimal `json:"reserve_price"`
	AuctionEnd    time.Time        `json:"auction_end" binding:"required"`
	OwnerID       string           `json:"owner_id" binding:"required"`
}

type ItemResponse struct {
	ItemID        string `json:"item_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartingPrice string `json:"starting_price"`
	AuctionEnd    string `json:"auction_end"`
	OwnerID       string `json:"owner_id"`
	Status        string `json:"status"`
	Sold          bool   `json:"sold"`
	CreatedAt     string `json:"created_at"`
}

type PlaceBidRequest struct {
	ItemID   string          `json:"item_id" binding:"required"`
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

type WithdrawBidRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	ItemID    string `json:"item_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type AuctionStateResponse struct {
	HighestBid           string              `json:"highest_bid"`
	BidCount             int                 `json:"bid_count"`
	ReserveMet           bool                `json:"reserve_met"`
	TimeRemainingSeconds int64               `json:"time_remaining_seconds"`
	Countdown            countdown.Remaining `json:"countdown"`
	Ended                bool                `json:"ended"`
}

type SubmitBidResponse struct {
	Success bool                 `json:"success"`
	Bid     BidResponse          `json:"bid"`
	State   AuctionStateResponse `json:"state"`
}

func NewItemResponse(item model.AuctionItem) ItemResponse {
	return ItemResponse{
		ItemID:        item.ItemID,
		Title:         item.Title,
		Description:   item.Description,
		StartingPrice: item.StartingPrice.StringFixed(2),
		AuctionEnd:    item.AuctionEnd.UTC().Format(time.RFC3339),
		OwnerID:       item.OwnerID,
		Status:        string(item.Status),
		Sold:          item.Sold,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		ItemID:    bid.ItemID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount.StringFixed(2),
		Status:    string(bid.Status),
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewAuctionStateResponse(state model.AuctionState, now time.Time) AuctionStateResponse {
	return AuctionStateResponse{
		HighestBid:           state.HighestBid.StringFixed(2),
		BidCount:             state.BidCount,
		ReserveMet:           state.ReserveMet,
		TimeRemainingSeconds: int64(state.TimeRemaining.Seconds()),
		Countdown:            countdown.Until(now.Add(state.TimeRemaining), now),
		Ended:                state.Ended,
	}
}
