package bidding

import (
	"time"

	model "auction-ledger/internal/models"
)

// ComputeState derives the current auction state from the item metadata
// and its full bid ledger. Side-effect free and idempotent: the same
// inputs always yield the same state.
//
// Only leading bids (ACTIVE or WINNING) count toward the highest price;
// every ledger row counts toward bid history.
func ComputeState(item model.AuctionItem, bids []model.Bid, now time.Time) model.AuctionState {
	state := model.AuctionState{
		HighestBid: item.StartingPrice,
		BidCount:   len(bids),
	}

	if leader := LeadingBid(bids); leader != nil {
		state.HighestBid = leader.Amount
	}

	if item.HasReserve() {
		state.ReserveMet = state.HighestBid.GreaterThanOrEqual(*item.ReservePrice)
	}

	if remaining := item.AuctionEnd.Sub(now); remaining > 0 {
		state.TimeRemaining = remaining
	}

	// The state is terminal once the clock runs out, regardless of any
	// bid statuses still pending settlement.
	state.Ended = state.TimeRemaining == 0 || item.Status == model.ItemEnded

	return state
}

// LeadingBid returns the highest ACTIVE or WINNING bid, nil when there is
// none. Ties go to the earliest bid.
func LeadingBid(bids []model.Bid) *model.Bid {
	var leader *model.Bid
	for i := range bids {
		b := &bids[i]
		if !b.IsLeading() {
			continue
		}
		if leader == nil ||
			b.Amount.GreaterThan(leader.Amount) ||
			(b.Amount.Equal(leader.Amount) && b.CreatedAt.Before(leader.CreatedAt)) {
			leader = b
		}
	}
	return leader
}
