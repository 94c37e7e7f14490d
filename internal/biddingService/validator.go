package bidding

import (
	"fmt"
	"time"

	"auction-ledger/internal/auctionerrors"
	model "auction-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// ValidateBid checks a proposed bid against the auction state supplied by
// the caller. It is pure: no clock reads, no storage access, no side
// effects. highest is the current leading bid, nil when none exists.
//
// Checks run in a fixed order so the caller always gets the first failing
// rule: item active, auction not ended, bidder is not the owner, amount
// meets the minimum.
func ValidateBid(item model.AuctionItem, highest *model.Bid, bidderID string, amount decimal.Decimal, minIncrement decimal.Decimal, now time.Time) error {
	if item.Status != model.ItemActive {
		return fmt.Errorf("item %s: %w", item.ItemID, auctionerrors.ErrNotAnAuction)
	}

	if !now.Before(item.AuctionEnd) {
		return fmt.Errorf("item %s: %w", item.ItemID, auctionerrors.ErrAuctionEnded)
	}

	if bidderID == item.OwnerID {
		return fmt.Errorf("item %s: %w", item.ItemID, auctionerrors.ErrSelfBid)
	}

	minimum := MinimumBid(item, highest, minIncrement)
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: minimum acceptable bid is %s", auctionerrors.ErrBidTooLow, minimum.StringFixed(2))
	}

	return nil
}

// MinimumBid returns the smallest acceptable bid amount: the current
// highest bid plus the increment, or the starting price plus the increment
// when no bid has been placed yet.
func MinimumBid(item model.AuctionItem, highest *model.Bid, minIncrement decimal.Decimal) decimal.Decimal {
	base := item.StartingPrice
	if highest != nil {
		base = highest.Amount
	}
	return base.Add(minIncrement)
}
