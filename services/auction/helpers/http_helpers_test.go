package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"auction-ledger/internal/auctionerrors"
	model "auction-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Tests MapErrorToHTTP
func TestMapErrorToHTTP(t *testing.T) {
	t.Parallel()

	// Table-driven test cases
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{auctionerrors.ErrItemNotFound, http.StatusNotFound, "item not found"},
		{auctionerrors.ErrBidNotFound, http.StatusNotFound, "bid not found"},
		{auctionerrors.ErrNoBids, http.StatusNotFound, "no bids found for item"},
		{auctionerrors.ErrInvalidBid, http.StatusBadRequest, "invalid bid details"},
		{auctionerrors.ErrNotAnAuction, http.StatusBadRequest, "item is not an active auction"},
		{auctionerrors.ErrSelfBid, http.StatusForbidden, "owner cannot bid on own item"},
		{auctionerrors.ErrNotBidOwner, http.StatusForbidden, "bid belongs to another user"},
		{auctionerrors.ErrAuctionEnded, http.StatusGone, "auction has ended"},
		{auctionerrors.ErrBidTooLow, http.StatusConflict, "bid amount too low"},
		{auctionerrors.ErrBidNotWithdrawable, http.StatusConflict, "bid cannot be withdrawn"},
		{auctionerrors.ErrAuctionNotEnded, http.StatusConflict, "auction has not ended yet"},
		{auctionerrors.ErrItemExists, http.StatusConflict, "item already exists"},
		{auctionerrors.ErrAuctionBusy, http.StatusServiceUnavailable, "auction is busy, retry"},
		{auctionerrors.ErrConflict, http.StatusServiceUnavailable, "auction is busy, retry"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.wantMsg, func(t *testing.T) {
			t.Parallel()

			// Service layers always wrap; mapping must see through it.
			status, msg := MapErrorToHTTP(fmt.Errorf("service: %w", tc.err))
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantMsg, msg)
		})
	}
}

// The reserve price must never appear in a serialized item.
func TestNewItemResponse_OmitsReserve(t *testing.T) {
	t.Parallel()

	reserve := decimal.NewFromInt(500000)
	item := model.AuctionItem{
		ItemID:        "item1",
		Title:         "Victorian townhouse",
		StartingPrice: decimal.NewFromInt(350000),
		ReservePrice:  &reserve,
		AuctionEnd:    time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC),
		OwnerID:       "owner1",
		Status:        model.ItemActive,
	}

	resp := NewItemResponse(item)
	require.Equal(t, "350000.00", resp.StartingPrice)
	require.Equal(t, "2025-06-04T12:00:00Z", resp.AuctionEnd)
}

// Tests NewAuctionStateResponse countdown derivation
func TestNewAuctionStateResponse(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("live_auction", func(t *testing.T) {
		t.Parallel()

		state := model.AuctionState{
			HighestBid:    decimal.NewFromInt(350010),
			BidCount:      3,
			TimeRemaining: 25*time.Hour + 90*time.Second,
		}

		resp := NewAuctionStateResponse(state, now)
		require.Equal(t, "350010.00", resp.HighestBid)
		require.Equal(t, 3, resp.BidCount)
		require.Equal(t, int64(25*3600+90), resp.TimeRemainingSeconds)
		require.Equal(t, 1, resp.Countdown.Days)
		require.Equal(t, 1, resp.Countdown.Hours)
		require.Equal(t, 1, resp.Countdown.Minutes)
		require.Equal(t, 30, resp.Countdown.Seconds)
		require.False(t, resp.Countdown.IsEnded)
	})

	t.Run("ended_auction", func(t *testing.T) {
		t.Parallel()

		state := model.AuctionState{
			HighestBid: decimal.NewFromInt(100),
			Ended:      true,
		}

		resp := NewAuctionStateResponse(state, now)
		require.Equal(t, int64(0), resp.TimeRemainingSeconds)
		require.True(t, resp.Countdown.IsEnded)
		require.True(t, resp.Ended)
	})
}
