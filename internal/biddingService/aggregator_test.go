package bidding

import (
	"testing"
	"time"

	model "auction-ledger/internal/models"

	"github.com/stretchr/testify/require"
)

func ledgerBid(id, bidder, amount string, status model.BidStatus, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     id,
		ItemID:    "item1",
		BidderID:  bidder,
		Amount:    dec(amount),
		Status:    status,
		CreatedAt: createdAt,
	}
}

// Tests ComputeState
func TestComputeState(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * time.Second)
	reserve := "500000"

	// Table-driven test cases
	tests := []struct {
		name           string
		item           model.AuctionItem
		bids           []model.Bid
		wantHighest    string
		wantCount      int
		wantReserveMet bool
		wantRemaining  time.Duration
		wantEnded      bool
	}{
		{
			name:          "no_bids_falls_back_to_starting_price",
			item:          testItem("350000", nil, future),
			wantHighest:   "350000",
			wantCount:     0,
			wantRemaining: 10 * time.Second,
		},
		{
			name: "single_active_bid",
			item: testItem("350000", nil, future),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "350010", model.BidActive, now.Add(-time.Minute)),
			},
			wantHighest:   "350010",
			wantCount:     1,
			wantRemaining: 10 * time.Second,
		},
		{
			name: "outbid_rows_count_toward_history_not_price",
			item: testItem("350000", nil, future),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "350010", model.BidOutbid, now.Add(-2*time.Minute)),
				ledgerBid("bid2", "user2", "350015", model.BidActive, now.Add(-time.Minute)),
			},
			wantHighest:   "350015",
			wantCount:     2,
			wantRemaining: 10 * time.Second,
		},
		{
			name: "withdrawn_bid_excluded_from_price",
			item: testItem("100", nil, future),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "900", model.BidWithdrawn, now.Add(-2*time.Minute)),
				ledgerBid("bid2", "user2", "150", model.BidActive, now.Add(-time.Minute)),
			},
			wantHighest:   "150",
			wantCount:     2,
			wantRemaining: 10 * time.Second,
		},
		{
			name: "winning_bid_counts_toward_price",
			item: testItem("100", nil, now.Add(-time.Minute)),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "150", model.BidWinning, now.Add(-2*time.Minute)),
			},
			wantHighest: "150",
			wantCount:   1,
			wantEnded:   true,
		},
		{
			name: "reserve_not_met",
			item: testItem("350000", &reserve, future),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "450000", model.BidActive, now.Add(-time.Minute)),
			},
			wantHighest:    "450000",
			wantCount:      1,
			wantReserveMet: false,
			wantRemaining:  10 * time.Second,
		},
		{
			name: "reserve_met_exactly",
			item: testItem("350000", &reserve, future),
			bids: []model.Bid{
				ledgerBid("bid1", "user1", "500000", model.BidActive, now.Add(-time.Minute)),
			},
			wantHighest:    "500000",
			wantCount:      1,
			wantReserveMet: true,
			wantRemaining:  10 * time.Second,
		},
		{
			name:          "past_end_clamps_to_zero_and_ends",
			item:          testItem("100", nil, now.Add(-time.Hour)),
			wantHighest:   "100",
			wantCount:     0,
			wantRemaining: 0,
			wantEnded:     true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			state := ComputeState(tc.item, tc.bids, now)

			require.True(t, state.HighestBid.Equal(dec(tc.wantHighest)), "highest: got %s want %s", state.HighestBid, tc.wantHighest)
			require.Equal(t, tc.wantCount, state.BidCount)
			require.Equal(t, tc.wantReserveMet, state.ReserveMet)
			require.Equal(t, tc.wantRemaining, state.TimeRemaining)
			require.Equal(t, tc.wantEnded, state.Ended)
		})
	}
}

// ComputeState must be idempotent: same inputs, same output.
func TestComputeState_Idempotent(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	item := testItem("100", nil, now.Add(time.Hour))
	bids := []model.Bid{
		ledgerBid("bid1", "user1", "110", model.BidOutbid, now.Add(-2*time.Minute)),
		ledgerBid("bid2", "user2", "120", model.BidActive, now.Add(-time.Minute)),
	}

	first := ComputeState(item, bids, now)
	second := ComputeState(item, bids, now)

	require.Equal(t, first, second)
}

// Tests LeadingBid
func TestLeadingBid(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("no_leading_bid", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, LeadingBid(nil))
		require.Nil(t, LeadingBid([]model.Bid{
			ledgerBid("bid1", "user1", "100", model.BidOutbid, now),
			ledgerBid("bid2", "user2", "100", model.BidWithdrawn, now),
		}))
	})

	t.Run("highest_active_wins", func(t *testing.T) {
		t.Parallel()
		bids := []model.Bid{
			ledgerBid("bid1", "user1", "100", model.BidOutbid, now),
			ledgerBid("bid2", "user2", "120", model.BidActive, now.Add(time.Second)),
		}
		leader := LeadingBid(bids)
		require.NotNil(t, leader)
		require.Equal(t, "bid2", leader.BidID)
	})

	t.Run("tie_goes_to_earliest", func(t *testing.T) {
		t.Parallel()
		bids := []model.Bid{
			ledgerBid("bid2", "user2", "100", model.BidActive, now.Add(time.Second)),
			ledgerBid("bid1", "user1", "100", model.BidWinning, now),
		}
		leader := LeadingBid(bids)
		require.NotNil(t, leader)
		require.Equal(t, "bid1", leader.BidID)
	})
}
