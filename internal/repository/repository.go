package repository

import (
	"context"
	"fmt"
	"sync"

	"auction-ledger/internal/auctionerrors"
	model "auction-ledger/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionLedger defines the append-only bid ledger for the auction system.
// Bids are inserted, never deleted; status mutation is the only update.
type AuctionLedger interface {
	// AddItem stores a new auction item.
	AddItem(ctx context.Context, item model.AuctionItem) error
	// GetItem returns the item metadata.
	GetItem(ctx context.Context, itemID string) (model.AuctionItem, error)
	// GetBidsByItem returns every bid ever placed on the item, ordered by
	// creation time ascending. An existing item with no bids yields an
	// empty slice, not an error.
	GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error)
	// AppendBid atomically inserts the bid with status ACTIVE and demotes
	// every other ACTIVE bid on the same item to OUTBID. Either both
	// happen or neither.
	AppendBid(ctx context.Context, bid model.Bid) error
	// GetBid returns a single bid by its identifier.
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	// UpdateBidStatus mutates one bid's status.
	UpdateBidStatus(ctx context.Context, bidID string, status model.BidStatus) error
	// SettleItem atomically marks the item ended and, when winningBidID is
	// non-empty, flips that bid to WINNING.
	SettleItem(ctx context.Context, itemID, winningBidID string, sold bool) error
	// GetItemsByBidder returns all items the user has bid on.
	GetItemsByBidder(ctx context.Context, userID string) ([]model.AuctionItem, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionLedger
type MemoryRepo struct {
	mu        sync.RWMutex
	items     map[string]model.AuctionItem // key: itemID
	bids      map[string][]model.Bid       // key: itemID -> bids in insertion order
	bidIndex  map[string]string            // key: bidID -> itemID
	userItems map[string][]string          // key: userID -> itemIDs the user has bid on
}

// NewMemoryRepo creates a new in-memory ledger instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:     make(map[string]model.AuctionItem),
		bids:      make(map[string][]model.Bid),
		bidIndex:  make(map[string]string),
		userItems: make(map[string][]string),
	}
}

// AddItem stores a new auction item
func (r *MemoryRepo) AddItem(_ context.Context, item model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ItemID]; ok {
		return fmt.Errorf("add item %s: %w", item.ItemID, auctionerrors.ErrItemExists)
	}

	r.items[item.ItemID] = item
	return nil
}

// GetItem returns the item metadata
func (r *MemoryRepo) GetItem(_ context.Context, itemID string) (model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return item, nil
}

// GetBidsByItem returns all bids for an item in creation order
func (r *MemoryRepo) GetBidsByItem(_ context.Context, itemID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.items[itemID]; !ok {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return append([]model.Bid(nil), r.bids[itemID]...), nil
}

// AppendBid inserts the bid as ACTIVE and demotes the previous leader.
// Both writes happen under one lock hold, so readers never observe two
// ACTIVE bids on the same item.
func (r *MemoryRepo) AppendBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[bid.ItemID]; !ok {
		return fmt.Errorf("append bid for item %s: %w", bid.ItemID, auctionerrors.ErrItemNotFound)
	}

	bids := r.bids[bid.ItemID]
	for i := range bids {
		if bids[i].Status == model.BidActive {
			bids[i].Status = model.BidOutbid
		}
	}

	bid.Status = model.BidActive
	r.bids[bid.ItemID] = append(bids, bid)
	r.bidIndex[bid.BidID] = bid.ItemID

	for _, id := range r.userItems[bid.BidderID] {
		if id == bid.ItemID {
			return nil
		}
	}
	r.userItems[bid.BidderID] = append(r.userItems[bid.BidderID], bid.ItemID)

	return nil
}

// GetBid returns a single bid by its identifier
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, _, err := r.findBid(bidID)
	if err != nil {
		return model.Bid{}, err
	}
	return bid, nil
}

// UpdateBidStatus mutates one bid's status
func (r *MemoryRepo) UpdateBidStatus(_ context.Context, bidID string, status model.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, idx, err := r.findBid(bidID)
	if err != nil {
		return err
	}

	itemID := r.bidIndex[bidID]
	r.bids[itemID][idx].Status = status
	return nil
}

// SettleItem marks the item ended and promotes the winning bid, if any
func (r *MemoryRepo) SettleItem(_ context.Context, itemID, winningBidID string, sold bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return fmt.Errorf("settle item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}

	if winningBidID != "" {
		found := false
		bids := r.bids[itemID]
		for i := range bids {
			if bids[i].BidID == winningBidID {
				bids[i].Status = model.BidWinning
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("settle item %s: winning bid %s: %w", itemID, winningBidID, auctionerrors.ErrBidNotFound)
		}
	}

	item.Status = model.ItemEnded
	item.Sold = sold
	r.items[itemID] = item
	return nil
}

// GetItemsByBidder returns all items a user has bid on
func (r *MemoryRepo) GetItemsByBidder(_ context.Context, userID string) ([]model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemIDs, ok := r.userItems[userID]
	if !ok || len(itemIDs) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, auctionerrors.ErrUserNoBids)
	}

	items := make([]model.AuctionItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, exists := r.items[id]; exists {
			items = append(items, item)
		}
	}
	return items, nil
}

// findBid locates a bid and its position. Callers must hold the lock.
func (r *MemoryRepo) findBid(bidID string) (model.Bid, int, error) {
	itemID, ok := r.bidIndex[bidID]
	if !ok {
		return model.Bid{}, 0, fmt.Errorf("find bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	for i, b := range r.bids[itemID] {
		if b.BidID == bidID {
			return b, i, nil
		}
	}
	return model.Bid{}, 0, fmt.Errorf("find bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}
