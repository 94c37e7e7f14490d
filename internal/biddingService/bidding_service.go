package bidding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/countdown"
	"auction-ledger/internal/events"
	"auction-ledger/internal/keylock"
	model "auction-ledger/internal/models"
	"auction-ledger/internal/repository"
	"auction-ledger/utils"

	"github.com/shopspring/decimal"
)

// Config carries the tunables of the bidding service.
type Config struct {
	// MinIncrement is how much a new bid must exceed the current price by.
	// Zero falls back to 10 currency units.
	MinIncrement decimal.Decimal
	// LockWait bounds how long a submission waits for the per-item lock
	// before failing with ErrAuctionBusy.
	LockWait time.Duration
	// AutoClose starts a countdown watcher per created item that settles
	// the auction when its end timestamp passes.
	AutoClose bool
}

func (c Config) withDefaults() Config {
	if c.MinIncrement.IsZero() {
		c.MinIncrement = decimal.NewFromInt(10)
	}
	if c.LockWait <= 0 {
		c.LockWait = 2 * time.Second
	}
	return c
}

// BiddingService orchestrates the auction ledger: validate -> persist ->
// re-rank -> notify. All writes for one item are serialized through a
// per-item lock held for the whole submission.
type BiddingService struct {
	repo   repository.AuctionLedger
	pub    events.Publisher
	locks  *keylock.KeyedMutex
	cfg    Config
	now    func() time.Time
	closed chan struct{} // stops auto-close watchers
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionLedger, pub events.Publisher, cfg Config) *BiddingService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &BiddingService{
		repo:   repo,
		pub:    pub,
		locks:  keylock.New(),
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		closed: make(chan struct{}),
	}
}

// Stop cancels all auto-close watchers.
func (s *BiddingService) Stop() {
	close(s.closed)
}

// CreateItem validates and stores a new auction listing. The end timestamp
// is immutable once set.
func (s *BiddingService) CreateItem(ctx context.Context, item model.AuctionItem) (model.AuctionItem, error) {
	if item.Title == "" || item.OwnerID == "" {
		return model.AuctionItem{}, fmt.Errorf("service: %w - missing title or owner", auctionerrors.ErrInvalidBid)
	}
	if !item.StartingPrice.IsPositive() {
		return model.AuctionItem{}, fmt.Errorf("service: %w - non-positive starting price", auctionerrors.ErrInvalidBid)
	}
	if item.ReservePrice != nil && item.ReservePrice.LessThan(item.StartingPrice) {
		return model.AuctionItem{}, fmt.Errorf("service: %w - reserve below starting price", auctionerrors.ErrInvalidBid)
	}

	now := s.now().UTC()
	if !item.AuctionEnd.After(now) {
		return model.AuctionItem{}, fmt.Errorf("service: %w - auction end must be in the future", auctionerrors.ErrInvalidBid)
	}

	item.ItemID = utils.GenerateID()
	item.Status = model.ItemActive
	item.Sold = false
	item.CreatedAt = now

	if err := s.repo.AddItem(ctx, item); err != nil {
		return model.AuctionItem{}, fmt.Errorf("service: failed to create item: %w", err)
	}

	if s.cfg.AutoClose {
		s.watchItem(item)
	}

	return item, nil
}

// SubmitBid validates and records a bid, demoting the previous leader to
// OUTBID within the same atomic ledger write. A storage-level conflict is
// retried exactly once; validation rejections are terminal and leave no
// partial state.
func (s *BiddingService) SubmitBid(ctx context.Context, itemID, bidderID string, amount decimal.Decimal) (model.Bid, model.AuctionState, error) {
	if itemID == "" || bidderID == "" {
		return model.Bid{}, model.AuctionState{}, fmt.Errorf("service: %w - missing itemID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Bid{}, model.AuctionState{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	release, err := s.lockItem(ctx, itemID)
	if err != nil {
		return model.Bid{}, model.AuctionState{}, err
	}
	defer release()

	bid, state, err := s.submitLocked(ctx, itemID, bidderID, amount)
	if errors.Is(err, auctionerrors.ErrConflict) {
		// One bounded retry: the lock is still held, so the conflict came
		// from an out-of-band writer and a re-read resolves it.
		bid, state, err = s.submitLocked(ctx, itemID, bidderID, amount)
	}
	if err != nil {
		return model.Bid{}, model.AuctionState{}, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeBidPlaced,
		ItemID:     bid.ItemID,
		BidID:      bid.BidID,
		BidderID:   bid.BidderID,
		Amount:     &bid.Amount,
		OccurredAt: bid.CreatedAt,
	})

	return bid, state, nil
}

func (s *BiddingService) submitLocked(ctx context.Context, itemID, bidderID string, amount decimal.Decimal) (model.Bid, model.AuctionState, error) {
	item, bids, err := s.loadItem(ctx, itemID)
	if err != nil {
		return model.Bid{}, model.AuctionState{}, err
	}

	now := s.now().UTC()
	if err := ValidateBid(item, LeadingBid(bids), bidderID, amount, s.cfg.MinIncrement, now); err != nil {
		return model.Bid{}, model.AuctionState{}, fmt.Errorf("service: %w", err)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		ItemID:    itemID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    model.BidActive,
		CreatedAt: now,
	}

	if err := s.repo.AppendBid(ctx, bid); err != nil {
		return model.Bid{}, model.AuctionState{}, fmt.Errorf("service: failed to record bid for item %s by user %s: %w", itemID, bidderID, err)
	}

	after, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return model.Bid{}, model.AuctionState{}, fmt.Errorf("service: failed to reload bids for item %s: %w", itemID, err)
	}

	return bid, ComputeState(item, after, now), nil
}

// GetAuctionState returns the item and its derived state.
func (s *BiddingService) GetAuctionState(ctx context.Context, itemID string) (model.AuctionItem, model.AuctionState, error) {
	if itemID == "" {
		return model.AuctionItem{}, model.AuctionState{}, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}

	item, bids, err := s.loadItem(ctx, itemID)
	if err != nil {
		return model.AuctionItem{}, model.AuctionState{}, err
	}

	return item, ComputeState(item, bids, s.now().UTC()), nil
}

// GetBidHistory returns the full ledger for an item. order is "amount"
// (descending, as rendered) or "time" (ascending, for audit).
func (s *BiddingService) GetBidHistory(ctx context.Context, itemID, order string) ([]model.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}

	_, bids, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	switch order {
	case "", "amount":
		sortByAmountDesc(bids)
	case "time":
		// ledger order is already time-ascending
	default:
		return nil, fmt.Errorf("service: %w - unknown order %q", auctionerrors.ErrInvalidBid, order)
	}

	return bids, nil
}

// GetWinningBid returns the current leading bid for an item.
func (s *BiddingService) GetWinningBid(ctx context.Context, itemID string) (model.Bid, error) {
	if itemID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}

	_, bids, err := s.loadItem(ctx, itemID)
	if err != nil {
		return model.Bid{}, err
	}

	leader := LeadingBid(bids)
	if leader == nil {
		return model.Bid{}, fmt.Errorf("service: no leading bid for item %s: %w", itemID, auctionerrors.ErrNoBids)
	}
	return *leader, nil
}

// CloseAuction settles an auction whose end timestamp has passed: the
// leading bid becomes WINNING when the reserve is met, otherwise the item
// ends unsold. Idempotent for an already-ended item.
func (s *BiddingService) CloseAuction(ctx context.Context, itemID string) (model.AuctionState, error) {
	if itemID == "" {
		return model.AuctionState{}, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}

	release, err := s.lockItem(ctx, itemID)
	if err != nil {
		return model.AuctionState{}, err
	}
	defer release()

	item, bids, err := s.loadItem(ctx, itemID)
	if err != nil {
		return model.AuctionState{}, err
	}

	now := s.now().UTC()
	if item.Status == model.ItemEnded {
		return ComputeState(item, bids, now), nil
	}
	if now.Before(item.AuctionEnd) {
		return model.AuctionState{}, fmt.Errorf("service: item %s: %w", itemID, auctionerrors.ErrAuctionNotEnded)
	}

	state := ComputeState(item, bids, now)
	leader := LeadingBid(bids)

	winningBidID := ""
	sold := false
	if leader != nil && (!item.HasReserve() || state.ReserveMet) {
		winningBidID = leader.BidID
		sold = true
	}

	if err := s.repo.SettleItem(ctx, itemID, winningBidID, sold); err != nil {
		return model.AuctionState{}, fmt.Errorf("service: failed to settle item %s: %w", itemID, err)
	}

	item.Status = model.ItemEnded
	item.Sold = sold
	state = ComputeState(item, bids, now)

	ev := events.Event{
		Type:       events.TypeAuctionEnded,
		ItemID:     itemID,
		Sold:       sold,
		OccurredAt: now,
	}
	if leader != nil && sold {
		ev.BidID = leader.BidID
		ev.BidderID = leader.BidderID
		ev.Amount = &leader.Amount
	}
	s.publish(ctx, ev)

	return state, nil
}

// WithdrawBid lets a bidder retract one of their own superseded bids. The
// leading bid cannot be withdrawn; the ledger row stays for audit with
// status WITHDRAWN.
func (s *BiddingService) WithdrawBid(ctx context.Context, bidID, bidderID string) (model.Bid, error) {
	if bidID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing bidID or bidderID", auctionerrors.ErrInvalidBid)
	}

	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get bid %s: %w", bidID, err)
	}

	release, err := s.lockItem(ctx, bid.ItemID)
	if err != nil {
		return model.Bid{}, err
	}
	defer release()

	// Re-read under the lock: the status may have changed while waiting.
	bid, err = s.repo.GetBid(ctx, bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get bid %s: %w", bidID, err)
	}

	if bid.BidderID != bidderID {
		return model.Bid{}, fmt.Errorf("service: bid %s: %w", bidID, auctionerrors.ErrNotBidOwner)
	}
	if bid.Status != model.BidOutbid {
		return model.Bid{}, fmt.Errorf("service: bid %s has status %s: %w", bidID, bid.Status, auctionerrors.ErrBidNotWithdrawable)
	}

	if err := s.repo.UpdateBidStatus(ctx, bidID, model.BidWithdrawn); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to withdraw bid %s: %w", bidID, err)
	}
	bid.Status = model.BidWithdrawn

	s.publish(ctx, events.Event{
		Type:       events.TypeBidWithdrawn,
		ItemID:     bid.ItemID,
		BidID:      bid.BidID,
		BidderID:   bid.BidderID,
		Amount:     &bid.Amount,
		OccurredAt: s.now().UTC(),
	})

	return bid, nil
}

// GetItemsByBidder returns all items a user has placed bids on.
func (s *BiddingService) GetItemsByBidder(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByBidder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for user %s: %w", userID, err)
	}

	return items, nil
}

// lockItem serializes writers per item. A timeout surfaces as
// ErrAuctionBusy so callers can retry instead of blocking.
func (s *BiddingService) lockItem(ctx context.Context, itemID string) (func(), error) {
	release, err := s.locks.Acquire(ctx, itemID, s.cfg.LockWait)
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			return nil, fmt.Errorf("service: item %s: %w", itemID, auctionerrors.ErrAuctionBusy)
		}
		return nil, fmt.Errorf("service: failed to lock item %s: %w", itemID, err)
	}
	return release, nil
}

// loadItem is the consistent read at the start of every operation.
func (s *BiddingService) loadItem(ctx context.Context, itemID string) (model.AuctionItem, []model.Bid, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.AuctionItem{}, nil, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return model.AuctionItem{}, nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	return item, bids, nil
}

// watchItem settles the auction once its countdown reaches zero.
func (s *BiddingService) watchItem(item model.AuctionItem) {
	cd := countdown.New(item.AuctionEnd, time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.CloseAuction(ctx, item.ItemID); err != nil {
			utils.Error("auto-close failed", map[string]any{
				"item_id": item.ItemID,
				"error":   err.Error(),
			})
		}
	})

	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-s.closed
			cancel()
		}()
		cd.Run(ctx)
	}()
}

// publish is best-effort: a bus failure is logged and never fails the
// operation that produced the event.
func (s *BiddingService) publish(ctx context.Context, ev events.Event) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		utils.Warn("failed to publish event", map[string]any{
			"type":    ev.Type,
			"item_id": ev.ItemID,
			"error":   err.Error(),
		})
	}
}

func sortByAmountDesc(bids []model.Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Amount.GreaterThan(bids[j].Amount)
	})
}
