package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrItemExists   = errors.New("item already exists")
	ErrBidNotFound  = errors.New("bid not found")
	ErrNoBids       = errors.New("no bids found for item")
	ErrUserNoBids   = errors.New("user has not placed any bids")
)

// Validation errors. These are terminal for the submission attempt and are
// reported to the caller verbatim.
var (
	ErrInvalidBid   = errors.New("invalid bid")
	ErrNotAnAuction = errors.New("item is not an active auction")
	ErrAuctionEnded = errors.New("auction has ended")
	ErrSelfBid      = errors.New("owner cannot bid on own item")
	ErrBidTooLow    = errors.New("bid amount too low")
	ErrNotBidOwner        = errors.New("bid belongs to another user")
	ErrBidNotWithdrawable = errors.New("only outbid bids can be withdrawn")
)

// Concurrency and lifecycle errors
var (
	// ErrAuctionBusy means the per-item submission lock could not be
	// acquired within the bounded wait. Safe to retry.
	ErrAuctionBusy = errors.New("auction is busy, retry")
	// ErrConflict is a storage-level serialization failure. The submission
	// service retries it once before surfacing it.
	ErrConflict = errors.New("concurrent update conflict")

	ErrAuctionNotEnded = errors.New("auction has not ended yet")
)
