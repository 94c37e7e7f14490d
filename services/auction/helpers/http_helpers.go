package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for item"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrNotAnAuction):
		return http.StatusBadRequest, "item is not an active auction"
	case errors.Is(err, auctionerrors.ErrSelfBid):
		return http.StatusForbidden, "owner cannot bid on own item"
	case errors.Is(err, auctionerrors.ErrNotBidOwner):
		return http.StatusForbidden, "bid belongs to another user"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusGone, "auction has ended"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrBidNotWithdrawable):
		return http.StatusConflict, "bid cannot be withdrawn"
	case errors.Is(err, auctionerrors.ErrAuctionNotEnded):
		return http.StatusConflict, "auction has not ended yet"
	case errors.Is(err, auctionerrors.ErrItemExists):
		return http.StatusConflict, "item already exists"
	case errors.Is(err, auctionerrors.ErrAuctionBusy), errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusServiceUnavailable, "auction is busy, retry"
	case errors.Is(err, auctionerrors.ErrUserNoBids):
		return http.StatusOK, "no items found for user"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
