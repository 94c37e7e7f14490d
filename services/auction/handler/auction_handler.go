package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-ledger/internal/auctionerrors"
	model "auction-ledger/internal/models"
	"auction-ledger/services/auction/helpers"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_service.go -package=handler

type AuctionServiceInterface interface {
	CreateItem(ctx context.Context, item model.AuctionItem) (model.AuctionItem, error)
	SubmitBid(ctx context.Context, itemID, bidderID string, amount decimal.Decimal) (model.Bid, model.AuctionState, error)
	GetAuctionState(ctx context.Context, itemID string) (model.AuctionItem, model.AuctionState, error)
	GetBidHistory(ctx context.Context, itemID, order string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, itemID string) (model.Bid, error)
	CloseAuction(ctx context.Context, itemID string) (model.AuctionState, error)
	WithdrawBid(ctx context.Context, bidID, bidderID string) (model.Bid, error)
	GetItemsByBidder(ctx context.Context, userID string) ([]model.AuctionItem, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateItemHandler handles POST /items
func (h *AuctionHandler) CreateItemHandler(c *gin.Context) {
	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateItemHandler", err)
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), model.AuctionItem{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		AuctionEnd:    req.AuctionEnd,
		OwnerID:       req.OwnerID,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateItemHandler: failed to create item", map[string]any{
			"handler":  "CreateItemHandler",
			"owner_id": req.OwnerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewItemResponse(item), "item created successfully")
	helpers.LogSuccess("CreateItemHandler", "item created successfully", map[string]any{
		"item_id":     item.ItemID,
		"owner_id":    item.OwnerID,
		"auction_end": item.AuctionEnd,
	})
}

// SubmitBidHandler handles POST /bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	bid, state, err := h.service.SubmitBid(c.Request.Context(), req.ItemID, req.BidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("SubmitBidHandler: failed to record bid", map[string]any{
			"handler":   "SubmitBidHandler",
			"item_id":   req.ItemID,
			"bidder_id": req.BidderID,
			"error":     err.Error(),
		})
		return
	}

	resp := helpers.SubmitBidResponse{
		Success: true,
		Bid:     helpers.NewBidResponse(bid),
		State:   helpers.NewAuctionStateResponse(state, bid.CreatedAt),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":    bid.BidID,
		"item_id":   bid.ItemID,
		"bidder_id": req.BidderID,
		"amount":    bid.Amount.StringFixed(2),
	})
}

// GetAuctionStateHandler handles GET /items/:item_id/state
func (h *AuctionHandler) GetAuctionStateHandler(c *gin.Context) {
	itemID := c.Param("item_id")

	item, state, err := h.service.GetAuctionState(c.Request.Context(), itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionStateHandler: error retrieving state", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	resp := gin.H{
		"item":  helpers.NewItemResponse(item),
		"state": helpers.NewAuctionStateResponse(state, time.Now().UTC()),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auction state retrieved successfully")
	helpers.LogSuccess("GetAuctionStateHandler", "auction state retrieved successfully", map[string]any{
		"item_id":   itemID,
		"bid_count": state.BidCount,
	})
}

// GetBidHistoryHandler handles GET /items/:item_id/bids
func (h *AuctionHandler) GetBidHistoryHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	order := c.DefaultQuery("order", "amount")

	bids, err := h.service.GetBidHistory(c.Request.Context(), itemID, order)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidHistoryHandler: error retrieving bids", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidHistoryHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"order":   order,
		"count":   len(resp),
	})
}

// GetWinningBidHandler handles GET /items/:item_id/winning
func (h *AuctionHandler) GetWinningBidHandler(c *gin.Context) {
	itemID := c.Param("item_id")

	bid, err := h.service.GetWinningBid(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"item_id": itemID})
			return
		}
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinningBidHandler: winning bid error", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":    bid.BidID,
		"item_id":   bid.ItemID,
		"bidder_id": bid.BidderID,
		"amount":    bid.Amount.StringFixed(2),
	})
}

// CloseAuctionHandler handles POST /items/:item_id/close
func (h *AuctionHandler) CloseAuctionHandler(c *gin.Context) {
	itemID := c.Param("item_id")

	state, err := h.service.CloseAuction(c.Request.Context(), itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CloseAuctionHandler: failed to close auction", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	resp := gin.H{
		"highest_bid": state.HighestBid.StringFixed(2),
		"bid_count":   state.BidCount,
		"reserve_met": state.ReserveMet,
		"ended":       state.Ended,
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"item_id":     itemID,
		"reserve_met": state.ReserveMet,
	})
}

// WithdrawBidHandler handles POST /bids/:bid_id/withdraw
func (h *AuctionHandler) WithdrawBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")

	var req helpers.WithdrawBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawBidHandler", err)
		return
	}

	bid, err := h.service.WithdrawBid(c.Request.Context(), bidID, req.BidderID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WithdrawBidHandler: failed to withdraw bid", map[string]any{
			"bid_id":    bidID,
			"bidder_id": req.BidderID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid withdrawn successfully")
	helpers.LogSuccess("WithdrawBidHandler", "bid withdrawn successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
	})
}

// GetItemsByBidderHandler handles GET /users/:user_id/items
func (h *AuctionHandler) GetItemsByBidderHandler(c *gin.Context) {
	userID := c.Param("user_id")

	items, err := h.service.GetItemsByBidder(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNoBids) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetItemsByBidderHandler: error retrieving items", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	resp := make([]helpers.ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, helpers.NewItemResponse(item))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "items retrieved successfully")
	helpers.LogSuccess("GetItemsByBidderHandler", "items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(resp),
	})
}
