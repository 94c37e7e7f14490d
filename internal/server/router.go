package server

import (
	handler "auction-ledger/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)

	bids := router.Group("/bids")
	{
		bids.POST("", auctionHandler.SubmitBidHandler)
		bids.POST("/:bid_id/withdraw", auctionHandler.WithdrawBidHandler)
	}

	items := router.Group("/items")
	{
		items.POST("", auctionHandler.CreateItemHandler)
		items.GET("/:item_id/state", auctionHandler.GetAuctionStateHandler)
		items.GET("/:item_id/bids", auctionHandler.GetBidHistoryHandler)
		items.GET("/:item_id/winning", auctionHandler.GetWinningBidHandler)
		items.POST("/:item_id/close", auctionHandler.CloseAuctionHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/items", auctionHandler.GetItemsByBidderHandler)
	}

	return router
}
