package server

import (
	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/managerService"
	"auction-marketplace/internal/payout"
	"auction-marketplace/internal/settlement"
	handler "auction-marketplace/services/market/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Market     *auctionService.Service
	Managers   *managerService.Service
	Settlement *settlement.Service
	Payouts    *payout.Service
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(services Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	marketHandler := handler.NewMarketHandler(services.Market)
	settlementHandler := handler.NewSettlementHandler(services.Managers, services.Settlement, services.Payouts)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", marketHandler.CreateAuctionHandler)
		auctions.GET("/:resource", marketHandler.GetAuctionHandler)
		auctions.POST("/:resource/start", marketHandler.StartAuctionHandler)
		auctions.POST("/:resource/end", marketHandler.EndAuctionHandler)
		auctions.POST("/:resource/authority", marketHandler.SetAuthorityHandler)
		auctions.POST("/:resource/bids", marketHandler.PlaceBidHandler)
		auctions.POST("/:resource/bids/cancel", marketHandler.CancelBidHandler)
		auctions.POST("/:resource/bids/claim", marketHandler.ClaimBidHandler)
		auctions.GET("/:resource/winners/:bidder", marketHandler.GetWinnerHandler)
	}

	router.POST("/vaults", settlementHandler.RegisterVaultHandler)
	router.POST("/metadata", settlementHandler.RegisterMetadataHandler)

	managers := router.Group("/managers")
	{
		managers.POST("", settlementHandler.InitManagerHandler)
		managers.GET("/:handle", settlementHandler.GetManagerHandler)
		managers.POST("/:handle/validate", settlementHandler.ValidateBoxHandler)
		managers.POST("/:handle/start", settlementHandler.StartViaManagerHandler)
		managers.POST("/:handle/claims", settlementHandler.ManagerClaimBidHandler)
		managers.POST("/:handle/redemptions", settlementHandler.RedeemBidHandler)
		managers.POST("/:handle/withdrawals", settlementHandler.WithdrawMasterEditionHandler)
		managers.POST("/:handle/payouts", settlementHandler.EmptyPaymentAccountHandler)
	}

	return router
}
