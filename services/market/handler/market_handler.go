package handler

import (
	"fmt"
	"net/http"

	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/market/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type MarketServiceInterface interface {
	CreateAuction(args auctionService.CreateAuctionArgs) (model.Handle, error)
	StartAuction(resource, authority string) error
	EndAuction(resource, authority string, reveal *auctionService.FloorReveal) error
	SetAuthority(resource, current, next string) error
	PlaceBid(resource, bidder, bidderToken string, amount uint64) (auctionService.PlaceBidResult, error)
	CancelBid(resource, bidder, bidderToken string) error
	ClaimBid(resource, authority, bidder, destination string) (uint64, error)
	IsWinner(resource, bidder string) (int, bool, error)
	GetAuction(resource string) (model.Auction, error)
}

type MarketHandler struct {
	service MarketServiceInterface
}

func NewMarketHandler(service MarketServiceInterface) *MarketHandler {
	return &MarketHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *MarketHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	floor, err := priceFloorFromRequest(req)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "invalid price floor")
		utils.Warn("CreateAuctionHandler: invalid price floor", map[string]any{"error": err.Error()})
		return
	}

	handle, err := h.service.CreateAuction(auctionService.CreateAuctionArgs{
		Resource:              req.Resource,
		Authority:             req.Authority,
		TokenMint:             req.TokenMint,
		MaxWinners:            req.MaxWinners,
		OpenEdition:           req.OpenEdition,
		PriceFloor:            floor,
		EndAuctionAt:          req.EndAuctionAt,
		EndAuctionGap:         req.EndAuctionGap,
		TickSize:              req.TickSize,
		GapTickSizePercentage: req.GapTickSizePercentage,
		InstantSalePrice:      req.InstantSalePrice,
		Name:                  req.Name,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler":  "CreateAuctionHandler",
			"resource": req.Resource,
			"error":    err.Error(),
		})
		return
	}

	resp := helpers.CreateAuctionResponse{Handle: string(handle), Resource: req.Resource}
	utils.JSONResponse(c, http.StatusCreated, resp, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"resource": req.Resource,
		"handle":   string(handle),
	})
}

// StartAuctionHandler handles POST /auctions/:resource/start
func (h *MarketHandler) StartAuctionHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.StartAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartAuctionHandler", err)
		return
	}

	if err := h.service.StartAuction(resource, req.Authority); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StartAuctionHandler: failed to start auction", map[string]any{"resource": resource, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction started successfully")
	helpers.LogSuccess("StartAuctionHandler", "auction started successfully", map[string]any{"resource": resource})
}

// EndAuctionHandler handles POST /auctions/:resource/end
func (h *MarketHandler) EndAuctionHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.EndAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EndAuctionHandler", err)
		return
	}

	var reveal *auctionService.FloorReveal
	if req.RevealPrice != nil {
		reveal = &auctionService.FloorReveal{Price: *req.RevealPrice, Salt: req.RevealSalt}
	}

	if err := h.service.EndAuction(resource, req.Authority, reveal); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("EndAuctionHandler: failed to end auction", map[string]any{"resource": resource, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction ended successfully")
	helpers.LogSuccess("EndAuctionHandler", "auction ended successfully", map[string]any{"resource": resource})
}

// SetAuthorityHandler handles POST /auctions/:resource/authority
func (h *MarketHandler) SetAuthorityHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.SetAuthorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetAuthorityHandler", err)
		return
	}

	if err := h.service.SetAuthority(resource, req.Current, req.Next); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SetAuthorityHandler: failed to set authority", map[string]any{"resource": resource, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "authority updated successfully")
	helpers.LogSuccess("SetAuthorityHandler", "authority updated successfully", map[string]any{
		"resource": resource,
		"next":     req.Next,
	})
}

// PlaceBidHandler handles POST /auctions/:resource/bids
func (h *MarketHandler) PlaceBidHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(resource, req.Bidder, req.BidderToken, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":  "PlaceBidHandler",
			"resource": resource,
			"bidder":   req.Bidder,
			"error":    err.Error(),
		})
		return
	}

	resp := helpers.PlaceBidResponse{
		Accepted:    result.Accepted,
		Amount:      result.Amount,
		InstantSale: result.InstantSale,
		State:       result.State.String(),
	}
	message := "bid placed successfully"
	if !result.Accepted {
		message = "auction has ended, bid not taken"
	}

	utils.JSONResponse(c, http.StatusCreated, resp, message)
	helpers.LogSuccess("PlaceBidHandler", message, map[string]any{
		"resource": resource,
		"bidder":   req.Bidder,
		"amount":   result.Amount,
		"accepted": result.Accepted,
	})
}

// CancelBidHandler handles POST /auctions/:resource/bids/cancel
func (h *MarketHandler) CancelBidHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.CancelBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CancelBidHandler", err)
		return
	}

	if err := h.service.CancelBid(resource, req.Bidder, req.BidderToken); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelBidHandler: failed to cancel bid", map[string]any{
			"resource": resource,
			"bidder":   req.Bidder,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "bid cancelled successfully")
	helpers.LogSuccess("CancelBidHandler", "bid cancelled successfully", map[string]any{
		"resource": resource,
		"bidder":   req.Bidder,
	})
}

// ClaimBidHandler handles POST /auctions/:resource/bids/claim
func (h *MarketHandler) ClaimBidHandler(c *gin.Context) {
	resource := c.Param("resource")
	var req helpers.ClaimBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ClaimBidHandler", err)
		return
	}

	amount, err := h.service.ClaimBid(resource, req.Authority, req.Bidder, req.Destination)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ClaimBidHandler: failed to claim bid", map[string]any{
			"resource": resource,
			"bidder":   req.Bidder,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ClaimBidResponse{Amount: amount}, "bid claimed successfully")
	helpers.LogSuccess("ClaimBidHandler", "bid claimed successfully", map[string]any{
		"resource": resource,
		"bidder":   req.Bidder,
		"amount":   amount,
	})
}

// GetWinnerHandler handles GET /auctions/:resource/winners/:bidder
func (h *MarketHandler) GetWinnerHandler(c *gin.Context) {
	resource := c.Param("resource")
	bidder := c.Param("bidder")

	rank, winner, err := h.service.IsWinner(resource, bidder)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinnerHandler: error checking winner", map[string]any{"resource": resource, "bidder": bidder, "error": err.Error()})
		return
	}

	resp := helpers.WinnerResponse{Bidder: bidder, Rank: rank, Winner: winner}
	utils.JSONResponse(c, http.StatusOK, resp, "winner status retrieved successfully")
	helpers.LogSuccess("GetWinnerHandler", "winner status retrieved successfully", map[string]any{
		"resource": resource,
		"bidder":   bidder,
		"winner":   winner,
	})
}

// GetAuctionHandler handles GET /auctions/:resource
func (h *MarketHandler) GetAuctionHandler(c *gin.Context) {
	resource := c.Param("resource")

	auction, err := h.service.GetAuction(resource)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"resource": resource, "error": err.Error()})
		return
	}

	bids := make([]helpers.BidEntry, 0, len(auction.BidState.Bids))
	for _, b := range auction.BidState.Bids {
		bids = append(bids, helpers.BidEntry{Bidder: b.Bidder, Amount: b.Amount})
	}

	resp := helpers.AuctionResponse{
		Resource:     auction.Resource,
		Authority:    auction.Authority,
		TokenMint:    auction.TokenMint,
		State:        auction.State.String(),
		EndAuctionAt: auction.EndAuctionAt,
		EndedAt:      auction.EndedAt,
		Bids:         bids,
		MaxWinners:   auction.BidState.Max,
		OpenEdition:  auction.BidState.OpenEdition,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionHandler", "auction retrieved successfully", map[string]any{
		"resource": resource,
		"state":    resp.State,
	})
}

// priceFloorFromRequest builds the floor variant out of the request fields.
func priceFloorFromRequest(req helpers.CreateAuctionRequest) (model.PriceFloor, error) {
	switch req.PriceFloorKind {
	case "", "none":
		return model.PriceFloor{Kind: model.PriceFloorNone}, nil
	case "minimum":
		return model.PriceFloor{Kind: model.PriceFloorMinimum, Minimum: req.PriceFloor}, nil
	case "blinded":
		if req.FloorCommitment == "" {
			return model.PriceFloor{}, fmt.Errorf("blinded floor without commitment: %w", marketerrors.ErrBadPriceFloorReveal)
		}
		return model.PriceFloor{Kind: model.PriceFloorBlinded, Commitment: req.FloorCommitment}, nil
	default:
		return model.PriceFloor{}, fmt.Errorf("unknown price floor kind %q: %w", req.PriceFloorKind, marketerrors.ErrBadPriceFloorReveal)
	}
}
