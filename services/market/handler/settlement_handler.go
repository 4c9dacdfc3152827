package handler

import (
	"fmt"
	"net/http"

	"auction-marketplace/internal/managerService"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/market/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type ManagerServiceInterface interface {
	RegisterVault(vault model.Vault) (model.Handle, error)
	RegisterMetadata(meta model.Metadata) (model.Handle, error)
	InitAuctionManager(args managerService.InitArgs) (model.Handle, error)
	ValidateSafetyDepositBox(manager model.Handle, order uint8, metadataAuthority string) error
	StartAuctionViaManager(manager model.Handle, authority string) error
	Manager(handle model.Handle) (model.AuctionManager, error)
}

type SettlementServiceInterface interface {
	ManagerClaimBid(manager model.Handle, bidder string) (uint64, error)
	RedeemBid(manager model.Handle, bidder string, order uint8, destination string) error
	RedeemFullRightsTransferBid(manager model.Handle, bidder string, order uint8, destination string) error
	RedeemPrintingBid(manager model.Handle, bidder string, order uint8, destination string) error
	WithdrawMasterEdition(manager model.Handle, authority string, order uint8, destination string) error
}

type PayoutServiceInterface interface {
	EmptyPaymentAccount(manager model.Handle, recipient, destination string) (uint64, error)
}

// SettlementHandler routes the manager lifecycle and post-auction money
// movement.
type SettlementHandler struct {
	managers   ManagerServiceInterface
	settlement SettlementServiceInterface
	payouts    PayoutServiceInterface
}

func NewSettlementHandler(managers ManagerServiceInterface, settlement SettlementServiceInterface, payouts PayoutServiceInterface) *SettlementHandler {
	return &SettlementHandler{managers: managers, settlement: settlement, payouts: payouts}
}

// RegisterVaultHandler handles POST /vaults
func (h *SettlementHandler) RegisterVaultHandler(c *gin.Context) {
	var req helpers.RegisterVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterVaultHandler", err)
		return
	}

	boxes := make([]model.SafetyDepositBox, 0, len(req.Boxes))
	for _, b := range req.Boxes {
		boxes = append(boxes, model.SafetyDepositBox{
			Vault:     model.Handle(req.ID),
			Order:     b.Order,
			TokenMint: b.TokenMint,
			Store:     b.Store,
		})
	}
	handle, err := h.managers.RegisterVault(model.Vault{
		ID:        model.Handle(req.ID),
		Authority: req.Authority,
		State:     model.VaultCombined,
		Boxes:     boxes,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RegisterVaultHandler: failed to register vault", map[string]any{"vault": req.ID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.HandleResponse{Handle: string(handle)}, "vault registered successfully")
	helpers.LogSuccess("RegisterVaultHandler", "vault registered successfully", map[string]any{"vault": req.ID})
}

// RegisterMetadataHandler handles POST /metadata
func (h *SettlementHandler) RegisterMetadataHandler(c *gin.Context) {
	var req helpers.RegisterMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterMetadataHandler", err)
		return
	}

	creators := make([]model.Creator, 0, len(req.Creators))
	for _, cr := range req.Creators {
		creators = append(creators, model.Creator{Address: cr.Address, Share: cr.Share})
	}
	handle, err := h.managers.RegisterMetadata(model.Metadata{
		Mint:                 req.Mint,
		UpdateAuthority:      req.UpdateAuthority,
		SellerFeeBasisPoints: req.SellerFeeBasisPoints,
		Creators:             creators,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RegisterMetadataHandler: failed to register metadata", map[string]any{"mint": req.Mint, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.HandleResponse{Handle: string(handle)}, "metadata registered successfully")
	helpers.LogSuccess("RegisterMetadataHandler", "metadata registered successfully", map[string]any{"mint": req.Mint})
}

// InitManagerHandler handles POST /managers
func (h *SettlementHandler) InitManagerHandler(c *gin.Context) {
	var req helpers.InitManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "InitManagerHandler", err)
		return
	}

	configs := make([]model.WinningConfig, 0, len(req.WinningSlots))
	for _, slot := range req.WinningSlots {
		items := make([]model.WinningConfigItem, 0, len(slot.Items))
		for _, item := range slot.Items {
			kind, err := winningConfigTypeFromRequest(item.Type)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, err, "invalid prize type")
				utils.Warn("InitManagerHandler: invalid prize type", map[string]any{"error": err.Error()})
				return
			}
			items = append(items, model.WinningConfigItem{
				SafetyDepositBoxIndex: item.BoxIndex,
				Amount:                item.Amount,
				WinningConfigType:     kind,
			})
		}
		configs = append(configs, model.WinningConfig{Items: items})
	}

	var participation *model.ParticipationConfig
	if req.Participation != nil {
		participation = &model.ParticipationConfig{
			SafetyDepositBoxIndex: req.Participation.BoxIndex,
			FixedPrice:            req.Participation.FixedPrice,
			WinnersCanParticipate: req.Participation.WinnersCanParticipate,
		}
	}

	handle, err := h.managers.InitAuctionManager(managerService.InitArgs{
		Resource:            req.Resource,
		VaultID:             model.Handle(req.Vault),
		Authority:           req.Authority,
		AcceptPayment:       req.AcceptPayment,
		WinningConfigs:      configs,
		ParticipationConfig: participation,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("InitManagerHandler: failed to init manager", map[string]any{
			"handler":  "InitManagerHandler",
			"resource": req.Resource,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.HandleResponse{Handle: string(handle)}, "manager initialized successfully")
	helpers.LogSuccess("InitManagerHandler", "manager initialized successfully", map[string]any{
		"resource": req.Resource,
		"handle":   string(handle),
	})
}

// ValidateBoxHandler handles POST /managers/:handle/validate
func (h *SettlementHandler) ValidateBoxHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.ValidateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ValidateBoxHandler", err)
		return
	}

	if err := h.managers.ValidateSafetyDepositBox(manager, req.Order, req.MetadataAuthority); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ValidateBoxHandler: failed to validate box", map[string]any{
			"manager": string(manager),
			"order":   req.Order,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "safety deposit box validated successfully")
	helpers.LogSuccess("ValidateBoxHandler", "safety deposit box validated successfully", map[string]any{
		"manager": string(manager),
		"order":   req.Order,
	})
}

// StartViaManagerHandler handles POST /managers/:handle/start
func (h *SettlementHandler) StartViaManagerHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.StartViaManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartViaManagerHandler", err)
		return
	}

	if err := h.managers.StartAuctionViaManager(manager, req.Authority); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StartViaManagerHandler: failed to start auction", map[string]any{"manager": string(manager), "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction started successfully")
	helpers.LogSuccess("StartViaManagerHandler", "auction started successfully", map[string]any{"manager": string(manager)})
}

// ManagerClaimBidHandler handles POST /managers/:handle/claims
func (h *SettlementHandler) ManagerClaimBidHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.ManagerClaimBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ManagerClaimBidHandler", err)
		return
	}

	amount, err := h.settlement.ManagerClaimBid(manager, req.Bidder)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ManagerClaimBidHandler: failed to claim bid", map[string]any{
			"manager": string(manager),
			"bidder":  req.Bidder,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AmountResponse{Amount: amount}, "winning bid swept successfully")
	helpers.LogSuccess("ManagerClaimBidHandler", "winning bid swept successfully", map[string]any{
		"manager": string(manager),
		"bidder":  req.Bidder,
		"amount":  amount,
	})
}

// RedeemBidHandler handles POST /managers/:handle/redemptions
func (h *SettlementHandler) RedeemBidHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.RedeemBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RedeemBidHandler", err)
		return
	}

	kind, err := winningConfigTypeFromRequest(req.Type)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "invalid prize type")
		utils.Warn("RedeemBidHandler: invalid prize type", map[string]any{"error": err.Error()})
		return
	}

	switch kind {
	case model.TokenOnlyTransfer:
		err = h.settlement.RedeemBid(manager, req.Bidder, req.Order, req.Destination)
	case model.FullRightsTransfer:
		err = h.settlement.RedeemFullRightsTransferBid(manager, req.Bidder, req.Order, req.Destination)
	case model.PrintingV1:
		err = h.settlement.RedeemPrintingBid(manager, req.Bidder, req.Order, req.Destination)
	}
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RedeemBidHandler: failed to redeem bid", map[string]any{
			"manager": string(manager),
			"bidder":  req.Bidder,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "bid redeemed successfully")
	helpers.LogSuccess("RedeemBidHandler", "bid redeemed successfully", map[string]any{
		"manager": string(manager),
		"bidder":  req.Bidder,
	})
}

// WithdrawMasterEditionHandler handles POST /managers/:handle/withdrawals
func (h *SettlementHandler) WithdrawMasterEditionHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.WithdrawMasterEditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawMasterEditionHandler", err)
		return
	}

	if err := h.settlement.WithdrawMasterEdition(manager, req.Authority, req.Order, req.Destination); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WithdrawMasterEditionHandler: failed to withdraw", map[string]any{
			"manager": string(manager),
			"order":   req.Order,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "master edition withdrawn successfully")
	helpers.LogSuccess("WithdrawMasterEditionHandler", "master edition withdrawn successfully", map[string]any{
		"manager": string(manager),
		"order":   req.Order,
	})
}

// EmptyPaymentAccountHandler handles POST /managers/:handle/payouts
func (h *SettlementHandler) EmptyPaymentAccountHandler(c *gin.Context) {
	manager := model.Handle(c.Param("handle"))
	var req helpers.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EmptyPaymentAccountHandler", err)
		return
	}

	amount, err := h.payouts.EmptyPaymentAccount(manager, req.Recipient, req.Destination)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("EmptyPaymentAccountHandler: failed to pay out", map[string]any{
			"manager":   string(manager),
			"recipient": req.Recipient,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AmountResponse{Amount: amount}, "payment account emptied successfully")
	helpers.LogSuccess("EmptyPaymentAccountHandler", "payment account emptied successfully", map[string]any{
		"manager":   string(manager),
		"recipient": req.Recipient,
		"amount":    amount,
	})
}

// GetManagerHandler handles GET /managers/:handle
func (h *SettlementHandler) GetManagerHandler(c *gin.Context) {
	handle := model.Handle(c.Param("handle"))

	manager, err := h.managers.Manager(handle)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetManagerHandler: error retrieving manager", map[string]any{"manager": string(handle), "error": err.Error()})
		return
	}

	resp := helpers.ManagerResponse{
		Handle:        string(handle),
		Auction:       string(manager.Auction),
		Authority:     manager.Authority,
		AcceptPayment: manager.AcceptPayment,
		Status:        manager.Status.String(),
		BidsPushed:    manager.BidsPushedToAcceptPayment,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "manager retrieved successfully")
	helpers.LogSuccess("GetManagerHandler", "manager retrieved successfully", map[string]any{
		"manager": string(handle),
		"status":  resp.Status,
	})
}

// winningConfigTypeFromRequest maps the request's prize type string onto the
// config type, defaulting to a token-only transfer.
func winningConfigTypeFromRequest(kind string) (model.WinningConfigType, error) {
	switch kind {
	case "", "token_only_transfer":
		return model.TokenOnlyTransfer, nil
	case "full_rights_transfer":
		return model.FullRightsTransfer, nil
	case "printing_v1":
		return model.PrintingV1, nil
	default:
		return 0, fmt.Errorf("unknown prize type %q: %w", kind, marketerrors.ErrDataTypeMismatch)
	}
}
