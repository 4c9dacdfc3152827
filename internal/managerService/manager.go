// Package managerService orchestrates an auction over a vault of prizes. A
// manager is created against a combined vault, every referenced safety
// deposit box is validated exactly once, and only then may the auction run.
package managerService

import (
	"fmt"
	"sync"

	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
)

// Service manages auction managers and their validation lifecycle.
type Service struct {
	mu       sync.Mutex
	ledger   repository.AccountLedger
	bank     token.Bank
	auctions *auctionService.Service
}

// NewService creates a manager service.
func NewService(ledger repository.AccountLedger, bank token.Bank, auctions *auctionService.Service) *Service {
	return &Service{ledger: ledger, bank: bank, auctions: auctions}
}

// RegisterVault records a vault and its boxes in the ledger so a manager
// can be initialized over it.
func (s *Service) RegisterVault(vault model.Vault) (model.Handle, error) {
	handle := derive.Handle("vault", string(vault.ID))
	if err := s.ledger.Create(handle, repository.KindVault, vault); err != nil {
		return "", fmt.Errorf("register vault %s: %w", vault.ID, err)
	}
	return handle, nil
}

// RegisterMetadata records prize token metadata.
func (s *Service) RegisterMetadata(meta model.Metadata) (model.Handle, error) {
	handle := derive.Handle("metadata", meta.Mint)
	if err := s.ledger.Create(handle, repository.KindMetadata, meta); err != nil {
		return "", fmt.Errorf("register metadata for %s: %w", meta.Mint, err)
	}
	return handle, nil
}

// InitArgs parameterizes a new auction manager.
type InitArgs struct {
	// Resource the managed auction was created over.
	Resource  string
	VaultID   model.Handle
	Authority string
	// Token account every winning bid is swept into.
	AcceptPayment       string
	WinningConfigs      []model.WinningConfig
	ParticipationConfig *model.ParticipationConfig
}

// InitAuctionManager creates a manager over a created auction and a
// combined vault. The accept-payment account must be empty and carry no
// delegate or close authority, since settlement later assumes exclusive
// control of it.
func (s *Service) InitAuctionManager(args InitArgs) (model.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, err := s.auctions.GetAuction(args.Resource)
	if err != nil {
		return "", err
	}
	if auction.State != model.AuctionCreated {
		return "", fmt.Errorf("init manager over %s auction: %w", auction.State, marketerrors.ErrInvalidState)
	}

	var vault model.Vault
	if err := s.ledger.Get(derive.Handle("vault", string(args.VaultID)), repository.KindVault, &vault); err != nil {
		return "", err
	}
	if vault.State != model.VaultCombined {
		return "", fmt.Errorf("vault %s: %w", args.VaultID, marketerrors.ErrVaultNotCombined)
	}

	accept, err := s.bank.Account(args.AcceptPayment)
	if err != nil {
		return "", err
	}
	if accept.Mint != auction.TokenMint {
		return "", fmt.Errorf("accept payment mint %s, auction mint %s: %w",
			accept.Mint, auction.TokenMint, marketerrors.ErrAcceptPaymentMismatch)
	}
	if accept.Amount != 0 {
		return "", fmt.Errorf("accept payment holds %d: %w", accept.Amount, marketerrors.ErrAcceptPaymentMismatch)
	}
	if accept.Delegate != "" {
		return "", fmt.Errorf("accept payment account: %w", marketerrors.ErrDelegateShouldBeNone)
	}
	if accept.CloseAuthority != "" {
		return "", fmt.Errorf("accept payment account: %w", marketerrors.ErrCloseAuthorityShouldBeNone)
	}

	// Every prize slot must exist in the vault before the configs can be
	// trusted.
	for _, wc := range args.WinningConfigs {
		for _, item := range wc.Items {
			if _, ok := vault.Box(item.SafetyDepositBoxIndex); !ok {
				return "", fmt.Errorf("winning config references box %d: %w",
					item.SafetyDepositBoxIndex, marketerrors.ErrSafetyDepositIndexMismatch)
			}
		}
	}
	if args.ParticipationConfig != nil {
		if _, ok := vault.Box(args.ParticipationConfig.SafetyDepositBoxIndex); !ok {
			return "", fmt.Errorf("participation config references box %d: %w",
				args.ParticipationConfig.SafetyDepositBoxIndex, marketerrors.ErrSafetyDepositIndexMismatch)
		}
	}

	states := make([]model.WinningConfigState, len(args.WinningConfigs))
	for i, wc := range args.WinningConfigs {
		states[i] = model.WinningConfigState{Items: make([]model.WinningConfigStateItem, len(wc.Items))}
	}

	manager := model.AuctionManager{
		Auction:             derive.Auction(args.Resource),
		Vault:               args.VaultID,
		Authority:           args.Authority,
		AcceptPayment:       args.AcceptPayment,
		Status:              model.ManagerInitialized,
		WinningConfigs:      args.WinningConfigs,
		WinningConfigStates: states,
		ParticipationConfig: args.ParticipationConfig,
	}
	if args.ParticipationConfig != nil {
		manager.ParticipationState = &model.ParticipationState{}
	}

	handle := derive.Manager(manager.Auction)
	if err := s.ledger.Create(handle, repository.KindAuctionManager, manager); err != nil {
		return "", fmt.Errorf("create manager for %s: %w", args.Resource, err)
	}
	return handle, nil
}

// ValidateSafetyDepositBox checks one box against the manager's configs and
// latches the result with a one-time ticket. A full-rights box additionally
// hands its metadata update authority to the manager, remembering the
// original so unredeemed prizes can be returned. The manager flips to
// Validated once every referenced box holds a ticket.
func (s *Service) ValidateSafetyDepositBox(managerHandle model.Handle, order uint8, metadataAuthority string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var manager model.AuctionManager
	if err := s.ledger.Get(managerHandle, repository.KindAuctionManager, &manager); err != nil {
		return err
	}
	if manager.Status != model.ManagerInitialized {
		return fmt.Errorf("validate box on %s manager: %w", manager.Status, marketerrors.ErrInvalidState)
	}

	var vault model.Vault
	if err := s.ledger.Get(derive.Handle("vault", string(manager.Vault)), repository.KindVault, &vault); err != nil {
		return err
	}
	box, ok := vault.Box(order)
	if !ok {
		return fmt.Errorf("vault %s has no box %d: %w", manager.Vault, order, marketerrors.ErrSafetyDepositIndexMismatch)
	}
	if !manager.BoxUsedInConfigs(order) {
		return fmt.Errorf("box %d: %w", order, marketerrors.ErrBoxNotUsedInAuction)
	}

	boxHandle := derive.Handle("safety_deposit_box", string(manager.Vault), fmt.Sprintf("%d", order))
	ticketHandle := derive.Validation(managerHandle, boxHandle)
	if s.ledger.Exists(ticketHandle) {
		return fmt.Errorf("box %d on manager %s: %w", order, managerHandle, marketerrors.ErrAlreadyValidated)
	}

	store, err := s.bank.Account(box.Store)
	if err != nil {
		return err
	}
	if store.Mint != box.TokenMint {
		return fmt.Errorf("box %d store mint %s, box mint %s: %w",
			order, store.Mint, box.TokenMint, marketerrors.ErrIncorrectMint)
	}
	if needed := manager.TokensNeededForBox(order); store.Amount < needed {
		return fmt.Errorf("box %d holds %d, winners need %d: %w",
			order, store.Amount, needed, marketerrors.ErrNotEnoughTokensToSupplyWinners)
	}

	metaHandle := derive.Handle("metadata", box.TokenMint)
	var meta model.Metadata
	if err := s.ledger.Get(metaHandle, repository.KindMetadata, &meta); err != nil {
		return err
	}
	if meta.Mint != box.TokenMint {
		return fmt.Errorf("metadata mint %s, box mint %s: %w", meta.Mint, box.TokenMint, marketerrors.ErrMetadataInvalid)
	}

	// Full rights prizes surrender their update authority to the manager
	// until redemption.
	if s.boxNeedsFullRights(&manager, order) {
		if meta.UpdateAuthority != metadataAuthority {
			return fmt.Errorf("metadata authority %s: %w", metadataAuthority, marketerrors.ErrInvalidAuthority)
		}
		lookup := model.OriginalAuthorityLookup{
			Metadata:          metaHandle,
			OriginalAuthority: meta.UpdateAuthority,
		}
		if err := s.ledger.Create(derive.OriginalAuthority(manager.Auction, metaHandle), repository.KindOriginalAuthority, lookup); err != nil {
			return fmt.Errorf("record original authority: %w", err)
		}
		meta.UpdateAuthority = string(managerHandle)
		if err := s.ledger.Put(metaHandle, repository.KindMetadata, meta); err != nil {
			return err
		}
	}

	ticket := model.SafetyDepositValidationTicket{Manager: managerHandle, Box: boxHandle}
	if err := s.ledger.Create(ticketHandle, repository.KindValidationTicket, ticket); err != nil {
		return fmt.Errorf("create validation ticket: %w", err)
	}

	manager.ItemsValidated++
	if manager.ItemsValidated >= manager.DistinctBoxesUsed() {
		manager.Status = model.ManagerValidated
	}
	return s.ledger.Put(managerHandle, repository.KindAuctionManager, manager)
}

func (s *Service) boxNeedsFullRights(m *model.AuctionManager, order uint8) bool {
	for _, wc := range m.WinningConfigs {
		for _, item := range wc.Items {
			if item.SafetyDepositBoxIndex == order && item.WinningConfigType == model.FullRightsTransfer {
				return true
			}
		}
	}
	return false
}

// StartAuctionViaManager starts the underlying auction. Only a fully
// validated manager may start, and only its authority may ask.
func (s *Service) StartAuctionViaManager(managerHandle model.Handle, authority string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var manager model.AuctionManager
	if err := s.ledger.Get(managerHandle, repository.KindAuctionManager, &manager); err != nil {
		return err
	}
	if manager.Authority != authority {
		return fmt.Errorf("start via manager %s: %w", managerHandle, marketerrors.ErrInvalidAuthority)
	}
	if manager.Status != model.ManagerValidated {
		return fmt.Errorf("start via %s manager: %w", manager.Status, marketerrors.ErrNotValidated)
	}

	var auction model.Auction
	if err := s.ledger.Get(manager.Auction, repository.KindAuction, &auction); err != nil {
		return err
	}
	if err := s.auctions.StartAuction(auction.Resource, auction.Authority); err != nil {
		return err
	}

	manager.Status = model.ManagerRunning
	return s.ledger.Put(managerHandle, repository.KindAuctionManager, manager)
}

// Manager returns the manager record.
func (s *Service) Manager(handle model.Handle) (model.AuctionManager, error) {
	var manager model.AuctionManager
	err := s.ledger.Get(handle, repository.KindAuctionManager, &manager)
	return manager, err
}
