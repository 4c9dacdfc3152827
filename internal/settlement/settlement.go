// Package settlement moves money and prizes after an auction ends: winning
// escrow is swept into the manager's accept-payment account, winners redeem
// their prizes, losers get refunds. Every step latches its progress in a
// ledger ticket so replays settle into no-ops instead of double payouts.
package settlement

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/escrow"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
)

// Service drives post-auction settlement for a manager.
type Service struct {
	mu     sync.Mutex
	ledger repository.AccountLedger
	bank   token.Bank
	escrow *escrow.Service
	now    func() int64
}

// NewService creates a settlement service using wall-clock time.
func NewService(ledger repository.AccountLedger, bank token.Bank, esc *escrow.Service) *Service {
	return NewServiceWithClock(ledger, bank, esc, func() int64 { return time.Now().Unix() })
}

// NewServiceWithClock creates a settlement service with an injected clock.
func NewServiceWithClock(ledger repository.AccountLedger, bank token.Bank, esc *escrow.Service, now func() int64) *Service {
	return &Service{ledger: ledger, bank: bank, escrow: esc, now: now}
}

// ManagerClaimBid sweeps a winner's escrow into the manager's accept
// payment account and latches the winning slot as paid. The manager moves
// to Disbursing on the first sweep and to Finished when every winner's
// money is in. Re-claiming a swept slot is a no-op.
func (s *Service) ManagerClaimBid(managerHandle model.Handle, bidder string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	manager, auction, err := s.managerAndEndedAuction(managerHandle)
	if err != nil {
		return 0, err
	}

	rank, ok := auction.IsWinner(bidder)
	if !ok {
		return 0, fmt.Errorf("claim for %s: %w", bidder, marketerrors.ErrWinnerIndexNotFound)
	}
	if rank >= len(manager.WinningConfigStates) {
		return 0, fmt.Errorf("winner %d beyond %d configs: %w",
			rank, len(manager.WinningConfigStates), marketerrors.ErrWinnerIndexNotFound)
	}
	// The paid latch is checked before the status gate so a replayed claim
	// stays a no-op after the last sweep flips the manager to Finished.
	if manager.WinningConfigStates[rank].MoneyPushedToAcceptPayment {
		return 0, nil
	}
	if manager.Status != model.ManagerRunning && manager.Status != model.ManagerDisbursing {
		return 0, fmt.Errorf("claim on %s manager: %w", manager.Status, marketerrors.ErrInvalidState)
	}

	pot, err := s.escrow.Pot(manager.Auction, bidder)
	if err != nil {
		return 0, err
	}
	moved, err := s.escrow.Sweep(manager.Auction, pot, manager.AcceptPayment)
	if err != nil {
		return 0, err
	}

	manager.WinningConfigStates[rank].MoneyPushedToAcceptPayment = true
	manager.BidsPushedToAcceptPayment++
	manager.Status = model.ManagerDisbursing
	if manager.BidsPushedToAcceptPayment >= uint64(auction.BidState.NumWinners()) {
		manager.Status = model.ManagerFinished
	}
	if err := s.ledger.Put(managerHandle, repository.KindAuctionManager, manager); err != nil {
		return 0, err
	}
	return moved, nil
}

// RedeemBid hands a winner the token-only prize held in one safety deposit
// box, or refunds a loser's escrow. A winner whose rank is already fully
// redeemed gets a no-op; redeeming one prize item twice inside an open
// rank is an error.
func (s *Service) RedeemBid(managerHandle model.Handle, bidder string, order uint8, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redeem(managerHandle, bidder, order, destination, model.TokenOnlyTransfer)
}

// RedeemFullRightsTransferBid redeems like RedeemBid and additionally hands
// the prize metadata's update authority to the winner.
func (s *Service) RedeemFullRightsTransferBid(managerHandle model.Handle, bidder string, order uint8, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redeem(managerHandle, bidder, order, destination, model.FullRightsTransfer)
}

func (s *Service) redeem(managerHandle model.Handle, bidder string, order uint8, destination string, want model.WinningConfigType) error {
	manager, auction, err := s.managerAndEndedAuction(managerHandle)
	if err != nil {
		return err
	}

	rank, isWinner := auction.IsWinner(bidder)
	if !isWinner {
		return s.refundLoser(managerHandle, manager, bidder, destination)
	}
	if rank >= len(manager.WinningConfigs) {
		return fmt.Errorf("winner %d beyond %d configs: %w",
			rank, len(manager.WinningConfigs), marketerrors.ErrWinnerIndexNotFound)
	}

	ticketHandle := derive.Redemption(managerHandle, rank)
	var ticket model.BidRedemptionTicket
	ticketExists := true
	if err := s.ledger.Get(ticketHandle, repository.KindRedemptionTicket, &ticket); err != nil {
		if !errors.Is(err, marketerrors.ErrAccountNotFound) {
			return err
		}
		ticketExists = false
		ticket = model.BidRedemptionTicket{Manager: managerHandle, WinnerIndex: rank}
	}
	if ticket.ItemsRedeemed {
		return nil
	}

	itemIdx := -1
	for i, item := range manager.WinningConfigs[rank].Items {
		if item.SafetyDepositBoxIndex == order && item.WinningConfigType == want {
			itemIdx = i
			break
		}
	}
	if itemIdx < 0 {
		return fmt.Errorf("winner %d has no %v prize in box %d: %w",
			rank, want, order, marketerrors.ErrBoxNotUsedInAuction)
	}
	if manager.WinningConfigStates[rank].Items[itemIdx].Claimed {
		return fmt.Errorf("winner %d box %d: %w", rank, order, marketerrors.ErrPrizeAlreadyClaimed)
	}

	box, err := s.vaultBox(manager, order)
	if err != nil {
		return err
	}
	item := manager.WinningConfigs[rank].Items[itemIdx]
	if err := s.bank.Transfer(box.Store, destination, item.Amount); err != nil {
		return fmt.Errorf("redeem prize: %w", err)
	}

	if err := s.markPrimarySale(manager, box, rank, itemIdx, want, bidder, managerHandle); err != nil {
		return err
	}

	manager.WinningConfigStates[rank].Items[itemIdx].Claimed = true
	allClaimed := true
	for _, st := range manager.WinningConfigStates[rank].Items {
		if !st.Claimed {
			allClaimed = false
			break
		}
	}
	ticket.ItemsRedeemed = allClaimed

	if ticketExists {
		if err := s.ledger.Put(ticketHandle, repository.KindRedemptionTicket, ticket); err != nil {
			return err
		}
	} else {
		if err := s.ledger.Create(ticketHandle, repository.KindRedemptionTicket, ticket); err != nil {
			return err
		}
	}
	return s.ledger.Put(managerHandle, repository.KindAuctionManager, manager)
}

// markPrimarySale records the first sale on the prize metadata and, for
// full rights transfers, hands the update authority to the winner.
func (s *Service) markPrimarySale(manager model.AuctionManager, box model.SafetyDepositBox, rank, itemIdx int, want model.WinningConfigType, bidder string, managerHandle model.Handle) error {
	metaHandle := derive.Handle("metadata", box.TokenMint)
	var meta model.Metadata
	if err := s.ledger.Get(metaHandle, repository.KindMetadata, &meta); err != nil {
		if errors.Is(err, marketerrors.ErrAccountNotFound) {
			return nil
		}
		return err
	}
	if !meta.PrimarySaleHappened {
		meta.PrimarySaleHappened = true
		manager.WinningConfigStates[rank].Items[itemIdx].PrimarySaleHappened = true
	}
	if want == model.FullRightsTransfer {
		if meta.UpdateAuthority != string(managerHandle) {
			return fmt.Errorf("metadata for %s not held by manager: %w", box.TokenMint, marketerrors.ErrInvalidAuthority)
		}
		meta.UpdateAuthority = bidder
	}
	return s.ledger.Put(metaHandle, repository.KindMetadata, meta)
}

// refundLoser drains a non-winning bidder's escrow back to them. When a
// participation prize exists with a fixed price, that price is collected
// into the accept payment account before the remainder is refunded. The
// refund ticket latches the bid so it cannot be redeemed twice.
func (s *Service) refundLoser(managerHandle model.Handle, manager model.AuctionManager, bidder, destination string) error {
	ticketHandle := derive.RefundTicket(managerHandle, bidder)
	if s.ledger.Exists(ticketHandle) {
		return fmt.Errorf("refund for %s: %w", bidder, marketerrors.ErrBidAlreadyRedeemed)
	}

	pot, err := s.escrow.Pot(manager.Auction, bidder)
	if err != nil {
		return err
	}
	if manager.ParticipationConfig != nil && manager.ParticipationConfig.FixedPrice != nil {
		price := *manager.ParticipationConfig.FixedPrice
		held, err := s.escrow.Balance(pot)
		if err != nil {
			return err
		}
		if held >= price {
			if err := s.bank.Transfer(pot.PotToken, manager.AcceptPayment, price); err != nil {
				return fmt.Errorf("collect participation price: %w", err)
			}
			manager.ParticipationState.CollectedToAcceptPayment += price
			if err := s.ledger.Put(managerHandle, repository.KindAuctionManager, manager); err != nil {
				return err
			}
		}
	}
	if _, err := s.escrow.WithdrawAll(pot, destination); err != nil {
		return err
	}
	ticket := model.BidRedemptionTicket{Manager: managerHandle, WinnerIndex: -1, BidRedeemed: true}
	return s.ledger.Create(ticketHandle, repository.KindRedemptionTicket, ticket)
}

// RedeemPrintingBid redeems a printing prize, tracking edition prints in a
// prize tracking ticket so the total across winners never exceeds what the
// configs promised.
func (s *Service) RedeemPrintingBid(managerHandle model.Handle, bidder string, order uint8, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manager, auction, err := s.managerAndEndedAuction(managerHandle)
	if err != nil {
		return err
	}
	rank, isWinner := auction.IsWinner(bidder)
	if !isWinner {
		return fmt.Errorf("printing redemption by %s: %w", bidder, marketerrors.ErrWinnerIndexNotFound)
	}
	if rank >= len(manager.WinningConfigs) {
		return fmt.Errorf("winner %d beyond %d configs: %w",
			rank, len(manager.WinningConfigs), marketerrors.ErrWinnerIndexNotFound)
	}

	itemIdx := -1
	for i, item := range manager.WinningConfigs[rank].Items {
		if item.SafetyDepositBoxIndex == order && item.WinningConfigType == model.PrintingV1 {
			itemIdx = i
			break
		}
	}
	if itemIdx < 0 {
		return fmt.Errorf("winner %d has no printing prize in box %d: %w",
			rank, order, marketerrors.ErrBoxNotUsedInAuction)
	}
	if manager.WinningConfigStates[rank].Items[itemIdx].Claimed {
		return fmt.Errorf("winner %d box %d: %w", rank, order, marketerrors.ErrPrizeAlreadyClaimed)
	}

	box, err := s.vaultBox(manager, order)
	if err != nil {
		return err
	}

	trackingHandle := derive.PrizeTracking(managerHandle, box.TokenMint)
	var tracking model.PrizeTrackingTicket
	trackingExists := true
	if err := s.ledger.Get(trackingHandle, repository.KindPrizeTracking, &tracking); err != nil {
		if !errors.Is(err, marketerrors.ErrAccountNotFound) {
			return err
		}
		trackingExists = false
		supply, err := s.bank.Balance(box.Store)
		if err != nil {
			return err
		}
		tracking = model.PrizeTrackingTicket{
			Manager:             managerHandle,
			Mint:                box.TokenMint,
			SupplySnapshot:      supply,
			ExpectedRedemptions: manager.TokensNeededForBox(order),
		}
	}

	item := manager.WinningConfigs[rank].Items[itemIdx]
	if tracking.Redemptions+item.Amount < tracking.Redemptions {
		return fmt.Errorf("prize tracking for %s: %w", box.TokenMint, marketerrors.ErrNumericalOverflow)
	}
	if tracking.Redemptions+item.Amount > tracking.ExpectedRedemptions {
		return fmt.Errorf("prints %d of %d for %s: %w",
			tracking.Redemptions+item.Amount, tracking.ExpectedRedemptions, box.TokenMint, marketerrors.ErrPrizeAlreadyClaimed)
	}

	if err := s.bank.Transfer(box.Store, destination, item.Amount); err != nil {
		return fmt.Errorf("redeem printing prize: %w", err)
	}
	tracking.Redemptions += item.Amount

	if trackingExists {
		if err := s.ledger.Put(trackingHandle, repository.KindPrizeTracking, tracking); err != nil {
			return err
		}
	} else {
		if err := s.ledger.Create(trackingHandle, repository.KindPrizeTracking, tracking); err != nil {
			return err
		}
	}

	manager.WinningConfigStates[rank].Items[itemIdx].Claimed = true
	return s.ledger.Put(managerHandle, repository.KindAuctionManager, manager)
}

// WithdrawMasterEdition returns a box's remaining holdings to the operator
// once every expected print was redeemed and every winner's money is in.
func (s *Service) WithdrawMasterEdition(managerHandle model.Handle, authority string, order uint8, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manager, auction, err := s.managerAndEndedAuction(managerHandle)
	if err != nil {
		return err
	}
	if manager.Authority != authority {
		return fmt.Errorf("withdraw master edition: %w", marketerrors.ErrInvalidAuthority)
	}
	for i := 0; i < auction.BidState.NumWinners(); i++ {
		if i < len(manager.WinningConfigStates) && !manager.WinningConfigStates[i].MoneyPushedToAcceptPayment {
			return fmt.Errorf("winner %d money not claimed: %w", i, marketerrors.ErrNotAllBidsClaimed)
		}
	}

	box, err := s.vaultBox(manager, order)
	if err != nil {
		return err
	}

	trackingHandle := derive.PrizeTracking(managerHandle, box.TokenMint)
	if s.ledger.Exists(trackingHandle) {
		var tracking model.PrizeTrackingTicket
		if err := s.ledger.Get(trackingHandle, repository.KindPrizeTracking, &tracking); err != nil {
			return err
		}
		if tracking.Redemptions < tracking.ExpectedRedemptions {
			return fmt.Errorf("%d of %d prints redeemed for %s: %w",
				tracking.Redemptions, tracking.ExpectedRedemptions, box.TokenMint, marketerrors.ErrNotAllBidsClaimed)
		}
	}

	held, err := s.bank.Balance(box.Store)
	if err != nil {
		return err
	}
	if held == 0 {
		return nil
	}
	if err := s.bank.Transfer(box.Store, destination, held); err != nil {
		return fmt.Errorf("withdraw master edition: %w", err)
	}
	return nil
}

func (s *Service) managerAndEndedAuction(managerHandle model.Handle) (model.AuctionManager, model.Auction, error) {
	var manager model.AuctionManager
	if err := s.ledger.Get(managerHandle, repository.KindAuctionManager, &manager); err != nil {
		return model.AuctionManager{}, model.Auction{}, err
	}
	var auction model.Auction
	if err := s.ledger.Get(manager.Auction, repository.KindAuction, &auction); err != nil {
		return model.AuctionManager{}, model.Auction{}, err
	}
	if !auction.Ended(s.now()) {
		return model.AuctionManager{}, model.Auction{}, fmt.Errorf("auction %s still open: %w",
			auction.Resource, marketerrors.ErrAuctionHasNotEnded)
	}
	return manager, auction, nil
}

func (s *Service) vaultBox(manager model.AuctionManager, order uint8) (model.SafetyDepositBox, error) {
	var vault model.Vault
	if err := s.ledger.Get(derive.Handle("vault", string(manager.Vault)), repository.KindVault, &vault); err != nil {
		return model.SafetyDepositBox{}, err
	}
	box, ok := vault.Box(order)
	if !ok {
		return model.SafetyDepositBox{}, fmt.Errorf("vault %s has no box %d: %w",
			manager.Vault, order, marketerrors.ErrSafetyDepositIndexMismatch)
	}
	return box, nil
}
