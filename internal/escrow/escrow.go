// Package escrow manages the per-bidder payment pots an auction holds funds
// in. Money is escrowed on bid, refunded on cancel, and swept to the
// auctioneer on claim; the pot record outlives its balance so settlement
// stays idempotent.
package escrow

import (
	"errors"
	"fmt"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
	"auction-marketplace/utils"
)

// Service moves funds between bidder token accounts and auction pots.
type Service struct {
	ledger repository.AccountLedger
	bank   token.Bank
}

// NewService creates an escrow service over the given ledger and bank.
func NewService(ledger repository.AccountLedger, bank token.Bank) *Service {
	return &Service{ledger: ledger, bank: bank}
}

// EnsurePot returns the bidder's pot for an auction, creating the pot record
// and its backing token account on first use. The pot token account is owned
// by the auction handle so only protocol operations can move its funds.
func (s *Service) EnsurePot(auction model.Handle, bidder, mint string) (model.BidderPot, error) {
	handle := derive.BidderPot(auction, bidder)

	var pot model.BidderPot
	err := s.ledger.Get(handle, repository.KindBidderPot, &pot)
	if err == nil {
		if pot.Bidder != bidder || pot.Auction != auction {
			return model.BidderPot{}, fmt.Errorf("pot %s belongs to another pair: %w",
				handle, marketerrors.ErrBidderPotTokenMismatch)
		}
		return pot, nil
	}
	if !errors.Is(err, marketerrors.ErrAccountNotFound) {
		return model.BidderPot{}, err
	}

	potToken := utils.NewAccountID("pot")
	if err := s.bank.CreateAccount(potToken, string(auction), mint); err != nil {
		return model.BidderPot{}, fmt.Errorf("create pot token account: %w", err)
	}
	pot = model.BidderPot{
		PotToken: potToken,
		Bidder:   bidder,
		Auction:  auction,
	}
	if err := s.ledger.Create(handle, repository.KindBidderPot, pot); err != nil {
		return model.BidderPot{}, fmt.Errorf("create pot record: %w", err)
	}
	return pot, nil
}

// Pot fetches an existing pot.
func (s *Service) Pot(auction model.Handle, bidder string) (model.BidderPot, error) {
	var pot model.BidderPot
	if err := s.ledger.Get(derive.BidderPot(auction, bidder), repository.KindBidderPot, &pot); err != nil {
		if errors.Is(err, marketerrors.ErrAccountNotFound) {
			return model.BidderPot{}, fmt.Errorf("bidder %s on %s: %w",
				bidder, auction, marketerrors.ErrBidderPotDoesNotExist)
		}
		return model.BidderPot{}, err
	}
	return pot, nil
}

// Deposit moves amount from the bidder's token account into their pot.
func (s *Service) Deposit(pot model.BidderPot, from string, amount uint64) error {
	if err := s.bank.Transfer(from, pot.PotToken, amount); err != nil {
		return fmt.Errorf("escrow deposit: %w", err)
	}
	return nil
}

// TopUp brings the pot balance up to target, transferring only the
// shortfall. A pot already at or above target moves nothing.
func (s *Service) TopUp(pot model.BidderPot, from string, target uint64) error {
	held, err := s.bank.Balance(pot.PotToken)
	if err != nil {
		return fmt.Errorf("escrow top-up: %w", err)
	}
	if held >= target {
		return nil
	}
	if err := s.bank.Transfer(from, pot.PotToken, target-held); err != nil {
		return fmt.Errorf("escrow top-up: %w", err)
	}
	return nil
}

// WithdrawAll drains the pot back to the destination account. An empty pot
// withdraws nothing and succeeds.
func (s *Service) WithdrawAll(pot model.BidderPot, to string) (uint64, error) {
	held, err := s.bank.Balance(pot.PotToken)
	if err != nil {
		return 0, fmt.Errorf("escrow withdraw: %w", err)
	}
	if held == 0 {
		return 0, nil
	}
	if err := s.bank.Transfer(pot.PotToken, to, held); err != nil {
		return 0, fmt.Errorf("escrow withdraw: %w", err)
	}
	return held, nil
}

// Sweep drains the pot to the destination and latches the pot as emptied.
// Sweeping an already emptied pot is a no-op.
func (s *Service) Sweep(auction model.Handle, pot model.BidderPot, to string) (uint64, error) {
	if pot.Emptied {
		return 0, nil
	}
	moved, err := s.WithdrawAll(pot, to)
	if err != nil {
		return 0, err
	}
	pot.Emptied = true
	if err := s.ledger.Put(derive.BidderPot(auction, pot.Bidder), repository.KindBidderPot, pot); err != nil {
		return 0, fmt.Errorf("latch emptied pot: %w", err)
	}
	return moved, nil
}

// Balance reports the pot's current holdings.
func (s *Service) Balance(pot model.BidderPot) (uint64, error) {
	return s.bank.Balance(pot.PotToken)
}
