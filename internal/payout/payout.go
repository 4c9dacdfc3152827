// Package payout divides settled auction money between the seller and the
// prize creators. Splits are computed with exact decimal arithmetic, floor
// at every division, and any remainder goes to the seller; disbursement is
// latched per recipient so replays pay only what is still owed.
package payout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
)

// Share is one recipient's cut of a settled amount.
type Share struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// SplitResult is the full division of one settled amount.
type SplitResult struct {
	Creators []Share `json:"creators"`
	// Seller takes the non-royalty part plus all rounding dust.
	Seller uint64 `json:"seller"`
}

var (
	tenThousand = decimal.NewFromInt(10000)
	oneHundred  = decimal.NewFromInt(100)
)

// Split divides total between the creators and the seller. The royalty pool
// is floor(total * bps / 10000); each creator gets floor(pool * share /
// 100); the seller receives everything left over. Creator shares must sum
// to at most 100.
func Split(total uint64, sellerFeeBasisPoints uint16, creators []model.Creator) (SplitResult, error) {
	if sellerFeeBasisPoints > 10000 {
		return SplitResult{}, fmt.Errorf("fee %d basis points: %w", sellerFeeBasisPoints, marketerrors.ErrMetadataInvalid)
	}
	var shareSum uint64
	for _, c := range creators {
		shareSum += uint64(c.Share)
	}
	if shareSum > 100 {
		return SplitResult{}, fmt.Errorf("creator shares sum to %d: %w", shareSum, marketerrors.ErrMetadataInvalid)
	}

	totalDec := decimal.NewFromUint64(total)
	pool := totalDec.Mul(decimal.NewFromInt(int64(sellerFeeBasisPoints))).Div(tenThousand).Floor()

	result := SplitResult{Creators: make([]Share, len(creators))}
	var paid uint64
	for i, c := range creators {
		cut := pool.Mul(decimal.NewFromInt(int64(c.Share))).Div(oneHundred).Floor()
		amount := cut.BigInt().Uint64()
		if paid+amount < paid {
			return SplitResult{}, fmt.Errorf("creator payouts: %w", marketerrors.ErrNumericalOverflow)
		}
		paid += amount
		result.Creators[i] = Share{Address: c.Address, Amount: amount}
	}
	if paid > total {
		return SplitResult{}, fmt.Errorf("payout %d exceeds total %d: %w", paid, total, marketerrors.ErrNumericalOverflow)
	}
	result.Seller = total - paid
	return result, nil
}

// Service disburses the accept payment account after settlement.
type Service struct {
	mu     sync.Mutex
	ledger repository.AccountLedger
	bank   token.Bank
}

// NewService creates a payout service.
func NewService(ledger repository.AccountLedger, bank token.Bank) *Service {
	return &Service{ledger: ledger, bank: bank}
}

// EmptyPaymentAccount pays one recipient their aggregate share of the
// settled money, transferring from the manager's accept payment account to
// the destination token account. Every winner's money must already be
// swept in. A payout ticket per (winner slot, recipient) records what was
// paid, so re-invocation transfers only the still-unpaid delta.
func (s *Service) EmptyPaymentAccount(managerHandle model.Handle, recipient, destination string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var manager model.AuctionManager
	if err := s.ledger.Get(managerHandle, repository.KindAuctionManager, &manager); err != nil {
		return 0, err
	}
	var auction model.Auction
	if err := s.ledger.Get(manager.Auction, repository.KindAuction, &auction); err != nil {
		return 0, err
	}

	winners := auction.BidState.NumWinners()
	for i := 0; i < winners; i++ {
		if i < len(manager.WinningConfigStates) && !manager.WinningConfigStates[i].MoneyPushedToAcceptPayment {
			return 0, fmt.Errorf("winner %d money not swept: %w", i, marketerrors.ErrNotAllBidsClaimed)
		}
	}

	var totalMoved uint64
	for i := 0; i < winners; i++ {
		bid, ok := auction.BidState.WinnerAt(i)
		if !ok {
			continue
		}
		entitled, err := s.entitled(manager, i, bid.Amount, recipient)
		if err != nil {
			return 0, err
		}
		moved, err := s.payDelta(managerHandle, i, recipient, destination, manager.AcceptPayment, entitled)
		if err != nil {
			return 0, err
		}
		totalMoved += moved
	}

	// Participation collections carry no royalty schedule and belong to
	// the seller.
	if manager.ParticipationState != nil && recipient == manager.Authority {
		moved, err := s.payDelta(managerHandle, -1, recipient, destination, manager.AcceptPayment,
			manager.ParticipationState.CollectedToAcceptPayment)
		if err != nil {
			return 0, err
		}
		totalMoved += moved
	}
	return totalMoved, nil
}

// entitled computes the recipient's share of one winner slot's payment,
// splitting by the royalty schedule of the slot's first prize.
func (s *Service) entitled(manager model.AuctionManager, slot int, amount uint64, recipient string) (uint64, error) {
	var meta model.Metadata
	haveMeta := false
	if slot < len(manager.WinningConfigs) && len(manager.WinningConfigs[slot].Items) > 0 {
		order := manager.WinningConfigs[slot].Items[0].SafetyDepositBoxIndex
		var vault model.Vault
		if err := s.ledger.Get(derive.Handle("vault", string(manager.Vault)), repository.KindVault, &vault); err != nil {
			return 0, err
		}
		if box, ok := vault.Box(order); ok {
			err := s.ledger.Get(derive.Handle("metadata", box.TokenMint), repository.KindMetadata, &meta)
			if err == nil {
				haveMeta = true
			} else if !errors.Is(err, marketerrors.ErrAccountNotFound) {
				return 0, err
			}
		}
	}

	if !haveMeta {
		if recipient == manager.Authority {
			return amount, nil
		}
		return 0, nil
	}

	split, err := Split(amount, meta.SellerFeeBasisPoints, meta.Creators)
	if err != nil {
		return 0, err
	}
	var entitled uint64
	for _, share := range split.Creators {
		if share.Address == recipient {
			entitled += share.Amount
		}
	}
	if recipient == manager.Authority {
		entitled += split.Seller
	}
	return entitled, nil
}

// payDelta transfers whatever the ticket says is still owed.
func (s *Service) payDelta(managerHandle model.Handle, slot int, recipient, destination, source string, entitled uint64) (uint64, error) {
	ticketHandle := derive.Payout(managerHandle, slot, recipient)
	var ticket model.PayoutTicket
	ticketExists := true
	if err := s.ledger.Get(ticketHandle, repository.KindPayoutTicket, &ticket); err != nil {
		if !errors.Is(err, marketerrors.ErrAccountNotFound) {
			return 0, err
		}
		ticketExists = false
		ticket = model.PayoutTicket{Recipient: recipient}
	}
	if ticket.AmountPaid >= entitled {
		return 0, nil
	}
	delta := entitled - ticket.AmountPaid
	if err := s.bank.Transfer(source, destination, delta); err != nil {
		return 0, fmt.Errorf("disburse to %s: %w", recipient, err)
	}
	ticket.AmountPaid = entitled

	if ticketExists {
		if err := s.ledger.Put(ticketHandle, repository.KindPayoutTicket, ticket); err != nil {
			return 0, err
		}
	} else {
		if err := s.ledger.Create(ticketHandle, repository.KindPayoutTicket, ticket); err != nil {
			return 0, err
		}
	}
	return delta, nil
}
