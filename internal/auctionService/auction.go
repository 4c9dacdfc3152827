// Package auctionService implements the english-auction lifecycle: creating
// and starting auctions, accepting and cancelling ranked bids, and claiming
// winning escrow. Expiry is evaluated lazily against an injected clock on
// every operation.
package auctionService

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

// Service is the auction state machine over a ledger, an escrow service and
// a token bank. Mutating operations commit whole records, so they are
// serialized by a single lock; each operation sees the previous one's
// writes in full or not at all.
type Service struct {
	mu     sync.Mutex
	ledger repository.AccountLedger
	escrow *escrow.Service
	bank   token.Bank
	now    func() int64
}

// NewService creates a service using wall-clock time.
func NewService(ledger repository.AccountLedger, esc *escrow.Service, bank token.Bank) *Service {
	return NewServiceWithClock(ledger, esc, bank, func() int64 { return time.Now().Unix() })
}

// NewServiceWithClock creates a service with an injected clock, used by
// tests to drive expiry deterministically.
func NewServiceWithClock(ledger repository.AccountLedger, esc *escrow.Service, bank token.Bank, now func() int64) *Service {
	return &Service{ledger: ledger, escrow: esc, bank: bank, now: now}
}

// CreateAuctionArgs parameterizes a new auction.
type CreateAuctionArgs struct {
	Resource  string
	Authority string
	TokenMint string
	// Number of ranked winner slots. Ignored when OpenEdition is set.
	MaxWinners  int
	OpenEdition bool
	PriceFloor  model.PriceFloor
	// Unix seconds the auction is forced to end by.
	EndAuctionAt *int64
	// Anti-snipe window; an accepted bid inside it pushes the cut-off out.
	EndAuctionGap *int64
	TickSize      *uint64
	// Whole percentage points a bid must clear the bid it beats by. At
	// most 100.
	GapTickSizePercentage *uint8
	InstantSalePrice      *uint64
	Name                  string
}

// CreateAuction allocates the auction and its extended record.
func (s *Service) CreateAuction(args CreateAuctionArgs) (model.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if args.GapTickSizePercentage != nil && *args.GapTickSizePercentage > 100 {
		return "", fmt.Errorf("gap tick %d%%: %w", *args.GapTickSizePercentage, marketerrors.ErrInvalidGapTickSize)
	}
	if args.PriceFloor.Kind == model.PriceFloorBlinded && args.PriceFloor.Commitment == "" {
		return "", fmt.Errorf("blinded floor without commitment: %w", marketerrors.ErrBadPriceFloorReveal)
	}

	bidState := model.NewBidState(args.MaxWinners)
	if args.OpenEdition {
		bidState = model.NewOpenEditionBidState()
	}

	handle := derive.Auction(args.Resource)
	auction := model.Auction{
		Resource:      args.Resource,
		Authority:     args.Authority,
		TokenMint:     args.TokenMint,
		EndAuctionAt:  args.EndAuctionAt,
		EndAuctionGap: args.EndAuctionGap,
		PriceFloor:    args.PriceFloor,
		State:         model.AuctionCreated,
		BidState:      bidState,
	}
	if err := s.ledger.Create(handle, repository.KindAuction, auction); err != nil {
		return "", fmt.Errorf("create auction for %s: %w", args.Resource, err)
	}

	extended := model.AuctionExtended{
		TickSize:              args.TickSize,
		GapTickSizePercentage: args.GapTickSizePercentage,
		InstantSalePrice:      args.InstantSalePrice,
		Name:                  args.Name,
	}
	if err := s.ledger.Create(derive.Extended(args.Resource), repository.KindAuctionExtended, extended); err != nil {
		return "", fmt.Errorf("create auction extended for %s: %w", args.Resource, err)
	}
	return handle, nil
}

// StartAuction opens bidding. Only the authority may start, and only from
// the created state.
func (s *Service) StartAuction(resource, authority string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return err
	}
	if auction.Authority != authority {
		return fmt.Errorf("start auction %s: %w", resource, marketerrors.ErrInvalidAuthority)
	}
	next, ok := auction.State.Start()
	if !ok {
		return fmt.Errorf("start auction %s from %s: %w", resource, auction.State, marketerrors.ErrAuctionTransitionInvalid)
	}
	auction.State = next
	return s.putAuction(handle, auction)
}

// FloorReveal opens a blinded price floor: the price and salt whose hash
// matches the published commitment.
type FloorReveal struct {
	Price uint64
	Salt  string
}

// EndAuction force-ends an auction. Ending an already ended auction is a
// no-op. A blinded price floor must be revealed here; the revealed minimum
// governs which bids count as winners.
func (s *Service) EndAuction(resource, authority string, reveal *FloorReveal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return err
	}
	if auction.Authority != authority {
		return fmt.Errorf("end auction %s: %w", resource, marketerrors.ErrInvalidAuthority)
	}
	if auction.State == model.AuctionEnded {
		return nil
	}

	if auction.PriceFloor.Kind == model.PriceFloorBlinded {
		if reveal == nil {
			return fmt.Errorf("end auction %s: blinded floor needs a reveal: %w", resource, marketerrors.ErrBadPriceFloorReveal)
		}
		if derive.FloorCommitment(reveal.Price, reveal.Salt) != auction.PriceFloor.Commitment {
			return fmt.Errorf("end auction %s: %w", resource, marketerrors.ErrBadPriceFloorReveal)
		}
		auction.PriceFloor = model.PriceFloor{Kind: model.PriceFloorMinimum, Minimum: reveal.Price}
	}

	now := s.now()
	next, ok := auction.State.End()
	if !ok {
		return fmt.Errorf("end auction %s from %s: %w", resource, auction.State, marketerrors.ErrAuctionTransitionInvalid)
	}
	auction.State = next
	auction.EndedAt = &now
	return s.putAuction(handle, auction)
}

// SetAuthority hands the auction to a new authority.
func (s *Service) SetAuthority(resource, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return err
	}
	if auction.Authority != current {
		return fmt.Errorf("set authority on %s: %w", resource, marketerrors.ErrInvalidAuthority)
	}
	auction.Authority = next
	return s.putAuction(handle, auction)
}

// PlaceBidResult reports what a bid attempt did.
type PlaceBidResult struct {
	// False when the auction turned out to be over; the call still
	// succeeds, ending the auction instead of taking the bid.
	Accepted bool `json:"accepted"`
	// The escrowed amount, after any instant sale clamp.
	Amount uint64 `json:"amount"`
	// Set when this bid ended the auction through the instant sale price.
	InstantSale bool `json:"instant_sale"`
	// The auction state after the call.
	State model.AuctionState `json:"state"`
}

// PlaceBid escrows funds and inserts the bid into the ranking. A bid
// arriving after the cut-off does not fail: it ends the auction and reports
// Accepted false. Each bidder may hold one active bid; cancel before
// raising.
func (s *Service) PlaceBid(resource, bidder, bidderToken string, amount uint64) (PlaceBidResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return PlaceBidResult{}, err
	}
	var extended model.AuctionExtended
	if err := s.ledger.Get(derive.Extended(resource), repository.KindAuctionExtended, &extended); err != nil {
		return PlaceBidResult{}, err
	}

	now := s.now()
	if auction.Ended(now) {
		if auction.State != model.AuctionEnded {
			auction.State = model.AuctionEnded
			auction.EndedAt = &now
			if err := s.putAuction(handle, auction); err != nil {
				return PlaceBidResult{}, err
			}
		}
		return PlaceBidResult{Accepted: false, State: model.AuctionEnded}, nil
	}
	if auction.State != model.AuctionStarted {
		return PlaceBidResult{}, fmt.Errorf("bid on %s auction %s: %w", auction.State, resource, marketerrors.ErrInvalidState)
	}

	metaHandle := derive.BidderMeta(handle, bidder)
	var meta model.BidderMetadata
	metaExists := true
	if err := s.ledger.Get(metaHandle, repository.KindBidderMetadata, &meta); err != nil {
		if !errors.Is(err, marketerrors.ErrAccountNotFound) {
			return PlaceBidResult{}, err
		}
		metaExists = false
	}
	if metaExists && !meta.Cancelled {
		return PlaceBidResult{}, fmt.Errorf("bidder %s on %s: %w", bidder, resource, marketerrors.ErrBidAlreadyActive)
	}

	// A bid above the instant sale price pays only the instant sale price.
	instantSale := false
	if extended.InstantSalePrice != nil && amount >= *extended.InstantSalePrice {
		amount = *extended.InstantSalePrice
		instantSale = true
	}

	if minimum := auction.PriceFloor.EffectiveMinimum(); amount < minimum {
		return PlaceBidResult{}, fmt.Errorf("bid %d below floor %d: %w", amount, minimum, marketerrors.ErrBidTooSmall)
	}
	if extended.TickSize != nil && *extended.TickSize > 0 && amount%*extended.TickSize != 0 {
		return PlaceBidResult{}, fmt.Errorf("bid %d with tick %d: %w", amount, *extended.TickSize, marketerrors.ErrBidMustBeMultipleOfTick)
	}
	if extended.GapTickSizePercentage != nil {
		if beaten, ok := auction.BidState.BeatenBy(amount); ok {
			required := beaten.Amount + beaten.Amount*uint64(*extended.GapTickSizePercentage)/100
			if amount < required {
				return PlaceBidResult{}, fmt.Errorf("bid %d needs at least %d over %d: %w",
					amount, required, beaten.Amount, marketerrors.ErrGapBetweenBidsTooSmall)
			}
		}
	}

	balance, err := s.bank.Balance(bidderToken)
	if err != nil {
		return PlaceBidResult{}, err
	}
	if balance < amount {
		return PlaceBidResult{}, fmt.Errorf("bidder %s holds %d, bid %d: %w", bidder, balance, amount, marketerrors.ErrBalanceTooLow)
	}

	pot, err := s.escrow.EnsurePot(handle, bidder, auction.TokenMint)
	if err != nil {
		return PlaceBidResult{}, err
	}
	if err := s.escrow.Deposit(pot, bidderToken, amount); err != nil {
		return PlaceBidResult{}, err
	}

	auction.BidState.PlaceBid(model.Bid{Bidder: bidder, Amount: amount})
	auction.LastBid = &now

	// Anti-snipe: an accepted bid inside the gap window pushes the cut-off
	// out to now plus the gap.
	if auction.EndAuctionAt != nil && auction.EndAuctionGap != nil &&
		now >= *auction.EndAuctionAt-*auction.EndAuctionGap {
		bumped := now + *auction.EndAuctionGap
		auction.EndAuctionAt = &bumped
	}

	if extended.TotalUncancelledBids+1 < extended.TotalUncancelledBids {
		return PlaceBidResult{}, fmt.Errorf("bid counter on %s: %w", resource, marketerrors.ErrNumericalOverflow)
	}
	extended.TotalUncancelledBids++

	// Instant sale ends the auction once every winner slot holds a bid at
	// the instant price.
	if instantSale {
		if lowest, ok := auction.BidState.LowestWinning(); ok &&
			auction.BidState.NumWinners() == auction.BidState.Max &&
			lowest >= *extended.InstantSalePrice {
			auction.State = model.AuctionEnded
			auction.EndedAt = &now
		}
	}

	meta = model.BidderMetadata{
		Bidder:           bidder,
		Auction:          handle,
		LastBid:          amount,
		LastBidTimestamp: now,
		Cancelled:        false,
	}
	if metaExists {
		if err := s.ledger.Put(metaHandle, repository.KindBidderMetadata, meta); err != nil {
			return PlaceBidResult{}, err
		}
	} else {
		if err := s.ledger.Create(metaHandle, repository.KindBidderMetadata, meta); err != nil {
			return PlaceBidResult{}, err
		}
	}
	if err := s.ledger.Put(derive.Extended(resource), repository.KindAuctionExtended, extended); err != nil {
		return PlaceBidResult{}, err
	}
	if err := s.putAuction(handle, auction); err != nil {
		return PlaceBidResult{}, err
	}
	return PlaceBidResult{Accepted: true, Amount: amount, InstantSale: instantSale, State: auction.State}, nil
}

// CancelBid refunds the bidder's escrow and releases their slot. Winners of
// an ended auction cannot cancel, and a bid locked at the instant sale
// price cannot be walked back. Cancelling after the end leaves the frozen
// ranking untouched.
func (s *Service) CancelBid(resource, bidder, bidderToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return err
	}
	var extended model.AuctionExtended
	if err := s.ledger.Get(derive.Extended(resource), repository.KindAuctionExtended, &extended); err != nil {
		return err
	}

	metaHandle := derive.BidderMeta(handle, bidder)
	var meta model.BidderMetadata
	if err := s.ledger.Get(metaHandle, repository.KindBidderMetadata, &meta); err != nil {
		return err
	}
	if meta.Cancelled {
		return fmt.Errorf("bid by %s on %s already cancelled: %w", bidder, resource, marketerrors.ErrInvalidState)
	}

	now := s.now()
	ended := auction.Ended(now)
	if _, winning := auction.IsWinner(bidder); winning {
		if ended {
			return fmt.Errorf("winner %s cannot cancel on ended auction %s: %w", bidder, resource, marketerrors.ErrInvalidState)
		}
		if extended.InstantSalePrice != nil && meta.LastBid >= *extended.InstantSalePrice {
			return fmt.Errorf("bid at instant sale price on %s: %w", resource, marketerrors.ErrInvalidState)
		}
	}

	pot, err := s.escrow.Pot(handle, bidder)
	if err != nil {
		return err
	}
	if _, err := s.escrow.WithdrawAll(pot, bidderToken); err != nil {
		return err
	}

	if !ended {
		auction.BidState.CancelBid(bidder)
		if extended.TotalUncancelledBids == 0 {
			return fmt.Errorf("bid counter on %s: %w", resource, marketerrors.ErrNumericalOverflow)
		}
		extended.TotalUncancelledBids--
		if err := s.ledger.Put(derive.Extended(resource), repository.KindAuctionExtended, extended); err != nil {
			return err
		}
		if err := s.putAuction(handle, auction); err != nil {
			return err
		}
	}

	meta.Cancelled = true
	return s.ledger.Put(metaHandle, repository.KindBidderMetadata, meta)
}

// ClaimBid sweeps a winning bidder's escrow to the authority's destination
// account. The pot's emptied latch makes repeated claims no-ops.
func (s *Service) ClaimBid(resource, authority, bidder, destination string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, handle, err := s.getAuction(resource)
	if err != nil {
		return 0, err
	}
	if auction.Authority != authority {
		return 0, fmt.Errorf("claim on %s: %w", resource, marketerrors.ErrInvalidAuthority)
	}
	if !auction.Ended(s.now()) {
		return 0, fmt.Errorf("claim on %s: %w", resource, marketerrors.ErrAuctionHasNotEnded)
	}
	if _, ok := auction.IsWinner(bidder); !ok {
		return 0, fmt.Errorf("claim for %s on %s: %w", bidder, resource, marketerrors.ErrWinnerIndexNotFound)
	}
	pot, err := s.escrow.Pot(handle, bidder)
	if err != nil {
		return 0, err
	}
	return s.escrow.Sweep(handle, pot, destination)
}

// IsWinner returns the bidder's zero-based winner rank at the current time.
func (s *Service) IsWinner(resource, bidder string) (int, bool, error) {
	auction, _, err := s.getAuction(resource)
	if err != nil {
		return 0, false, err
	}
	rank, ok := auction.IsWinner(bidder)
	return rank, ok, nil
}

// GetAuction returns the auction record for a resource.
func (s *Service) GetAuction(resource string) (model.Auction, error) {
	auction, _, err := s.getAuction(resource)
	return auction, err
}

// GetExtended returns the extended data for a resource.
func (s *Service) GetExtended(resource string) (model.AuctionExtended, error) {
	var extended model.AuctionExtended
	err := s.ledger.Get(derive.Extended(resource), repository.KindAuctionExtended, &extended)
	return extended, err
}

func (s *Service) getAuction(resource string) (model.Auction, model.Handle, error) {
	handle := derive.Auction(resource)
	var auction model.Auction
	if err := s.ledger.Get(handle, repository.KindAuction, &auction); err != nil {
		return model.Auction{}, "", err
	}
	return auction, handle, nil
}

func (s *Service) putAuction(handle model.Handle, auction model.Auction) error {
	return s.ledger.Put(handle, repository.KindAuction, auction)
}
