package auctionService

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/escrow"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
)

type fixture struct {
	svc   *Service
	bank  *token.MemoryBank
	clock *atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledger := repository.NewMemoryLedger()
	bank := token.NewMemoryBank()
	esc := escrow.NewService(ledger, bank)

	clock := &atomic.Int64{}
	clock.Store(1_000)
	svc := NewServiceWithClock(ledger, esc, bank, clock.Load)
	return &fixture{svc: svc, bank: bank, clock: clock}
}

func (f *fixture) fund(t *testing.T, address string, amount uint64) {
	t.Helper()

	require.NoError(t, f.bank.CreateAccount(address, address, "usd"))
	require.NoError(t, f.bank.MintTo(address, amount))
}

func (f *fixture) createStarted(t *testing.T, args CreateAuctionArgs) {
	t.Helper()

	if args.Resource == "" {
		args.Resource = "nft-1"
	}
	if args.Authority == "" {
		args.Authority = "seller"
	}
	if args.TokenMint == "" {
		args.TokenMint = "usd"
	}
	if args.MaxWinners == 0 && !args.OpenEdition {
		args.MaxWinners = 1
	}
	_, err := f.svc.CreateAuction(args)
	require.NoError(t, err)
	require.NoError(t, f.svc.StartAuction(args.Resource, args.Authority))
}

func uint64Ptr(v uint64) *uint64 { return &v }
func int64Ptr(v int64) *int64    { return &v }
func uint8Ptr(v uint8) *uint8    { return &v }

func TestCreateAuction_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.CreateAuction(CreateAuctionArgs{
		Resource: "nft-1", Authority: "seller", TokenMint: "usd", MaxWinners: 1,
		GapTickSizePercentage: uint8Ptr(101),
	})
	require.ErrorIs(t, err, marketerrors.ErrInvalidGapTickSize)

	_, err = f.svc.CreateAuction(CreateAuctionArgs{
		Resource: "nft-1", Authority: "seller", TokenMint: "usd", MaxWinners: 1,
		PriceFloor: model.PriceFloor{Kind: model.PriceFloorBlinded},
	})
	require.ErrorIs(t, err, marketerrors.ErrBadPriceFloorReveal)

	_, err = f.svc.CreateAuction(CreateAuctionArgs{
		Resource: "nft-1", Authority: "seller", TokenMint: "usd", MaxWinners: 1,
	})
	require.NoError(t, err)

	// A resource hosts at most one auction.
	_, err = f.svc.CreateAuction(CreateAuctionArgs{
		Resource: "nft-1", Authority: "seller", TokenMint: "usd", MaxWinners: 1,
	})
	require.ErrorIs(t, err, marketerrors.ErrDataTypeMismatch)
}

func TestStartAuction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.CreateAuction(CreateAuctionArgs{
		Resource: "nft-1", Authority: "seller", TokenMint: "usd", MaxWinners: 1,
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.StartAuction("nft-1", "mallory"), marketerrors.ErrInvalidAuthority)
	require.NoError(t, f.svc.StartAuction("nft-1", "seller"))
	require.ErrorIs(t, f.svc.StartAuction("nft-1", "seller"), marketerrors.ErrAuctionTransitionInvalid)

	err = f.svc.StartAuction("missing", "seller")
	require.ErrorIs(t, err, marketerrors.ErrAccountNotFound)
}

func TestPlaceBid_RankingAndEscrow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.fund(t, "bob", 1_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 2})

	res, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, uint64(300), res.Amount)

	_, err = f.svc.PlaceBid("nft-1", "bob", "bob", 500)
	require.NoError(t, err)

	// Escrow conservation: each bidder's wallet drops by exactly the bid.
	aliceBalance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(700), aliceBalance)
	bobBalance, err := f.bank.Balance("bob")
	require.NoError(t, err)
	require.Equal(t, uint64(500), bobBalance)

	rank, ok, err := f.svc.IsWinner("nft-1", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, rank)
	rank, ok, err = f.svc.IsWinner("nft-1", "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, rank)

	extended, err := f.svc.GetExtended("nft-1")
	require.NoError(t, err)
	require.Equal(t, uint64(2), extended.TotalUncancelledBids)
}

func TestPlaceBid_OneActiveBidPerBidder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 2})

	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)

	_, err = f.svc.PlaceBid("nft-1", "alice", "alice", 400)
	require.ErrorIs(t, err, marketerrors.ErrBidAlreadyActive)

	// Cancel releases the slot; the rebid escrows the new amount.
	require.NoError(t, f.svc.CancelBid("nft-1", "alice", "alice"))
	_, err = f.svc.PlaceBid("nft-1", "alice", "alice", 400)
	require.NoError(t, err)

	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(600), balance)
}

func TestPlaceBid_FloorAndTicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    CreateAuctionArgs
		prebid  uint64
		amount  uint64
		wantErr error
	}{
		{
			name:    "below_minimum_floor",
			args:    CreateAuctionArgs{PriceFloor: model.PriceFloor{Kind: model.PriceFloorMinimum, Minimum: 500}},
			amount:  499,
			wantErr: marketerrors.ErrBidTooSmall,
		},
		{
			name:   "at_minimum_floor",
			args:   CreateAuctionArgs{PriceFloor: model.PriceFloor{Kind: model.PriceFloorMinimum, Minimum: 500}},
			amount: 500,
		},
		{
			name:    "off_tick",
			args:    CreateAuctionArgs{TickSize: uint64Ptr(100)},
			amount:  250,
			wantErr: marketerrors.ErrBidMustBeMultipleOfTick,
		},
		{
			name:   "on_tick",
			args:   CreateAuctionArgs{TickSize: uint64Ptr(100)},
			amount: 300,
		},
		{
			// 5% over 400 is 420; 410 falls short.
			name:    "gap_tick_too_small",
			args:    CreateAuctionArgs{MaxWinners: 2, GapTickSizePercentage: uint8Ptr(5)},
			prebid:  400,
			amount:  410,
			wantErr: marketerrors.ErrGapBetweenBidsTooSmall,
		},
		{
			name:   "gap_tick_met",
			args:   CreateAuctionArgs{MaxWinners: 2, GapTickSizePercentage: uint8Ptr(5)},
			prebid: 400,
			amount: 420,
		},
		{
			// The gap tick only binds bids that beat an existing one.
			name:   "gap_tick_ignores_lower_bid",
			args:   CreateAuctionArgs{MaxWinners: 2, GapTickSizePercentage: uint8Ptr(5)},
			prebid: 400,
			amount: 100,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.fund(t, "alice", 10_000)
			f.fund(t, "bob", 10_000)
			f.createStarted(t, tc.args)

			if tc.prebid > 0 {
				_, err := f.svc.PlaceBid("nft-1", "bob", "bob", tc.prebid)
				require.NoError(t, err)
			}

			_, err := f.svc.PlaceBid("nft-1", "alice", "alice", tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				// A rejected bid escrows nothing.
				balance, berr := f.bank.Balance("alice")
				require.NoError(t, berr)
				require.Equal(t, uint64(10_000), balance)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPlaceBid_BalanceTooLow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 100)
	f.createStarted(t, CreateAuctionArgs{})

	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 200)
	require.ErrorIs(t, err, marketerrors.ErrBalanceTooLow)
}

func TestPlaceBid_LateBidEndsAuction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.createStarted(t, CreateAuctionArgs{EndAuctionAt: int64Ptr(2_000)})

	f.clock.Store(2_001)
	res, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, model.AuctionEnded, res.State)

	// The late bid escrowed nothing and the end is persisted.
	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), balance)

	auction, err := f.svc.GetAuction("nft-1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionEnded, auction.State)
	require.NotNil(t, auction.EndedAt)
}

func TestPlaceBid_AntiSnipeExtendsDeadline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.fund(t, "bob", 1_000)
	f.createStarted(t, CreateAuctionArgs{
		MaxWinners:    2,
		EndAuctionAt:  int64Ptr(2_000),
		EndAuctionGap: int64Ptr(300),
	})

	// A bid before the gap window leaves the cut-off alone.
	f.clock.Store(1_500)
	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 100)
	require.NoError(t, err)

	auction, err := f.svc.GetAuction("nft-1")
	require.NoError(t, err)
	require.Equal(t, int64(2_000), *auction.EndAuctionAt)

	// A bid inside the window pushes the cut-off to bid time plus gap.
	f.clock.Store(1_900)
	_, err = f.svc.PlaceBid("nft-1", "bob", "bob", 200)
	require.NoError(t, err)

	auction, err = f.svc.GetAuction("nft-1")
	require.NoError(t, err)
	require.Equal(t, int64(2_200), *auction.EndAuctionAt)
}

func TestPlaceBid_InstantSale(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 10_000)
	f.fund(t, "bob", 10_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 2, InstantSalePrice: uint64Ptr(1_000)})

	// An overbid is clamped to the instant sale price.
	res, err := f.svc.PlaceBid("nft-1", "alice", "alice", 5_000)
	require.NoError(t, err)
	require.True(t, res.InstantSale)
	require.Equal(t, uint64(1_000), res.Amount)
	// One of two winner slots filled, the auction keeps running.
	require.Equal(t, model.AuctionStarted, res.State)

	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(9_000), balance)

	// The second instant-price bid fills the window and ends the auction.
	res, err = f.svc.PlaceBid("nft-1", "bob", "bob", 1_000)
	require.NoError(t, err)
	require.True(t, res.InstantSale)
	require.Equal(t, model.AuctionEnded, res.State)

	auction, err := f.svc.GetAuction("nft-1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionEnded, auction.State)
}

func TestCancelBid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.fund(t, "bob", 1_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 1, EndAuctionAt: int64Ptr(2_000)})

	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("nft-1", "bob", "bob", 500)
	require.NoError(t, err)

	// The outbid loser cancels and is made whole.
	require.NoError(t, f.svc.CancelBid("nft-1", "alice", "alice"))
	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), balance)

	require.ErrorIs(t, f.svc.CancelBid("nft-1", "alice", "alice"), marketerrors.ErrInvalidState)

	// The winner of an ended auction is locked in.
	f.clock.Store(2_001)
	require.ErrorIs(t, f.svc.CancelBid("nft-1", "bob", "bob"), marketerrors.ErrInvalidState)

	extended, err := f.svc.GetExtended("nft-1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), extended.TotalUncancelledBids)
}

func TestCancelBid_InstantSaleLocksWinner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 10_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 2, InstantSalePrice: uint64Ptr(1_000)})

	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 1_000)
	require.NoError(t, err)

	// The auction is still running, but a bid at the instant price is final.
	require.ErrorIs(t, f.svc.CancelBid("nft-1", "alice", "alice"), marketerrors.ErrInvalidState)
}

func TestCancelBid_AfterEndKeepsRankingFrozen(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.fund(t, "bob", 1_000)
	f.fund(t, "carol", 1_000)
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 2, EndAuctionAt: int64Ptr(2_000)})

	// Alice's 300 is pushed out of the two-slot window by carol's 400.
	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("nft-1", "bob", "bob", 500)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("nft-1", "carol", "carol", 400)
	require.NoError(t, err)

	f.clock.Store(2_001)

	// Winners cannot walk away once the auction ends.
	err = f.svc.CancelBid("nft-1", "bob", "bob")
	require.ErrorIs(t, err, marketerrors.ErrInvalidState)

	// The outbid loser may still cancel for a refund, but the frozen
	// ranking and the bid counter are untouched.
	require.NoError(t, f.svc.CancelBid("nft-1", "alice", "alice"))
	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), balance)

	_, ok, err := f.svc.IsWinner("nft-1", "alice")
	require.NoError(t, err)
	require.False(t, ok)

	rank, ok, err := f.svc.IsWinner("nft-1", "carol")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, rank)

	extended, err := f.svc.GetExtended("nft-1")
	require.NoError(t, err)
	require.Equal(t, uint64(3), extended.TotalUncancelledBids)
}

func TestClaimBid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.fund(t, "bob", 1_000)
	require.NoError(t, f.bank.CreateAccount("payout", "seller", "usd"))
	f.createStarted(t, CreateAuctionArgs{MaxWinners: 1})

	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("nft-1", "bob", "bob", 500)
	require.NoError(t, err)

	_, err = f.svc.ClaimBid("nft-1", "seller", "bob", "payout")
	require.ErrorIs(t, err, marketerrors.ErrAuctionHasNotEnded)

	require.NoError(t, f.svc.EndAuction("nft-1", "seller", nil))

	_, err = f.svc.ClaimBid("nft-1", "mallory", "bob", "payout")
	require.ErrorIs(t, err, marketerrors.ErrInvalidAuthority)
	_, err = f.svc.ClaimBid("nft-1", "seller", "alice", "payout")
	require.ErrorIs(t, err, marketerrors.ErrWinnerIndexNotFound)

	moved, err := f.svc.ClaimBid("nft-1", "seller", "bob", "payout")
	require.NoError(t, err)
	require.Equal(t, uint64(500), moved)

	// The emptied latch makes the repeat claim a no-op.
	moved, err = f.svc.ClaimBid("nft-1", "seller", "bob", "payout")
	require.NoError(t, err)
	require.Equal(t, uint64(0), moved)

	balance, err := f.bank.Balance("payout")
	require.NoError(t, err)
	require.Equal(t, uint64(500), balance)
}

func TestEndAuction_BlindedReveal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.createStarted(t, CreateAuctionArgs{
		MaxWinners: 1,
		PriceFloor: model.PriceFloor{
			Kind:       model.PriceFloorBlinded,
			Commitment: derive.FloorCommitment(500, "pepper"),
		},
	})

	// A blinded floor does not gate bids before the reveal.
	_, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.EndAuction("nft-1", "seller", nil), marketerrors.ErrBadPriceFloorReveal)
	require.ErrorIs(t, f.svc.EndAuction("nft-1", "seller", &FloorReveal{Price: 400, Salt: "pepper"}),
		marketerrors.ErrBadPriceFloorReveal)

	require.NoError(t, f.svc.EndAuction("nft-1", "seller", &FloorReveal{Price: 500, Salt: "pepper"}))

	// The revealed minimum filters the under-floor bid out of the winners.
	_, ok, err := f.svc.IsWinner("nft-1", "alice")
	require.NoError(t, err)
	require.False(t, ok)

	auction, err := f.svc.GetAuction("nft-1")
	require.NoError(t, err)
	require.Equal(t, model.PriceFloorMinimum, auction.PriceFloor.Kind)
	require.Equal(t, uint64(500), auction.PriceFloor.Minimum)

	// Ending again is a no-op.
	require.NoError(t, f.svc.EndAuction("nft-1", "seller", nil))
}

func TestSetAuthority(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.createStarted(t, CreateAuctionArgs{})

	require.ErrorIs(t, f.svc.SetAuthority("nft-1", "mallory", "bob"), marketerrors.ErrInvalidAuthority)
	require.NoError(t, f.svc.SetAuthority("nft-1", "seller", "manager"))

	// The old authority is out.
	require.ErrorIs(t, f.svc.EndAuction("nft-1", "seller", nil), marketerrors.ErrInvalidAuthority)
	require.NoError(t, f.svc.EndAuction("nft-1", "manager", nil))
}

func TestOpenEdition_NoWinners(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fund(t, "alice", 1_000)
	f.createStarted(t, CreateAuctionArgs{OpenEdition: true})

	res, err := f.svc.PlaceBid("nft-1", "alice", "alice", 300)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	// Funds are escrowed even though no ranked winner exists.
	balance, err := f.bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(700), balance)

	_, ok, err := f.svc.IsWinner("nft-1", "alice")
	require.NoError(t, err)
	require.False(t, ok)
}
