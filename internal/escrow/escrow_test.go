package escrow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/token"
)

func newTestService(t *testing.T) (*Service, *token.MemoryBank) {
	t.Helper()

	bank := token.NewMemoryBank()
	return NewService(repository.NewMemoryLedger(), bank), bank
}

func fund(t *testing.T, bank *token.MemoryBank, address, mint string, amount uint64) {
	t.Helper()

	require.NoError(t, bank.CreateAccount(address, address, mint))
	require.NoError(t, bank.MintTo(address, amount))
}

func TestEnsurePot(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	auction := derive.Auction("nft-1")

	pot, err := svc.EnsurePot(auction, "alice", "usd")
	require.NoError(t, err)
	require.Equal(t, "alice", pot.Bidder)
	require.Equal(t, auction, pot.Auction)
	require.False(t, pot.Emptied)

	// The pot token account exists and is owned by the auction.
	acc, err := bank.Account(pot.PotToken)
	require.NoError(t, err)
	require.Equal(t, string(auction), acc.Owner)
	require.Equal(t, "usd", acc.Mint)

	// A second call returns the same pot without minting a new account.
	again, err := svc.EnsurePot(auction, "alice", "usd")
	require.NoError(t, err)
	require.Equal(t, pot, again)
}

func TestPot_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Pot(derive.Auction("nft-1"), "nobody")
	require.ErrorIs(t, err, marketerrors.ErrBidderPotDoesNotExist)
}

func TestDepositAndTopUp(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "alice", "usd", 1_000)

	pot, err := svc.EnsurePot(derive.Auction("nft-1"), "alice", "usd")
	require.NoError(t, err)

	require.NoError(t, svc.Deposit(pot, "alice", 300))
	held, err := svc.Balance(pot)
	require.NoError(t, err)
	require.Equal(t, uint64(300), held)

	// TopUp transfers only the shortfall.
	require.NoError(t, svc.TopUp(pot, "alice", 500))
	held, err = svc.Balance(pot)
	require.NoError(t, err)
	require.Equal(t, uint64(500), held)

	walletBalance, err := bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(500), walletBalance)

	// A pot at or above target moves nothing.
	require.NoError(t, svc.TopUp(pot, "alice", 400))
	held, err = svc.Balance(pot)
	require.NoError(t, err)
	require.Equal(t, uint64(500), held)

	err = svc.Deposit(pot, "alice", 600)
	require.ErrorIs(t, err, marketerrors.ErrInsufficientFunds)
}

func TestWithdrawAll(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "alice", "usd", 1_000)

	pot, err := svc.EnsurePot(derive.Auction("nft-1"), "alice", "usd")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(pot, "alice", 700))

	moved, err := svc.WithdrawAll(pot, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(700), moved)

	walletBalance, err := bank.Balance("alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), walletBalance)

	// Draining an empty pot succeeds and moves nothing.
	moved, err = svc.WithdrawAll(pot, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(0), moved)
}

func TestSweep_LatchesEmptied(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "alice", "usd", 1_000)
	require.NoError(t, bank.CreateAccount("seller", "seller", "usd"))

	auction := derive.Auction("nft-1")
	pot, err := svc.EnsurePot(auction, "alice", "usd")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(pot, "alice", 800))

	moved, err := svc.Sweep(auction, pot, "seller")
	require.NoError(t, err)
	require.Equal(t, uint64(800), moved)

	// The latch persists, so a reload shows the emptied pot and a repeat
	// sweep moves nothing even after new funds arrive.
	pot, err = svc.Pot(auction, "alice")
	require.NoError(t, err)
	require.True(t, pot.Emptied)

	require.NoError(t, bank.Transfer("alice", pot.PotToken, 100))
	moved, err = svc.Sweep(auction, pot, "seller")
	require.NoError(t, err)
	require.Equal(t, uint64(0), moved)

	sellerBalance, err := bank.Balance("seller")
	require.NoError(t, err)
	require.Equal(t, uint64(800), sellerBalance)
}

func TestEnsurePot_RejectsForeignRecord(t *testing.T) {
	t.Parallel()

	bank := token.NewMemoryBank()
	ledger := repository.NewMemoryLedger()
	svc := NewService(ledger, bank)

	auction := derive.Auction("nft-1")

	// A pot record stored under alice's handle but naming another bidder is
	// rejected rather than reused.
	forged := model.BidderPot{PotToken: "pot-x", Bidder: "mallory", Auction: auction}
	require.NoError(t, ledger.Create(derive.BidderPot(auction, "alice"), repository.KindBidderPot, forged))

	_, err := svc.EnsurePot(auction, "alice", "usd")
	require.ErrorIs(t, err, marketerrors.ErrBidderPotTokenMismatch)
}

func TestDepositPublic(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "wallet-a", "usd", 1_000)
	fund(t, bank, "wallet-b", "usd", 1_000)

	terms := Terms{Wallet: "buyer", TokenMint: "nft-1", TreasuryMint: "usd", Price: 600, Size: 1}

	esc, err := svc.DepositPublic(terms, "wallet-a")
	require.NoError(t, err)
	require.Empty(t, esc.TokenAccount)

	held, err := bank.Balance(esc.EscrowToken)
	require.NoError(t, err)
	require.Equal(t, uint64(600), held)

	// Re-depositing a fully funded escrow moves nothing, including from a
	// different account of the same buyer.
	_, err = svc.DepositPublic(terms, "wallet-b")
	require.NoError(t, err)

	balance, err := bank.Balance("wallet-b")
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), balance)
}

func TestDepositPrivate_BoundToAccount(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "acct-1", "usd", 1_000)
	fund(t, bank, "acct-2", "usd", 1_000)

	terms := Terms{Wallet: "buyer", TokenMint: "nft-1", TreasuryMint: "usd", Price: 400, Size: 1}

	first, err := svc.DepositPrivate(terms, "acct-1")
	require.NoError(t, err)
	require.Equal(t, "acct-1", first.TokenAccount)

	// The same terms funded from another account land in a distinct escrow.
	second, err := svc.DepositPrivate(terms, "acct-2")
	require.NoError(t, err)
	require.NotEqual(t, first.EscrowToken, second.EscrowToken)

	for _, esc := range []BuyerEscrow{first, second} {
		held, err := bank.Balance(esc.EscrowToken)
		require.NoError(t, err)
		require.Equal(t, uint64(400), held)
	}
}

func TestWithdrawEscrow(t *testing.T) {
	t.Parallel()

	svc, bank := newTestService(t)
	fund(t, bank, "wallet-a", "usd", 1_000)

	terms := Terms{Wallet: "buyer", TokenMint: "nft-1", TreasuryMint: "usd", Price: 600, Size: 1}
	esc, err := svc.DepositPublic(terms, "wallet-a")
	require.NoError(t, err)

	require.NoError(t, svc.WithdrawEscrow(terms, "wallet-a", 250))

	held, err := bank.Balance(esc.EscrowToken)
	require.NoError(t, err)
	require.Equal(t, uint64(350), held)

	err = svc.WithdrawEscrow(terms, "wallet-a", 1_000)
	require.ErrorIs(t, err, marketerrors.ErrInsufficientFunds)
}
