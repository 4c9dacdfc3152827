// Package token provides the fungible token accounts all payments move
// through. Balances are integers in the mint's smallest unit; transfers are
// all-or-nothing.
package token

import (
	"fmt"
	"sync"

	"auction-marketplace/internal/marketerrors"
)

// Account is one token balance owned by some identity.
type Account struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Amount  uint64 `json:"amount"`
	// A delegate may move funds on the owner's behalf. Settlement accounts
	// must not have one.
	Delegate string `json:"delegate,omitempty"`
	// CloseAuthority may close the account. Settlement accounts must not
	// have one.
	CloseAuthority string `json:"close_authority,omitempty"`
}

// Bank is the interface over token accounts.
type Bank interface {
	// CreateAccount opens an empty account. Creating an existing address
	// fails.
	CreateAccount(address, owner, mint string) error
	// Account returns a copy of the account at address.
	Account(address string) (Account, error)
	// Transfer moves amount between two accounts of the same mint.
	Transfer(from, to string, amount uint64) error
	// MintTo credits freshly minted tokens to an account.
	MintTo(address string, amount uint64) error
	// Burn debits tokens from an account without a receiving side.
	Burn(address string, amount uint64) error
	// Balance returns the current amount held at address.
	Balance(address string) (uint64, error)
	// SetOwner reassigns account ownership.
	SetOwner(address, owner string) error
}

// MemoryBank is a concurrency-safe in-memory Bank.
type MemoryBank struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryBank creates an empty bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{accounts: make(map[string]*Account)}
}

// CreateAccount opens an empty account at address.
func (b *MemoryBank) CreateAccount(address, owner, mint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.accounts[address]; ok {
		return fmt.Errorf("create account %s: already exists: %w", address, marketerrors.ErrTokenTransferFailed)
	}
	b.accounts[address] = &Account{Address: address, Owner: owner, Mint: mint}
	return nil
}

// Account returns a copy of the account at address.
func (b *MemoryBank) Account(address string) (Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.accounts[address]
	if !ok {
		return Account{}, fmt.Errorf("account %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	return *acc, nil
}

// Transfer moves amount from one account to another. Both must exist, share
// a mint, and the source must cover the amount.
func (b *MemoryBank) Transfer(from, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, ok := b.accounts[from]
	if !ok {
		return fmt.Errorf("transfer from %s: %w", from, marketerrors.ErrAccountNotFound)
	}
	dst, ok := b.accounts[to]
	if !ok {
		return fmt.Errorf("transfer to %s: %w", to, marketerrors.ErrAccountNotFound)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("transfer %s -> %s: mint mismatch %s vs %s: %w",
			from, to, src.Mint, dst.Mint, marketerrors.ErrTokenTransferFailed)
	}
	if src.Amount < amount {
		return fmt.Errorf("transfer %s -> %s: have %d want %d: %w",
			from, to, src.Amount, amount, marketerrors.ErrInsufficientFunds)
	}
	if dst.Amount+amount < dst.Amount {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, marketerrors.ErrNumericalOverflow)
	}
	src.Amount -= amount
	dst.Amount += amount
	return nil
}

// MintTo credits freshly minted tokens to an account.
func (b *MemoryBank) MintTo(address string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[address]
	if !ok {
		return fmt.Errorf("mint to %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	if acc.Amount+amount < acc.Amount {
		return fmt.Errorf("mint to %s: %w", address, marketerrors.ErrNumericalOverflow)
	}
	acc.Amount += amount
	return nil
}

// Burn debits tokens from an account.
func (b *MemoryBank) Burn(address string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[address]
	if !ok {
		return fmt.Errorf("burn from %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	if acc.Amount < amount {
		return fmt.Errorf("burn from %s: have %d want %d: %w",
			address, acc.Amount, amount, marketerrors.ErrInsufficientFunds)
	}
	acc.Amount -= amount
	return nil
}

// Balance returns the amount held at address.
func (b *MemoryBank) Balance(address string) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.accounts[address]
	if !ok {
		return 0, fmt.Errorf("balance of %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	return acc.Amount, nil
}

// SetOwner reassigns account ownership.
func (b *MemoryBank) SetOwner(address, owner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[address]
	if !ok {
		return fmt.Errorf("set owner of %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	acc.Owner = owner
	return nil
}

// SetDelegate assigns a spending delegate, used by tests to model accounts
// that fail settlement preconditions.
func (b *MemoryBank) SetDelegate(address, delegate string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[address]
	if !ok {
		return fmt.Errorf("set delegate of %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	acc.Delegate = delegate
	return nil
}

// SetCloseAuthority assigns a close authority.
func (b *MemoryBank) SetCloseAuthority(address, authority string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[address]
	if !ok {
		return fmt.Errorf("set close authority of %s: %w", address, marketerrors.ErrAccountNotFound)
	}
	acc.CloseAuthority = authority
	return nil
}
