package repository

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
)

// Record kinds stored in the ledger. A handle resolves to exactly one kind;
// reading a handle as the wrong kind is an error, never a reinterpretation.
const (
	KindAuction           = "auction"
	KindAuctionExtended   = "auction_extended"
	KindBidderMetadata    = "bidder_metadata"
	KindBidderPot         = "bidder_pot"
	KindAuctionManager    = "auction_manager"
	KindVault             = "vault"
	KindMetadata          = "metadata"
	KindValidationTicket  = "validation_ticket"
	KindRedemptionTicket  = "redemption_ticket"
	KindPrizeTracking     = "prize_tracking"
	KindPayoutTicket      = "payout_ticket"
	KindOriginalAuthority = "original_authority"
)

// AccountLedger is the persistence interface for all protocol records,
// keyed by derived handle.
type AccountLedger interface {
	// Create stores a record under a fresh handle. Creating over an
	// existing handle fails so one-time latch records stay one-time.
	Create(handle model.Handle, kind string, v any) error
	// Get decodes the record at handle into out, enforcing the kind.
	Get(handle model.Handle, kind string, out any) error
	// Put overwrites an existing record of the same kind.
	Put(handle model.Handle, kind string, v any) error
	// Exists reports whether any record lives at handle.
	Exists(handle model.Handle) bool
}

type record struct {
	kind string
	data []byte
}

// MemoryLedger is a concurrency-safe in-memory AccountLedger. Records are
// held serialized, so readers always get an independent copy.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[model.Handle]record
	enc      cbor.EncMode
	dec      cbor.DecMode
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	enc, _ := cbor.CanonicalEncOptions().EncMode()
	dec, _ := cbor.DecOptions{}.DecMode()
	return &MemoryLedger{
		accounts: make(map[model.Handle]record),
		enc:      enc,
		dec:      dec,
	}
}

// Create stores a new record, failing if the handle is already occupied.
func (l *MemoryLedger) Create(handle model.Handle, kind string, v any) error {
	data, err := l.enc.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.accounts[handle]; ok {
		return fmt.Errorf("create %s at %s: handle already holds %s: %w",
			kind, handle, existing.kind, marketerrors.ErrDataTypeMismatch)
	}
	l.accounts[handle] = record{kind: kind, data: data}
	return nil
}

// Get decodes the record at handle into out.
func (l *MemoryLedger) Get(handle model.Handle, kind string, out any) error {
	l.mu.RLock()
	rec, ok := l.accounts[handle]
	l.mu.RUnlock()

	if !ok {
		return fmt.Errorf("get %s at %s: %w", kind, handle, marketerrors.ErrAccountNotFound)
	}
	if rec.kind != kind {
		return fmt.Errorf("get %s at %s: record is %s: %w", kind, handle, rec.kind, marketerrors.ErrDataTypeMismatch)
	}
	if err := l.dec.Unmarshal(rec.data, out); err != nil {
		return fmt.Errorf("decode %s record: %w", kind, err)
	}
	return nil
}

// Put overwrites the record at handle, which must already exist with the
// same kind.
func (l *MemoryLedger) Put(handle model.Handle, kind string, v any) error {
	data, err := l.enc.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.accounts[handle]
	if !ok {
		return fmt.Errorf("put %s at %s: %w", kind, handle, marketerrors.ErrAccountNotFound)
	}
	if rec.kind != kind {
		return fmt.Errorf("put %s at %s: record is %s: %w", kind, handle, rec.kind, marketerrors.ErrDataTypeMismatch)
	}
	l.accounts[handle] = record{kind: kind, data: data}
	return nil
}

// Exists reports whether a record lives at handle.
func (l *MemoryLedger) Exists(handle model.Handle) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts[handle]
	return ok
}
