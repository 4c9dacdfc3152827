package models

// Handle is a deterministic, derivation-checked address for a ledger record.
// Records are located exclusively by handle, never by opaque pointers.
type Handle string

// AuctionState captures the forward-only auction lifecycle.
type AuctionState uint8

const (
	AuctionCreated AuctionState = iota
	AuctionStarted
	AuctionEnded
)

// Start transitions Created -> Started.
func (s AuctionState) Start() (AuctionState, bool) {
	if s == AuctionCreated {
		return AuctionStarted, true
	}
	return s, false
}

// End transitions Created/Started -> Ended. Ending an ended auction is
// reported as invalid; callers that want idempotent ends check first.
func (s AuctionState) End() (AuctionState, bool) {
	if s == AuctionCreated || s == AuctionStarted {
		return AuctionEnded, true
	}
	return s, false
}

func (s AuctionState) String() string {
	switch s {
	case AuctionCreated:
		return "created"
	case AuctionStarted:
		return "started"
	case AuctionEnded:
		return "ended"
	}
	return "unknown"
}

// PriceFloorKind discriminates the price floor variants.
type PriceFloorKind uint8

const (
	PriceFloorNone PriceFloorKind = iota
	PriceFloorMinimum
	PriceFloorBlinded
)

// PriceFloor is the minimum-bid rule for an auction. A blinded floor holds a
// hash commitment revealed when the auction ends.
type PriceFloor struct {
	Kind       PriceFloorKind `json:"kind"`
	Minimum    uint64         `json:"minimum,omitempty"`
	Commitment string         `json:"commitment,omitempty"`
}

// EffectiveMinimum is the floor applied to incoming bids. Blinded floors
// enforce nothing until revealed.
func (p PriceFloor) EffectiveMinimum() uint64 {
	if p.Kind == PriceFloorMinimum {
		return p.Minimum
	}
	return 0
}

// Auction is the root record for one resource being sold.
type Auction struct {
	// Resource being bid on.
	Resource string `json:"resource"`
	// Identity with permission to modify this auction.
	Authority string `json:"authority"`
	// Mint of the currency used to bid.
	TokenMint string `json:"token_mint"`
	// The time the last bid was placed, used for auction timing.
	LastBid *int64 `json:"last_bid,omitempty"`
	// Time the auction was actually ended at.
	EndedAt *int64 `json:"ended_at,omitempty"`
	// Cut-off point the auction is forced to end by. Extended by the
	// anti-snipe gap rule on late bids.
	EndAuctionAt *int64 `json:"end_auction_at,omitempty"`
	// Amount of time before the cut-off within which an accepted bid pushes
	// the cut-off out to now+gap.
	EndAuctionGap *int64 `json:"end_auction_gap,omitempty"`
	// Minimum price for any bid to meet.
	PriceFloor PriceFloor `json:"price_floor"`
	// Lifecycle state, forward-only.
	State AuctionState `json:"state"`
	// Ranked bids; each bidder may have one open bid at a time.
	BidState BidState `json:"bid_state"`
}

// Ended reports whether the auction has passed its cut-off at the given time.
// Expiry is evaluated lazily on every touch; there is no background timer.
func (a *Auction) Ended(now int64) bool {
	if a.State == AuctionEnded {
		return true
	}
	if a.EndAuctionAt == nil {
		return false
	}
	return now > *a.EndAuctionAt
}

// IsWinner returns the bidder's zero-based winner rank, if any.
func (a *Auction) IsWinner(bidder string) (int, bool) {
	return a.BidState.IsWinner(bidder, a.PriceFloor.EffectiveMinimum())
}

// AuctionExtended carries the auction fields that parameterize bid
// acceptance beyond the base record.
type AuctionExtended struct {
	// Total bids placed and not cancelled. Frozen at auction end.
	TotalUncancelledBids uint64 `json:"total_uncancelled_bids"`
	// Bids must be a multiple of this when set.
	TickSize *uint64 `json:"tick_size,omitempty"`
	// Minimum percentage increase over the beaten bid, in whole points.
	GapTickSizePercentage *uint8 `json:"gap_tick_size_percentage,omitempty"`
	// Bidding at or above this price buys the lot outright.
	InstantSalePrice *uint64 `json:"instant_sale_price,omitempty"`
	// Display name.
	Name string `json:"name,omitempty"`
}

// BidderMetadata is the per-(auction, bidder) log of the most recent action.
// It survives cancellation so replayed cancels and re-bids can be detected.
type BidderMetadata struct {
	Bidder           string `json:"bidder"`
	Auction          Handle `json:"auction"`
	LastBid          uint64 `json:"last_bid"`
	LastBidTimestamp int64  `json:"last_bid_timestamp"`
	// Whether the last bid the bidder made was cancelled.
	Cancelled bool `json:"cancelled"`
}

// BidderPot is the escrow descriptor for one (auction, bidder) pair. The
// descriptor persists after the underlying token account is emptied so
// claims stay idempotent.
type BidderPot struct {
	// Token account actually holding the escrowed funds.
	PotToken string `json:"pot_token"`
	// Originating bidder.
	Bidder string `json:"bidder"`
	// Auction this pot belongs to.
	Auction Handle `json:"auction"`
	// Set once the pot has been swept by a claim.
	Emptied bool `json:"emptied"`
}
