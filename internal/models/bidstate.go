package models

// Bid is one (bidder, amount) entry in the ranked bid list.
type Bid struct {
	Bidder string `json:"bidder"`
	Amount uint64 `json:"amount"`
}

// BidState holds the ranked bids for an auction. Bids are kept sorted
// ascending by amount, so the top winner is the last element. On equal
// amounts the earlier bid sits later in the slice and therefore outranks
// the newer one.
type BidState struct {
	Bids []Bid `json:"bids"`
	// Maximum number of winners. Zero max with OpenEdition set means the
	// auction tracks participation without ranked winners.
	Max int `json:"max"`
	// Open-edition auctions accept any bid meeting the floor and never
	// produce ranked winners.
	OpenEdition bool `json:"open_edition"`
}

// NewBidState returns a capped bid state with the given winner limit.
func NewBidState(max int) BidState {
	return BidState{Bids: make([]Bid, 0, max), Max: max}
}

// NewOpenEditionBidState returns a bid state that records no winners.
func NewOpenEditionBidState() BidState {
	return BidState{OpenEdition: true}
}

// PlaceBid inserts a bid, keeping the slice sorted ascending. A new bid
// matching an existing amount loses the tie, so insertion happens before
// equal entries. The bid evicted from the winner window, if any, is
// returned so the caller can observe the dethroning.
func (b *BidState) PlaceBid(bid Bid) (evicted Bid, ok bool) {
	if b.OpenEdition {
		return Bid{}, false
	}
	// Walk from the top down to find the first entry the new bid beats.
	idx := len(b.Bids)
	for idx > 0 && b.Bids[idx-1].Amount >= bid.Amount {
		idx--
	}
	b.Bids = append(b.Bids, Bid{})
	copy(b.Bids[idx+1:], b.Bids[idx:])
	b.Bids[idx] = bid

	if b.Max > 0 && len(b.Bids) > b.Max {
		evicted = b.Bids[0]
		b.Bids = b.Bids[1:]
		return evicted, true
	}
	return Bid{}, false
}

// CancelBid removes the bidder's entry if present.
func (b *BidState) CancelBid(bidder string) bool {
	for i, bid := range b.Bids {
		if bid.Bidder == bidder {
			b.Bids = append(b.Bids[:i], b.Bids[i+1:]...)
			return true
		}
	}
	return false
}

// rank converts a slice position into a zero-based winner rank, top winner
// first.
func (b *BidState) rank(pos int) int {
	return len(b.Bids) - pos - 1
}

// IsWinner returns the bidder's winner rank. A bid below the minimum never
// wins even if it holds a slot.
func (b *BidState) IsWinner(bidder string, minimum uint64) (int, bool) {
	if b.OpenEdition || b.Max == 0 {
		return 0, false
	}
	for i := len(b.Bids) - 1; i >= 0; i-- {
		if b.Bids[i].Bidder != bidder {
			continue
		}
		if b.Bids[i].Amount < minimum {
			return 0, false
		}
		r := b.rank(i)
		if r < b.Max {
			return r, true
		}
		return 0, false
	}
	return 0, false
}

// WinnerAt returns the bid holding the given winner rank.
func (b *BidState) WinnerAt(rank int) (Bid, bool) {
	if b.OpenEdition || rank < 0 || rank >= b.Max {
		return Bid{}, false
	}
	pos := len(b.Bids) - rank - 1
	if pos < 0 {
		return Bid{}, false
	}
	return b.Bids[pos], true
}

// NumWinners counts the occupied winner slots.
func (b *BidState) NumWinners() int {
	if b.OpenEdition {
		return 0
	}
	if len(b.Bids) < b.Max {
		return len(b.Bids)
	}
	return b.Max
}

// Amount returns the bidder's current bid amount.
func (b *BidState) Amount(bidder string) (uint64, bool) {
	for _, bid := range b.Bids {
		if bid.Bidder == bidder {
			return bid.Amount, true
		}
	}
	return 0, false
}

// LowestWinning is the amount of the weakest winner, used for the instant
// sale cut-off check.
func (b *BidState) LowestWinning() (uint64, bool) {
	n := b.NumWinners()
	if n == 0 {
		return 0, false
	}
	bid, ok := b.WinnerAt(n - 1)
	if !ok {
		return 0, false
	}
	return bid.Amount, true
}

// BeatenBy returns the highest existing bid strictly below the given
// amount, the one a new bid at that amount would directly displace. Used
// for the gap tick check.
func (b *BidState) BeatenBy(amount uint64) (Bid, bool) {
	for i := len(b.Bids) - 1; i >= 0; i-- {
		if b.Bids[i].Amount < amount {
			return b.Bids[i], true
		}
	}
	return Bid{}, false
}
