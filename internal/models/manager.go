package models

// AuctionManagerStatus is the forward-only manager lifecycle.
type AuctionManagerStatus uint8

const (
	ManagerInitialized AuctionManagerStatus = iota
	ManagerValidated
	ManagerRunning
	ManagerDisbursing
	ManagerFinished
)

func (s AuctionManagerStatus) String() string {
	switch s {
	case ManagerInitialized:
		return "initialized"
	case ManagerValidated:
		return "validated"
	case ManagerRunning:
		return "running"
	case ManagerDisbursing:
		return "disbursing"
	case ManagerFinished:
		return "finished"
	}
	return "unknown"
}

// WinningConfigType determines how a prize moves to its winner.
type WinningConfigType uint8

const (
	// TokenOnlyTransfer moves tokens out of the box without touching
	// metadata authority.
	TokenOnlyTransfer WinningConfigType = iota
	// FullRightsTransfer moves the token and hands over the metadata update
	// authority.
	FullRightsTransfer
	// PrintingV1 gives the winner a printing token to mint editions with.
	PrintingV1
	// Participation mints a participation edition to anyone who bid.
	Participation
)

func (t WinningConfigType) String() string {
	switch t {
	case TokenOnlyTransfer:
		return "token_only_transfer"
	case FullRightsTransfer:
		return "full_rights_transfer"
	case PrintingV1:
		return "printing_v1"
	case Participation:
		return "participation"
	}
	return "unknown"
}

// WinningConfigItem describes one prize inside a winning slot.
type WinningConfigItem struct {
	SafetyDepositBoxIndex uint8             `json:"safety_deposit_box_index"`
	Amount                uint64            `json:"amount"`
	WinningConfigType     WinningConfigType `json:"winning_config_type"`
}

// WinningConfig is the set of prizes handed to one winner rank.
type WinningConfig struct {
	Items []WinningConfigItem `json:"items"`
}

// WinningConfigStateItem latches redemption progress for one prize.
type WinningConfigStateItem struct {
	// Set when a primary sale has been recorded on the prize metadata.
	PrimarySaleHappened bool `json:"primary_sale_happened"`
	// Set once the winner has redeemed this prize.
	Claimed bool `json:"claimed"`
}

// WinningConfigState mirrors a WinningConfig with per-prize latches.
type WinningConfigState struct {
	Items []WinningConfigStateItem `json:"items"`
	// Set once the winner's escrowed payment has been swept into the
	// accept-payment account.
	MoneyPushedToAcceptPayment bool `json:"money_pushed_to_accept_payment"`
}

// ParticipationConfig describes the consolation prize open to non-winners.
type ParticipationConfig struct {
	SafetyDepositBoxIndex uint8   `json:"safety_deposit_box_index"`
	FixedPrice            *uint64 `json:"fixed_price,omitempty"`
	// Winners also receive the participation edition when set.
	WinnersCanParticipate bool `json:"winners_can_participate"`
}

// ParticipationState tracks participation redemption totals.
type ParticipationState struct {
	CollectedToAcceptPayment uint64 `json:"collected_to_accept_payment"`
	PrimarySaleHappened      bool   `json:"primary_sale_happened"`
}

// AuctionManager orchestrates an auction over a vault of prizes and routes
// settlement money into the accept-payment account.
type AuctionManager struct {
	Auction   Handle `json:"auction"`
	Vault     Handle `json:"vault"`
	Authority string `json:"authority"`
	// Token account all winning bids are swept into.
	AcceptPayment string               `json:"accept_payment"`
	Status        AuctionManagerStatus `json:"status"`

	WinningConfigs      []WinningConfig      `json:"winning_configs"`
	WinningConfigStates []WinningConfigState `json:"winning_config_states"`

	ParticipationConfig *ParticipationConfig `json:"participation_config,omitempty"`
	ParticipationState  *ParticipationState  `json:"participation_state,omitempty"`

	// Boxes validated so far; the manager flips to Validated when this
	// reaches the number of distinct boxes used by the configs.
	ItemsValidated uint64 `json:"items_validated"`
	// Winning bids swept so far; the manager flips to Disbursing on the
	// first sweep and Finished when all are in.
	BidsPushedToAcceptPayment uint64 `json:"bids_pushed_to_accept_payment"`
}

// DistinctBoxesUsed counts the safety deposit boxes referenced by any
// winning or participation config.
func (m *AuctionManager) DistinctBoxesUsed() uint64 {
	seen := make(map[uint8]bool)
	for _, wc := range m.WinningConfigs {
		for _, item := range wc.Items {
			seen[item.SafetyDepositBoxIndex] = true
		}
	}
	if m.ParticipationConfig != nil {
		seen[m.ParticipationConfig.SafetyDepositBoxIndex] = true
	}
	return uint64(len(seen))
}

// BoxUsedInConfigs reports whether any config references the box index.
func (m *AuctionManager) BoxUsedInConfigs(index uint8) bool {
	for _, wc := range m.WinningConfigs {
		for _, item := range wc.Items {
			if item.SafetyDepositBoxIndex == index {
				return true
			}
		}
	}
	return m.ParticipationConfig != nil && m.ParticipationConfig.SafetyDepositBoxIndex == index
}

// TokensNeededForBox sums the token amount every winner draws from one box.
func (m *AuctionManager) TokensNeededForBox(index uint8) uint64 {
	var total uint64
	for _, wc := range m.WinningConfigs {
		for _, item := range wc.Items {
			if item.SafetyDepositBoxIndex == index {
				total += item.Amount
			}
		}
	}
	return total
}

// VaultState is the vault lifecycle; prizes can only be auctioned from a
// combined vault.
type VaultState uint8

const (
	VaultInactive VaultState = iota
	VaultActive
	VaultCombined
	VaultDeactivated
)

// Vault is a locked collection of safety deposit boxes.
type Vault struct {
	ID        Handle             `json:"id"`
	Authority string             `json:"authority"`
	State     VaultState         `json:"state"`
	Boxes     []SafetyDepositBox `json:"boxes"`
}

// Box returns the safety deposit box at the given order index.
func (v *Vault) Box(order uint8) (SafetyDepositBox, bool) {
	for _, b := range v.Boxes {
		if b.Order == order {
			return b, true
		}
	}
	return SafetyDepositBox{}, false
}

// SafetyDepositBox is one prize slot inside a vault.
type SafetyDepositBox struct {
	Vault Handle `json:"vault"`
	// Position within the vault.
	Order uint8 `json:"order"`
	// Mint of the token held inside.
	TokenMint string `json:"token_mint"`
	// Token account holding the prize.
	Store string `json:"store"`
}

// Creator is one royalty recipient on a piece of metadata.
type Creator struct {
	Address string `json:"address"`
	// Percentage share of the royalty, summing to 100 across creators.
	Share uint8 `json:"share"`
}

// Metadata describes a prize token, including its royalty schedule.
type Metadata struct {
	Mint            string `json:"mint"`
	UpdateAuthority string `json:"update_authority"`
	// Once a primary sale happened, later sales pay royalties instead of
	// the full creator split.
	PrimarySaleHappened bool `json:"primary_sale_happened"`
	// Royalty rate in basis points.
	SellerFeeBasisPoints uint16    `json:"seller_fee_basis_points"`
	Creators             []Creator `json:"creators,omitempty"`
}

// SafetyDepositValidationTicket is a one-time latch that a box passed
// validation.
type SafetyDepositValidationTicket struct {
	Manager Handle `json:"manager"`
	Box     Handle `json:"box"`
}

// BidRedemptionTicket latches which redemptions a winning bid has consumed.
type BidRedemptionTicket struct {
	Manager Handle `json:"manager"`
	// Winner rank the ticket covers.
	WinnerIndex int `json:"winner_index"`
	// Set when the ranked prize items were redeemed.
	ItemsRedeemed bool `json:"items_redeemed"`
	// Set when the participation edition was redeemed.
	ParticipationRedeemed bool `json:"participation_redeemed"`
	// Set when a losing bid's escrow was refunded.
	BidRedeemed bool `json:"bid_redeemed"`
}

// PrizeTrackingTicket tracks printed editions for one master edition prize.
type PrizeTrackingTicket struct {
	Manager Handle `json:"manager"`
	Mint    string `json:"mint"`
	// Edition supply at the time the first print happened.
	SupplySnapshot uint64 `json:"supply_snapshot"`
	// Total prints all winners are expected to make.
	ExpectedRedemptions uint64 `json:"expected_redemptions"`
	// Prints made so far.
	Redemptions uint64 `json:"redemptions"`
}

// PayoutTicket records how much one recipient has been paid from one
// settlement source, making repeated payouts pay only the delta.
type PayoutTicket struct {
	Recipient  string `json:"recipient"`
	AmountPaid uint64 `json:"amount_paid"`
}

// OriginalAuthorityLookup remembers the metadata authority before a full
// rights transfer handed it to the manager, so unredeemed prizes can be
// returned.
type OriginalAuthorityLookup struct {
	Metadata          Handle `json:"metadata"`
	OriginalAuthority string `json:"original_authority"`
}
