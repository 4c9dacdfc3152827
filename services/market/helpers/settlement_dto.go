package helpers

// Request/Response DTOs for the manager and settlement endpoints.
type RegisterVaultRequest struct {
	ID        string          `json:"id" binding:"required"`
	Authority string          `json:"authority" binding:"required"`
	Boxes     []VaultBoxEntry `json:"boxes" binding:"required,dive"`
}

type VaultBoxEntry struct {
	Order     uint8  `json:"order"`
	TokenMint string `json:"token_mint" binding:"required"`
	Store     string `json:"store" binding:"required"`
}

type RegisterMetadataRequest struct {
	Mint                 string         `json:"mint" binding:"required"`
	UpdateAuthority      string         `json:"update_authority" binding:"required"`
	SellerFeeBasisPoints uint16         `json:"seller_fee_basis_points"`
	Creators             []CreatorEntry `json:"creators"`
}

type CreatorEntry struct {
	Address string `json:"address" binding:"required"`
	Share   uint8  `json:"share"`
}

type HandleResponse struct {
	Handle string `json:"handle"`
}

type InitManagerRequest struct {
	Resource      string              `json:"resource" binding:"required"`
	Vault         string              `json:"vault" binding:"required"`
	Authority     string              `json:"authority" binding:"required"`
	AcceptPayment string              `json:"accept_payment" binding:"required"`
	WinningSlots  []WinningSlotEntry  `json:"winning_slots" binding:"required,dive"`
	Participation *ParticipationEntry `json:"participation"`
}

type WinningSlotEntry struct {
	Items []PrizeItemEntry `json:"items" binding:"required,dive"`
}

type PrizeItemEntry struct {
	BoxIndex uint8  `json:"box_index"`
	Amount   uint64 `json:"amount" binding:"required,gt=0"`
	// "token_only_transfer" (default), "full_rights_transfer" or
	// "printing_v1".
	Type string `json:"type"`
}

type ParticipationEntry struct {
	BoxIndex              uint8   `json:"box_index"`
	FixedPrice            *uint64 `json:"fixed_price"`
	WinnersCanParticipate bool    `json:"winners_can_participate"`
}

type ValidateBoxRequest struct {
	Order             uint8  `json:"order"`
	MetadataAuthority string `json:"metadata_authority"`
}

type StartViaManagerRequest struct {
	Authority string `json:"authority" binding:"required"`
}

type ManagerClaimBidRequest struct {
	Bidder string `json:"bidder" binding:"required"`
}

type RedeemBidRequest struct {
	Bidder      string `json:"bidder" binding:"required"`
	Order       uint8  `json:"order"`
	Destination string `json:"destination" binding:"required"`
	// Same values as PrizeItemEntry.Type; picks the redemption path.
	Type string `json:"type"`
}

type WithdrawMasterEditionRequest struct {
	Authority   string `json:"authority" binding:"required"`
	Order       uint8  `json:"order"`
	Destination string `json:"destination" binding:"required"`
}

type PayoutRequest struct {
	Recipient   string `json:"recipient" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

type ManagerResponse struct {
	Handle        string `json:"handle"`
	Auction       string `json:"auction"`
	Authority     string `json:"authority"`
	AcceptPayment string `json:"accept_payment"`
	Status        string `json:"status"`
	// Winning bids swept into the accept-payment account so far.
	BidsPushed uint64 `json:"bids_pushed"`
}
