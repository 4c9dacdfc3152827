package helpers

// Request/Response DTOs
type CreateAuctionRequest struct {
	Resource    string `json:"resource" binding:"required"`
	Authority   string `json:"authority" binding:"required"`
	TokenMint   string `json:"token_mint" binding:"required"`
	MaxWinners  int    `json:"max_winners" binding:"required_without=OpenEdition,omitempty,gt=0"`
	OpenEdition bool   `json:"open_edition"`

	// Price floor: "none", "minimum" or "blinded".
	PriceFloorKind  string `json:"price_floor_kind"`
	PriceFloor      uint64 `json:"price_floor"`
	FloorCommitment string `json:"floor_commitment"`

	EndAuctionAt          *int64  `json:"end_auction_at"`
	EndAuctionGap         *int64  `json:"end_auction_gap"`
	TickSize              *uint64 `json:"tick_size"`
	GapTickSizePercentage *uint8  `json:"gap_tick_size_percentage"`
	InstantSalePrice      *uint64 `json:"instant_sale_price"`
	Name                  string  `json:"name"`
}

type CreateAuctionResponse struct {
	Handle   string `json:"handle"`
	Resource string `json:"resource"`
}

type StartAuctionRequest struct {
	Authority string `json:"authority" binding:"required"`
}

type EndAuctionRequest struct {
	Authority   string  `json:"authority" binding:"required"`
	RevealPrice *uint64 `json:"reveal_price"`
	RevealSalt  string  `json:"reveal_salt"`
}

type SetAuthorityRequest struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next" binding:"required"`
}

type PlaceBidRequest struct {
	Bidder      string `json:"bidder" binding:"required"`
	BidderToken string `json:"bidder_token" binding:"required"`
	Amount      uint64 `json:"amount" binding:"required,gt=0"`
}

type PlaceBidResponse struct {
	Accepted    bool   `json:"accepted"`
	Amount      uint64 `json:"amount"`
	InstantSale bool   `json:"instant_sale"`
	State       string `json:"state"`
}

type CancelBidRequest struct {
	Bidder      string `json:"bidder" binding:"required"`
	BidderToken string `json:"bidder_token" binding:"required"`
}

type ClaimBidRequest struct {
	Authority   string `json:"authority" binding:"required"`
	Bidder      string `json:"bidder" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

type ClaimBidResponse struct {
	Amount uint64 `json:"amount"`
}

type WinnerResponse struct {
	Bidder string `json:"bidder"`
	Rank   int    `json:"rank"`
	Winner bool   `json:"winner"`
}

type AuctionResponse struct {
	Resource     string     `json:"resource"`
	Authority    string     `json:"authority"`
	TokenMint    string     `json:"token_mint"`
	State        string     `json:"state"`
	EndAuctionAt *int64     `json:"end_auction_at,omitempty"`
	EndedAt      *int64     `json:"ended_at,omitempty"`
	Bids         []BidEntry `json:"bids"`
	MaxWinners   int        `json:"max_winners"`
	OpenEdition  bool       `json:"open_edition"`
}

type BidEntry struct {
	Bidder string `json:"bidder"`
	Amount uint64 `json:"amount"`
}
