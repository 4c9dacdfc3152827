package marketerrors

import "errors"

// Ledger/derivation-level errors
var (
	ErrAccountNotFound   = errors.New("account record not found")
	ErrDerivedKeyInvalid = errors.New("account failed handle re-derivation")
	ErrDataTypeMismatch  = errors.New("account record has unexpected type")
)

// Auction state machine errors
var (
	ErrInvalidState             = errors.New("operation not allowed in current state")
	ErrAuctionTransitionInvalid = errors.New("invalid auction state transition")
	ErrInvalidAuthority         = errors.New("caller is not the auction authority")
	ErrBidAlreadyActive         = errors.New("bidder already has an active bid")
	ErrBidTooSmall              = errors.New("bid below the price floor")
	ErrBalanceTooLow            = errors.New("bidder balance below bid amount")
	ErrBidMustBeMultipleOfTick  = errors.New("bid is not a multiple of the tick size")
	ErrGapBetweenBidsTooSmall   = errors.New("bid does not clear the gap tick threshold")
	ErrInvalidGapTickSize       = errors.New("gap tick size percentage above 100")
	ErrIncorrectMint            = errors.New("token mint does not match auction")
	ErrMetadataInvalid          = errors.New("prize metadata failed validation")
	ErrBidderPotDoesNotExist    = errors.New("bidder pot has not been created")
	ErrBidderPotTokenMismatch   = errors.New("bidder pot token account mismatch")
	ErrBadPriceFloorReveal      = errors.New("revealed price does not match blinded floor commitment")
)

// Escrow errors
var (
	ErrTokenTransferFailed        = errors.New("token transfer failed")
	ErrInsufficientFunds          = errors.New("insufficient funds in source account")
	ErrDelegateShouldBeNone       = errors.New("token account must not have a delegate")
	ErrCloseAuthorityShouldBeNone = errors.New("token account must not have a close authority")
)

// Auction manager / settlement errors
var (
	ErrAlreadyValidated               = errors.New("safety deposit box already validated")
	ErrBoxNotUsedInAuction            = errors.New("safety deposit box not referenced by any winning config")
	ErrNotEnoughTokensToSupplyWinners = errors.New("safety deposit store balance below amount promised to winners")
	ErrSafetyDepositIndexMismatch     = errors.New("safety deposit box order does not match winning config")
	ErrPrizeAlreadyClaimed            = errors.New("prize already claimed for this winner rank")
	ErrBidAlreadyRedeemed             = errors.New("bid already redeemed")
	ErrNotAllBidsClaimed              = errors.New("not all winning bids have been claimed")
	ErrAuctionHasNotEnded             = errors.New("auction has not ended")
	ErrWinnerIndexNotFound            = errors.New("winner index not covered by any amount range")
	ErrAcceptPaymentMismatch          = errors.New("accept payment account does not match manager")
	ErrManagerAuctionMismatch         = errors.New("auction does not belong to this manager")
	ErrManagerVaultMismatch           = errors.New("vault does not belong to this manager")
	ErrVaultNotCombined               = errors.New("vault is not in combined state")
	ErrNotValidated                   = errors.New("auction manager has unvalidated safety deposit boxes")
)

// Arithmetic errors
var (
	ErrNumericalOverflow = errors.New("numerical overflow in checked arithmetic")
)
