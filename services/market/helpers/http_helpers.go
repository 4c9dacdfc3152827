package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrAccountNotFound),
		errors.Is(err, marketerrors.ErrBidderPotDoesNotExist):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, marketerrors.ErrWinnerIndexNotFound):
		return http.StatusNotFound, "bidder is not a winner"
	case errors.Is(err, marketerrors.ErrInvalidAuthority):
		return http.StatusForbidden, "authority mismatch"
	case errors.Is(err, marketerrors.ErrBidAlreadyActive):
		return http.StatusConflict, "bidder already has an active bid"
	case errors.Is(err, marketerrors.ErrBidTooSmall):
		return http.StatusConflict, "bid below price floor"
	case errors.Is(err, marketerrors.ErrGapBetweenBidsTooSmall):
		return http.StatusConflict, "bid does not clear the gap tick"
	case errors.Is(err, marketerrors.ErrBalanceTooLow):
		return http.StatusConflict, "bidder balance too low"
	case errors.Is(err, marketerrors.ErrBidMustBeMultipleOfTick),
		errors.Is(err, marketerrors.ErrInvalidGapTickSize),
		errors.Is(err, marketerrors.ErrBadPriceFloorReveal),
		errors.Is(err, marketerrors.ErrDerivedKeyInvalid),
		errors.Is(err, marketerrors.ErrDataTypeMismatch):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, marketerrors.ErrBidAlreadyRedeemed):
		return http.StatusConflict, "bid already redeemed"
	case errors.Is(err, marketerrors.ErrInvalidState),
		errors.Is(err, marketerrors.ErrAuctionTransitionInvalid),
		errors.Is(err, marketerrors.ErrAuctionHasNotEnded),
		errors.Is(err, marketerrors.ErrAlreadyValidated),
		errors.Is(err, marketerrors.ErrPrizeAlreadyClaimed),
		errors.Is(err, marketerrors.ErrNotAllBidsClaimed),
		errors.Is(err, marketerrors.ErrNotValidated),
		errors.Is(err, marketerrors.ErrVaultNotCombined):
		return http.StatusConflict, "operation not allowed in current state"
	case errors.Is(err, marketerrors.ErrBoxNotUsedInAuction),
		errors.Is(err, marketerrors.ErrSafetyDepositIndexMismatch),
		errors.Is(err, marketerrors.ErrIncorrectMint),
		errors.Is(err, marketerrors.ErrAcceptPaymentMismatch),
		errors.Is(err, marketerrors.ErrMetadataInvalid),
		errors.Is(err, marketerrors.ErrDelegateShouldBeNone),
		errors.Is(err, marketerrors.ErrCloseAuthorityShouldBeNone),
		errors.Is(err, marketerrors.ErrNotEnoughTokensToSupplyWinners):
		return http.StatusBadRequest, "invalid settlement configuration"
	case errors.Is(err, marketerrors.ErrInsufficientFunds),
		errors.Is(err, marketerrors.ErrTokenTransferFailed):
		return http.StatusConflict, "token transfer failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
