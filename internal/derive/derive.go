// Package derive computes the deterministic handles that address every
// ledger record. A record's handle is a hash of its role and identifying
// seeds, so callers can both locate records and verify that a handle they
// were given really belongs to the record it claims to.
package derive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
)

// Role prefixes keep handles for different record kinds disjoint even when
// their remaining seeds collide.
const (
	roleAuction       = "auction"
	roleExtended      = "auction_extended"
	roleBidderMeta    = "bidder_metadata"
	roleBidderPot     = "bidder_pot"
	roleEscrow        = "escrow"
	roleManager       = "auction_manager"
	roleValidation    = "validation_ticket"
	roleRedemption    = "bid_redemption"
	rolePrizeTracking = "prize_tracking"
	rolePayout        = "payout_ticket"
	roleOrigAuthority = "original_authority"
)

// Handle hashes a role and its seeds into a record address.
func Handle(role string, seeds ...string) models.Handle {
	h := sha256.Sum256([]byte(role + "|" + strings.Join(seeds, "|")))
	return models.Handle(hex.EncodeToString(h[:]))
}

// Assert verifies that a caller-supplied handle matches its claimed seeds.
func Assert(got models.Handle, role string, seeds ...string) error {
	if want := Handle(role, seeds...); got != want {
		return fmt.Errorf("handle %q does not match %s seeds: %w", got, role, marketerrors.ErrDerivedKeyInvalid)
	}
	return nil
}

// Auction derives the handle for an auction over a resource.
func Auction(resource string) models.Handle {
	return Handle(roleAuction, resource)
}

// Extended derives the handle for an auction's extended data.
func Extended(resource string) models.Handle {
	return Handle(roleExtended, resource)
}

// BidderMeta derives the handle for a bidder's metadata on an auction.
func BidderMeta(auction models.Handle, bidder string) models.Handle {
	return Handle(roleBidderMeta, string(auction), bidder)
}

// BidderPot derives the handle for a bidder's escrow pot on an auction.
func BidderPot(auction models.Handle, bidder string) models.Handle {
	return Handle(roleBidderPot, string(auction), bidder)
}

// EscrowPublic derives a marketplace escrow handle from the trade terms
// alone, so any token account of the buyer can fund it.
func EscrowPublic(wallet, tokenMint, treasuryMint string, price, size uint64) models.Handle {
	return Handle(roleEscrow, wallet, tokenMint, treasuryMint,
		fmt.Sprintf("%d", price), fmt.Sprintf("%d", size))
}

// EscrowPrivate derives a marketplace escrow handle bound to one specific
// funding token account.
func EscrowPrivate(wallet, tokenAccount, tokenMint, treasuryMint string, price, size uint64) models.Handle {
	return Handle(roleEscrow, wallet, tokenAccount, tokenMint, treasuryMint,
		fmt.Sprintf("%d", price), fmt.Sprintf("%d", size))
}

// Manager derives the handle for the manager of an auction.
func Manager(auction models.Handle) models.Handle {
	return Handle(roleManager, string(auction))
}

// Validation derives the handle for a box validation ticket.
func Validation(manager, box models.Handle) models.Handle {
	return Handle(roleValidation, string(manager), string(box))
}

// Redemption derives the handle for a winner's bid redemption ticket.
func Redemption(manager models.Handle, winnerIndex int) models.Handle {
	return Handle(roleRedemption, string(manager), fmt.Sprintf("%d", winnerIndex))
}

// RefundTicket derives the handle for a losing bidder's refund ticket.
func RefundTicket(manager models.Handle, bidder string) models.Handle {
	return Handle(roleRedemption, string(manager), "refund", bidder)
}

// PrizeTracking derives the handle for a prize tracking ticket.
func PrizeTracking(manager models.Handle, mint string) models.Handle {
	return Handle(rolePrizeTracking, string(manager), mint)
}

// Payout derives the handle for a payout ticket. The ticket is unique per
// (settlement source, winner slot, recipient) triple so each recipient's
// share is paid once per slot.
func Payout(manager models.Handle, winnerIndex int, recipient string) models.Handle {
	return Handle(rolePayout, string(manager), fmt.Sprintf("%d", winnerIndex), recipient)
}

// OriginalAuthority derives the handle remembering a metadata authority
// before a full rights transfer.
func OriginalAuthority(auction models.Handle, metadata models.Handle) models.Handle {
	return Handle(roleOrigAuthority, string(auction), string(metadata))
}

// FloorCommitment hashes a hidden price floor with a salt. The auctioneer
// publishes the commitment at creation and reveals price and salt at end.
func FloorCommitment(price uint64, salt string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", price, salt)))
	return hex.EncodeToString(h[:])
}
