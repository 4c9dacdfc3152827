package escrow

import (
	"errors"
	"fmt"

	"auction-marketplace/internal/derive"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"
)

// BuyerEscrow is a marketplace escrow account bound to one set of trade
// terms. Public escrows accept funding from any of the buyer's accounts;
// private escrows are derived from, and funded by, a single token account.
type BuyerEscrow struct {
	Wallet       string `json:"wallet"`
	TokenMint    string `json:"token_mint"`
	TreasuryMint string `json:"treasury_mint"`
	Price        uint64 `json:"price"`
	Size         uint64 `json:"size"`
	// Set on private escrows; the only account allowed to fund them.
	TokenAccount string `json:"token_account,omitempty"`
	// Token account holding the escrowed payment.
	EscrowToken string `json:"escrow_token"`
}

const kindBuyerEscrow = "buyer_escrow"

// Terms identify the trade a buyer escrow secures.
type Terms struct {
	Wallet       string
	TokenMint    string
	TreasuryMint string
	Price        uint64
	Size         uint64
}

// DepositPublic funds the buyer's public escrow for the given terms up to
// the full price. An escrow already holding the price moves nothing; a
// partially funded one transfers only the shortfall.
func (s *Service) DepositPublic(terms Terms, from string) (BuyerEscrow, error) {
	handle := derive.EscrowPublic(terms.Wallet, terms.TokenMint, terms.TreasuryMint, terms.Price, terms.Size)
	return s.depositHouse(handle, terms, "", from)
}

// DepositPrivate funds the buyer's private escrow for the given terms. The
// escrow handle is bound to the funding token account, so the same terms
// funded from a different account land in a different escrow.
func (s *Service) DepositPrivate(terms Terms, tokenAccount string) (BuyerEscrow, error) {
	handle := derive.EscrowPrivate(terms.Wallet, tokenAccount, terms.TokenMint, terms.TreasuryMint, terms.Price, terms.Size)
	return s.depositHouse(handle, terms, tokenAccount, tokenAccount)
}

func (s *Service) depositHouse(handle model.Handle, terms Terms, bound, from string) (BuyerEscrow, error) {
	var esc BuyerEscrow
	err := s.ledger.Get(handle, kindBuyerEscrow, &esc)
	switch {
	case errors.Is(err, marketerrors.ErrAccountNotFound):
		escrowToken := utils.NewAccountID("buyer-escrow")
		if err := s.bank.CreateAccount(escrowToken, string(handle), terms.TreasuryMint); err != nil {
			return BuyerEscrow{}, fmt.Errorf("create escrow token account: %w", err)
		}
		esc = BuyerEscrow{
			Wallet:       terms.Wallet,
			TokenMint:    terms.TokenMint,
			TreasuryMint: terms.TreasuryMint,
			Price:        terms.Price,
			Size:         terms.Size,
			TokenAccount: bound,
			EscrowToken:  escrowToken,
		}
		if err := s.ledger.Create(handle, kindBuyerEscrow, esc); err != nil {
			return BuyerEscrow{}, fmt.Errorf("create escrow record: %w", err)
		}
	case err != nil:
		return BuyerEscrow{}, err
	}

	if esc.TokenAccount != bound {
		return BuyerEscrow{}, fmt.Errorf("escrow %s bound to %q: %w",
			handle, esc.TokenAccount, marketerrors.ErrDerivedKeyInvalid)
	}

	held, err := s.bank.Balance(esc.EscrowToken)
	if err != nil {
		return BuyerEscrow{}, fmt.Errorf("escrow deposit: %w", err)
	}
	if held >= terms.Price {
		return esc, nil
	}
	if err := s.bank.Transfer(from, esc.EscrowToken, terms.Price-held); err != nil {
		return BuyerEscrow{}, fmt.Errorf("escrow deposit: %w", err)
	}
	return esc, nil
}

// WithdrawEscrow returns amount from the buyer's public escrow to the given
// account.
func (s *Service) WithdrawEscrow(terms Terms, to string, amount uint64) error {
	handle := derive.EscrowPublic(terms.Wallet, terms.TokenMint, terms.TreasuryMint, terms.Price, terms.Size)
	var esc BuyerEscrow
	if err := s.ledger.Get(handle, kindBuyerEscrow, &esc); err != nil {
		return err
	}
	if err := s.bank.Transfer(esc.EscrowToken, to, amount); err != nil {
		return fmt.Errorf("escrow withdraw: %w", err)
	}
	return nil
}
