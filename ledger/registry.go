package ledger

import (
	"errors"
	"fmt"
	"math/big"
)

// Register creates an empty account paid by the registrant with the given
// escrow.
func (l *Ledger) Register(registrant, account string, escrow *big.Int) error {
	err := ValidateAccountID(account)
	if err != nil {
		return err
	}

	if registrant == "" {
		return errors.New("missing registrant")
	}

	if escrow == nil || escrow.Sign() < 0 {
		return fmt.Errorf("%w: escrow %v", ErrNegativeAmount, escrow)
	}

	if l.IsRegistered(account) {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, account)
	}

	return l.putAccount(account, &Account{
		Balance:    new(big.Int),
		Registrant: registrant,
		Escrow:     new(big.Int).Set(escrow),
	})
}

// Unregister removes the account with zero balance and returns its
// registrant and escrow to be refunded.
func (l *Ledger) Unregister(account string) (string, *big.Int, error) {
	acc, err := l.getAccount(account)
	if err != nil {
		return "", nil, err
	}

	if acc.Balance.Sign() != 0 {
		return "", nil, fmt.Errorf("%w: %s holds %s", ErrNonZeroBalance, account, acc.Balance)
	}

	l.st.Delete(accountKey(account))

	return acc.Registrant, acc.Escrow, nil
}
