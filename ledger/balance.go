package ledger

import (
	"fmt"
	"math/big"
)

// BalanceOf returns token balance of the account.
func (l *Ledger) BalanceOf(account string) (*big.Int, error) {
	acc, err := l.getAccount(account)
	if err != nil {
		return nil, err
	}

	return acc.Balance, nil
}

// Deposit adds tokens to the account and to the total supply. Zero amount
// is allowed and changes nothing.
func (l *Ledger) Deposit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}

	acc, err := l.getAccount(account)
	if err != nil {
		return err
	}

	if amount.Sign() == 0 {
		return nil
	}

	acc.Balance.Add(acc.Balance, amount)

	err = l.putAccount(account, acc)
	if err != nil {
		return err
	}

	l.setSupply(new(big.Int).Add(l.supply, amount))

	return nil
}

// Withdraw subtracts tokens from the account and from the total supply.
// Nothing is changed if any of them would become negative.
func (l *Ledger) Withdraw(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}

	acc, err := l.getAccount(account)
	if err != nil {
		return err
	}

	newBalance := new(big.Int).Sub(acc.Balance, amount)
	if newBalance.Sign() < 0 {
		return fmt.Errorf("%w: %s has %s, need %s", ErrInsufficientBalance, account, acc.Balance, amount)
	}

	newSupply := new(big.Int).Sub(l.supply, amount)
	if newSupply.Sign() < 0 {
		return fmt.Errorf("%w: supply %s, withdrawal %s", ErrSupplyUnderflow, l.supply, amount)
	}

	acc.Balance = newBalance

	err = l.putAccount(account, acc)
	if err != nil {
		return err
	}

	l.setSupply(newSupply)

	return nil
}
