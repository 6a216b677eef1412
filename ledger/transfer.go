package ledger

import (
	"fmt"
	"math/big"
)

// Transfer moves tokens from sender to receiver. Both accounts must be
// registered. It reports whether the sender balance became zero, removal
// of such account is up to the caller.
//
// Transfer is not atomic by itself: if deposit to receiver fails, the
// sender is already debited, so the whole call must be reverted.
func (l *Ledger) Transfer(sender, receiver string, amount *big.Int) (bool, error) {
	if sender == receiver {
		return false, ErrSelfTransfer
	}

	if amount == nil || amount.Sign() <= 0 {
		return false, fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}

	err := l.Withdraw(sender, amount)
	if err != nil {
		return false, fmt.Errorf("withdraw from sender: %w", err)
	}

	err = l.Deposit(receiver, amount)
	if err != nil {
		return false, fmt.Errorf("deposit to receiver: %w", err)
	}

	remaining, err := l.BalanceOf(sender)
	if err != nil {
		return false, err
	}

	return remaining.Sign() == 0, nil
}
