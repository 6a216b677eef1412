package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/common"
	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/ledger"
)

var (
	// ErrInsufficientDeposit is reported when attached deposit does not cover
	// registration cost.
	ErrInsufficientDeposit = errors.New("not enough attached deposit to cover storage cost")

	// ErrRefundTransferFailed is returned when native currency can't be sent
	// back to the payer or registrant.
	ErrRefundTransferFailed = errors.New("refund transfer failed")

	// ErrAlreadyInitialized is returned by repeated Initialize.
	ErrAlreadyInitialized = errors.New("ledger is already initialized")

	// ErrNotInitialized is returned by all entry points before Initialize.
	ErrNotInitialized = errors.New("ledger is not initialized")
)

// Initialize creates the ledger with the total supply owned by the caller.
// The owner account is registered without escrow, so its removal refunds
// nothing.
func Initialize(rt host.Runtime, totalSupply *big.Int) error {
	st := rt.Storage()

	_, err := common.StoredVersion(st)
	if err == nil {
		return ErrAlreadyInitialized
	}

	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return fmt.Errorf("%w: total supply %s", ledger.ErrNonPositiveAmount, totalSupply)
	}

	var (
		owner = rt.Caller()
		l     = ledger.New(rt)
	)

	err = l.Register(owner, owner, new(big.Int))
	if err != nil {
		return fmt.Errorf("register owner: %w", err)
	}

	err = l.Deposit(owner, totalSupply)
	if err != nil {
		return fmt.Errorf("mint total supply: %w", err)
	}

	common.PutVersion(st)

	notifyTransfer(rt, "", owner, totalSupply, "")
	rt.Log("ledger initialized")

	return nil
}

// TotalSupply returns total amount of tokens.
func TotalSupply(rt host.Runtime) (*big.Int, error) {
	l, err := open(rt)
	if err != nil {
		return nil, err
	}

	return l.TotalSupply(), nil
}

// BalanceOf returns token balance of the registered account.
func BalanceOf(rt host.Runtime, accountID string) (*big.Int, error) {
	l, err := open(rt)
	if err != nil {
		return nil, err
	}

	return l.BalanceOf(accountID)
}

func open(rt host.Runtime) (*ledger.Ledger, error) {
	v, err := common.StoredVersion(rt.Storage())
	if err != nil {
		if errors.Is(err, common.ErrNoVersion) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}

	err = common.CheckVersion(v)
	if err != nil {
		return nil, err
	}

	return ledger.New(rt), nil
}

func refund(rt host.Runtime, to string, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	err := rt.Transfer(to, amount)
	if err != nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrRefundTransferFailed, amount, to, err)
	}

	return nil
}
