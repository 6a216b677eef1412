package token

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/ledger"
)

// StorageDepositResult describes outcome of StorageDeposit.
type StorageDepositResult struct {
	// Human-readable outcome.
	Message string
	// Set if the account has been registered by the call.
	Registered bool
	// Set if the account had been registered before the call.
	AlreadyRegistered bool
	// Escrow charged for the registration, zero unless Registered.
	Escrow *big.Int
	// Native currency returned to the payer.
	Refund *big.Int
	// Registration cost, zero if the account is already registered.
	Required *big.Int
}

// Err returns ErrInsufficientDeposit if the account was neither registered
// before nor by the call.
func (r *StorageDepositResult) Err() error {
	if r.Registered || r.AlreadyRegistered {
		return nil
	}
	return fmt.Errorf("%w, required %s", ErrInsufficientDeposit, r.Required)
}

// StorageBalance describes storage escrow of the account.
type StorageBalance struct {
	Registrant string
	Escrow     *big.Int
}

// StorageDeposit registers the account paying for its storage with the
// attached deposit. Empty accountID means the caller. Whole deposit is
// refunded if the account is already registered or the deposit is less than
// the registration cost, otherwise only the excess is refunded.
func StorageDeposit(rt host.Runtime, accountID string) (*StorageDepositResult, error) {
	l, err := open(rt)
	if err != nil {
		return nil, err
	}

	var (
		payer   = rt.Caller()
		payment = rt.AttachedDeposit()
		res     = &StorageDepositResult{
			Escrow:   new(big.Int),
			Refund:   new(big.Int),
			Required: new(big.Int),
		}
	)

	if accountID == "" {
		accountID = payer
	}

	err = ledger.ValidateAccountID(accountID)
	if err != nil {
		return nil, err
	}

	if l.IsRegistered(accountID) {
		res.AlreadyRegistered = true

		if payment.Sign() > 0 {
			err = refund(rt, payer, payment)
			if err != nil {
				return nil, err
			}

			res.Refund = payment
			res.Message = "Account is already registered, deposit refunded to predecessor"

			return res, nil
		}

		res.Message = "Account is already registered"

		return res, nil
	}

	cost := l.EstimateRegistrationCost(rt.StorageByteCost())
	res.Required = cost

	if payment.Cmp(cost) < 0 {
		err = refund(rt, payer, payment)
		if err != nil {
			return nil, err
		}

		res.Refund = payment
		res.Message = fmt.Sprintf("Not enough attached deposit to cover storage cost, required %s", cost)

		return res, nil
	}

	err = l.Register(payer, accountID, cost)
	if err != nil {
		return nil, err
	}

	excess := new(big.Int).Sub(payment, cost)
	if excess.Sign() > 0 {
		rt.Log(fmt.Sprintf("Storage registration refunding %s to %s", excess, payer))

		err = refund(rt, payer, excess)
		if err != nil {
			return nil, err
		}
	}

	notifyRegister(rt, accountID, payer, cost)

	res.Registered = true
	res.Escrow = cost
	res.Refund = excess
	res.Message = fmt.Sprintf("Account %s registered with storage deposit of %s", accountID, cost)

	return res, nil
}

// StorageUnregister removes the caller account and refunds its escrow to the
// registrant. It returns false if the caller is not registered. The account
// must have zero balance.
func StorageUnregister(rt host.Runtime) (bool, error) {
	l, err := open(rt)
	if err != nil {
		return false, err
	}

	account := rt.Caller()
	if !l.IsRegistered(account) {
		return false, nil
	}

	err = closeAccount(rt, l, account)
	if err != nil {
		return false, err
	}

	return true, nil
}

// StorageBalanceOf returns escrow of the account or nil if the account is not
// registered.
func StorageBalanceOf(rt host.Runtime, accountID string) (*StorageBalance, error) {
	l, err := open(rt)
	if err != nil {
		return nil, err
	}

	if !l.IsRegistered(accountID) {
		return nil, nil
	}

	acc, err := l.Registration(accountID)
	if err != nil {
		return nil, err
	}

	return &StorageBalance{
		Registrant: acc.Registrant,
		Escrow:     acc.Escrow,
	}, nil
}

// StorageBalanceBounds returns deposit required to register an account.
func StorageBalanceBounds(rt host.Runtime) (*big.Int, error) {
	l, err := open(rt)
	if err != nil {
		return nil, err
	}

	return l.EstimateRegistrationCost(rt.StorageByteCost()), nil
}

// closeAccount removes the account and returns its escrow to the registrant.
func closeAccount(rt host.Runtime, l *ledger.Ledger, account string) error {
	registrant, escrow, err := l.Unregister(account)
	if err != nil {
		return err
	}

	err = refund(rt, registrant, escrow)
	if err != nil {
		return err
	}

	notifyUnregister(rt, account, registrant, escrow)
	rt.Log(fmt.Sprintf("Account %s closed, %s refunded to %s", account, escrow, registrant))

	return nil
}
