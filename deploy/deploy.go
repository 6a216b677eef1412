package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/token"
	"go.uber.org/zap"
)

// Environment groups services of the host environment required for the
// ledger deployment.
type Environment interface {
	// Account returns identity of the ledger account.
	Account() string

	// Invoke runs f as a single committed call.
	Invoke(call sim.Call, f func(host.Runtime) error) (*sim.Receipt, error)

	// View runs f as a read-only call.
	View(caller string, f func(host.Runtime) error) error
}

// AccountPrm groups parameters of the account registered at deployment.
type AccountPrm struct {
	// Account to register.
	ID string
	// Payer of the account storage, defaults to the account itself. Must own
	// enough native currency to cover the registration cost.
	Sponsor string
}

// Prm groups all parameters of the ledger deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Host environment to deploy the ledger in.
	Environment Environment

	// Initial owner of the whole token supply.
	Owner string

	// Initial token supply.
	TotalSupply *big.Int

	// Accounts to be registered right after initialization.
	Accounts []AccountPrm
}

// Deploy initializes the ledger in the given environment and registers
// configured accounts.
//
// Deploy is idempotent: if the ledger is already initialized, initialization
// is skipped, and already registered accounts are not paid for again.
// Deploy aborts by context between the stages.
func Deploy(ctx context.Context, prm Prm) error {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	if prm.Owner == "" {
		return errors.New("missing ledger owner")
	}

	l := prm.Logger.With(zap.String("ledger", prm.Environment.Account()))

	deployed, err := isDeployed(prm.Environment, prm.Owner)
	if err != nil {
		return fmt.Errorf("check ledger state: %w", err)
	}

	if deployed {
		l.Info("ledger is already initialized, skip")
	} else {
		l.Info("ledger is not initialized yet, initializing...",
			zap.String("owner", prm.Owner), zap.Stringer("total supply", prm.TotalSupply))

		_, err = prm.Environment.Invoke(sim.Call{Caller: prm.Owner}, func(rt host.Runtime) error {
			return token.Initialize(rt, prm.TotalSupply)
		})
		if err != nil {
			return fmt.Errorf("initialize ledger: %w", err)
		}

		l.Info("ledger successfully initialized")
	}

	for i := range prm.Accounts {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for account registration: %w", ctx.Err())
		default:
		}

		err = registerAccount(l, prm.Environment, prm.Accounts[i])
		if err != nil {
			return fmt.Errorf("register account #%d '%s': %w", i, prm.Accounts[i].ID, err)
		}
	}

	return nil
}

func isDeployed(env Environment, caller string) (bool, error) {
	err := env.View(caller, func(rt host.Runtime) error {
		_, err := token.TotalSupply(rt)
		return err
	})
	if err == nil {
		return true, nil
	}

	if errors.Is(err, token.ErrNotInitialized) {
		return false, nil
	}

	return false, err
}

func registerAccount(l *zap.Logger, env Environment, prm AccountPrm) error {
	sponsor := prm.Sponsor
	if sponsor == "" {
		sponsor = prm.ID
	}

	l = l.With(zap.String("account", prm.ID), zap.String("sponsor", sponsor))

	var (
		cost       *big.Int
		registered bool
	)

	err := env.View(sponsor, func(rt host.Runtime) (err error) {
		sb, err := token.StorageBalanceOf(rt, prm.ID)
		if err != nil {
			return err
		}

		registered = sb != nil

		cost, err = token.StorageBalanceBounds(rt)
		return err
	})
	if err != nil {
		return fmt.Errorf("get registration cost: %w", err)
	}

	if registered {
		l.Info("account is already registered, skip")
		return nil
	}

	l.Info("registering account...", zap.Stringer("cost", cost))

	var res *token.StorageDepositResult

	_, err = env.Invoke(sim.Call{Caller: sponsor, Deposit: cost}, func(rt host.Runtime) (err error) {
		res, err = token.StorageDeposit(rt, prm.ID)
		return err
	})
	if err != nil {
		return err
	}

	err = res.Err()
	if err != nil {
		return err
	}

	l.Info("account successfully registered", zap.Stringer("escrow", res.Escrow))

	return nil
}
