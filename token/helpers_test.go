package token

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	ledgerAccount = "ft.test"
	owner         = "owner.test"
	initialSupply = 1000
)

func newEnv(t *testing.T) *sim.Environment {
	e, err := sim.New(storage.NewMemoryStore(), sim.Config{
		Account:         ledgerAccount,
		StorageByteCost: big.NewInt(10),
		Logger:          zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	return e
}

// newLedger returns environment with initialized ledger owned by owner.
func newLedger(t *testing.T) *sim.Environment {
	e := newEnv(t)

	_, err := e.Invoke(sim.Call{Caller: owner}, func(rt host.Runtime) error {
		return Initialize(rt, big.NewInt(initialSupply))
	})
	require.NoError(t, err)

	return e
}

func invoke(e *sim.Environment, caller string, deposit *big.Int, f func(rt host.Runtime) error) (*sim.Receipt, error) {
	return e.Invoke(sim.Call{Caller: caller, Deposit: deposit}, f)
}

func registrationCost(t *testing.T, e *sim.Environment) *big.Int {
	var cost *big.Int

	_, err := invoke(e, "viewer.test", nil, func(rt host.Runtime) (err error) {
		cost, err = StorageBalanceBounds(rt)
		return err
	})
	require.NoError(t, err)
	require.Positive(t, cost.Sign())

	return cost
}

// register funds the payer and registers the account paying deposit.
func register(t *testing.T, e *sim.Environment, payer, account string, deposit *big.Int) *StorageDepositResult {
	require.NoError(t, e.Fund(payer, deposit))

	var res *StorageDepositResult

	_, err := invoke(e, payer, deposit, func(rt host.Runtime) (err error) {
		res, err = StorageDeposit(rt, account)
		return err
	})
	require.NoError(t, err)

	return res
}

func balanceOf(t *testing.T, e *sim.Environment, account string) *big.Int {
	var bal *big.Int

	_, err := invoke(e, "viewer.test", nil, func(rt host.Runtime) (err error) {
		bal, err = BalanceOf(rt, account)
		return err
	})
	require.NoError(t, err)

	return bal
}

func requireBalance(t *testing.T, e *sim.Environment, account string, expected int64) {
	require.EqualValues(t, expected, balanceOf(t, e, account).Int64(), account)
}

func requireNotRegistered(t *testing.T, e *sim.Environment, account string) {
	_, err := invoke(e, "viewer.test", nil, func(rt host.Runtime) error {
		_, err := BalanceOf(rt, account)
		return err
	})
	require.ErrorIs(t, err, ledger.ErrNotRegistered)
}

// requireSupplyInvariant checks that total supply equals sum of all stored
// account balances.
func requireSupplyInvariant(t *testing.T, e *sim.Environment) {
	var supply *big.Int

	_, err := invoke(e, "viewer.test", nil, func(rt host.Runtime) (err error) {
		supply, err = TotalSupply(rt)
		return err
	})
	require.NoError(t, err)

	sum := new(big.Int)
	e.SeekStorage(ledger.AccountPrefix, func(k, v []byte) bool {
		_, acc, err := ledger.DecodeAccountItem(k, v)
		require.NoError(t, err)
		require.GreaterOrEqual(t, acc.Balance.Sign(), 0)

		sum.Add(sum, acc.Balance)
		return true
	})

	require.Zero(t, supply.Cmp(sum), "supply %s, sum of balances %s", supply, sum)
}

func eventNames(rec *sim.Receipt) []string {
	res := make([]string, 0, len(rec.Events))
	for i := range rec.Events {
		res = append(res, rec.Events[i].Name)
	}
	return res
}
