package ledger

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/ftledger/common"
	"github.com/stretchr/testify/require"
)

func TestLedger_Deposit(t *testing.T) {
	h := newMemHost()
	l := New(h)

	err := l.Deposit("alice", big.NewInt(10))
	require.ErrorIs(t, err, ErrNotRegistered)
	require.Zero(t, l.TotalSupply().Sign())

	require.NoError(t, l.Register("alice", "alice", big.NewInt(0)))

	require.NoError(t, l.Deposit("alice", big.NewInt(0)))
	require.Zero(t, l.TotalSupply().Sign())

	require.ErrorIs(t, l.Deposit("alice", big.NewInt(-1)), ErrNegativeAmount)
	require.ErrorIs(t, l.Deposit("alice", nil), ErrNegativeAmount)

	huge, _ := new(big.Int).SetString("1000000000000000000000000000000000000000000000000000000000000000000000000000000000", 10)
	require.NoError(t, l.Deposit("alice", huge))
	require.NoError(t, l.Deposit("alice", big.NewInt(5)))

	expected := new(big.Int).Add(huge, big.NewInt(5))

	bal, err := l.BalanceOf("alice")
	require.NoError(t, err)
	require.Zero(t, expected.Cmp(bal))
	require.Zero(t, expected.Cmp(l.TotalSupply()))
	require.Zero(t, h.sumBalances().Cmp(l.TotalSupply()))

	// supply is persisted
	require.Zero(t, expected.Cmp(New(h).TotalSupply()))
}

func TestLedger_Withdraw(t *testing.T) {
	h := newMemHost()
	l := New(h)

	require.ErrorIs(t, l.Withdraw("alice", big.NewInt(1)), ErrNotRegistered)

	require.NoError(t, l.Register("alice", "alice", big.NewInt(0)))
	require.NoError(t, l.Deposit("alice", big.NewInt(100)))

	require.ErrorIs(t, l.Withdraw("alice", big.NewInt(101)), ErrInsufficientBalance)
	require.ErrorIs(t, l.Withdraw("alice", big.NewInt(-1)), ErrNegativeAmount)
	require.ErrorIs(t, l.Withdraw("alice", nil), ErrNegativeAmount)

	require.NoError(t, l.Withdraw("alice", big.NewInt(0)))
	require.NoError(t, l.Withdraw("alice", big.NewInt(30)))

	bal, err := l.BalanceOf("alice")
	require.NoError(t, err)
	require.EqualValues(t, 70, bal.Int64())
	require.EqualValues(t, 70, l.TotalSupply().Int64())

	require.NoError(t, l.Withdraw("alice", big.NewInt(70)))
	bal, err = l.BalanceOf("alice")
	require.NoError(t, err)
	require.Zero(t, bal.Sign())
	require.True(t, l.IsRegistered("alice"))
}

func TestLedger_SupplyUnderflow(t *testing.T) {
	h := newMemHost()
	l := New(h)

	require.NoError(t, l.Register("alice", "alice", big.NewInt(0)))
	require.NoError(t, l.Deposit("alice", big.NewInt(100)))

	// break the counter behind the ledger back
	common.PutInteger(h, supplyKey, big.NewInt(10))
	l = New(h)

	require.ErrorIs(t, l.Withdraw("alice", big.NewInt(50)), ErrSupplyUnderflow)

	bal, err := l.BalanceOf("alice")
	require.NoError(t, err)
	require.EqualValues(t, 100, bal.Int64())
	require.EqualValues(t, 10, l.TotalSupply().Int64())
}
