package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTransferLedger(t *testing.T) (*memHost, *Ledger) {
	h := newMemHost()
	l := New(h)

	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, l.Register(id, id, big.NewInt(1)))
	}
	require.NoError(t, l.Deposit("alice", big.NewInt(100)))

	return h, l
}

func requireBalance(t *testing.T, l *Ledger, account string, expected int64) {
	bal, err := l.BalanceOf(account)
	require.NoError(t, err)
	require.EqualValues(t, expected, bal.Int64(), account)
}

func TestLedger_Transfer(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		_, l := newTransferLedger(t)

		_, err := l.Transfer("alice", "alice", big.NewInt(1))
		require.ErrorIs(t, err, ErrSelfTransfer)

		_, err = l.Transfer("alice", "bob", big.NewInt(0))
		require.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = l.Transfer("alice", "bob", big.NewInt(-5))
		require.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = l.Transfer("alice", "bob", nil)
		require.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = l.Transfer("alice", "bob", big.NewInt(101))
		require.ErrorIs(t, err, ErrInsufficientBalance)

		_, err = l.Transfer("carol", "bob", big.NewInt(1))
		require.ErrorIs(t, err, ErrNotRegistered)

		requireBalance(t, l, "alice", 100)
		requireBalance(t, l, "bob", 0)
		require.EqualValues(t, 100, l.TotalSupply().Int64())
	})

	t.Run("partial", func(t *testing.T) {
		h, l := newTransferLedger(t)

		emptied, err := l.Transfer("alice", "bob", big.NewInt(40))
		require.NoError(t, err)
		require.False(t, emptied)

		requireBalance(t, l, "alice", 60)
		requireBalance(t, l, "bob", 40)
		require.EqualValues(t, 100, l.TotalSupply().Int64())
		require.Zero(t, h.sumBalances().Cmp(l.TotalSupply()))
	})

	t.Run("emptied", func(t *testing.T) {
		h, l := newTransferLedger(t)

		emptied, err := l.Transfer("alice", "bob", big.NewInt(100))
		require.NoError(t, err)
		require.True(t, emptied)

		// removal is up to the caller
		require.True(t, l.IsRegistered("alice"))
		requireBalance(t, l, "alice", 0)
		requireBalance(t, l, "bob", 100)
		require.Zero(t, h.sumBalances().Cmp(l.TotalSupply()))
	})

	t.Run("unregistered receiver", func(t *testing.T) {
		_, l := newTransferLedger(t)

		_, err := l.Transfer("alice", "carol", big.NewInt(10))
		require.ErrorIs(t, err, ErrNotRegistered)

		// sender is debited, the call must be reverted by the host
		requireBalance(t, l, "alice", 90)
	})
}
