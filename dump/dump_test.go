package dump

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/ledger"
	"github.com/nspcc-dev/ftledger/token"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const ledgerAccount = "ft.test"

func newEnv(t *testing.T) *sim.Environment {
	e, err := sim.New(storage.NewMemoryStore(), sim.Config{
		Account:         ledgerAccount,
		StorageByteCost: big.NewInt(1),
		Logger:          zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return e
}

// newLedger returns environment with the ledger owned by 'owner' and
// registered 'alice' holding 250 tokens.
func newLedger(t *testing.T) *sim.Environment {
	e := newEnv(t)

	_, err := e.Invoke(sim.Call{Caller: "owner"}, func(rt host.Runtime) error {
		return token.Initialize(rt, big.NewInt(1000))
	})
	require.NoError(t, err)

	require.NoError(t, e.Fund("alice", big.NewInt(100_000)))

	_, err = e.Invoke(sim.Call{Caller: "alice", Deposit: big.NewInt(100_000)}, func(rt host.Runtime) error {
		res, err := token.StorageDeposit(rt, "")
		if err != nil {
			return err
		}
		return res.Err()
	})
	require.NoError(t, err)

	_, err = e.Invoke(sim.Call{Caller: "owner"}, func(rt host.Runtime) error {
		return token.Transfer(rt, "alice", big.NewInt(250), "")
	})
	require.NoError(t, err)

	return e
}

func TestCreator(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCreator(dir, ID{Label: "with-sep"})
	require.Error(t, err)

	c, err := NewCreator(dir, ID{Label: "test", Height: 3})
	require.NoError(t, err)

	require.NoError(t, c.Section("a").Write([]byte{1}, []byte{2}))
	require.NoError(t, c.Section("b").Write([]byte{3}, nil))
	require.NoError(t, c.Section("a").Write([]byte{4}, []byte{5}))
	require.NoError(t, c.Flush(Header{Account: "x", Version: 1, TotalSupply: "10", StorageUsage: 7}))
	c.Close()

	_, err = NewCreator(dir, ID{Label: "test", Height: 3})
	require.ErrorIs(t, err, os.ErrExist)

	r, err := ReadDump(dir, ID{Label: "test", Height: 3})
	require.NoError(t, err)
	require.Equal(t, Header{Account: "x", Version: 1, TotalSupply: "10", StorageUsage: 7}, r.Header())

	var items [][2][]byte
	r.IterateSection("a", func(k, v []byte) {
		items = append(items, [2][]byte{k, v})
	})
	require.Equal(t, [][2][]byte{{{1}, {2}}, {{4}, {5}}}, items)

	var n int
	r.IterateSection("b", func(k, v []byte) {
		require.Equal(t, []byte{3}, k)
		require.Empty(t, v)
		n++
	})
	require.Equal(t, 1, n)

	r.IterateSection("c", func([]byte, []byte) { t.Fatal("unexpected item") })
}

func TestIterateDumps(t *testing.T) {
	dir := t.TempDir()

	for _, id := range []ID{{"a", 1}, {"b", 2}} {
		c, err := NewCreator(dir, id)
		require.NoError(t, err)
		require.NoError(t, c.Flush(Header{Account: id.Label}))
		c.Close()
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), nil, 0600))

	found := make(map[ID]string)
	err := IterateDumps(dir, func(id ID, r *Reader) {
		found[id] = r.Header().Account
	})
	require.NoError(t, err)
	require.Equal(t, map[ID]string{{"a", 1}: "a", {"b", 2}: "b"}, found)

	require.NoError(t, IterateDumps(filepath.Join(dir, "missing"), func(ID, *Reader) {
		t.Fatal("unexpected dump")
	}))
}

func TestSnapshotRestore(t *testing.T) {
	dir := t.TempDir()
	src := newLedger(t)

	id, err := Snapshot(src, dir, "local")
	require.NoError(t, err)
	require.Equal(t, ID{Label: "local", Height: src.Height()}, id)

	_, err = Snapshot(src, dir, "local")
	require.Error(t, err)

	_, err = Snapshot(newEnv(t), dir, "empty")
	require.ErrorIs(t, err, token.ErrNotInitialized)

	r, err := ReadDump(dir, id)
	require.NoError(t, err)
	require.Equal(t, "1000", r.Header().TotalSupply)
	require.Equal(t, src.StorageUsage(), r.Header().StorageUsage)

	dst := newEnv(t)
	require.NoError(t, Restore(dst, r))

	require.Equal(t, src.StorageUsage(), dst.StorageUsage())
	for _, acc := range []string{"alice", ledgerAccount} {
		require.Zero(t, src.NativeBalance(acc).Cmp(dst.NativeBalance(acc)), acc)
	}

	for acc, expected := range map[string]int64{"owner": 750, "alice": 250} {
		err = dst.View(acc, func(rt host.Runtime) error {
			bal, err := token.BalanceOf(rt, acc)
			if err != nil {
				return err
			}
			require.EqualValues(t, expected, bal.Int64(), acc)
			return nil
		})
		require.NoError(t, err)
	}

	t.Run("not empty", func(t *testing.T) {
		require.Error(t, Restore(dst, r))
	})

	t.Run("other account", func(t *testing.T) {
		e, err := sim.New(storage.NewMemoryStore(), sim.Config{Account: "other.test"})
		require.NoError(t, err)
		require.Error(t, Restore(e, r))
	})
}

// rewriteDump copies the dump under the new label passing every item through
// edit and appending extra native items.
func rewriteDump(t *testing.T, dir string, r *Reader, label string, edit func(section string, k, v []byte) []byte, natives map[string][]byte) *Reader {
	id := ID{Label: label, Height: 1}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)

	for _, section := range []string{SectionLedger, SectionNative} {
		w := c.Section(section)
		r.IterateSection(section, func(k, v []byte) {
			require.NoError(t, w.Write(k, edit(section, k, v)))
		})
	}

	for acc, v := range natives {
		require.NoError(t, c.Section(SectionNative).Write([]byte(acc), v))
	}

	require.NoError(t, c.Flush(r.Header()))
	c.Close()

	res, err := ReadDump(dir, id)
	require.NoError(t, err)

	return res
}

func keepItem(_ string, _, v []byte) []byte { return v }

func requireUntouched(t *testing.T, e *sim.Environment) {
	require.Zero(t, e.Height())
	require.Zero(t, e.StorageUsage())
	require.Zero(t, e.NativeBalance(ledgerAccount).Sign())
}

func TestRestoreValidation(t *testing.T) {
	dir := t.TempDir()

	id, err := Snapshot(newLedger(t), dir, "src")
	require.NoError(t, err)

	r, err := ReadDump(dir, id)
	require.NoError(t, err)

	setAlice := func(balance, escrow *big.Int) func(string, []byte, []byte) []byte {
		return func(section string, k, v []byte) []byte {
			if section != SectionLedger || string(k) != string(append(ledger.AccountPrefix, "alice"...)) {
				return v
			}

			_, acc, err := ledger.DecodeAccountItem(k, v)
			require.NoError(t, err)

			if balance != nil {
				acc.Balance = balance
			}
			if escrow != nil {
				acc.Escrow = escrow
			}

			item, err := acc.ToStackItem()
			require.NoError(t, err)

			b, err := stackitem.Serialize(item)
			require.NoError(t, err)

			return b
		}
	}

	t.Run("balances exceed supply", func(t *testing.T) {
		bad := rewriteDump(t, dir, r, "inflated", setAlice(big.NewInt(999999), nil), nil)

		e := newEnv(t)
		require.Error(t, Restore(e, bad))
		requireUntouched(t, e)
	})

	t.Run("negative balance", func(t *testing.T) {
		// -250 keeps the item size but breaks the sum
		bad := rewriteDump(t, dir, r, "negative", setAlice(big.NewInt(-250), nil), nil)

		e := newEnv(t)
		require.Error(t, Restore(e, bad))
		requireUntouched(t, e)
	})

	t.Run("negative escrow", func(t *testing.T) {
		bad := rewriteDump(t, dir, r, "escrow", setAlice(nil, big.NewInt(-1)), nil)

		e := newEnv(t)
		require.Error(t, Restore(e, bad))
		requireUntouched(t, e)
	})

	t.Run("negative native balance", func(t *testing.T) {
		bad := rewriteDump(t, dir, r, "native", keepItem, map[string][]byte{"zed": {0xff}})

		e := newEnv(t)
		require.Error(t, Restore(e, bad))
		requireUntouched(t, e)

		require.NoError(t, Restore(e, r))
		require.Equal(t, r.Header().StorageUsage, e.StorageUsage())
	})

	t.Run("valid extra native balance", func(t *testing.T) {
		ok := rewriteDump(t, dir, r, "extra", keepItem, map[string][]byte{"zed": bigint.ToBytes(big.NewInt(5))})

		e := newEnv(t)
		require.NoError(t, Restore(e, ok))
		require.EqualValues(t, 5, e.NativeBalance("zed").Int64())
	})

	t.Run("storage usage mismatch", func(t *testing.T) {
		e, err := sim.New(storage.NewMemoryStore(), sim.Config{
			Account:         ledgerAccount,
			StorageByteCost: big.NewInt(1),
			RecordOverhead:  100,
			Logger:          zaptest.NewLogger(t),
		})
		require.NoError(t, err)

		require.Error(t, Restore(e, r))
		requireUntouched(t, e)
	})
}
