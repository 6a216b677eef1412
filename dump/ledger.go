package dump

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/common"
	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/ledger"
	"github.com/nspcc-dev/ftledger/token"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
)

// Snapshot dumps the initialized ledger of the environment into the
// directory. The dump is identified by label and current environment height.
func Snapshot(e *sim.Environment, dir, label string) (ID, error) {
	var hdr = Header{
		Account:      e.Account(),
		StorageUsage: e.StorageUsage(),
	}

	err := e.View(e.Account(), func(rt host.Runtime) error {
		supply, err := token.TotalSupply(rt)
		if err != nil {
			return err
		}

		v, err := common.StoredVersion(rt.Storage())
		if err != nil {
			return err
		}

		hdr.Version = v
		hdr.TotalSupply = supply.String()

		return nil
	})
	if err != nil {
		return ID{}, fmt.Errorf("read ledger state: %w", err)
	}

	id := ID{
		Label:  label,
		Height: e.Height(),
	}

	c, err := NewCreator(dir, id)
	if err != nil {
		return ID{}, fmt.Errorf("init dump creator: %w", err)
	}

	defer c.Close()

	w := c.Section(SectionLedger)
	e.SeekStorage(nil, func(k, v []byte) bool {
		err = w.Write(k, v)
		return err == nil
	})
	if err != nil {
		return ID{}, err
	}

	w = c.Section(SectionNative)
	e.SeekNative(func(account string, amount *big.Int) bool {
		err = w.Write([]byte(account), bigint.ToBytes(amount))
		return err == nil
	})
	if err != nil {
		return ID{}, err
	}

	err = c.Flush(hdr)
	if err != nil {
		return ID{}, fmt.Errorf("flush dump: %w", err)
	}

	return id, nil
}

// Restore loads the dumped ledger into the empty environment. Ledger account
// of the environment must match the dumped one. Dumped accounts must sum up to
// the total supply and occupy the same storage as in the dumped environment,
// otherwise the environment is left untouched.
func Restore(e *sim.Environment, r *Reader) error {
	hdr := r.Header()

	if hdr.Account != e.Account() {
		return fmt.Errorf("ledger account mismatch: dump '%s', environment '%s'", hdr.Account, e.Account())
	}

	err := common.CheckVersion(hdr.Version)
	if err != nil {
		return err
	}

	supply, ok := new(big.Int).SetString(hdr.TotalSupply, 10)
	if !ok {
		return fmt.Errorf("invalid total supply in header '%s'", hdr.TotalSupply)
	}

	natives, err := readNatives(r)
	if err != nil {
		return fmt.Errorf("restore native balances: %w", err)
	}

	_, err = e.Invoke(sim.Call{Caller: e.Account()}, func(rt host.Runtime) error {
		st := rt.Storage()

		_, err := common.StoredVersion(st)
		if !errors.Is(err, common.ErrNoVersion) {
			return errors.New("environment already has a ledger")
		}

		sum := new(big.Int)
		r.IterateSection(SectionLedger, func(key, value []byte) {
			if err == nil && len(key) > 0 && key[0] == ledger.AccountPrefix[0] {
				err = addAccountBalance(sum, key, value)
			}
			st.Put(key, value)
		})
		if err != nil {
			return err
		}

		restored, err := token.TotalSupply(rt)
		if err != nil {
			return fmt.Errorf("read restored ledger: %w", err)
		}

		if restored.Cmp(supply) != 0 {
			return fmt.Errorf("total supply mismatch: header %s, storage %s", supply, restored)
		}

		if sum.Cmp(supply) != 0 {
			return fmt.Errorf("account balances sum up to %s, total supply %s", sum, supply)
		}

		if usage := rt.StorageUsage(); usage != hdr.StorageUsage {
			return fmt.Errorf("storage usage mismatch: header %d, restored %d", hdr.StorageUsage, usage)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("restore ledger storage: %w", err)
	}

	for i := range natives {
		err = e.Fund(natives[i].account, natives[i].amount)
		if err != nil {
			return fmt.Errorf("restore native balance of '%s': %w", natives[i].account, err)
		}
	}

	return nil
}

type nativeBalance struct {
	account string
	amount  *big.Int
}

// readNatives decodes native section of the dump. Balances are checked here
// so that funding cannot fail once the ledger storage is committed.
func readNatives(r *Reader) ([]nativeBalance, error) {
	var (
		err error
		res []nativeBalance
	)

	r.IterateSection(SectionNative, func(key, value []byte) {
		if err != nil {
			return
		}

		amount := bigint.FromBytes(value)
		switch {
		case len(key) == 0:
			err = errors.New("empty account")
		case amount.Sign() < 0:
			err = fmt.Errorf("negative balance %s of '%s'", amount, key)
		default:
			res = append(res, nativeBalance{account: string(key), amount: amount})
		}
	})

	return res, err
}

func addAccountBalance(sum *big.Int, key, value []byte) error {
	id, acc, err := ledger.DecodeAccountItem(key, value)
	if err != nil {
		return err
	}

	err = ledger.ValidateAccountID(id)
	if err != nil {
		return fmt.Errorf("account '%s': %w", id, err)
	}

	if acc.Balance.Sign() < 0 || acc.Escrow.Sign() < 0 {
		return fmt.Errorf("account '%s': negative balance %s or escrow %s", id, acc.Balance, acc.Escrow)
	}

	sum.Add(sum, acc.Balance)

	return nil
}
