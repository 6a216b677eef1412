package ledger

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/common"
	"github.com/nspcc-dev/ftledger/host"
)

// Host groups environment services used by Ledger.
type Host interface {
	// Storage returns persistent storage of the ledger.
	Storage() host.Storage
	// StorageUsage returns current storage usage of the ledger.
	StorageUsage() uint64
}

// Ledger provides access to token accounts stored in the host storage.
// Ledger is bound to a single call and must not be shared between calls.
type Ledger struct {
	host   Host
	st     host.Storage
	supply *big.Int
}

// New returns Ledger working with the host storage.
func New(h Host) *Ledger {
	st := h.Storage()

	return &Ledger{
		host:   h,
		st:     st,
		supply: common.GetInteger(st, supplyKey),
	}
}

// TotalSupply returns sum of all account balances.
func (l *Ledger) TotalSupply() *big.Int {
	return new(big.Int).Set(l.supply)
}

// IsRegistered checks whether the account exists.
func (l *Ledger) IsRegistered(account string) bool {
	return l.st.Get(accountKey(account)) != nil
}

// Registration returns the account record.
func (l *Ledger) Registration(account string) (*Account, error) {
	return l.getAccount(account)
}

func (l *Ledger) getAccount(account string) (*Account, error) {
	var acc Account

	ok, err := common.GetSerialized(l.st, accountKey(account), &acc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, account)
	}
	if err != nil {
		return nil, fmt.Errorf("read account %s: %w", account, err)
	}

	return &acc, nil
}

func (l *Ledger) putAccount(account string, acc *Account) error {
	err := common.SetSerialized(l.st, accountKey(account), acc)
	if err != nil {
		return fmt.Errorf("write account %s: %w", account, err)
	}
	return nil
}

func (l *Ledger) setSupply(n *big.Int) {
	l.supply = n
	common.PutInteger(l.st, supplyKey, n)
}
