package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

const accPrefix = 'a'

// AccountPrefix is a storage key prefix of account items.
var AccountPrefix = []byte{accPrefix}

var supplyKey = []byte{'s'}

func accountKey(id string) []byte {
	return append([]byte{accPrefix}, id...)
}

// Account is a ledger record of the registered account.
type Account struct {
	// Token balance.
	Balance *big.Int
	// Identity which paid for the account storage.
	Registrant string
	// Native currency escrowed at registration, refunded to Registrant when
	// the account is removed.
	Escrow *big.Int
}

// ToStackItem implements stackitem.Convertible.
func (a *Account) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(intBytes(a.Balance)),
		stackitem.NewByteArray([]byte(a.Registrant)),
		stackitem.NewByteArray(intBytes(a.Escrow)),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (a *Account) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	b, err := arr[0].TryBytes()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}
	a.Balance = bigint.FromBytes(b)

	b, err = arr[1].TryBytes()
	if err != nil {
		return fmt.Errorf("field Registrant: %w", err)
	}
	if !utf8.Valid(b) {
		return errors.New("field Registrant: not a UTF-8 string")
	}
	a.Registrant = string(b)

	b, err = arr[2].TryBytes()
	if err != nil {
		return fmt.Errorf("field Escrow: %w", err)
	}
	a.Escrow = bigint.FromBytes(b)

	return nil
}

// DecodeAccountItem decodes raw storage item of the account. Key must have
// AccountPrefix.
func DecodeAccountItem(key, value []byte) (string, *Account, error) {
	if len(key) < 2 || key[0] != accPrefix {
		return "", nil, fmt.Errorf("not an account key %x", key)
	}

	item, err := stackitem.Deserialize(value)
	if err != nil {
		return "", nil, fmt.Errorf("deserialize account item: %w", err)
	}

	var acc Account

	err = acc.FromStackItem(item)
	if err != nil {
		return "", nil, fmt.Errorf("decode account item: %w", err)
	}

	return string(key[1:]), &acc, nil
}

func intBytes(n *big.Int) []byte {
	if n == nil {
		return []byte{}
	}
	return bigint.ToBytes(n)
}
