package common

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// GetSerialized reads the item stored under the key and decodes it into
// value. It returns false if there is no such item.
func GetSerialized(st host.Storage, key []byte, value stackitem.Convertible) (bool, error) {
	data := st.Get(key)
	if data == nil {
		return false, nil
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		return true, fmt.Errorf("deserialize item: %w", err)
	}

	err = value.FromStackItem(item)
	if err != nil {
		return true, fmt.Errorf("decode item: %w", err)
	}

	return true, nil
}

// SetSerialized serializes data and puts it into storage.
func SetSerialized(st host.Storage, key []byte, value stackitem.Convertible) error {
	item, err := value.ToStackItem()
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize item: %w", err)
	}

	st.Put(key, data)

	return nil
}

// GetInteger returns integer stored under the key, zero if missing.
func GetInteger(st host.Storage, key []byte) *big.Int {
	data := st.Get(key)
	if data == nil {
		return new(big.Int)
	}

	return bigint.FromBytes(data)
}

// PutInteger stores integer under the key. Zero is stored as a single zero
// byte, empty values are not stored.
func PutInteger(st host.Storage, key []byte, n *big.Int) {
	if n.Sign() == 0 {
		st.Put(key, []byte{0})
		return
	}
	st.Put(key, bigint.ToBytes(n))
}
