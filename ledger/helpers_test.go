package ledger

import (
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
)

const testRecordOverhead = 40

// memHost is a map-based Host metering storage like the real environment.
type memHost struct {
	items map[string][]byte
	usage uint64
}

func newMemHost() *memHost {
	return &memHost{items: make(map[string][]byte)}
}

func (h *memHost) Storage() host.Storage { return h }

func (h *memHost) StorageUsage() uint64 { return h.usage }

func (h *memHost) Get(key []byte) []byte { return h.items[string(key)] }

func (h *memHost) Put(key, value []byte) {
	if old, ok := h.items[string(key)]; ok {
		h.usage -= uint64(len(key) + len(old) + testRecordOverhead)
	}
	h.items[string(key)] = append([]byte{}, value...)
	h.usage += uint64(len(key) + len(value) + testRecordOverhead)
}

func (h *memHost) Delete(key []byte) {
	if old, ok := h.items[string(key)]; ok {
		h.usage -= uint64(len(key) + len(old) + testRecordOverhead)
		delete(h.items, string(key))
	}
}

func (h *memHost) sumBalances() *big.Int {
	sum := new(big.Int)
	for k, v := range h.items {
		if k[0] != accPrefix {
			continue
		}
		_, acc, err := DecodeAccountItem([]byte(k), v)
		if err != nil {
			panic(err)
		}
		sum.Add(sum, acc.Balance)
	}
	return sum
}
