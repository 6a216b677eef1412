package token

import (
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Notification names.
const (
	EventTransfer   = "Transfer"
	EventRegister   = "Register"
	EventUnregister = "Unregister"
)

func notifyTransfer(rt host.Runtime, from, to string, amount *big.Int, memo string) {
	rt.Notify(EventTransfer, accountItem(from), accountItem(to), amountItem(amount),
		stackitem.NewByteArray([]byte(memo)))
}

func notifyRegister(rt host.Runtime, account, registrant string, escrow *big.Int) {
	rt.Notify(EventRegister, accountItem(account), accountItem(registrant), amountItem(escrow))
}

func notifyUnregister(rt host.Runtime, account, registrant string, refund *big.Int) {
	rt.Notify(EventUnregister, accountItem(account), accountItem(registrant), amountItem(refund))
}

func accountItem(id string) stackitem.Item {
	if id == "" {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray([]byte(id))
}

// amountItem returns Integer item for amounts fitting VM integer and raw
// little-endian bytes for wider ones.
func amountItem(n *big.Int) stackitem.Item {
	if n.BitLen() < stackitem.MaxBigIntegerSizeBits {
		return stackitem.NewBigInteger(new(big.Int).Set(n))
	}
	return stackitem.NewByteArray(bigint.ToBytes(n))
}
