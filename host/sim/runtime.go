package sim

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// runtime is a host.Runtime of a single call.
type runtime struct {
	env     *Environment
	layer   *storage.MemCachedStore
	caller  string
	deposit *big.Int
	receipt *Receipt
}

func (r *runtime) Caller() string {
	return r.caller
}

func (r *runtime) CurrentAccount() string {
	return r.env.account
}

func (r *runtime) AttachedDeposit() *big.Int {
	return new(big.Int).Set(r.deposit)
}

func (r *runtime) StorageUsage() uint64 {
	return storageUsage(r.layer)
}

func (r *runtime) StorageByteCost() *big.Int {
	return new(big.Int).Set(r.env.byteCost)
}

func (r *runtime) Storage() host.Storage {
	return contractStorage{r}
}

func (r *runtime) Transfer(to string, amount *big.Int) error {
	if to == r.env.account {
		return host.ErrSelfTransfer
	}

	err := r.moveNative(r.env.account, to, amount)
	if err != nil {
		return err
	}

	r.env.log.Debug("native transfer",
		zap.String("to", to),
		zap.Stringer("amount", amount))

	return nil
}

func (r *runtime) ScheduleCall(target, method string, payload []byte, deposit *big.Int, gas uint64) (host.Promise, error) {
	if target == "" || method == "" {
		return host.Promise{}, fmt.Errorf("invalid call target '%s' or method '%s'", target, method)
	}

	d := new(big.Int)
	if deposit != nil {
		d.Set(deposit)
	}

	if d.Sign() > 0 {
		// attached deposit leaves the ledger together with the call
		err := r.moveNative(r.env.account, target, d)
		if err != nil {
			return host.Promise{}, fmt.Errorf("attach deposit to scheduled call: %w", err)
		}
	}

	p := host.Promise{
		ID:     uuid.New(),
		Target: target,
		Method: method,
	}

	r.receipt.Scheduled = append(r.receipt.Scheduled, ScheduledCall{
		Promise: p,
		Sender:  r.env.account,
		Payload: bytes.Clone(payload),
		Deposit: d,
		Gas:     gas,
	})

	return p, nil
}

func (r *runtime) Log(msg string) {
	r.receipt.Logs = append(r.receipt.Logs, msg)
	r.env.log.Info(msg, zap.String("caller", r.caller))
}

func (r *runtime) Notify(name string, args ...stackitem.Item) {
	r.receipt.Events = append(r.receipt.Events, Event{
		Name: name,
		Args: args,
	})
}

func (r *runtime) moveNative(from, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative amount %s", amount)
	}
	if amount.Sign() == 0 {
		return nil
	}

	balFrom := nativeBalance(r.layer, from)
	if balFrom.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, need %s", host.ErrInsufficientFunds, from, balFrom, amount)
	}

	setNativeBalance(r.layer, from, balFrom.Sub(balFrom, amount))

	balTo := nativeBalance(r.layer, to)
	setNativeBalance(r.layer, to, balTo.Add(balTo, amount))

	return nil
}

// contractStorage is a ledger account storage metered by item sizes.
type contractStorage struct {
	r *runtime
}

func contractKey(key []byte) []byte {
	return append([]byte{contractPrefix}, key...)
}

func (s contractStorage) itemSize(key, value []byte) uint64 {
	return uint64(len(key)+len(value)) + s.r.env.recordOverhead
}

func (s contractStorage) Get(key []byte) []byte {
	return get(s.r.layer, contractKey(key))
}

func (s contractStorage) Put(key, value []byte) {
	usage := storageUsage(s.r.layer)

	old := s.Get(key)
	if old != nil {
		usage -= s.itemSize(key, old)
	}
	usage += s.itemSize(key, value)

	s.r.layer.Put(contractKey(key), bytes.Clone(value))
	setStorageUsage(s.r.layer, usage)
}

func (s contractStorage) Delete(key []byte) {
	old := s.Get(key)
	if old == nil {
		return
	}

	s.r.layer.Delete(contractKey(key))
	setStorageUsage(s.r.layer, storageUsage(s.r.layer)-s.itemSize(key, old))
}
