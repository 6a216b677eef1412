/*
Package sim provides an in-process implementation of the host environment.

Environment keeps the ledger account storage, native currency balances and
the storage usage counter in a single neo-go store. Every call gets its own
MemCachedStore layer on top of it: the layer is persisted only when the call
succeeds, so a failed call leaves no trace, exactly like a reverted
transaction.
*/
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// Storage layout of the environment.
const (
	contractPrefix = 0x01
	nativePrefix   = 0x02
	usageKey       = 0x03
	heightKey      = 0x04
)

const (
	// DefaultStorageByteCost is a native currency price of one storage unit
	// used when Config.StorageByteCost is not set.
	DefaultStorageByteCost = "10000000000000000000"

	// DefaultRecordOverhead is a number of storage units charged for every
	// stored item on top of its key and value lengths.
	DefaultRecordOverhead = 40
)

// ErrNoCaller is returned by Invoke if the call has no caller.
var ErrNoCaller = errors.New("missing caller")

// Config groups Environment parameters.
type Config struct {
	// Identity of the ledger account. Required.
	Account string

	// Native currency price of one storage unit. Defaults to
	// DefaultStorageByteCost.
	StorageByteCost *big.Int

	// Storage units charged per item in addition to its size. Defaults to
	// DefaultRecordOverhead, negative value means zero.
	RecordOverhead int64

	// Logger receives call logs. Defaults to no-op logger.
	Logger *zap.Logger
}

// Call describes a single invocation of the ledger.
type Call struct {
	// Immediate caller identity.
	Caller string
	// Native currency attached to the call, debited from the caller.
	Deposit *big.Int
}

// Event is a notification emitted during a call.
type Event struct {
	Name string
	Args []stackitem.Item
}

// ScheduledCall is an asynchronous call scheduled by a committed call.
type ScheduledCall struct {
	host.Promise

	Sender  string
	Payload []byte
	Deposit *big.Int
	Gas     uint64
}

// Receipt describes effects of a committed call.
type Receipt struct {
	Logs      []string
	Events    []Event
	Scheduled []ScheduledCall

	// Change of the ledger account storage usage made by the call.
	StorageDelta int64
}

// Environment is a host environment running ledger calls one at a time.
type Environment struct {
	mtx sync.Mutex

	account        string
	byteCost       *big.Int
	recordOverhead uint64
	log            *zap.Logger

	lower storage.Store
	store *storage.MemCachedStore

	pending []ScheduledCall
}

// New creates Environment over the given store. Environment should be closed
// to flush committed changes to st.
func New(st storage.Store, cfg Config) (*Environment, error) {
	if cfg.Account == "" {
		return nil, errors.New("missing ledger account")
	}

	e := &Environment{
		account: cfg.Account,
		log:     cfg.Logger,
		lower:   st,
		store:   storage.NewMemCachedStore(st),
	}

	if cfg.StorageByteCost == nil {
		e.byteCost, _ = new(big.Int).SetString(DefaultStorageByteCost, 10)
	} else if cfg.StorageByteCost.Sign() < 0 {
		return nil, fmt.Errorf("negative storage byte cost %s", cfg.StorageByteCost)
	} else {
		e.byteCost = new(big.Int).Set(cfg.StorageByteCost)
	}

	switch {
	case cfg.RecordOverhead == 0:
		e.recordOverhead = DefaultRecordOverhead
	case cfg.RecordOverhead > 0:
		e.recordOverhead = uint64(cfg.RecordOverhead)
	}

	if e.log == nil {
		e.log = zap.NewNop()
	}

	return e, nil
}

// Account returns identity of the ledger account.
func (e *Environment) Account() string {
	return e.account
}

// Invoke runs f as a single call. If f returns an error or panics, all
// changes made by the call are discarded and the error is returned.
// Attached deposit is taken from the caller before f is run.
func (e *Environment) Invoke(call Call, f func(host.Runtime) error) (*Receipt, error) {
	if call.Caller == "" {
		return nil, ErrNoCaller
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	rt := &runtime{
		env:     e,
		layer:   storage.NewMemCachedStore(e.store),
		caller:  call.Caller,
		deposit: new(big.Int),
		receipt: new(Receipt),
	}

	if call.Deposit != nil {
		if call.Deposit.Sign() < 0 {
			return nil, fmt.Errorf("negative deposit %s", call.Deposit)
		}
		rt.deposit.Set(call.Deposit)
	}

	startUsage := rt.StorageUsage()

	err := rt.moveNative(call.Caller, e.account, rt.deposit)
	if err != nil {
		return nil, fmt.Errorf("attach deposit: %w", err)
	}

	err = run(rt, f)
	if err != nil {
		e.log.Debug("call reverted",
			zap.String("caller", call.Caller),
			zap.Stringer("deposit", rt.deposit),
			zap.Error(err))
		return nil, err
	}

	rt.receipt.StorageDelta = int64(rt.StorageUsage()) - int64(startUsage)

	setCounter(rt.layer, heightKey, counter(rt.layer, heightKey)+1)

	_, err = rt.layer.Persist()
	if err != nil {
		return nil, fmt.Errorf("persist call changes: %w", err)
	}

	e.pending = append(e.pending, rt.receipt.Scheduled...)

	e.log.Debug("call committed",
		zap.String("caller", call.Caller),
		zap.Int64("storage delta", rt.receipt.StorageDelta),
		zap.Int("scheduled", len(rt.receipt.Scheduled)))

	return rt.receipt, nil
}

// View runs f as a read-only call: all its changes are discarded even if f
// succeeds. View does not change the height.
func (e *Environment) View(caller string, f func(host.Runtime) error) error {
	if caller == "" {
		return ErrNoCaller
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	return run(&runtime{
		env:     e,
		layer:   storage.NewMemCachedStore(e.store),
		caller:  caller,
		deposit: new(big.Int),
		receipt: new(Receipt),
	}, f)
}

func run(rt *runtime, f func(host.Runtime) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("call panicked: %v", r)
		}
	}()

	return f(rt)
}

// Fund mints native currency to the account.
func (e *Environment) Fund(account string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative amount %s", amount)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	bal := nativeBalance(e.store, account)
	setNativeBalance(e.store, account, bal.Add(bal, amount))

	return nil
}

// NativeBalance returns native currency balance of the account.
func (e *Environment) NativeBalance(account string) *big.Int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return nativeBalance(e.store, account)
}

// StorageUsage returns storage units used by the ledger account.
func (e *Environment) StorageUsage() uint64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return storageUsage(e.store)
}

// Height returns number of committed calls.
func (e *Environment) Height() uint64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return counter(e.store, heightKey)
}

// SeekNative iterates over all non-zero native currency balances. Iteration
// stops when f returns false.
func (e *Environment) SeekNative(f func(account string, amount *big.Int) bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.store.Seek(storage.SeekRange{Prefix: []byte{nativePrefix}}, func(k, v []byte) bool {
		return f(string(k[1:]), bigint.FromBytes(v))
	})
}

// SeekStorage iterates over ledger account storage items with the given
// key prefix. Keys passed to f are full ledger keys. Iteration stops when f
// returns false.
func (e *Environment) SeekStorage(prefix []byte, f func(key, value []byte) bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	rng := storage.SeekRange{Prefix: append([]byte{contractPrefix}, prefix...)}

	e.store.Seek(rng, func(k, v []byte) bool {
		return f(k[1:], v)
	})
}

// Pending returns asynchronous calls scheduled since the previous Pending
// call.
func (e *Environment) Pending() []ScheduledCall {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	res := e.pending
	e.pending = nil

	return res
}

// Close flushes committed changes to the underlying store and closes it.
func (e *Environment) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	_, err := e.store.PersistSync()
	if err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	return e.lower.Close()
}

type kvReader interface {
	Get([]byte) ([]byte, error)
}

type kvWriter interface {
	kvReader
	Put(key, value []byte)
	Delete(key []byte)
}

func get(st kvReader, key []byte) []byte {
	v, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		panic(fmt.Errorf("read storage: %w", err))
	}
	return v
}

func nativeKey(account string) []byte {
	return append([]byte{nativePrefix}, account...)
}

func nativeBalance(st kvReader, account string) *big.Int {
	v := get(st, nativeKey(account))
	if v == nil {
		return new(big.Int)
	}
	return bigint.FromBytes(v)
}

func setNativeBalance(st kvWriter, account string, n *big.Int) {
	if n.Sign() == 0 {
		st.Delete(nativeKey(account))
		return
	}
	st.Put(nativeKey(account), bigint.ToBytes(n))
}

func storageUsage(st kvReader) uint64 {
	return counter(st, usageKey)
}

func setStorageUsage(st kvWriter, n uint64) {
	setCounter(st, usageKey, n)
}

func counter(st kvReader, key byte) uint64 {
	v := get(st, []byte{key})
	if len(v) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}

func setCounter(st kvWriter, key byte, n uint64) {
	v := make([]byte, 8)
	binary.LittleEndian.PutUint64(v, n)
	st.Put([]byte{key}, v)
}
