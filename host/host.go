/*
Package host describes the execution environment the token ledger runs in.

The environment identifies the caller, carries the native currency attached
to the call, meters persistent storage, moves native currency on behalf of
the ledger and schedules asynchronous calls to other accounts. Each call is
run to completion; if it returns an error, the environment discards every
change the call made, including storage writes, native transfers and
scheduled calls.
*/
package host

import (
	"errors"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

var (
	// ErrInsufficientFunds is returned by Runtime.Transfer when the ledger
	// does not hold enough native currency.
	ErrInsufficientFunds = errors.New("insufficient native balance")

	// ErrSelfTransfer is returned by Runtime.Transfer when the target is the
	// ledger account itself.
	ErrSelfTransfer = errors.New("native transfer to self")
)

// Storage is a key-value storage of the ledger account. Get returns nil for
// missing keys.
type Storage interface {
	Get(key []byte) []byte
	Put(key, value []byte)
	Delete(key []byte)
}

// Promise identifies an asynchronous call scheduled by the ledger. Its
// result is delivered to whoever invoked the ledger, not to the ledger.
type Promise struct {
	ID     uuid.UUID
	Target string
	Method string
}

// Runtime groups services provided by the environment to a single call.
type Runtime interface {
	// Caller returns identity of the immediate caller.
	Caller() string

	// CurrentAccount returns identity of the ledger itself.
	CurrentAccount() string

	// AttachedDeposit returns native currency attached to the call. It has
	// already been credited to the ledger account.
	AttachedDeposit() *big.Int

	// StorageUsage returns number of storage units currently used by the
	// ledger account. The counter reflects writes made earlier in the same
	// call.
	StorageUsage() uint64

	// StorageByteCost returns native currency price of a single storage unit.
	StorageByteCost() *big.Int

	// Storage returns storage of the ledger account.
	Storage() Storage

	// Transfer sends native currency from the ledger account.
	Transfer(to string, amount *big.Int) error

	// ScheduleCall schedules a fire-and-forget call of the method on the
	// target account.
	ScheduleCall(target, method string, payload []byte, deposit *big.Int, gas uint64) (Promise, error)

	// Log writes a message into the call log.
	Log(msg string)

	// Notify emits a named notification.
	Notify(name string, args ...stackitem.Item)
}
