package token

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/ledger"
)

const (
	// OnTransferMethod is a method of the receiver called by TransferCall.
	OnTransferMethod = "ft_on_transfer"

	// OnTransferGas is a gas budget of OnTransferMethod call.
	OnTransferGas = 30_000_000_000_000
)

// OnTransferArgs is a JSON payload of OnTransferMethod call.
type OnTransferArgs struct {
	SenderID string `json:"sender_id"`
	Amount   string `json:"amount"`
	Msg      string `json:"msg"`
}

// Transfer sends tokens from the caller to the registered receiver. If the
// caller balance becomes zero, the caller account is removed and its escrow
// is refunded to the registrant.
func Transfer(rt host.Runtime, receiverID string, amount *big.Int, memo string) error {
	l, err := open(rt)
	if err != nil {
		return err
	}

	return transfer(rt, l, rt.Caller(), receiverID, amount, memo)
}

// TransferCall is like Transfer but also schedules OnTransferMethod call of
// the receiver with msg. The call is not awaited, its promise is returned.
func TransferCall(rt host.Runtime, receiverID string, amount *big.Int, memo, msg string) (host.Promise, error) {
	l, err := open(rt)
	if err != nil {
		return host.Promise{}, err
	}

	sender := rt.Caller()

	err = transfer(rt, l, sender, receiverID, amount, memo)
	if err != nil {
		return host.Promise{}, err
	}

	payload, err := json.Marshal(OnTransferArgs{
		SenderID: sender,
		Amount:   amount.String(),
		Msg:      msg,
	})
	if err != nil {
		return host.Promise{}, fmt.Errorf("encode %s arguments: %w", OnTransferMethod, err)
	}

	p, err := rt.ScheduleCall(receiverID, OnTransferMethod, payload, new(big.Int), OnTransferGas)
	if err != nil {
		return host.Promise{}, fmt.Errorf("schedule %s: %w", OnTransferMethod, err)
	}

	return p, nil
}

func transfer(rt host.Runtime, l *ledger.Ledger, sender, receiver string, amount *big.Int, memo string) error {
	emptied, err := l.Transfer(sender, receiver, amount)
	if err != nil {
		return err
	}

	notifyTransfer(rt, sender, receiver, amount, memo)

	if memo != "" {
		rt.Log("Memo: " + memo)
	}

	if !emptied {
		return nil
	}

	err = closeAccount(rt, l, sender)
	if err != nil {
		return fmt.Errorf("close emptied sender account: %w", err)
	}

	return nil
}
