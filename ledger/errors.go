package ledger

import "errors"

var (
	// ErrAlreadyRegistered is returned on registration of the existing account.
	ErrAlreadyRegistered = errors.New("account is already registered")

	// ErrNotRegistered is returned when the account is missing in the ledger.
	ErrNotRegistered = errors.New("account is not registered")

	// ErrNonZeroBalance is returned on removal of the account with tokens.
	ErrNonZeroBalance = errors.New("account has a balance")

	// ErrInsufficientBalance is returned when the account does not have
	// enough tokens to withdraw.
	ErrInsufficientBalance = errors.New("the account doesn't have enough balance")

	// ErrSupplyUnderflow is returned when withdrawal would make total supply
	// negative. It means that the supply counter is broken.
	ErrSupplyUnderflow = errors.New("total supply underflow")

	// ErrSelfTransfer is returned on transfer to the sender.
	ErrSelfTransfer = errors.New("sender and receiver should be different")

	// ErrNonPositiveAmount is returned on transfer of zero or negative amount.
	ErrNonPositiveAmount = errors.New("the amount should be a positive number")

	// ErrNegativeAmount is returned on deposit or withdrawal of negative amount.
	ErrNegativeAmount = errors.New("negative amount")

	// ErrInvalidAccountID is returned for malformed account identifiers.
	ErrInvalidAccountID = errors.New("invalid account ID")
)
