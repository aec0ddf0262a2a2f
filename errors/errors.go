package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment kinds reported to the sender.
var (
	ErrInvalidAddressFormat = fmt.Errorf("invalid payment address format")
	ErrUnknownRecipient     = fmt.Errorf("unknown payment recipient")
	ErrMalformedAmount      = fmt.Errorf("malformed payment amount")
	ErrInsufficientBalance  = fmt.Errorf("insufficient balance")
	// ErrPaymentFailed wraps ledger failures unrelated to the command itself.
	ErrPaymentFailed        = fmt.Errorf("payment could not be processed")
)

// Causes folded into ErrUnknownRecipient, kept apart for logs.
var (
	ErrRecipientNotFound = fmt.Errorf("recipient not found")
	ErrCoinMismatch      = fmt.Errorf("address coin does not match payment coin")
)

var (
	ErrPersistence        = fmt.Errorf("failed to save message")
	ErrMalformedInput     = fmt.Errorf("malformed inbound frame")
	ErrUserAlreadyExists  = fmt.Errorf("email or username exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrCoinNotFound       = fmt.Errorf("coin not found")
	ErrInvalidQuantity    = fmt.Errorf("quantity must be positive")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrTransferContention = fmt.Errorf("ledger transfer kept conflicting")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// InsufficientBalanceError carries the balance seen inside the transfer transaction.
type InsufficientBalanceError struct {
	Available decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: available %s", ErrInsufficientBalance, e.Available)
}

func (e InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// PublicMessage maps an error to the text sent back on the sender's socket.
func PublicMessage(err error) string {
	var insufficient InsufficientBalanceError
	switch {
	case stderrors.As(err, &insufficient):
		return fmt.Sprintf("Insufficient balance. Available %s", insufficient.Available)
	case stderrors.Is(err, ErrInsufficientBalance):
		return "Insufficient balance"
	case stderrors.Is(err, ErrInvalidAddressFormat):
		return "Invalid payment address format"
	case stderrors.Is(err, ErrUnknownRecipient):
		return "Invalid payment address"
	case stderrors.Is(err, ErrMalformedAmount):
		return "Invalid payment amount"
	case stderrors.Is(err, ErrPaymentFailed):
		return "Payment failed"
	case stderrors.Is(err, ErrPersistence):
		return "Failed to save message"
	default:
		return "Internal error"
	}
}
