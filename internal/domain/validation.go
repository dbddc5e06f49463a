package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrValidation is the class all input validation failures belong to.
	// Callers can match it with errors.Is regardless of the concrete rule
	// that failed.
	ErrValidation = errors.New("invalid transaction")

	// ErrInvalidAmount is returned when the amount is not a positive integer
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a positive integer", ErrValidation)

	// ErrInvalidKind is returned when the kind is neither credit nor debit
	ErrInvalidKind = fmt.Errorf("%w: kind must be credit or debit", ErrValidation)

	// ErrInvalidDescription is returned when the description length is outside 1..10
	ErrInvalidDescription = fmt.Errorf("%w: description must be 1 to 10 characters", ErrValidation)
)

// ValidateTransaction checks a proposed transaction's shape before it is
// allowed to touch storage. It is pure: no side effects, no I/O, and it does
// not consult the account — an invalid submission is rejected the same way
// whether or not the account exists.
func ValidateTransaction(amount int64, kind TransactionKind, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if kind != TransactionKindCredit && kind != TransactionKindDebit {
		return ErrInvalidKind
	}

	if n := utf8.RuneCountInString(description); n < 1 || n > 10 {
		return ErrInvalidDescription
	}

	return nil
}
