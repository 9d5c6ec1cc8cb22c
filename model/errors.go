package model

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the ledger wraps exactly one of
// these so callers can map failures with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrState       = errors.New("state error")
	ErrCapacity    = errors.New("capacity error")
	ErrPersistence = errors.New("persistence error")
)

// Account-level failures.
var (
	ErrFrozen            = fmt.Errorf("%w: account is frozen", ErrState)
	ErrWithdrawalLimit   = fmt.Errorf("%w: amount exceeds per-transaction withdrawal limit", ErrState)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrState)
	ErrNotChecking       = fmt.Errorf("%w: operation requires a checking account", ErrState)
	ErrNotSavings        = fmt.Errorf("%w: operation requires a savings account", ErrState)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
)
