package service

import (
	"fmt"

	"personal-ledger/model"
)

// Manager-level failures. Each wraps one of the model error categories.
var (
	ErrAccountNotFound  = fmt.Errorf("%w: account not found", model.ErrState)
	ErrInvalidName      = fmt.Errorf("%w: account name must be non-empty and must not contain ',', path separators or control characters", model.ErrValidation)
	ErrInvalidOwner     = fmt.Errorf("%w: invalid username", model.ErrValidation)
	ErrNegativeValue    = fmt.Errorf("%w: value must not be negative", model.ErrValidation)
	ErrCheckingCapacity = fmt.Errorf("%w: maximum number of checking accounts reached", model.ErrCapacity)
	ErrSavingsCapacity  = fmt.Errorf("%w: maximum number of savings accounts reached", model.ErrCapacity)
	ErrDuplicateName    = fmt.Errorf("%w: account name already in use", model.ErrCapacity)
	ErrCannotClose      = fmt.Errorf("%w: account with a negative balance cannot be closed", model.ErrState)
	ErrSameAccount      = fmt.Errorf("%w: cannot transfer to the same account", model.ErrState)
	ErrTargetFrozen     = fmt.Errorf("%w: target account is frozen", model.ErrState)
	ErrTransferLimit    = fmt.Errorf("%w: amount exceeds transfer limit", model.ErrState)
)
