package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"personal-ledger/model"
)

// Transfer moves amount from source to the account named targetName within
// the same manager.
//
// The balance change and the two history entries are not atomic. If the
// withdrawal succeeds the deposit always follows; a failure to record either
// entry is logged and returned wrapped in model.ErrPersistence after the
// collection has been saved.
func Transfer(ctx context.Context, m *Manager, source *model.Account, targetName string, amount float64) error {
	target, ok := m.AccountByName(targetName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrAccountNotFound, targetName)
	}
	if target == source || strings.EqualFold(target.Name(), source.Name()) {
		return ErrSameAccount
	}
	if target.Frozen() {
		return ErrTargetFrozen
	}
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	if amount > source.TransferLimit() {
		return fmt.Errorf("%w: %s > %s", ErrTransferLimit, dollars(amount), dollars(source.TransferLimit()))
	}

	if err := source.Withdraw(amount); err != nil {
		return err
	}
	target.Deposit(amount)

	m.logger.Info("transfer completed", "source", source.Name(), "target", target.Name(), "amount", amount)
	return errors.Join(
		m.recordTransaction(ctx, source.Name(), fmt.Sprintf("Transfer to %s: %s", target.Name(), dollars(amount))),
		m.recordTransaction(ctx, target.Name(), fmt.Sprintf("Transfer from %s: %s", source.Name(), dollars(amount))),
		m.saveAccounts(),
	)
}
