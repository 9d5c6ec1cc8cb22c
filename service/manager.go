package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"personal-ledger/model"
	"personal-ledger/storage"
)

// Per-owner capacity.
const (
	MaxCheckingAccounts = 2
	MaxSavingsAccounts  = 3
)

// Manager owns the checking and savings accounts of one owner. Every
// mutating call rewrites the owner's whole collection through the store.
//
// A Manager is not safe for concurrent use; see Registry.
type Manager struct {
	owner  string
	store  storage.AccountStore
	ledger storage.Ledger
	logger *slog.Logger

	checking []*model.Account
	savings  []*model.Account
}

// NewManager returns an empty manager. Call LoadAccounts to read the
// persisted collection.
func NewManager(owner string, store storage.AccountStore, ledger storage.Ledger, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		owner:  owner,
		store:  store,
		ledger: ledger,
		logger: logger.With("owner", owner),
	}
}

// OpenManager validates owner, creates a manager and loads its accounts.
func OpenManager(owner string, store storage.AccountStore, ledger storage.Ledger, logger *slog.Logger) (*Manager, error) {
	if err := ValidateOwner(owner); err != nil {
		return nil, err
	}
	m := NewManager(owner, store, ledger, logger)
	if err := m.LoadAccounts(); err != nil {
		return nil, err
	}
	return m, nil
}

// Owner returns the username the manager serves.
func (m *Manager) Owner() string { return m.owner }

// LoadAccounts replaces the in-memory collections with the stored ones.
func (m *Manager) LoadAccounts() error {
	checking, savings, err := m.store.Load(m.owner)
	if err != nil {
		m.logger.Error("failed to load accounts", "error", err)
		return fmt.Errorf("%w: load accounts: %w", model.ErrPersistence, err)
	}
	m.checking = restoreAll(checking)
	m.savings = restoreAll(savings)
	return nil
}

func restoreAll(records []model.Record) []*model.Account {
	accounts := make([]*model.Account, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, model.Restore(r))
	}
	return accounts
}

func records(accounts []*model.Account) []model.Record {
	out := make([]model.Record, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Record())
	}
	return out
}

// saveAccounts persists both collections. Failures are logged and returned
// wrapped in ErrPersistence; in-memory state is left as is.
func (m *Manager) saveAccounts() error {
	if err := m.store.Save(m.owner, records(m.checking), records(m.savings)); err != nil {
		m.logger.Error("failed to save accounts", "error", err)
		return fmt.Errorf("%w: save accounts: %w", model.ErrPersistence, err)
	}
	return nil
}

// recordTransaction writes one ledger entry, logging failures.
func (m *Manager) recordTransaction(ctx context.Context, account, description string) error {
	if err := m.ledger.RecordTransaction(ctx, m.owner, account, description); err != nil {
		m.logger.Error("failed to record transaction", "account", account, "error", err)
		return fmt.Errorf("%w: record transaction: %w", model.ErrPersistence, err)
	}
	return nil
}

func dollars(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `,/\`) {
		return ErrInvalidName
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return ErrInvalidName
	}
	return nil
}

// ValidateOwner reports whether owner can be used as a directory name under
// the data root.
func ValidateOwner(owner string) error {
	if validateName(owner) != nil || owner == "." || owner == ".." {
		return ErrInvalidOwner
	}
	return nil
}

func (m *Manager) nameTaken(name string) bool {
	_, ok := m.AccountByName(name)
	return ok
}

func (m *Manager) checkCanAdd(kind model.Kind, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	switch kind {
	case model.KindChecking:
		if len(m.checking) >= MaxCheckingAccounts {
			return ErrCheckingCapacity
		}
	case model.KindSavings:
		if len(m.savings) >= MaxSavingsAccounts {
			return ErrSavingsCapacity
		}
	}
	if m.nameTaken(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

func (m *Manager) add(a *model.Account) error {
	if a.Kind() == model.KindSavings {
		m.savings = append(m.savings, a)
	} else {
		m.checking = append(m.checking, a)
	}
	m.logger.Info("account opened", "account", a.Name(), "type", a.Kind())
	return m.saveAccounts()
}

// AddChecking opens a checking account with the given overdraft limit.
func (m *Manager) AddChecking(name string, overdraftLimit float64) error {
	if err := m.checkCanAdd(model.KindChecking, name); err != nil {
		return err
	}
	if overdraftLimit < 0 {
		return ErrNegativeValue
	}
	a := model.NewChecking(name)
	a.SetOverdraftLimit(overdraftLimit)
	return m.add(a)
}

// AddSavings opens a savings account paying rate percent per interest run.
func (m *Manager) AddSavings(name string, rate float64) error {
	if err := m.checkCanAdd(model.KindSavings, name); err != nil {
		return err
	}
	if rate < 0 {
		return ErrNegativeValue
	}
	return m.add(model.NewSavings(name, rate))
}

// AccountByName finds an account by case-insensitive name.
func (m *Manager) AccountByName(name string) (*model.Account, bool) {
	for _, a := range m.Accounts() {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}

func (m *Manager) lookup(name string) (*model.Account, error) {
	a, ok := m.AccountByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	return a, nil
}

// Accounts lists checking accounts followed by savings accounts.
func (m *Manager) Accounts() []*model.Account {
	all := make([]*model.Account, 0, len(m.checking)+len(m.savings))
	all = append(all, m.checking...)
	return append(all, m.savings...)
}

func (m *Manager) CheckingAccounts() []*model.Account {
	return append([]*model.Account(nil), m.checking...)
}

func (m *Manager) SavingsAccounts() []*model.Account {
	return append([]*model.Account(nil), m.savings...)
}

// mutate looks up name, applies fn and persists.
func (m *Manager) mutate(name string, fn func(*model.Account)) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	fn(a)
	return m.saveAccounts()
}

func (m *Manager) FreezeAccount(name string) error {
	return m.mutate(name, (*model.Account).Freeze)
}

func (m *Manager) UnfreezeAccount(name string) error {
	return m.mutate(name, (*model.Account).Unfreeze)
}

func (m *Manager) setNonNegative(name string, v float64, set func(*model.Account, float64)) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	if v < 0 {
		return ErrNegativeValue
	}
	set(a, v)
	return m.saveAccounts()
}

func (m *Manager) SetOverdraftLimit(name string, limit float64) error {
	return m.setNonNegative(name, limit, (*model.Account).SetOverdraftLimit)
}

func (m *Manager) SetOverdraftInterestRate(name string, rate float64) error {
	return m.setNonNegative(name, rate, (*model.Account).SetOverdraftInterestRate)
}

func (m *Manager) SetWithdrawalLimit(name string, limit float64) error {
	return m.setNonNegative(name, limit, (*model.Account).SetWithdrawalLimit)
}

// SetTransferLimit changes the per-transfer cap. Zero is rejected as well,
// since an account must be able to transfer something.
func (m *Manager) SetTransferLimit(name string, limit float64) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	if limit < 0 {
		return ErrNegativeValue
	}
	if !a.SetTransferLimit(limit) {
		return fmt.Errorf("%w: transfer limit must be positive", model.ErrValidation)
	}
	return m.saveAccounts()
}

// CloseAccount removes an account whose balance is not negative.
func (m *Manager) CloseAccount(name string) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	if !a.CanClose() {
		return ErrCannotClose
	}
	m.checking = remove(m.checking, a)
	m.savings = remove(m.savings, a)
	m.logger.Info("account closed", "account", a.Name())
	return m.saveAccounts()
}

func remove(accounts []*model.Account, target *model.Account) []*model.Account {
	out := accounts[:0]
	for _, a := range accounts {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}

// ApplyInterestToAllSavings credits interest to every non-frozen savings
// account and returns the total credited.
func (m *Manager) ApplyInterestToAllSavings(ctx context.Context) (float64, error) {
	total := 0.0
	for _, a := range m.savings {
		if a.Frozen() {
			continue
		}
		interest, _ := a.ApplyInterest()
		total += interest
	}
	return total, m.saveAccounts()
}

// ApplyOverdraftInterestToAll charges overdraft interest on every non-frozen
// account with a negative balance and returns the total charged. Each charge
// is written to the account's history.
func (m *Manager) ApplyOverdraftInterestToAll(ctx context.Context) (float64, error) {
	total := 0.0
	var errs []error
	for _, a := range m.Accounts() {
		if a.Frozen() || a.Balance() >= 0 {
			continue
		}
		charged := a.ApplyOverdraftInterest()
		total += charged
		if err := m.recordTransaction(ctx, a.Name(), "Overdraft Interest Charged: "+dollars(charged)); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, m.saveAccounts())
	return total, errors.Join(errs...)
}

// MigrateExistingAccount adopts an account from a pre-collection session.
// It is named "Primary <Type>", with a numeric suffix when that is taken.
func (m *Manager) MigrateExistingAccount(existing *model.Account) error {
	if existing == nil {
		return fmt.Errorf("%w: no account to migrate", model.ErrValidation)
	}
	name := m.migratedName(existing.Kind())
	if err := m.checkCanAdd(existing.Kind(), name); err != nil {
		return err
	}

	r := existing.Record()
	migrated := model.Restore(model.Record{
		Name:                  name,
		Kind:                  r.Kind,
		Balance:               r.Balance,
		OverdraftLimit:        r.OverdraftLimit,
		OverdraftInterestRate: r.OverdraftInterestRate,
		WithdrawalLimit:       model.DefaultWithdrawalLimit,
		InterestRate:          r.InterestRate,
	})
	return m.add(migrated)
}

func (m *Manager) migratedName(kind model.Kind) string {
	base := "Primary " + kind.Title()
	name := base
	for i := 1; m.nameTaken(name); i++ {
		name = fmt.Sprintf("%s %d", base, i)
	}
	return name
}

// Deposit credits a positive amount and records it.
func (m *Manager) Deposit(ctx context.Context, name string, amount float64) error {
	return m.credit(ctx, name, amount, "Deposit: "+dollars(amount))
}

// DepositCheck credits a check deposit and records the check number.
func (m *Manager) DepositCheck(ctx context.Context, name string, checkNumber int, amount float64) error {
	if checkNumber <= 0 {
		return fmt.Errorf("%w: check number must be positive", model.ErrValidation)
	}
	return m.credit(ctx, name, amount, fmt.Sprintf("Deposited Check #%d: %s", checkNumber, dollars(amount)))
}

func (m *Manager) credit(ctx context.Context, name string, amount float64, description string) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	if !a.Deposit(amount) {
		return model.ErrFrozen
	}
	return errors.Join(m.recordTransaction(ctx, a.Name(), description), m.saveAccounts())
}

// Withdraw debits a positive amount subject to the account's rules.
func (m *Manager) Withdraw(ctx context.Context, name string, amount float64) error {
	a, err := m.lookup(name)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	if err := a.Withdraw(amount); err != nil {
		return err
	}
	return errors.Join(m.recordTransaction(ctx, a.Name(), "Withdraw: "+dollars(amount)), m.saveAccounts())
}

// ApplyInterest credits interest to a single savings account.
func (m *Manager) ApplyInterest(ctx context.Context, name string) (float64, error) {
	a, err := m.lookup(name)
	if err != nil {
		return 0, err
	}
	if a.Frozen() {
		return 0, model.ErrFrozen
	}
	interest, ok := a.ApplyInterest()
	if !ok {
		return 0, model.ErrNotSavings
	}
	return interest, m.saveAccounts()
}

// OrderChecks places a check order for a checking account and returns the
// order id.
func (m *Manager) OrderChecks(ctx context.Context, name string) (string, error) {
	a, err := m.orderable(name)
	if err != nil {
		return "", err
	}
	id, err := a.OrderChecks()
	if err != nil {
		return "", err
	}
	return id, m.recordTransaction(ctx, a.Name(), "Ordered checks")
}

// OrderDebitCard issues a debit card and returns its last four digits.
func (m *Manager) OrderDebitCard(ctx context.Context, name string) (string, error) {
	a, err := m.orderable(name)
	if err != nil {
		return "", err
	}
	lastFour, err := a.OrderDebitCard()
	if err != nil {
		return "", err
	}
	return lastFour, m.recordTransaction(ctx, a.Name(), "Ordered debit card ending in "+lastFour)
}

func (m *Manager) orderable(name string) (*model.Account, error) {
	a, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if a.Frozen() {
		return nil, model.ErrFrozen
	}
	return a, nil
}

// History returns the account's full history, oldest first.
func (m *Manager) History(ctx context.Context, name string) ([]string, error) {
	a, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	lines, err := m.ledger.History(ctx, m.owner, a.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	return lines, nil
}

// LastTransactions returns the trailing n history entries (5 when n <= 0).
func (m *Manager) LastTransactions(ctx context.Context, name string, n int) ([]string, error) {
	a, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	lines, err := m.ledger.LastN(ctx, m.owner, a.Name(), n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	return lines, nil
}

// Transfer moves amount from sourceName to targetName.
func (m *Manager) Transfer(ctx context.Context, sourceName, targetName string, amount float64) error {
	source, err := m.lookup(sourceName)
	if err != nil {
		return err
	}
	return Transfer(ctx, m, source, targetName, amount)
}
