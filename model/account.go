package model

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Kind tags the account variant.
type Kind string

const (
	KindChecking Kind = "checking"
	KindSavings  Kind = "savings"
)

// Defaults applied to every new account.
const (
	DefaultWithdrawalLimit       = 10000.0
	DefaultOverdraftLimit        = 0.0
	DefaultOverdraftInterestRate = 15.0

	CheckingTransferLimit = 2000.0
	SavingsTransferLimit  = 1000.0
)

// Title returns the display form of the kind, e.g. "Checking".
func (k Kind) Title() string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultTransferLimit returns the per-transfer cap a new account of kind k gets.
func (k Kind) DefaultTransferLimit() float64 {
	if k == KindSavings {
		return SavingsTransferLimit
	}
	return CheckingTransferLimit
}

// Account is a single checking or savings account.
//
// Balances are float64 on purpose: interest rounding follows binary
// floating point, not fixed-point minor units.
type Account struct {
	name                  string
	kind                  Kind
	balance               float64
	withdrawalLimit       float64
	overdraftLimit        float64
	overdraftInterestRate float64
	transferLimit         float64
	frozen                bool

	// interestRate is only meaningful when kind == KindSavings.
	interestRate float64
}

func newAccount(name string, kind Kind) *Account {
	return &Account{
		name:                  name,
		kind:                  kind,
		withdrawalLimit:       DefaultWithdrawalLimit,
		overdraftLimit:        DefaultOverdraftLimit,
		overdraftInterestRate: DefaultOverdraftInterestRate,
		transferLimit:         kind.DefaultTransferLimit(),
	}
}

// NewChecking creates an empty, active checking account.
func NewChecking(name string) *Account {
	return newAccount(name, KindChecking)
}

// NewSavings creates an empty, active savings account earning rate percent.
func NewSavings(name string, rate float64) *Account {
	a := newAccount(name, KindSavings)
	a.interestRate = rate
	return a
}

// Restore rebuilds an account from its persisted record. A zero transfer
// limit falls back to the kind's default.
func Restore(r Record) *Account {
	a := newAccount(r.Name, r.Kind)
	a.balance = r.Balance
	a.frozen = r.Frozen
	a.overdraftLimit = r.OverdraftLimit
	a.overdraftInterestRate = r.OverdraftInterestRate
	a.withdrawalLimit = r.WithdrawalLimit
	if r.TransferLimit > 0 {
		a.transferLimit = r.TransferLimit
	}
	if r.Kind == KindSavings {
		a.interestRate = r.InterestRate
	}
	return a
}

func (a *Account) Name() string                   { return a.name }
func (a *Account) Kind() Kind                     { return a.kind }
func (a *Account) Balance() float64               { return a.balance }
func (a *Account) WithdrawalLimit() float64       { return a.withdrawalLimit }
func (a *Account) OverdraftLimit() float64        { return a.overdraftLimit }
func (a *Account) OverdraftInterestRate() float64 { return a.overdraftInterestRate }
func (a *Account) TransferLimit() float64         { return a.transferLimit }
func (a *Account) Frozen() bool                   { return a.frozen }

// InterestRate reports the savings rate; ok is false for checking accounts.
func (a *Account) InterestRate() (rate float64, ok bool) {
	if a.kind != KindSavings {
		return 0, false
	}
	return a.interestRate, true
}

// OverdraftAmount is how far the balance is below zero.
func (a *Account) OverdraftAmount() float64 {
	if a.balance < 0 {
		return -a.balance
	}
	return 0
}

// AvailableFunds is the largest amount the balance and overdraft allow,
// ignoring the per-transaction withdrawal limit.
func (a *Account) AvailableFunds() float64 {
	return a.balance + a.overdraftLimit
}

// Deposit credits amount unless the account is frozen. The amount is not
// validated here; callers reject non-positive amounts before calling.
// It reports whether the balance was credited.
func (a *Account) Deposit(amount float64) bool {
	if a.frozen {
		return false
	}
	a.balance += amount
	return true
}

// Withdraw debits amount if the account is active, amount is within the
// withdrawal limit, and the resulting balance stays at or above
// -overdraftLimit. On failure the balance is unchanged.
func (a *Account) Withdraw(amount float64) error {
	if a.frozen {
		return ErrFrozen
	}
	if amount > a.withdrawalLimit {
		return fmt.Errorf("%w of %s", ErrWithdrawalLimit, FormatUSD(a.withdrawalLimit))
	}
	if a.balance >= amount || a.balance-amount >= -a.overdraftLimit {
		a.balance -= amount
		return nil
	}
	return fmt.Errorf("%w: maximum withdrawal is %s", ErrInsufficientFunds, FormatUSD(a.AvailableFunds()))
}

// ApplyOverdraftInterest charges overdraftInterestRate percent of the
// overdrawn amount and returns the charge. Non-negative balances are not
// charged. Freeze does not block it.
func (a *Account) ApplyOverdraftInterest() float64 {
	if a.balance >= 0 {
		return 0
	}
	interest := -a.balance * (a.overdraftInterestRate / 100)
	a.balance -= interest
	return interest
}

// ApplyInterest credits balance*interestRate/100 to a savings account and
// returns the credit. The credit is applied to negative balances too, which
// shrinks an overdraft. ok is false for checking accounts.
func (a *Account) ApplyInterest() (interest float64, ok bool) {
	if a.kind != KindSavings {
		return 0, false
	}
	interest = a.balance * (a.interestRate / 100)
	a.balance += interest
	return interest, true
}

// CanClose reports whether the balance allows closing the account.
func (a *Account) CanClose() bool {
	return a.balance >= 0
}

func (a *Account) Freeze()   { a.frozen = true }
func (a *Account) Unfreeze() { a.frozen = false }

func (a *Account) SetWithdrawalLimit(limit float64)      { a.withdrawalLimit = limit }
func (a *Account) SetOverdraftLimit(limit float64)       { a.overdraftLimit = limit }
func (a *Account) SetOverdraftInterestRate(rate float64) { a.overdraftInterestRate = rate }

// SetTransferLimit changes the per-transfer cap. Non-positive limits are
// ignored and reported as false.
func (a *Account) SetTransferLimit(limit float64) bool {
	if limit <= 0 {
		return false
	}
	a.transferLimit = limit
	return true
}

// OrderChecks places a check order and returns its confirmation id.
func (a *Account) OrderChecks() (string, error) {
	if a.kind != KindChecking {
		return "", ErrNotChecking
	}
	return "CHK-" + strings.ToUpper(uuid.NewString()[:8]), nil
}

// OrderDebitCard issues a card number of the form 2025-XXXX-XXXX-XXXX and
// returns its last four digits.
func (a *Account) OrderDebitCard() (string, error) {
	if a.kind != KindChecking {
		return "", ErrNotChecking
	}
	var b strings.Builder
	b.WriteString("2025")
	for i := 0; i < 12; i++ {
		if i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	number := b.String()
	return number[len(number)-4:], nil
}

// Record returns the plain form of the account.
func (a *Account) Record() Record {
	r := Record{
		Name:                  a.name,
		Kind:                  a.kind,
		Balance:               a.balance,
		Frozen:                a.frozen,
		OverdraftLimit:        a.overdraftLimit,
		OverdraftInterestRate: a.overdraftInterestRate,
		WithdrawalLimit:       a.withdrawalLimit,
		TransferLimit:         a.transferLimit,
	}
	if a.kind == KindSavings {
		r.InterestRate = a.interestRate
	}
	return r
}
