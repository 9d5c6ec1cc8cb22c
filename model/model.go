// Package model defines the account state machine and the data structures
// exchanged with the storage and HTTP layers.
package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amounts arriving from users are parsed as decimal.Decimal so malformed or
// non-positive input is rejected before it reaches an Account. Balances
// themselves stay float64; see Account.

// Record is the plain, persisted form of an Account.
type Record struct {
	Name                  string  `json:"name"`
	Kind                  Kind    `json:"type"`
	Balance               float64 `json:"balance"`
	Frozen                bool    `json:"frozen"`
	OverdraftLimit        float64 `json:"overdraft_limit"`
	OverdraftInterestRate float64 `json:"overdraft_interest_rate"`
	WithdrawalLimit       float64 `json:"withdrawal_limit"`
	TransferLimit         float64 `json:"transfer_limit"`
	InterestRate          float64 `json:"interest_rate,omitempty"`
}

// OpenAccountRequest defines the expected JSON body for opening an account.
type OpenAccountRequest struct {
	Name           string          `json:"name"`
	Type           Kind            `json:"type"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
}

// AmountRequest defines the expected JSON body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest defines the expected JSON body for a transfer between two
// accounts of the same owner.
type TransferRequest struct {
	Source string          `json:"source"`
	Target string          `json:"target"`
	Amount decimal.Decimal `json:"amount"`
}

// LimitsRequest updates any subset of an account's limits.
type LimitsRequest struct {
	OverdraftLimit        *decimal.Decimal `json:"overdraft_limit,omitempty"`
	OverdraftInterestRate *decimal.Decimal `json:"overdraft_interest_rate,omitempty"`
	TransferLimit         *decimal.Decimal `json:"transfer_limit,omitempty"`
	WithdrawalLimit       *decimal.Decimal `json:"withdrawal_limit,omitempty"`
}

// InterestResult reports the total moved by a bulk interest run.
type InterestResult struct {
	Total float64 `json:"total"`
}

// PositiveAmount converts a user-supplied amount to float64, rejecting zero
// and negative values.
func PositiveAmount(d decimal.Decimal) (float64, error) {
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// ParseAmount parses a user-entered amount such as "75.50" or "$75.50".
func ParseAmount(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return PositiveAmount(d)
}

// FormatUSD renders amount as dollars and cents, e.g. "$75.50".
func FormatUSD(amount float64) string {
	return money.New(int64(math.Round(amount*100)), money.USD).Display()
}
