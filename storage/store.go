package storage

import (
	"context"
	"time"

	"personal-ledger/model"
)

// TimestampLayout formats history timestamps as MM-dd-yyyy HH:mm:ss.
const TimestampLayout = "01-02-2006 15:04:05"

// DefaultLastN is the number of entries LastN returns when n <= 0.
const DefaultLastN = 5

// AccountStore persists the whole account collection of one owner.
type AccountStore interface {
	Load(owner string) (checking, savings []model.Record, err error)
	Save(owner string, checking, savings []model.Record) error
}

// Ledger is the append-only transaction history of every account.
type Ledger interface {
	RecordTransaction(ctx context.Context, owner, account, description string) error
	History(ctx context.Context, owner, account string) ([]string, error)
	LastN(ctx context.Context, owner, account string, n int) ([]string, error)
}

// entryLine renders one history line.
func entryLine(description string, at time.Time) string {
	return description + ", " + at.Format(TimestampLayout)
}

// tail returns the last n lines in their original order.
func tail(lines []string, n int) []string {
	if n <= 0 {
		n = DefaultLastN
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
