package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"personal-ledger/model"
)

// MemoryAccountStore keeps collections in memory. Useful for tests and
// throwaway sessions.
type MemoryAccountStore struct {
	mu       sync.Mutex
	checking map[string][]model.Record
	savings  map[string][]model.Record
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		checking: make(map[string][]model.Record),
		savings:  make(map[string][]model.Record),
	}
}

func (s *MemoryAccountStore) Load(owner string) (checking, savings []model.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.checking[owner]), slices.Clone(s.savings[owner]), nil
}

func (s *MemoryAccountStore) Save(owner string, checking, savings []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checking[owner] = slices.Clone(checking)
	s.savings[owner] = slices.Clone(savings)
	return nil
}

// MemoryLedger keeps history in memory.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string][]string
	Now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string][]string), Now: time.Now}
}

func memoryKey(owner, account string) string {
	return owner + "\x00" + account
}

func (l *MemoryLedger) RecordTransaction(_ context.Context, owner, account, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := memoryKey(owner, account)
	l.entries[k] = append(l.entries[k], entryLine(description, l.Now()))
	return nil
}

func (l *MemoryLedger) History(_ context.Context, owner, account string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lines := slices.Clone(l.entries[memoryKey(owner, account)])
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

func (l *MemoryLedger) LastN(ctx context.Context, owner, account string, n int) ([]string, error) {
	lines, err := l.History(ctx, owner, account)
	if err != nil {
		return nil, err
	}
	return tail(lines, n), nil
}
