package service

import (
	"log/slog"
	"sync"

	"personal-ledger/storage"
)

// Registry hands out one Manager per owner and serializes all work on them.
type Registry struct {
	mu       sync.Mutex
	store    storage.AccountStore
	ledger   storage.Ledger
	logger   *slog.Logger
	managers map[string]*Manager
}

func NewRegistry(store storage.AccountStore, ledger storage.Ledger, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:    store,
		ledger:   ledger,
		logger:   logger,
		managers: make(map[string]*Manager),
	}
}

// Do runs fn with the owner's manager, opening it on first use. Only one fn
// runs at a time across all owners.
func (r *Registry) Do(owner string, fn func(*Manager) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[owner]
	if !ok {
		var err error
		m, err = OpenManager(owner, r.store, r.ledger, r.logger)
		if err != nil {
			return err
		}
		r.managers[owner] = m
	}
	return fn(m)
}
