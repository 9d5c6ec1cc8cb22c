// Package cli implements the ledger command-line tool on top of the flat-file
// account store and history.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"personal-ledger/service"
	"personal-ledger/storage"

	"github.com/google/subcommands"
)

// App carries the global flags and output streams shared by every command.
type App struct {
	DataDir string
	User    string

	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger
}

// NewApp returns an App writing to stdout and stderr.
func NewApp() *App {
	return &App{Out: os.Stdout, Err: os.Stderr, Logger: slog.Default()}
}

// SetFlags registers the global flags on f.
func (a *App) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.DataDir, "data-dir", "data/Accounts", "Root directory of account and history files.")
	f.StringVar(&a.User, "user", os.Getenv("USER"), "Owner whose accounts are managed.")
}

// Register the subcommands.
func Register(c *subcommands.Commander, a *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&accountsCmd{App: a}, "accounts")
	c.Register(&openCmd{App: a}, "accounts")
	c.Register(&closeCmd{App: a}, "accounts")
	c.Register(&freezeCmd{App: a, freeze: true}, "accounts")
	c.Register(&freezeCmd{App: a}, "accounts")
	c.Register(&limitsCmd{App: a}, "accounts")
	c.Register(&orderCmd{App: a}, "accounts")

	c.Register(&depositCmd{App: a}, "transactions")
	c.Register(&withdrawCmd{App: a}, "transactions")
	c.Register(&transferCmd{App: a}, "transactions")
	c.Register(&interestCmd{App: a}, "transactions")
	c.Register(&historyCmd{App: a}, "transactions")
}

// OpenManager loads the accounts of the selected user from DataDir.
func (a *App) OpenManager() (*service.Manager, error) {
	if a.User == "" {
		return nil, errors.New("no user selected: set -user")
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := storage.NewFileAccountStore(a.DataDir, logger)
	ledger := storage.NewFileLedger(a.DataDir)
	return service.OpenManager(a.User, store, ledger, logger)
}

// fail prints err and returns ExitFailure.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, "Error:", err)
	return subcommands.ExitFailure
}

// usage prints msg and returns ExitUsageError.
func (a *App) usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, msg)
	return subcommands.ExitUsageError
}

// withManager opens the manager and runs fn.
func (a *App) withManager(fn func(m *service.Manager) error) subcommands.ExitStatus {
	m, err := a.OpenManager()
	if err != nil {
		return a.fail(err)
	}
	if err := fn(m); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}
