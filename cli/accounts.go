package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"personal-ledger/model"
	"personal-ledger/service"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type accountsCmd struct {
	*App
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list all accounts with balances and limits" }
func (*accountsCmd) Usage() string {
	return `ledger accounts

  Lists checking accounts followed by savings accounts.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (c *accountsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.withManager(func(m *service.Manager) error {
		accounts := m.Accounts()
		if len(accounts) == 0 {
			fmt.Fprintln(c.Out, "No accounts.")
			return nil
		}
		w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tBALANCE\tSTATUS\tOVERDRAFT\tDETAILS")
		for _, a := range accounts {
			status := "active"
			if a.Frozen() {
				status = "frozen"
			}
			details := fmt.Sprintf("rate %.2f%%", a.OverdraftInterestRate())
			if rate, ok := a.InterestRate(); ok {
				details = fmt.Sprintf("interest %.2f%%", rate)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				a.Name(), a.Kind().Title(), model.FormatUSD(a.Balance()), status,
				model.FormatUSD(a.OverdraftLimit()), details)
		}
		return w.Flush()
	})
}

type openCmd struct {
	*App
	kind      string
	overdraft string
	rate      float64
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open a checking or savings account" }
func (*openCmd) Usage() string {
	return `ledger open [-type checking|savings] [-overdraft <amount>] [-rate <percent>] <name>

  Opens a new account. At most 2 checking and 3 savings accounts are allowed,
  and names must be unique regardless of case.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "type", string(model.KindChecking), "Account type (checking, savings).")
	f.StringVar(&c.overdraft, "overdraft", "0", "Overdraft limit for checking accounts.")
	f.Float64Var(&c.rate, "rate", 0, "Interest rate in percent for savings accounts.")
}

func (c *openCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("open requires exactly one account name")
	}
	name := f.Arg(0)

	return c.withManager(func(m *service.Manager) error {
		switch model.Kind(c.kind) {
		case model.KindChecking:
			overdraft, err := parseLimit(c.overdraft)
			if err != nil {
				return err
			}
			if err := m.AddChecking(name, overdraft); err != nil {
				return err
			}
		case model.KindSavings:
			if err := m.AddSavings(name, c.rate); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown account type %q", model.ErrValidation, c.kind)
		}
		fmt.Fprintf(c.Out, "Opened %s account %q.\n", c.kind, name)
		return nil
	})
}

type closeCmd struct {
	*App
	yes bool
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close an account with a non-negative balance" }
func (*closeCmd) Usage() string {
	return `ledger close -yes <name>

  Closes the account. Its history file is kept.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm closing the account.")
}

func (c *closeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("close requires exactly one account name")
	}
	if !c.yes {
		return c.usage("refusing to close without -yes")
	}
	return c.withManager(func(m *service.Manager) error {
		if err := m.CloseAccount(f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "Closed %q.\n", f.Arg(0))
		return nil
	})
}

// freezeCmd implements both freeze and unfreeze.
type freezeCmd struct {
	*App
	freeze bool
}

func (c *freezeCmd) Name() string {
	if c.freeze {
		return "freeze"
	}
	return "unfreeze"
}

func (c *freezeCmd) Synopsis() string {
	if c.freeze {
		return "block deposits and withdrawals on an account"
	}
	return "allow deposits and withdrawals on a frozen account"
}

func (c *freezeCmd) Usage() string {
	return fmt.Sprintf("ledger %s <name>\n", c.Name())
}

func (*freezeCmd) SetFlags(*flag.FlagSet) {}

func (c *freezeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage(c.Name() + " requires exactly one account name")
	}
	return c.withManager(func(m *service.Manager) error {
		op, verb := m.UnfreezeAccount, "Unfroze"
		if c.freeze {
			op, verb = m.FreezeAccount, "Froze"
		}
		if err := op(f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "%s %q.\n", verb, f.Arg(0))
		return nil
	})
}

type limitsCmd struct {
	*App
	overdraft  string
	rate       string
	withdrawal string
}

func (*limitsCmd) Name() string     { return "limits" }
func (*limitsCmd) Synopsis() string { return "change an account's limits" }
func (*limitsCmd) Usage() string {
	return `ledger limits [-overdraft <amount>] [-rate <percent>] [-withdrawal <amount>] <name>

  Only the given limits are changed. Transfer limits are not stored in the
  account files and cannot be changed from the command line.
`
}

func (c *limitsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.overdraft, "overdraft", "", "Overdraft limit.")
	f.StringVar(&c.rate, "rate", "", "Overdraft interest rate in percent.")
	f.StringVar(&c.withdrawal, "withdrawal", "", "Per-transaction withdrawal limit.")
}

func (c *limitsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("limits requires exactly one account name")
	}
	name := f.Arg(0)
	if c.overdraft == "" && c.rate == "" && c.withdrawal == "" {
		return c.usage("limits requires at least one of -overdraft, -rate or -withdrawal")
	}
	updates := []struct {
		value string
		set   func(*service.Manager, string, float64) error
	}{
		{c.overdraft, (*service.Manager).SetOverdraftLimit},
		{c.rate, (*service.Manager).SetOverdraftInterestRate},
		{c.withdrawal, (*service.Manager).SetWithdrawalLimit},
	}
	return c.withManager(func(m *service.Manager) error {
		for _, u := range updates {
			if u.value == "" {
				continue
			}
			v, err := parseLimit(u.value)
			if err != nil {
				return err
			}
			if err := u.set(m, name, v); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.Out, "Updated limits for %q.\n", name)
		return nil
	})
}

// parseLimit accepts zero, unlike ParseAmount.
func parseLimit(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q", service.ErrNegativeValue, s)
	}
	return d.InexactFloat64(), nil
}

type orderCmd struct {
	*App
	card bool
}

func (*orderCmd) Name() string     { return "order" }
func (*orderCmd) Synopsis() string { return "order checks or a debit card for a checking account" }
func (*orderCmd) Usage() string {
	return `ledger order [-card] <name>

  Orders checks, or a debit card with -card.
`
}

func (c *orderCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.card, "card", false, "Order a debit card instead of checks.")
}

func (c *orderCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("order requires exactly one account name")
	}
	return c.withManager(func(m *service.Manager) error {
		if c.card {
			lastFour, err := m.OrderDebitCard(ctx, f.Arg(0))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "Debit card ending in %s ordered.\n", lastFour)
			return nil
		}
		id, err := m.OrderChecks(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "Checks ordered (order %s).\n", id)
		return nil
	})
}
