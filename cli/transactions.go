package cli

import (
	"context"
	"flag"
	"fmt"

	"personal-ledger/model"
	"personal-ledger/service"

	"github.com/google/subcommands"
)

type depositCmd struct {
	*App
	check int
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit money into an account" }
func (*depositCmd) Usage() string {
	return `ledger deposit [-check <number>] <name> <amount>

  Deposits a positive amount such as 75.50 or $75.50. With -check the
  deposit is recorded as a check deposit.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.check, "check", 0, "Check number, for check deposits.")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.usage("deposit requires an account name and an amount")
	}
	name := f.Arg(0)
	amount, err := model.ParseAmount(f.Arg(1))
	if err != nil {
		return c.fail(err)
	}
	return c.withManager(func(m *service.Manager) error {
		if c.check > 0 {
			err = m.DepositCheck(ctx, name, c.check, amount)
		} else {
			err = m.Deposit(ctx, name, amount)
		}
		if err != nil {
			return err
		}
		return c.printBalance(m, name)
	})
}

type withdrawCmd struct {
	*App
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw money from an account" }
func (*withdrawCmd) Usage() string {
	return `ledger withdraw <name> <amount>

  Withdraws a positive amount within the account's withdrawal and overdraft
  limits.
`
}

func (*withdrawCmd) SetFlags(*flag.FlagSet) {}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.usage("withdraw requires an account name and an amount")
	}
	name := f.Arg(0)
	amount, err := model.ParseAmount(f.Arg(1))
	if err != nil {
		return c.fail(err)
	}
	return c.withManager(func(m *service.Manager) error {
		if err := m.Withdraw(ctx, name, amount); err != nil {
			return err
		}
		return c.printBalance(m, name)
	})
}

type transferCmd struct {
	*App
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two of your accounts" }
func (*transferCmd) Usage() string {
	return `ledger transfer <source> <target> <amount>

  Transfers are limited per source account (2000 checking, 1000 savings)
  and rejected when the target is frozen.
`
}

func (*transferCmd) SetFlags(*flag.FlagSet) {}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		return c.usage("transfer requires a source, a target and an amount")
	}
	source, target := f.Arg(0), f.Arg(1)
	amount, err := model.ParseAmount(f.Arg(2))
	if err != nil {
		return c.fail(err)
	}
	return c.withManager(func(m *service.Manager) error {
		if err := m.Transfer(ctx, source, target, amount); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "Transferred %s from %s to %s.\n", model.FormatUSD(amount), source, target)
		if err := c.printBalance(m, source); err != nil {
			return err
		}
		return c.printBalance(m, target)
	})
}

type interestCmd struct {
	*App
	overdraft bool
	account   string
}

func (*interestCmd) Name() string     { return "interest" }
func (*interestCmd) Synopsis() string { return "apply savings or overdraft interest" }
func (*interestCmd) Usage() string {
	return `ledger interest [-overdraft] [-account <name>]

  Credits interest to every non-frozen savings account, or to a single
  savings account with -account. With -overdraft, charges overdraft interest
  on every non-frozen account with a negative balance instead.
`
}

func (c *interestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.overdraft, "overdraft", false, "Charge overdraft interest instead of paying savings interest.")
	f.StringVar(&c.account, "account", "", "Apply savings interest to this account only.")
}

func (c *interestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.overdraft && c.account != "" {
		return c.usage("-overdraft and -account cannot be combined")
	}
	return c.withManager(func(m *service.Manager) error {
		switch {
		case c.overdraft:
			total, err := m.ApplyOverdraftInterestToAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "Overdraft interest charged: %s\n", model.FormatUSD(total))
		case c.account != "":
			interest, err := m.ApplyInterest(ctx, c.account)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "Interest credited to %s: %s\n", c.account, model.FormatUSD(interest))
		default:
			total, err := m.ApplyInterestToAllSavings(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "Savings interest credited: %s\n", model.FormatUSD(total))
		}
		return nil
	})
}

type historyCmd struct {
	*App
	n   int
	all bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show an account's transaction history" }
func (*historyCmd) Usage() string {
	return `ledger history [-n <count>] [-all] <name>

  Prints the most recent entries, oldest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 5, "Number of recent entries to show.")
	f.BoolVar(&c.all, "all", false, "Show the full history.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.usage("history requires exactly one account name")
	}
	return c.withManager(func(m *service.Manager) error {
		var lines []string
		var err error
		if c.all {
			lines, err = m.History(ctx, f.Arg(0))
		} else {
			lines, err = m.LastTransactions(ctx, f.Arg(0), c.n)
		}
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Fprintln(c.Out, "No transactions.")
		}
		for _, line := range lines {
			fmt.Fprintln(c.Out, line)
		}
		return nil
	})
}

func (a *App) printBalance(m *service.Manager, name string) error {
	acct, ok := m.AccountByName(name)
	if !ok {
		return service.ErrAccountNotFound
	}
	fmt.Fprintf(a.Out, "%s balance: %s\n", acct.Name(), model.FormatUSD(acct.Balance()))
	return nil
}
