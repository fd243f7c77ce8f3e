package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"tradebook"
)

type depositCmd struct {
	entryFlags
	amount float64
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record a cash deposit into an account" }
func (*depositCmd) Usage() string {
	return `tradebook deposit -a <account> -amount <value> [-d <date>] [-m <memo>]

  Adds physical cash to the account; the amount also becomes unallocated
  virtual cash.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.Float64Var(&c.amount, "amount", 0, "Amount to deposit.")
}

func (c *depositCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewCashDeposit(tradebook.AccountID(c.account), on, tradebook.M(c.amount, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: deposited %s into account %d\n", e.ID(), e.Amount, c.account)
		return nil
	})
}

type withdrawCmd struct {
	entryFlags
	amount float64
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record a cash withdrawal from an account" }
func (*withdrawCmd) Usage() string {
	return `tradebook withdraw -a <account> -amount <value> [-d <date>] [-m <memo>]

  Removes physical cash from the account. Rejected when either the cash
  balance or the unallocated pool would go negative.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.Float64Var(&c.amount, "amount", 0, "Amount to withdraw.")
}

func (c *withdrawCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewCashWithdrawal(tradebook.AccountID(c.account), on, tradebook.M(c.amount, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: withdrew %s from account %d\n", e.ID(), e.Amount, c.account)
		return nil
	})
}
