package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"tradebook"
)

type allocateCmd struct {
	entryFlags
	portfolio int64
	amount    float64
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "allocate unallocated cash to a portfolio" }
func (*allocateCmd) Usage() string {
	return `tradebook allocate -a <account> -p <portfolio> -amount <value> [-d <date>] [-m <memo>]

  Moves virtual cash from the account's unallocated pool to the portfolio.
  No physical cash moves.
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.Int64Var(&c.portfolio, "p", 0, "Id of the target portfolio.")
	f.Float64Var(&c.amount, "amount", 0, "Amount to allocate.")
}

func (c *allocateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewCashAllocation(tradebook.AccountID(c.account), tradebook.PortfolioID(c.portfolio), on, tradebook.M(c.amount, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: allocated %s to portfolio %d\n", e.ID(), e.Amount, c.portfolio)
		return nil
	})
}

type deallocateCmd struct {
	entryFlags
	portfolio int64
	amount    float64
}

func (*deallocateCmd) Name() string     { return "deallocate" }
func (*deallocateCmd) Synopsis() string { return "move portfolio cash back to the unallocated pool" }
func (*deallocateCmd) Usage() string {
	return `tradebook deallocate -a <account> -p <portfolio> -amount <value> [-d <date>] [-m <memo>]

  Moves virtual cash from the portfolio back to the account's unallocated
  pool.
`
}

func (c *deallocateCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.Int64Var(&c.portfolio, "p", 0, "Id of the source portfolio.")
	f.Float64Var(&c.amount, "amount", 0, "Amount to deallocate.")
}

func (c *deallocateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewCashDeallocation(tradebook.AccountID(c.account), tradebook.PortfolioID(c.portfolio), on, tradebook.M(c.amount, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: deallocated %s from portfolio %d\n", e.ID(), e.Amount, c.portfolio)
		return nil
	})
}
