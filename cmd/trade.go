package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"tradebook"
)

// tradeFlags extends entryFlags with the fields shared by buy and sell.
type tradeFlags struct {
	entryFlags
	portfolio  int64
	ticker     string
	position   string
	quantity   float64
	price      float64
	commission float64
}

func (t *tradeFlags) set(f *flag.FlagSet) {
	t.entryFlags.set(f)
	f.Int64Var(&t.portfolio, "p", 0, "Id of the portfolio the trade belongs to.")
	f.StringVar(&t.ticker, "ticker", "", "Instrument ticker.")
	f.StringVar(&t.position, "position", "long", "Position label within the holding.")
	f.Float64Var(&t.quantity, "q", 0, "Quantity of units.")
	f.Float64Var(&t.price, "price", 0, "Per-unit price.")
	f.Float64Var(&t.commission, "commission", 0, "Commission charged on the trade.")
}

type buyCmd struct {
	tradeFlags
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record an equity purchase" }
func (*buyCmd) Usage() string {
	return `tradebook buy -a <account> -p <portfolio> -ticker <sym> -q <qty> -price <value> [-commission <value>] [-position <label>] [-d <date>] [-m <memo>]

  Opens a lot. The cash cost (quantity x price + commission) is debited from
  the account's cash and from the portfolio's allocation.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.tradeFlags.set(f) }

func (c *buyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewBuyEquity(tradebook.AccountID(c.account), tradebook.PortfolioID(c.portfolio), on,
			c.ticker, c.position, tradebook.Q(c.quantity),
			tradebook.M(c.price, j.Currency()), tradebook.M(c.commission, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: bought %s %s at %s\n", e.ID(), e.Quantity, e.Ticker, e.UnitPrice)
		return nil
	})
}

type sellCmd struct {
	tradeFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record an equity sale" }
func (*sellCmd) Usage() string {
	return `tradebook sell -a <account> -p <portfolio> -ticker <sym> -q <qty> -price <value> [-commission <value>] [-position <label>] [-d <date>] [-m <memo>]

  Closes open lots FIFO. The proceeds (quantity x price - commission) are
  credited to the account's cash and the portfolio's allocation.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.tradeFlags.set(f) }

func (c *sellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		on, err := c.when()
		if err != nil {
			return err
		}
		e, err := j.NewSellEquity(tradebook.AccountID(c.account), tradebook.PortfolioID(c.portfolio), on,
			c.ticker, c.position, tradebook.Q(c.quantity),
			tradebook.M(c.price, j.Currency()), tradebook.M(c.commission, j.Currency()), c.memo, c.labels()...)
		if err != nil {
			return err
		}
		if err := j.Submit(e); err != nil {
			return err
		}
		fmt.Printf("entry %d: sold %s %s at %s\n", e.ID(), e.Quantity, e.Ticker, e.UnitPrice)
		return nil
	})
}

type dropCmd struct {
	id int64
}

func (*dropCmd) Name() string     { return "drop" }
func (*dropCmd) Synopsis() string { return "remove an entry from the journal" }
func (*dropCmd) Usage() string {
	return `tradebook drop -id <entry>

  Detaches the entry everywhere it was applied and recomputes the affected
  account and portfolio.
`
}

func (c *dropCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Id of the entry to remove.")
}

func (c *dropCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return mutate(func(j *tradebook.Journal) error {
		if err := j.RemoveEntry(tradebook.EntryID(c.id)); err != nil {
			return err
		}
		fmt.Printf("entry %d removed\n", c.id)
		return nil
	})
}
