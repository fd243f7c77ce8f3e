package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"tradebook"
)

type holdingCmd struct {
	account int64
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "show an account's open and closed holdings" }
func (*holdingCmd) Usage() string {
	return `tradebook holding -a <account>

  Shows the account's open holdings with their aggregates, and closed
  holdings with realized gains.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "a", 0, "Id of the account to report on.")
}

func (c *holdingCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, err := loadJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	snapshot, err := j.SnapshotAccount(tradebook.AccountID(c.account))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings of %s\n\n", snapshot.Name)
	if len(snapshot.Holdings.Open) > 0 {
		b.WriteString("## Open\n\n")
		b.WriteString("| Ticker | Quantity | Avg price | Open value | Commission | Market value |\n")
		b.WriteString("|:-------|---------:|----------:|-----------:|-----------:|-------------:|\n")
		for _, h := range snapshot.Holdings.Open {
			market := "n/a"
			if h.Priced {
				market = h.MarketValue.String()
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				h.Ticker, h.Quantity, h.AvgOpenPrice, h.OpenValue, h.Commission, market)
		}
		b.WriteString("\n")
	}
	if len(snapshot.Holdings.Closed) > 0 {
		b.WriteString("## Closed\n\n")
		b.WriteString("| Ticker | Quantity | Realized gain | Gain |\n")
		b.WriteString("|:-------|---------:|--------------:|-----:|\n")
		for _, h := range snapshot.Holdings.Closed {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				h.Ticker, h.Quantity, h.RealizedGain.SignedString(), h.GainPercent.SignedString())
		}
	}
	if len(snapshot.Holdings.Open) == 0 && len(snapshot.Holdings.Closed) == 0 {
		b.WriteString("No holdings.\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
