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

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their cash balances" }
func (*accountsCmd) Usage() string {
	return `tradebook accounts

  Lists every account with its physical cash, unallocated cash and
  per-portfolio allocations.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, err := loadJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString("# Accounts\n\n")
	b.WriteString("| Id | Name | Cash | Unallocated |\n")
	b.WriteString("|---:|:-----|-----:|------------:|\n")
	for a := range j.Accounts() {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", a.ID(), a.Name(), a.CashBalance(), a.UnallocatedCash())
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type portfoliosCmd struct{}

func (*portfoliosCmd) Name() string     { return "portfolios" }
func (*portfoliosCmd) Synopsis() string { return "show the portfolio tree with aggregated cash" }
func (*portfoliosCmd) Usage() string {
	return `tradebook portfolios

  Prints the portfolio tree with each node's own and aggregated cash.
`
}

func (*portfoliosCmd) SetFlags(*flag.FlagSet) {}

func (*portfoliosCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, err := loadJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	snapshot, err := j.SnapshotPortfolio(j.Root().ID())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString("# Portfolios\n\n")
	b.WriteString("| Id | Name | Own cash | Aggregated |\n")
	b.WriteString("|---:|:-----|---------:|-----------:|\n")
	writePortfolioRows(&b, snapshot, 0)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

func writePortfolioRows(b *strings.Builder, s tradebook.PortfolioSnapshot, depth int) {
	indent := strings.Repeat("&nbsp;&nbsp;", depth)
	fmt.Fprintf(b, "| %d | %s%s | %s | %s |\n", s.ID, indent, s.Name, s.CashBalance, s.AggregatedCashBalance)
	for _, child := range s.Children {
		writePortfolioRows(b, child, depth+1)
	}
}
