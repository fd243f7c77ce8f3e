package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"tradebook"
)

type accountCmd struct {
	name string
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "register a new account" }
func (*accountCmd) Usage() string {
	return `tradebook account -name <display name>

  Registers a new brokerage account in the journal and prints its id.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Display name of the account.")
}

func (c *accountCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Println("missing -name")
		return subcommands.ExitUsageError
	}
	return mutate(func(j *tradebook.Journal) error {
		a := j.NewAccount(c.name)
		fmt.Printf("account %d: %s\n", a.ID(), a.Name())
		return nil
	})
}

type portfolioCmd struct {
	parent int64
	name   string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "create a new child portfolio" }
func (*portfolioCmd) Usage() string {
	return `tradebook portfolio [-parent <id>] -name <display name>

  Creates a portfolio under the given parent (default: the root) and prints
  its id.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.parent, "parent", 1, "Id of the parent portfolio.")
	f.StringVar(&c.name, "name", "", "Display name of the portfolio.")
}

func (c *portfolioCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Println("missing -name")
		return subcommands.ExitUsageError
	}
	return mutate(func(j *tradebook.Journal) error {
		p, err := j.NewPortfolio(tradebook.PortfolioID(c.parent), c.name)
		if err != nil {
			return err
		}
		fmt.Printf("portfolio %d: %s\n", p.ID(), p.Name())
		return nil
	})
}
