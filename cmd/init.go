package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"tradebook"
)

type initCmd struct {
	currency string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new, empty journal file" }
func (*initCmd) Usage() string {
	return `tradebook init [-currency <code>]

  Creates the journal file with its reporting currency and implicit root
  portfolio. Fails if the file already exists.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "USD", "Reporting currency for the journal.")
}

func (c *initCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := os.Stat(*journalFile); err == nil {
		fmt.Fprintf(os.Stderr, "journal %q already exists\n", *journalFile)
		return subcommands.ExitFailure
	}
	j := tradebook.NewJournal(c.currency)
	if err := saveJournal(j); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("created %s (currency %s)\n", *journalFile, c.currency)
	return subcommands.ExitSuccess
}
