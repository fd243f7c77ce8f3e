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

type logCmd struct {
	account int64
	kind    string
	tag     string
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "list the journal's entries" }
func (*logCmd) Usage() string {
	return `tradebook log [-a <account>] [-kind <kind>] [-tag <tag>]

  Lists the global entry sequence, optionally filtered by account, kind or
  tag.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "a", 0, "Only entries of this account.")
	f.StringVar(&c.kind, "kind", "", "Only entries of this kind (deposit, withdraw, allocate, deallocate, buy, sell).")
	f.StringVar(&c.tag, "tag", "", "Only entries carrying this tag.")
}

func (c *logCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, err := loadJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	filter := func(e tradebook.Entry) bool {
		if c.account != 0 && e.Account() != tradebook.AccountID(c.account) {
			return false
		}
		if c.kind != "" && e.Kind() != tradebook.EntryKind(c.kind) {
			return false
		}
		if c.tag != "" && !tradebook.ByTag(c.tag)(e) {
			return false
		}
		return true
	}

	var b strings.Builder
	b.WriteString("# Journal log\n\n")
	b.WriteString("| Id | Date | Kind | Account | Memo |\n")
	b.WriteString("|---:|:-----|:-----|--------:|:-----|\n")
	for e := range j.Entries(filter) {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %s |\n",
			e.ID(), e.When(), e.Kind(), e.Account(), e.Rationale())
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
