// Package cmd implements the CLI application to manage a trading ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"tradebook"
)

// Register the subcommands.
// A main package calls Register() to declare subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "journal")
	c.Register(&accountCmd{}, "journal")
	c.Register(&portfolioCmd{}, "journal")

	c.Register(&depositCmd{}, "entries")
	c.Register(&withdrawCmd{}, "entries")
	c.Register(&allocateCmd{}, "entries")
	c.Register(&deallocateCmd{}, "entries")
	c.Register(&buyCmd{}, "entries")
	c.Register(&sellCmd{}, "entries")
	c.Register(&dropCmd{}, "entries")

	c.Register(&accountsCmd{}, "reports")
	c.Register(&portfoliosCmd{}, "reports")
	c.Register(&holdingCmd{}, "reports")
	c.Register(&logCmd{}, "reports")
}

// as a CLI application it is short lived, so globals are fine here.

var journalFile = flag.String("journal-file", "journal.jsonl", "Path to the journal file (JSONL format)")

// loadJournal decodes the journal from the app journal file.
func loadJournal() (*tradebook.Journal, error) {
	f, err := os.Open(*journalFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("journal %q does not exist, run 'init' first", *journalFile)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tradebook.DecodeJournal(f)
}

// saveJournal rewrites the whole journal file atomically.
func saveJournal(j *tradebook.Journal) error {
	tmp := *journalFile + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := tradebook.EncodeJournal(f, j); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, *journalFile)
}

// mutate loads the journal, runs the mutation, and persists on success.
func mutate(fn func(*tradebook.Journal) error) subcommands.ExitStatus {
	j, err := loadJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := fn(j); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := saveJournal(j); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Printf("could not render markdown: %v", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
