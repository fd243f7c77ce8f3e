package cmd

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"

	"tradebook"
)

// useTempJournal points the global journal file at a path inside a test
// temporary directory.
func useTempJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	old := journalFile
	journalFile = &path
	t.Cleanup(func() { journalFile = old })
	return path
}

func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: could not parse flags %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

func mustRun(t *testing.T, c subcommands.Command, args ...string) {
	t.Helper()
	if status := run(t, c, args...); status != subcommands.ExitSuccess {
		t.Fatalf("%s %v exited with %v", c.Name(), args, status)
	}
}

func TestCommands_FullFlow(t *testing.T) {
	useTempJournal(t)

	mustRun(t, &initCmd{}, "-currency", "USD")
	mustRun(t, &accountCmd{}, "-name", "brokerage")
	mustRun(t, &portfolioCmd{}, "-name", "growth")
	mustRun(t, &depositCmd{}, "-a", "1", "-amount", "1000", "-d", "2025-01-10")
	mustRun(t, &allocateCmd{}, "-a", "1", "-p", "2", "-amount", "400", "-d", "2025-01-12")
	mustRun(t, &buyCmd{}, "-a", "1", "-p", "2", "-ticker", "ACME", "-q", "10", "-price", "30", "-commission", "5", "-d", "2025-01-15")
	mustRun(t, &sellCmd{}, "-a", "1", "-p", "2", "-ticker", "ACME", "-q", "4", "-price", "40", "-commission", "2", "-d", "2025-01-20")

	j, err := loadJournal()
	if err != nil {
		t.Fatalf("loadJournal() error: %v", err)
	}
	a, err := j.Account(1)
	if err != nil {
		t.Fatalf("Account(1) error: %v", err)
	}
	// 1000 - 305 + 158
	if got := a.CashBalance(); !got.Equal(tradebook.M(853, "USD")) {
		t.Errorf("cash = %s, want 853", got.Decimal())
	}
	if got := a.Book().OpenQuantity("ACME", "long"); !got.Equal(tradebook.Q(6)) {
		t.Errorf("open quantity = %s, want 6", got)
	}
}

func TestInit_RefusesExistingJournal(t *testing.T) {
	useTempJournal(t)
	mustRun(t, &initCmd{}, "-currency", "EUR")
	if status := run(t, &initCmd{}, "-currency", "EUR"); status != subcommands.ExitFailure {
		t.Errorf("second init exited with %v, want ExitFailure", status)
	}
}

func TestMutate_RejectedEntryLeavesFileUntouched(t *testing.T) {
	useTempJournal(t)
	mustRun(t, &initCmd{})
	mustRun(t, &accountCmd{}, "-name", "brokerage")
	mustRun(t, &depositCmd{}, "-a", "1", "-amount", "100", "-d", "2025-01-10")

	if status := run(t, &withdrawCmd{}, "-a", "1", "-amount", "500", "-d", "2025-01-11"); status != subcommands.ExitFailure {
		t.Fatalf("overdraw exited with %v, want ExitFailure", status)
	}

	j, err := loadJournal()
	if err != nil {
		t.Fatalf("loadJournal() error: %v", err)
	}
	a, err := j.Account(1)
	if err != nil {
		t.Fatalf("Account(1) error: %v", err)
	}
	if got := a.CashBalance(); !got.Equal(tradebook.M(100, "USD")) {
		t.Errorf("cash = %s, want 100", got.Decimal())
	}
}

func TestDrop_RemovesEntry(t *testing.T) {
	useTempJournal(t)
	mustRun(t, &initCmd{})
	mustRun(t, &accountCmd{}, "-name", "brokerage")
	mustRun(t, &depositCmd{}, "-a", "1", "-amount", "100", "-d", "2025-01-10")
	mustRun(t, &depositCmd{}, "-a", "1", "-amount", "50", "-d", "2025-01-11")
	mustRun(t, &dropCmd{}, "-id", "2")

	j, err := loadJournal()
	if err != nil {
		t.Fatalf("loadJournal() error: %v", err)
	}
	a, err := j.Account(1)
	if err != nil {
		t.Fatalf("Account(1) error: %v", err)
	}
	if got := a.CashBalance(); !got.Equal(tradebook.M(100, "USD")) {
		t.Errorf("cash = %s, want 100", got.Decimal())
	}
}
