package cmd

import (
	"flag"
	"strings"

	"tradebook/date"
)

// entryFlags are the flags shared by every entry-creating command.
type entryFlags struct {
	account int64
	date    string
	memo    string
	tags    string
}

func (e *entryFlags) set(f *flag.FlagSet) {
	f.Int64Var(&e.account, "a", 0, "Id of the owning account.")
	f.StringVar(&e.date, "d", "", "Effective date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&e.memo, "m", "", "Optional memo.")
	f.StringVar(&e.tags, "tags", "", "Optional comma-separated tags.")
}

// when parses the -d flag; zero means "today" and is resolved by the journal.
func (e *entryFlags) when() (date.Date, error) {
	if e.date == "" {
		return date.Date{}, nil
	}
	return date.Parse(e.date)
}

func (e *entryFlags) labels() []string {
	if e.tags == "" {
		return nil
	}
	parts := strings.Split(e.tags, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
