package tradebook

import (
	"errors"
	"testing"

	"tradebook/date"
)

func TestJournal_IDsAreNeverReused(t *testing.T) {
	j, a, _ := newTestJournal(t)
	submitDeposit(t, j, a, "2025-01-10", 1000)

	// A rejected entry still consumed its id.
	bad, err := j.NewCashWithdrawal(a.ID(), date.MustParse("2025-01-11"), usd(9999), "")
	if err != nil {
		t.Fatalf("NewCashWithdrawal() error: %v", err)
	}
	if err := j.Submit(bad); !errors.Is(err, ErrRejected) {
		t.Fatalf("Submit(overdraw) error = %v, want ErrRejected", err)
	}

	next, err := j.NewCashDeposit(a.ID(), date.MustParse("2025-01-12"), usd(10), "")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if next.ID() <= bad.ID() {
		t.Errorf("id %d issued after id %d", next.ID(), bad.ID())
	}

	// Removal does not free the id either.
	if err := j.Submit(next); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := j.RemoveEntry(next.ID()); err != nil {
		t.Fatalf("RemoveEntry() error: %v", err)
	}
	last, err := j.NewCashDeposit(a.ID(), date.MustParse("2025-01-13"), usd(10), "")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if last.ID() <= next.ID() {
		t.Errorf("id %d reissued after removal of %d", last.ID(), next.ID())
	}
}

func TestJournal_GlobalSequenceAndFilters(t *testing.T) {
	j, a, p := newTestJournal(t)
	b := j.NewAccount("savings")

	submitDeposit(t, j, a, "2025-01-10", 1000)
	submitDeposit(t, j, b, "2025-01-11", 500)
	submitAllocation(t, j, a, p, "2025-01-12", 400)

	tagged, err := j.NewCashDeposit(a.ID(), date.MustParse("2025-01-13"), usd(50), "bonus", "salary")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if err := j.Submit(tagged); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	count := func(filters ...func(Entry) bool) int {
		n := 0
		for range j.Entries(filters...) {
			n++
		}
		return n
	}
	if got := count(AcceptAll); got != 4 {
		t.Errorf("all entries = %d, want 4", got)
	}
	if got := count(ByAccount(b.ID())); got != 1 {
		t.Errorf("entries for savings = %d, want 1", got)
	}
	if got := count(ByKind(KindDeposit)); got != 3 {
		t.Errorf("deposits = %d, want 3", got)
	}
	if got := count(ByPortfolio(p.ID())); got != 1 {
		t.Errorf("entries for portfolio = %d, want 1", got)
	}
	if got := count(ByTag("salary")); got != 1 {
		t.Errorf("tagged entries = %d, want 1", got)
	}

	for e := range j.Entries(ByTag("salary")) {
		if e.Rationale() != "bonus" {
			t.Errorf("memo = %q, want %q", e.Rationale(), "bonus")
		}
	}
}

func TestJournal_UnknownTargets(t *testing.T) {
	j, a, _ := newTestJournal(t)

	if _, err := j.Account(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Account(42) error = %v, want ErrNotFound", err)
	}
	if _, err := j.Portfolio(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Portfolio(42) error = %v, want ErrNotFound", err)
	}

	e, err := j.NewCashDeposit(99, date.MustParse("2025-01-10"), usd(10), "")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if err := j.Submit(e); !errors.Is(err, ErrNotFound) {
		t.Errorf("Submit(unknown account) error = %v, want ErrNotFound", err)
	}

	alloc, err := j.NewCashAllocation(a.ID(), 99, date.MustParse("2025-01-10"), usd(10), "")
	if err != nil {
		t.Fatalf("NewCashAllocation() error: %v", err)
	}
	if err := j.Submit(alloc); !errors.Is(err, ErrNotFound) {
		t.Errorf("Submit(unknown portfolio) error = %v, want ErrNotFound", err)
	}
}

func TestJournal_FactoryValidation(t *testing.T) {
	j, a, p := newTestJournal(t)
	on := date.MustParse("2025-01-10")

	cases := []struct {
		name string
		err  error
	}{
		{"negative deposit", func() error {
			_, err := j.NewCashDeposit(a.ID(), on, usd(-5), "")
			return err
		}()},
		{"zero quantity buy", func() error {
			_, err := j.NewBuyEquity(a.ID(), p.ID(), on, "ACME", "long", Q(0), usd(10), usd(0), "")
			return err
		}()},
		{"negative price", func() error {
			_, err := j.NewBuyEquity(a.ID(), p.ID(), on, "ACME", "long", Q(1), usd(-10), usd(0), "")
			return err
		}()},
		{"negative commission", func() error {
			_, err := j.NewSellEquity(a.ID(), p.ID(), on, "ACME", "long", Q(1), usd(10), usd(-1), "")
			return err
		}()},
		{"missing ticker", func() error {
			_, err := j.NewBuyEquity(a.ID(), p.ID(), on, "", "long", Q(1), usd(10), usd(0), "")
			return err
		}()},
		{"missing position label", func() error {
			_, err := j.NewBuyEquity(a.ID(), p.ID(), on, "ACME", "", Q(1), usd(10), usd(0), "")
			return err
		}()},
	}
	for _, c := range cases {
		if !errors.Is(c.err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", c.name, c.err)
		}
	}
}

func TestJournal_DefaultDateAndCurrency(t *testing.T) {
	j, a, _ := newTestJournal(t)

	// Zero date defaults to today, weak currency to the journal's.
	e, err := j.NewCashDeposit(a.ID(), date.Date{}, M(100, ""), "")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if e.When().IsZero() {
		t.Error("zero entry date not defaulted")
	}
	if e.Amount.Currency() != "USD" {
		t.Errorf("currency = %q, want USD", e.Amount.Currency())
	}
}

func TestJournal_RootPortfolio(t *testing.T) {
	j := NewJournal("EUR")
	root := j.Root()
	if !root.IsRoot() {
		t.Error("root portfolio does not report IsRoot")
	}
	got, err := j.Portfolio(root.ID())
	if err != nil || got != root {
		t.Errorf("Portfolio(root) = %v, %v", got, err)
	}
	if j.Currency() != "EUR" {
		t.Errorf("Currency() = %q, want EUR", j.Currency())
	}
}
