package tradebook

import (
	"testing"

	"tradebook/date"
)

// newTestJournal builds a journal with one account and one portfolio under
// the root, the fixture most tests start from.
func newTestJournal(t *testing.T) (*Journal, *Account, *Portfolio) {
	t.Helper()
	j := NewJournal("USD")
	a := j.NewAccount("brokerage")
	p, err := j.NewPortfolio(j.Root().ID(), "growth")
	if err != nil {
		t.Fatalf("NewPortfolio() error: %v", err)
	}
	return j, a, p
}

func usd(v float64) Money { return M(v, "USD") }

func submitDeposit(t *testing.T, j *Journal, a *Account, day string, amount float64) {
	t.Helper()
	e, err := j.NewCashDeposit(a.ID(), date.MustParse(day), usd(amount), "")
	if err != nil {
		t.Fatalf("NewCashDeposit() error: %v", err)
	}
	if err := j.Submit(e); err != nil {
		t.Fatalf("Submit(deposit %v) error: %v", amount, err)
	}
}

func submitAllocation(t *testing.T, j *Journal, a *Account, p *Portfolio, day string, amount float64) {
	t.Helper()
	e, err := j.NewCashAllocation(a.ID(), p.ID(), date.MustParse(day), usd(amount), "")
	if err != nil {
		t.Fatalf("NewCashAllocation() error: %v", err)
	}
	if err := j.Submit(e); err != nil {
		t.Fatalf("Submit(allocation %v) error: %v", amount, err)
	}
}

func submitBuy(t *testing.T, j *Journal, a *Account, p *Portfolio, day, ticker string, qty, price, commission float64) {
	t.Helper()
	e, err := j.NewBuyEquity(a.ID(), p.ID(), date.MustParse(day), ticker, "long", Q(qty), usd(price), usd(commission), "")
	if err != nil {
		t.Fatalf("NewBuyEquity() error: %v", err)
	}
	if err := j.Submit(e); err != nil {
		t.Fatalf("Submit(buy %s %v@%v) error: %v", ticker, qty, price, err)
	}
}

func submitSell(t *testing.T, j *Journal, a *Account, p *Portfolio, day, ticker string, qty, price, commission float64) {
	t.Helper()
	e, err := j.NewSellEquity(a.ID(), p.ID(), date.MustParse(day), ticker, "long", Q(qty), usd(price), usd(commission), "")
	if err != nil {
		t.Fatalf("NewSellEquity() error: %v", err)
	}
	if err := j.Submit(e); err != nil {
		t.Fatalf("Submit(sell %s %v@%v) error: %v", ticker, qty, price, err)
	}
}

func assertMoney(t *testing.T, label string, got Money, want float64) {
	t.Helper()
	if !got.Equal(usd(want)) {
		t.Errorf("%s = %s, want %v", label, got.Decimal(), want)
	}
}

func assertQuantity(t *testing.T, label string, got Quantity, want float64) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %v", label, got, want)
	}
}
