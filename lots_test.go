package tradebook

import (
	"errors"
	"testing"

	"tradebook/date"
)

func openLot(b *Book, day string, ticker string, qty, price, commission float64) {
	b.Open(ticker, "long", Q(qty), usd(price), usd(commission), date.MustParse(day))
}

func TestBook_FIFOClose_SplitsSecondLot(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 10, 0)
	openLot(b, "2025-01-20", "ACME", 5, 12, 0)

	if err := b.Close("ACME", "long", Q(12), usd(15), usd(0)); err != nil {
		t.Fatalf("Close(12) error: %v", err)
	}

	// The remainder: 3 units split from the second open.
	open := b.OpenHolding("ACME")
	if open == nil {
		t.Fatal("open holding disappeared after partial close")
	}
	assertQuantity(t, "open quantity", open.Quantity(), 3)
	pos := open.Position("long")
	if pos == nil {
		t.Fatal("open position disappeared after partial close")
	}
	var remaining []*Trade
	for tr := range pos.Trades() {
		remaining = append(remaining, tr)
	}
	if len(remaining) != 1 {
		t.Fatalf("open trades = %d, want 1", len(remaining))
	}
	assertQuantity(t, "remaining lot quantity", remaining[0].Quantity(), 3)
	assertMoney(t, "remaining lot open price", remaining[0].OpenPrice(), 12)

	// The closed side: 10 from the first open, 2 split from the second.
	closed := b.ClosedHolding("ACME")
	if closed == nil {
		t.Fatal("no closed holding after close")
	}
	var lots []*Trade
	for tr := range closed.Position("long").Trades() {
		lots = append(lots, tr)
	}
	if len(lots) != 2 {
		t.Fatalf("closed lots = %d, want 2", len(lots))
	}
	assertQuantity(t, "first closed lot", lots[0].Quantity(), 10)
	assertMoney(t, "first closed lot open price", lots[0].OpenPrice(), 10)
	assertQuantity(t, "second closed lot", lots[1].Quantity(), 2)
	assertMoney(t, "second closed lot open price", lots[1].OpenPrice(), 12)
}

func TestBook_Close_InsufficientLots(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 10, 1)

	err := b.Close("ACME", "long", Q(12), usd(15), usd(0))
	if !errors.Is(err, ErrInsufficientLots) {
		t.Fatalf("Close(12 of 10) error = %v, want ErrInsufficientLots", err)
	}

	// The failed close left the book untouched.
	open := b.OpenHolding("ACME")
	if open == nil {
		t.Fatal("open holding gone after failed close")
	}
	assertQuantity(t, "open quantity", open.Quantity(), 10)
	assertMoney(t, "commission", open.Commission(), 1)
	if b.ClosedHolding("ACME") != nil {
		t.Error("failed close produced a closed holding")
	}

	// Unknown ticker and unknown label fail the same way.
	if err := b.Close("NOPE", "long", Q(1), usd(1), usd(0)); !errors.Is(err, ErrInsufficientLots) {
		t.Errorf("Close(unknown ticker) error = %v, want ErrInsufficientLots", err)
	}
	if err := b.Close("ACME", "short", Q(1), usd(1), usd(0)); !errors.Is(err, ErrInsufficientLots) {
		t.Errorf("Close(unknown label) error = %v, want ErrInsufficientLots", err)
	}
}

func TestBook_Close_FullMatchReclassifiesHolding(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 30, 5)

	// Sell everything at 40 with 5 commission: proceeds 395, cost 305.
	if err := b.Close("ACME", "long", Q(10), usd(40), usd(5)); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if b.OpenHolding("ACME") != nil {
		t.Error("fully matched holding still listed open")
	}
	closed := b.ClosedHolding("ACME")
	if closed == nil {
		t.Fatal("fully matched holding not reclassified as closed")
	}
	lot := firstTrade(t, closed.Position("long"))
	assertMoney(t, "close value", lot.CloseValue(), 400)
	assertMoney(t, "commission", lot.Commission(), 10)
	// realized gain = 400 - 300 - 10 (open and close commission both count)
	assertMoney(t, "realized gain", lot.RealizedGain(), 90)
	assertMoney(t, "holding realized gain", closed.RealizedGain(), 90)
}

func TestTrade_Split_ApportionsCommission(t *testing.T) {
	tr := newTrade(date.MustParse("2025-01-10"), Q(10), usd(20), usd(7))
	frag, rest := tr.split(Q(3))

	assertQuantity(t, "fragment quantity", frag.Quantity(), 3)
	assertQuantity(t, "remainder quantity", rest.Quantity(), 7)
	// 7 * 3/10 = 2.10, remainder keeps 4.90 so the halves always sum.
	assertMoney(t, "fragment commission", frag.Commission(), 2.10)
	assertMoney(t, "remainder commission", rest.Commission(), 4.90)
	assertMoney(t, "fragment open value", frag.OpenValue(), 60)
	assertMoney(t, "remainder open value", rest.OpenValue(), 140)
	if !frag.Commission().Add(rest.Commission()).Equal(usd(7)) {
		t.Error("split commission halves do not sum to the original")
	}
}

func TestBook_Close_ApportionsCloseCommission(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 10, 0)
	openLot(b, "2025-01-20", "ACME", 5, 10, 0)

	// Closing 15 with a 10 commission: 6.67 to the first lot, remainder
	// 3.33 to the second.
	if err := b.Close("ACME", "long", Q(15), usd(12), usd(10)); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	var lots []*Trade
	for tr := range b.ClosedHolding("ACME").Position("long").Trades() {
		lots = append(lots, tr)
	}
	if len(lots) != 2 {
		t.Fatalf("closed lots = %d, want 2", len(lots))
	}
	assertMoney(t, "first lot commission", lots[0].Commission(), 6.67)
	assertMoney(t, "second lot commission", lots[1].Commission(), 3.33)
}

func TestPosition_Aggregates(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 10, 1)
	openLot(b, "2025-01-20", "ACME", 5, 13, 1)

	pos := b.OpenHolding("ACME").Position("long")
	assertQuantity(t, "quantity", pos.Quantity(), 15)
	// (100 + 65) / 15 = 11.00
	assertMoney(t, "average open price", pos.AvgOpenPrice(), 11)
	assertMoney(t, "open value", pos.OpenValue(), 165)
	assertMoney(t, "commission", pos.Commission(), 2)
}

func TestHolding_MergeFrom(t *testing.T) {
	b := newBook()
	openLot(b, "2025-01-10", "ACME", 10, 10, 0)

	other := newBook()
	openLot(other, "2025-01-15", "ACME", 5, 12, 0)
	other.Open("ACME", "short", Q(2), usd(11), usd(0), date.MustParse("2025-01-16"))
	other.Open("BETA", "long", Q(4), usd(50), usd(0), date.MustParse("2025-01-17"))

	b.merge(other)

	acme := b.OpenHolding("ACME")
	assertQuantity(t, "merged ACME quantity", acme.Quantity(), 17)
	assertQuantity(t, "merged long position", acme.Position("long").Quantity(), 15)
	assertQuantity(t, "copied short position", acme.Position("short").Quantity(), 2)
	beta := b.OpenHolding("BETA")
	if beta == nil {
		t.Fatal("unmatched holding not copied wholesale")
	}
	assertQuantity(t, "copied BETA quantity", beta.Quantity(), 4)

	// The merge deep-copied: the source book is unaffected by later closes.
	if err := b.Close("BETA", "long", Q(4), usd(60), usd(0)); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if other.OpenHolding("BETA") == nil {
		t.Error("merge aliased the source book")
	}
}

func firstTrade(t *testing.T, p *Position) *Trade {
	t.Helper()
	if p == nil {
		t.Fatal("position is nil")
	}
	for tr := range p.Trades() {
		return tr
	}
	t.Fatal("position has no trades")
	return nil
}
