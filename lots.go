package tradebook

import (
	"iter"
	"maps"
	"slices"

	"tradebook/date"
)

// Trade is a single lot: a quantity of an instrument acquired at one price on
// one day, tracked individually for FIFO matching. Once closed a Trade is
// immutable except for aggregate recomputation by its ancestors.
type Trade struct {
	opened       date.Date
	quantity     Quantity
	openPrice    Money
	openValue    Money // quantity × openPrice
	commission   Money // accumulated: open side, plus close side once closed
	closed       bool
	closePrice   Money
	closeValue   Money
	realizedGain Money // closeValue − openValue − commission
	gainPct      Percent
}

func newTrade(on date.Date, quantity Quantity, price, commission Money) *Trade {
	return &Trade{
		opened:     on,
		quantity:   quantity,
		openPrice:  price,
		openValue:  quantity.Price(price),
		commission: commission,
	}
}

func (t *Trade) Opened() date.Date   { return t.opened }
func (t *Trade) Quantity() Quantity  { return t.quantity }
func (t *Trade) OpenPrice() Money    { return t.openPrice }
func (t *Trade) OpenValue() Money    { return t.openValue }
func (t *Trade) Commission() Money   { return t.commission }
func (t *Trade) Closed() bool        { return t.closed }
func (t *Trade) ClosePrice() Money   { return t.closePrice }
func (t *Trade) CloseValue() Money   { return t.closeValue }
func (t *Trade) RealizedGain() Money { return t.realizedGain }
func (t *Trade) GainPercent() Percent { return t.gainPct }

// split divides the lot into a to-be-closed fragment of the given quantity
// and a still-open remainder. The accumulated commission and open value are
// divided proportionally by quantity share; the remainder side absorbs the
// rounding difference so the two fragments always sum to the original.
// The receiver is detached and discarded by the caller.
func (t *Trade) split(quantity Quantity) (frag, rest *Trade) {
	fragValue := t.openValue.Share(quantity, t.quantity)
	fragCommission := t.commission.Share(quantity, t.quantity)
	frag = &Trade{
		opened:     t.opened,
		quantity:   quantity,
		openPrice:  t.openPrice,
		openValue:  fragValue,
		commission: fragCommission,
	}
	rest = &Trade{
		opened:     t.opened,
		quantity:   t.quantity.Sub(quantity),
		openPrice:  t.openPrice,
		openValue:  t.openValue.Sub(fragValue),
		commission: t.commission.Sub(fragCommission),
	}
	return frag, rest
}

// close settles the lot at the given price, adding the close-side commission
// share to the lot's accumulated commission before computing the realized
// gain.
func (t *Trade) close(price, commission Money) {
	t.closed = true
	t.closePrice = price
	t.closeValue = t.quantity.Price(price)
	t.commission = t.commission.Add(commission)
	t.realizedGain = t.closeValue.Sub(t.openValue).Sub(t.commission)
	if t.openValue.IsZero() {
		t.gainPct = 0
	} else {
		t.gainPct = t.realizedGain.Over(t.openValue)
	}
}

func (t *Trade) clone() *Trade {
	c := *t
	return &c
}

// Position is a named grouping of lots within a Holding, e.g. long vs short
// exposure. Trades are kept in acquisition order, which is the FIFO matching
// order.
type Position struct {
	label  string
	trades []*Trade

	quantity     Quantity
	avgOpenPrice Money
	openValue    Money
	commission   Money
	realizedGain Money
	gainPct      Percent
}

func (p *Position) Label() string       { return p.label }
func (p *Position) Quantity() Quantity  { return p.quantity }
func (p *Position) AvgOpenPrice() Money { return p.avgOpenPrice }
func (p *Position) OpenValue() Money    { return p.openValue }
func (p *Position) Commission() Money   { return p.commission }
func (p *Position) RealizedGain() Money { return p.realizedGain }
func (p *Position) GainPercent() Percent { return p.gainPct }

// Trades yields the position's lots in order.
func (p *Position) Trades() iter.Seq[*Trade] {
	return func(yield func(*Trade) bool) {
		for _, t := range p.trades {
			if !yield(t) {
				return
			}
		}
	}
}

// update recomputes the position aggregates from its current lots.
// The average open price is Σ open value / Σ quantity rounded half-even to
// two decimals. Realized gain figures are forced to zero at zero aggregate
// quantity, the degenerate case where every lot offsets.
func (p *Position) update() {
	p.quantity = Quantity{}
	p.avgOpenPrice = Money{}
	p.openValue = Money{}
	p.commission = Money{}
	p.realizedGain = Money{}
	p.gainPct = 0
	for _, t := range p.trades {
		p.quantity = p.quantity.Add(t.quantity)
		p.openValue = p.openValue.Add(t.openValue)
		p.commission = p.commission.Add(t.commission)
		if t.closed {
			p.realizedGain = p.realizedGain.Add(t.realizedGain)
		}
	}
	if p.quantity.IsZero() {
		p.realizedGain = Money{}
		p.gainPct = 0
		return
	}
	p.avgOpenPrice = p.openValue.Div(p.quantity).Round()
	if !p.openValue.IsZero() {
		p.gainPct = p.realizedGain.Over(p.openValue)
	}
}

func (p *Position) clone() *Position {
	c := &Position{label: p.label, trades: make([]*Trade, 0, len(p.trades))}
	for _, t := range p.trades {
		c.trades = append(c.trades, t.clone())
	}
	c.update()
	return c
}

// Holding is all positions for one instrument within one book. Open and
// closed holdings live in disjoint collections of the Book.
type Holding struct {
	ticker    string
	positions []*Position

	quantity     Quantity
	avgOpenPrice Money
	openValue    Money
	commission   Money
	realizedGain Money
	gainPct      Percent
}

func (h *Holding) Ticker() string       { return h.ticker }
func (h *Holding) Quantity() Quantity   { return h.quantity }
func (h *Holding) AvgOpenPrice() Money  { return h.avgOpenPrice }
func (h *Holding) OpenValue() Money     { return h.openValue }
func (h *Holding) Commission() Money    { return h.commission }
func (h *Holding) RealizedGain() Money  { return h.realizedGain }
func (h *Holding) GainPercent() Percent { return h.gainPct }

// Positions yields the holding's positions in creation order.
func (h *Holding) Positions() iter.Seq[*Position] {
	return func(yield func(*Position) bool) {
		for _, p := range h.positions {
			if !yield(p) {
				return
			}
		}
	}
}

// Position returns the position with the given label, or nil.
func (h *Holding) Position(label string) *Position {
	for _, p := range h.positions {
		if p.label == label {
			return p
		}
	}
	return nil
}

func (h *Holding) ensurePosition(label string) *Position {
	if p := h.Position(label); p != nil {
		return p
	}
	p := &Position{label: label}
	h.positions = append(h.positions, p)
	return p
}

func (h *Holding) detachPosition(label string) {
	h.positions = slices.DeleteFunc(h.positions, func(p *Position) bool {
		return p.label == label
	})
}

// update recomputes the holding aggregates bottom-up from its positions.
func (h *Holding) update() {
	h.quantity = Quantity{}
	h.avgOpenPrice = Money{}
	h.openValue = Money{}
	h.commission = Money{}
	h.realizedGain = Money{}
	h.gainPct = 0
	for _, p := range h.positions {
		h.quantity = h.quantity.Add(p.quantity)
		h.openValue = h.openValue.Add(p.openValue)
		h.commission = h.commission.Add(p.commission)
		h.realizedGain = h.realizedGain.Add(p.realizedGain)
	}
	if h.quantity.IsZero() {
		h.realizedGain = Money{}
		h.gainPct = 0
		return
	}
	h.avgOpenPrice = h.openValue.Div(h.quantity).Round()
	if !h.openValue.IsZero() {
		h.gainPct = h.realizedGain.Over(h.openValue)
	}
}

func (h *Holding) clone() *Holding {
	c := &Holding{ticker: h.ticker, positions: make([]*Position, 0, len(h.positions))}
	for _, p := range h.positions {
		c.positions = append(c.positions, p.clone())
	}
	c.update()
	return c
}

// mergeFrom consolidates another holding of the same ticker into this one:
// positions matching by label are merged trade by trade, unmatched positions
// are copied wholesale.
func (h *Holding) mergeFrom(other *Holding) {
	for _, op := range other.positions {
		if p := h.Position(op.label); p != nil {
			for _, t := range op.trades {
				p.trades = append(p.trades, t.clone())
			}
			p.update()
		} else {
			h.positions = append(h.positions, op.clone())
		}
	}
	h.update()
}

// Book is the FIFO-capable store of equity lots of one account or portfolio.
// Open and closed holdings are disjoint; a holding moves to the closed side
// once its last open position is matched away.
type Book struct {
	open   map[string]*Holding
	closed map[string]*Holding
}

func newBook() *Book {
	return &Book{
		open:   make(map[string]*Holding),
		closed: make(map[string]*Holding),
	}
}

func (b *Book) reset() {
	b.open = make(map[string]*Holding)
	b.closed = make(map[string]*Holding)
}

// OpenHolding returns the open holding for the ticker, or nil.
func (b *Book) OpenHolding(ticker string) *Holding { return b.open[ticker] }

// ClosedHolding returns the closed holding for the ticker, or nil.
func (b *Book) ClosedHolding(ticker string) *Holding { return b.closed[ticker] }

// OpenHoldings yields open holdings sorted by ticker.
func (b *Book) OpenHoldings() iter.Seq[*Holding] { return yieldSorted(b.open) }

// ClosedHoldings yields closed holdings sorted by ticker.
func (b *Book) ClosedHoldings() iter.Seq[*Holding] { return yieldSorted(b.closed) }

func yieldSorted(m map[string]*Holding) iter.Seq[*Holding] {
	return func(yield func(*Holding) bool) {
		tickers := slices.Collect(maps.Keys(m))
		slices.Sort(tickers)
		for _, ticker := range tickers {
			if !yield(m[ticker]) {
				return
			}
		}
	}
}

// OpenQuantity returns the total open quantity for a ticker and position
// label, zero when none is held.
func (b *Book) OpenQuantity(ticker, label string) Quantity {
	h := b.open[ticker]
	if h == nil {
		return Quantity{}
	}
	p := h.Position(label)
	if p == nil {
		return Quantity{}
	}
	return p.quantity
}

// Open appends a new open lot, locating or creating the holding and position
// on the way, and recomputes aggregates bottom-up. It cannot fail on
// structurally valid input.
func (b *Book) Open(ticker, label string, quantity Quantity, price, commission Money, on date.Date) {
	h := b.open[ticker]
	if h == nil {
		h = &Holding{ticker: ticker}
		b.open[ticker] = h
	}
	p := h.ensurePosition(label)
	p.trades = append(p.trades, newTrade(on, quantity, price, commission))
	p.update()
	h.update()
}

// Close matches open lots of the position in FIFO order against the quantity
// to close. The oldest lot is split when it exceeds the remaining quantity,
// dividing its accumulated commission proportionally by quantity share. The
// close-side commission is apportioned across the matched lots the same way.
// Closed lots move to the closed collections; an exhausted position is
// detached from its holding and a holding with no open position left is
// reclassified as closed.
//
// Close either fully succeeds or returns ErrInsufficientLots with the book
// untouched.
func (b *Book) Close(ticker, label string, quantity Quantity, price, commission Money) error {
	h := b.open[ticker]
	if h == nil {
		return insufficientLots(ticker, label, Quantity{}, quantity)
	}
	p := h.Position(label)
	if p == nil {
		return insufficientLots(ticker, label, Quantity{}, quantity)
	}
	if p.quantity.LessThan(quantity) {
		return insufficientLots(ticker, label, p.quantity, quantity)
	}

	// Match FIFO. All mutation below this point is committed wholesale; the
	// precondition check above guarantees it cannot run short.
	remaining := quantity
	var stillOpen, matched []*Trade
	for _, t := range p.trades {
		switch {
		case remaining.IsZero():
			stillOpen = append(stillOpen, t)
		case t.quantity.LessThanOrEqual(remaining):
			remaining = remaining.Sub(t.quantity)
			matched = append(matched, t)
		default:
			frag, rest := t.split(remaining)
			matched = append(matched, frag)
			stillOpen = append(stillOpen, rest)
			remaining = Quantity{}
		}
	}

	// Apportion the close-side commission by quantity share; the last lot
	// absorbs the rounding remainder so the shares sum to the commission.
	spent := Money{}
	for i, t := range matched {
		share := commission.Share(t.quantity, quantity)
		if i == len(matched)-1 {
			share = commission.Sub(spent)
		}
		spent = spent.Add(share)
		t.close(price, share)
	}

	p.trades = stillOpen
	p.update()
	if len(p.trades) == 0 {
		h.detachPosition(label)
	}
	h.update()
	if len(h.positions) == 0 {
		delete(b.open, ticker)
	}

	ch := b.closed[ticker]
	if ch == nil {
		ch = &Holding{ticker: ticker}
		b.closed[ticker] = ch
	}
	cp := ch.ensurePosition(label)
	cp.trades = append(cp.trades, matched...)
	cp.update()
	ch.update()
	return nil
}

func insufficientLots(ticker, label string, held, asked Quantity) error {
	return taggedf(ErrInsufficientLots, "position %s/%s holds %s open, cannot close %s", ticker, label, held.String(), asked.String())
}

func (b *Book) clone() *Book {
	c := newBook()
	for ticker, h := range b.open {
		c.open[ticker] = h.clone()
	}
	for ticker, h := range b.closed {
		c.closed[ticker] = h.clone()
	}
	return c
}

// merge consolidates another book into this one, merging duplicate holdings
// ticker by ticker. Used when aggregating a portfolio subtree.
func (b *Book) merge(other *Book) {
	for ticker, oh := range other.open {
		if h := b.open[ticker]; h != nil {
			h.mergeFrom(oh)
		} else {
			b.open[ticker] = oh.clone()
		}
	}
	for ticker, oh := range other.closed {
		if h := b.closed[ticker]; h != nil {
			h.mergeFrom(oh)
		} else {
			b.closed[ticker] = oh.clone()
		}
	}
}
