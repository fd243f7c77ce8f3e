package tradebook

import (
	"iter"
	"slices"

	"tradebook/date"
)

// Portfolio is a node of the virtual capital-allocation tree. Its own cash is
// the total allocated to it by accounts; aggregated figures add the whole
// subtree. Every portfolio except the root has exactly one parent; children
// only attach at creation, so the tree cannot cycle.
//
// A portfolio applies the portfolio-scoped projection of the entries routed
// to it by the journal, with the same fast-path/slow-path/rollback discipline
// as Account.
type Portfolio struct {
	id       PortfolioID
	name     string
	cur      string
	parent   PortfolioID // zero for the root
	children []*Portfolio

	cash Money
	book *Book

	entries   []Entry
	highWater date.Date
}

func newPortfolio(id PortfolioID, name, currency string, parent PortfolioID) *Portfolio {
	p := &Portfolio{id: id, name: name, cur: currency, parent: parent}
	p.wipe()
	return p
}

func (p *Portfolio) ID() PortfolioID     { return p.id }
func (p *Portfolio) Name() string        { return p.name }
func (p *Portfolio) Parent() PortfolioID { return p.parent }
func (p *Portfolio) IsRoot() bool        { return p.parent == 0 }

// CashBalance returns the portfolio's own cash, excluding descendants.
func (p *Portfolio) CashBalance() Money { return p.cash }

// Book returns the portfolio's own lot book, excluding descendants. Treat as
// read-only.
func (p *Portfolio) Book() *Book { return p.book }

// HighWaterMark returns the date of the most recently applied entry.
func (p *Portfolio) HighWaterMark() date.Date { return p.highWater }

// Entries yields the attached entries in chronological order, filtered by
// the given predicates (an entry is yielded when any predicate accepts it).
func (p *Portfolio) Entries(filters ...func(Entry) bool) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range p.entries {
			accept := false
			for _, filter := range filters {
				if filter(e) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Children yields the child portfolios in creation order.
func (p *Portfolio) Children() iter.Seq[*Portfolio] {
	return func(yield func(*Portfolio) bool) {
		for _, c := range p.children {
			if !yield(c) {
				return
			}
		}
	}
}

func (p *Portfolio) addChild(child *Portfolio) {
	p.children = append(p.children, child)
}

// AggregatedCashBalance returns the portfolio's own cash plus the recursive
// sum of its children's aggregated cash.
func (p *Portfolio) AggregatedCashBalance() Money {
	total := p.cash
	for _, c := range p.children {
		total = total.Add(c.AggregatedCashBalance())
	}
	return total
}

// AggregatedBook returns a detached book holding the union of this
// portfolio's lots with all descendants', duplicate holdings merged.
func (p *Portfolio) AggregatedBook() *Book {
	agg := p.book.clone()
	for _, c := range p.children {
		agg.merge(c.AggregatedBook())
	}
	return agg
}

func (p *Portfolio) wipe() {
	p.cash = Money{cur: p.cur}
	if p.book == nil {
		p.book = newBook()
	} else {
		p.book.reset()
	}
	p.highWater = date.Date{}
}

// AddEntry mirrors Account.AddEntry: fast path at or past the high-water
// mark, otherwise insert and replay, rolling back on a replay failure.
func (p *Portfolio) AddEntry(e Entry) error {
	if len(p.entries) == 0 || !e.When().Before(p.highWater) {
		if err := p.apply(e); err != nil {
			return err
		}
		p.entries = append(p.entries, e)
		p.highWater = e.When()
		return nil
	}

	p.entries = append(p.entries, e)
	if err := p.recalc(); err != nil {
		p.detach(e.ID())
		if rerr := p.recalc(); rerr != nil {
			return internalf("portfolio %q: rollback replay failed: %v (while rejecting entry %d: %v)", p.name, rerr, e.ID(), err)
		}
		return err
	}
	return nil
}

// RemoveEntry detaches and replays, restoring the entry on failure.
func (p *Portfolio) RemoveEntry(id EntryID) error {
	removed := p.detach(id)
	if removed == nil {
		return notFoundf("portfolio %q has no entry %d", p.name, id)
	}
	if err := p.recalc(); err != nil {
		p.entries = append(p.entries, removed)
		if rerr := p.recalc(); rerr != nil {
			return internalf("portfolio %q: rollback replay failed: %v (while removing entry %d: %v)", p.name, rerr, id, err)
		}
		return err
	}
	return nil
}

func (p *Portfolio) detach(id EntryID) Entry {
	i := slices.IndexFunc(p.entries, func(e Entry) bool { return e.ID() == id })
	if i < 0 {
		return nil
	}
	removed := p.entries[i]
	p.entries = slices.Delete(p.entries, i, i+1)
	return removed
}

func (p *Portfolio) recalc() error {
	p.wipe()
	sortEntries(p.entries)
	for _, e := range p.entries {
		if err := p.apply(e); err != nil {
			return err
		}
	}
	if n := len(p.entries); n > 0 {
		p.highWater = p.entries[n-1].When()
	}
	return nil
}

// apply projects a portfolio-scoped entry onto the portfolio's own cash and
// book. The owning account has already enforced the per-account invariants;
// the checks here guard the portfolio's own non-negativity independently.
func (p *Portfolio) apply(e Entry) error {
	switch v := e.(type) {
	case CashAllocation:
		p.cash = p.cash.Add(v.Amount)

	case CashDeallocation:
		if p.cash.LessThan(v.Amount) {
			return rejectedf("deallocation of %s exceeds portfolio %q cash %s", v.Amount, p.name, p.cash)
		}
		p.cash = p.cash.Sub(v.Amount)

	case BuyEquity:
		cost := v.cashValue(KindBuy)
		if p.cash.LessThan(cost) {
			return rejectedf("buy of %s %s costing %s exceeds portfolio %q cash %s", v.Quantity, v.Ticker, cost, p.name, p.cash)
		}
		p.book.Open(v.Ticker, v.Label, v.Quantity, v.UnitPrice, v.Commission, v.When())
		p.cash = p.cash.Sub(cost)

	case SellEquity:
		proceeds := v.cashValue(KindSell)
		if p.cash.Add(proceeds).IsNegative() {
			return rejectedf("sell of %s %s would drive portfolio %q cash below zero", v.Quantity, v.Ticker, p.name)
		}
		if err := p.book.Close(v.Ticker, v.Label, v.Quantity, v.UnitPrice, v.Commission); err != nil {
			return err
		}
		p.cash = p.cash.Add(proceeds)

	default:
		return validationf("entry type %T is not portfolio-scoped", e)
	}
	return nil
}
