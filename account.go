package tradebook

import (
	"iter"
	"slices"

	"tradebook/date"
)

// Account owns physical cash, the virtual per-portfolio cash allocations, and
// the lot book of one brokerage account. It is owned exclusively by its
// Journal; all mutation goes through AddEntry/RemoveEntry.
//
// After every successful mutation: cash ≥ 0, unallocated ≥ 0, and every
// allocation ≥ 0.
type Account struct {
	id   AccountID
	name string
	cur  string

	cash        Money
	unallocated Money
	allocations map[PortfolioID]Money
	book        *Book

	entries   []Entry   // chronological, (date, id) order
	highWater date.Date // date of the most recently applied entry
}

func newAccount(id AccountID, name, currency string) *Account {
	a := &Account{id: id, name: name, cur: currency}
	a.wipe()
	return a
}

func (a *Account) ID() AccountID { return a.id }
func (a *Account) Name() string  { return a.name }

// CashBalance returns the physical cash balance.
func (a *Account) CashBalance() Money { return a.cash }

// UnallocatedCash returns the virtual cash not assigned to any portfolio.
func (a *Account) UnallocatedCash() Money { return a.unallocated }

// Allocation returns the virtual cash allocated to a portfolio; an absent
// key is zero.
func (a *Account) Allocation(portfolio PortfolioID) Money {
	if alloc, ok := a.allocations[portfolio]; ok {
		return alloc
	}
	return Money{cur: a.cur}
}

// HighWaterMark returns the date of the most recently applied entry.
func (a *Account) HighWaterMark() date.Date { return a.highWater }

// Book returns the account's lot book. Treat as read-only; mutation happens
// only through entries.
func (a *Account) Book() *Book { return a.book }

// Entries yields the attached entries in chronological order, filtered by
// the given predicates (an entry is yielded when any predicate accepts it).
func (a *Account) Entries(filters ...func(Entry) bool) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.entries {
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

func (a *Account) wipe() {
	a.cash = Money{cur: a.cur}
	a.unallocated = Money{cur: a.cur}
	a.allocations = make(map[PortfolioID]Money)
	if a.book == nil {
		a.book = newBook()
	} else {
		a.book.reset()
	}
	a.highWater = date.Date{}
}

// AddEntry attaches an entry. Entries dated at or after the high-water mark
// are applied directly; an out-of-order entry is inserted and the whole
// derived state recomputed by replay. On a replay failure the entry is
// removed and the replay retried to restore the last known-good state; if
// that retry fails too the ledger was already corrupt and the error is
// ErrInternalInconsistency.
func (a *Account) AddEntry(e Entry) error {
	if len(a.entries) == 0 || !e.When().Before(a.highWater) {
		if err := a.apply(e); err != nil {
			return err
		}
		a.entries = append(a.entries, e)
		a.highWater = e.When()
		return nil
	}

	a.entries = append(a.entries, e)
	if err := a.recalc(); err != nil {
		a.detach(e.ID())
		if rerr := a.recalc(); rerr != nil {
			return internalf("account %q: rollback replay failed: %v (while rejecting entry %d: %v)", a.name, rerr, e.ID(), err)
		}
		return err
	}
	return nil
}

// RemoveEntry detaches an entry and recomputes. On a replay failure the
// entry is re-attached and the replay retried to roll back; a second failure
// is ErrInternalInconsistency.
func (a *Account) RemoveEntry(id EntryID) error {
	removed := a.detach(id)
	if removed == nil {
		return notFoundf("account %q has no entry %d", a.name, id)
	}
	if err := a.recalc(); err != nil {
		a.entries = append(a.entries, removed)
		if rerr := a.recalc(); rerr != nil {
			return internalf("account %q: rollback replay failed: %v (while removing entry %d: %v)", a.name, rerr, id, err)
		}
		return err
	}
	return nil
}

// detach removes the entry with the given id from the sequence and returns
// it, or nil when absent.
func (a *Account) detach(id EntryID) Entry {
	i := slices.IndexFunc(a.entries, func(e Entry) bool { return e.ID() == id })
	if i < 0 {
		return nil
	}
	removed := a.entries[i]
	a.entries = slices.Delete(a.entries, i, i+1)
	return removed
}

// recalc wipes all derived state and replays every attached entry in
// (date, id) order. It stops at the first failing apply; callers restore the
// last known-good sequence and replay again.
func (a *Account) recalc() error {
	a.wipe()
	sortEntries(a.entries)
	for _, e := range a.entries {
		if err := a.apply(e); err != nil {
			return err
		}
	}
	if n := len(a.entries); n > 0 {
		a.highWater = a.entries[n-1].When()
	}
	return nil
}

// apply dispatches one entry to the account state. Each case either fully
// mutates and returns nil, or fails leaving the state untouched.
func (a *Account) apply(e Entry) error {
	switch v := e.(type) {
	case CashDeposit:
		a.cash = a.cash.Add(v.Amount)
		a.unallocated = a.unallocated.Add(v.Amount)

	case CashWithdrawal:
		// Both pools must independently remain non-negative; either check
		// alone is insufficient.
		if a.cash.LessThan(v.Amount) {
			return rejectedf("withdrawal of %s exceeds cash balance %s", v.Amount, a.cash)
		}
		if a.unallocated.LessThan(v.Amount) {
			return rejectedf("withdrawal of %s exceeds unallocated cash %s", v.Amount, a.unallocated)
		}
		a.cash = a.cash.Sub(v.Amount)
		a.unallocated = a.unallocated.Sub(v.Amount)

	case CashAllocation:
		if a.unallocated.LessThan(v.Amount) {
			return rejectedf("allocation of %s exceeds unallocated cash %s", v.Amount, a.unallocated)
		}
		a.unallocated = a.unallocated.Sub(v.Amount)
		a.allocations[v.Target] = a.Allocation(v.Target).Add(v.Amount)

	case CashDeallocation:
		alloc := a.Allocation(v.Target)
		if alloc.LessThan(v.Amount) {
			return rejectedf("deallocation of %s exceeds portfolio %d allocation %s", v.Amount, v.Target, alloc)
		}
		a.allocations[v.Target] = alloc.Sub(v.Amount)
		a.unallocated = a.unallocated.Add(v.Amount)

	case BuyEquity:
		cost := v.cashValue(KindBuy)
		if a.cash.LessThan(cost) {
			return rejectedf("buy of %s %s costing %s exceeds cash balance %s", v.Quantity, v.Ticker, cost, a.cash)
		}
		alloc := a.Allocation(v.Target)
		if alloc.LessThan(cost) {
			return rejectedf("buy of %s %s costing %s exceeds portfolio %d allocation %s", v.Quantity, v.Ticker, cost, v.Target, alloc)
		}
		a.book.Open(v.Ticker, v.Label, v.Quantity, v.UnitPrice, v.Commission, v.When())
		a.cash = a.cash.Sub(cost)
		a.allocations[v.Target] = alloc.Sub(cost)

	case SellEquity:
		// Proceeds can be negative when the commission exceeds them.
		proceeds := v.cashValue(KindSell)
		if a.cash.Add(proceeds).IsNegative() {
			return rejectedf("sell of %s %s would drive cash balance below zero", v.Quantity, v.Ticker)
		}
		alloc := a.Allocation(v.Target)
		if alloc.Add(proceeds).IsNegative() {
			return rejectedf("sell of %s %s would drive portfolio %d allocation below zero", v.Quantity, v.Ticker, v.Target)
		}
		// Close commits only on success, so a lot shortfall leaves the book
		// and the pools untouched.
		if err := a.book.Close(v.Ticker, v.Label, v.Quantity, v.UnitPrice, v.Commission); err != nil {
			return err
		}
		a.cash = a.cash.Add(proceeds)
		a.allocations[v.Target] = alloc.Add(proceeds)

	default:
		return validationf("unsupported entry type %T", e)
	}
	return nil
}
