package tradebook

import (
	"iter"
	"slices"

	"tradebook/date"
)

// ExecMode selects when the valuation refresh runs.
type ExecMode int

const (
	// Immediate refreshes valuations after every successful mutation. The
	// default.
	Immediate ExecMode = iota
	// Deferred skips the per-mutation refresh, for bulk loads. Call
	// RefreshValuations explicitly when done.
	Deferred
)

// Journal is the top-level registry of accounts and portfolios, the factory
// for entries, and the owner of every id counter and of the global
// append-only entry sequence.
//
// Single-writer semantics: all mutation happens through the Journal without
// interleaving.
type Journal struct {
	cur  string
	mode ExecMode

	nextEntry     EntryID
	nextAccount   AccountID
	nextPortfolio PortfolioID

	accounts   map[AccountID]*Account
	accountIDs []AccountID // creation order
	portfolios map[PortfolioID]*Portfolio
	root       *Portfolio

	log []Entry // global sequence, submission order

	quotes QuoteProvider
	prices map[string]Money // last refreshed price per ticker
}

// NewJournal creates an empty journal with its implicit root portfolio. All
// money in one journal shares the given reporting currency.
func NewJournal(currency string) *Journal {
	j := &Journal{
		cur:           currency,
		nextEntry:     1,
		nextAccount:   1,
		nextPortfolio: 1,
		accounts:      make(map[AccountID]*Account),
		portfolios:    make(map[PortfolioID]*Portfolio),
		prices:        make(map[string]Money),
	}
	j.root = newPortfolio(j.allocPortfolioID(), "global", currency, 0)
	j.portfolios[j.root.id] = j.root
	return j
}

// Currency returns the journal's reporting currency.
func (j *Journal) Currency() string { return j.cur }

// SetExecMode switches between immediate and deferred valuation refresh.
func (j *Journal) SetExecMode(mode ExecMode) { j.mode = mode }

// SetQuotes installs the quote provider used by valuation refreshes.
func (j *Journal) SetQuotes(quotes QuoteProvider) { j.quotes = quotes }

func (j *Journal) allocEntryID() EntryID {
	id := j.nextEntry
	j.nextEntry++
	return id
}

func (j *Journal) allocAccountID() AccountID {
	id := j.nextAccount
	j.nextAccount++
	return id
}

func (j *Journal) allocPortfolioID() PortfolioID {
	id := j.nextPortfolio
	j.nextPortfolio++
	return id
}

// NewAccount registers a new, empty account.
func (j *Journal) NewAccount(name string) *Account {
	a := newAccount(j.allocAccountID(), name, j.cur)
	j.accounts[a.id] = a
	j.accountIDs = append(j.accountIDs, a.id)
	return a
}

// NewPortfolio creates a child of the given parent portfolio. Children keep
// creation order within their parent.
func (j *Journal) NewPortfolio(parent PortfolioID, name string) (*Portfolio, error) {
	owner, err := j.Portfolio(parent)
	if err != nil {
		return nil, err
	}
	p := newPortfolio(j.allocPortfolioID(), name, j.cur, parent)
	j.portfolios[p.id] = p
	owner.addChild(p)
	return p, nil
}

// Root returns the implicit root portfolio created with the journal.
func (j *Journal) Root() *Portfolio { return j.root }

// Account returns the account with the given id.
func (j *Journal) Account(id AccountID) (*Account, error) {
	a, ok := j.accounts[id]
	if !ok {
		return nil, notFoundf("unknown account %d", id)
	}
	return a, nil
}

// Portfolio returns the portfolio with the given id.
func (j *Journal) Portfolio(id PortfolioID) (*Portfolio, error) {
	p, ok := j.portfolios[id]
	if !ok {
		return nil, notFoundf("unknown portfolio %d", id)
	}
	return p, nil
}

// Accounts yields accounts in creation order.
func (j *Journal) Accounts() iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, id := range j.accountIDs {
			if !yield(j.accounts[id]) {
				return
			}
		}
	}
}

// Portfolios yields portfolios in id (creation) order.
func (j *Journal) Portfolios() iter.Seq[*Portfolio] {
	return func(yield func(*Portfolio) bool) {
		ids := make([]PortfolioID, 0, len(j.portfolios))
		for id := range j.portfolios {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if !yield(j.portfolios[id]) {
				return
			}
		}
	}
}

// Entries yields the global entry sequence in submission order, filtered by
// the given predicates (an entry is yielded when any predicate accepts it).
func (j *Journal) Entries(filters ...func(Entry) bool) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range j.log {
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

// money defaults a weak-currency amount to the journal's currency.
func (j *Journal) money(m Money) Money {
	if m.cur == "" {
		m.cur = j.cur
	}
	return m
}

func (j *Journal) newBase(account AccountID, on date.Date, memo string, tags []string) baseEntry {
	if on.IsZero() {
		on = date.Today()
	}
	return baseEntry{
		Seq:    j.allocEntryID(),
		Owner:  account,
		Date:   on,
		Memo:   memo,
		Labels: slices.Clone(tags),
	}
}

// NewCashDeposit builds a deposit entry. The id is allocated immediately and
// never reused, even if the entry is later rejected at apply time.
func (j *Journal) NewCashDeposit(account AccountID, on date.Date, amount Money, memo string, tags ...string) (CashDeposit, error) {
	e := CashDeposit{baseEntry: j.newBase(account, on, memo, tags), Amount: j.money(amount)}
	return e, validateEntry(e)
}

// NewCashWithdrawal builds a withdrawal entry.
func (j *Journal) NewCashWithdrawal(account AccountID, on date.Date, amount Money, memo string, tags ...string) (CashWithdrawal, error) {
	e := CashWithdrawal{baseEntry: j.newBase(account, on, memo, tags), Amount: j.money(amount)}
	return e, validateEntry(e)
}

// NewCashAllocation builds an allocation of unallocated cash to a portfolio.
func (j *Journal) NewCashAllocation(account AccountID, portfolio PortfolioID, on date.Date, amount Money, memo string, tags ...string) (CashAllocation, error) {
	e := CashAllocation{
		scopedEntry: scopedEntry{baseEntry: j.newBase(account, on, memo, tags), Target: portfolio},
		Amount:      j.money(amount),
	}
	return e, validateEntry(e)
}

// NewCashDeallocation builds the reverse of an allocation.
func (j *Journal) NewCashDeallocation(account AccountID, portfolio PortfolioID, on date.Date, amount Money, memo string, tags ...string) (CashDeallocation, error) {
	e := CashDeallocation{
		scopedEntry: scopedEntry{baseEntry: j.newBase(account, on, memo, tags), Target: portfolio},
		Amount:      j.money(amount),
	}
	return e, validateEntry(e)
}

func (j *Journal) newTrade(account AccountID, portfolio PortfolioID, on date.Date, ticker, label string, quantity Quantity, price, commission Money, memo string, tags []string) tradeEntry {
	return tradeEntry{
		scopedEntry: scopedEntry{baseEntry: j.newBase(account, on, memo, tags), Target: portfolio},
		Ticker:      ticker,
		Label:       label,
		Quantity:    quantity,
		UnitPrice:   j.money(price),
		Commission:  j.money(commission),
	}
}

// NewBuyEquity builds a buy entry.
func (j *Journal) NewBuyEquity(account AccountID, portfolio PortfolioID, on date.Date, ticker, label string, quantity Quantity, price, commission Money, memo string, tags ...string) (BuyEquity, error) {
	e := BuyEquity{j.newTrade(account, portfolio, on, ticker, label, quantity, price, commission, memo, tags)}
	return e, validateEntry(e)
}

// NewSellEquity builds a sell entry.
func (j *Journal) NewSellEquity(account AccountID, portfolio PortfolioID, on date.Date, ticker, label string, quantity Quantity, price, commission Money, memo string, tags ...string) (SellEquity, error) {
	e := SellEquity{j.newTrade(account, portfolio, on, ticker, label, quantity, price, commission, memo, tags)}
	return e, validateEntry(e)
}

// Submit registers an entry against its account and, for portfolio-scoped
// entries, its portfolio, then appends it to the global sequence. No entry is
// ever partially applied: a portfolio-side failure unwinds the account side
// before returning.
func (j *Journal) Submit(e Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	account, err := j.Account(e.Account())
	if err != nil {
		return err
	}
	var portfolio *Portfolio
	if scoped, ok := e.(PortfolioEntry); ok {
		if portfolio, err = j.Portfolio(scoped.Portfolio()); err != nil {
			return err
		}
	}

	if err := account.AddEntry(e); err != nil {
		return err
	}
	if portfolio != nil {
		if err := portfolio.AddEntry(e); err != nil {
			if rerr := account.RemoveEntry(e.ID()); rerr != nil {
				return internalf("could not unwind account %d after portfolio rejection: %v (portfolio error: %v)", account.id, rerr, err)
			}
			return err
		}
	}

	j.log = append(j.log, e)
	if e.ID() >= j.nextEntry {
		// Entries restored from an external store carry their original ids.
		j.nextEntry = e.ID() + 1
	}
	if j.mode == Immediate {
		j.refreshValuations()
	}
	return nil
}

// RemoveEntry detaches an entry everywhere it was applied and recomputes the
// affected account and portfolio.
func (j *Journal) RemoveEntry(id EntryID) error {
	i := slices.IndexFunc(j.log, func(e Entry) bool { return e.ID() == id })
	if i < 0 {
		return notFoundf("unknown entry %d", id)
	}
	e := j.log[i]

	account, err := j.Account(e.Account())
	if err != nil {
		return err
	}
	if err := account.RemoveEntry(id); err != nil {
		return err
	}
	if scoped, ok := e.(PortfolioEntry); ok {
		portfolio, err := j.Portfolio(scoped.Portfolio())
		if err != nil {
			return err
		}
		if err := portfolio.RemoveEntry(id); err != nil {
			if rerr := account.AddEntry(e); rerr != nil {
				return internalf("could not restore account %d after portfolio removal failure: %v (portfolio error: %v)", account.id, rerr, err)
			}
			return err
		}
	}

	j.log = slices.Delete(j.log, i, i+1)
	if j.mode == Immediate {
		j.refreshValuations()
	}
	return nil
}
