package tradebook

import (
	"cmp"
	"slices"

	"tradebook/date"
)

// EntryKind is a typed string identifying an entry variant.
type EntryKind string

// Entry kinds used for identification and for the persisted log.
const (
	KindDeposit      EntryKind = "deposit"
	KindWithdrawal   EntryKind = "withdraw"
	KindAllocation   EntryKind = "allocate"
	KindDeallocation EntryKind = "deallocate"
	KindBuy          EntryKind = "buy"
	KindSell         EntryKind = "sell"
)

// EntryID identifies an entry. Ids increase monotonically in creation order
// and are never reused within a journal.
type EntryID int64

// AccountID identifies an account within a journal.
type AccountID int64

// PortfolioID identifies a portfolio within a journal.
type PortfolioID int64

// Entry is an immutable, dated financial event applied to an account and,
// for portfolio-scoped variants, to a portfolio. Entries are value types:
// once created they are never mutated, only detached and possibly re-applied.
type Entry interface {
	Kind() EntryKind      // Kind returns the entry's variant tag.
	ID() EntryID          // ID returns the globally unique, monotonic id.
	Account() AccountID   // Account returns the owning account.
	When() date.Date      // When returns the effective date.
	Rationale() string    // Rationale returns the optional memo.
	Tags() []string       // Tags returns the optional tags.
}

// PortfolioEntry is the subset of entries scoped to a portfolio.
type PortfolioEntry interface {
	Entry
	Portfolio() PortfolioID
}

// baseEntry carries the fields common to every entry variant.
type baseEntry struct {
	Seq    EntryID   `json:"id"`             // Seq is the globally unique entry id.
	Owner  AccountID `json:"account"`        // Owner is the id of the owning account.
	Date   date.Date `json:"date"`           // Date is the effective date, day granularity.
	Memo   string    `json:"memo,omitempty"` // Memo is an optional rationale for the entry.
	Labels []string  `json:"tags,omitempty"` // Labels are optional free-form tags.
}

func (e baseEntry) ID() EntryID        { return e.Seq }
func (e baseEntry) Account() AccountID { return e.Owner }
func (e baseEntry) When() date.Date    { return e.Date }
func (e baseEntry) Rationale() string  { return e.Memo }

// Tags returns a copy so holders of an Entry cannot alter its labels.
func (e baseEntry) Tags() []string { return slices.Clone(e.Labels) }

func (e baseEntry) validate() error {
	if e.Owner <= 0 {
		return validationf("entry requires an owning account")
	}
	if e.Date.IsZero() {
		return validationf("entry requires an effective date")
	}
	return nil
}

// scopedEntry is the component for portfolio-scoped entries.
type scopedEntry struct {
	baseEntry
	Target PortfolioID `json:"portfolio"` // Target is the portfolio the entry is scoped to.
}

func (e scopedEntry) Portfolio() PortfolioID { return e.Target }

func (e scopedEntry) validate() error {
	if err := e.baseEntry.validate(); err != nil {
		return err
	}
	if e.Target <= 0 {
		return validationf("entry requires a target portfolio")
	}
	return nil
}

// tradeEntry is the component for equity trades (buy, sell).
type tradeEntry struct {
	scopedEntry
	Ticker     string   `json:"ticker"`   // Ticker is the instrument symbol.
	Label      string   `json:"position"` // Label names the position within the holding (e.g. "long").
	Quantity   Quantity `json:"quantity"` // Quantity is the number of units traded.
	UnitPrice  Money    `json:"price"`    // UnitPrice is the per-unit price.
	Commission Money    `json:"commission"`
}

func (e tradeEntry) validate() error {
	if err := e.scopedEntry.validate(); err != nil {
		return err
	}
	if e.Ticker == "" {
		return validationf("trade requires a ticker")
	}
	if e.Label == "" {
		return validationf("trade requires a position label")
	}
	if e.Quantity.IsNegative() || e.Quantity.IsZero() {
		return validationf("trade quantity must be positive")
	}
	if e.UnitPrice.IsNegative() {
		return validationf("trade price must not be negative")
	}
	if e.Commission.IsNegative() {
		return validationf("trade commission must not be negative")
	}
	return nil
}

// cashValue is the signed cash impact of the trade on the account and
// portfolio pools: price plus commission for a buy, price minus commission
// for a sell (commission always reduces proceeds, so the result can be
// negative when commission exceeds them).
func (e tradeEntry) cashValue(kind EntryKind) Money {
	gross := e.Quantity.Price(e.UnitPrice)
	if kind == KindSell {
		return gross.Sub(e.Commission)
	}
	return gross.Add(e.Commission)
}

// CashDeposit adds physical cash to an account; the amount also becomes
// unallocated virtual cash.
type CashDeposit struct {
	baseEntry
	Amount Money `json:"amount"`
}

func (CashDeposit) Kind() EntryKind { return KindDeposit }

// CashWithdrawal removes physical cash from an account; the amount is taken
// from the unallocated pool.
type CashWithdrawal struct {
	baseEntry
	Amount Money `json:"amount"`
}

func (CashWithdrawal) Kind() EntryKind { return KindWithdrawal }

// CashAllocation moves virtual cash from an account's unallocated pool to a
// portfolio. No physical cash moves.
type CashAllocation struct {
	scopedEntry
	Amount Money `json:"amount"`
}

func (CashAllocation) Kind() EntryKind { return KindAllocation }

// CashDeallocation moves virtual cash from a portfolio back to the account's
// unallocated pool.
type CashDeallocation struct {
	scopedEntry
	Amount Money `json:"amount"`
}

func (CashDeallocation) Kind() EntryKind { return KindDeallocation }

// BuyEquity opens (or extends) a lot of an instrument within a portfolio.
type BuyEquity struct {
	tradeEntry
}

func (BuyEquity) Kind() EntryKind { return KindBuy }

// SellEquity closes open lots of an instrument FIFO within a portfolio.
type SellEquity struct {
	tradeEntry
}

func (SellEquity) Kind() EntryKind { return KindSell }

func validateAmount(amount Money) error {
	if amount.IsNegative() {
		return validationf("amount must not be negative")
	}
	return nil
}

// validateEntry checks structural preconditions only. Validation against
// account state happens at apply time.
func validateEntry(e Entry) error {
	switch v := e.(type) {
	case CashDeposit:
		if err := v.baseEntry.validate(); err != nil {
			return err
		}
		return validateAmount(v.Amount)
	case CashWithdrawal:
		if err := v.baseEntry.validate(); err != nil {
			return err
		}
		return validateAmount(v.Amount)
	case CashAllocation:
		if err := v.scopedEntry.validate(); err != nil {
			return err
		}
		return validateAmount(v.Amount)
	case CashDeallocation:
		if err := v.scopedEntry.validate(); err != nil {
			return err
		}
		return validateAmount(v.Amount)
	case BuyEquity:
		return v.tradeEntry.validate()
	case SellEquity:
		return v.tradeEntry.validate()
	default:
		return validationf("unsupported entry type %T", e)
	}
}

// compareEntries implements the total order on entries: effective date first,
// ties broken by id ascending (the earlier-created entry sorts first).
func compareEntries(a, b Entry) int {
	if c := a.When().Compare(b.When()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID(), b.ID())
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, compareEntries)
}

// ByAccount returns a predicate that filters entries by owning account.
func ByAccount(id AccountID) func(Entry) bool {
	return func(e Entry) bool { return e.Account() == id }
}

// ByPortfolio returns a predicate that filters portfolio-scoped entries by
// target portfolio.
func ByPortfolio(id PortfolioID) func(Entry) bool {
	return func(e Entry) bool {
		scoped, ok := e.(PortfolioEntry)
		return ok && scoped.Portfolio() == id
	}
}

// ByKind returns a predicate that filters entries by variant.
func ByKind(kind EntryKind) func(Entry) bool {
	return func(e Entry) bool { return e.Kind() == kind }
}

// ByTag returns a predicate that filters entries carrying the given tag.
func ByTag(tag string) func(Entry) bool {
	return func(e Entry) bool { return slices.Contains(e.Tags(), tag) }
}

// AcceptAll accepts every entry.
func AcceptAll(Entry) bool { return true }
