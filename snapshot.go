package tradebook

import (
	"tradebook/date"
)

// Snapshot types are read-only, deep-copied projections of engine state for
// rendering and export. They never alias mutable internals: mutating a
// snapshot cannot affect the ledger.

// TradeSnapshot is the view of a single lot.
type TradeSnapshot struct {
	Opened       date.Date
	Quantity     Quantity
	OpenPrice    Money
	OpenValue    Money
	Commission   Money
	Closed       bool
	ClosePrice   Money
	CloseValue   Money
	RealizedGain Money
	GainPercent  Percent
}

// PositionSnapshot is the view of a named position and its lots.
type PositionSnapshot struct {
	Label        string
	Quantity     Quantity
	AvgOpenPrice Money
	OpenValue    Money
	Commission   Money
	RealizedGain Money
	GainPercent  Percent
	Trades       []TradeSnapshot
}

// HoldingSnapshot is the view of one instrument's positions, with market
// figures when a valuation refresh has priced the ticker.
type HoldingSnapshot struct {
	Ticker       string
	Quantity     Quantity
	AvgOpenPrice Money
	OpenValue    Money
	Commission   Money
	RealizedGain Money
	GainPercent  Percent
	Priced       bool
	MarketPrice  Money
	MarketValue  Money
	Positions    []PositionSnapshot
}

// BookSnapshot separates open from closed holdings, tickers sorted.
type BookSnapshot struct {
	Open   []HoldingSnapshot
	Closed []HoldingSnapshot
}

// AccountSnapshot is the full view of one account.
type AccountSnapshot struct {
	ID              AccountID
	Name            string
	CashBalance     Money
	UnallocatedCash Money
	Allocations     map[PortfolioID]Money
	Holdings        BookSnapshot
	HighWaterMark   date.Date
}

// PortfolioSnapshot is the full view of one portfolio subtree.
type PortfolioSnapshot struct {
	ID                    PortfolioID
	Name                  string
	CashBalance           Money
	AggregatedCashBalance Money
	Holdings              BookSnapshot // own lots only
	AggregatedHoldings    BookSnapshot // subtree union, duplicates merged
	Children              []PortfolioSnapshot
}

func snapshotTrade(t *Trade) TradeSnapshot {
	return TradeSnapshot{
		Opened:       t.opened,
		Quantity:     t.quantity,
		OpenPrice:    t.openPrice,
		OpenValue:    t.openValue,
		Commission:   t.commission,
		Closed:       t.closed,
		ClosePrice:   t.closePrice,
		CloseValue:   t.closeValue,
		RealizedGain: t.realizedGain,
		GainPercent:  t.gainPct,
	}
}

func snapshotPosition(p *Position) PositionSnapshot {
	s := PositionSnapshot{
		Label:        p.label,
		Quantity:     p.quantity,
		AvgOpenPrice: p.avgOpenPrice,
		OpenValue:    p.openValue,
		Commission:   p.commission,
		RealizedGain: p.realizedGain,
		GainPercent:  p.gainPct,
		Trades:       make([]TradeSnapshot, 0, len(p.trades)),
	}
	for _, t := range p.trades {
		s.Trades = append(s.Trades, snapshotTrade(t))
	}
	return s
}

func (j *Journal) snapshotHolding(h *Holding) HoldingSnapshot {
	s := HoldingSnapshot{
		Ticker:       h.ticker,
		Quantity:     h.quantity,
		AvgOpenPrice: h.avgOpenPrice,
		OpenValue:    h.openValue,
		Commission:   h.commission,
		RealizedGain: h.realizedGain,
		GainPercent:  h.gainPct,
		Positions:    make([]PositionSnapshot, 0, len(h.positions)),
	}
	for _, p := range h.positions {
		s.Positions = append(s.Positions, snapshotPosition(p))
	}
	if price, ok := j.prices[h.ticker]; ok {
		s.Priced = true
		s.MarketPrice = price
		s.MarketValue = h.quantity.Price(price)
	}
	return s
}

func (j *Journal) snapshotBook(b *Book) BookSnapshot {
	var s BookSnapshot
	for h := range b.OpenHoldings() {
		s.Open = append(s.Open, j.snapshotHolding(h))
	}
	for h := range b.ClosedHoldings() {
		s.Closed = append(s.Closed, j.snapshotHolding(h))
	}
	return s
}

// SnapshotAccount builds the detached view of an account.
func (j *Journal) SnapshotAccount(id AccountID) (AccountSnapshot, error) {
	a, err := j.Account(id)
	if err != nil {
		return AccountSnapshot{}, err
	}
	s := AccountSnapshot{
		ID:              a.id,
		Name:            a.name,
		CashBalance:     a.cash,
		UnallocatedCash: a.unallocated,
		Allocations:     make(map[PortfolioID]Money, len(a.allocations)),
		Holdings:        j.snapshotBook(a.book),
		HighWaterMark:   a.highWater,
	}
	for pid, alloc := range a.allocations {
		s.Allocations[pid] = alloc
	}
	return s, nil
}

// SnapshotPortfolio builds the detached view of a portfolio subtree.
func (j *Journal) SnapshotPortfolio(id PortfolioID) (PortfolioSnapshot, error) {
	p, err := j.Portfolio(id)
	if err != nil {
		return PortfolioSnapshot{}, err
	}
	return j.snapshotPortfolio(p), nil
}

func (j *Journal) snapshotPortfolio(p *Portfolio) PortfolioSnapshot {
	s := PortfolioSnapshot{
		ID:                    p.id,
		Name:                  p.name,
		CashBalance:           p.cash,
		AggregatedCashBalance: p.AggregatedCashBalance(),
		Holdings:              j.snapshotBook(p.book),
		AggregatedHoldings:    j.snapshotBook(p.AggregatedBook()),
		Children:              make([]PortfolioSnapshot, 0, len(p.children)),
	}
	for _, c := range p.children {
		s.Children = append(s.Children, j.snapshotPortfolio(c))
	}
	return s
}
