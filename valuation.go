package tradebook

// QuoteProvider supplies last-known prices for instruments. It is an external
// collaborator: the engine calls it only during the read-only valuation
// refresh, never while applying an entry. Staleness and caching policy belong
// to the provider.
type QuoteProvider interface {
	// LastPrice returns the last price for the ticker, and false when no
	// price is available.
	LastPrice(ticker string) (Money, bool)
}

// StaticQuotes is an in-memory QuoteProvider, handy for tests and for
// injecting already-resolved prices.
type StaticQuotes map[string]Money

// LastPrice implements QuoteProvider.
func (q StaticQuotes) LastPrice(ticker string) (Money, bool) {
	price, ok := q[ticker]
	return price, ok
}

// RefreshValuations re-reads every open ticker's last price from the quote
// provider. In Deferred mode this is the only way prices are refreshed; in
// Immediate mode it also runs after every successful mutation.
func (j *Journal) RefreshValuations() {
	j.refreshValuations()
}

func (j *Journal) refreshValuations() {
	if j.quotes == nil {
		return
	}
	for _, a := range j.accounts {
		for h := range a.book.OpenHoldings() {
			if price, ok := j.quotes.LastPrice(h.Ticker()); ok {
				j.prices[h.Ticker()] = j.money(price)
			}
		}
	}
}

// LastPrice returns the price recorded by the most recent valuation refresh,
// and false when the ticker has never been priced.
func (j *Journal) LastPrice(ticker string) (Money, bool) {
	price, ok := j.prices[ticker]
	return price, ok
}
