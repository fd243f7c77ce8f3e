package tradebook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The journal persists as a JSONL stream: one header line carrying the
// reporting currency, one line per account and per portfolio (the implicit
// root is not written), then every entry of the global sequence in submission
// order. Replaying the stream through Submit reproduces identical derived
// state.

// Record kinds for the non-entry lines of the stream.
const (
	kindJournal   = "journal"
	kindAccount   = "account"
	kindPortfolio = "portfolio"
)

// MarshalJSON implements the json.Marshaler interface for baseEntry.
func (e baseEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", e.Seq)
	w.Append("account", e.Owner)
	w.Append("date", e.Date)
	w.Optional("memo", e.Memo)
	w.Optional("tags", e.Labels)
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface for scopedEntry.
func (e scopedEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEntry)
	w.Append("portfolio", e.Target)
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface for tradeEntry.
func (e tradeEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.scopedEntry)
	w.Append("ticker", e.Ticker)
	w.Append("position", e.Label)
	w.Append("quantity", e.Quantity)
	w.Append("price", e.UnitPrice)
	w.Append("commission", e.Commission)
	return w.MarshalJSON()
}

func marshalWithKind(kind EntryKind, body any, extra func(*jsonObjectWriter)) ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", kind)
	w.EmbedFrom(body)
	if extra != nil {
		extra(&w)
	}
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface for CashDeposit.
func (e CashDeposit) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindDeposit, e.baseEntry, func(w *jsonObjectWriter) { w.Append("amount", e.Amount) })
}

// MarshalJSON implements the json.Marshaler interface for CashWithdrawal.
func (e CashWithdrawal) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindWithdrawal, e.baseEntry, func(w *jsonObjectWriter) { w.Append("amount", e.Amount) })
}

// MarshalJSON implements the json.Marshaler interface for CashAllocation.
func (e CashAllocation) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindAllocation, e.scopedEntry, func(w *jsonObjectWriter) { w.Append("amount", e.Amount) })
}

// MarshalJSON implements the json.Marshaler interface for CashDeallocation.
func (e CashDeallocation) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindDeallocation, e.scopedEntry, func(w *jsonObjectWriter) { w.Append("amount", e.Amount) })
}

// MarshalJSON implements the json.Marshaler interface for BuyEquity.
func (e BuyEquity) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindBuy, e.tradeEntry, nil)
}

// MarshalJSON implements the json.Marshaler interface for SellEquity.
func (e SellEquity) MarshalJSON() ([]byte, error) {
	return marshalWithKind(KindSell, e.tradeEntry, nil)
}

// EncodeEntry writes one entry as a single JSONL line.
func EncodeEntry(w io.Writer, e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("could not encode %s entry %d: %w", e.Kind(), e.ID(), err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
		return err
	}
	return nil
}

// EncodeJournal writes the whole journal: header, registry, then the global
// entry sequence.
func EncodeJournal(w io.Writer, j *Journal) error {
	bw := bufio.NewWriter(w)

	var header jsonObjectWriter
	header.Append("kind", kindJournal)
	header.Append("currency", j.cur)
	if err := writeLine(bw, &header); err != nil {
		return err
	}

	for a := range j.Accounts() {
		var line jsonObjectWriter
		line.Append("kind", kindAccount)
		line.Append("id", a.ID())
		line.Append("name", a.Name())
		if err := writeLine(bw, &line); err != nil {
			return err
		}
	}
	for p := range j.Portfolios() {
		if p.IsRoot() {
			continue
		}
		var line jsonObjectWriter
		line.Append("kind", kindPortfolio)
		line.Append("id", p.ID())
		line.Append("parent", p.Parent())
		line.Append("name", p.Name())
		if err := writeLine(bw, &line); err != nil {
			return err
		}
	}

	for e := range j.Entries(AcceptAll) {
		if err := EncodeEntry(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w io.Writer, record *jsonObjectWriter) error {
	line, err := record.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

// restoreAccount re-registers an account with its persisted id.
func (j *Journal) restoreAccount(id AccountID, name string) error {
	if id <= 0 {
		return validationf("account record has invalid id %d", id)
	}
	if _, exists := j.accounts[id]; exists {
		return validationf("duplicate account record %d", id)
	}
	a := newAccount(id, name, j.cur)
	j.accounts[id] = a
	j.accountIDs = append(j.accountIDs, id)
	if id >= j.nextAccount {
		j.nextAccount = id + 1
	}
	return nil
}

// restorePortfolio re-registers a portfolio with its persisted id under its
// persisted parent.
func (j *Journal) restorePortfolio(id, parent PortfolioID, name string) error {
	if id <= 0 {
		return validationf("portfolio record has invalid id %d", id)
	}
	if _, exists := j.portfolios[id]; exists {
		return validationf("duplicate portfolio record %d", id)
	}
	owner, err := j.Portfolio(parent)
	if err != nil {
		return err
	}
	p := newPortfolio(id, name, j.cur, parent)
	j.portfolios[id] = p
	owner.addChild(p)
	if id >= j.nextPortfolio {
		j.nextPortfolio = id + 1
	}
	return nil
}

// DecodeJournal reads a JSONL stream written by EncodeJournal and rebuilds
// the journal by replaying every entry through Submit. The replay runs in
// Deferred mode; the caller triggers RefreshValuations once quotes are
// installed.
func DecodeJournal(r io.Reader) (*Journal, error) {
	scanner := bufio.NewScanner(r)

	var j *Journal
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record %q: %w", lineNo, line, err)
		}

		if identifier.Kind == kindJournal {
			if j != nil {
				return nil, fmt.Errorf("line %d: duplicate journal header", lineNo)
			}
			var header struct {
				Currency string `json:"currency"`
			}
			if err := json.Unmarshal(line, &header); err != nil {
				return nil, fmt.Errorf("line %d: invalid journal header: %w", lineNo, err)
			}
			j = NewJournal(header.Currency)
			j.SetExecMode(Deferred)
			continue
		}
		if j == nil {
			return nil, fmt.Errorf("line %d: stream must start with a journal header", lineNo)
		}

		if err := decodeRecord(j, identifier.Kind, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("empty journal stream")
	}
	j.SetExecMode(Immediate)
	return j, nil
}

func decodeRecord(j *Journal, kind string, line []byte) error {
	switch kind {
	case kindAccount:
		var rec struct {
			ID   AccountID `json:"id"`
			Name string    `json:"name"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("invalid account record: %w", err)
		}
		return j.restoreAccount(rec.ID, rec.Name)

	case kindPortfolio:
		var rec struct {
			ID     PortfolioID `json:"id"`
			Parent PortfolioID `json:"parent"`
			Name   string      `json:"name"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("invalid portfolio record: %w", err)
		}
		return j.restorePortfolio(rec.ID, rec.Parent, rec.Name)
	}

	e, err := decodeEntry(j, EntryKind(kind), line)
	if err != nil {
		return err
	}
	return j.Submit(e)
}

func decodeEntry(j *Journal, kind EntryKind, line []byte) (Entry, error) {
	switch kind {
	case KindDeposit:
		var e CashDeposit
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid deposit entry: %w", err)
		}
		e.Amount = j.money(e.Amount)
		return e, nil
	case KindWithdrawal:
		var e CashWithdrawal
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid withdrawal entry: %w", err)
		}
		e.Amount = j.money(e.Amount)
		return e, nil
	case KindAllocation:
		var e CashAllocation
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid allocation entry: %w", err)
		}
		e.Amount = j.money(e.Amount)
		return e, nil
	case KindDeallocation:
		var e CashDeallocation
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid deallocation entry: %w", err)
		}
		e.Amount = j.money(e.Amount)
		return e, nil
	case KindBuy:
		var e BuyEquity
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid buy entry: %w", err)
		}
		e.UnitPrice = j.money(e.UnitPrice)
		e.Commission = j.money(e.Commission)
		return e, nil
	case KindSell:
		var e SellEquity
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid sell entry: %w", err)
		}
		e.UnitPrice = j.money(e.UnitPrice)
		e.Commission = j.money(e.Commission)
		return e, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}
