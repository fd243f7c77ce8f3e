// Package tradebook is a personal trading and accounting ledger engine. It
// reconstructs the state of brokerage accounts and virtual portfolios from a
// chronological log of financial events: deposits, withdrawals, virtual cash
// allocations, and equity buys and sells.
//
// The Journal is the single entry point. It registers accounts and
// portfolios, allocates every id, builds entries, and routes them to the
// account (and portfolio) they apply to. Accounts keep physical cash, virtual
// per-portfolio allocations and a FIFO lot book; portfolios form a tree whose
// cash and holdings aggregate bottom-up. Out-of-order insertions trigger a
// full wipe-and-replay recomputation of derived state, so the ledger is
// always consistent with its sorted entry history.
//
// All arithmetic is exact decimal; cash values and prices round half-even to
// two decimal places, gain ratios to four. Reads go through deep-copied
// snapshots, and the whole journal round-trips through a JSONL stream.
package tradebook
