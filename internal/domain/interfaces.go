package domain

// ─── Persistence Interface ──────────────────────────────────────────────────
// Infrastructure implements this; the engine depends on it. The store has
// exactly two lifecycle hooks: load everything once at startup, flush
// everything after each mutation.

// Store persists the full economy state. Flush must be synchronous and
// all-or-nothing from the caller's point of view: if it returns an error,
// none of the state may be considered durable.
type Store interface {
	// Load returns every account keyed by ID plus the activity feed,
	// newest entry first.
	Load() (map[string]*Account, []LedgerEntry, error)

	// Flush durably rewrites the complete account table and feed.
	Flush(accounts map[string]*Account, feed []LedgerEntry) error
}
