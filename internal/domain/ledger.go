package domain

import (
	"fmt"
	"hash/fnv"
)

// ─── Event Kinds ────────────────────────────────────────────────────────────

// EventKind classifies a ledger entry by the economy operation behind it.
type EventKind string

const (
	KindVice        EventKind = "vice"
	KindVirtue1     EventKind = "virtue1"
	KindVirtue2     EventKind = "virtue2"
	KindReset       EventKind = "reset"
	KindLocked      EventKind = "locked"
	KindAchievement EventKind = "achievement"
)

// VirtueKind maps a virtue slot (1 or 2) to its event kind.
func VirtueKind(slot int) EventKind {
	if slot == 1 {
		return KindVirtue1
	}
	return KindVirtue2
}

// Display color tags per event kind, carried on every entry so the feed
// can render without consulting the account.
const (
	ColorVice        = "#ff5252"
	ColorVirtue1     = "#2196F3"
	ColorVirtue2     = "#9c27b0"
	ColorReset       = "#4CAF50"
	ColorLocked      = "#ff0000"
	ColorAchievement = "#FFD700"
)

// ─── Ledger Entries ─────────────────────────────────────────────────────────

// LedgerEntry is one immutable economic event in the activity feed.
// DebtDelta is the exact signed amount the event added to or removed from
// the owning account's debt (0 for lock, reset, and achievement entries);
// DebtSnapshot is the account's debt immediately after the event.
type LedgerEntry struct {
	AccountName  string    `json:"user"`
	Kind         EventKind `json:"action"`
	Message      string    `json:"msg"`
	Timestamp    int64     `json:"ts"`
	Color        string    `json:"col"`
	DebtDelta    int64     `json:"delta"`
	DebtSnapshot int64     `json:"snap"`
}

// FeedCapacity bounds the activity feed; the oldest entry is evicted when
// an insertion would exceed it.
const FeedCapacity = 100

// Feed is the bounded, most-recent-first activity ledger. Index 0 is the
// newest entry. Feed itself is not goroutine-safe; the engine serializes
// all access under its own lock.
type Feed struct {
	entries []LedgerEntry
}

// Push inserts an entry at the front, evicting the oldest when full.
func (f *Feed) Push(e LedgerEntry) {
	f.entries = append([]LedgerEntry{e}, f.entries...)
	if len(f.entries) > FeedCapacity {
		f.entries = f.entries[:FeedCapacity]
	}
}

// Front returns the most recent entry, if any.
func (f *Feed) Front() (LedgerEntry, bool) {
	if len(f.entries) == 0 {
		return LedgerEntry{}, false
	}
	return f.entries[0], true
}

// At returns the entry at position i, 0 being the newest.
func (f *Feed) At(i int) (LedgerEntry, bool) {
	if i < 0 || i >= len(f.entries) {
		return LedgerEntry{}, false
	}
	return f.entries[i], true
}

// Remove deletes the entry at position i. No-op when out of range.
func (f *Feed) Remove(i int) {
	if i < 0 || i >= len(f.entries) {
		return
	}
	f.entries = append(f.entries[:i], f.entries[i+1:]...)
}

// PopFront removes the most recent entry. No-op on an empty feed.
func (f *Feed) PopFront() {
	if len(f.entries) > 0 {
		f.entries = f.entries[1:]
	}
}

// Len returns the number of entries currently held.
func (f *Feed) Len() int { return len(f.entries) }

// Entries returns a copy of the feed, newest first.
func (f *Feed) Entries() []LedgerEntry {
	out := make([]LedgerEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Replace swaps in a loaded history, newest first, truncated to capacity.
func (f *Feed) Replace(entries []LedgerEntry) {
	if len(entries) > FeedCapacity {
		entries = entries[:FeedCapacity]
	}
	f.entries = append([]LedgerEntry(nil), entries...)
}

// ─── Display Helpers ────────────────────────────────────────────────────────

// UserColor derives a stable hsl() accent color from a display name,
// used for the per-account cards on the dashboard.
func UserColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := h.Sum32() % 360
	return fmt.Sprintf("hsl(%d, 70%%, 65%%)", hue)
}
