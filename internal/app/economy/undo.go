package economy

import (
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
	"github.com/midulanmathi/reCurrency/internal/infra/observability"
)

// Undo inverts the account's most recent economic ledger entry, if it is
// still inside the 10-minute window.
//
// Achievement entries are milestone records, not economic events: they are
// never an undo target and are skipped when locating the entry to invert.
// In particular, a milestone minted by this call's own decay pass must not
// be consumed as a fresh undoable entry — the window check applies to the
// real last action underneath it.
//
// A lock entry is never undone on its own: when the account is locked and
// the newest entry is its lock record, the lock is cleared, the lock entry
// removed, and the undo continues against the indulgence that tripped it.
// If the window on that entry has expired the undo reports failure, but
// the lock-clearing already performed is kept and persisted.
//
// Undoing a virtue entry zeroes that slot's cooldown anchor outright
// rather than restoring its prior value; the slot becomes immediately
// usable again.
func (e *Engine) Undo(id string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	feedBefore := e.feed.Len()
	e.applyDecay(a, now)
	dirty := e.feed.Len() != feedBefore

	// reject persists any state the rejected undo already changed (cleared
	// lock, decay-minted achievements) before reporting the failure.
	reject := func(err error) error {
		if dirty {
			if ferr := e.flushLocked(); ferr != nil {
				return ferr
			}
		}
		return err
	}

	if front, ok := e.feed.Front(); ok && a.Locked && front.Kind == domain.KindLocked && front.AccountName == a.Name {
		a.Locked = false
		a.LockTime = 0
		e.feed.PopFront()
		dirty = true
		if e.feed.Len() == 0 {
			return e.flushLocked()
		}
	}

	idx := -1
	for i := 0; i < e.feed.Len(); i++ {
		entry, _ := e.feed.At(i)
		if entry.Kind != domain.KindAchievement {
			idx = i
			break
		}
	}
	if idx < 0 {
		return reject(domain.ErrNothingToUndo)
	}
	target, _ := e.feed.At(idx)
	if target.AccountName != a.Name {
		return reject(domain.ErrUndoNotOwned)
	}
	if now.Unix()-target.Timestamp >= domain.UndoWindowSeconds {
		return reject(domain.ErrUndoWindowOver)
	}

	a.DebtSeconds -= target.DebtDelta
	if a.DebtSeconds < 0 {
		a.DebtSeconds = 0
	}
	switch target.Kind {
	case domain.KindVirtue1:
		a.LastVirtue[0] = 0
	case domain.KindVirtue2:
		a.LastVirtue[1] = 0
	}
	e.feed.Remove(idx)
	observability.Undos.Inc()
	return e.flushLocked()
}
