package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
)

func TestUndoIndulgence(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}

	if err := e.Undo(id, t0.Add(time.Minute)); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	a := e.accounts[id]
	if a.DebtSeconds != 0 {
		t.Errorf("debt = %d, want the indulgence exactly inverted", a.DebtSeconds)
	}
	if e.feed.Len() != 0 {
		t.Errorf("feed len = %d, want the entry removed", e.feed.Len())
	}
}

func TestUndoAfterWindow(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}

	err := e.Undo(id, t0.Add(601*time.Second))
	if !errors.Is(err, domain.ErrUndoWindowOver) {
		t.Fatalf("err = %v, want ErrUndoWindowOver", err)
	}
	if e.feed.Len() != 1 {
		t.Error("expired undo must leave the entry in place")
	}
	// Only the decay that any operation triggers; the entry is untouched.
	if got := e.accounts[id].DebtSeconds; got != 864000-601 {
		t.Errorf("debt = %d, want %d", got, 864000-601)
	}
}

func TestUndoNotOwned(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := signup(t, e, "Alice")
	bob := signup(t, e, "Bob")
	if err := e.Indulge(alice, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}

	if err := e.Undo(bob, t0.Add(time.Minute)); !errors.Is(err, domain.ErrUndoNotOwned) {
		t.Errorf("err = %v, want ErrUndoNotOwned", err)
	}
	if got := e.accounts[alice].DebtSeconds; got != 864000 {
		t.Errorf("alice's debt = %d, a stranger's undo must not touch it", got)
	}
}

func TestUndoEmptyFeed(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.Undo(id, t0); !errors.Is(err, domain.ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestUndoVirtueClearsCooldown(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.DebtSeconds = 200000
	a.LastUpdate = t0.Unix()

	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Fatalf("CompleteVirtue: %v", err)
	}
	if err := e.Undo(id, t0); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if a.DebtSeconds != 200000 {
		t.Errorf("debt = %d, want 200000 restored", a.DebtSeconds)
	}
	if a.LastVirtue[0] != 0 {
		t.Error("undo must clear the slot's cooldown anchor")
	}
	// The slot is immediately usable again.
	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Errorf("redo after undo: %v", err)
	}
}

func TestUndoAfterMilestoneFireStillExpires(t *testing.T) {
	e, store := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}
	flushesBefore := store.flushes

	// Six days later the decay pass inside Undo mints the 5-day clean
	// achievement. That record must not count as a fresh undoable entry:
	// the window check applies to the indulgence underneath it.
	at := t0.Add(6 * 24 * time.Hour)
	if err := e.Undo(id, at); !errors.Is(err, domain.ErrUndoWindowOver) {
		t.Fatalf("err = %v, want ErrUndoWindowOver", err)
	}

	entries := e.FeedSnapshot()
	if len(entries) != 2 {
		t.Fatalf("feed len = %d, want achievement + indulgence kept", len(entries))
	}
	if entries[0].Kind != domain.KindAchievement || entries[1].Kind != domain.KindVice {
		t.Errorf("feed = [%s, %s], want [achievement, vice]", entries[0].Kind, entries[1].Kind)
	}
	a := e.accounts[id]
	if a.HighestCleanMilestone != 5 {
		t.Errorf("milestone mark = %d, want 5", a.HighestCleanMilestone)
	}
	if a.DebtSeconds != 864000-6*86400 {
		t.Errorf("debt = %d, want only the six days of decay applied", a.DebtSeconds)
	}
	if store.flushes == flushesBefore {
		t.Error("the decay-minted achievement must be persisted despite the failed undo")
	}
	if e.CanUndo(id, at) {
		t.Error("CanUndo must look past the achievement to the expired indulgence")
	}
}

func TestUndoSkipsAchievementToRecentVirtue(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.DebtSeconds = 500000
	a.LastUpdate = t0.Unix()
	// Five minutes short of the 5-day clean milestone, so it fires during
	// the undo's decay pass, after the virtue entry below was written.
	a.LastViceTime = t0.Add(-5*24*time.Hour + 300*time.Second).Unix()

	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Fatalf("CompleteVirtue: %v", err)
	}
	if err := e.Undo(id, t0.Add(400*time.Second)); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	// Virtue inverted on top of the 400s of decay; the achievement stays.
	if a.DebtSeconds != 500000-400 {
		t.Errorf("debt = %d, want %d", a.DebtSeconds, 500000-400)
	}
	if a.LastVirtue[0] != 0 {
		t.Error("undo must clear the slot's cooldown anchor")
	}
	entries := e.FeedSnapshot()
	if len(entries) != 1 || entries[0].Kind != domain.KindAchievement {
		t.Errorf("feed = %+v, want only the achievement left", entries)
	}
}

func TestUndoLockCascade(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	lockAccount(t, e, id)

	// One undo clears the lock record and the indulgence that tripped it.
	if err := e.Undo(id, t0.Add(10*time.Second)); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	a := e.accounts[id]
	if a.Locked {
		t.Error("cascading undo should restore locked=false")
	}
	if a.DebtSeconds != 2160000 {
		t.Errorf("debt = %d, want the pre-indulgence 2160000", a.DebtSeconds)
	}
	if e.feed.Len() != 2 {
		t.Errorf("feed len = %d, want the two earlier indulgences left", e.feed.Len())
	}
}

func TestUndoLockCascadeExpiredKeepsUnlock(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	lockAccount(t, e, id)

	err := e.Undo(id, t0.Add(601*time.Second))
	if !errors.Is(err, domain.ErrUndoWindowOver) {
		t.Fatalf("err = %v, want ErrUndoWindowOver", err)
	}
	a := e.accounts[id]
	// The lock-clearing already performed is kept even though the
	// indulgence itself stayed.
	if a.Locked {
		t.Error("lock clearing should survive the failed undo")
	}
	if a.DebtSeconds != 3456000 {
		t.Errorf("debt = %d, want 3456000 untouched", a.DebtSeconds)
	}
	if e.feed.Len() != 3 {
		t.Errorf("feed len = %d, want lock entry removed and indulgences kept", e.feed.Len())
	}
}
