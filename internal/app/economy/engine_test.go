package economy

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
)

// memStore is an in-memory domain.Store for tests.
type memStore struct {
	accounts map[string]*domain.Account
	feed     []domain.LedgerEntry
	flushes  int
	failNext bool
}

func (m *memStore) Load() (map[string]*domain.Account, []domain.LedgerEntry, error) {
	return m.accounts, m.feed, nil
}

func (m *memStore) Flush(accounts map[string]*domain.Account, feed []domain.LedgerEntry) error {
	if m.failNext {
		m.failNext = false
		return errors.New("disk full")
	}
	m.flushes++
	m.accounts = accounts
	m.feed = feed
	return nil
}

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// tenDayContract derives baseCost=864000 (10d) and maxThreshold=2160000 (25d).
func tenDayContract() ContractParams {
	return ContractParams{
		Vice:               "Sugar",
		TargetIntervalDays: 5,
		Virtue1Name:        "Gym",
		PromisedV1Weekly:   3,
		Virtue2Name:        "Study",
		PromisedV2Weekly:   4,
	}
}

func newTestEngine(t *testing.T) (*Engine, *memStore) {
	t.Helper()
	store := &memStore{}
	e, err := New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, store
}

func signup(t *testing.T, e *Engine, name string) string {
	t.Helper()
	a, err := e.Signup(name, "pw", tenDayContract(), t0)
	if err != nil {
		t.Fatalf("Signup(%q): %v", name, err)
	}
	return a.ID
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestSignup(t *testing.T) {
	e, store := newTestEngine(t)
	a, err := e.Signup("Alice", "pw", tenDayContract(), t0)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if a.BaseCost != 864000 || a.MaxThreshold != 2160000 {
		t.Errorf("economy = (%d, %d), want (864000, 2160000)", a.BaseCost, a.MaxThreshold)
	}
	if store.flushes != 1 {
		t.Errorf("flushes = %d, want 1", store.flushes)
	}
}

func TestSignupDuplicateNameCaseInsensitive(t *testing.T) {
	e, _ := newTestEngine(t)
	signup(t, e, "Alice")
	if _, err := e.Signup("ALICE", "other", tenDayContract(), t0); !errors.Is(err, domain.ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
}

func TestSignupInvalidContract(t *testing.T) {
	e, _ := newTestEngine(t)
	bad := tenDayContract()
	bad.TargetIntervalDays = 0
	if _, err := e.Signup("Alice", "pw", bad, t0); !errors.Is(err, domain.ErrInvalidContract) {
		t.Errorf("err = %v, want ErrInvalidContract", err)
	}
}

func TestSignupRollsBackOnFlushFailure(t *testing.T) {
	e, store := newTestEngine(t)
	store.failNext = true
	if _, err := e.Signup("Alice", "pw", tenDayContract(), t0); err == nil {
		t.Fatal("expected flush error")
	}
	if _, err := e.Login("Alice", "pw"); !errors.Is(err, domain.ErrBadCredential) {
		t.Error("failed signup should leave no account behind")
	}
}

func TestLogin(t *testing.T) {
	e, _ := newTestEngine(t)
	signup(t, e, "Alice")

	id, err := e.Login("ALICE", "pw")
	if err != nil || id != "alice" {
		t.Errorf("Login = (%q, %v), want (alice, nil)", id, err)
	}
	if _, err := e.Login("Alice", "wrong"); !errors.Is(err, domain.ErrBadCredential) {
		t.Errorf("wrong credential: err = %v, want ErrBadCredential", err)
	}
	if _, err := e.Login("nobody", "pw"); !errors.Is(err, domain.ErrBadCredential) {
		t.Errorf("unknown name: err = %v, want ErrBadCredential", err)
	}
}

func TestEditContractRecomputesEconomy(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	e.accounts[id].DebtSeconds = 123456
	e.accounts[id].LastUpdate = t0.Unix()

	err := e.EditContract(id, ContractParams{
		Vice: "Doomscrolling", TargetIntervalDays: 7,
		Virtue1Name: "Run", PromisedV1Weekly: 3,
		Virtue2Name: "Read", PromisedV2Weekly: 5,
	}, "newpw")
	if err != nil {
		t.Fatalf("EditContract: %v", err)
	}

	a := e.accounts[id]
	if a.BaseCost != 1296000 || a.MaxThreshold != 3240000 {
		t.Errorf("recomputed economy = (%d, %d), want (1296000, 3240000)", a.BaseCost, a.MaxThreshold)
	}
	if a.DebtSeconds != 123456 {
		t.Errorf("debt = %d, edits must not touch debt", a.DebtSeconds)
	}
	if a.Credential != "newpw" {
		t.Error("credential rotation not applied")
	}
	if e.feed.Len() != 0 {
		t.Error("contract edits must not produce ledger entries")
	}
}

func TestDeleteAccountKeepsLedgerHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}
	if err := e.DeleteAccount(id); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := e.Account(id, t0); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
	if len(e.FeedSnapshot()) != 1 {
		t.Error("deleting an account must keep its ledger entries")
	}
}

// ─── Decay ──────────────────────────────────────────────────────────────────

func TestDecay(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	e.accounts[id].DebtSeconds = 100000
	e.accounts[id].LastUpdate = t0.Unix()

	a, err := e.Account(id, t0.Add(30000*time.Second))
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if a.DebtSeconds != 70000 {
		t.Errorf("debt = %d, want 70000", a.DebtSeconds)
	}

	// Same instant again: idempotent.
	a, _ = e.Account(id, t0.Add(30000*time.Second))
	if a.DebtSeconds != 70000 {
		t.Errorf("repeated decay at same instant changed debt to %d", a.DebtSeconds)
	}

	// Way past full repayment: floored at zero.
	a, _ = e.Account(id, t0.Add(500000*time.Second))
	if a.DebtSeconds != 0 {
		t.Errorf("debt = %d, want 0 floor", a.DebtSeconds)
	}
}

func TestDecaySkippedWhileLocked(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.DebtSeconds = 3000000
	a.Locked = true
	a.LockTime = t0.Unix()
	a.LastUpdate = t0.Unix()

	got, _ := e.Account(id, t0.Add(24*time.Hour))
	if got.DebtSeconds != 3000000 {
		t.Errorf("debt = %d, locked accounts must not decay", got.DebtSeconds)
	}
}

// ─── Indulgence ─────────────────────────────────────────────────────────────

// Walks the double-indulgence scenario: a clean indulgence costs the plain
// base cost, a second one while in debt costs 1.5x, and landing exactly on
// the threshold does not lock — the comparison is strictly greater-than.
func TestIndulgePenaltyAndStrictThreshold(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")

	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("first Indulge: %v", err)
	}
	a := e.accounts[id]
	if a.DebtSeconds != 864000 {
		t.Fatalf("debt = %d, want 864000", a.DebtSeconds)
	}
	front, _ := e.feed.Front()
	if front.DebtDelta != 864000 || front.Kind != domain.KindVice {
		t.Errorf("entry = %+v, want vice with delta +864000", front)
	}

	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("second Indulge: %v", err)
	}
	if a.DebtSeconds != 2160000 {
		t.Errorf("debt = %d, want 2160000 (penalized cost 1296000)", a.DebtSeconds)
	}
	if a.Locked {
		t.Error("debt equal to threshold must not lock")
	}
	if e.feed.Len() != 2 {
		t.Errorf("feed len = %d, want 2 (no lock entry)", e.feed.Len())
	}
}

func TestIndulgeLocksAboveThreshold(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	for i := 0; i < 3; i++ {
		if err := e.Indulge(id, t0); err != nil {
			t.Fatalf("Indulge %d: %v", i+1, err)
		}
	}

	a := e.accounts[id]
	if !a.Locked || a.LockTime != t0.Unix() {
		t.Fatal("third indulgence should trip the bankruptcy lock")
	}
	if a.DebtSeconds != 3456000 {
		t.Errorf("debt = %d, want 3456000", a.DebtSeconds)
	}

	// Exactly two entries for the locking indulgence: vice first, then lock,
	// so the lock record sits above it in the feed.
	entries := e.feed.Entries()
	if entries[0].Kind != domain.KindLocked || entries[1].Kind != domain.KindVice {
		t.Errorf("entry order = [%s, %s], want [locked, vice]", entries[0].Kind, entries[1].Kind)
	}

	if err := e.Indulge(id, t0); !errors.Is(err, domain.ErrAccountLocked) {
		t.Errorf("indulge while locked: err = %v, want ErrAccountLocked", err)
	}
}

func TestIndulgeResetsStreaks(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.Streak = 3
	a.HighestCleanMilestone = 10
	a.VirtueStreakDays = 12

	if err := e.Indulge(id, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}
	if a.Streak != 0 || a.HighestCleanMilestone != 0 || a.VirtueStreakDays != 0 {
		t.Errorf("streak state = (%d, %d, %d), want all zero after an indulgence",
			a.Streak, a.HighestCleanMilestone, a.VirtueStreakDays)
	}
	if a.LastViceTime != t0.Unix() {
		t.Error("LastViceTime should move to the indulgence time")
	}
}

// ─── Virtues ────────────────────────────────────────────────────────────────

func TestCompleteVirtueRemovesAtMostOneDay(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]

	// Less than a day of debt: removal is capped at the debt itself.
	a.DebtSeconds = 50000
	a.LastUpdate = t0.Unix()
	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Fatalf("CompleteVirtue: %v", err)
	}
	if a.DebtSeconds != 0 {
		t.Errorf("debt = %d, want 0", a.DebtSeconds)
	}
	front, _ := e.feed.Front()
	if front.DebtDelta != -50000 {
		t.Errorf("delta = %d, want -50000 (actual removal, not the nominal day)", front.DebtDelta)
	}

	// More than a day of debt on the other slot: removal caps at one day.
	a.DebtSeconds = 200000
	a.LastUpdate = t0.Unix()
	if err := e.CompleteVirtue(id, 2, t0); err != nil {
		t.Fatalf("CompleteVirtue slot 2: %v", err)
	}
	if a.DebtSeconds != 200000-86400 {
		t.Errorf("debt = %d, want %d", a.DebtSeconds, 200000-86400)
	}
}

func TestVirtueCooldownPerSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.DebtSeconds = 500000
	a.LastUpdate = t0.Unix()

	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Fatalf("CompleteVirtue: %v", err)
	}
	debtAfter := a.DebtSeconds
	feedAfter := e.feed.Len()

	// Same slot one hour later: rejected with no state change.
	err := e.CompleteVirtue(id, 1, t0.Add(time.Hour))
	if !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("err = %v, want ErrCooldownActive", err)
	}
	if a.DebtSeconds != debtAfter-3600 {
		t.Errorf("debt = %d, want only the hour of decay applied", a.DebtSeconds)
	}
	if e.feed.Len() != feedAfter {
		t.Error("rejected completion must not append a ledger entry")
	}

	// The other slot is an independent cooldown.
	if err := e.CompleteVirtue(id, 2, t0.Add(time.Hour)); err != nil {
		t.Errorf("slot 2 should not share slot 1's cooldown: %v", err)
	}

	// Same slot after the 20h cooldown: accepted.
	if err := e.CompleteVirtue(id, 1, t0.Add(20*time.Hour)); err != nil {
		t.Errorf("slot 1 after cooldown: %v", err)
	}
}

func TestCompleteVirtueRejectedWhileLocked(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.Locked = true
	a.LockTime = t0.Unix()

	if err := e.CompleteVirtue(id, 1, t0); !errors.Is(err, domain.ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

func TestCompleteVirtueBadSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	if err := e.CompleteVirtue(id, 3, t0); err == nil {
		t.Error("slot 3 should be rejected")
	}
}

// ─── Achievements ───────────────────────────────────────────────────────────

func TestCleanMilestoneCatchUp(t *testing.T) {
	e, store := newTestEngine(t)
	id := signup(t, e, "Alice")
	flushesBefore := store.flushes

	// A month clean: the 5, 10 and 25 day milestones all fire in one decay
	// pass, ascending, so the highest sits at the front of the feed.
	if _, err := e.SnapshotAll(t0.AddDate(0, 0, 30)); err != nil {
		t.Fatalf("SnapshotAll: %v", err)
	}
	entries := e.FeedSnapshot()
	if len(entries) != 3 {
		t.Fatalf("feed len = %d, want 3 catch-up achievements", len(entries))
	}
	if !strings.Contains(entries[0].Message, "25") || !strings.Contains(entries[2].Message, "5") {
		t.Errorf("entries not ascending: front=%q back=%q", entries[0].Message, entries[2].Message)
	}
	if e.accounts[id].HighestCleanMilestone != 25 {
		t.Errorf("milestone mark = %d, want 25", e.accounts[id].HighestCleanMilestone)
	}
	if store.flushes == flushesBefore {
		t.Error("achievement entries from a snapshot must be persisted")
	}

	// Second pass at the same instant: nothing new fires.
	if _, err := e.SnapshotAll(t0.AddDate(0, 0, 30)); err != nil {
		t.Fatalf("SnapshotAll: %v", err)
	}
	if len(e.FeedSnapshot()) != 3 {
		t.Error("milestones must fire at most once")
	}
}

func TestVirtueStreakMilestoneExactMatch(t *testing.T) {
	e, _ := newTestEngine(t)
	id := signup(t, e, "Alice")
	a := e.accounts[id]
	a.DebtSeconds = 500000
	a.LastUpdate = t0.Unix()
	a.VirtueStreakDays = 9
	a.LastVirtueStreakCheck = t0.AddDate(0, 0, -1).Unix()

	if err := e.CompleteVirtue(id, 1, t0); err != nil {
		t.Fatalf("CompleteVirtue: %v", err)
	}
	if a.VirtueStreakDays != 10 {
		t.Fatalf("streak = %d, want 10", a.VirtueStreakDays)
	}
	entries := e.FeedSnapshot()
	if len(entries) != 2 {
		t.Fatalf("feed len = %d, want achievement + virtue entry", len(entries))
	}
	if entries[1].Kind != domain.KindAchievement || !strings.Contains(entries[1].Message, "10") {
		t.Errorf("achievement entry = %+v", entries[1])
	}

	// Second completion the same day does not advance the streak again.
	a.LastVirtue[1] = 0
	if err := e.CompleteVirtue(id, 2, t0.Add(time.Hour)); err != nil {
		t.Fatalf("CompleteVirtue slot 2: %v", err)
	}
	if a.VirtueStreakDays != 10 {
		t.Errorf("streak = %d, same-day completions must not advance it", a.VirtueStreakDays)
	}
}

// ─── Bail-out ───────────────────────────────────────────────────────────────

func lockAccount(t *testing.T, e *Engine, id string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if err := e.Indulge(id, t0); err != nil {
			t.Fatalf("Indulge %d: %v", i+1, err)
		}
	}
	if !e.accounts[id].Locked {
		t.Fatal("account should be locked")
	}
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := signup(t, e, "Alice")
	bob := signup(t, e, "Bob")
	lockAccount(t, e, alice)

	at := t0.Add(100000 * time.Second)
	if err := e.Reset(alice, bob, at); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	a := e.accounts[alice]
	if a.Locked {
		t.Error("reset should unlock")
	}
	// Debt restarts at base cost minus the 100000s served under the lock.
	if a.DebtSeconds != 864000-100000 {
		t.Errorf("debt = %d, want %d", a.DebtSeconds, 864000-100000)
	}
	if a.Streak != 1 {
		t.Errorf("streak = %d, want 1", a.Streak)
	}
	front, _ := e.feed.Front()
	if front.Kind != domain.KindReset || !strings.Contains(front.Message, "Bob") {
		t.Errorf("entry = %+v, want reset naming the rescuer", front)
	}
}

func TestResetTimeServedExceedsBaseCost(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := signup(t, e, "Alice")
	bob := signup(t, e, "Bob")
	lockAccount(t, e, alice)

	if err := e.Reset(alice, bob, t0.Add(20*24*time.Hour)); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := e.accounts[alice].DebtSeconds; got != 0 {
		t.Errorf("debt = %d, want 0 floor", got)
	}
}

func TestResetRejections(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := signup(t, e, "Alice")
	bob := signup(t, e, "Bob")

	if err := e.Reset(alice, alice, t0); !errors.Is(err, domain.ErrSelfReset) {
		t.Errorf("self reset: err = %v, want ErrSelfReset", err)
	}
	if err := e.Reset(alice, "ghost", t0); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("unknown actor: err = %v, want ErrAccountNotFound", err)
	}
	if err := e.Reset(alice, bob, t0); !errors.Is(err, domain.ErrNotLocked) {
		t.Errorf("unlocked target: err = %v, want ErrNotLocked", err)
	}
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

func TestSnapshotAllOrdersByID(t *testing.T) {
	e, _ := newTestEngine(t)
	signup(t, e, "Zoe")
	signup(t, e, "Alice")
	signup(t, e, "Mia")

	out, err := e.SnapshotAll(t0)
	if err != nil {
		t.Fatalf("SnapshotAll: %v", err)
	}
	if len(out) != 3 || out[0].ID != "alice" || out[1].ID != "mia" || out[2].ID != "zoe" {
		t.Errorf("order = %v", []string{out[0].ID, out[1].ID, out[2].ID})
	}
}

func TestCanUndo(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := signup(t, e, "Alice")
	bob := signup(t, e, "Bob")

	if e.CanUndo(alice, t0) {
		t.Error("empty feed: nothing to undo")
	}
	if err := e.Indulge(alice, t0); err != nil {
		t.Fatalf("Indulge: %v", err)
	}
	if !e.CanUndo(alice, t0.Add(599*time.Second)) {
		t.Error("inside the window: should be undoable")
	}
	if e.CanUndo(alice, t0.Add(600*time.Second)) {
		t.Error("window elapsed: not undoable")
	}
	if e.CanUndo(bob, t0) {
		t.Error("front entry belongs to alice, not bob")
	}
}
