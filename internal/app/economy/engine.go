// Package economy implements the debt economy engine: per-account decay,
// indulgence cost, virtue repayment, bankruptcy lock/unlock, achievement
// side effects, and the bounded activity ledger with its time-windowed undo.
//
// Every externally triggered operation follows the same sequence:
//  1. Recompute passive decay on the target account
//  2. Apply the operation's own state change
//  3. Append (or remove) ledger entries
//  4. Flush the full state to the store, synchronously
//
// A single engine mutex is held across that whole sequence, so at most one
// operation runs against the shared account table and ledger at a time.
package economy

import (
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
	"github.com/midulanmathi/reCurrency/internal/infra/observability"
)

// Engine owns the account table and the activity feed. All access goes
// through its methods; none of the state escapes except as copies.
type Engine struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	feed     domain.Feed
	store    domain.Store
}

// New loads the full state from the store and returns a ready engine.
func New(store domain.Store) (*Engine, error) {
	accounts, entries, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	e := &Engine{accounts: accounts, store: store}
	e.feed.Replace(entries)
	observability.Accounts.Set(float64(len(accounts)))
	log.Printf("[economy] loaded %d accounts, %d ledger entries", len(accounts), e.feed.Len())
	return e, nil
}

// ─── Contract Parameters ────────────────────────────────────────────────────

// ContractParams carries the author-defined contract fields for signup and
// edit. Numeric fields must already be folded to the canonical units:
// target interval in days, virtue promises per week.
type ContractParams struct {
	Vice               string
	TargetIntervalDays float64
	Virtue1Name        string
	PromisedV1Weekly   float64
	Virtue2Name        string
	PromisedV2Weekly   float64
}

func (p ContractParams) validate() error {
	for _, v := range []float64{p.TargetIntervalDays, p.PromisedV1Weekly, p.PromisedV2Weekly} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return domain.ErrInvalidContract
		}
	}
	return nil
}

// ─── Account Lifecycle ──────────────────────────────────────────────────────

// Signup creates a new account with all derived fields computed, persists,
// and returns a copy of it. Name collisions are case-insensitive.
func (e *Engine) Signup(name, credential string, params ContractParams, now time.Time) (domain.Account, error) {
	if err := params.validate(); err != nil {
		return domain.Account{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	id := domain.AccountID(name)
	if _, exists := e.accounts[id]; exists {
		return domain.Account{}, domain.ErrDuplicateName
	}
	a := domain.NewAccount(name, credential, params.Vice, params.TargetIntervalDays,
		params.Virtue1Name, params.PromisedV1Weekly, params.Virtue2Name, params.PromisedV2Weekly, now)
	e.accounts[id] = a
	if err := e.flushLocked(); err != nil {
		delete(e.accounts, id)
		return domain.Account{}, err
	}
	observability.Accounts.Set(float64(len(e.accounts)))
	log.Printf("[economy] account %q signed up (base_cost=%ds threshold=%ds)", id, a.BaseCost, a.MaxThreshold)
	return *a, nil
}

// Login checks a credential by equality and returns the account ID.
func (e *Engine) Login(name, credential string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := domain.AccountID(name)
	a, ok := e.accounts[id]
	if !ok || a.Credential != credential {
		return "", domain.ErrBadCredential
	}
	return id, nil
}

// EditContract replaces the contract parameters, optionally rotates the
// credential, and recomputes the derived economy constants. The account's
// debt and ledger are untouched; no ledger entry is produced.
func (e *Engine) EditContract(id string, params ContractParams, newCredential string) error {
	if err := params.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	prev := *a
	if newCredential != "" {
		a.Credential = newCredential
	}
	a.Vice = params.Vice
	a.TargetIntervalDays = params.TargetIntervalDays
	a.Virtue1Name = params.Virtue1Name
	a.PromisedV1Weekly = params.PromisedV1Weekly
	a.Virtue2Name = params.Virtue2Name
	a.PromisedV2Weekly = params.PromisedV2Weekly
	a.Recalculate()
	if err := e.flushLocked(); err != nil {
		*a = prev
		return err
	}
	return nil
}

// DeleteAccount removes an account. Its ledger entries stay in the feed as
// history until eviction.
func (e *Engine) DeleteAccount(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(e.accounts, id)
	if err := e.flushLocked(); err != nil {
		return err
	}
	observability.Accounts.Set(float64(len(e.accounts)))
	log.Printf("[economy] account %q deleted", id)
	return nil
}

// ─── Decay ──────────────────────────────────────────────────────────────────

// applyDecay subtracts elapsed wall-clock time from the debt, floored at
// zero, and runs the clean-streak milestone check. No-op while locked.
// Idempotent for repeated calls with the same now. Time deltas come from
// the wall clock; a clock rollback yields a negative elapsed and therefore
// a debt increase, which is a documented limitation.
func (e *Engine) applyDecay(a *domain.Account, now time.Time) {
	if a.Locked {
		return
	}
	elapsed := now.Unix() - a.LastUpdate
	if a.DebtSeconds > 0 {
		a.DebtSeconds -= elapsed
		if a.DebtSeconds < 0 {
			a.DebtSeconds = 0
		}
	}
	a.LastUpdate = now.Unix()
	e.checkCleanMilestones(a, now)
}

// ─── Economy Operations ─────────────────────────────────────────────────────

// Indulge records one indulgence: adds the (possibly penalized) base cost
// to the debt, resets the achievement streaks, and trips the bankruptcy
// lock when the debt exceeds the threshold (strictly greater).
func (e *Engine) Indulge(id string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	e.applyDecay(a, now)
	if a.Locked {
		return domain.ErrAccountLocked
	}

	cost := a.IndulgenceCost()
	a.DebtSeconds += cost

	a.Streak = 0
	a.LastViceTime = now.Unix()
	a.HighestCleanMilestone = 0
	a.VirtueStreakDays = 0

	msg := fmt.Sprintf("Indulged in %s (+%.1fd)", a.Vice, float64(cost)/float64(domain.DaySeconds))
	e.append(domain.LedgerEntry{
		AccountName:  a.Name,
		Kind:         domain.KindVice,
		Message:      msg,
		Timestamp:    now.Unix(),
		Color:        domain.ColorVice,
		DebtDelta:    cost,
		DebtSnapshot: a.DebtSeconds,
	})
	observability.Indulgences.Inc()

	if a.DebtSeconds > a.MaxThreshold {
		a.Locked = true
		a.LockTime = now.Unix()
		e.append(domain.LedgerEntry{
			AccountName:  a.Name,
			Kind:         domain.KindLocked,
			Message:      "WENT BANKRUPT.",
			Timestamp:    now.Unix(),
			Color:        domain.ColorLocked,
			DebtSnapshot: a.DebtSeconds,
		})
		observability.Bankruptcies.Inc()
		log.Printf("[economy] account %q went bankrupt (debt=%ds threshold=%ds)", id, a.DebtSeconds, a.MaxThreshold)
	}
	return e.flushLocked()
}

// CompleteVirtue records one completion of the given virtue slot (1 or 2).
// Rejected while locked or while the slot's 20-hour cooldown is running.
// The first completion of a new calendar day advances the virtue streak
// and may fire a streak milestone.
func (e *Engine) CompleteVirtue(id string, slot int, now time.Time) error {
	if slot != 1 && slot != 2 {
		return fmt.Errorf("virtue slot must be 1 or 2, got %d", slot)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	e.applyDecay(a, now)
	if a.Locked {
		return domain.ErrAccountLocked
	}
	if now.Unix()-a.LastVirtue[slot-1] < domain.VirtueCooldown {
		return domain.ErrCooldownActive
	}

	if !sameCalendarDay(now, time.Unix(a.LastVirtueStreakCheck, 0)) {
		a.VirtueStreakDays++
		a.LastVirtueStreakCheck = now.Unix()
		e.checkVirtueStreakMilestones(a, now)
	}

	removed := a.DebtSeconds
	if removed > domain.VirtueReward {
		removed = domain.VirtueReward
	}
	a.DebtSeconds -= removed
	a.LastVirtue[slot-1] = now.Unix()

	name, color := a.Virtue1Name, domain.ColorVirtue1
	if slot == 2 {
		name, color = a.Virtue2Name, domain.ColorVirtue2
	}
	e.append(domain.LedgerEntry{
		AccountName:  a.Name,
		Kind:         domain.VirtueKind(slot),
		Message:      fmt.Sprintf("Completed: %s (-1d)", name),
		Timestamp:    now.Unix(),
		Color:        color,
		DebtDelta:    -removed,
		DebtSnapshot: a.DebtSeconds,
	})
	observability.VirtueCompletions.WithLabelValues(fmt.Sprint(slot)).Inc()
	return e.flushLocked()
}

// Reset bails out a locked account. The debt restarts at the base cost
// minus the time already served under the lock, floored at zero. The actor
// must be a different, existing account; that identity check belongs to
// the session layer but is re-asserted here.
func (e *Engine) Reset(targetID, actorID string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if targetID == actorID {
		return domain.ErrSelfReset
	}
	a, ok := e.accounts[targetID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	actor, ok := e.accounts[actorID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	e.applyDecay(a, now)
	if !a.Locked {
		return domain.ErrNotLocked
	}

	timeServed := now.Unix() - a.LockTime
	a.DebtSeconds = a.BaseCost - timeServed
	if a.DebtSeconds < 0 {
		a.DebtSeconds = 0
	}
	a.Locked = false
	a.LastUpdate = now.Unix()
	a.Streak++

	e.append(domain.LedgerEntry{
		AccountName:  a.Name,
		Kind:         domain.KindReset,
		Message:      fmt.Sprintf("Bailed out by %s.", actor.Name),
		Timestamp:    now.Unix(),
		Color:        domain.ColorReset,
		DebtSnapshot: a.DebtSeconds,
	})
	observability.BailOuts.Inc()
	log.Printf("[economy] account %q bailed out by %q (debt=%ds)", targetID, actorID, a.DebtSeconds)
	return e.flushLocked()
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

// Account returns a decayed copy of one account. The decay recomputation
// may fire clean-streak milestones, in which case the state is persisted.
func (e *Engine) Account(id string, now time.Time) (domain.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	before := e.feed.Len()
	e.applyDecay(a, now)
	if e.feed.Len() != before {
		if err := e.flushLocked(); err != nil {
			return domain.Account{}, err
		}
	}
	return *a, nil
}

// SnapshotAll returns decayed copies of every account, ordered by ID, for
// display. Persists only if the decay pass fired achievement entries.
func (e *Engine) SnapshotAll(now time.Time) ([]domain.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.feed.Len()
	out := make([]domain.Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		e.applyDecay(a, now)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if e.feed.Len() != before {
		if err := e.flushLocked(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FeedSnapshot returns a copy of the activity feed, newest first.
func (e *Engine) FeedSnapshot() []domain.LedgerEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feed.Entries()
}

// CanUndo reports whether the account's most recent economic feed entry is
// still inside the undo window. Achievement records are skipped, mirroring
// Undo's target selection. Used to decide whether to show the undo link.
func (e *Engine) CanUndo(id string, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.accounts[id]
	if !ok {
		return false
	}
	for i := 0; i < e.feed.Len(); i++ {
		entry, _ := e.feed.At(i)
		if entry.Kind == domain.KindAchievement {
			continue
		}
		return entry.AccountName == a.Name && now.Unix()-entry.Timestamp < domain.UndoWindowSeconds
	}
	return false
}

// ─── Internals ──────────────────────────────────────────────────────────────

// append inserts a ledger entry at the front of the feed, evicting the
// oldest when the feed is full. Callers flush afterwards.
func (e *Engine) append(entry domain.LedgerEntry) {
	e.feed.Push(entry)
}

func (e *Engine) flushLocked() error {
	if err := e.store.Flush(e.accounts, e.feed.Entries()); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// sameCalendarDay compares two instants by local calendar day, the anchor
// granularity used for the virtue streak.
func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
