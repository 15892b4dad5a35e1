// Package domain contains the pure business types of the debt economy —
// accounts, contract math, and the activity ledger. It has zero
// infrastructure imports; everything here is plain data and arithmetic.
package domain

import (
	"math"
	"strings"
	"time"
)

// ─── Economy Constants ──────────────────────────────────────────────────────

const (
	// DaySeconds is one day of debt, the unit everything else derives from.
	DaySeconds int64 = 86400

	// HalfDaySeconds is the quantization step for base cost so that debt
	// timers land on clean half-day boundaries.
	HalfDaySeconds int64 = 43200

	// VirtueReward is the maximum debt relief for one virtue completion.
	VirtueReward int64 = DaySeconds

	// VirtueCooldown is the per-slot minimum gap between completions.
	// 20 hours rather than 24 so a "daily" virtue can drift earlier
	// from day to day without being rejected.
	VirtueCooldown int64 = 72000

	// UndoWindowSeconds is how long a ledger entry stays undoable.
	UndoWindowSeconds int64 = 600

	// PenaltyMultiplier applies when indulging while already in debt.
	PenaltyMultiplier = 1.5

	// ThresholdMultiplier sets the bankruptcy line relative to base cost.
	ThresholdMultiplier = 2.5
)

// ─── Account ────────────────────────────────────────────────────────────────

// Account is one participant in the economy: a contract (vice, two virtues,
// promised frequencies), the derived cost constants, and the mutable debt
// and achievement state. All durations and timestamps are Unix seconds.
type Account struct {
	// Identity. ID is the lower-cased name and immutable after signup.
	ID         string `json:"-"`
	Name       string `json:"name"`
	Credential string `json:"password"`

	// Contract parameters, mutable via EditContract.
	Vice               string  `json:"vice"`
	TargetIntervalDays float64 `json:"target_interval_days"`
	Virtue1Name        string  `json:"virtue1_name"`
	PromisedV1Weekly   float64 `json:"promised_v1_weekly"`
	Virtue2Name        string  `json:"virtue2_name"`
	PromisedV2Weekly   float64 `json:"promised_v2_weekly"`

	// Derived economy constants, recomputed whenever the contract changes.
	BaseCost     int64 `json:"base_cost"`
	MaxThreshold int64 `json:"max_threshold"`

	// Ledger state.
	DebtSeconds int64 `json:"debt_seconds"`
	LastUpdate  int64 `json:"last_update"`
	LastVirtue  [2]int64
	LockTime    int64 `json:"lock_time"`
	Locked      bool  `json:"locked"`

	// Streak is the count of bankruptcy bail-outs survived.
	Streak int `json:"streak"`

	// Achievement state.
	LastViceTime          int64 `json:"last_vice"`
	HighestCleanMilestone int   `json:"clean_milestone"`
	VirtueStreakDays      int   `json:"v_streak"`
	LastVirtueStreakCheck int64 `json:"last_v_check"`
}

// AccountID normalizes a display name into the immutable account key.
func AccountID(name string) string {
	return strings.ToLower(name)
}

// NewAccount creates a signed-up account with all derived fields computed.
func NewAccount(name, credential, vice string, targetIntervalDays float64, v1Name string, promisedV1Weekly float64, v2Name string, promisedV2Weekly float64, now time.Time) *Account {
	a := &Account{
		ID:                 AccountID(name),
		Name:               name,
		Credential:         credential,
		Vice:               vice,
		TargetIntervalDays: targetIntervalDays,
		Virtue1Name:        v1Name,
		PromisedV1Weekly:   promisedV1Weekly,
		Virtue2Name:        v2Name,
		PromisedV2Weekly:   promisedV2Weekly,
		LastUpdate:         now.Unix(),
		LastViceTime:       now.Unix(),
	}
	a.Recalculate()
	return a
}

// Recalculate refreshes BaseCost and MaxThreshold from the current contract
// parameters. Must be called after signup and after every contract edit.
func (a *Account) Recalculate() {
	a.BaseCost, a.MaxThreshold = DeriveEconomy(a.TargetIntervalDays, a.PromisedV1Weekly, a.PromisedV2Weekly)
}

// IndulgenceCost returns what the next indulgence would add to the debt:
// the plain base cost when clean, penalized 50% when already in debt.
func (a *Account) IndulgenceCost() int64 {
	if a.DebtSeconds > 0 {
		return int64(math.Round(float64(a.BaseCost) * PenaltyMultiplier))
	}
	return a.BaseCost
}

// ─── Economy Math ───────────────────────────────────────────────────────────

// DeriveEconomy computes the cost constants for a contract.
//
// The base cost blends how long the vice should naturally take to decay
// (targetIntervalDays) with the virtue-repayment capacity the contract
// promises over that interval (one completion is worth a full day of
// relief), quantized to half-day blocks so timers read cleanly and floored
// at the natural decay. The bankruptcy threshold sits 2.5× above it,
// giving slack beyond one full debt cycle before the lock trips.
func DeriveEconomy(targetIntervalDays, promisedWeeklyV1, promisedWeeklyV2 float64) (baseCost, maxThreshold int64) {
	naturalDecay := int64(math.Round(targetIntervalDays * float64(DaySeconds)))
	weeksInInterval := targetIntervalDays / 7.0
	workCapacity := weeksInInterval * (promisedWeeklyV1 + promisedWeeklyV2) * float64(VirtueReward)
	rawTotal := float64(naturalDecay) + workCapacity

	blocks := int64(math.Round(rawTotal / float64(HalfDaySeconds)))
	baseCost = blocks * HalfDaySeconds
	if baseCost < naturalDecay {
		baseCost = naturalDecay
	}
	maxThreshold = int64(math.Round(float64(baseCost) * ThresholdMultiplier))
	return baseCost, maxThreshold
}
