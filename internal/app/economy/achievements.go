package economy

import (
	"fmt"
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
	"github.com/midulanmathi/reCurrency/internal/infra/observability"
)

// ─── Achievement Tracker ────────────────────────────────────────────────────
// Milestones are derived, never stored as their own entities: the clean
// streak comes from the time since the last indulgence, the virtue streak
// from the consecutive-day counter. Each milestone fires one achievement
// ledger entry with no debt effect.
//
// The two milestone families intentionally differ: clean milestones use
// threshold-and-catch-up semantics (a long gap between decay runs fires
// every missed milestone at once, in ascending order), while virtue-streak
// milestones fire only on an exact day-count match.

// cleanMilestones are days since the last indulgence, ascending.
var cleanMilestones = [...]int{5, 10, 25, 50, 100, 200, 300}

// virtueStreakMilestones are consecutive calendar days with at least one
// virtue completion.
var virtueStreakMilestones = [...]int{10, 25, 50, 100}

// checkCleanMilestones fires every clean-streak milestone reached but not
// yet recorded, raising the high-water mark as it goes. Invoked from every
// decay recomputation; caller holds the engine lock and flushes.
func (e *Engine) checkCleanMilestones(a *domain.Account, now time.Time) {
	daysClean := float64(now.Unix()-a.LastViceTime) / float64(domain.DaySeconds)
	for _, m := range cleanMilestones {
		if daysClean >= float64(m) && a.HighestCleanMilestone < m {
			a.HighestCleanMilestone = m
			e.append(domain.LedgerEntry{
				AccountName:  a.Name,
				Kind:         domain.KindAchievement,
				Message:      fmt.Sprintf("🏆 ACHIEVEMENT: Clean for %d days!", m),
				Timestamp:    now.Unix(),
				Color:        domain.ColorAchievement,
				DebtSnapshot: a.DebtSeconds,
			})
			observability.Achievements.Inc()
		}
	}
}

// checkVirtueStreakMilestones fires when the streak counter lands exactly
// on a milestone value. Invoked only on the day-transition inside
// CompleteVirtue; caller holds the engine lock and flushes.
func (e *Engine) checkVirtueStreakMilestones(a *domain.Account, now time.Time) {
	for _, m := range virtueStreakMilestones {
		if a.VirtueStreakDays == m {
			e.append(domain.LedgerEntry{
				AccountName:  a.Name,
				Kind:         domain.KindAchievement,
				Message:      fmt.Sprintf("🔥 STREAK: %d days of virtues!", m),
				Timestamp:    now.Unix(),
				Color:        domain.ColorAchievement,
				DebtSnapshot: a.DebtSeconds,
			})
			observability.Achievements.Inc()
		}
	}
}
