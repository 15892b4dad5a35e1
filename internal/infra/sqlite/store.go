// Package sqlite implements the persistence adapter on an embedded SQLite
// database (modernc.org/sqlite, no cgo). The engine treats it as two
// lifecycle hooks: load everything once at startup, flush everything after
// each mutation. Flush rewrites both tables inside one transaction, so the
// durable state is all-or-nothing from the engine's point of view.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/midulanmathi/reCurrency/internal/domain"
)

// Store is the SQLite-backed implementation of domain.Store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The engine serializes all access; a single connection avoids
	// SQLITE_BUSY on concurrent readers of the same file handle.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// migrations returns the schema statements. Column defaults mirror the
// documented fallbacks for records written by older versions: 7-day target
// interval, 3/5 weekly promises, 10-day base cost, 25-day threshold.
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id                    TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			credential            TEXT NOT NULL,
			vice                  TEXT NOT NULL DEFAULT 'Vice',
			target_interval_days  REAL NOT NULL DEFAULT 7.0,
			virtue1_name          TEXT NOT NULL DEFAULT 'Virtue 1',
			promised_v1_weekly    REAL NOT NULL DEFAULT 3.0,
			virtue2_name          TEXT NOT NULL DEFAULT 'Virtue 2',
			promised_v2_weekly    REAL NOT NULL DEFAULT 5.0,
			base_cost             INTEGER NOT NULL DEFAULT 864000,
			max_threshold         INTEGER NOT NULL DEFAULT 2160000,
			debt_seconds          INTEGER NOT NULL DEFAULT 0,
			last_update           INTEGER NOT NULL DEFAULT 0,
			last_virtue1          INTEGER NOT NULL DEFAULT 0,
			last_virtue2          INTEGER NOT NULL DEFAULT 0,
			lock_time             INTEGER NOT NULL DEFAULT 0,
			locked                INTEGER NOT NULL DEFAULT 0,
			streak                INTEGER NOT NULL DEFAULT 0,
			last_vice             INTEGER NOT NULL DEFAULT 0,
			clean_milestone       INTEGER NOT NULL DEFAULT 0,
			virtue_streak_days    INTEGER NOT NULL DEFAULT 0,
			last_virtue_day_check INTEGER NOT NULL DEFAULT 0
		)`,

		// Activity feed, position 0 = newest. Rewritten wholesale on
		// every flush, capped at the feed capacity.
		`CREATE TABLE IF NOT EXISTS activity_log (
			position      INTEGER PRIMARY KEY,
			account_name  TEXT NOT NULL,
			kind          TEXT NOT NULL,
			message       TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			color         TEXT NOT NULL DEFAULT '',
			debt_delta    INTEGER NOT NULL DEFAULT 0,
			debt_snapshot INTEGER NOT NULL DEFAULT 0
		)`,
	}
}

func (s *Store) migrate() error {
	for _, stmt := range migrations() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// ─── Load ───────────────────────────────────────────────────────────────────

// Load reads the full account table and activity feed. Zero-valued fields
// from older schema versions fall back to their documented defaults.
func (s *Store) Load() (map[string]*domain.Account, []domain.LedgerEntry, error) {
	accounts := make(map[string]*domain.Account)

	rows, err := s.db.Query(`
		SELECT id, name, credential, vice, target_interval_days,
		       virtue1_name, promised_v1_weekly, virtue2_name, promised_v2_weekly,
		       base_cost, max_threshold, debt_seconds, last_update,
		       last_virtue1, last_virtue2, lock_time, locked, streak,
		       last_vice, clean_milestone, virtue_streak_days, last_virtue_day_check
		FROM accounts
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	now := time.Now().Unix()
	for rows.Next() {
		var a domain.Account
		var locked int
		if err := rows.Scan(&a.ID, &a.Name, &a.Credential, &a.Vice, &a.TargetIntervalDays,
			&a.Virtue1Name, &a.PromisedV1Weekly, &a.Virtue2Name, &a.PromisedV2Weekly,
			&a.BaseCost, &a.MaxThreshold, &a.DebtSeconds, &a.LastUpdate,
			&a.LastVirtue[0], &a.LastVirtue[1], &a.LockTime, &locked, &a.Streak,
			&a.LastViceTime, &a.HighestCleanMilestone, &a.VirtueStreakDays, &a.LastVirtueStreakCheck); err != nil {
			return nil, nil, fmt.Errorf("scan account: %w", err)
		}
		a.Locked = locked == 1
		if a.TargetIntervalDays <= 0 {
			a.TargetIntervalDays = 7.0
		}
		if a.PromisedV1Weekly <= 0 {
			a.PromisedV1Weekly = 3.0
		}
		if a.PromisedV2Weekly <= 0 {
			a.PromisedV2Weekly = 5.0
		}
		if a.BaseCost <= 0 {
			a.BaseCost = 10 * domain.DaySeconds
		}
		if a.MaxThreshold <= 0 {
			a.MaxThreshold = 25 * domain.DaySeconds
		}
		if a.LastViceTime == 0 {
			a.LastViceTime = now
		}
		accounts[a.ID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}

	feed, err := s.loadFeed()
	if err != nil {
		return nil, nil, err
	}
	return accounts, feed, nil
}

func (s *Store) loadFeed() ([]domain.LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT account_name, kind, message, timestamp, color, debt_delta, debt_snapshot
		FROM activity_log ORDER BY position LIMIT ?
	`, domain.FeedCapacity)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	defer rows.Close()

	var feed []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var kind string
		if err := rows.Scan(&e.AccountName, &kind, &e.Message, &e.Timestamp, &e.Color, &e.DebtDelta, &e.DebtSnapshot); err != nil {
			return nil, fmt.Errorf("scan feed entry: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		feed = append(feed, e)
	}
	return feed, rows.Err()
}

// ─── Flush ──────────────────────────────────────────────────────────────────

// Flush rewrites both tables in one transaction.
func (s *Store) Flush(accounts map[string]*domain.Account, feed []domain.LedgerEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin flush: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM activity_log`); err != nil {
		return fmt.Errorf("clear feed: %w", err)
	}

	for _, a := range accounts {
		locked := 0
		if a.Locked {
			locked = 1
		}
		if _, err := tx.Exec(`
			INSERT INTO accounts (id, name, credential, vice, target_interval_days,
				virtue1_name, promised_v1_weekly, virtue2_name, promised_v2_weekly,
				base_cost, max_threshold, debt_seconds, last_update,
				last_virtue1, last_virtue2, lock_time, locked, streak,
				last_vice, clean_milestone, virtue_streak_days, last_virtue_day_check)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.Name, a.Credential, a.Vice, a.TargetIntervalDays,
			a.Virtue1Name, a.PromisedV1Weekly, a.Virtue2Name, a.PromisedV2Weekly,
			a.BaseCost, a.MaxThreshold, a.DebtSeconds, a.LastUpdate,
			a.LastVirtue[0], a.LastVirtue[1], a.LockTime, locked, a.Streak,
			a.LastViceTime, a.HighestCleanMilestone, a.VirtueStreakDays, a.LastVirtueStreakCheck); err != nil {
			return fmt.Errorf("write account %s: %w", a.ID, err)
		}
	}

	for i, e := range feed {
		if i >= domain.FeedCapacity {
			break
		}
		if _, err := tx.Exec(`
			INSERT INTO activity_log (position, account_name, kind, message, timestamp, color, debt_delta, debt_snapshot)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, i, e.AccountName, string(e.Kind), e.Message, e.Timestamp, e.Color, e.DebtDelta, e.DebtSnapshot); err != nil {
			return fmt.Errorf("write feed entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flush: %w", err)
	}
	return nil
}
