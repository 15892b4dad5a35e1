// Package observability exposes Prometheus metrics for the debt economy.
// Counters cover the economy operations; the accounts gauge tracks the
// size of the account table. All collectors register on the default
// registry via promauto and are served on /metrics when enabled.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recurrency"

var (
	// Indulgences counts recorded vice events.
	Indulgences = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "indulgences_total",
		Help:      "Number of indulgences recorded.",
	})

	// VirtueCompletions counts virtue completions per slot.
	VirtueCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "virtue_completions_total",
		Help:      "Number of virtue completions, by slot.",
	}, []string{"slot"})

	// Bankruptcies counts lock transitions.
	Bankruptcies = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bankruptcies_total",
		Help:      "Number of accounts that crossed the debt threshold.",
	})

	// BailOuts counts peer-triggered resets of locked accounts.
	BailOuts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bail_outs_total",
		Help:      "Number of bankruptcy bail-outs.",
	})

	// Undos counts successful ledger undo operations.
	Undos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "undos_total",
		Help:      "Number of successful undo operations.",
	})

	// Achievements counts milestone ledger entries.
	Achievements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "achievements_total",
		Help:      "Number of achievement entries emitted.",
	})

	// Accounts tracks the current number of accounts.
	Accounts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "accounts",
		Help:      "Current number of accounts.",
	})
)
