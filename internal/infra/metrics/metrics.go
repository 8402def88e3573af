// Package metrics exposes Prometheus instrumentation for the ResetDopa engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resetdopa"

var (
	// StreakAdvances counts streak day advances, labeled by evaluation path.
	StreakAdvances = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streak_advances_total",
		Help:      "Streak day advances by evaluation path (same_day or rollover).",
	}, []string{"path"})

	// StreakResets counts hard streak resets.
	StreakResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streak_resets_total",
		Help:      "Hard streak resets from low adherence.",
	})

	// GraceDaysApplied counts grace day applications.
	GraceDaysApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grace_days_applied_total",
		Help:      "Grace days consumed to protect a streak.",
	})

	// TaskCompletions counts task completion toggles.
	TaskCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_completions_total",
		Help:      "Tasks marked complete.",
	})

	// UrgesLogged counts urge log entries, labeled by outcome.
	UrgesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "urges_logged_total",
		Help:      "Urge entries logged, by recorded outcome.",
	}, []string{"outcome"})

	// BadgesUnlocked counts badge unlocks.
	BadgesUnlocked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "badges_unlocked_total",
		Help:      "Badges newly unlocked.",
	})

	// StateWrites counts persisted state batches.
	StateWrites = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_writes_total",
		Help:      "State batches written to storage.",
	})

	// StateWriteRetries counts batches that needed a retry.
	StateWriteRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_write_retries_total",
		Help:      "State batches retried after a write failure.",
	})

	// StateWriteFailures counts batches dropped after the retry also failed.
	StateWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_write_failures_total",
		Help:      "State batches dropped after exhausting retries.",
	})

	// StateBatchFields tracks fields per coalesced batch.
	StateBatchFields = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "state_batch_fields",
		Help:      "Number of fields per coalesced state batch.",
		Buckets:   []float64{1, 2, 4, 8, 16, 24},
	})

	// CurrentStreak reports the current streak length.
	CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_streak_days",
		Help:      "Current streak length in days.",
	})

	// CalmPoints reports the accumulated calm points total.
	CalmPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calm_points",
		Help:      "Accumulated calm points.",
	})

	// ProgramDay reports the current program day.
	ProgramDay = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "program_day",
		Help:      "Current program day number.",
	})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
