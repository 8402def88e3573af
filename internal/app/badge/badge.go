// Package badge implements the one-time achievement unlocks.
// Badges are threshold detectors over a stats snapshot; once claimed they
// are never revoked and re-checking is a no-op.
package badge

import "sort"

// Snapshot is the stats slice fed to badge predicates.
type Snapshot struct {
	Streak         int
	TasksCompleted int
	CalmPoints     int
	UrgeCount      int
}

// Def defines one badge: an id, display title, unlock message, and the
// stat predicate that earns it.
type Def struct {
	ID        string
	Title     string
	Message   string
	Predicate func(Snapshot) bool
}

// All returns the full badge catalog.
func All() []Def {
	return []Def{
		{
			ID: "first_day", Title: "First Day",
			Message:   "Welcome to ResetDopa! 🌱 Every step counts. Keep going!",
			Predicate: func(Snapshot) bool { return true },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Title: "Momentum",
			Message:   "🔥 3-Day Streak! You're building momentum!",
			Predicate: func(s Snapshot) bool { return s.Streak >= 3 },
		},
		{
			ID: "streak_7", Title: "Week Warrior",
			Message:   "⭐ 7-Day Streak! One full week down!",
			Predicate: func(s Snapshot) bool { return s.Streak >= 7 },
		},
		{
			ID: "streak_30", Title: "Full Reset",
			Message:   "🏆 30-Day Streak! You're a champion!",
			Predicate: func(s Snapshot) bool { return s.Streak >= 30 },
		},
		{
			ID: "streak_90", Title: "Legend",
			Message:   "👑 90-Day Streak! You're a legend!",
			Predicate: func(s Snapshot) bool { return s.Streak >= 90 },
		},

		// ── Tasks ──────────────────────────────────────────────────────
		{
			ID: "tasks_10", Title: "Getting Going",
			Message:   "✅ 10 Tasks Done! You're on fire!",
			Predicate: func(s Snapshot) bool { return s.TasksCompleted >= 10 },
		},
		{
			ID: "tasks_50", Title: "Task Crusher",
			Message:   "💪 50 Tasks Completed! Keep crushing it!",
			Predicate: func(s Snapshot) bool { return s.TasksCompleted >= 50 },
		},
		{
			ID: "tasks_100", Title: "Unstoppable",
			Message:   "🚀 100 Tasks! You're unstoppable!",
			Predicate: func(s Snapshot) bool { return s.TasksCompleted >= 100 },
		},

		// ── Calm Points ────────────────────────────────────────────────
		{
			ID: "calm_100", Title: "Calm Collector",
			Message:   "🌟 100 Calm Points! Peace is power!",
			Predicate: func(s Snapshot) bool { return s.CalmPoints >= 100 },
		},
		{
			ID: "calm_500", Title: "In the Zone",
			Message:   "💎 500 Calm Points! You're in the zone!",
			Predicate: func(s Snapshot) bool { return s.CalmPoints >= 500 },
		},
		{
			ID: "calm_1000", Title: "Peak Serenity",
			Message:   "🎯 1000 Calm Points! Peak serenity achieved!",
			Predicate: func(s Snapshot) bool { return s.CalmPoints >= 1000 },
		},

		// ── Urge Log ───────────────────────────────────────────────────
		{
			ID: "urge_resist_10", Title: "Shield Up",
			Message:   "🛡️ 10 Urges Logged! You're strong!",
			Predicate: func(s Snapshot) bool { return s.UrgeCount >= 10 },
		},
		{
			ID: "urge_resist_50", Title: "Warrior",
			Message:   "⚔️ 50 Urges Logged! You're a warrior!",
			Predicate: func(s Snapshot) bool { return s.UrgeCount >= 50 },
		},
	}
}

// CheckAndClaim evaluates every badge not yet in claimed against the
// snapshot. Returns newly earned badges in catalog order; already-claimed
// ids are skipped (idempotent).
func CheckAndClaim(claimed []string, snap Snapshot) []Def {
	have := make(map[string]bool, len(claimed))
	for _, id := range claimed {
		have[id] = true
	}

	var unlocked []Def
	for _, def := range All() {
		if have[def.ID] {
			continue
		}
		if def.Predicate(snap) {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

// Lookup returns the definition for an id, false if unknown.
func Lookup(id string) (Def, bool) {
	for _, def := range All() {
		if def.ID == id {
			return def, true
		}
	}
	return Def{}, false
}

// IDs returns every defined badge id, sorted.
func IDs() []string {
	defs := All()
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	return ids
}
