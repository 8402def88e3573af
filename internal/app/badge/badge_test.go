package badge_test

import (
	"testing"

	"github.com/resetdopa/engine/internal/app/badge"
)

func ids(defs []badge.Def) map[string]bool {
	out := map[string]bool{}
	for _, d := range defs {
		out[d.ID] = true
	}
	return out
}

func TestCheckAndClaim_FirstDayAlways(t *testing.T) {
	unlocked := badge.CheckAndClaim(nil, badge.Snapshot{})
	if !ids(unlocked)["first_day"] {
		t.Error("first_day should unlock on the very first check")
	}
}

func TestCheckAndClaim_Thresholds(t *testing.T) {
	snap := badge.Snapshot{Streak: 7, TasksCompleted: 52, CalmPoints: 120, UrgeCount: 10}
	got := ids(badge.CheckAndClaim(nil, snap))

	for _, want := range []string{"first_day", "streak_3", "streak_7", "tasks_10", "tasks_50", "calm_100", "urge_resist_10"} {
		if !got[want] {
			t.Errorf("expected %s unlocked", want)
		}
	}
	for _, not := range []string{"streak_30", "tasks_100", "calm_500", "urge_resist_50"} {
		if got[not] {
			t.Errorf("%s should not unlock yet", not)
		}
	}
}

func TestCheckAndClaim_Idempotent(t *testing.T) {
	snap := badge.Snapshot{Streak: 3}
	first := badge.CheckAndClaim(nil, snap)

	claimed := make([]string, 0, len(first))
	for _, d := range first {
		claimed = append(claimed, d.ID)
	}

	second := badge.CheckAndClaim(claimed, snap)
	if len(second) != 0 {
		t.Errorf("re-check with same snapshot should unlock nothing, got %d", len(second))
	}
}

func TestCheckAndClaim_OnlyNewCrossings(t *testing.T) {
	// streak_3 already claimed; reaching 7 adds only streak_7.
	unlocked := badge.CheckAndClaim([]string{"first_day", "streak_3"}, badge.Snapshot{Streak: 7})
	got := ids(unlocked)
	if !got["streak_7"] {
		t.Error("expected streak_7")
	}
	if got["streak_3"] || got["first_day"] {
		t.Error("claimed badges must not re-unlock")
	}
}

func TestLookup(t *testing.T) {
	def, ok := badge.Lookup("calm_500")
	if !ok {
		t.Fatal("calm_500 should exist")
	}
	if def.Message == "" || def.Title == "" {
		t.Error("badge missing display text")
	}
	if _, ok := badge.Lookup("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestAll_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range badge.All() {
		if seen[d.ID] {
			t.Errorf("duplicate badge id %s", d.ID)
		}
		seen[d.ID] = true
		if d.Predicate == nil {
			t.Errorf("badge %s has no predicate", d.ID)
		}
	}
	if len(badge.IDs()) != len(badge.All()) {
		t.Error("IDs() length mismatch")
	}
}
