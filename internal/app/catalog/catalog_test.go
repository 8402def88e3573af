package catalog_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/resetdopa/engine/internal/app/catalog"
	"github.com/resetdopa/engine/internal/domain"
)

func titles(picks []domain.TaskPick) []string {
	out := make([]string, len(picks))
	for i, p := range picks {
		out[i] = p.Title
	}
	return out
}

func TestCanonical_Aliases(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Clean a small area", "Clean area"},
		{"Clean small area", "Clean area"},
		{"5 min yoga", "5 min stretching"},
		{`Ask "What am I avoiding?"`, `Ask "What avoiding?"`},
		{"Review full week", "Journal week review"},
		{"No-phone block 2 hours", "2-hour no-phone"},
		{"10 min sunlight", "10 min sunlight"}, // already canonical
	}
	for _, tt := range tests {
		if got := catalog.Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPoints_ByFriction(t *testing.T) {
	if p := catalog.Points("Make bed"); p != 5 {
		t.Errorf("low friction expected 5 points, got %d", p)
	}
	if p := catalog.Points("Read 10 pages"); p != 7 {
		t.Errorf("med friction expected 7 points, got %d", p)
	}
	if p := catalog.Points("2-hour no-phone"); p != 10 {
		t.Errorf("high friction expected 10 points, got %d", p)
	}
	// Alias resolves before lookup
	if p := catalog.Points("No-phone block 2 hours"); p != 10 {
		t.Errorf("aliased high friction expected 10 points, got %d", p)
	}
}

func TestPool_AllCanonicalWithMetadata(t *testing.T) {
	for _, title := range catalog.Pool {
		if c := catalog.Canonical(title); c != title {
			t.Errorf("pool title %q is not canonical (resolves to %q)", title, c)
		}
		if catalog.CategoryOf(title) == "" {
			t.Errorf("pool title %q has no category", title)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := catalog.Generate(9, nil, 0.7, nil)
	b := catalog.Generate(9, nil, 0.7, nil)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same day must reproduce the same list:\n%v\n%v", titles(a), titles(b))
	}

	c := catalog.Generate(10, nil, 0.7, nil)
	if reflect.DeepEqual(titles(a), titles(c)) {
		t.Error("different days should order candidates differently")
	}
}

func TestGenerate_TargetRamp(t *testing.T) {
	tests := []struct {
		day       int
		adherence float64
		want      int
	}{
		{8, 0.7, 8},
		{14, 0.7, 9},
		{15, 0.7, 10},
		{22, 0.7, 10},
		{9, 0.3, 6},  // 8 - 2 under low adherence
		{16, 0.3, 8}, // 10 - 2
	}
	for _, tt := range tests {
		got := catalog.Generate(tt.day, nil, tt.adherence, nil)
		if len(got) != tt.want {
			t.Errorf("day %d adherence %.1f: expected %d tasks, got %d", tt.day, tt.adherence, tt.want, len(got))
		}
	}
}

func TestGenerate_HighFrictionGated(t *testing.T) {
	low := catalog.Generate(10, nil, 0.5, nil)
	for _, p := range low {
		if catalog.IsHighFriction(p.Title) {
			t.Errorf("high-friction task %q offered below adherence gate", p.Title)
		}
	}

	// Week 1 never gets high friction, even at perfect adherence.
	week1 := catalog.Generate(5, nil, 1.0, nil)
	for _, p := range week1 {
		if catalog.IsHighFriction(p.Title) {
			t.Errorf("high-friction task %q offered during week 1", p.Title)
		}
	}
}

func TestGenerate_RecencyExclusion(t *testing.T) {
	yesterday := catalog.Generate(9, nil, 0.7, nil)
	today := catalog.Generate(10, nil, 0.7, titles(yesterday))

	seen := map[string]bool{}
	for _, title := range titles(yesterday) {
		seen[catalog.Canonical(title)] = true
	}
	for _, p := range today {
		if seen[catalog.Canonical(p.Title)] {
			t.Errorf("task %q repeated from the prior day", p.Title)
		}
	}
}

func TestGenerate_RecencyAcceptsAliases(t *testing.T) {
	// Recent list uses a variant spelling; the canonical pool title must
	// still be excluded.
	got := catalog.Generate(12, nil, 0.7, []string{"Clean a small area"})
	for _, p := range got {
		if catalog.Canonical(p.Title) == "Clean area" {
			t.Error("aliased recent title not excluded")
		}
	}
}

func TestGenerate_AnchorsLeadWeek1(t *testing.T) {
	anchors := []string{"10 min sunlight", "Make bed", "Meditation 5 min", "10-15 min walk", "Read 10 pages"}
	got := catalog.Generate(3, anchors, 0, nil)
	if len(got) < 5 {
		t.Fatalf("expected at least 5 tasks, got %d", len(got))
	}
	for i, want := range anchors {
		if got[i].Title != catalog.Canonical(want) {
			t.Errorf("position %d: expected anchor %q, got %q", i, want, got[i].Title)
		}
	}
}

func TestGenerate_NoDuplicates(t *testing.T) {
	for day := 1; day <= 30; day++ {
		got := catalog.Generate(day, nil, 0.9, nil)
		seen := map[string]bool{}
		for _, p := range got {
			c := catalog.Canonical(p.Title)
			if seen[c] {
				t.Errorf("day %d: duplicate task %q", day, p.Title)
			}
			seen[c] = true
		}
	}
}

func TestGenerate_MilestoneExtras(t *testing.T) {
	got := catalog.Generate(7, nil, 0.7, nil)
	want := map[string]bool{
		catalog.Canonical("Celebrate 7-day streak"): false,
		catalog.Canonical("Set week 2 intentions"):  false,
		catalog.Canonical("Review full week"):       false,
	}
	for _, p := range got {
		if _, ok := want[catalog.Canonical(p.Title)]; ok {
			want[catalog.Canonical(p.Title)] = true
		}
	}
	for title, found := range want {
		if !found {
			t.Errorf("day 7 missing milestone extra %q", title)
		}
	}

	// Extras ride on top of the target count.
	plain := catalog.Generate(9, nil, 0.7, nil)
	if len(got) <= len(plain) {
		t.Errorf("milestone day should exceed plain target: %d vs %d", len(got), len(plain))
	}
}

func TestGenerate_DomainDiversity(t *testing.T) {
	got := catalog.Generate(10, nil, 0.7, nil)
	domains := map[string]bool{}
	for _, p := range got {
		domains[catalog.DomainOf(p.Title)] = true
	}
	if len(domains) < 5 {
		t.Errorf("expected at least 5 distinct domains, got %d", len(domains))
	}
}

func TestRotationExtra(t *testing.T) {
	// Day 1 rotates physical.
	title, ok := catalog.RotationExtra(1, map[string]bool{})
	if !ok {
		t.Fatal("expected a rotation pick for day 1")
	}
	if catalog.DomainOf(title) != catalog.DomainPhysical {
		t.Errorf("day 1 rotation expected physical, got %s (%s)", catalog.DomainOf(title), title)
	}

	// Used titles are skipped.
	next, ok := catalog.RotationExtra(1, map[string]bool{catalog.Canonical(title): true})
	if !ok {
		t.Fatal("expected an alternative pick")
	}
	if next == title {
		t.Error("used rotation title repeated")
	}

	if _, ok := catalog.RotationExtra(8, map[string]bool{}); ok {
		t.Error("rotation must not apply past day 7")
	}
}

func TestMaintenanceRotation_Cycles(t *testing.T) {
	a := catalog.MaintenanceRotation(31)
	b := catalog.MaintenanceRotation(32)
	c := catalog.MaintenanceRotation(34) // wraps back to the first list
	if reflect.DeepEqual(a, b) {
		t.Error("consecutive maintenance days should rotate lists")
	}
	if !reflect.DeepEqual(a, c) {
		t.Error("rotation should cycle with period 3")
	}
}

func TestRecommend_EmotionSteering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	urges := []domain.UrgeEntry{
		{Emotion: "lonely", Intensity: 3, Timestamp: now.AddDate(0, 0, -1)},
		{Emotion: "lonely", Intensity: 3, Timestamp: now.AddDate(0, 0, -2)},
	}
	got := catalog.Recommend(urges, 10, now, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(got))
	}
	if catalog.DomainOf(got[0].Title) != catalog.DomainSocial {
		t.Errorf("lonely urges should surface social tasks first, got %q", got[0].Title)
	}
}

func TestRecommend_LowStreakPrefersLowFriction(t *testing.T) {
	now := time.Now()
	got := catalog.Recommend(nil, 1, now, 3)
	for _, p := range got {
		if catalog.IsHighFriction(p.Title) {
			t.Errorf("low streak recommendation includes high-friction %q", p.Title)
		}
	}
}

func TestDailyQuest_Ladder(t *testing.T) {
	if q := catalog.DailyQuest(0.9, ""); q != "25-min Pomodoro x2" {
		t.Errorf("high adherence quest: got %q", q)
	}
	if q := catalog.DailyQuest(0.6, ""); q != "25-min Pomodoro" {
		t.Errorf("mid adherence quest: got %q", q)
	}
	if q := catalog.DailyQuest(0.2, ""); q != "Drink water first thing" {
		t.Errorf("low adherence quest: got %q", q)
	}
	if q := catalog.DailyQuest(0.9, "stress"); q != "Breathwork 5 min" {
		t.Errorf("stress override: got %q", q)
	}
	if q := catalog.DailyQuest(0.2, "lonely"); q != "Call friend/family" {
		t.Errorf("lonely override: got %q", q)
	}
}

func TestTopEmotion(t *testing.T) {
	now := time.Now()
	urges := []domain.UrgeEntry{
		{Emotion: "stress", Timestamp: now.Add(-1 * time.Hour)},
		{Emotion: "stress", Timestamp: now.Add(-2 * time.Hour)},
		{Emotion: "boredom", Timestamp: now.Add(-3 * time.Hour)},
		{Emotion: "habit", Timestamp: now.AddDate(0, 0, -10)}, // outside window
	}
	if got := catalog.TopEmotion(urges, now); got != "stress" {
		t.Errorf("expected stress, got %q", got)
	}
	if got := catalog.TopEmotion(nil, now); got != "" {
		t.Errorf("empty log expected \"\", got %q", got)
	}
}

func TestQuoteForDay_StableWithinDay(t *testing.T) {
	a := catalog.QuoteForDay("2026-03-10", 0.4)
	b := catalog.QuoteForDay("2026-03-10", 0.4)
	if a != b {
		t.Error("quote must be stable for a given date key")
	}
	if a.Text == "" {
		t.Error("empty quote")
	}
}
