package catalog

import (
	"sort"
	"time"

	"github.com/resetdopa/engine/internal/domain"
)

// CatalogEntry is one entry of the recommendation catalog: the friendly
// subset of the pool surfaced on the dashboard and used by the week-1
// rotation.
type CatalogEntry struct {
	Title  string
	Domain string
}

// RecommendationCatalog lists the tasks eligible for recommendations.
var RecommendationCatalog = []CatalogEntry{
	{"10 min sunlight", DomainMorning},
	{"Make bed", DomainMorning},
	{"Drink water first thing", DomainMorning},
	{"Breathwork 5 min", DomainMind},
	{"Meditation 5 min", DomainMind},
	{"10-15 min walk", DomainPhysical},
	{"5 min stretching", DomainPhysical},
	{"25-min Pomodoro", DomainFocus},
	{"Read 10 pages", DomainFocus},
	{"Call friend/family", DomainSocial},
	{"Compliment someone", DomainSocial},
	{"Device-free meal", DomainSocial},
	{"Draw/write 10 min", DomainCreative},
}

// lowFrictionStreak is the streak below which low-friction tasks get a
// recommendation boost.
const lowFrictionStreak = 4

// Recommend scores the catalog against the user's recent urges and streak
// and returns the top n picks. Urge emotions steer category preference:
// loneliness toward social, stress toward mind and focus, boredom toward
// creative, habit urges toward morning and physical.
func Recommend(urges []domain.UrgeEntry, streak int, now time.Time, n int) []domain.TaskPick {
	cutoff := now.AddDate(0, 0, -7)
	prefs := map[string]int{}
	for _, u := range urges {
		if u.Timestamp.Before(cutoff) {
			continue
		}
		switch u.Emotion {
		case "lonely":
			w := 1
			if u.Intensity >= 3 {
				w = 2
			}
			prefs[DomainSocial] += w
		case "stress":
			prefs[DomainMind] += 2
			prefs[DomainFocus]++
		case "boredom":
			prefs[DomainCreative] += 2
			prefs[DomainFocus]++
		case "habit":
			prefs[DomainMorning]++
			prefs[DomainPhysical]++
		}
	}

	type scored struct {
		entry CatalogEntry
		score int
	}
	ranked := make([]scored, 0, len(RecommendationCatalog))
	for _, e := range RecommendationCatalog {
		s := prefs[e.Domain]
		if streak < lowFrictionStreak && MetaOf(e.Title).Friction == FrictionLow {
			s += 2
		}
		if streak >= lowFrictionStreak && e.Domain == DomainFocus {
			s++
		}
		ranked = append(ranked, scored{e, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]domain.TaskPick, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, domain.TaskPick{
			Title:    r.entry.Title,
			Points:   Points(r.entry.Title),
			Category: DomainLabels[r.entry.Domain],
		})
	}
	return out
}

// Daily quest ladder. The pick climbs with rolling adherence and is
// overridden by the user's dominant recent emotion.
var (
	questEasy   = []string{"Make bed", "Drink water first thing", "10 min sunlight"}
	questMedium = []string{"25-min Pomodoro", "10-15 min walk", "Meditation 5 min"}
	questHarder = []string{"25-min Pomodoro x2", "Read 10 pages", "Device-free meal"}
)

// QuestPoints is the calm-point reward for finishing the daily quest.
const QuestPoints = 5

// DailyQuest picks today's micro-challenge.
func DailyQuest(adherence float64, topEmotion string) string {
	quest := questEasy[0]
	switch {
	case adherence >= 0.8:
		quest = questHarder[0]
	case adherence >= 0.5:
		quest = questMedium[0]
	default:
		quest = questEasy[1]
	}
	switch topEmotion {
	case "lonely":
		quest = "Call friend/family"
	case "stress":
		quest = "Breathwork 5 min"
	}
	return quest
}

// TopEmotion returns the most frequent emotion among recent urges, "" when
// the log is empty.
func TopEmotion(urges []domain.UrgeEntry, now time.Time) string {
	cutoff := now.AddDate(0, 0, -7)
	freq := map[string]int{}
	var top string
	var best int
	for _, u := range urges {
		if u.Timestamp.Before(cutoff) {
			continue
		}
		freq[u.Emotion]++
		if freq[u.Emotion] > best {
			best = freq[u.Emotion]
			top = u.Emotion
		}
	}
	return top
}
