// Package metrics computes the per-day and rolling adherence numbers.
// Everything here is a pure function of its inputs so the daily cache can
// be rebuilt at any time from picks, completions, and the urge log.
package metrics

import (
	"math"

	"github.com/resetdopa/engine/internal/app/catalog"
	"github.com/resetdopa/engine/internal/domain"
)

// DailyInput is the snapshot a single day's metrics are derived from.
type DailyInput struct {
	DateKey     string
	Day         int
	Picks       []string
	Completions map[string]bool
	Urges       []domain.UrgeEntry
	Streak      int
}

// ComputeDaily derives the metrics summary for one calendar day.
// Target falls back to the day's domain default when no picks were
// generated. Variety is the share of the 8-category taxonomy covered by
// completed tasks.
func ComputeDaily(in DailyInput) domain.DailyMetrics {
	urges := 0
	for _, u := range in.Urges {
		if u.Timestamp.Format("2006-01-02") == in.DateKey {
			urges++
		}
	}

	target := len(in.Picks)
	if target == 0 {
		target = domain.DefaultTarget(in.Day)
	}

	completions := 0
	calmDelta := 0
	categories := map[string]bool{}
	for title, done := range in.Completions {
		if !done {
			continue
		}
		completions++
		calmDelta += catalog.Points(title)
		categories[catalog.DomainOf(title)] = true
	}

	adherence := 0.0
	if target > 0 {
		adherence = float64(completions) / float64(target)
	}

	return domain.DailyMetrics{
		DateKey:           in.DateKey,
		Urges:             urges,
		Completions:       completions,
		Target:            target,
		Adherence:         round2(adherence),
		Variety:           round2(float64(len(categories)) / domain.CategoryCount),
		CategoriesCovered: len(categories),
		CalmDelta:         calmDelta,
		Streak:            in.Streak,
	}
}

// AdherenceWindow computes the rolling completion ratio over the trailing
// window ending at day. Days with no generated picks count at the domain
// default target.
func AdherenceWindow(day, window int, picks map[int][]string, completions map[int]map[string]bool) float64 {
	if window < 1 {
		window = 1
	}
	first := day - window + 1
	if first < 1 {
		first = 1
	}

	var assigned, done int
	for d := first; d <= day; d++ {
		n := len(picks[d])
		if n == 0 {
			n = domain.DefaultTarget(d)
		}
		assigned += n
		for _, ok := range completions[d] {
			if ok {
				done++
			}
		}
	}
	if assigned == 0 {
		return 0
	}
	return float64(done) / float64(assigned)
}

// DayAdherence is the single-day ratio used by the streak evaluator.
// Returns the completion count alongside the ratio and target.
func DayAdherence(day int, picks []string, completions map[string]bool) (adherence float64, done, target int) {
	target = len(picks)
	if target == 0 {
		target = domain.DefaultTarget(day)
	}
	for _, ok := range completions {
		if ok {
			done++
		}
	}
	return float64(done) / float64(target), done, target
}

// PicksIncrement maps rolling adherence to extra daily capacity.
func PicksIncrement(adherence float64) int {
	switch {
	case adherence > 0.7:
		return 2
	case adherence > 0.6:
		return 1
	default:
		return 0
	}
}

// DynamicTaskCount is the suggested daily task count after week 1.
func DynamicTaskCount(day int, adherence float64) int {
	if day <= 7 {
		return 6
	}
	return 6 + PicksIncrement(adherence)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
