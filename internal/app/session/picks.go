package session

import (
	"github.com/resetdopa/engine/internal/app/catalog"
	appmetrics "github.com/resetdopa/engine/internal/app/metrics"
	"github.com/resetdopa/engine/internal/domain"
	prom "github.com/resetdopa/engine/internal/infra/metrics"
)

// SetWeek1Anchors records the 5 onboarding-chosen tasks that seed days 1-7.
// Set exactly once.
func (s *Session) SetWeek1Anchors(titles []string) error {
	var err error
	s.do(func() {
		if len(s.st.Week1Anchors) > 0 {
			err = domain.ErrAnchorsAlreadySet
			return
		}
		if len(titles) != 5 {
			err = domain.ErrAnchorCount
			return
		}
		anchors := make([]string, 0, 5)
		seen := map[string]bool{}
		for _, t := range titles {
			c := catalog.Canonical(t)
			if seen[c] {
				err = domain.ErrAnchorCount
				return
			}
			seen[c] = true
			anchors = append(anchors, c)
		}
		s.st.Week1Anchors = anchors
		s.persist(map[string]any{"week1Anchors": s.st.Week1Anchors})
	})
	return err
}

// EnsurePicksForDay returns the task list for day, generating and storing
// it if absent. Days 1-7 are the anchors (rotation extras arrive via
// ApplyWeek1Rotation); later days come from the deterministic generator;
// past day 30 the maintenance rotation takes over.
func (s *Session) EnsurePicksForDay(day int) []domain.TaskPick {
	var picks []domain.TaskPick
	s.do(func() { picks = s.ensurePicksLocked(day) })
	return picks
}

func (s *Session) ensurePicksLocked(day int) []domain.TaskPick {
	if titles := s.st.TodayPicks[day]; len(titles) > 0 {
		return picksFromTitles(titles)
	}

	var titles []string
	switch {
	case day <= 7:
		titles = append([]string(nil), s.st.Week1Anchors...)
		if len(titles) == 0 {
			titles = catalog.FallbackPicks()
		}
	case day > domain.ProgramLengthDays:
		titles = catalog.MaintenanceRotation(day)
	default:
		adherence := s.adherenceWindow(7)
		recent := s.recentTitles(day)
		for _, p := range catalog.Generate(day, s.st.Week1Anchors, adherence, recent) {
			titles = append(titles, p.Title)
		}
	}

	s.st.TodayPicks[day] = titles
	s.persist(map[string]any{"todayPicks": s.st.TodayPicks})
	return picksFromTitles(titles)
}

// recentTitles collects the canonical titles assigned on the prior two
// days, for the generator's recency exclusion.
func (s *Session) recentTitles(day int) []string {
	var out []string
	for _, d := range []int{day - 1, day - 2} {
		if d < 1 {
			continue
		}
		for _, t := range s.st.TodayPicks[d] {
			out = append(out, catalog.Canonical(t))
		}
	}
	return out
}

// ApplyWeek1Rotation appends one rotation extra to each of days 1-7, once
// per user. Idempotent via the rotation-applied flag.
func (s *Session) ApplyWeek1Rotation() bool {
	applied := false
	s.do(func() {
		if s.st.Week1RotationApplied {
			return
		}
		for day := 1; day <= 7; day++ {
			titles := s.st.TodayPicks[day]
			if len(titles) == 0 {
				titles = append([]string(nil), s.st.Week1Anchors...)
			}
			used := map[string]bool{}
			for _, t := range titles {
				used[catalog.Canonical(t)] = true
			}
			if extra, ok := catalog.RotationExtra(day, used); ok {
				titles = append(titles, extra)
			}
			s.st.TodayPicks[day] = titles
		}
		s.st.Week1RotationApplied = true
		s.persist(map[string]any{
			"todayPicks":           s.st.TodayPicks,
			"week1RotationApplied": true,
		})
		applied = true
	})
	return applied
}

func picksFromTitles(titles []string) []domain.TaskPick {
	picks := make([]domain.TaskPick, 0, len(titles))
	for _, t := range titles {
		picks = append(picks, domain.TaskPick{
			Title:    t,
			Points:   catalog.Points(t),
			Category: catalog.DomainOf(t),
		})
	}
	return picks
}

// ─── Completions ────────────────────────────────────────────────────────────

// ToggleTaskCompletion marks a task done on the current program day and
// awards its points. Past days are locked, future days are unreachable,
// and completed tasks never unmark. On success the same-day streak
// evaluation runs immediately.
func (s *Session) ToggleTaskCompletion(day int, title string) (domain.StreakDecision, error) {
	var dec domain.StreakDecision
	var err error
	s.do(func() {
		// Settle yesterday first. A tap after midnight must not score
		// today same-day while yesterday's earned advance is still
		// pending; the rollover is idempotent, so this is free once
		// the day is evaluated.
		s.rolloverLocked()

		today := s.currentDay()
		if day < today {
			err = domain.ErrPastDayLocked
			return
		}
		if day > today {
			err = domain.ErrFutureDay
			return
		}

		canonical := catalog.Canonical(title)
		if s.st.TodayCompletions[day] == nil {
			s.st.TodayCompletions[day] = map[string]bool{}
		}
		if s.st.TodayCompletions[day][canonical] {
			err = domain.ErrAlreadyCompleted
			return
		}

		s.st.TodayCompletions[day][canonical] = true
		s.st.CalmPoints += catalog.Points(canonical)
		prom.TaskCompletions.Inc()

		s.persist(map[string]any{
			"todayCompletions": s.st.TodayCompletions,
			"calmPoints":       s.st.CalmPoints,
		})
		s.publishGauges()

		s.maybeCompleteWeek1(day)
		s.refreshMetricsLocked(day)
		dec = s.evaluateLocked(day, s.st.TodayCompletions[day])
		s.checkBadgesLocked()
	})
	return dec, err
}

// maybeCompleteWeek1 flips the week-1 completion flags when day 7's full
// list is done.
func (s *Session) maybeCompleteWeek1(day int) {
	if day != 7 || s.st.Week1Completed {
		return
	}
	picks := s.st.TodayPicks[7]
	if len(picks) == 0 {
		return
	}
	for _, t := range picks {
		if !s.st.TodayCompletions[7][catalog.Canonical(t)] {
			return
		}
	}
	s.st.Week1Completed = true
	s.st.BackfillDisabledBeforeDay = 8
	s.persist(map[string]any{
		"week1Completed":            true,
		"backfillDisabledBeforeDay": 8,
	})
}

// ─── Adherence & metrics cache ──────────────────────────────────────────────

// adherenceWindow computes rolling adherence over the trailing window
// ending at the current program day. Caller must hold the worker.
func (s *Session) adherenceWindow(window int) float64 {
	return appmetrics.AdherenceWindow(s.currentDay(), window, s.st.TodayPicks, s.st.TodayCompletions)
}

// Adherence returns rolling adherence in [0,1] over the trailing window.
func (s *Session) Adherence(windowDays int) float64 {
	var a float64
	s.do(func() { a = s.adherenceWindow(windowDays) })
	return a
}

// DailyMetricsFor returns the cached metrics for a date key.
func (s *Session) DailyMetricsFor(dateKey string) (domain.DailyMetrics, bool) {
	var m domain.DailyMetrics
	var ok bool
	s.do(func() { m, ok = s.st.DailyMetrics[dateKey] })
	return m, ok
}

// RecentMetrics returns metrics for the last n program days, oldest first.
// Missing cache entries are recomputed on the fly.
func (s *Session) RecentMetrics(n int) []domain.DailyMetrics {
	var out []domain.DailyMetrics
	s.do(func() {
		today := s.currentDay()
		first := today - n + 1
		if first < 1 {
			first = 1
		}
		for day := first; day <= today; day++ {
			key := s.dateKeyForDay(day)
			m, ok := s.st.DailyMetrics[key]
			if !ok {
				m = s.computeMetricsLocked(day)
			}
			out = append(out, m)
		}
	})
	return out
}

// RefreshRecentMetrics recomputes and re-caches the trailing n days.
func (s *Session) RefreshRecentMetrics(n int) {
	s.do(func() {
		today := s.currentDay()
		first := today - n + 1
		if first < 1 {
			first = 1
		}
		for day := first; day <= today; day++ {
			s.refreshMetricsLocked(day)
		}
	})
}

func (s *Session) computeMetricsLocked(day int) domain.DailyMetrics {
	return appmetrics.ComputeDaily(appmetrics.DailyInput{
		DateKey:     s.dateKeyForDay(day),
		Day:         day,
		Picks:       s.st.TodayPicks[day],
		Completions: s.st.TodayCompletions[day],
		Urges:       s.st.UrgeLog,
		Streak:      s.st.CurrentStreak,
	})
}

// refreshMetricsLocked recomputes one day's cache entry and persists the
// cache. The cache is derived data; a lost write rebuilds on next refresh.
func (s *Session) refreshMetricsLocked(day int) {
	m := s.computeMetricsLocked(day)
	s.st.DailyMetrics[m.DateKey] = m
	s.persist(map[string]any{"dailyMetrics": s.st.DailyMetrics})
}
