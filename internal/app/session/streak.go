package session

import (
	"fmt"
	"math"

	"github.com/resetdopa/engine/internal/domain"
	prom "github.com/resetdopa/engine/internal/infra/metrics"
	"github.com/resetdopa/engine/internal/notify"
)

// Adherence bands. Below graceFloor a day hard-resets the streak; between
// graceFloor and the day's ramp threshold the overnight path may spend the
// weekly grace day.
const graceFloor = 0.30

// lenientDays is the beginner window where any single completion counts.
const lenientDays = 2

// EvaluateStreakProgress runs the same-day evaluation path for day against
// the given completion map (nil means the stored map). It advances the
// streak at most once per day and never decreases it; the grace decision
// belongs exclusively to the overnight path.
func (s *Session) EvaluateStreakProgress(day int, completions map[string]bool) domain.StreakDecision {
	var dec domain.StreakDecision
	s.do(func() { dec = s.evaluateLocked(day, completions) })
	return dec
}

func (s *Session) evaluateLocked(day int, completions map[string]bool) domain.StreakDecision {
	// Fast path first, then the persisted marker. Both checked inside the
	// worker so there is no window between check and mark.
	if s.evaluatedDayMem == day || s.st.StreakEvaluatedForDay == day {
		return domain.StreakDecision{
			Outcome: domain.OutcomeAlreadyCounted,
			Day:     day,
			Streak:  s.st.CurrentStreak,
			Message: "Today is already counted toward your streak.",
		}
	}

	if completions == nil {
		completions = s.st.TodayCompletions[day]
	}
	done := countDone(completions)
	target := s.targetFor(day)
	adherence := 0.0
	if target > 0 {
		adherence = float64(done) / float64(target)
	}
	threshold := domain.RampThreshold(day)

	lenient := day <= lenientDays && done >= 1
	if lenient || adherence >= threshold {
		s.st.CurrentStreak++
		s.st.StreakEvaluatedForDay = day
		s.st.LastStreakDayCounted = day
		s.evaluatedDayMem = day
		s.persist(map[string]any{
			"currentStreak":         s.st.CurrentStreak,
			"streakEvaluatedForDay": s.st.StreakEvaluatedForDay,
			"lastStreakDayCounted":  s.st.LastStreakDayCounted,
		})
		prom.StreakAdvances.WithLabelValues("same_day").Inc()
		s.publishGauges()
		s.refreshMetricsLocked(day)
		return domain.StreakDecision{
			Outcome: domain.OutcomeAdvanced,
			Day:     day,
			Streak:  s.st.CurrentStreak,
			Message: fmt.Sprintf("Streak extended to %d days!", s.st.CurrentStreak),
		}
	}

	if adherence >= graceFloor {
		remaining := int(math.Ceil(threshold*float64(target))) - done
		if remaining < 1 {
			remaining = 1
		}
		s.send(notify.ThresholdWarning(remaining))
		return domain.StreakDecision{
			Outcome: domain.OutcomeGuidance,
			Day:     day,
			Streak:  s.st.CurrentStreak,
			Message: fmt.Sprintf("Complete %d more task(s) to secure today's streak.", remaining),
		}
	}

	return domain.StreakDecision{
		Outcome: domain.OutcomeWarning,
		Day:     day,
		Streak:  s.st.CurrentStreak,
		Message: "Low progress today. Even one small task moves you forward.",
	}
}

// ApplyRolloverOnce runs the overnight evaluation path for the previous
// program day. Idempotent per previous day; the result also lands as the
// morning banner.
func (s *Session) ApplyRolloverOnce() domain.StreakDecision {
	var dec domain.StreakDecision
	s.do(func() { dec = s.rolloverLocked() })
	return dec
}

func (s *Session) rolloverLocked() domain.StreakDecision {
	day := s.currentDay()
	prevDay := day - 1

	skip := func(msg string) domain.StreakDecision {
		return domain.StreakDecision{
			Outcome: domain.OutcomeSkipped,
			Day:     prevDay,
			Streak:  s.st.CurrentStreak,
			Message: msg,
		}
	}

	if prevDay < 1 {
		return skip("Nothing to roll over yet.")
	}
	if s.rolloverMem == prevDay || s.st.LastRolloverPrevDayEvaluated == prevDay {
		return skip("Yesterday is already evaluated.")
	}
	if s.st.StreakEvaluatedForDay == day {
		// Today already scored same-day before the rollover tick ran.
		// Advance the marker so a restart does not re-attempt.
		s.markRollover(prevDay)
		s.persist(map[string]any{"lastRolloverPrevDayEvaluated": prevDay})
		return skip("Today is already counted.")
	}
	if s.st.StreakEvaluatedForDay == prevDay || s.st.LastStreakDayCounted == prevDay {
		s.markRollover(prevDay)
		s.persist(map[string]any{"lastRolloverPrevDayEvaluated": prevDay})
		return domain.StreakDecision{
			Outcome: domain.OutcomeHold,
			Day:     prevDay,
			Streak:  s.st.CurrentStreak,
			Message: "Yesterday was already counted.",
		}
	}

	done := countDone(s.st.TodayCompletions[prevDay])
	target := s.targetFor(prevDay)
	adherence := 0.0
	if target > 0 {
		adherence = float64(done) / float64(target)
	}
	threshold := domain.RampThreshold(prevDay)

	var dec domain.StreakDecision
	switch {
	case prevDay <= lenientDays && done >= 1:
		dec = s.advanceOvernight(prevDay)

	case adherence >= threshold:
		dec = s.advanceOvernight(prevDay)

	case adherence >= graceFloor:
		if s.graceAvailableFor(prevDay) {
			s.st.GraceDayDates = append(s.st.GraceDayDates, domain.GraceKey(prevDay))
			s.st.CurrentStreak++
			s.st.LastStreakDayCounted = prevDay
			prom.GraceDaysApplied.Inc()
			prom.StreakAdvances.WithLabelValues("rollover").Inc()
			dec = domain.StreakDecision{
				Outcome: domain.OutcomeGrace,
				Day:     prevDay,
				Streak:  s.st.CurrentStreak,
				Message: "Grace day applied. Your streak is safe.",
			}
		} else {
			dec = domain.StreakDecision{
				Outcome: domain.OutcomeGraceUnavailable,
				Day:     prevDay,
				Streak:  s.st.CurrentStreak,
				Message: "Grace already used this week. Streak held.",
			}
		}

	default:
		if s.st.CurrentStreak > 0 {
			s.st.CurrentStreak = 0
			prom.StreakResets.Inc()
		}
		dec = domain.StreakDecision{
			Outcome: domain.OutcomeReset,
			Day:     prevDay,
			Streak:  0,
			Message: "Streak reset. Today is a fresh start.",
		}
	}

	s.markRollover(prevDay)
	s.persist(map[string]any{
		"currentStreak":                s.st.CurrentStreak,
		"lastStreakDayCounted":         s.st.LastStreakDayCounted,
		"graceDayDates":                s.st.GraceDayDates,
		"lastRolloverPrevDayEvaluated": s.st.LastRolloverPrevDayEvaluated,
	})
	s.publishGauges()
	s.refreshMetricsLocked(prevDay)
	s.banner = &domain.RolloverBanner{Kind: dec.Outcome, Day: prevDay, Message: dec.Message}
	return dec
}

func (s *Session) advanceOvernight(prevDay int) domain.StreakDecision {
	s.st.CurrentStreak++
	s.st.LastStreakDayCounted = prevDay
	prom.StreakAdvances.WithLabelValues("rollover").Inc()
	return domain.StreakDecision{
		Outcome: domain.OutcomeAdvanced,
		Day:     prevDay,
		Streak:  s.st.CurrentStreak,
		Message: fmt.Sprintf("Streak extended to %d days!", s.st.CurrentStreak),
	}
}

// markRollover records the rollover idempotency marker in memory. The
// caller is responsible for persisting.
func (s *Session) markRollover(prevDay int) {
	s.st.LastRolloverPrevDayEvaluated = prevDay
	s.rolloverMem = prevDay
}

// graceAvailableFor reports whether day may consume a grace exemption:
// no grace entry in the rolling 7-day window ending at day.
func (s *Session) graceAvailableFor(day int) bool {
	for _, key := range s.st.GraceDayDates {
		used := domain.ParseGraceDay(key)
		if used == 0 {
			continue
		}
		if used >= day-6 && used <= day {
			return false
		}
	}
	return true
}

// GraceStatus reports whether a grace day could be consumed for yesterday.
func (s *Session) GraceStatus() domain.GraceStatus {
	var gs domain.GraceStatus
	s.do(func() {
		prevDay := s.currentDay() - 1
		if prevDay < 1 {
			prevDay = 1
		}
		gs.Available = s.graceAvailableFor(prevDay)
		for _, key := range s.st.GraceDayDates {
			if d := domain.ParseGraceDay(key); d > gs.LastUsedDay {
				gs.LastUsedDay = d
			}
		}
	})
	return gs
}

// targetFor returns the day's task quota, falling back to the domain
// default when no picks were generated.
func (s *Session) targetFor(day int) int {
	if picks := s.st.TodayPicks[day]; len(picks) > 0 {
		return len(picks)
	}
	return domain.DefaultTarget(day)
}

func countDone(completions map[string]bool) int {
	n := 0
	for _, ok := range completions {
		if ok {
			n++
		}
	}
	return n
}
