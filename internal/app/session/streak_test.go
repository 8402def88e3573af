package session

import (
	"strings"
	"testing"

	"github.com/resetdopa/engine/internal/domain"
)

func completeN(titles []string, n int) map[string]bool {
	m := map[string]bool{}
	for _, t := range titles[:n] {
		m[t] = true
	}
	return m
}

// ─── Same-day path ──────────────────────────────────────────────────────────

func TestSameDayLeniencyDay1(t *testing.T) {
	s, _, _ := newTestSession(t)
	setPicks(s, 1, eightTasks[:5])
	setCompletions(s, 1, eightTasks[:1])

	dec := s.EvaluateStreakProgress(1, nil)
	if dec.Outcome != domain.OutcomeAdvanced {
		t.Fatalf("outcome = %s, want advanced (one completion suffices on day 1)", dec.Outcome)
	}
	if dec.Streak != 1 {
		t.Errorf("streak = %d, want 1", dec.Streak)
	}
	if got := s.State().StreakEvaluatedForDay; got != 1 {
		t.Errorf("streakEvaluatedForDay = %d, want 1", got)
	}
}

func TestSameDayIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t)
	setPicks(s, 1, eightTasks[:5])
	setCompletions(s, 1, eightTasks[:1])

	first := s.EvaluateStreakProgress(1, nil)
	second := s.EvaluateStreakProgress(1, nil)

	if first.Outcome != domain.OutcomeAdvanced {
		t.Fatalf("first = %s", first.Outcome)
	}
	if second.Outcome != domain.OutcomeAlreadyCounted {
		t.Errorf("second = %s, want already_counted", second.Outcome)
	}
	if got := s.State().CurrentStreak; got != 1 {
		t.Errorf("streak = %d, want 1 after duplicate evaluation", got)
	}
}

func TestSameDayThresholdAdvance(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)

	// Day 9 threshold 0.60 over 8 tasks: 5 completions needed.
	dec := s.EvaluateStreakProgress(9, completeN(eightTasks, 5))
	if dec.Outcome != domain.OutcomeAdvanced || dec.Streak != 1 {
		t.Errorf("dec = %+v, want advance to 1", dec)
	}
}

func TestSameDayGuidanceBand(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)

	// 3/8 = 0.375, in [0.30, 0.60): guidance, no mutation. 2 more needed.
	dec := s.EvaluateStreakProgress(9, completeN(eightTasks, 3))
	if dec.Outcome != domain.OutcomeGuidance {
		t.Fatalf("outcome = %s, want guidance", dec.Outcome)
	}
	if !strings.Contains(dec.Message, "2 more task(s)") {
		t.Errorf("message = %q, want 2 more tasks", dec.Message)
	}
	if got := s.State().CurrentStreak; got != 0 {
		t.Errorf("guidance must not mutate streak, got %d", got)
	}
	if got := s.State().StreakEvaluatedForDay; got != 0 {
		t.Errorf("guidance must not mark the day evaluated, got %d", got)
	}
}

func TestSameDayLowProgressWarning(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)

	dec := s.EvaluateStreakProgress(9, completeN(eightTasks, 1))
	if dec.Outcome != domain.OutcomeWarning {
		t.Fatalf("outcome = %s, want warning below 0.30", dec.Outcome)
	}
	if got := s.State().CurrentStreak; got != 0 {
		t.Errorf("warning must not mutate streak, got %d", got)
	}
}

func TestSameDayNeverAppliesGrace(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)

	s.EvaluateStreakProgress(9, completeN(eightTasks, 3))
	if got := s.State().GraceDayDates; len(got) != 0 {
		t.Errorf("same-day path consumed grace: %v", got)
	}
}

// ─── Overnight rollover path ────────────────────────────────────────────────

func TestRolloverSkipsBeforeDay2(t *testing.T) {
	s, _, _ := newTestSession(t)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped on day 1", dec.Outcome)
	}
}

func TestRolloverLeniency(t *testing.T) {
	s, _, _ := newTestSession(t)
	setPicks(s, 1, eightTasks[:5])
	setCompletions(s, 1, eightTasks[:1])
	s.SetVirtualDay(2)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeAdvanced || dec.Streak != 1 {
		t.Errorf("dec = %+v, want overnight leniency advance", dec)
	}
}

func TestRolloverThresholdAdvance(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:5])
	s.SetVirtualDay(10)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeAdvanced || dec.Streak != 1 {
		t.Errorf("dec = %+v, want advance", dec)
	}
	if got := s.State().LastRolloverPrevDayEvaluated; got != 9 {
		t.Errorf("rollover marker = %d, want 9", got)
	}
}

func TestRolloverGraceApplied(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:3]) // 0.375, grace band
	setStreak(s, 4)
	s.SetVirtualDay(10)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeGrace {
		t.Fatalf("outcome = %s, want grace", dec.Outcome)
	}
	st := s.State()
	if st.CurrentStreak != 5 {
		t.Errorf("streak = %d, want 5", st.CurrentStreak)
	}
	if len(st.GraceDayDates) != 1 || st.GraceDayDates[0] != "day_9" {
		t.Errorf("graceDayDates = %v, want [day_9]", st.GraceDayDates)
	}

	banner := s.Banner()
	if banner == nil || banner.Kind != domain.OutcomeGrace || banner.Day != 9 {
		t.Errorf("banner = %+v", banner)
	}
	s.DismissBanner()
	if s.Banner() != nil {
		t.Error("banner should clear on dismiss")
	}
}

func TestRolloverGraceUnavailableInWindow(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.do(func() { s.st.GraceDayDates = []string{"day_4"} })
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:3])
	setStreak(s, 4)
	s.SetVirtualDay(10)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeGraceUnavailable {
		t.Fatalf("outcome = %s, want grace_unavailable (day 4 within window)", dec.Outcome)
	}
	st := s.State()
	if st.CurrentStreak != 4 {
		t.Errorf("streak = %d, want held at 4", st.CurrentStreak)
	}
	if len(st.GraceDayDates) != 1 {
		t.Errorf("graceDayDates grew: %v", st.GraceDayDates)
	}
}

func TestRolloverGraceAvailableAgainAfterWindow(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.do(func() { s.st.GraceDayDates = []string{"day_9"} })
	s.SetVirtualDay(16)
	setPicks(s, 16, eightTasks)
	setCompletions(s, 16, eightTasks[:3]) // 0.375 < 0.65 threshold, grace band
	s.SetVirtualDay(17)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeGrace {
		t.Fatalf("outcome = %s, want grace (day 9 outside window of day 16)", dec.Outcome)
	}
	st := s.State()
	if len(st.GraceDayDates) != 2 {
		t.Errorf("graceDayDates = %v", st.GraceDayDates)
	}

	// Spot check the exclusivity invariant: no two entries within 6 days.
	for i, a := range st.GraceDayDates {
		for _, b := range st.GraceDayDates[i+1:] {
			da, db := domain.ParseGraceDay(a), domain.ParseGraceDay(b)
			if da-db <= 6 && db-da <= 6 {
				t.Errorf("grace entries %s and %s violate the 7-day window", a, b)
			}
		}
	}
}

func TestRolloverHardReset(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(15)
	setPicks(s, 15, []string{
		eightTasks[0], eightTasks[1], eightTasks[2], eightTasks[3], eightTasks[4],
		eightTasks[5], eightTasks[6], eightTasks[7], "Clean area", "Dance to 1 song",
	})
	setCompletions(s, 15, eightTasks[:2]) // 0.20 < 0.30
	setStreak(s, 12)
	s.SetVirtualDay(16)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeReset {
		t.Fatalf("outcome = %s, want reset", dec.Outcome)
	}
	if got := s.State().CurrentStreak; got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestRolloverIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:5])
	s.SetVirtualDay(10)

	first := s.ApplyRolloverOnce()
	second := s.ApplyRolloverOnce()
	if first.Outcome != domain.OutcomeAdvanced {
		t.Fatalf("first = %s", first.Outcome)
	}
	if second.Outcome != domain.OutcomeSkipped {
		t.Errorf("second = %s, want skipped", second.Outcome)
	}
	if got := s.State().CurrentStreak; got != 1 {
		t.Errorf("streak = %d, want 1 after duplicate rollover", got)
	}
}

func TestNoDoubleCountAcrossPaths(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:5])

	if dec := s.EvaluateStreakProgress(9, nil); dec.Outcome != domain.OutcomeAdvanced {
		t.Fatalf("same-day = %s", dec.Outcome)
	}
	s.SetVirtualDay(10)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeHold {
		t.Errorf("rollover = %s, want hold for an already-scored day", dec.Outcome)
	}
	st := s.State()
	if st.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 (no double count)", st.CurrentStreak)
	}
	if st.LastRolloverPrevDayEvaluated != 9 {
		t.Errorf("rollover marker = %d, want 9", st.LastRolloverPrevDayEvaluated)
	}
}

func TestRolloverSkipsWhenTodayAlreadyScored(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(10)
	setPicks(s, 10, eightTasks)
	setCompletions(s, 10, eightTasks[:5])

	// Today scored same-day before the rollover tick runs (app restart).
	if dec := s.EvaluateStreakProgress(10, nil); dec.Outcome != domain.OutcomeAdvanced {
		t.Fatalf("same-day = %s", dec.Outcome)
	}

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeSkipped {
		t.Errorf("rollover = %s, want skipped", dec.Outcome)
	}
	st := s.State()
	if st.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", st.CurrentStreak)
	}
	if st.LastRolloverPrevDayEvaluated != 9 {
		t.Errorf("marker should still advance to 9, got %d", st.LastRolloverPrevDayEvaluated)
	}
}

func TestToggleSettlesYesterdayBeforeScoringToday(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(9)
	setPicks(s, 9, eightTasks)
	setCompletions(s, 9, eightTasks[:5]) // 0.625 >= 0.60, advance earned but not yet evaluated

	// First tap after midnight lands before the rollover tick. Yesterday's
	// earned advance must be banked before today is scored same-day.
	s.SetVirtualDay(10)
	setPicks(s, 10, eightTasks[:2])
	s.ToggleTaskCompletion(10, eightTasks[0])
	dec, err := s.ToggleTaskCompletion(10, eightTasks[1])
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if dec.Outcome != domain.OutcomeAdvanced || dec.Streak != 2 {
		t.Fatalf("dec = %+v, want advance to 2 (day 9 plus day 10)", dec)
	}

	roll := s.ApplyRolloverOnce()
	if roll.Outcome != domain.OutcomeSkipped {
		t.Errorf("later rollover = %s, want skipped", roll.Outcome)
	}
	st := s.State()
	if st.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2", st.CurrentStreak)
	}
	if st.LastRolloverPrevDayEvaluated != 9 {
		t.Errorf("rollover marker = %d, want 9", st.LastRolloverPrevDayEvaluated)
	}
}

func TestRolloverNeverGoesNegative(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetVirtualDay(15)
	setPicks(s, 15, eightTasks)
	// No completions at all: adherence 0, streak already 0.
	s.SetVirtualDay(16)

	dec := s.ApplyRolloverOnce()
	if dec.Outcome != domain.OutcomeReset {
		t.Fatalf("outcome = %s", dec.Outcome)
	}
	if got := s.State().CurrentStreak; got < 0 {
		t.Errorf("streak went negative: %d", got)
	}
}

func TestPersistedMarkerWinsAcrossRestart(t *testing.T) {
	gw := newMemGateway()
	clock := &testClock{t: dayOneClock()}

	s, err := Load(gw, WithClock(clock.now))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	setPicks(s, 1, eightTasks[:5])
	setCompletions(s, 1, eightTasks[:1])
	s.EvaluateStreakProgress(1, nil)
	s.Close()

	// Fresh process: the in-memory fast path is gone, the persisted marker
	// must still block a re-count.
	s2, err := Load(gw, WithClock(clock.now))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer s2.Close()

	dec := s2.EvaluateStreakProgress(1, nil)
	if dec.Outcome != domain.OutcomeAlreadyCounted {
		t.Errorf("outcome = %s, want already_counted from persisted marker", dec.Outcome)
	}
	if got := s2.State().CurrentStreak; got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

func TestGraceStatus(t *testing.T) {
	s, _, _ := newTestSession(t)

	gs := s.GraceStatus()
	if !gs.Available || gs.LastUsedDay != 0 {
		t.Errorf("fresh status = %+v", gs)
	}

	s.do(func() { s.st.GraceDayDates = []string{"day_9"} })
	s.SetVirtualDay(12)
	gs = s.GraceStatus()
	if gs.Available {
		t.Error("grace should be unavailable with day_9 in window of day 11")
	}
	if gs.LastUsedDay != 9 {
		t.Errorf("lastUsedDay = %d, want 9", gs.LastUsedDay)
	}

	s.SetVirtualDay(17)
	if gs = s.GraceStatus(); !gs.Available {
		t.Error("grace should recover once the window passes")
	}
}

// Two rapid completion taps must advance the streak exactly once even when
// the evaluations race.
func TestConcurrentEvaluationsCountOnce(t *testing.T) {
	s, _, _ := newTestSession(t)
	setPicks(s, 1, eightTasks[:5])
	setCompletions(s, 1, eightTasks[:2])

	done := make(chan domain.StreakDecision, 2)
	for i := 0; i < 2; i++ {
		go func() { done <- s.EvaluateStreakProgress(1, nil) }()
	}
	a, b := <-done, <-done

	advances := 0
	for _, dec := range []domain.StreakDecision{a, b} {
		if dec.Outcome == domain.OutcomeAdvanced {
			advances++
		}
	}
	if advances != 1 {
		t.Errorf("%d advances, want exactly 1 (got %s and %s)", advances, a.Outcome, b.Outcome)
	}
	if got := s.State().CurrentStreak; got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}
