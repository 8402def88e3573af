package session

import (
	"github.com/google/uuid"

	"github.com/resetdopa/engine/internal/app/badge"
	"github.com/resetdopa/engine/internal/app/catalog"
	"github.com/resetdopa/engine/internal/domain"
	prom "github.com/resetdopa/engine/internal/infra/metrics"
	"github.com/resetdopa/engine/internal/notify"
)

// urgeLogPoints is the small reward for the act of logging an urge.
const urgeLogPoints = 2

// LogUrge appends an urge entry and returns its id. Logging itself earns a
// couple of calm points; the outcome is reported later.
func (s *Session) LogUrge(emotion, note string, intensity int, trigger string) string {
	var id string
	s.do(func() {
		id = uuid.NewString()
		s.st.UrgeLog = append(s.st.UrgeLog, domain.UrgeEntry{
			ID:        id,
			Timestamp: s.now(),
			Emotion:   emotion,
			Note:      note,
			Intensity: intensity,
			Trigger:   trigger,
		})
		s.st.CalmPoints += urgeLogPoints
		prom.UrgesLogged.WithLabelValues("pending").Inc()
		s.persist(map[string]any{
			"urgeLog":    s.st.UrgeLog,
			"calmPoints": s.st.CalmPoints,
		})
		s.publishGauges()
		s.refreshMetricsLocked(s.currentDay())
		s.checkBadgesLocked()
	})
	return id
}

// SetUrgeOutcome records how a logged urge resolved.
func (s *Session) SetUrgeOutcome(id string, outcome domain.UrgeOutcome) error {
	var err error
	s.do(func() {
		if outcome != domain.UrgeResisted && outcome != domain.UrgeSlipped {
			err = domain.ErrInvalidUrgeOutcome
			return
		}
		for i := range s.st.UrgeLog {
			if s.st.UrgeLog[i].ID == id {
				s.st.UrgeLog[i].Outcome = outcome
				prom.UrgesLogged.WithLabelValues(string(outcome)).Inc()
				s.persist(map[string]any{"urgeLog": s.st.UrgeLog})
				return
			}
		}
		err = domain.ErrUrgeNotFound
	})
	return err
}

// Urges returns a copy of the urge log, newest last.
func (s *Session) Urges() []domain.UrgeEntry {
	var out []domain.UrgeEntry
	s.do(func() { out = append([]domain.UrgeEntry(nil), s.st.UrgeLog...) })
	return out
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// Badges returns the unlocked badge ids.
func (s *Session) Badges() []string {
	var out []string
	s.do(func() { out = append([]string(nil), s.st.Badges...) })
	return out
}

// CheckBadges re-evaluates badge thresholds and returns newly unlocked
// definitions.
func (s *Session) CheckBadges() []badge.Def {
	var unlocked []badge.Def
	s.do(func() { unlocked = s.checkBadgesLocked() })
	return unlocked
}

func (s *Session) checkBadgesLocked() []badge.Def {
	snap := badge.Snapshot{
		Streak:         s.st.CurrentStreak,
		TasksCompleted: s.totalCompletions(),
		CalmPoints:     s.st.CalmPoints,
		UrgeCount:      len(s.st.UrgeLog),
	}
	unlocked := badge.CheckAndClaim(s.st.Badges, snap)
	if len(unlocked) == 0 {
		return nil
	}
	for _, def := range unlocked {
		s.st.Badges = append(s.st.Badges, def.ID)
		prom.BadgesUnlocked.Inc()
		s.send(notify.BadgeUnlocked(def.Title, def.Message))
	}
	s.persist(map[string]any{"badges": s.st.Badges})
	return unlocked
}

func (s *Session) totalCompletions() int {
	n := 0
	for _, day := range s.st.TodayCompletions {
		n += countDone(day)
	}
	return n
}

// ─── Daily Quest ────────────────────────────────────────────────────────────

// DailyQuest returns today's micro-challenge, assigning one if absent.
// Difficulty scales with rolling adherence; the dominant recent urge
// emotion can override the pick.
func (s *Session) DailyQuest() domain.QuestState {
	var q domain.QuestState
	s.do(func() {
		key := domain.DateKeyAt(s.now(), s.st.DevDayOffset)
		if existing, ok := s.st.DailyQuests[key]; ok {
			q = existing
			return
		}
		title := catalog.DailyQuest(s.adherenceWindow(7), catalog.TopEmotion(s.st.UrgeLog, s.now()))
		q = domain.QuestState{Title: title, Points: catalog.QuestPoints}
		s.st.DailyQuests[key] = q
		s.persist(map[string]any{"dailyQuests": s.st.DailyQuests})
	})
	return q
}

// CompleteDailyQuest marks today's quest done and awards its points.
func (s *Session) CompleteDailyQuest() error {
	var err error
	s.do(func() {
		key := domain.DateKeyAt(s.now(), s.st.DevDayOffset)
		q, ok := s.st.DailyQuests[key]
		if !ok {
			err = domain.ErrNoQuestToday
			return
		}
		if q.Done {
			err = domain.ErrQuestAlreadyDone
			return
		}
		q.Done = true
		s.st.DailyQuests[key] = q
		s.st.CalmPoints += q.Points
		s.persist(map[string]any{
			"dailyQuests": s.st.DailyQuests,
			"calmPoints":  s.st.CalmPoints,
		})
		s.publishGauges()
		s.checkBadgesLocked()
	})
	return err
}
