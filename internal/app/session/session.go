// Package session owns the in-memory program state for one user and runs
// every mutation through a single serialized queue. The queue is what makes
// the streak evaluator's read-decide-mark sequence atomic: two rapid
// completion taps cannot interleave and double-increment.
package session

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/resetdopa/engine/internal/app/catalog"
	"github.com/resetdopa/engine/internal/domain"
	prom "github.com/resetdopa/engine/internal/infra/metrics"
	"github.com/resetdopa/engine/internal/notify"
)

// Gateway is the persistence surface the session commits through.
type Gateway interface {
	Load() (map[string]json.RawMessage, error)
	Commit(fields map[string]any) error
	Flush()
}

// Notifier delivers local notifications. Delivery is fire-and-forget.
type Notifier interface {
	Send(n notify.Notification) (bool, error)
}

// Session holds one user's program state. All public methods are safe for
// concurrent use; internally everything funnels through one worker.
type Session struct {
	gw       Gateway
	notifier Notifier
	now      func() time.Time

	st domain.ProgramState

	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once

	// In-memory fast-path copies of the persisted idempotency markers.
	// Reconciled at load time; the persisted value wins.
	evaluatedDayMem int
	rolloverMem     int

	banner *domain.RolloverBanner
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithNotifier attaches a notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// Load reads the stored record through gw and starts the session worker.
// A missing record is first run: a beginner state is synthesized and
// committed.
func Load(gw Gateway, opts ...Option) (*Session, error) {
	s := &Session{
		gw:    gw,
		now:   time.Now,
		queue: make(chan func(), 32),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	fields, err := gw.Load()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		s.st = domain.NewProgramState(s.now())
		if err := gw.Commit(s.st.Fields()); err != nil {
			log.Printf("[session] first-run commit failed: %v", err)
		}
	} else {
		s.st = domain.NewProgramState(s.now())
		for name, raw := range fields {
			if err := s.st.ApplyField(name, raw); err != nil {
				log.Printf("[session] skipping bad field %s: %v", name, err)
			}
		}
	}

	s.evaluatedDayMem = s.st.StreakEvaluatedForDay
	s.rolloverMem = s.st.LastRolloverPrevDayEvaluated
	s.publishGauges()

	go s.worker()
	return s, nil
}

func (s *Session) worker() {
	defer close(s.done)
	for fn := range s.queue {
		fn()
	}
}

// do runs fn on the session worker and waits for it to finish. Every state
// access goes through here so there is exactly one goroutine touching st.
func (s *Session) do(fn func()) {
	ack := make(chan struct{})
	s.queue <- func() {
		fn()
		close(ack)
	}
	<-ack
}

// Flush forces staged writes to durable storage.
func (s *Session) Flush() {
	s.gw.Flush()
}

// Close flushes and stops the worker.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
		<-s.done
		s.gw.Flush()
	})
}

// persist stages field updates. Write failures are the gateway's problem;
// the in-memory decision stands either way.
func (s *Session) persist(fields map[string]any) {
	if err := s.gw.Commit(fields); err != nil {
		log.Printf("[session] commit failed: %v", err)
	}
}

func (s *Session) publishGauges() {
	prom.CurrentStreak.Set(float64(s.st.CurrentStreak))
	prom.CalmPoints.Set(float64(s.st.CalmPoints))
	prom.ProgramDay.Set(float64(s.currentDay()))
}

func (s *Session) send(n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(n); err != nil {
		log.Printf("[session] notification failed: %v", err)
	}
}

// ─── Clock ──────────────────────────────────────────────────────────────────

func (s *Session) currentDay() int {
	return domain.ProgramDayAt(s.st.StartDate, s.now(), s.st.DevDayOffset)
}

// CurrentProgramDay returns today's 1-based program day.
func (s *Session) CurrentProgramDay() int {
	var day int
	s.do(func() { day = s.currentDay() })
	return day
}

// TodayDateKey returns today's virtual "YYYY-MM-DD" key.
func (s *Session) TodayDateKey() string {
	var key string
	s.do(func() { key = domain.DateKeyAt(s.now(), s.st.DevDayOffset) })
	return key
}

// dateKeyForDay maps a program day to its virtual calendar date.
func (s *Session) dateKeyForDay(day int) string {
	return domain.Midnight(s.st.StartDate).AddDate(0, 0, day-1).Format("2006-01-02")
}

// AdvanceProgramDay shifts the virtual clock forward by n days. Testing and
// demo use only.
func (s *Session) AdvanceProgramDay(n int) int {
	var day int
	s.do(func() {
		s.st.DevDayOffset += n
		day = s.currentDay()
		s.persist(map[string]any{"devDayOffset": s.st.DevDayOffset})
		s.publishGauges()
	})
	return day
}

// SetVirtualDay jumps the virtual clock so the current program day equals
// day.
func (s *Session) SetVirtualDay(day int) int {
	var got int
	s.do(func() {
		natural := domain.ProgramDayAt(s.st.StartDate, s.now(), 0)
		s.st.DevDayOffset = day - natural
		got = s.currentDay()
		s.persist(map[string]any{"devDayOffset": s.st.DevDayOffset})
		s.publishGauges()
	})
	return got
}

// ─── State views ────────────────────────────────────────────────────────────

// State returns a deep-enough copy of the aggregate for read-only display.
func (s *Session) State() domain.ProgramState {
	var out domain.ProgramState
	s.do(func() { out = snapshot(s.st) })
	return out
}

func snapshot(st domain.ProgramState) domain.ProgramState {
	out := st
	out.TodayPicks = make(map[int][]string, len(st.TodayPicks))
	for d, titles := range st.TodayPicks {
		out.TodayPicks[d] = append([]string(nil), titles...)
	}
	out.TodayCompletions = make(map[int]map[string]bool, len(st.TodayCompletions))
	for d, m := range st.TodayCompletions {
		cp := make(map[string]bool, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out.TodayCompletions[d] = cp
	}
	out.UrgeLog = append([]domain.UrgeEntry(nil), st.UrgeLog...)
	out.GraceDayDates = append([]string(nil), st.GraceDayDates...)
	out.Week1Anchors = append([]string(nil), st.Week1Anchors...)
	out.Badges = append([]string(nil), st.Badges...)
	out.DailyMetrics = make(map[string]domain.DailyMetrics, len(st.DailyMetrics))
	for k, v := range st.DailyMetrics {
		out.DailyMetrics[k] = v
	}
	out.DailyQuests = make(map[string]domain.QuestState, len(st.DailyQuests))
	for k, v := range st.DailyQuests {
		out.DailyQuests[k] = v
	}
	out.DailyMood = make(map[string]string, len(st.DailyMood))
	for k, v := range st.DailyMood {
		out.DailyMood[k] = v
	}
	return out
}

// Banner returns the pending rollover banner, if any.
func (s *Session) Banner() *domain.RolloverBanner {
	var b *domain.RolloverBanner
	s.do(func() {
		if s.banner != nil {
			cp := *s.banner
			b = &cp
		}
	})
	return b
}

// DismissBanner clears the pending rollover banner.
func (s *Session) DismissBanner() {
	s.do(func() { s.banner = nil })
}

// ─── Program lifecycle ──────────────────────────────────────────────────────

// InitializeBeginnerState wipes the aggregate back to signup defaults and
// commits the full record.
func (s *Session) InitializeBeginnerState() {
	s.do(func() {
		s.st = domain.NewProgramState(s.now())
		s.evaluatedDayMem = 0
		s.rolloverMem = 0
		s.banner = nil
		s.persist(s.st.Fields())
		s.publishGauges()
	})
}

// ResetProgramStartDate restarts the 30-day clock at today. Urge history,
// calm points, badges, and anchors survive the reset. Capped at
// domain.MaxStartDateResets uses.
func (s *Session) ResetProgramStartDate() error {
	var err error
	s.do(func() {
		if s.st.StartDateResets >= domain.MaxStartDateResets {
			err = domain.ErrResetLimit
			return
		}
		s.st.StartDate = domain.Midnight(s.now())
		s.st.DevDayOffset = 0
		s.st.CurrentStreak = 0
		s.st.TodayPicks = map[int][]string{}
		s.st.TodayCompletions = map[int]map[string]bool{}
		s.st.GraceDayDates = nil
		s.st.LastStreakDayCounted = 0
		s.st.StreakEvaluatedForDay = 0
		s.st.LastRolloverPrevDayEvaluated = 0
		s.st.Week1RotationApplied = false
		s.st.Week1Completed = false
		s.st.BackfillDisabledBeforeDay = 0
		s.st.DailyMetrics = map[string]domain.DailyMetrics{}
		s.st.StartDateResets++
		s.evaluatedDayMem = 0
		s.rolloverMem = 0
		s.banner = nil
		s.persist(s.st.Fields())
		s.publishGauges()
	})
	return err
}

// ─── Mood, quote, recommendations ───────────────────────────────────────────

// SetMood records today's mood check-in.
func (s *Session) SetMood(mood string) {
	s.do(func() {
		key := domain.DateKeyAt(s.now(), s.st.DevDayOffset)
		s.st.DailyMood[key] = mood
		s.persist(map[string]any{"dailyMood": s.st.DailyMood})
	})
}

// Mood returns today's recorded mood, or "".
func (s *Session) Mood() string {
	var mood string
	s.do(func() {
		mood = s.st.DailyMood[domain.DateKeyAt(s.now(), s.st.DevDayOffset)]
	})
	return mood
}

// QuoteOfTheDay returns the deterministic daily quote, tiered by rolling
// adherence.
func (s *Session) QuoteOfTheDay() catalog.Quote {
	var q catalog.Quote
	s.do(func() {
		key := domain.DateKeyAt(s.now(), s.st.DevDayOffset)
		q = catalog.QuoteForDay(key, s.adherenceWindow(7))
	})
	return q
}

// Recommendations returns up to n tasks steered by recent urge emotions.
func (s *Session) Recommendations(n int) []domain.TaskPick {
	var picks []domain.TaskPick
	s.do(func() {
		picks = catalog.Recommend(s.st.UrgeLog, s.st.CurrentStreak, s.now(), n)
	})
	return picks
}
