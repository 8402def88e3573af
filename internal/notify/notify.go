// Package notify delivers local program notifications.
//
// Policy:
//   - Hard daily cap on delivered notifications
//   - Quiet hours (default 22:00–08:00) suppress delivery
//   - Milestone, badge, threshold, mood and daily-reminder kinds only
package notify

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	KindMilestone     Kind = "milestone"
	KindThreshold     Kind = "threshold"
	KindBadge         Kind = "badge"
	KindMoodCheck     Kind = "mood_check"
	KindDailyReminder Kind = "daily_reminder"
)

// Notification is a single message to surface to the user.
type Notification struct {
	Kind  Kind
	Title string
	Body  string
}

// Sink delivers notifications to the user.
type Sink interface {
	Deliver(n Notification) error
}

// LogSink writes notifications to the process log. The default sink when
// no platform integration is configured.
type LogSink struct{}

func (LogSink) Deliver(n Notification) error {
	log.Printf("[notify] %s: %s: %s", n.Kind, n.Title, n.Body)
	return nil
}

// Policy limits when and how often notifications are delivered.
type Policy struct {
	QuietStart string // "HH:MM"
	QuietEnd   string // "HH:MM"
	MaxPerDay  int
}

// DefaultPolicy returns the standard delivery policy.
func DefaultPolicy() Policy {
	return Policy{
		QuietStart: "22:00",
		QuietEnd:   "08:00",
		MaxPerDay:  3,
	}
}

// QuietAt returns true if t falls within the policy's quiet hours.
func (p Policy) QuietAt(t time.Time) bool {
	startHour, startMin := parseHHMM(p.QuietStart)
	endHour, endMin := parseHHMM(p.QuietEnd)

	timeMinutes := t.Hour()*60 + t.Minute()
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	if startMinutes > endMinutes {
		// Wraps midnight: e.g., 22:00 – 08:00
		return timeMinutes >= startMinutes || timeMinutes < endMinutes
	}
	return timeMinutes >= startMinutes && timeMinutes < endMinutes
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}

// Scheduler applies delivery policy and runs delayed notifications.
type Scheduler struct {
	sink   Sink
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	sentDate  string
	sentCount int
	timers    []*time.Timer
	stopped   bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock overrides the scheduler's time source.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithPolicy overrides the delivery policy.
func WithPolicy(p Policy) SchedulerOption {
	return func(s *Scheduler) { s.policy = p }
}

// NewScheduler creates a scheduler delivering through sink.
func NewScheduler(sink Sink, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sink:   sink,
		policy: DefaultPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers n immediately if policy allows. Returns true if delivered,
// false if suppressed by quiet hours or the daily cap.
func (s *Scheduler) Send(n Notification) (bool, error) {
	now := s.now()
	if s.policy.QuietAt(now) {
		return false, nil
	}

	s.mu.Lock()
	today := now.Format("2006-01-02")
	if s.sentDate != today {
		s.sentDate = today
		s.sentCount = 0
	}
	if s.sentCount >= s.policy.MaxPerDay {
		s.mu.Unlock()
		return false, nil
	}
	s.sentCount++
	s.mu.Unlock()

	if err := s.sink.Deliver(n); err != nil {
		return false, fmt.Errorf("deliver notification: %w", err)
	}
	return true, nil
}

// ScheduleAfter delivers n after d, subject to policy at fire time.
func (s *Scheduler) ScheduleAfter(d time.Duration, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	t := time.AfterFunc(d, func() {
		if _, err := s.Send(n); err != nil {
			log.Printf("[notify] scheduled delivery failed: %v", err)
		}
	})
	s.timers = append(s.timers, t)
}

// ScheduleAt delivers n at the given wall time. Past times fire immediately.
func (s *Scheduler) ScheduleAt(at time.Time, n Notification) {
	d := at.Sub(s.now())
	if d < 0 {
		d = 0
	}
	s.ScheduleAfter(d, n)
}

// Stop cancels all pending scheduled notifications.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// ─── Builders ───────────────────────────────────────────────────────────────

// Milestone builds a program-day milestone notification.
func Milestone(day int) Notification {
	return Notification{
		Kind:  KindMilestone,
		Title: fmt.Sprintf("Day %d milestone", day),
		Body:  fmt.Sprintf("You reached day %d of your reset. Keep the momentum going.", day),
	}
}

// ThresholdWarning builds a notification for a day at risk of falling
// below its adherence threshold.
func ThresholdWarning(remaining int) Notification {
	return Notification{
		Kind:  KindThreshold,
		Title: "Your streak needs attention",
		Body:  fmt.Sprintf("Complete %d more task(s) today to keep your streak alive.", remaining),
	}
}

// BadgeUnlocked builds a badge unlock notification.
func BadgeUnlocked(title, message string) Notification {
	return Notification{
		Kind:  KindBadge,
		Title: "Badge unlocked: " + title,
		Body:  message,
	}
}

// MoodCheck builds the evening mood check-in prompt.
func MoodCheck() Notification {
	return Notification{
		Kind:  KindMoodCheck,
		Title: "How are you feeling?",
		Body:  "Take 10 seconds to log today's mood.",
	}
}

// DailyReminder builds the morning task reminder.
func DailyReminder(day int) Notification {
	return Notification{
		Kind:  KindDailyReminder,
		Title: fmt.Sprintf("Day %d is ready", day),
		Body:  "Your tasks for today are waiting.",
	}
}
