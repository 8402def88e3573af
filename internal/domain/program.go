// Package domain defines the ResetDopa program model.
// One ProgramState aggregate per user: start date, streak, calm points,
// daily picks and completions, urge log, grace days, and badges.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProgramLengthDays is the length of the structured program.
// Days beyond it run in maintenance mode.
const ProgramLengthDays = 30

// CategoryCount is the size of the task category taxonomy.
const CategoryCount = 8

// MaxStartDateResets caps how often a user may restart the program clock.
const MaxStartDateResets = 2

// ─── Aggregate ──────────────────────────────────────────────────────────────

// ProgramState is the root aggregate for one user. Every field maps to one
// top-level document field in the durable store, so partial writes can merge
// field-by-field.
type ProgramState struct {
	StartDate    time.Time `json:"startDate"`
	DevDayOffset int       `json:"devDayOffset"`

	CurrentStreak int `json:"currentStreak"`
	CalmPoints    int `json:"calmPoints"`

	TodayPicks       map[int][]string        `json:"todayPicks"`
	TodayCompletions map[int]map[string]bool `json:"todayCompletions"`

	UrgeLog []UrgeEntry `json:"urgeLog"`

	GraceDayDates []string `json:"graceDayDates"`

	// Idempotency markers. A program day is scored by at most one path:
	// same-day evaluation or the overnight rollover.
	LastStreakDayCounted         int `json:"lastStreakDayCounted"`
	StreakEvaluatedForDay        int `json:"streakEvaluatedForDay"`
	LastRolloverPrevDayEvaluated int `json:"lastRolloverPrevDayEvaluated"`

	Week1Anchors              []string `json:"week1Anchors"`
	Week1RotationApplied      bool     `json:"week1RotationApplied"`
	Week1Completed            bool     `json:"week1Completed"`
	BackfillDisabledBeforeDay int      `json:"backfillDisabledBeforeDay"`

	// DailyMetrics is a derived cache keyed by date key. Rebuildable at any
	// time from picks, completions, and the urge log.
	DailyMetrics map[string]DailyMetrics `json:"dailyMetrics"`

	Badges []string `json:"badges"`

	StartDateResets int `json:"startDateResets"`

	DailyQuests map[string]QuestState `json:"dailyQuests"`
	DailyMood   map[string]string     `json:"dailyMood"`
}

// NewProgramState returns the all-zero beginner state with Program Day 1
// anchored at the local midnight of start.
func NewProgramState(start time.Time) ProgramState {
	return ProgramState{
		StartDate:        Midnight(start),
		TodayPicks:       map[int][]string{},
		TodayCompletions: map[int]map[string]bool{},
		DailyMetrics:     map[string]DailyMetrics{},
		DailyQuests:      map[string]QuestState{},
		DailyMood:        map[string]string{},
	}
}

// Fields returns every persistable field keyed by document field name.
// Used for full-state commits (first run, beginner reset).
func (s ProgramState) Fields() map[string]any {
	return map[string]any{
		"startDate":                    s.StartDate,
		"devDayOffset":                 s.DevDayOffset,
		"currentStreak":                s.CurrentStreak,
		"calmPoints":                   s.CalmPoints,
		"todayPicks":                   s.TodayPicks,
		"todayCompletions":             s.TodayCompletions,
		"urgeLog":                      s.UrgeLog,
		"graceDayDates":                s.GraceDayDates,
		"lastStreakDayCounted":         s.LastStreakDayCounted,
		"streakEvaluatedForDay":        s.StreakEvaluatedForDay,
		"lastRolloverPrevDayEvaluated": s.LastRolloverPrevDayEvaluated,
		"week1Anchors":                 s.Week1Anchors,
		"week1RotationApplied":         s.Week1RotationApplied,
		"week1Completed":               s.Week1Completed,
		"backfillDisabledBeforeDay":    s.BackfillDisabledBeforeDay,
		"dailyMetrics":                 s.DailyMetrics,
		"badges":                       s.Badges,
		"startDateResets":              s.StartDateResets,
		"dailyQuests":                  s.DailyQuests,
		"dailyMood":                    s.DailyMood,
	}
}

// ApplyField decodes one stored document field into the aggregate.
// Unknown fields are ignored so older records load cleanly.
func (s *ProgramState) ApplyField(name string, raw json.RawMessage) error {
	var err error
	switch name {
	case "startDate":
		err = json.Unmarshal(raw, &s.StartDate)
	case "devDayOffset":
		err = json.Unmarshal(raw, &s.DevDayOffset)
	case "currentStreak":
		err = json.Unmarshal(raw, &s.CurrentStreak)
	case "calmPoints":
		err = json.Unmarshal(raw, &s.CalmPoints)
	case "todayPicks":
		err = json.Unmarshal(raw, &s.TodayPicks)
	case "todayCompletions":
		err = json.Unmarshal(raw, &s.TodayCompletions)
	case "urgeLog":
		err = json.Unmarshal(raw, &s.UrgeLog)
	case "graceDayDates":
		err = json.Unmarshal(raw, &s.GraceDayDates)
	case "lastStreakDayCounted":
		err = json.Unmarshal(raw, &s.LastStreakDayCounted)
	case "streakEvaluatedForDay":
		err = json.Unmarshal(raw, &s.StreakEvaluatedForDay)
	case "lastRolloverPrevDayEvaluated":
		err = json.Unmarshal(raw, &s.LastRolloverPrevDayEvaluated)
	case "week1Anchors":
		err = json.Unmarshal(raw, &s.Week1Anchors)
	case "week1RotationApplied":
		err = json.Unmarshal(raw, &s.Week1RotationApplied)
	case "week1Completed":
		err = json.Unmarshal(raw, &s.Week1Completed)
	case "backfillDisabledBeforeDay":
		err = json.Unmarshal(raw, &s.BackfillDisabledBeforeDay)
	case "dailyMetrics":
		err = json.Unmarshal(raw, &s.DailyMetrics)
	case "badges":
		err = json.Unmarshal(raw, &s.Badges)
	case "startDateResets":
		err = json.Unmarshal(raw, &s.StartDateResets)
	case "dailyQuests":
		err = json.Unmarshal(raw, &s.DailyQuests)
	case "dailyMood":
		err = json.Unmarshal(raw, &s.DailyMood)
	}
	if err != nil {
		return fmt.Errorf("decode field %s: %w", name, err)
	}
	return nil
}

// ─── Urge Log ───────────────────────────────────────────────────────────────

// UrgeOutcome records how a logged urge ended.
type UrgeOutcome string

const (
	UrgeResisted UrgeOutcome = "resisted"
	UrgeSlipped  UrgeOutcome = "slipped"
)

// UrgeEntry is one logged urge. Outcome stays empty until the user reports
// how it resolved.
type UrgeEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Emotion   string      `json:"emotion"`
	Note      string      `json:"note"`
	Intensity int         `json:"intensity"`
	Trigger   string      `json:"trigger"`
	Outcome   UrgeOutcome `json:"outcome,omitempty"`
}

// ─── Daily Metrics ──────────────────────────────────────────────────────────

// DailyMetrics is the derived per-date summary shown on the dashboard.
type DailyMetrics struct {
	DateKey           string  `json:"dateKey"`
	Urges             int     `json:"urges"`
	Completions       int     `json:"completions"`
	Target            int     `json:"target"`
	Adherence         float64 `json:"adherence"`
	Variety           float64 `json:"variety"`
	CategoriesCovered int     `json:"categoriesCovered"`
	CalmDelta         int     `json:"calmDelta"`
	Streak            int     `json:"streak"`
}

// ─── Tasks, Quests, Badges ──────────────────────────────────────────────────

// TaskPick is one generated task assignment.
type TaskPick struct {
	Title    string `json:"title"`
	Points   int    `json:"points"`
	Category string `json:"category"`
}

// QuestState is the per-date daily micro-challenge.
type QuestState struct {
	Title  string `json:"title"`
	Points int    `json:"points"`
	Done   bool   `json:"done"`
}

// ─── Streak Decisions ───────────────────────────────────────────────────────

// StreakOutcome labels the result of one evaluator run.
type StreakOutcome string

const (
	OutcomeAdvanced         StreakOutcome = "advanced"
	OutcomeAlreadyCounted   StreakOutcome = "already_counted"
	OutcomeGuidance         StreakOutcome = "guidance"
	OutcomeWarning          StreakOutcome = "warning"
	OutcomeGrace            StreakOutcome = "grace"
	OutcomeGraceUnavailable StreakOutcome = "grace_unavailable"
	OutcomeHold             StreakOutcome = "hold"
	OutcomeReset            StreakOutcome = "reset"
	OutcomeSkipped          StreakOutcome = "skipped"
)

// StreakDecision is the user-visible result of a streak evaluation.
type StreakDecision struct {
	Outcome StreakOutcome `json:"outcome"`
	Day     int           `json:"day"`
	Streak  int           `json:"streak"`
	Message string        `json:"message"`
}

// RolloverBanner is the morning-after banner describing what the overnight
// evaluation decided.
type RolloverBanner struct {
	Kind    StreakOutcome `json:"kind"`
	Day     int           `json:"day"`
	Message string        `json:"message"`
}

// GraceStatus reports whether a grace day could currently be consumed.
type GraceStatus struct {
	Available   bool `json:"available"`
	LastUsedDay int  `json:"lastUsedDay"` // 0 if never used
}

// ─── Thresholds & Targets ───────────────────────────────────────────────────

// RampThreshold returns the adherence needed to advance the streak on the
// given program day. Ramps through the 30-day program, then settles at the
// maintenance level.
func RampThreshold(day int) float64 {
	switch {
	case day <= 7:
		return 0.50
	case day <= 14:
		return 0.60
	case day <= 21:
		return 0.65
	case day > ProgramLengthDays:
		return 0.60
	default:
		return 0.70
	}
}

// DefaultTarget is the assumed task count when a day has no generated picks.
func DefaultTarget(day int) int {
	if day <= 7 {
		return 5
	}
	return 6
}

// ─── Program-Day Clock ──────────────────────────────────────────────────────

// Midnight truncates t to local calendar midnight.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ProgramDayAt computes the 1-based program day for the given wall-clock
// instant. devOffset shifts the virtual date for testing and demos.
// Calendar-midnight truncation keeps the result stable across the day.
func ProgramDayAt(start, now time.Time, devOffset int) int {
	if start.IsZero() {
		return 1
	}
	days := int(Midnight(now).Sub(Midnight(start)).Hours() / 24)
	day := days + 1 + devOffset
	if day < 1 {
		day = 1
	}
	return day
}

// DateKeyAt returns the virtual "YYYY-MM-DD" key for the given instant,
// shifted by devOffset days.
func DateKeyAt(now time.Time, devOffset int) string {
	return now.AddDate(0, 0, devOffset).Format("2006-01-02")
}

// ─── Grace Keys ─────────────────────────────────────────────────────────────

// GraceKey encodes a program day as a grace-day identifier.
func GraceKey(day int) string {
	return fmt.Sprintf("day_%d", day)
}

// ParseGraceDay extracts the program day from a grace-day identifier.
// Returns 0 for malformed keys.
func ParseGraceDay(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "day_"))
	if err != nil {
		return 0
	}
	return n
}
