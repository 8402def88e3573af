package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/resetdopa/engine/internal/domain"
)

// statusFor maps policy violations to HTTP statuses. Everything in the
// domain error set is a user-facing rejection, never a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUrgeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidUrgeOutcome),
		errors.Is(err, domain.ErrAnchorCount):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func (s *Server) handleProgramDay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":     s.session.CurrentProgramDay(),
		"dateKey": s.session.TodayDateKey(),
	})
}

func (s *Server) handleDayTasks(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}

	picks := s.session.EnsurePicksForDay(day)
	st := s.session.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":         day,
		"tasks":       picks,
		"completions": st.TodayCompletions[day],
	})
}

func (s *Server) handleSetAnchors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Titles []string `json:"titles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.session.SetWeek1Anchors(req.Titles); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.session.ApplyWeek1Rotation()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"anchors": s.session.State().Week1Anchors,
	})
}

func (s *Server) handleResetStart(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ResetProgramStartDate(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":    s.session.CurrentProgramDay(),
		"resets": s.session.State().StartDateResets,
	})
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Days == 0 {
		req.Days = 1
	}
	day := s.session.AdvanceProgramDay(req.Days)
	writeJSON(w, http.StatusOK, map[string]interface{}{"day": day})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day   int    `json:"day"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	dec, err := s.session.ToggleTaskCompletion(req.Day, req.Title)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decision":   dec,
		"calmPoints": s.session.State().CalmPoints,
	})
}

// ─── Urges ──────────────────────────────────────────────────────────────────

func (s *Server) handleListUrges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"urges": s.session.Urges(),
	})
}

func (s *Server) handleLogUrge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emotion   string `json:"emotion"`
		Note      string `json:"note"`
		Intensity int    `json:"intensity"`
		Trigger   string `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := s.session.LogUrge(req.Emotion, req.Note, req.Intensity, req.Trigger)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUrgeOutcome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.session.SetUrgeOutcome(id, domain.UrgeOutcome(req.Outcome)); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Metrics & adherence ────────────────────────────────────────────────────

func (s *Server) handleDailyMetrics(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	m, ok := s.session.DailyMetricsFor(date)
	if !ok {
		writeError(w, http.StatusNotFound, "no metrics for "+date)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRecentMetrics(w http.ResponseWriter, r *http.Request) {
	n := 7
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": s.session.RecentMetrics(n),
	})
}

func (s *Server) handleAdherence(w http.ResponseWriter, r *http.Request) {
	window := 7
	if v := r.URL.Query().Get("window"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = parsed
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window":    window,
		"adherence": s.session.Adherence(window),
	})
}

// ─── Streak, badges, summary ────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	st := s.session.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak": st.CurrentStreak,
		"day":    s.session.CurrentProgramDay(),
		"grace":  s.session.GraceStatus(),
		"banner": s.session.Banner(),
	})
}

func (s *Server) handleRollover(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decision": s.session.ApplyRolloverOnce(),
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": s.session.Badges(),
	})
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	if err := s.session.CompleteDailyQuest(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quest":      s.session.DailyQuest(),
		"calmPoints": s.session.State().CalmPoints,
	})
}

func (s *Server) handleSetMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mood == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}
	s.session.SetMood(req.Mood)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	st := s.session.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":             s.session.CurrentProgramDay(),
		"streak":          st.CurrentStreak,
		"calmPoints":      st.CalmPoints,
		"adherence":       s.session.Adherence(7),
		"badges":          st.Badges,
		"quest":           s.session.DailyQuest(),
		"mood":            s.session.Mood(),
		"quote":           s.session.QuoteOfTheDay(),
		"recommendations": s.session.Recommendations(3),
	})
}
