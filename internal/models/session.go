package models

import "time"

// SessionStatus tracks the lifecycle of a screening session. The transition
// open -> time_up is monotonic and never reversed within a session; completed
// is entered once a prediction has been recorded.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionTimeUp    SessionStatus = "time_up"
	SessionCompleted SessionStatus = "completed"
)

// ScreeningSession accumulates the state of one user's screening run:
// the sampled questions, the generated memory sequence, per-section scores
// and the eventual prediction. There is exactly one actor per session, so
// fields are mutated strictly sequentially.
type ScreeningSession struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Status    SessionStatus `json:"status"`

	// Per-session question material.
	VocabQuestions []VocabQuestion `json:"vocab_questions"`
	DigitSequence  []int           `json:"digit_sequence"`

	Scores map[QuizSection]QuizScore `json:"scores"`

	Risk        *RiskLevel `json:"risk,omitempty"`
	PredictedAt *time.Time `json:"predicted_at,omitempty"`
}

// Elapsed returns the wall-clock time since the session started.
func (s *ScreeningSession) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// HasScore reports whether a section has already been submitted.
func (s *ScreeningSession) HasScore(section QuizSection) bool {
	_, ok := s.Scores[section]
	return ok
}

// RecordScore stores a section score, initializing the map on first use.
func (s *ScreeningSession) RecordScore(section QuizSection, score QuizScore) {
	if s.Scores == nil {
		s.Scores = make(map[QuizSection]QuizScore)
	}
	s.Scores[section] = score
}

// SectionValue returns the normalized score for a section, defaulting a
// never-submitted section to 0 so partial sessions still produce a usable
// feature vector.
func (s *ScreeningSession) SectionValue(section QuizSection) float64 {
	if score, ok := s.Scores[section]; ok {
		return score.Value
	}
	return 0
}

// LockIfExpired flips an open session to time_up when the limit has passed.
// It reports whether submissions are locked. Recorded scores are preserved;
// completed sessions stay completed.
func (s *ScreeningSession) LockIfExpired(now time.Time, limit time.Duration) bool {
	if s.Status == SessionOpen && s.Elapsed(now) > limit {
		s.Status = SessionTimeUp
	}
	return s.Status != SessionOpen
}
