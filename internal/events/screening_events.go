package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// EventType represents different types of screening events
type EventType string

const (
	EventSessionStarted     EventType = "screening.session_started"
	EventSectionScored      EventType = "screening.section_scored"
	EventSessionTimeUp      EventType = "screening.session_time_up"
	EventScreeningCompleted EventType = "screening.completed"
)

const eventSource = "screening-service"

// ScreeningEvent is the base event structure for all screening events
type ScreeningEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
}

type SectionScoredData struct {
	Section   models.QuizSection `json:"section"`
	Points    float64            `json:"points"`
	MaxPoints float64            `json:"max_points"`
	Value     float64            `json:"value"`
}

type ScreeningCompletedData struct {
	Risk     models.RiskLevel     `json:"risk"`
	Features models.FeatureVector `json:"features"`
}

func newEvent(eventType EventType, sessionID string, data any) *ScreeningEvent {
	return &ScreeningEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   "1.0",
		SessionID: sessionID,
		Data:      data,
	}
}

func NewSessionStartedEvent(sessionID string) *ScreeningEvent {
	return newEvent(EventSessionStarted, sessionID, nil)
}

func NewSectionScoredEvent(sessionID string, section models.QuizSection, score models.QuizScore) *ScreeningEvent {
	return newEvent(EventSectionScored, sessionID, SectionScoredData{
		Section:   section,
		Points:    score.Points,
		MaxPoints: score.MaxPoints,
		Value:     score.Value,
	})
}

func NewSessionTimeUpEvent(sessionID string) *ScreeningEvent {
	return newEvent(EventSessionTimeUp, sessionID, nil)
}

func NewScreeningCompletedEvent(sessionID string, risk models.RiskLevel, features models.FeatureVector) *ScreeningEvent {
	return newEvent(EventScreeningCompleted, sessionID, ScreeningCompletedData{
		Risk:     risk,
		Features: features,
	})
}
