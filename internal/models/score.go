package models

// QuizScore is the normalized result for one quiz section. Points and
// MaxPoints are surfaced to the user alongside the normalized value so
// every score can be displayed as a fraction.
type QuizScore struct {
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
	Value     float64 `json:"value"` // Points / MaxPoints, always in [0,1]
	Answered  bool    `json:"answered"`

	// Breakdown carries per-sub-task values for sections composed of
	// multiple parts (visual and audio discrimination).
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// NewQuizScore builds a QuizScore from raw points, clamping the normalized
// value into [0,1].
func NewQuizScore(points, maxPoints float64) QuizScore {
	s := QuizScore{
		Points:    points,
		MaxPoints: maxPoints,
		Answered:  true,
	}
	if maxPoints > 0 {
		s.Value = points / maxPoints
	}
	if s.Value < 0 {
		s.Value = 0
	}
	if s.Value > 1 {
		s.Value = 1
	}
	return s
}

// RiskLevel is the three-tier screening outcome.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
)

// RiskFromClass maps the classifier's ordinal class onto a risk level.
// The mapping is fixed by the training convention (0 -> high, 1 -> moderate,
// anything else -> low); changing it requires retraining the artifact.
func RiskFromClass(class int) RiskLevel {
	switch class {
	case 0:
		return RiskHigh
	case 1:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Description renders the user-facing risk sentence.
func (r RiskLevel) Description() string {
	switch r {
	case RiskHigh:
		return "There is a high chance of the applicant having dyslexia."
	case RiskModerate:
		return "There is a moderate chance of the applicant having dyslexia."
	default:
		return "There is a low chance of the applicant having dyslexia."
	}
}
