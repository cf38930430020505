// Package predictor assembles section scores into the classifier's feature
// vector and adapts the trained artifact into a risk-level answer.
package predictor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/screening-service/internal/classifier"
	"github.com/SAP-F-2025/screening-service/internal/models"
)

var (
	// ErrModelUnavailable means no usable classifier artifact is loaded.
	// Fatal for prediction only; scoring continues without it.
	ErrModelUnavailable = errors.New("classifier artifact is not available")

	// ErrInvalidFeatureRange is the defensive guard on [0,1] features. The
	// scoring engine guarantees the range, so hitting this is a bug upstream.
	ErrInvalidFeatureRange = errors.New("feature value outside [0,1]")
)

// AssembleFeatures builds the fixed-order feature vector from a session's
// recorded scores. Sections that were never submitted contribute 0. The
// memory feature averages the two memory parts (digit sequence and word-list
// recall), matching the two-part memory test the model was trained against.
func AssembleFeatures(session *models.ScreeningSession, speed models.QuizScore) models.FeatureVector {
	memory := (session.SectionValue(models.SectionMemory) +
		session.SectionValue(models.SectionAudioRecall)) / 2

	return models.FeatureVector{
		LanguageVocab:        session.SectionValue(models.SectionVocabulary),
		Memory:               memory,
		Speed:                speed.Value,
		VisualDiscrimination: session.SectionValue(models.SectionVisual),
		AudioDiscrimination:  session.SectionValue(models.SectionAudioDiscrimination),
		SurveyScore:          session.SectionValue(models.SectionSurvey),
	}
}

// Predictor wraps the loaded artifact behind the risk-level contract.
type Predictor struct {
	artifact *classifier.Artifact
	logger   *slog.Logger
}

// New loads the artifact at path. A missing or corrupt artifact returns
// ErrModelUnavailable so the caller can keep the session alive without
// prediction support.
func New(artifactPath string, logger *slog.Logger) (*Predictor, error) {
	artifact, err := classifier.LoadArtifact(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	want := models.FeatureColumns()
	if len(artifact.FeatureNames) != len(want) {
		return nil, fmt.Errorf("%w: artifact has %d feature columns, want %d",
			ErrModelUnavailable, len(artifact.FeatureNames), len(want))
	}
	for i, name := range artifact.FeatureNames {
		if name != want[i] {
			return nil, fmt.Errorf("%w: artifact column %d is %q, want %q",
				ErrModelUnavailable, i, name, want[i])
		}
	}

	logger.Info("Classifier artifact loaded",
		"path", artifactPath,
		"trees", len(artifact.Forest.Trees))

	return &Predictor{artifact: artifact, logger: logger}, nil
}

// FromArtifact wraps an already-built artifact, mainly for tests and the
// offline trainer.
func FromArtifact(artifact *classifier.Artifact, logger *slog.Logger) *Predictor {
	return &Predictor{artifact: artifact, logger: logger}
}

// Predict validates the vector, runs the scale-then-vote pipeline and maps
// the ordinal class onto a risk level.
func (p *Predictor) Predict(vector models.FeatureVector) (models.RiskLevel, error) {
	if p == nil || p.artifact == nil {
		return "", ErrModelUnavailable
	}
	if err := vector.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFeatureRange, err)
	}

	values := vector.Values()
	class, err := p.artifact.Predict(values[:])
	if err != nil {
		return "", fmt.Errorf("prediction failed: %w", err)
	}

	risk := models.RiskFromClass(class)
	p.logger.Info("Prediction completed", "class", class, "risk", risk)
	return risk, nil
}
