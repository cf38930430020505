package predictor

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/classifier"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

// constantArtifact returns an artifact whose single-leaf forest always votes
// for the given class, with an identity scaler.
func constantArtifact(class int) *classifier.Artifact {
	cols := models.FeatureColumns()
	mean := make([]float64, len(cols))
	scale := []float64{1, 1, 1, 1, 1, 1}

	return &classifier.Artifact{
		Version:      classifier.ArtifactVersion,
		FeatureNames: cols[:],
		Scaler:       &classifier.StandardScaler{Mean: mean, Scale: scale},
		Forest: &classifier.Forest{
			NumClasses: 3,
			Trees: []classifier.Tree{
				{Nodes: []classifier.TreeNode{{Leaf: true, Class: class}}},
			},
		},
	}
}

func TestFeatureColumnOrder(t *testing.T) {
	// The column order is a contract with the trained artifact.
	assert.Equal(t, [6]string{
		"Language_vocab",
		"Memory",
		"Speed",
		"Visual_discrimination",
		"Audio_Discrimination",
		"Survey_Score",
	}, models.FeatureColumns())

	v := models.FeatureVector{
		LanguageVocab:        0.1,
		Memory:               0.2,
		Speed:                0.3,
		VisualDiscrimination: 0.4,
		AudioDiscrimination:  0.5,
		SurveyScore:          0.6,
	}
	assert.Equal(t, [6]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, v.Values())
}

func TestAssembleFeatures(t *testing.T) {
	session := &models.ScreeningSession{
		ID:        "s1",
		StartedAt: time.Now(),
		Status:    models.SessionOpen,
	}
	session.RecordScore(models.SectionVocabulary, models.NewQuizScore(4, 5))
	session.RecordScore(models.SectionMemory, models.NewQuizScore(1, 1))
	session.RecordScore(models.SectionAudioRecall, models.NewQuizScore(0, 1))

	speed := models.NewQuizScore(0.75, 1)
	vector := AssembleFeatures(session, speed)

	assert.InDelta(t, 0.8, vector.LanguageVocab, 1e-9)
	// Memory averages the digit-sequence and word-recall parts.
	assert.InDelta(t, 0.5, vector.Memory, 1e-9)
	assert.InDelta(t, 0.75, vector.Speed, 1e-9)

	// Never-submitted sections default to zero.
	assert.Zero(t, vector.VisualDiscrimination)
	assert.Zero(t, vector.AudioDiscrimination)
	assert.Zero(t, vector.SurveyScore)
}

func TestPredictLabelMapping(t *testing.T) {
	tests := []struct {
		class int
		want  models.RiskLevel
	}{
		{0, models.RiskHigh},
		{1, models.RiskModerate},
		{2, models.RiskLow},
	}

	vector := models.FeatureVector{LanguageVocab: 0.5, Memory: 0.5, Speed: 0.5,
		VisualDiscrimination: 0.5, AudioDiscrimination: 0.5, SurveyScore: 0.5}

	for _, tt := range tests {
		p := FromArtifact(constantArtifact(tt.class), testLogger())
		risk, err := p.Predict(vector)
		require.NoError(t, err)
		assert.Equal(t, tt.want, risk)
	}
}

func TestPredictRejectsOutOfRangeFeatures(t *testing.T) {
	p := FromArtifact(constantArtifact(0), testLogger())

	_, err := p.Predict(models.FeatureVector{LanguageVocab: 1.2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFeatureRange)

	_, err = p.Predict(models.FeatureVector{Memory: -0.1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFeatureRange)
}

func TestNewRejectsBadArtifacts(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "absent.json"), testLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("wrong column order", func(t *testing.T) {
		artifact := constantArtifact(0)
		artifact.FeatureNames[0], artifact.FeatureNames[1] = artifact.FeatureNames[1], artifact.FeatureNames[0]

		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, artifact.Save(path))

		_, err := New(path, testLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("valid artifact loads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, constantArtifact(1).Save(path))

		p, err := New(path, testLogger())
		require.NoError(t, err)

		risk, err := p.Predict(models.FeatureVector{})
		require.NoError(t, err)
		assert.Equal(t, models.RiskModerate, risk)
	})
}

func TestNilPredictorIsUnavailable(t *testing.T) {
	var p *Predictor
	_, err := p.Predict(models.FeatureVector{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
