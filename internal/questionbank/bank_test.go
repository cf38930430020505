package questionbank

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBank() *Bank {
	bank := &Bank{
		AudioRecallWords: []string{"apple", "river", "candle"},
		AudioDiscrimination: models.AudioKey{
			PhonemePairs: []models.PhonemePair{{First: "pat", Second: "bat", Key: "different"}},
		},
		SurveyQuestions: []string{"q1", "q2", "q3", "q4", "q5"},
	}
	for i := 0; i < 8; i++ {
		bank.Questions = append(bank.Questions, models.VocabQuestion{
			Question:      "sentence " + string(rune('a'+i)),
			Options:       []string{"x", "y", "z"},
			CorrectAnswer: "x",
			Type:          models.SentenceCompletion,
		})
	}
	// A type the battery never consumes.
	bank.Questions = append(bank.Questions, models.VocabQuestion{
		Question: "ignored", Type: models.WordRecognition,
	})
	return bank
}

func writeBank(t *testing.T, bank *Bank) string {
	t.Helper()
	data, err := json.Marshal(bank)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeBank(t, testBank())

	bank, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, bank.SentenceCompletionQuestions(), 8)
	assert.Len(t, bank.SurveyQuestions, 5)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("no usable questions", func(t *testing.T) {
		bank := testBank()
		bank.Questions = nil
		_, err := Load(writeBank(t, bank))
		assert.Error(t, err)
	})
}

func TestSampleVocabulary(t *testing.T) {
	bank := testBank()
	rng := rand.New(rand.NewPCG(1, 2))

	sample, err := bank.SampleVocabulary(5, rng)
	require.NoError(t, err)
	assert.Len(t, sample, 5)

	// Without replacement: all sampled questions are distinct.
	seen := make(map[string]struct{})
	for _, q := range sample {
		assert.Equal(t, models.SentenceCompletion, q.Type)
		_, dup := seen[q.Question]
		assert.False(t, dup, "question %q sampled twice", q.Question)
		seen[q.Question] = struct{}{}
	}
}

func TestSampleVocabulary_Errors(t *testing.T) {
	bank := testBank()
	rng := rand.New(rand.NewPCG(1, 2))

	_, err := bank.SampleVocabulary(0, rng)
	assert.Error(t, err)

	_, err = bank.SampleVocabulary(100, rng)
	assert.Error(t, err)
}

func TestGenerateDigitSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	seq := GenerateDigitSequence(6, rng)
	require.Len(t, seq, 6)
	assert.True(t, seq[0] >= 1 && seq[0] <= 9, "leading digit must be nonzero")
	for _, d := range seq {
		assert.True(t, d >= 0 && d <= 9)
	}

	assert.Nil(t, GenerateDigitSequence(0, rng))
}
