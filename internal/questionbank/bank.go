// Package questionbank loads the authored question material and samples the
// per-session question sets.
package questionbank

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// Bank is the static question material for the whole battery. It is loaded
// once at startup and never mutated.
type Bank struct {
	Questions           []models.VocabQuestion `json:"questions"`
	AudioRecallWords    []string               `json:"audio_recall_words"`
	Visual              models.VisualKey       `json:"visual"`
	AudioDiscrimination models.AudioKey        `json:"audio_discrimination"`
	SurveyQuestions     []string               `json:"survey_questions"`
}

// Load reads and validates a question bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var bank Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question bank %s: %w", path, err)
	}
	return &bank, nil
}

// Validate checks the bank holds enough material for one session.
func (b *Bank) Validate() error {
	if len(b.SentenceCompletionQuestions()) == 0 {
		return fmt.Errorf("no sentence_completion questions")
	}
	if len(b.AudioRecallWords) == 0 {
		return fmt.Errorf("no audio recall word list")
	}
	if len(b.AudioDiscrimination.PhonemePairs) == 0 {
		return fmt.Errorf("no phoneme pairs")
	}
	if len(b.SurveyQuestions) == 0 {
		return fmt.Errorf("no survey questions")
	}
	return nil
}

// SentenceCompletionQuestions filters the vocabulary items down to the only
// type the battery consumes.
func (b *Bank) SentenceCompletionQuestions() []models.VocabQuestion {
	var out []models.VocabQuestion
	for _, q := range b.Questions {
		if q.Type == models.SentenceCompletion {
			out = append(out, q)
		}
	}
	return out
}

// SampleVocabulary draws n sentence-completion questions without replacement.
func (b *Bank) SampleVocabulary(n int, rng *rand.Rand) ([]models.VocabQuestion, error) {
	pool := b.SentenceCompletionQuestions()
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}
	if len(pool) < n {
		return nil, fmt.Errorf("question bank has %d sentence_completion questions, need %d", len(pool), n)
	}

	shuffled := make([]models.VocabQuestion, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n], nil
}

// GenerateDigitSequence produces the per-session memory key: length random
// digits, never starting with zero so the displayed sequence reads as one
// number.
func GenerateDigitSequence(length int, rng *rand.Rand) []int {
	if length <= 0 {
		return nil
	}
	seq := make([]int, length)
	seq[0] = 1 + rng.IntN(9)
	for i := 1; i < length; i++ {
		seq[i] = rng.IntN(10)
	}
	return seq
}
