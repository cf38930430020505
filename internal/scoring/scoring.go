// Package scoring implements the pure scoring engine for the screening
// battery. Every function is a deterministic mapping from answer key and
// submission to a score; there is no I/O and no hidden state. Absent or
// placeholder input degrades to zero credit instead of failing, so a
// partially completed battery still yields a usable feature vector.
package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// ErrDimensionMismatch indicates a submissions/keys length mismatch. This is
// a programmer error on the caller's side and fails loudly.
var ErrDimensionMismatch = errors.New("submissions and answer keys have different lengths")

// Default visual discrimination task parameters.
const (
	DefaultTargetLetterCount = 3
	spotDifferencePoints     = 0.25
)

// Audio discrimination point budget. The four parts sum to exactly 1.0.
const (
	phonemePairPoints = 0.1
	maxPhonemePairs   = 5
	rhymePoints       = 0.1
	stressPoints      = 0.1
	sentencePoints    = 0.3
)

// ScoreVocabulary grades the multiple-choice vocabulary section with
// case-insensitive exact matching per item. The "no selection" placeholder
// scores zero credit. Submission and key counts must agree.
func ScoreVocabulary(submissions, keys []string) (models.QuizScore, error) {
	if len(submissions) != len(keys) {
		return models.QuizScore{}, fmt.Errorf("%w: %d submissions, %d keys",
			ErrDimensionMismatch, len(submissions), len(keys))
	}

	correct := 0
	for i, sub := range submissions {
		if sub == models.NoSelection {
			continue
		}
		if strings.EqualFold(sub, keys[i]) {
			correct++
		}
	}
	return models.NewQuizScore(float64(correct), float64(len(keys))), nil
}

// ScoreSequence grades the digit-sequence memory task. Internal whitespace
// is stripped from the submission before comparing against the concatenated
// key digits; the match is order-sensitive with no partial credit. An empty
// submission is flagged as unanswered but scores the same zero as a wrong
// answer.
func ScoreSequence(submission string, key []int) models.QuizScore {
	cleaned := stripWhitespace(submission)

	var want strings.Builder
	for _, d := range key {
		want.WriteString(strconv.Itoa(d))
	}

	points := 0.0
	if cleaned != "" && cleaned == want.String() {
		points = 1.0
	}

	score := models.NewQuizScore(points, 1.0)
	score.Answered = cleaned != ""
	return score
}

// ScoreAudioRecall grades the word-list recall task. The submission must
// match the space-joined key case-insensitively; the comparison is strict
// and all-or-nothing.
func ScoreAudioRecall(submission string, key []string) models.QuizScore {
	target := strings.Join(key, " ")
	trimmed := strings.TrimSpace(submission)

	points := 0.0
	if trimmed != "" && strings.EqualFold(trimmed, target) {
		points = 1.0
	}

	score := models.NewQuizScore(points, 1.0)
	score.Answered = trimmed != ""
	return score
}

// ScoreVisualDiscrimination grades the three visual sub-tasks and averages
// them. Each sub-score is normalized to [0,1] independently; an unanswered
// sub-task contributes 0 rather than being excluded from the mean.
func ScoreVisualDiscrimination(sub models.VisualSubmission, key models.VisualKey) models.QuizScore {
	targetCount := key.TargetLetterCount
	if targetCount <= 0 {
		targetCount = DefaultTargetLetterCount
	}

	letterScore := float64(min(max(sub.LetterCount, 0), targetCount)) / float64(targetCount)

	hits := 0
	seen := make(map[string]struct{})
	correct := make(map[string]struct{}, len(key.CorrectDifferences))
	for _, d := range key.CorrectDifferences {
		correct[normalize(d)] = struct{}{}
	}
	for _, item := range sub.SpotDifferences {
		n := normalize(item)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := correct[n]; ok {
			hits++
		}
	}
	spotScore := min(float64(hits)*spotDifferencePoints, 1.0)

	oddScore := 0.0
	if key.OddOneOutKey != "" && strings.TrimSpace(sub.OddOneOutChoice) == key.OddOneOutKey {
		oddScore = 1.0
	}

	score := models.NewQuizScore(letterScore+spotScore+oddScore, 3.0)
	score.Breakdown = map[string]float64{
		"letter_count":     letterScore,
		"spot_differences": spotScore,
		"odd_one_out":      oddScore,
	}
	return score
}

// ScoreAudioDiscrimination grades the listening section against a fixed
// point budget: 0.1 per phoneme pair up to five pairs, 0.1 for rhyme
// matching scaled by recall, 0.1 for stress placement and 0.3 for an exact
// sentence repetition. The total is capped at 1.0 by construction.
func ScoreAudioDiscrimination(sub models.AudioDiscriminationSubmission, key models.AudioKey) models.QuizScore {
	phonemeScore := 0.0
	pairs := len(key.PhonemePairs)
	if pairs > maxPhonemePairs {
		pairs = maxPhonemePairs
	}
	for i := 0; i < pairs && i < len(sub.PhonemeAnswers); i++ {
		if strings.EqualFold(strings.TrimSpace(sub.PhonemeAnswers[i]), key.PhonemePairs[i].Key) {
			phonemeScore += phonemePairPoints
		}
	}

	rhymeScore := 0.0
	if len(key.RhymeMatches) > 0 {
		correct := make(map[string]struct{}, len(key.RhymeMatches))
		for _, m := range key.RhymeMatches {
			correct[normalize(m)] = struct{}{}
		}
		matched := make(map[string]struct{})
		for _, sel := range sub.RhymeSelections {
			n := normalize(sel)
			if _, ok := correct[n]; ok {
				matched[n] = struct{}{}
			}
		}
		rhymeScore = float64(len(matched)) / float64(len(key.RhymeMatches)) * rhymePoints
	}

	stressScore := 0.0
	if key.Stress.Key != "" && strings.EqualFold(strings.TrimSpace(sub.StressAnswer), key.Stress.Key) {
		stressScore = stressPoints
	}

	sentenceScore := 0.0
	if strings.EqualFold(strings.TrimSpace(sub.Sentence), strings.TrimSpace(key.Sentence)) &&
		strings.TrimSpace(sub.Sentence) != "" {
		sentenceScore = sentencePoints
	}

	score := models.NewQuizScore(phonemeScore+rhymeScore+stressScore+sentenceScore, 1.0)
	score.Breakdown = map[string]float64{
		"phoneme":  phonemeScore,
		"rhyme":    rhymeScore,
		"stress":   stressScore,
		"sentence": sentenceScore,
	}
	return score
}

// ScoreSurvey grades the self-report survey: responses map onto points
// {yes:4, often:3, sometimes:2, not_often:1, no:0, unanswered:0}, summed and
// divided by the maximum attainable (4 per question).
func ScoreSurvey(responses []models.SurveyResponse) models.QuizScore {
	if len(responses) == 0 {
		return models.QuizScore{MaxPoints: 0}
	}

	points := 0
	answered := false
	for _, r := range responses {
		points += r.Points()
		if r != models.SurveyUnanswered && r != "" {
			answered = true
		}
	}

	score := models.NewQuizScore(float64(points), float64(4*len(responses)))
	score.Answered = answered
	return score
}

// SpeedScore derives the time-based score from session elapsed time:
// 1.0 at or under minMinutes, 0.0 at or over maxMinutes, linear in between,
// clamped into [0,1] even for negative or over-range elapsed time.
func SpeedScore(elapsed time.Duration, minMinutes, maxMinutes float64) models.QuizScore {
	if maxMinutes <= minMinutes {
		return models.NewQuizScore(1, 1)
	}

	elapsedMinutes := elapsed.Minutes()
	value := 1 - (elapsedMinutes-minMinutes)/(maxMinutes-minMinutes)
	if value > 1 {
		value = 1
	}
	if value < 0 {
		value = 0
	}
	return models.NewQuizScore(value, 1)
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
