package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/screening-service/internal/classifier"
	"github.com/SAP-F-2025/screening-service/internal/events"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/predictor"
	"github.com/SAP-F-2025/screening-service/internal/questionbank"
	"github.com/SAP-F-2025/screening-service/internal/session"
	"github.com/SAP-F-2025/screening-service/internal/utils"
)

func testBank() *questionbank.Bank {
	return &questionbank.Bank{
		Questions: []models.VocabQuestion{
			{Question: "The sun ___ in the east.", Options: []string{"rises", "sets"}, CorrectAnswer: "rises", Type: models.SentenceCompletion},
			{Question: "Water ___ at 100 degrees.", Options: []string{"boils", "freezes"}, CorrectAnswer: "boils", Type: models.SentenceCompletion},
			{Question: "Cats ___ milk.", Options: []string{"drink", "fly"}, CorrectAnswer: "drink", Type: models.SentenceCompletion},
			{Question: "spelled wrong", Options: []string{"a", "b"}, CorrectAnswer: "a", Type: models.WordRecognition},
		},
		AudioRecallWords: []string{"apple", "river", "candle"},
		Visual: models.VisualKey{
			TargetLetter:       "b",
			TargetLetterCount:  3,
			CorrectDifferences: []string{"hat", "shoe", "tree", "door"},
			OddOneOutOptions:   []string{"dog", "cat", "car"},
			OddOneOutKey:       "car",
		},
		AudioDiscrimination: models.AudioKey{
			PhonemePairs: []models.PhonemePair{
				{First: "ba", Second: "ba", Key: "same"},
				{First: "da", Second: "ta", Key: "different"},
				{First: "pa", Second: "pa", Key: "same"},
				{First: "ka", Second: "ga", Key: "different"},
				{First: "ma", Second: "ma", Key: "same"},
			},
			RhymeWord:    "cat",
			RhymeOptions: []string{"hat", "dog", "bat"},
			RhymeMatches: []string{"hat", "bat"},
			Stress:       models.StressItem{Word: "banana", Options: []string{"ba", "na", "na"}, Key: "na"},
			Sentence:     "the quick brown fox",
		},
		SurveyQuestions: []string{"Do you mix up letters?", "Do you lose your place reading?"},
	}
}

// constantArtifact builds a one-leaf forest that always predicts class.
func constantArtifact(class int) *classifier.Artifact {
	cols := models.FeatureColumns()
	mean := make([]float64, len(cols))
	scale := make([]float64, len(cols))
	for i := range scale {
		scale[i] = 1
	}
	return &classifier.Artifact{
		Version:      classifier.ArtifactVersion,
		FeatureNames: cols[:],
		Scaler:       &classifier.StandardScaler{Mean: mean, Scale: scale},
		Forest: &classifier.Forest{
			Trees:      []classifier.Tree{{Nodes: []classifier.TreeNode{{Class: class, Leaf: true}}}},
			NumClasses: 3,
		},
	}
}

type serviceFixture struct {
	svc       *screeningService
	store     session.Store
	publisher *events.MockEventPublisher
	clock     time.Time
}

func newServiceFixture(t *testing.T, artifact *classifier.Artifact) *serviceFixture {
	t.Helper()

	logger := slog.Default()
	publisher := events.NewMockEventPublisher(logger)
	store := session.NewMemoryStore()

	var pred *predictor.Predictor
	if artifact != nil {
		pred = predictor.FromArtifact(artifact, logger)
	}

	svc := NewScreeningService(store, testBank(), pred, publisher, Params{
		VocabQuestionCount:  3,
		DigitSequenceLength: 6,
		MinTimeMinutes:      3,
		MaxTimeMinutes:      30,
	}, logger, utils.NewValidator()).(*screeningService)

	fixture := &serviceFixture{
		svc:       svc,
		store:     store,
		publisher: publisher,
		clock:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return fixture.clock }
	return fixture
}

func (f *serviceFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func TestStartSession(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, models.SessionOpen, resp.Status)
	assert.Len(t, resp.Sections, len(models.AllSections))
	for _, section := range resp.Sections {
		assert.False(t, section.Submitted)
	}

	sess, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, sess.VocabQuestions, 3)
	assert.Len(t, sess.DigitSequence, 6)
	for _, q := range sess.VocabQuestions {
		assert.Equal(t, models.SentenceCompletion, q.Type)
	}

	published := f.publisher.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionStarted, published[0].Type)
}

func TestGetQuestionsHidesAnswerKeys(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	questions, err := f.svc.GetQuestions(ctx, resp.ID)
	require.NoError(t, err)

	assert.Len(t, questions.VocabQuestions, 3)
	assert.Len(t, questions.DigitSequence, 6)
	assert.Equal(t, []string{"apple", "river", "candle"}, questions.AudioRecallWords)
	assert.Equal(t, 5, questions.Audio.PhonemePairCount)
	assert.Equal(t, "cat", questions.Audio.RhymeWord)
	assert.Len(t, questions.SurveyQuestions, 2)
}

func TestGetSessionNotFound(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSubmitMemorySection(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	sess, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)

	correct := ""
	for _, d := range sess.DigitSequence {
		correct += string(rune('0' + d))
	}

	result, err := f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: correct})
	require.NoError(t, err)
	assert.Equal(t, models.SectionMemory, result.Section)
	assert.Equal(t, 1.0, result.Score.Value)
	assert.True(t, result.Score.Answered)
}

func TestSubmitSectionTwiceConflicts(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	assert.ErrorIs(t, err, ErrSectionAlreadyScored)
	assert.True(t, IsConflict(err))
}

func TestSubmitVocabularyValidation(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitVocabulary(ctx, resp.ID, &VocabularySubmissionRequest{Answers: nil})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Wrong answer count fails as a dimension mismatch.
	_, err = f.svc.SubmitVocabulary(ctx, resp.ID, &VocabularySubmissionRequest{Answers: []string{"rises"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestTimeUpLocksSubmissionsButKeepsScores(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	require.NoError(t, err)

	f.advance(31 * time.Minute)

	_, err = f.svc.SubmitSurvey(ctx, resp.ID, &SurveySubmissionRequest{Responses: []string{"yes", "no"}})
	assert.ErrorIs(t, err, ErrSessionTimeUp)
	assert.True(t, IsTimeUp(err))

	sess, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionTimeUp, sess.Status)
	assert.True(t, sess.HasScore(models.SectionMemory))
}

func TestGetSessionSurfacesTimeUp(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	f.advance(31 * time.Minute)

	got, err := f.svc.GetSession(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionTimeUp, got.Status)
}

func TestGetScoresDefaultsUnsubmittedSectionsToZero(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitSurvey(ctx, resp.ID, &SurveySubmissionRequest{Responses: []string{"yes", "yes"}})
	require.NoError(t, err)

	scores, err := f.svc.GetScores(ctx, resp.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, scores.Features.SurveyScore)
	assert.Equal(t, 0.0, scores.Features.LanguageVocab)
	assert.Equal(t, 0.0, scores.Features.Memory)
	// Immediately after start the speed score is maximal.
	assert.Equal(t, 1.0, scores.Speed.Value)
}

func TestPredictCompletesSession(t *testing.T) {
	f := newServiceFixture(t, constantArtifact(0))
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	require.NoError(t, err)

	f.advance(10 * time.Minute)

	pred, err := f.svc.Predict(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, pred.Risk)
	assert.Contains(t, pred.Description, "high chance")

	sess, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, sess.Status)
	require.NotNil(t, sess.Risk)
	assert.Equal(t, models.RiskHigh, *sess.Risk)

	var completed []events.ScreeningEvent
	for _, e := range f.publisher.PublishedEvents() {
		if e.Type == events.EventScreeningCompleted {
			completed = append(completed, e)
		}
	}
	require.Len(t, completed, 1)
}

func TestPredictIsIdempotent(t *testing.T) {
	f := newServiceFixture(t, constantArtifact(1))
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	first, err := f.svc.Predict(ctx, resp.ID)
	require.NoError(t, err)

	f.advance(20 * time.Minute)

	second, err := f.svc.Predict(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Risk, second.Risk)
	assert.Equal(t, first.PredictedAt, second.PredictedAt)
	// Speed feature is frozen at prediction time.
	assert.Equal(t, first.Features.Speed, second.Features.Speed)
}

func TestPredictWithoutModel(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Predict(ctx, resp.ID)
	require.Error(t, err)
	assert.True(t, IsModelUnavailable(err))

	// The failed prediction must not complete or corrupt the session.
	sess, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionOpen, sess.Status)
	assert.Nil(t, sess.Risk)
}

func TestSubmitAfterCompletionConflicts(t *testing.T) {
	f := newServiceFixture(t, constantArtifact(2))
	ctx := context.Background()

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Predict(ctx, resp.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}
