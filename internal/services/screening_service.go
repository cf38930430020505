package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/screening-service/internal/events"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/predictor"
	"github.com/SAP-F-2025/screening-service/internal/questionbank"
	"github.com/SAP-F-2025/screening-service/internal/scoring"
	"github.com/SAP-F-2025/screening-service/internal/session"
	"github.com/SAP-F-2025/screening-service/internal/utils"
)

// ===== REQUEST / RESPONSE TYPES =====

type VocabularySubmissionRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

type MemorySubmissionRequest struct {
	Sequence string `json:"sequence"`
}

type AudioRecallSubmissionRequest struct {
	Words string `json:"words"`
}

type VisualSubmissionRequest struct {
	LetterCount     int      `json:"letter_count" validate:"min=0"`
	SpotDifferences []string `json:"spot_differences"`
	OddOneOutChoice string   `json:"odd_one_out_choice"`
}

type AudioDiscriminationSubmissionRequest struct {
	PhonemeAnswers  []string `json:"phoneme_answers"`
	RhymeSelections []string `json:"rhyme_selections"`
	StressAnswer    string   `json:"stress_answer"`
	Sentence        string   `json:"sentence"`
}

type SurveySubmissionRequest struct {
	Responses []string `json:"responses" validate:"required,min=1,dive,survey_response"`
}

type SessionResponse struct {
	ID        string               `json:"id"`
	StartedAt time.Time            `json:"started_at"`
	Status    models.SessionStatus `json:"status"`
	Elapsed   float64              `json:"elapsed_seconds"`
	Sections  []SectionStatus      `json:"sections"`
	Risk      *models.RiskLevel    `json:"risk,omitempty"`
}

type SectionStatus struct {
	Section   models.QuizSection `json:"section"`
	Submitted bool               `json:"submitted"`
}

// QuestionsResponse carries the question material for one session. Answer
// keys are deliberately absent: the digit sequence is shown to the user by
// design, but vocabulary answers, visual keys and audio keys stay server-side.
type QuestionsResponse struct {
	VocabQuestions   []PublicVocabQuestion `json:"vocab_questions"`
	DigitSequence    []int                 `json:"digit_sequence"`
	AudioRecallWords []string              `json:"audio_recall_words"`
	Visual           PublicVisualTask      `json:"visual"`
	Audio            PublicAudioTask       `json:"audio_discrimination"`
	SurveyQuestions  []string              `json:"survey_questions"`
}

type PublicVocabQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type PublicVisualTask struct {
	TargetLetter     string   `json:"target_letter"`
	OddOneOutOptions []string `json:"odd_one_out_options"`
}

type PublicAudioTask struct {
	PhonemePairCount int      `json:"phoneme_pair_count"`
	RhymeWord        string   `json:"rhyme_word"`
	RhymeOptions     []string `json:"rhyme_options"`
	StressWord       string   `json:"stress_word"`
	StressOptions    []string `json:"stress_options"`
}

type SectionResult struct {
	Section models.QuizSection   `json:"section"`
	Score   models.QuizScore     `json:"score"`
	Status  models.SessionStatus `json:"session_status"`
}

type ScoresResponse struct {
	SessionID string                                  `json:"session_id"`
	Status    models.SessionStatus                    `json:"status"`
	Scores    map[models.QuizSection]models.QuizScore `json:"scores"`
	Speed     models.QuizScore                        `json:"speed"`
	Features  models.FeatureVector                    `json:"features"`
}

type PredictionResponse struct {
	SessionID   string               `json:"session_id"`
	Risk        models.RiskLevel     `json:"risk"`
	Description string               `json:"description"`
	Features    models.FeatureVector `json:"features"`
	PredictedAt time.Time            `json:"predicted_at"`
}

// ===== SERVICE INTERFACE =====

// ScreeningService runs the screening battery: it owns session lifecycle,
// section grading and the final risk prediction.
type ScreeningService interface {
	StartSession(ctx context.Context) (*SessionResponse, error)
	GetSession(ctx context.Context, id string) (*SessionResponse, error)
	GetQuestions(ctx context.Context, id string) (*QuestionsResponse, error)

	SubmitVocabulary(ctx context.Context, id string, req *VocabularySubmissionRequest) (*SectionResult, error)
	SubmitMemory(ctx context.Context, id string, req *MemorySubmissionRequest) (*SectionResult, error)
	SubmitAudioRecall(ctx context.Context, id string, req *AudioRecallSubmissionRequest) (*SectionResult, error)
	SubmitVisual(ctx context.Context, id string, req *VisualSubmissionRequest) (*SectionResult, error)
	SubmitAudioDiscrimination(ctx context.Context, id string, req *AudioDiscriminationSubmissionRequest) (*SectionResult, error)
	SubmitSurvey(ctx context.Context, id string, req *SurveySubmissionRequest) (*SectionResult, error)

	GetScores(ctx context.Context, id string) (*ScoresResponse, error)
	Predict(ctx context.Context, id string) (*PredictionResponse, error)
}

// Params are the battery tuning knobs, resolved from configuration once at
// startup.
type Params struct {
	VocabQuestionCount  int
	DigitSequenceLength int
	MinTimeMinutes      float64
	MaxTimeMinutes      float64
}

func (p Params) timeLimit() time.Duration {
	return time.Duration(p.MaxTimeMinutes * float64(time.Minute))
}

type screeningService struct {
	store     session.Store
	bank      *questionbank.Bank
	predictor *predictor.Predictor
	publisher events.EventPublisher
	params    Params
	logger    *slog.Logger
	validator *utils.Validator

	// Injectable clock for deterministic time-up tests.
	now func() time.Time
	rng *rand.Rand
}

func NewScreeningService(
	store session.Store,
	bank *questionbank.Bank,
	pred *predictor.Predictor,
	publisher events.EventPublisher,
	params Params,
	logger *slog.Logger,
	validator *utils.Validator,
) ScreeningService {
	return &screeningService{
		store:     store,
		bank:      bank,
		predictor: pred,
		publisher: publisher,
		params:    params,
		logger:    logger,
		validator: validator,
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *screeningService) StartSession(ctx context.Context) (*SessionResponse, error) {
	questions, err := s.bank.SampleVocabulary(s.params.VocabQuestionCount, s.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to sample vocabulary questions: %w", err)
	}

	sess := &models.ScreeningSession{
		ID:             uuid.New().String(),
		StartedAt:      s.now(),
		Status:         models.SessionOpen,
		VocabQuestions: questions,
		DigitSequence:  questionbank.GenerateDigitSequence(s.params.DigitSequenceLength, s.rng),
		Scores:         make(map[models.QuizSection]models.QuizScore),
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Screening session started", "session_id", sess.ID)
	s.publish(ctx, events.NewSessionStartedEvent(sess.ID))

	return s.toSessionResponse(sess), nil
}

func (s *screeningService) GetSession(ctx context.Context, id string) (*SessionResponse, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	// Surface time-up on read so polling clients see the lock without
	// attempting a submission first.
	if sess.LockIfExpired(s.now(), s.params.timeLimit()) && sess.Status == models.SessionTimeUp {
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return s.toSessionResponse(sess), nil
}

func (s *screeningService) GetQuestions(ctx context.Context, id string) (*QuestionsResponse, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	vocab := make([]PublicVocabQuestion, len(sess.VocabQuestions))
	for i, q := range sess.VocabQuestions {
		vocab[i] = PublicVocabQuestion{Question: q.Question, Options: q.Options}
	}

	return &QuestionsResponse{
		VocabQuestions:   vocab,
		DigitSequence:    sess.DigitSequence,
		AudioRecallWords: s.bank.AudioRecallWords,
		Visual: PublicVisualTask{
			TargetLetter:     s.bank.Visual.TargetLetter,
			OddOneOutOptions: s.bank.Visual.OddOneOutOptions,
		},
		Audio: PublicAudioTask{
			PhonemePairCount: len(s.bank.AudioDiscrimination.PhonemePairs),
			RhymeWord:        s.bank.AudioDiscrimination.RhymeWord,
			RhymeOptions:     s.bank.AudioDiscrimination.RhymeOptions,
			StressWord:       s.bank.AudioDiscrimination.Stress.Word,
			StressOptions:    s.bank.AudioDiscrimination.Stress.Options,
		},
		SurveyQuestions: s.bank.SurveyQuestions,
	}, nil
}

// ===== SECTION SUBMISSIONS =====

func (s *screeningService) SubmitVocabulary(ctx context.Context, id string, req *VocabularySubmissionRequest) (*SectionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return s.submitSection(ctx, id, models.SectionVocabulary, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		keys := make([]string, len(sess.VocabQuestions))
		for i, q := range sess.VocabQuestions {
			keys[i] = q.CorrectAnswer
		}
		return scoring.ScoreVocabulary(req.Answers, keys)
	})
}

func (s *screeningService) SubmitMemory(ctx context.Context, id string, req *MemorySubmissionRequest) (*SectionResult, error) {
	return s.submitSection(ctx, id, models.SectionMemory, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		return scoring.ScoreSequence(req.Sequence, sess.DigitSequence), nil
	})
}

func (s *screeningService) SubmitAudioRecall(ctx context.Context, id string, req *AudioRecallSubmissionRequest) (*SectionResult, error) {
	return s.submitSection(ctx, id, models.SectionAudioRecall, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		return scoring.ScoreAudioRecall(req.Words, s.bank.AudioRecallWords), nil
	})
}

func (s *screeningService) SubmitVisual(ctx context.Context, id string, req *VisualSubmissionRequest) (*SectionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return s.submitSection(ctx, id, models.SectionVisual, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		sub := models.VisualSubmission{
			LetterCount:     req.LetterCount,
			SpotDifferences: req.SpotDifferences,
			OddOneOutChoice: req.OddOneOutChoice,
		}
		return scoring.ScoreVisualDiscrimination(sub, s.bank.Visual), nil
	})
}

func (s *screeningService) SubmitAudioDiscrimination(ctx context.Context, id string, req *AudioDiscriminationSubmissionRequest) (*SectionResult, error) {
	return s.submitSection(ctx, id, models.SectionAudioDiscrimination, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		sub := models.AudioDiscriminationSubmission{
			PhonemeAnswers:  req.PhonemeAnswers,
			RhymeSelections: req.RhymeSelections,
			StressAnswer:    req.StressAnswer,
			Sentence:        req.Sentence,
		}
		return scoring.ScoreAudioDiscrimination(sub, s.bank.AudioDiscrimination), nil
	})
}

func (s *screeningService) SubmitSurvey(ctx context.Context, id string, req *SurveySubmissionRequest) (*SectionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return s.submitSection(ctx, id, models.SectionSurvey, func(sess *models.ScreeningSession) (models.QuizScore, error) {
		responses := make([]models.SurveyResponse, len(req.Responses))
		for i, r := range req.Responses {
			responses[i] = models.SurveyResponse(r)
		}
		return scoring.ScoreSurvey(responses), nil
	})
}

// submitSection is the shared grading path: load, enforce the time limit and
// single-submission rule, grade, persist, publish.
func (s *screeningService) submitSection(
	ctx context.Context,
	id string,
	section models.QuizSection,
	grade func(*models.ScreeningSession) (models.QuizScore, error),
) (*SectionResult, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Status == models.SessionCompleted {
		return nil, ErrSessionCompleted
	}

	if sess.LockIfExpired(s.now(), s.params.timeLimit()) {
		// Persist the transition so later reads see time_up too. Scores
		// already recorded stay recorded.
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		s.publish(ctx, events.NewSessionTimeUpEvent(sess.ID))
		return nil, ErrSessionTimeUp
	}

	if sess.HasScore(section) {
		return nil, fmt.Errorf("%w: %s", ErrSectionAlreadyScored, section)
	}

	score, err := grade(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	sess.RecordScore(section, score)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Section scored",
		"session_id", sess.ID,
		"section", section,
		"value", score.Value)
	s.publish(ctx, events.NewSectionScoredEvent(sess.ID, section, score))

	return &SectionResult{Section: section, Score: score, Status: sess.Status}, nil
}

// ===== SCORES AND PREDICTION =====

func (s *screeningService) GetScores(ctx context.Context, id string) (*ScoresResponse, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	speed := s.speedScore(sess)
	return &ScoresResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Scores:    sess.Scores,
		Speed:     speed,
		Features:  predictor.AssembleFeatures(sess, speed),
	}, nil
}

func (s *screeningService) Predict(ctx context.Context, id string) (*PredictionResponse, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	speed := s.speedScore(sess)
	features := predictor.AssembleFeatures(sess, speed)

	// Prediction is idempotent: once a risk is recorded, re-predicting
	// returns the same answer instead of re-running the forest against a
	// now-larger elapsed time.
	if sess.Risk != nil && sess.PredictedAt != nil {
		return &PredictionResponse{
			SessionID:   sess.ID,
			Risk:        *sess.Risk,
			Description: sess.Risk.Description(),
			Features:    features,
			PredictedAt: *sess.PredictedAt,
		}, nil
	}

	risk, err := s.predictor.Predict(features)
	if err != nil {
		if IsModelUnavailable(err) {
			return nil, fmt.Errorf("%w: %w", ErrPredictionUnavailable, err)
		}
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	predictedAt := s.now()
	sess.Risk = &risk
	sess.PredictedAt = &predictedAt
	sess.Status = models.SessionCompleted
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Screening completed",
		"session_id", sess.ID,
		"risk", risk)
	s.publish(ctx, events.NewScreeningCompletedEvent(sess.ID, risk, features))

	return &PredictionResponse{
		SessionID:   sess.ID,
		Risk:        risk,
		Description: risk.Description(),
		Features:    features,
		PredictedAt: predictedAt,
	}, nil
}

// ===== HELPERS =====

func (s *screeningService) loadSession(ctx context.Context, id string) (*models.ScreeningSession, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// speedScore computes the time feature. For completed sessions the elapsed
// time is frozen at prediction time so re-reads stay stable.
func (s *screeningService) speedScore(sess *models.ScreeningSession) models.QuizScore {
	ref := s.now()
	if sess.PredictedAt != nil {
		ref = *sess.PredictedAt
	}
	return scoring.SpeedScore(sess.Elapsed(ref), s.params.MinTimeMinutes, s.params.MaxTimeMinutes)
}

func (s *screeningService) toSessionResponse(sess *models.ScreeningSession) *SessionResponse {
	sections := make([]SectionStatus, len(models.AllSections))
	for i, section := range models.AllSections {
		sections[i] = SectionStatus{Section: section, Submitted: sess.HasScore(section)}
	}
	return &SessionResponse{
		ID:        sess.ID,
		StartedAt: sess.StartedAt,
		Status:    sess.Status,
		Elapsed:   sess.Elapsed(s.now()).Seconds(),
		Sections:  sections,
		Risk:      sess.Risk,
	}
}

// publish sends an event best-effort; event delivery never fails a request.
func (s *screeningService) publish(ctx context.Context, event *events.ScreeningEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishScreeningEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish screening event",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
	}
}
