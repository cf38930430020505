package models

// QuizSection identifies one section of the screening battery.
type QuizSection string

const (
	SectionVocabulary          QuizSection = "vocabulary"
	SectionMemory              QuizSection = "memory"
	SectionAudioRecall         QuizSection = "audio_recall"
	SectionVisual              QuizSection = "visual"
	SectionAudioDiscrimination QuizSection = "audio_discrimination"
	SectionSurvey              QuizSection = "survey"
)

// AllSections lists every section in presentation order.
var AllSections = []QuizSection{
	SectionVocabulary,
	SectionMemory,
	SectionAudioRecall,
	SectionVisual,
	SectionAudioDiscrimination,
	SectionSurvey,
}

func (s QuizSection) Valid() bool {
	switch s {
	case SectionVocabulary, SectionMemory, SectionAudioRecall,
		SectionVisual, SectionAudioDiscrimination, SectionSurvey:
		return true
	}
	return false
}

// NoSelection is the placeholder submitted for a vocabulary item the user
// never answered. It always scores zero credit and is never an error.
const NoSelection = "no selection"

// SurveyResponse is one answer on the self-report survey.
type SurveyResponse string

const (
	SurveyYes        SurveyResponse = "yes"
	SurveyOften      SurveyResponse = "often"
	SurveySometimes  SurveyResponse = "sometimes"
	SurveyNotOften   SurveyResponse = "not_often"
	SurveyNo         SurveyResponse = "no"
	SurveyUnanswered SurveyResponse = "unanswered"
)

// Points maps a survey response onto its point value. Unknown values count
// the same as unanswered.
func (r SurveyResponse) Points() int {
	switch r {
	case SurveyYes:
		return 4
	case SurveyOften:
		return 3
	case SurveySometimes:
		return 2
	case SurveyNotOften:
		return 1
	default:
		return 0
	}
}

func (r SurveyResponse) Valid() bool {
	switch r {
	case SurveyYes, SurveyOften, SurveySometimes, SurveyNotOften, SurveyNo, SurveyUnanswered:
		return true
	}
	return false
}

// QuestionType categorizes question-bank items. Only sentence completion
// items are consumed by the vocabulary section.
type QuestionType string

const (
	SentenceCompletion QuestionType = "sentence_completion"
	WordRecognition    QuestionType = "word_recognition"
)

// VocabQuestion is one multiple-choice vocabulary item from the question bank.
type VocabQuestion struct {
	Question      string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Type          QuestionType `json:"type"`
}

// VisualKey holds the answer keys for the three visual discrimination
// sub-tasks: counting target letters, spotting differences between two
// images, and picking the odd one out.
type VisualKey struct {
	TargetLetter       string   `json:"target_letter"`
	TargetLetterCount  int      `json:"target_letter_count"`
	CorrectDifferences []string `json:"correct_differences"`
	OddOneOutOptions   []string `json:"odd_one_out_options"`
	OddOneOutKey       string   `json:"odd_one_out_key"`
}

// PhonemePair is a same/different listening item.
type PhonemePair struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Key    string `json:"key"` // "same" or "different"
}

// StressItem asks which syllable carries the stress in a spoken word.
type StressItem struct {
	Word    string   `json:"word"`
	Options []string `json:"options"`
	Key     string   `json:"key"`
}

// AudioKey holds the answer keys for the audio discrimination section:
// five phoneme pairs, a rhyme-matching item, a stress placement item and
// a sentence repetition target.
type AudioKey struct {
	PhonemePairs []PhonemePair `json:"phoneme_pairs"`
	RhymeWord    string        `json:"rhyme_word"`
	RhymeOptions []string      `json:"rhyme_options"`
	RhymeMatches []string      `json:"rhyme_matches"`
	Stress       StressItem    `json:"stress"`
	Sentence     string        `json:"sentence"`
}

// VisualSubmission is the raw user input for the visual discrimination
// section.
type VisualSubmission struct {
	LetterCount      int      `json:"letter_count" validate:"min=0"`
	SpotDifferences  []string `json:"spot_differences"`
	OddOneOutChoice  string   `json:"odd_one_out_choice"`
}

// AudioDiscriminationSubmission is the raw user input for the audio
// discrimination section. Empty fields are unanswered items, not errors.
type AudioDiscriminationSubmission struct {
	PhonemeAnswers  []string `json:"phoneme_answers"`
	RhymeSelections []string `json:"rhyme_selections"`
	StressAnswer    string   `json:"stress_answer"`
	Sentence        string   `json:"sentence"`
}
