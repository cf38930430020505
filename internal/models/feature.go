package models

import "fmt"

// FeatureVector is the ordered input to the trained classifier. Field order
// mirrors the training columns exactly; the scaler and the forest are both
// sensitive to it.
type FeatureVector struct {
	LanguageVocab        float64 `json:"language_vocab"`
	Memory               float64 `json:"memory"`
	Speed                float64 `json:"speed"`
	VisualDiscrimination float64 `json:"visual_discrimination"`
	AudioDiscrimination  float64 `json:"audio_discrimination"`
	SurveyScore          float64 `json:"survey_score"`
}

// FeatureColumns returns the training column names in their contractual
// order. Artifacts are validated against this list at load time.
func FeatureColumns() [6]string {
	return [6]string{
		"Language_vocab",
		"Memory",
		"Speed",
		"Visual_discrimination",
		"Audio_Discrimination",
		"Survey_Score",
	}
}

// Values returns the vector components in training column order.
func (v FeatureVector) Values() [6]float64 {
	return [6]float64{
		v.LanguageVocab,
		v.Memory,
		v.Speed,
		v.VisualDiscrimination,
		v.AudioDiscrimination,
		v.SurveyScore,
	}
}

// Validate checks that every component lies in [0,1]. The scoring engine
// guarantees this; the check is defensive.
func (v FeatureVector) Validate() error {
	cols := FeatureColumns()
	for i, val := range v.Values() {
		if val < 0 || val > 1 {
			return fmt.Errorf("feature %s out of range: %v", cols[i], val)
		}
	}
	return nil
}
