package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// ArtifactVersion is bumped whenever the serialized layout changes.
const ArtifactVersion = 1

// Artifact bundles the fitted scaler and forest together with the feature
// column order they were trained on. The column order is a contract: the
// predictor refuses artifacts whose columns disagree with its own.
type Artifact struct {
	Version      int             `json:"version"`
	FeatureNames []string        `json:"feature_names"`
	Scaler       *StandardScaler `json:"scaler"`
	Forest       *Forest         `json:"forest"`
}

// NewArtifact assembles an artifact from a training result.
func NewArtifact(featureNames []string, result *TrainResult) *Artifact {
	return &Artifact{
		Version:      ArtifactVersion,
		FeatureNames: featureNames,
		Scaler:       result.Scaler,
		Forest:       result.Forest,
	}
}

// Save serializes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates a serialized artifact.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return &artifact, nil
}

func (a *Artifact) validate() error {
	if a.Scaler == nil || a.Forest == nil {
		return fmt.Errorf("missing scaler or forest")
	}
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("missing feature names")
	}
	if len(a.Scaler.Mean) != len(a.FeatureNames) || len(a.Scaler.Scale) != len(a.FeatureNames) {
		return fmt.Errorf("scaler dimensions do not match %d feature names", len(a.FeatureNames))
	}
	if len(a.Forest.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	return nil
}

// Predict runs the full pipeline (scale then vote) on one raw sample.
func (a *Artifact) Predict(features []float64) (int, error) {
	scaled, err := a.Scaler.Transform(features)
	if err != nil {
		return 0, err
	}
	return a.Forest.Predict(scaled)
}
