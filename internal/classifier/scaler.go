// Package classifier provides the trained-model side of the screening
// pipeline: a standard scaler, a random-forest classifier, the JSON artifact
// that serializes both, and the offline training routine that fits them from
// a labelled dataset.
package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers and scales features column-wise: (x - mean) / scale.
// Scale is the population standard deviation of the training column; a
// constant column gets scale 1 so transformation stays defined.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column mean and population standard deviation from
// the training matrix.
func FitScaler(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty dataset")
	}

	cols := len(samples[0])
	column := make([]float64, len(samples))
	scaler := &StandardScaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}

	for j := 0; j < cols; j++ {
		for i, row := range samples {
			if len(row) != cols {
				return nil, fmt.Errorf("ragged dataset: row %d has %d columns, want %d", i, len(row), cols)
			}
			column[i] = row[j]
		}
		scaler.Mean[j] = stat.Mean(column, nil)
		scaler.Scale[j] = stat.PopStdDev(column, nil)
		if scaler.Scale[j] == 0 {
			scaler.Scale[j] = 1
		}
	}
	return scaler, nil
}

// Transform scales a single sample into the model's feature space.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("sample has %d features, scaler expects %d", len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// TransformAll scales every sample in a matrix.
func (s *StandardScaler) TransformAll(samples [][]float64) ([][]float64, error) {
	out := make([][]float64, len(samples))
	for i, row := range samples {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
