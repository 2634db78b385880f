package riskmodel

import "fmt"

// StandardScaler standardizes features by removing the mean and scaling to
// unit variance, using statistics fitted offline.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// NumFeatures returns the vector width the scaler was fitted on.
func (s *StandardScaler) NumFeatures() int {
	return len(s.Mean)
}

// Transform returns a scaled copy of x. A zero scale leaves the centered value
// unchanged, matching how constant features are fitted.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("scaler has no features")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean has %d entries but scale has %d", len(s.Mean), len(s.Scale))
	}
	return nil
}
