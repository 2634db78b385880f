/*
Package riskmodel loads the pre-trained diabetes classifier and its feature
scaler, and evaluates them. A Model is built once at startup and is read-only
afterwards, so a single instance is shared by every request.
*/
package riskmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// positiveClass is the label of the diabetic class in the training data.
const positiveClass = 1

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	// Label is the predicted class.
	Label float64
	// Probability is the probability of the positive (diabetic) class.
	Probability float64
}

// Positive reports whether the classifier predicted the diabetic class.
func (p Prediction) Positive() bool {
	return p.Label == positiveClass
}

// Info summarizes a loaded model for the health endpoint.
type Info struct {
	Trees    int       `json:"trees"`
	Features int       `json:"features"`
	Classes  []float64 `json:"classes"`
}

// Model pairs the fitted scaler with the forest it was trained for.
type Model struct {
	scaler   *StandardScaler
	forest   *RandomForest
	positive int
}

// New validates scaler and forest against each other and builds a Model.
func New(scaler *StandardScaler, forest *RandomForest) (*Model, error) {
	if scaler == nil || forest == nil {
		return nil, fmt.Errorf("scaler and forest are both required")
	}
	if err := scaler.validate(); err != nil {
		return nil, fmt.Errorf("invalid scaler: %w", err)
	}
	if err := forest.validate(); err != nil {
		return nil, fmt.Errorf("invalid forest: %w", err)
	}
	if scaler.NumFeatures() != forest.NFeatures {
		return nil, fmt.Errorf("scaler has %d features but forest expects %d", scaler.NumFeatures(), forest.NFeatures)
	}

	positive := -1
	for i, c := range forest.Classes {
		if c == positiveClass {
			positive = i
			break
		}
	}
	if positive < 0 {
		return nil, fmt.Errorf("forest classes %v do not include the positive class", forest.Classes)
	}

	return &Model{scaler: scaler, forest: forest, positive: positive}, nil
}

// Predict scales features and returns the predicted label together with the
// probability of the positive class.
func (m *Model) Predict(features []float64) (Prediction, error) {
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to scale features: %w", err)
	}

	proba, err := m.forest.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to predict probability: %w", err)
	}

	label, err := m.forest.Predict(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to predict label: %w", err)
	}

	return Prediction{Label: label, Probability: proba[m.positive]}, nil
}

// Info returns a summary of the loaded artifact.
func (m *Model) Info() Info {
	return Info{
		Trees:    len(m.forest.Trees),
		Features: m.forest.NFeatures,
		Classes:  append([]float64(nil), m.forest.Classes...),
	}
}

// Load reads the forest and scaler artifacts concurrently and builds a Model.
// Both are JSON exports of the fitted scikit-learn objects: the forest holds
// n_features_in_, classes_ and each estimator's tree_ arrays (value taken as
// value[:, 0, :]); the scaler holds mean_ and scale_.
func Load(ctx context.Context, modelPath, scalerPath string) (*Model, error) {
	var (
		forest RandomForest
		scaler StandardScaler
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := readJSON(modelPath, &forest); err != nil {
			return fmt.Errorf("failed to load model %s: %w", modelPath, err)
		}
		return nil
	})

	g.Go(func() error {
		if err := readJSON(scalerPath, &scaler); err != nil {
			return fmt.Errorf("failed to load scaler %s: %w", scalerPath, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m, err := New(&scaler, &forest)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model_path", modelPath).
		Str("scaler_path", scalerPath).
		Int("trees", len(forest.Trees)).
		Int("features", forest.NFeatures).
		Msg("Risk model loaded")

	return m, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(v)
}
