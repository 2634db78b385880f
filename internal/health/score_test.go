package health

import (
	"context"
	"errors"
	"testing"

	"Glupulse_Advisor/internal/apperror"
	"Glupulse_Advisor/internal/riskmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel returns a fixed prediction and records the features it saw.
type fakeModel struct {
	pred riskmodel.Prediction
	err  error
	seen [][]float64
}

func (f *fakeModel) Predict(features []float64) (riskmodel.Prediction, error) {
	f.seen = append(f.seen, features)
	return f.pred, f.err
}

func negative(p float64) *fakeModel {
	return &fakeModel{pred: riskmodel.Prediction{Label: 0, Probability: p}}
}

// healthy is a baseline that triggers no rule.
func healthy() UserInput {
	return UserInput{
		Gender:       "male",
		Age:          30,
		SystolicBP:   115,
		DiastolicBP:  75,
		BMI:          22,
		BloodGlucose: 85,
		HbA1c:        5.0,
		DiabetesType: "no",
		MoodStatus:   "calm",
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*UserInput)
		want   DerivedFeatures
	}{
		{"none", func(*UserInput) {}, DerivedFeatures{}},
		{"systolic at threshold", func(in *UserInput) { in.SystolicBP = 140 }, DerivedFeatures{Hypertension: 1}},
		{"diastolic at threshold", func(in *UserInput) { in.DiastolicBP = 90 }, DerivedFeatures{Hypertension: 1}},
		{"glucose at threshold", func(in *UserInput) { in.BloodGlucose = 180 }, DerivedFeatures{HeartDisease: 1}},
		{"bmi at threshold", func(in *UserInput) { in.BMI = 30 }, DerivedFeatures{HeartDisease: 1}},
		{"just below thresholds", func(in *UserInput) {
			in.SystolicBP, in.DiastolicBP, in.BloodGlucose, in.BMI = 139.9, 89.9, 179.9, 29.9
		}, DerivedFeatures{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthy()
			tt.modify(&in)
			assert.Equal(t, tt.want, Derive(in))
		})
	}
}

func TestGenderCode(t *testing.T) {
	t.Parallel()

	for _, g := range []string{"Male", "male", "MALE"} {
		assert.Equal(t, float64(0), GenderCode(g), g)
	}
	for _, g := range []string{"Female", "female", "other", "", " male"} {
		assert.Equal(t, float64(1), GenderCode(g), g)
	}
}

func TestFeatureVectorOrder(t *testing.T) {
	t.Parallel()

	in := UserInput{
		Gender:       "female",
		Age:          50,
		SystolicBP:   150,
		DiastolicBP:  95,
		BMI:          33,
		BloodGlucose: 190,
		HbA1c:        7.0,
	}

	got := FeatureVector(in, Derive(in))
	assert.Equal(t, []float64{1, 50, 1, 1, 33, 7.0, 190, 150, 95}, got)
}

func TestComputeRiskCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*UserInput)
		positive  bool
		wantRisk  RiskCategory
		wantScore int
	}{
		{"low", func(*UserInput) {}, false, RiskLow, 10},
		{"watch from glucose 100", func(in *UserInput) { in.BloodGlucose = 100 }, false, RiskWatch, 9},
		{"moderate from glucose 140", func(in *UserInput) { in.BloodGlucose = 140 }, false, RiskModerate, 8},
		{"moderate from HbA1c 5.7", func(in *UserInput) { in.HbA1c = 5.7 }, false, RiskModerate, 8},
		{"moderate beats watch", func(in *UserInput) { in.HbA1c, in.BloodGlucose = 6.0, 120 }, false, RiskModerate, 8},
		{"high from HbA1c regardless of glucose", func(in *UserInput) { in.HbA1c, in.BloodGlucose = 6.6, 70 }, false, RiskHigh, 6},
		{"high from glucose 180", func(in *UserInput) { in.BloodGlucose = 180 }, false, RiskHigh, 6},
		{"high from model prediction", func(*UserInput) {}, true, RiskHigh, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthy()
			tt.modify(&in)

			m := negative(0.1)
			if tt.positive {
				m.pred.Label = 1
			}

			a, err := NewCalculator(m).Compute(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRisk, a.Risk)
			assert.Equal(t, tt.wantScore, a.Score)
		})
	}
}

func TestComputeVitalsPenalties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*UserInput)
		wantScore int
	}{
		{"high blood pressure", func(in *UserInput) { in.SystolicBP = 145 }, 8},
		{"underweight", func(in *UserInput) { in.BMI = 18.4 }, 9},
		{"bmi 18.5 is normal", func(in *UserInput) { in.BMI = 18.5 }, 10},
		{"bmi 24.9 is normal", func(in *UserInput) { in.BMI = 24.9 }, 10},
		{"overweight", func(in *UserInput) { in.BMI = 27 }, 8},
		{"bmi 30 is overweight only", func(in *UserInput) { in.BMI = 30 }, 8},
		{"obese accumulates both penalties", func(in *UserInput) { in.BMI = 32 }, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthy()
			tt.modify(&in)

			a, err := NewCalculator(negative(0.1)).Compute(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, a.Score)
		})
	}
}

func TestComputeEndToEndScenario(t *testing.T) {
	t.Parallel()

	in := UserInput{
		Gender:       "female",
		Age:          50,
		SystolicBP:   150,
		DiastolicBP:  95,
		BMI:          33,
		BloodGlucose: 190,
		HbA1c:        7.0,
		DiabetesType: "no",
		MoodStatus:   "stressed",
	}
	m := &fakeModel{pred: riskmodel.Prediction{Label: 1, Probability: 0.874}}

	a, err := NewCalculator(m).Compute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, DerivedFeatures{Hypertension: 1, HeartDisease: 1}, a.Derived)
	assert.Equal(t, RiskHigh, a.Risk)
	assert.Equal(t, 1, a.Score)
	assert.Equal(t, 87, a.RiskPercent)
	require.Len(t, m.seen, 1)
	assert.Equal(t, []float64{1, 50, 1, 1, 33, 7.0, 190, 150, 95}, m.seen[0])
}

func TestComputeScoreNeverNegative(t *testing.T) {
	t.Parallel()

	for _, bmi := range []float64{10, 18.4, 25, 31, 60} {
		for _, glucose := range []float64{50, 100, 150, 200} {
			for _, hba1c := range []float64{4, 5.8, 7} {
				for _, sys := range []float64{100, 160} {
					in := UserInput{BMI: bmi, BloodGlucose: glucose, HbA1c: hba1c, SystolicBP: sys, DiastolicBP: 80}
					a, err := NewCalculator(&fakeModel{pred: riskmodel.Prediction{Label: 1, Probability: 0.5}}).Compute(context.Background(), in)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, a.Score, 0)
					assert.LessOrEqual(t, a.Score, 10)
				}
			}
		}
	}
}

func TestComputeRiskPercentRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		proba float64
		want  int
	}{
		{0, 0},
		{0.004, 0},
		{0.126, 13},
		{0.125, 12},
		{0.996, 100},
		{1, 100},
	}

	for _, tt := range tests {
		a, err := NewCalculator(negative(tt.proba)).Compute(context.Background(), healthy())
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.RiskPercent, "probability %v", tt.proba)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewCalculator(negative(0.42))
	in := healthy()
	in.BloodGlucose = 150

	first, err := c.Compute(context.Background(), in)
	require.NoError(t, err)
	second, err := c.Compute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeModelError(t *testing.T) {
	t.Parallel()

	c := NewCalculator(&fakeModel{err: errors.New("scaler expects 9 features, got 8")})

	_, err := c.Compute(context.Background(), healthy())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrModel)
}

func TestComputeWithLoadedModel(t *testing.T) {
	t.Parallel()

	m, err := riskmodel.Load(context.Background(), "../riskmodel/testdata/rf_model.json", "../riskmodel/testdata/scaler.json")
	require.NoError(t, err)

	a, err := NewCalculator(m).Compute(context.Background(), healthy())
	require.NoError(t, err)
	assert.Equal(t, RiskLow, a.Risk)
	assert.Equal(t, 30, a.RiskPercent)
}

func TestRiskCategoryLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", RiskLow.Level())
	assert.Equal(t, "watch", RiskWatch.Level())
	assert.Equal(t, "moderate", RiskModerate.Level())
	assert.Equal(t, "high", RiskHigh.Level())
	assert.Equal(t, "unknown", RiskCategory("x").Level())
}
