/*
Package health derives the engineered risk features from user biometrics,
queries the risk model and computes the 0-10 health score.
*/
package health

import (
	"context"
	"fmt"
	"math"
	"strings"

	"Glupulse_Advisor/internal/apperror"

	"github.com/rs/zerolog"
)

const maxScore = 10

// Clinical thresholds.
const (
	hypertensionSystolic  = 140.0
	hypertensionDiastolic = 90.0

	hba1cDiabetic    = 6.5
	hba1cPrediabetic = 5.7

	glucoseDiabetic = 180.0
	glucoseElevated = 140.0
	glucoseWatch    = 100.0

	bmiUnderweight = 18.5
	bmiOverweight  = 24.9
	bmiObese       = 30.0
)

// Calculator scores a UserInput against a shared RiskModel.
type Calculator struct {
	model RiskModel
}

// NewCalculator returns a Calculator backed by model.
func NewCalculator(model RiskModel) *Calculator {
	return &Calculator{model: model}
}

// Derive computes the hypertension and heart_disease flags.
func Derive(in UserInput) DerivedFeatures {
	var d DerivedFeatures
	if HasHighBloodPressure(in) {
		d.Hypertension = 1
	}
	if in.BloodGlucose >= glucoseDiabetic || in.BMI >= bmiObese {
		d.HeartDisease = 1
	}
	return d
}

// HasHighBloodPressure reports a reading at or above 140/90.
func HasHighBloodPressure(in UserInput) bool {
	return in.SystolicBP >= hypertensionSystolic || in.DiastolicBP >= hypertensionDiastolic
}

// GenderCode encodes gender the way the classifier was trained: 0 for male,
// 1 for anything else.
func GenderCode(gender string) float64 {
	if strings.EqualFold(gender, "male") {
		return 0
	}
	return 1
}

// FeatureVector returns the classifier input in training column order.
func FeatureVector(in UserInput, d DerivedFeatures) []float64 {
	return []float64{
		GenderCode(in.Gender),
		in.Age,
		float64(d.Hypertension),
		float64(d.HeartDisease),
		in.BMI,
		in.HbA1c,
		in.BloodGlucose,
		in.SystolicBP,
		in.DiastolicBP,
	}
}

// Compute returns the health score, risk category and risk percentage for in.
func (c *Calculator) Compute(ctx context.Context, in UserInput) (Assessment, error) {
	logger := zerolog.Ctx(ctx)

	derived := Derive(in)
	pred, err := c.model.Predict(FeatureVector(in, derived))
	if err != nil {
		return Assessment{}, apperror.Model("health.Compute", fmt.Errorf("risk model prediction failed: %w", err))
	}

	risk, deduction := categorize(in, pred.Positive())
	score := maxScore - deduction - vitalsDeduction(in)
	if score < 0 {
		score = 0
	}

	a := Assessment{
		Score:       score,
		Risk:        risk,
		RiskPercent: int(math.RoundToEven(pred.Probability * 100)),
		Derived:     derived,
		Prediction:  pred,
	}

	logger.Debug().
		Int("hypertension", derived.Hypertension).
		Int("heart_disease", derived.HeartDisease).
		Float64("prediction", pred.Label).
		Float64("probability", pred.Probability).
		Int("health_score", a.Score).
		Str("risk", risk.Level()).
		Msg("Health score computed")

	return a, nil
}

// categorize applies the risk rules in precedence order; the first match wins.
func categorize(in UserInput, positive bool) (RiskCategory, int) {
	switch {
	case in.HbA1c >= hba1cDiabetic || in.BloodGlucose >= glucoseDiabetic || positive:
		return RiskHigh, 4
	case (in.HbA1c >= hba1cPrediabetic && in.HbA1c < hba1cDiabetic) ||
		(in.BloodGlucose >= glucoseElevated && in.BloodGlucose < glucoseDiabetic):
		return RiskModerate, 2
	case in.BloodGlucose >= glucoseWatch && in.BloodGlucose < glucoseElevated:
		return RiskWatch, 1
	default:
		return RiskLow, 0
	}
}

// vitalsDeduction is the blood pressure and BMI penalty, independent of the
// risk category. Obesity takes both the overweight and the obese penalty.
func vitalsDeduction(in UserInput) int {
	d := 0
	if HasHighBloodPressure(in) {
		d += 2
	}
	if in.BMI < bmiUnderweight {
		d++
	} else if in.BMI > bmiOverweight {
		d += 2
	}
	if in.BMI > bmiObese {
		d++
	}
	return d
}
