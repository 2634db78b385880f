package health

import "Glupulse_Advisor/internal/riskmodel"

// UserInput holds the biometrics submitted for one assessment.
type UserInput struct {
	Gender       string
	Age          float64
	SystolicBP   float64
	DiastolicBP  float64
	BMI          float64
	BloodGlucose float64 // mg/dl
	HbA1c        float64 // percent
	DiabetesType string  // self-reported diagnosis, passed to the prompt as-is
	MoodStatus   string
}

// DerivedFeatures are the engineered flags computed from UserInput.
type DerivedFeatures struct {
	Hypertension int
	// HeartDisease is the training dataset's column name. It flags high glucose
	// or obesity, not a cardiac diagnosis.
	HeartDisease int
}

// RiskCategory is the localized diabetes risk label returned to clients.
type RiskCategory string

const (
	RiskLow      RiskCategory = "ต่ำ"
	RiskWatch    RiskCategory = "เฝ้าระวัง"
	RiskModerate RiskCategory = "ปานกลาง"
	RiskHigh     RiskCategory = "เสี่ยงสูง"
)

// Level returns the English ordinal name, for logs.
func (r RiskCategory) Level() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskWatch:
		return "watch"
	case RiskModerate:
		return "moderate"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Assessment is the scoring result for one request.
type Assessment struct {
	Score       int
	Risk        RiskCategory
	RiskPercent int
	Derived     DerivedFeatures
	Prediction  riskmodel.Prediction
}

// RiskModel is the classifier contract the calculator depends on.
// *riskmodel.Model satisfies it.
type RiskModel interface {
	Predict(features []float64) (riskmodel.Prediction, error)
}
