package predict

import "Glupulse_Advisor/internal/health"

// Request is the POST /predict body. Pointer fields distinguish a missing
// value from zero; validate tags reject missing and non-positive readings.
type Request struct {
	Gender       *string  `json:"gender" validate:"required"`
	Age          *float64 `json:"age" validate:"required,gt=0,lte=150"`
	SystolicBP   *float64 `json:"systolic_bp" validate:"required,gt=0,lte=300"`
	DiastolicBP  *float64 `json:"diastolic_bp" validate:"required,gt=0,lte=250"`
	BMI          *float64 `json:"bmi" validate:"required,gt=0,lte=150"`
	BloodGlucose *float64 `json:"blood_glucose_level" validate:"required,gt=0,lte=2000"`
	HbA1c        *float64 `json:"HbA1c_level" validate:"required,gt=0,lte=25"`
	DiabetesType *string  `json:"diabetestype" validate:"required"`
	MoodStatus   *string  `json:"moodstatus" validate:"required"`
}

// ToInput copies a validated Request into a UserInput.
func (r Request) ToInput() health.UserInput {
	return health.UserInput{
		Gender:       deref(r.Gender),
		Age:          deref(r.Age),
		SystolicBP:   deref(r.SystolicBP),
		DiastolicBP:  deref(r.DiastolicBP),
		BMI:          deref(r.BMI),
		BloodGlucose: deref(r.BloodGlucose),
		HbA1c:        deref(r.HbA1c),
		DiabetesType: deref(r.DiabetesType),
		MoodStatus:   deref(r.MoodStatus),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
