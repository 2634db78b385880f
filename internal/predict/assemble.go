package predict

import (
	"Glupulse_Advisor/internal/advice"
	"Glupulse_Advisor/internal/health"
)

// Response keys owned by the scoring side.
const (
	KeyHealthScore         = "health_score"
	KeyDiabetesRisk        = "diabetes_risk"
	KeyDiabetesRiskPercent = "diabetes_risk_percent"
	KeyHealthAdvice        = "healthAdvice"
)

// Response is the merged /predict payload.
type Response map[string]any

// Assemble merges the assessment with every top-level field of the advice
// payload. Advice fields are written last and win on a key collision.
func Assemble(a health.Assessment, p advice.Payload) Response {
	resp := Response{
		KeyHealthScore:         a.Score,
		KeyDiabetesRisk:        a.Risk,
		KeyDiabetesRiskPercent: a.RiskPercent,
	}

	for k, v := range p.Fields() {
		resp[k] = v
	}
	resp[KeyHealthAdvice] = p.HealthAdvice

	return resp
}
