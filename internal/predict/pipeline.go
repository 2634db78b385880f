/*
Package predict runs the response pipeline for one request: score the
biometrics, request advice from the LLM, validate the reply and assemble the
final payload.
*/
package predict

import (
	"context"

	"Glupulse_Advisor/internal/advice"
	"Glupulse_Advisor/internal/health"

	"github.com/rs/zerolog"
)

// Scorer computes the risk assessment. *health.Calculator satisfies it.
type Scorer interface {
	Compute(ctx context.Context, in health.UserInput) (health.Assessment, error)
}

// AdviceRequester fetches raw advice text. *advice.Requester satisfies it.
type AdviceRequester interface {
	RequestAdvice(ctx context.Context, in health.UserInput, a health.Assessment) (string, error)
}

// Pipeline wires the scoring and advice stages together. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	scorer    Scorer
	requester AdviceRequester
}

// NewPipeline returns a Pipeline using scorer and requester.
func NewPipeline(scorer Scorer, requester AdviceRequester) *Pipeline {
	return &Pipeline{scorer: scorer, requester: requester}
}

// Run produces the full response for in. It either returns a response with
// complete validated advice or an error, never a partial result.
func (p *Pipeline) Run(ctx context.Context, in health.UserInput) (Response, error) {
	logger := zerolog.Ctx(ctx)

	// 1. Score the biometrics
	assessment, err := p.scorer.Compute(ctx, in)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("health_score", assessment.Score).
		Str("risk", assessment.Risk.Level()).
		Int("risk_percent", assessment.RiskPercent).
		Msg("Assessment computed, requesting AI advice")

	// 2. Ask the LLM
	raw, err := p.requester.RequestAdvice(ctx, in, assessment)
	if err != nil {
		return nil, err
	}

	// 3. Validate and truncate the reply
	payload, err := advice.Validate(raw)
	if err != nil {
		logger.Error().
			Err(err).
			Str("raw_response", raw).
			Msg("Could not read AI advice")
		return nil, err
	}

	if unknown := payload.UnknownBlogCategories(); len(unknown) > 0 {
		logger.Warn().Strs("categories", unknown).Msg("AI advice uses blog categories outside the known set")
	}

	// 4. Merge
	return Assemble(assessment, payload), nil
}
