/*
Package advice builds the nutrition prompt for an assessment, sends it to the
configured LLM provider, and turns the model's reply into a validated advice
payload.
*/
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Glupulse_Advisor/internal/apperror"
	"Glupulse_Advisor/internal/health"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// RequesterConfig tunes the LLM call.
type RequesterConfig struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transient failure.
	Retries int
	// Backoff is the wait before the first retry; it doubles on each retry.
	Backoff time.Duration
	// BreakerFailures is the number of consecutive failures that opens the
	// circuit; BreakerCooldown is how long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// errCallerDone marks an attempt cut short by the caller's own context.
var errCallerDone = errors.New("caller gave up")

// DefaultRequesterConfig returns the production settings.
func DefaultRequesterConfig() RequesterConfig {
	return RequesterConfig{
		Timeout:         30 * time.Second,
		Retries:         1,
		Backoff:         1 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Requester asks the LLM for advice on one assessment.
type Requester struct {
	completer Completer
	cfg       RequesterConfig
	breaker   *gobreaker.CircuitBreaker
}

// NewRequester wraps completer with a timeout, bounded retry and a circuit
// breaker.
func NewRequester(completer Completer, cfg RequesterConfig) *Requester {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: cfg.BreakerCooldown,
		// A caller that cancels or runs out of time says nothing about the
		// provider, so it must not count toward opening the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerDone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("LLM circuit breaker state changed")
		},
	})

	return &Requester{completer: completer, cfg: cfg, breaker: breaker}
}

// BreakerState reports the circuit breaker state for the health endpoint.
func (r *Requester) BreakerState() string {
	return r.breaker.State().String()
}

// RequestAdvice renders the prompt for in and a, calls the LLM and returns the
// raw text of the first completion.
func (r *Requester) RequestAdvice(ctx context.Context, in health.UserInput, a health.Assessment) (string, error) {
	const op = "advice.RequestAdvice"
	logger := zerolog.Ctx(ctx)

	req := ChatRequest{
		System:      SystemPrompt,
		User:        BuildPrompt(in, a),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	var (
		lastErr error
		tried   int
	)
	attempts := r.cfg.Retries + 1

	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := r.cfg.Backoff * time.Duration(1<<(i-1))
			logger.Warn().Err(lastErr).Dur("backoff", wait).Msgf("Attempt %d failed, retrying", i)

			select {
			case <-ctx.Done():
				return "", apperror.LLMService(op, ctx.Err())
			case <-time.After(wait):
			}
		}

		tried++
		start := time.Now()
		text, err := r.attempt(ctx, req)
		if err == nil {
			logger.Info().
				Int("attempt", i+1).
				Int64("api_ms", time.Since(start).Milliseconds()).
				Int("response_length", len(text)).
				Msg("AI advice received")
			return text, nil
		}
		lastErr = err

		if !r.retryable(ctx, err) {
			break
		}
	}

	return "", apperror.LLMService(op, fmt.Errorf("failed after %d attempt(s): %w", tried, lastErr))
}

func (r *Requester) attempt(ctx context.Context, req ChatRequest) (string, error) {
	attemptCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	out, err := r.breaker.Execute(func() (interface{}, error) {
		text, err := r.completer.Complete(attemptCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errCallerDone, err)
			}
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("empty completion text")
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// retryable is false once the caller gave up or the circuit is open.
func (r *Requester) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return isTransient(err)
}
