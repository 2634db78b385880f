package advice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ChatRequest is a single-turn chat completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer sends a chat request to an LLM provider and returns the text of
// the first completion choice, unvalidated.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// ErrNoChoices is returned when a provider answers without any completion.
var ErrNoChoices = errors.New("no completion choices returned")

// isTransient reports whether a failed attempt is worth retrying: network
// errors, per-attempt timeouts, rate limiting and provider-side 5xx.
func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
