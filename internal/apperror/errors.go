/*
Package apperror defines the error taxonomy shared by the prediction pipeline.
Every failure that leaves a core package is tagged with a Kind so the transport
layer can pick a status code without inspecting error strings.
*/
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies where in the pipeline a failure happened.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInput is a missing or malformed biometric field (client error).
	KindInput
	// KindModel is a classifier or scaler invocation failure.
	KindModel
	// KindLLMService is a network or provider failure calling the chat service.
	KindLLMService
	// KindAdviceFormat is LLM output that fails parsing or the advice shape.
	KindAdviceFormat
)

// String returns the name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input_error"
	case KindModel:
		return "model_error"
	case KindLLMService:
		return "llm_service_error"
	case KindAdviceFormat:
		return "advice_format_error"
	default:
		return "unknown_error"
	}
}

// Sentinels for errors.Is checks, one per Kind.
var (
	ErrInput        = &Error{Kind: KindInput}
	ErrModel        = &Error{Kind: KindModel}
	ErrLLMService   = &Error{Kind: KindLLMService}
	ErrAdviceFormat = &Error{Kind: KindAdviceFormat}
)

// Error is a tagged pipeline error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "advice.Validate".
	Op  string
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so the sentinels
// above match any error carrying that Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// E builds a tagged error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Input tags err as a caller error.
func Input(op string, err error) error { return E(KindInput, op, err) }

// Model tags err as a classifier failure.
func Model(op string, err error) error { return E(KindModel, op, err) }

// LLMService tags err as a chat service failure.
func LLMService(op string, err error) error { return E(KindLLMService, op, err) }

// AdviceFormat tags err as unreadable LLM output.
func AdviceFormat(op string, err error) error { return E(KindAdviceFormat, op, err) }

// KindOf returns the Kind of the outermost tagged error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
