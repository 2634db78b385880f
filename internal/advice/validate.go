package advice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"Glupulse_Advisor/internal/apperror"
)

const (
	fieldSummary      = "summary"
	fieldHealthAdvice = "healthAdvice"

	listFood     = "food"
	listExercise = "exercise"
	listBlog     = "blog"
)

// Item is one food or exercise suggestion.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BlogRef points the client at a content category.
type BlogRef struct {
	Category string `json:"category"`
}

// HealthAdvice holds the truncated advice lists. The slices are never nil so
// they encode as [] rather than null. Any other keys the model put inside
// healthAdvice are kept verbatim and re-emitted by MarshalJSON.
type HealthAdvice struct {
	Food     []Item    `json:"food"`
	Exercise []Item    `json:"exercise"`
	Blog     []BlogRef `json:"blog"`

	extra map[string]json.RawMessage
}

// Extra returns the healthAdvice keys other than food, exercise and blog.
func (h HealthAdvice) Extra() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(h.extra))
	for k, v := range h.extra {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the lists together with the extra keys. The lists win
// on a name collision.
func (h HealthAdvice) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.extra)+3)
	for k, v := range h.extra {
		out[k] = v
	}
	out[listFood] = nonNil(h.Food)
	out[listExercise] = nonNil(h.Exercise)
	out[listBlog] = nonNil(h.Blog)
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Payload is validated LLM output: typed advice plus every other top-level
// field exactly as the model produced it.
type Payload struct {
	HealthAdvice HealthAdvice
	fields       map[string]json.RawMessage
}

// Summary returns the summary text, or "" when absent or not a string.
func (p Payload) Summary() string {
	raw, ok := p.fields[fieldSummary]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Fields returns the top-level fields other than healthAdvice.
func (p Payload) Fields() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the untouched fields together with healthAdvice.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.fields)+1)
	for k, v := range p.fields {
		out[k] = v
	}
	out[fieldHealthAdvice] = p.HealthAdvice
	return json.Marshal(out)
}

// UnknownBlogCategories returns blog categories outside BlogCategories.
// They are not rejected; callers may log them.
func (p Payload) UnknownBlogCategories() []string {
	var unknown []string
	for _, b := range p.HealthAdvice.Blog {
		if !KnownBlogCategory(b.Category) {
			unknown = append(unknown, b.Category)
		}
	}
	return unknown
}

// NormalizeFences trims whitespace and a surrounding markdown code fence
// (```json or ```) that models add despite being told not to.
func NormalizeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Validate parses raw LLM output into a Payload. healthAdvice must be an
// object; food, exercise and blog default to empty and keep at most MaxItems
// entries each. Other keys, at either level, are passed through.
func Validate(raw string) (Payload, error) {
	const op = "advice.Validate"

	cleaned := NormalizeFences(raw)

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &root); err != nil {
		return Payload{}, apperror.AdviceFormat(op, fmt.Errorf("response is not a JSON object: %w", err))
	}

	adviceRaw, ok := root[fieldHealthAdvice]
	if !ok {
		return Payload{}, apperror.AdviceFormat(op, errors.New("healthAdvice missing"))
	}
	if !isObject(adviceRaw) {
		return Payload{}, apperror.AdviceFormat(op, errors.New("healthAdvice is not an object"))
	}

	var section map[string]json.RawMessage
	if err := json.Unmarshal(adviceRaw, &section); err != nil {
		return Payload{}, apperror.AdviceFormat(op, fmt.Errorf("healthAdvice: %w", err))
	}

	food, err := decodeList[Item](section, listFood)
	if err != nil {
		return Payload{}, apperror.AdviceFormat(op, err)
	}
	exercise, err := decodeList[Item](section, listExercise)
	if err != nil {
		return Payload{}, apperror.AdviceFormat(op, err)
	}
	blog, err := decodeList[BlogRef](section, listBlog)
	if err != nil {
		return Payload{}, apperror.AdviceFormat(op, err)
	}

	delete(root, fieldHealthAdvice)
	delete(section, listFood)
	delete(section, listExercise)
	delete(section, listBlog)

	return Payload{
		HealthAdvice: HealthAdvice{Food: food, Exercise: exercise, Blog: blog, extra: section},
		fields:       root,
	}, nil
}

// decodeList reads section[key] as an array of T, truncated to MaxItems. A
// missing key yields an empty list; anything other than an array of objects
// is an error.
func decodeList[T any](section map[string]json.RawMessage, key string) ([]T, error) {
	raw, ok := section[key]
	if !ok {
		return []T{}, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("healthAdvice.%s is not an array", key)
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("healthAdvice.%s: %w", key, err)
	}

	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
