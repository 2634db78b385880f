package advice

import (
	"encoding/json"
	"testing"

	"Glupulse_Advisor/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n\t", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"only trailing fence", "{\"a\":1}\n```", `{"a":1}`},
		{"fence with outer whitespace", "\n\n```json {\"a\":1} ```  \n", `{"a":1}`},
		{"fence inside text is kept", "{\"a\":\"```\"}", "{\"a\":\"```\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFences(tt.input))
		})
	}
}

func TestValidateFencedPartialAdvice(t *testing.T) {
	t.Parallel()

	p, err := Validate("```json\n{\"healthAdvice\":{\"food\":[{\"title\":\"a\",\"description\":\"b\"}]}}\n```")
	require.NoError(t, err)

	assert.Equal(t, []Item{{Title: "a", Description: "b"}}, p.HealthAdvice.Food)
	assert.Equal(t, []Item{}, p.HealthAdvice.Exercise)
	assert.Equal(t, []BlogRef{}, p.HealthAdvice.Blog)
}

func TestValidateTruncatesToThree(t *testing.T) {
	t.Parallel()

	raw := `{
		"summary": "ok",
		"healthAdvice": {
			"food": [
				{"title": "1", "description": "d1"},
				{"title": "2", "description": "d2"},
				{"title": "3", "description": "d3"},
				{"title": "4", "description": "d4"},
				{"title": "5", "description": "d5"}
			],
			"exercise": [
				{"title": "walk", "description": "30 min"},
				{"title": "swim", "description": "20 min"}
			],
			"blog": [
				{"category": "โรค"}, {"category": "โภชนาการ"}, {"category": "ความรู้"}, {"category": "ข่าวสาร"}
			]
		}
	}`

	p, err := Validate(raw)
	require.NoError(t, err)

	require.Len(t, p.HealthAdvice.Food, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{
		p.HealthAdvice.Food[0].Title, p.HealthAdvice.Food[1].Title, p.HealthAdvice.Food[2].Title,
	})
	assert.Len(t, p.HealthAdvice.Exercise, 2)
	assert.Equal(t, []BlogRef{{"โรค"}, {"โภชนาการ"}, {"ความรู้"}}, p.HealthAdvice.Blog)
	assert.Equal(t, "ok", p.Summary())
}

func TestValidateKeepsOtherTopLevelFields(t *testing.T) {
	t.Parallel()

	p, err := Validate(`{"summary": "s", "extra": {"n": 1}, "healthAdvice": {}}`)
	require.NoError(t, err)

	fields := p.Fields()
	assert.JSONEq(t, `"s"`, string(fields["summary"]))
	assert.JSONEq(t, `{"n": 1}`, string(fields["extra"]))
	assert.NotContains(t, fields, "healthAdvice")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"summary": "s",
		"extra": {"n": 1},
		"healthAdvice": {"food": [], "exercise": [], "blog": []}
	}`, string(out))
}

func TestValidateKeepsOtherHealthAdviceKeys(t *testing.T) {
	t.Parallel()

	p, err := Validate(`{"healthAdvice": {"water": "8 แก้ว", "sleep": {"hours": 7}, "food": [{"title": "a", "description": "b"}]}}`)
	require.NoError(t, err)

	extra := p.HealthAdvice.Extra()
	assert.Len(t, extra, 2)
	assert.JSONEq(t, `"8 แก้ว"`, string(extra["water"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"healthAdvice": {
			"food": [{"title": "a", "description": "b"}],
			"exercise": [],
			"blog": [],
			"water": "8 แก้ว",
			"sleep": {"hours": 7}
		}
	}`, string(out))
}

func TestValidatePassesUnknownBlogCategories(t *testing.T) {
	t.Parallel()

	p, err := Validate(`{"healthAdvice": {"blog": [{"category": "ความรู้"}, {"category": "gossip"}]}}`)
	require.NoError(t, err)

	assert.Equal(t, []BlogRef{{"ความรู้"}, {"gossip"}}, p.HealthAdvice.Blog)
	assert.Equal(t, []string{"gossip"}, p.UnknownBlogCategories())
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"not JSON", "sorry, I cannot help"},
		{"empty", ""},
		{"empty fence", "```json\n```"},
		{"array root", `[{"healthAdvice": {}}]`},
		{"null root", `null`},
		{"healthAdvice missing", `{"summary": "hi"}`},
		{"healthAdvice is a string", `{"healthAdvice": "eat well"}`},
		{"healthAdvice is null", `{"healthAdvice": null}`},
		{"healthAdvice is an array", `{"healthAdvice": []}`},
		{"food is a string", `{"healthAdvice": {"food": "rice"}}`},
		{"exercise is null", `{"healthAdvice": {"exercise": null}}`},
		{"blog items are strings", `{"healthAdvice": {"blog": ["ความรู้"]}}`},
		{"truncated JSON", `{"healthAdvice": {"food": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrAdviceFormat)
		})
	}
}

func TestPayloadSummaryNotString(t *testing.T) {
	t.Parallel()

	p, err := Validate(`{"summary": 42, "healthAdvice": {}}`)
	require.NoError(t, err)

	assert.Equal(t, "", p.Summary())
	assert.JSONEq(t, `42`, string(p.Fields()["summary"]))
}
