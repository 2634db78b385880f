package advice

import (
	"context"
	"errors"
	"fmt"

	gopenai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIClient is a Completer backed by the OpenAI chat completions API.
type OpenAIClient struct {
	client *gopenai.Client
	model  string
}

// NewOpenAIClient returns a client for model. An empty baseURL keeps the
// public OpenAI endpoint.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := gopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIClient{
		client: gopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: gopenai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", translateOpenAIError(err))
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// translateOpenAIError maps SDK errors that carry an HTTP status onto
// StatusError so retry classification does not depend on the SDK.
func translateOpenAIError(err error) error {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return err
}
