// Package llm provides the Groq chat-completion adapter.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"extractor_server/core/port/out"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter implements out.LLMPort against Groq's OpenAI-compatible API.
// The API key is read from configuration at construction and not validated
// up front; a missing key surfaces as a transport error at call time.
type GroqAdapter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewGroqAdapter(cfg Config) *GroqAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "llama3-8b-8192"
	}

	return &GroqAdapter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// CompleteJSON sends one chat-completion request asking for a JSON object
// response and returns the raw content of the first choice.
func (a *GroqAdapter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if a.maxTokens > 0 {
		req.MaxTokens = a.maxTokens
	}
	if a.temperature > 0 {
		req.Temperature = a.temperature
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "{}", nil
	}
	return resp.Choices[0].Message.Content, nil
}

var _ out.LLMPort = (*GroqAdapter)(nil)
