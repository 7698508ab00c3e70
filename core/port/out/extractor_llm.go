package out

import "context"

// LLMPort is the outbound port for chat-completion requests. CompleteJSON
// must ask the provider for a JSON object response and return the raw text
// of the first choice.
type LLMPort interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
