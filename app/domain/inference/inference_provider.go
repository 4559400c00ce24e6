package inference

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Endpoint is an OpenAI compatible API. Empty fields fall back to the
// provider's defaults.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

type InferenceProvider interface {
	CreateCompletion(ctx context.Context, endpoint Endpoint, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error)
}
