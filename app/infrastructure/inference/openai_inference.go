package inference

import (
	"context"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"square.ai/skill-gateway/app/domain/common"
	inferencedomain "square.ai/skill-gateway/app/domain/inference"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

var ErrInferenceUnavailable = fmt.Errorf("inference endpoint %w", common.ErrUnavailable)

// OpenAIInference calls OpenAI compatible endpoints, keeping one client per
// base URL and key.
type OpenAIInference struct {
	defaultBaseURL string
	defaultAPIKey  string

	mu      sync.Mutex
	clients map[inferencedomain.Endpoint]*openai.Client
}

var _ inferencedomain.InferenceProvider = (*OpenAIInference)(nil)

func NewOpenAIInference() *OpenAIInference {
	env := environment_variables.EnvironmentVariables
	return NewOpenAIInferenceWithDefaults(env.OPENAI_BASE_URL, env.OPENAI_API_KEY)
}

func NewOpenAIInferenceWithDefaults(baseURL, apiKey string) *OpenAIInference {
	return &OpenAIInference{
		defaultBaseURL: baseURL,
		defaultAPIKey:  apiKey,
		clients:        make(map[inferencedomain.Endpoint]*openai.Client),
	}
}

func (o *OpenAIInference) CreateCompletion(ctx context.Context, endpoint inferencedomain.Endpoint, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	client := o.client(endpoint)
	resp, err := client.CreateChatCompletion(ctx, request)
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "3e5a0c1d-8f7b-4d2a-b6e4-1c9d0f2a7b58").
			WithField("model", request.Model).
			Errorf("chat completion failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}
	return &resp, nil
}

func (o *OpenAIInference) client(endpoint inferencedomain.Endpoint) *openai.Client {
	if endpoint.BaseURL == "" {
		endpoint.BaseURL = o.defaultBaseURL
	}
	if endpoint.APIKey == "" {
		endpoint.APIKey = o.defaultAPIKey
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if client, ok := o.clients[endpoint]; ok {
		return client
	}
	config := openai.DefaultConfig(endpoint.APIKey)
	if endpoint.BaseURL != "" {
		config.BaseURL = endpoint.BaseURL
	}
	client := openai.NewClientWithConfig(config)
	o.clients[endpoint] = client
	return client
}
