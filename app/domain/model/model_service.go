package model

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/inference"
)

var ErrEmptyPrompt = fmt.Errorf("messages must not be empty: %w", common.ErrInvalidArgument)

type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type CompletionRequest struct {
	Messages    []Message `json:"messages" binding:"required"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
}

type CompletionResponse struct {
	ModelID      string       `json:"model_id"`
	Content      string       `json:"content"`
	FinishReason string       `json:"finish_reason"`
	Usage        openai.Usage `json:"usage"`
}

type ModelService struct {
	inference inference.InferenceProvider
}

func NewModelService(inferenceProvider inference.InferenceProvider) *ModelService {
	return &ModelService{
		inference: inferenceProvider,
	}
}

func (s *ModelService) Complete(ctx context.Context, m *Model, req CompletionRequest) (*CompletionResponse, error) {
	if len(req.Messages) == 0 {
		return nil, ErrEmptyPrompt
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	request := openai.ChatCompletionRequest{
		Model:     m.ModelName,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		request.Temperature = *req.Temperature
	}

	resp, err := s.inference.CreateCompletion(ctx, endpointFor(m), request)
	if err != nil {
		return nil, err
	}
	out := &CompletionResponse{
		ModelID: m.ID,
		Usage:   resp.Usage,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}

func endpointFor(m *Model) inference.Endpoint {
	endpoint := inference.Endpoint{BaseURL: m.BaseURL}
	if m.APIKeyEnv != "" {
		endpoint.APIKey = os.Getenv(m.APIKeyEnv)
	}
	return endpoint
}
