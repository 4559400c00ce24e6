package model

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/inference"
	"square.ai/skill-gateway/app/domain/resource"
)

type fakeInference struct {
	endpoint inference.Endpoint
	request  openai.ChatCompletionRequest
}

func (f *fakeInference) CreateCompletion(ctx context.Context, endpoint inference.Endpoint, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	f.endpoint = endpoint
	f.request = request
	return &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "hello"},
			FinishReason: openai.FinishReasonStop,
		}},
	}, nil
}

func TestCompleteResolvesEndpoint(t *testing.T) {
	t.Setenv("TEST_MODEL_KEY", "secret")
	fake := &fakeInference{}
	svc := NewModelService(fake)
	m := &Model{ID: "mdl_1", Identifier: "tiny", ModelName: "tiny-llm", BaseURL: "http://llm/v1", APIKeyEnv: "TEST_MODEL_KEY"}

	resp, err := svc.Complete(context.Background(), m, CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "hello" || resp.FinishReason != "stop" || resp.ModelID != "mdl_1" {
		t.Errorf("unexpected response %+v", resp)
	}
	if fake.endpoint.APIKey != "secret" || fake.endpoint.BaseURL != "http://llm/v1" {
		t.Errorf("unexpected endpoint %+v", fake.endpoint)
	}
	if fake.request.Model != "tiny-llm" {
		t.Errorf("unexpected model %q", fake.request.Model)
	}

	if _, err := svc.Complete(context.Background(), m, CompletionRequest{}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for empty prompt, got %v", err)
	}
}

func TestModelResourceRoundTrip(t *testing.T) {
	m := &Model{Identifier: "tiny", ModelName: "tiny-llm", Published: true}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	r, err := m.ToResource()
	if err != nil {
		t.Fatalf("to resource: %v", err)
	}
	if r.Kind != resource.KindModel || !r.Published || r.Fields["model_name"] != "tiny-llm" {
		t.Errorf("unexpected resource %+v", r)
	}
	r.ID = "mdl_x"
	back, err := FromResource(r)
	if err != nil {
		t.Fatalf("from resource: %v", err)
	}
	if back.ID != "mdl_x" || back.Identifier != "tiny" {
		t.Errorf("unexpected model %+v", back)
	}

	if err := (&Model{Identifier: "x", ModelName: "y", BaseURL: "ftp://x"}).Validate(); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("expected invalid base url, got %v", err)
	}
}
