package model

import (
	"fmt"
	"strings"

	"square.ai/skill-gateway/app/domain/resource"
)

var ErrInvalidModel = fmt.Errorf("invalid model: %w", resource.ErrInvalidDocument)

// Model is an OpenAI compatible inference endpoint registered on the platform.
type Model struct {
	ID            string `json:"id"`
	OwnerUsername string `json:"owner_username"`
	Published     bool   `json:"published"`

	Identifier  string `json:"identifier"`
	Description string `json:"description,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	ModelName   string `json:"model_name"`
	// APIKeyEnv names the environment variable holding the endpoint's key.
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

func (m *Model) Validate() error {
	if strings.TrimSpace(m.Identifier) == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidModel)
	}
	if strings.TrimSpace(m.ModelName) == "" {
		return fmt.Errorf("%w: model_name is required", ErrInvalidModel)
	}
	if m.BaseURL != "" && !strings.HasPrefix(m.BaseURL, "http://") && !strings.HasPrefix(m.BaseURL, "https://") {
		return fmt.Errorf("%w: base_url must be an http(s) url", ErrInvalidModel)
	}
	return nil
}

func FromResource(r *resource.Resource) (*Model, error) {
	var m Model
	if err := resource.Decode(r, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) ToResource() (*resource.Resource, error) {
	return resource.Encode(resource.KindModel, m)
}
