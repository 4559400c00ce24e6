package skill

import (
	"fmt"
	"strings"

	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/utils/functional"
)

var ErrInvalidSkill = fmt.Errorf("invalid skill: %w", resource.ErrInvalidDocument)

type SkillType string

const (
	SkillTypeAbstractive          SkillType = "abstractive"
	SkillTypeExtractive           SkillType = "extractive"
	SkillTypeMultipleChoice       SkillType = "multiple-choice"
	SkillTypeCategorical          SkillType = "categorical"
	SkillTypeInformationRetrieval SkillType = "information-retrieval"
	SkillTypeGenerative           SkillType = "generative"
)

func (t SkillType) Valid() bool {
	switch t {
	case SkillTypeAbstractive, SkillTypeExtractive, SkillTypeMultipleChoice,
		SkillTypeCategorical, SkillTypeInformationRetrieval, SkillTypeGenerative:
		return true
	}
	return false
}

// SkillArgs configures a prediction. Zero values mean "not set" so request
// arguments can be layered over the skill's defaults.
type SkillArgs struct {
	BaseModel       string `json:"base_model,omitempty"`
	Adapter         string `json:"adapter,omitempty"`
	AverageAdapters bool   `json:"average_adapters,omitempty"`
	MaxLength       *int   `json:"max_length,omitempty"`
	TopK            *int   `json:"top_k,omitempty"`
	Datastore       string `json:"datastore,omitempty"`
	IndexName       string `json:"index_name,omitempty"`

	// Context and Choices are per-query inputs of extractive and
	// multiple-choice skills.
	Context string   `json:"context,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

// Merge returns a copy of a with every field set in override replacing it.
func (a SkillArgs) Merge(override *SkillArgs) SkillArgs {
	if override == nil {
		return a
	}
	merged := a
	if override.BaseModel != "" {
		merged.BaseModel = override.BaseModel
	}
	if override.Adapter != "" {
		merged.Adapter = override.Adapter
	}
	if override.AverageAdapters {
		merged.AverageAdapters = true
	}
	if override.MaxLength != nil {
		merged.MaxLength = override.MaxLength
	}
	if override.TopK != nil {
		merged.TopK = override.TopK
	}
	if override.Datastore != "" {
		merged.Datastore = override.Datastore
	}
	if override.IndexName != "" {
		merged.IndexName = override.IndexName
	}
	if override.Context != "" {
		merged.Context = override.Context
	}
	if len(override.Choices) > 0 {
		merged.Choices = override.Choices
	}
	return merged
}

func (a SkillArgs) Validate() error {
	if a.MaxLength != nil && *a.MaxLength <= 0 {
		return fmt.Errorf("%w: max_length must be positive", ErrInvalidSkill)
	}
	if a.TopK != nil && *a.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidSkill)
	}
	return nil
}

type Skill struct {
	ID            string `json:"id"`
	OwnerUsername string `json:"owner_username"`
	Published     bool   `json:"published"`

	Name             string    `json:"name"`
	SkillType        SkillType `json:"skill_type"`
	Description      string    `json:"description,omitempty"`
	URL              string    `json:"url,omitempty"`
	DefaultSkillArgs SkillArgs `json:"default_skill_args"`
	DataSets         []string  `json:"data_sets,omitempty"`
	// Image is the container image the deploy job runs.
	Image string `json:"image,omitempty"`
	// ModelID points generative skills at a registered model.
	ModelID string `json:"model_id,omitempty"`
}

func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSkill)
	}
	if !s.SkillType.Valid() {
		return fmt.Errorf("%w: unknown skill_type %q", ErrInvalidSkill, s.SkillType)
	}
	if s.SkillType == SkillTypeGenerative {
		if s.ModelID == "" {
			return fmt.Errorf("%w: generative skills need a model_id", ErrInvalidSkill)
		}
	} else if s.URL == "" && s.Image == "" {
		return fmt.Errorf("%w: url or image is required", ErrInvalidSkill)
	}
	if s.URL != "" && !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("%w: url must be an http(s) url", ErrInvalidSkill)
	}
	if len(s.DataSets) > 0 {
		s.DataSets = functional.Distinct(s.DataSets)
	}
	return s.DefaultSkillArgs.Validate()
}

func FromResource(r *resource.Resource) (*Skill, error) {
	var s Skill
	if err := resource.Decode(r, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Skill) ToResource() (*resource.Resource, error) {
	return resource.Encode(resource.KindSkill, s)
}

// QueryRequest is the body of a skill query.
type QueryRequest struct {
	Query         string         `json:"query" binding:"required"`
	SkillArgs     *SkillArgs     `json:"skill_args,omitempty"`
	ExplainKwargs map[string]any `json:"explain_kwargs,omitempty"`
}

func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidSkill)
	}
	if q.SkillArgs != nil {
		return q.SkillArgs.Validate()
	}
	return nil
}

type SkillHealth struct {
	SkillID   string `json:"skill_id"`
	IsAlive   bool   `json:"is_alive"`
	CheckedAt string `json:"checked_at,omitempty"`
	Known     bool   `json:"known"`
}
