package checklist

import (
	"fmt"
	"strings"

	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/utils/idgen"
)

var ErrInvalidChecklist = fmt.Errorf("invalid checklist: %w", resource.ErrInvalidDocument)

type TestType string

const (
	// TestTypeMFT checks a single query against an expected answer.
	TestTypeMFT TestType = "MFT"
	// TestTypeINV checks that perturbations do not change the answer.
	TestTypeINV TestType = "INV"
)

type TestCase struct {
	Capability    string   `json:"capability"`
	TestType      TestType `json:"test_type"`
	Metric        Metric   `json:"metric,omitempty"`
	Query         string   `json:"query"`
	Context       string   `json:"context,omitempty"`
	Choices       []string `json:"choices,omitempty"`
	Expected      string   `json:"expected,omitempty"`
	Perturbations []string `json:"perturbations,omitempty"`
}

// EffectiveMetric is the metric the case is scored with.
func (tc TestCase) EffectiveMetric() Metric {
	if tc.Metric != "" {
		return tc.Metric
	}
	if tc.TestType == TestTypeINV {
		return MetricInvariance
	}
	return MetricExactMatch
}

// Queries lists the queries to send: the original first, then perturbations.
func (tc TestCase) Queries() []string {
	if tc.TestType != TestTypeINV {
		return []string{tc.Query}
	}
	return append([]string{tc.Query}, tc.Perturbations...)
}

type Checklist struct {
	ID            string `json:"id"`
	OwnerUsername string `json:"owner_username"`
	Published     bool   `json:"published"`

	Name    string     `json:"name"`
	SkillID string     `json:"skill_id"`
	Tests   []TestCase `json:"tests"`
}

func (c *Checklist) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidChecklist)
	}
	if !idgen.ValidateIDFormat(c.SkillID, resource.KindSkill.IDPrefix()) {
		return fmt.Errorf("%w: skill_id %q is not a skill id", ErrInvalidChecklist, c.SkillID)
	}
	if len(c.Tests) == 0 {
		return fmt.Errorf("%w: at least one test is required", ErrInvalidChecklist)
	}
	for i, tc := range c.Tests {
		if err := validateTestCase(tc); err != nil {
			return fmt.Errorf("%w: test %d: %v", ErrInvalidChecklist, i, err)
		}
	}
	return nil
}

func validateTestCase(tc TestCase) error {
	if strings.TrimSpace(tc.Capability) == "" {
		return fmt.Errorf("capability is required")
	}
	if strings.TrimSpace(tc.Query) == "" {
		return fmt.Errorf("query is required")
	}
	switch tc.TestType {
	case TestTypeMFT:
		if tc.Expected == "" {
			return fmt.Errorf("MFT tests need an expected answer")
		}
	case TestTypeINV:
		if len(tc.Perturbations) == 0 {
			return fmt.Errorf("INV tests need perturbations")
		}
	default:
		return fmt.Errorf("unknown test_type %q", tc.TestType)
	}
	if _, ok := metricFormatters[tc.EffectiveMetric()]; !ok {
		return fmt.Errorf("unknown metric %q", tc.Metric)
	}
	return nil
}

func FromResource(r *resource.Resource) (*Checklist, error) {
	var c Checklist
	if err := resource.Decode(r, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Checklist) ToResource() (*resource.Resource, error) {
	return resource.Encode(resource.KindChecklist, c)
}
