package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/utils/logger"
)

type RunPayload struct {
	ChecklistID string `json:"checklist_id"`
	RequestedBy string `json:"requested_by"`
	RequestedIn string `json:"requested_in,omitempty"`
}

type CaseResult struct {
	Index       int      `json:"index"`
	Capability  string   `json:"capability"`
	Metric      Metric   `json:"metric"`
	Passed      bool     `json:"passed"`
	Predictions []string `json:"predictions"`
	Detail      string   `json:"detail,omitempty"`
}

type CapabilityReport struct {
	Capability string  `json:"capability"`
	Total      int     `json:"total"`
	Passed     int     `json:"passed"`
	PassRate   float64 `json:"pass_rate"`
}

type Report struct {
	ChecklistID  string             `json:"checklist_id"`
	SkillID      string             `json:"skill_id"`
	Total        int                `json:"total"`
	Passed       int                `json:"passed"`
	PassRate     float64            `json:"pass_rate"`
	Capabilities []CapabilityReport `json:"capabilities"`
	Results      []CaseResult       `json:"results"`
}

type ChecklistService struct {
	tasks *task.TaskService
}

func NewChecklistService(tasks *task.TaskService) *ChecklistService {
	return &ChecklistService{
		tasks: tasks,
	}
}

func (s *ChecklistService) Run(ctx context.Context, c *Checklist, identity auth.Identity) (task.Handle, error) {
	return s.tasks.Submit(ctx, task.OpRunChecklist, RunPayload{
		ChecklistID: c.ID,
		RequestedBy: identity.Username,
		RequestedIn: identity.Realm,
	})
}

// RunnerJobs evaluates checklists on the worker with the requester's access
// rights.
type RunnerJobs struct {
	resolver     *resource.Resolver
	skillService *skill.SkillService
}

func NewRunnerJobs(resolver *resource.Resolver, skillService *skill.SkillService) *RunnerJobs {
	return &RunnerJobs{
		resolver:     resolver,
		skillService: skillService,
	}
}

func (j *RunnerJobs) Register(registry task.HandlerRegistry) {
	registry.Register(task.OpRunChecklist, j.Run)
}

func (j *RunnerJobs) Run(ctx context.Context, payload json.RawMessage) (any, error) {
	var p RunPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	identity := auth.Identity{Realm: p.RequestedIn, Username: p.RequestedBy}

	r, err := j.resolver.Resolve(ctx, resource.KindChecklist, p.ChecklistID, identity, false)
	if err != nil {
		return nil, err
	}
	c, err := FromResource(r)
	if err != nil {
		return nil, err
	}
	sr, err := j.resolver.Resolve(ctx, resource.KindSkill, c.SkillID, identity, false)
	if err != nil {
		return nil, err
	}
	sk, err := skill.FromResource(sr)
	if err != nil {
		return nil, err
	}

	results := make([]CaseResult, 0, len(c.Tests))
	for i, tc := range c.Tests {
		results = append(results, j.runCase(ctx, sk, identity, i, tc))
	}
	return buildReport(c, results), nil
}

// runCase never fails the job: an unreachable skill fails the case.
func (j *RunnerJobs) runCase(ctx context.Context, sk *skill.Skill, identity auth.Identity, index int, tc TestCase) CaseResult {
	result := CaseResult{
		Index:      index,
		Capability: tc.Capability,
		Metric:     tc.EffectiveMetric(),
	}
	for _, q := range tc.Queries() {
		resp, err := j.skillService.Query(ctx, sk, identity, skill.QueryRequest{
			Query:     q,
			SkillArgs: &skill.SkillArgs{Context: tc.Context, Choices: tc.Choices},
		})
		if err != nil {
			result.Detail = fmt.Sprintf("query failed: %v", err)
			return result
		}
		if resp.StatusCode/100 != 2 {
			result.Detail = fmt.Sprintf("skill returned status %d", resp.StatusCode)
			return result
		}
		prediction, err := skill.TopPrediction(resp.Body)
		if err != nil {
			result.Detail = err.Error()
			return result
		}
		result.Predictions = append(result.Predictions, prediction)
	}
	outcome, err := Score(tc, result.Predictions)
	if err != nil {
		logger.GetLogger().Warnf("checklist test %d: %v", index, err)
		result.Detail = err.Error()
		return result
	}
	result.Passed = outcome.Passed
	result.Detail = outcome.Detail
	return result
}

func buildReport(c *Checklist, results []CaseResult) *Report {
	report := &Report{
		ChecklistID: c.ID,
		SkillID:     c.SkillID,
		Total:       len(results),
		Results:     results,
	}
	byCapability := make(map[string]*CapabilityReport)
	for _, r := range results {
		cr, ok := byCapability[r.Capability]
		if !ok {
			cr = &CapabilityReport{Capability: r.Capability}
			byCapability[r.Capability] = cr
		}
		cr.Total++
		if r.Passed {
			cr.Passed++
			report.Passed++
		}
	}
	for _, cr := range byCapability {
		cr.PassRate = rate(cr.Passed, cr.Total)
		report.Capabilities = append(report.Capabilities, *cr)
	}
	sort.Slice(report.Capabilities, func(i, k int) bool {
		return report.Capabilities[i].Capability < report.Capabilities[k].Capability
	})
	report.PassRate = rate(report.Passed, report.Total)
	return report
}

func rate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total)
}
