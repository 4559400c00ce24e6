package skill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/model"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
)

// VolatileQueryKeys never influence whether a query is served from cache.
var VolatileQueryKeys = []string{"user_id"}

var ErrNotDeployable = fmt.Errorf("%w: skill has no image", ErrInvalidSkill)

// DeploymentPayload is the job payload of deploy_skill and remove_skill.
type DeploymentPayload struct {
	SkillID     string `json:"skill_id"`
	RequestedBy string `json:"requested_by"`
}

type SkillService struct {
	resolver     *resource.Resolver
	proxy        *httpcache.CachingProxy
	tasks        *task.TaskService
	modelService *model.ModelService
	cache        cache.CacheService
}

func NewSkillService(
	resolver *resource.Resolver,
	proxy *httpcache.CachingProxy,
	tasks *task.TaskService,
	modelService *model.ModelService,
	cacheService cache.CacheService,
) *SkillService {
	return &SkillService{
		resolver:     resolver,
		proxy:        proxy,
		tasks:        tasks,
		modelService: modelService,
		cache:        cacheService,
	}
}

// Query runs a prediction. Extractive and other hosted skills are called
// through the caching proxy; generative skills go to their model.
func (s *SkillService) Query(ctx context.Context, sk *Skill, identity auth.Identity, req QueryRequest) (*httpcache.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	args := sk.DefaultSkillArgs.Merge(req.SkillArgs)
	if sk.SkillType == SkillTypeGenerative {
		return s.generate(ctx, sk, identity, req, args)
	}
	if sk.URL == "" {
		return nil, fmt.Errorf("%w: skill %s is not deployed", ErrInvalidSkill, sk.ID)
	}
	body := map[string]any{
		"query":      req.Query,
		"skill_args": args,
		"user_id":    identity.Username,
	}
	if len(req.ExplainKwargs) > 0 {
		body["explain_kwargs"] = req.ExplainKwargs
	}
	return s.proxy.Call(ctx, httpcache.Request{
		Method:         http.MethodPost,
		URL:            strings.TrimRight(sk.URL, "/") + "/query",
		Body:           body,
		SideEffectFree: true,
	}, VolatileQueryKeys...)
}

func (s *SkillService) generate(ctx context.Context, sk *Skill, identity auth.Identity, req QueryRequest, args SkillArgs) (*httpcache.Response, error) {
	r, err := s.resolver.Resolve(ctx, resource.KindModel, sk.ModelID, identity, false)
	if err != nil {
		return nil, err
	}
	m, err := model.FromResource(r)
	if err != nil {
		return nil, err
	}
	completionReq := model.CompletionRequest{}
	if sk.Description != "" {
		completionReq.Messages = append(completionReq.Messages, model.Message{Role: "system", Content: sk.Description})
	}
	completionReq.Messages = append(completionReq.Messages, model.Message{Role: "user", Content: req.Query})
	if args.MaxLength != nil {
		completionReq.MaxTokens = *args.MaxLength
	}
	completion, err := s.modelService.Complete(ctx, m, completionReq)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]any{
		"predictions": []map[string]any{{
			"prediction_output": map[string]any{"output": completion.Content},
		}},
		"model_id": completion.ModelID,
	})
	if err != nil {
		return nil, err
	}
	return &httpcache.Response{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func (s *SkillService) Deploy(ctx context.Context, sk *Skill, identity auth.Identity) (task.Handle, error) {
	if sk.Image == "" {
		return task.Handle{}, ErrNotDeployable
	}
	return s.tasks.Submit(ctx, task.OpDeploySkill, DeploymentPayload{SkillID: sk.ID, RequestedBy: identity.Username})
}

func (s *SkillService) Undeploy(ctx context.Context, sk *Skill, identity auth.Identity) (task.Handle, error) {
	return s.tasks.Submit(ctx, task.OpRemoveSkill, DeploymentPayload{SkillID: sk.ID, RequestedBy: identity.Username})
}

// Health returns the last heartbeat recorded by the health cron.
func (s *SkillService) Health(ctx context.Context, sk *Skill) (*SkillHealth, error) {
	raw, err := s.cache.Get(ctx, fmt.Sprintf(cache.SkillHealthKey, sk.ID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return &SkillHealth{SkillID: sk.ID}, nil
	}
	if err != nil {
		return nil, err
	}
	var health SkillHealth
	if err := json.Unmarshal([]byte(raw), &health); err != nil {
		return nil, err
	}
	health.Known = true
	return &health, nil
}

type predictionResponse struct {
	Predictions []struct {
		PredictionOutput struct {
			Output any `json:"output"`
		} `json:"prediction_output"`
	} `json:"predictions"`
}

// TopPrediction extracts the output of the first prediction of a skill
// response body.
func TopPrediction(body []byte) (string, error) {
	var resp predictionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode prediction: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return "", errors.New("skill returned no predictions")
	}
	switch out := resp.Predictions[0].PredictionOutput.Output.(type) {
	case string:
		return out, nil
	case nil:
		return "", nil
	default:
		raw, err := json.Marshal(out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
