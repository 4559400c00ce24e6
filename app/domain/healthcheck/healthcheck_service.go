package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mileusna/crontab"
	"resty.dev/v3"
	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/utils/httpclients"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

const (
	heartbeatTimeout = 5 * time.Second
	healthTTL        = 10 * time.Minute
	pageSize         = 100
)

// HealthcheckCrontabService polls the heartbeat of every published skill and
// records the outcome for the skill health endpoint.
type HealthcheckCrontabService struct {
	resources *resource.ResourceService
	cache     cache.CacheService
	client    *resty.Client
	now       func() time.Time
}

func NewService(resources *resource.ResourceService, cacheService cache.CacheService) *HealthcheckCrontabService {
	return NewServiceWithClient(resources, cacheService, httpclients.NewClient("healthcheck").SetTimeout(heartbeatTimeout))
}

func NewServiceWithClient(resources *resource.ResourceService, cacheService cache.CacheService, client *resty.Client) *HealthcheckCrontabService {
	return &HealthcheckCrontabService{
		resources: resources,
		cache:     cacheService,
		client:    client,
		now:       time.Now,
	}
}

func (hs *HealthcheckCrontabService) Start(ctx context.Context, ctab *crontab.Crontab) error {
	hs.CheckSkills(ctx)
	return ctab.AddJob(environment_variables.EnvironmentVariables.SKILL_HEALTH_CRON, func() {
		hs.CheckSkills(ctx)
	})
}

func (hs *HealthcheckCrontabService) CheckSkills(ctx context.Context) {
	published := true
	offset := 0
	limit := pageSize
	for {
		p := &query.Pagination{Limit: &limit, Offset: &offset, Order: "asc"}
		items, err := hs.resources.Find(ctx, resource.Filter{Kind: resource.KindSkill, Published: &published}, p)
		if err != nil {
			logger.GetLogger().Warnf("healthcheck: failed to list skills: %v", err)
			return
		}
		for _, r := range items {
			sk, err := skill.FromResource(r)
			if err != nil {
				logger.GetLogger().Warnf("healthcheck: skipping skill %s: %v", r.ID, err)
				continue
			}
			if sk.URL == "" {
				continue
			}
			hs.record(ctx, sk.ID, hs.heartbeat(ctx, sk.URL))
		}
		if len(items) < limit {
			return
		}
		offset += limit
	}
}

func (hs *HealthcheckCrontabService) heartbeat(ctx context.Context, url string) bool {
	var body struct {
		IsAlive bool `json:"is_alive"`
	}
	resp, err := hs.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(strings.TrimRight(url, "/") + "/health/heartbeat")
	if err != nil || !resp.IsSuccess() {
		return false
	}
	return body.IsAlive
}

func (hs *HealthcheckCrontabService) record(ctx context.Context, skillID string, alive bool) {
	raw, err := json.Marshal(skill.SkillHealth{
		SkillID:   skillID,
		IsAlive:   alive,
		CheckedAt: hs.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := hs.cache.Set(ctx, fmt.Sprintf(cache.SkillHealthKey, skillID), string(raw), healthTTL); err != nil {
		logger.GetLogger().Warnf("healthcheck: failed to record skill %s: %v", skillID, err)
	}
}
