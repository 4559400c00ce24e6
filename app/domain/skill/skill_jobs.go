package skill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/kubernetes"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

// DeploymentJobs runs deploy_skill and remove_skill on the worker. Jobs for
// the same skill are serialized by a distributed lock.
type DeploymentJobs struct {
	resources *resource.ResourceService
	manager   *kubernetes.SkillDeploymentManager
	locks     *redsync.Redsync
	namespace string
	port      int32
	lockTTL   time.Duration
}

func NewDeploymentJobs(resources *resource.ResourceService, manager *kubernetes.SkillDeploymentManager, locks *redsync.Redsync) *DeploymentJobs {
	env := environment_variables.EnvironmentVariables
	return &DeploymentJobs{
		resources: resources,
		manager:   manager,
		locks:     locks,
		namespace: env.SKILL_NAMESPACE,
		port:      int32(env.SKILL_PORT),
		lockTTL:   env.SKILL_DEPLOY_TTL,
	}
}

func (j *DeploymentJobs) Register(registry task.HandlerRegistry) {
	registry.Register(task.OpDeploySkill, j.Deploy)
	registry.Register(task.OpRemoveSkill, j.Remove)
}

func (j *DeploymentJobs) Deploy(ctx context.Context, payload json.RawMessage) (any, error) {
	var p DeploymentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var status *kubernetes.SkillDeploymentStatus
	err := j.withLock(ctx, p.SkillID, func() error {
		r, err := j.resources.Get(ctx, resource.KindSkill, p.SkillID)
		if err != nil {
			return err
		}
		sk, err := FromResource(r)
		if err != nil {
			return err
		}
		if sk.Image == "" {
			return ErrNotDeployable
		}
		status, err = j.manager.Deploy(ctx, &kubernetes.SkillDeploymentSpec{
			SkillID:   sk.ID,
			SkillName: sk.Name,
			Namespace: j.namespace,
			Image:     sk.Image,
			Port:      j.port,
		})
		if err != nil {
			return err
		}
		if sk.URL == status.URL {
			return nil
		}
		sk.URL = status.URL
		updated, err := sk.ToResource()
		if err != nil {
			return err
		}
		_, err = j.resources.Update(ctx, r, updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.GetLogger().Infof("skill %s deployed at %s", p.SkillID, status.URL)
	return status, nil
}

// Remove deletes the skill's workload and clears its URL when the skill
// still exists.
func (j *DeploymentJobs) Remove(ctx context.Context, payload json.RawMessage) (any, error) {
	var p DeploymentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	err := j.withLock(ctx, p.SkillID, func() error {
		if err := j.manager.Remove(ctx, p.SkillID, j.namespace); err != nil {
			return err
		}
		r, err := j.resources.Get(ctx, resource.KindSkill, p.SkillID)
		if errors.Is(err, resource.ErrNotFound) {
			// the skill may have been deleted before its workload
			return nil
		}
		if err != nil {
			return err
		}
		sk, err := FromResource(r)
		if err != nil {
			return err
		}
		if sk.URL != kubernetes.ServiceURL(kubernetes.ResourceName(sk.ID), j.namespace, j.port) {
			return nil
		}
		sk.URL = ""
		updated, err := sk.ToResource()
		if err != nil {
			return err
		}
		_, err = j.resources.Update(ctx, r, updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"skill_id": p.SkillID, "removed": true}, nil
}

func (j *DeploymentJobs) withLock(ctx context.Context, skillID string, fn func() error) error {
	mutex := j.locks.NewMutex(fmt.Sprintf(cache.SkillDeployLockKey, skillID), redsync.WithExpiry(j.lockTTL))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("acquire deploy lock for %s: %w", skillID, err)
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			logger.GetLogger().Warnf("failed to release deploy lock for %s: %v", skillID, err)
		}
	}()
	return fn()
}
