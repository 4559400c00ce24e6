package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"square.ai/skill-gateway/app/domain/checklist"
	"square.ai/skill-gateway/app/domain/model"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/database"
	"square.ai/skill-gateway/app/infrastructure/database/repository/resourcerepo"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
	"square.ai/skill-gateway/app/infrastructure/inference"
	"square.ai/skill-gateway/app/infrastructure/kubernetes"
	"square.ai/skill-gateway/app/infrastructure/taskqueue"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
	logger.SetLevel(environment_variables.EnvironmentVariables.LOG_LEVEL)
}

// The worker consumes the task queue. Deployment jobs are registered only
// when a Kubernetes API is reachable; without one they fail with an unknown
// op error instead of hanging.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbCleanup, err := database.NewDB()
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "a7c1e0d2-5b3f-4e69-8d14-2f0b9c6e7a38").
			Fatalf("failed to open database: %v", err)
	}
	defer dbCleanup()
	client, redisCleanup, err := cache.NewRedisClient()
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "4e8b2d7a-1c6f-4a93-b05e-9d3c7f1a2e64").
			Fatalf("failed to open redis: %v", err)
	}
	defer redisCleanup()

	repo := resourcerepo.NewResourceGormRepository(db)
	resources := resource.NewResourceService(repo)
	resolver := resource.NewResolver(repo)
	cacheService := cache.NewCacheService(client)
	tasks := task.NewTaskService(taskqueue.NewRedisDispatcher(client))
	skillService := skill.NewSkillService(
		resolver,
		httpcache.NewCachingProxy(cacheService),
		tasks,
		model.NewModelService(inference.NewOpenAIInference()),
		cacheService,
	)

	registry := task.HandlerRegistry{}
	checklist.NewRunnerJobs(resolver, skillService).Register(registry)
	if ks, err := kubernetes.NewKubernetesService(); err != nil {
		logger.GetLogger().Warnf("kubernetes unavailable, skill deployment jobs disabled: %v", err)
	} else {
		if !ks.IsKubernetesAvailable(ctx) {
			logger.GetLogger().Warn("kubernetes API did not answer, deployment jobs may fail")
		}
		logger.GetLogger().
			WithField("in_cluster", ks.IsInCluster()).
			WithField("namespace", environment_variables.EnvironmentVariables.SKILL_NAMESPACE).
			Info("skill deployment jobs enabled")
		manager := kubernetes.NewSkillDeploymentManager(ks)
		skill.NewDeploymentJobs(resources, manager, cache.NewRedsync(client)).Register(registry)
	}

	if err := taskqueue.NewWorker(client, registry).Run(ctx); err != nil {
		logger.GetLogger().
			WithField("error_code", "c3d9f1b8-7e2a-4c56-a0d4-8b1e6f2c9a75").
			Errorf("worker stopped: %v", err)
	}
}
