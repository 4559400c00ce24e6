package infrastructure

import (
	"github.com/google/wire"
	inferenceDomain "square.ai/skill-gateway/app/domain/inference"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/database"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
	"square.ai/skill-gateway/app/infrastructure/inference"
	"square.ai/skill-gateway/app/infrastructure/taskqueue"
)

var InfrastructureProvider = wire.NewSet(
	database.NewDB,
	cache.CacheProvider,
	taskqueue.TaskQueueProvider,
	httpcache.NewCachingProxy,
	inference.NewOpenAIInference,
	wire.Bind(new(inferenceDomain.InferenceProvider), new(*inference.OpenAIInference)),
)
