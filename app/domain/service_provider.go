package domain

import (
	"github.com/google/wire"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/checklist"
	"square.ai/skill-gateway/app/domain/datastore"
	"square.ai/skill-gateway/app/domain/healthcheck"
	"square.ai/skill-gateway/app/domain/model"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/domain/task"
)

var ServiceProvider = wire.NewSet(
	auth.NewSignatureVerifier,
	auth.NewTokenValidator,
	auth.NewAuthService,
	resource.NewResolver,
	resource.NewResourceService,
	task.NewTaskService,
	model.NewModelService,
	skill.NewSkillService,
	datastore.NewDatastoreService,
	checklist.NewChecklistService,
	healthcheck.NewService,
)
