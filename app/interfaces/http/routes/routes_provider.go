package routes

import (
	"github.com/google/wire"
	"square.ai/skill-gateway/app/interfaces/http/routes/health"
	v1 "square.ai/skill-gateway/app/interfaces/http/routes/v1"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/checklists"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/datastores"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp"
	mcp_impl "square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp/mcp_impl"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/models"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/skills"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/tasks"
)

var RouteProvider = wire.NewSet(
	health.NewHealthRoute,
	skills.NewSkillRoute,
	datastores.NewDatastoreRoute,
	models.NewModelRoute,
	checklists.NewChecklistRoute,
	tasks.NewTaskRoute,
	mcp_impl.NewSkillMCP,
	mcp.NewMCPAPI,
	v1.NewV1Route,
)
