package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/checklists"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/datastores"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/models"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/skills"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/tasks"
	"square.ai/skill-gateway/config"
)

type V1Route struct {
	skillRoute     *skills.SkillRoute
	datastoreRoute *datastores.DatastoreRoute
	modelRoute     *models.ModelRoute
	checklistRoute *checklists.ChecklistRoute
	taskRoute      *tasks.TaskRoute
	mcpAPI         *mcp.MCPAPI
}

func NewV1Route(
	skillRoute *skills.SkillRoute,
	datastoreRoute *datastores.DatastoreRoute,
	modelRoute *models.ModelRoute,
	checklistRoute *checklists.ChecklistRoute,
	taskRoute *tasks.TaskRoute,
	mcpAPI *mcp.MCPAPI,
) *V1Route {
	return &V1Route{
		skillRoute,
		datastoreRoute,
		modelRoute,
		checklistRoute,
		taskRoute,
		mcpAPI,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Route.skillRoute.RegisterRouter(v1Router)
	v1Route.datastoreRoute.RegisterRouter(v1Router)
	v1Route.modelRoute.RegisterRouter(v1Router)
	v1Route.checklistRoute.RegisterRouter(v1Router)
	v1Route.taskRoute.RegisterRouter(v1Router)
	v1Route.mcpAPI.RegisterRouter(v1Router)
}

// GetVersion godoc
// @Summary     Get API build version
// @Description Returns the current build version of the API server.
// @Tags        system
// @Produce     json
// @Success     200 {object} map[string]string "version info"
// @Router      /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": config.Version,
	})
}
