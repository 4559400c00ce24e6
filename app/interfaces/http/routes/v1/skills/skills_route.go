package skills

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/interfaces/http/helpers"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

type SkillRoute struct {
	authService  *auth.AuthService
	skillService *skill.SkillService
	crud         *helpers.ResourceCRUD[skill.Skill, *skill.Skill]
}

func NewSkillRoute(
	authService *auth.AuthService,
	skillService *skill.SkillService,
	resources *resource.ResourceService,
	resolver *resource.Resolver,
) *SkillRoute {
	return &SkillRoute{
		authService:  authService,
		skillService: skillService,
		crud:         helpers.NewResourceCRUD[skill.Skill, *skill.Skill](resource.KindSkill, resources, resolver),
	}
}

func (route *SkillRoute) RegisterRouter(router gin.IRouter) {
	skillsRouter := router.Group("/skills")
	optional := route.authService.OptionalIdentityMiddleware()
	required := route.authService.RequiredIdentityMiddleware()

	route.crud.Register(skillsRouter, optional, required)
	skillsRouter.POST(helpers.ResourcePath("/query"), optional, route.crud.ReadMiddleware(), route.query)
	skillsRouter.GET(helpers.ResourcePath("/health"), optional, route.crud.ReadMiddleware(), route.health)
	skillsRouter.POST(helpers.ResourcePath("/deploy"), required, route.crud.WriteMiddleware(), route.deploy)
	skillsRouter.POST(helpers.ResourcePath("/undeploy"), required, route.crud.WriteMiddleware(), route.undeploy)
}

// QuerySkill
// @Summary Query a skill
// @Description Runs a prediction on the skill. Identical queries from different users are answered from the response cache.
// @Tags Skills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param resource_id path string true "Skill ID"
// @Param request body skill.QueryRequest true "Query"
// @Success 200 {object} map[string]any "Prediction returned by the skill"
// @Failure 400 {object} responses.ErrorResponse "Invalid query"
// @Failure 403 {object} responses.ErrorResponse "Skill is private"
// @Failure 404 {object} responses.ErrorResponse "Skill not found"
// @Failure 503 {object} responses.ErrorResponse "Skill unreachable"
// @Router /v1/skills/{resource_id}/query [post]
func (route *SkillRoute) query(reqCtx *gin.Context) {
	sk, ok := helpers.Typed(reqCtx, skill.FromResource)
	if !ok {
		return
	}
	var req skill.QueryRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.AbortWithError(reqCtx, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err), "c1a2b3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d")
		return
	}
	resp, err := route.skillService.Query(reqCtx.Request.Context(), sk, auth.GetIdentityFromContext(reqCtx), req)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "d4c3b2a1-f6e5-4b7a-9d8c-5c4b3a2f1e0d")
		return
	}
	helpers.WriteUpstream(reqCtx, resp)
}

// SkillHealth
// @Summary Skill liveness
// @Description Returns the last heartbeat recorded for the skill. known is false until the first check ran.
// @Tags Skills
// @Produce json
// @Param resource_id path string true "Skill ID"
// @Success 200 {object} skill.SkillHealth
// @Failure 404 {object} responses.ErrorResponse "Skill not found"
// @Router /v1/skills/{resource_id}/health [get]
func (route *SkillRoute) health(reqCtx *gin.Context) {
	sk, ok := helpers.Typed(reqCtx, skill.FromResource)
	if !ok {
		return
	}
	health, err := route.skillService.Health(reqCtx.Request.Context(), sk)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "a9b8c7d6-e5f4-4a3b-8c2d-1e0f9e8d7c6b")
		return
	}
	reqCtx.JSON(http.StatusOK, health)
}

// DeploySkill
// @Summary Deploy a skill
// @Description Starts a deployment task for the skill image. Poll /v1/tasks/{task_id}/status for progress.
// @Tags Skills
// @Security BearerAuth
// @Produce json
// @Param resource_id path string true "Skill ID"
// @Success 202 {object} task.Handle
// @Failure 400 {object} responses.ErrorResponse "Skill has no image"
// @Failure 403 {object} responses.ErrorResponse "Not the owner"
// @Failure 503 {object} responses.ErrorResponse "Task queue unreachable"
// @Router /v1/skills/{resource_id}/deploy [post]
func (route *SkillRoute) deploy(reqCtx *gin.Context) {
	sk, ok := helpers.Typed(reqCtx, skill.FromResource)
	if !ok {
		return
	}
	handle, err := route.skillService.Deploy(reqCtx.Request.Context(), sk, auth.GetIdentityFromContext(reqCtx))
	if err != nil {
		responses.AbortWithError(reqCtx, err, "b1c2d3e4-f5a6-4b7c-9d8e-0f1a2b3c4d5e")
		return
	}
	reqCtx.JSON(http.StatusAccepted, handle)
}

// UndeploySkill
// @Summary Remove a skill deployment
// @Tags Skills
// @Security BearerAuth
// @Produce json
// @Param resource_id path string true "Skill ID"
// @Success 202 {object} task.Handle
// @Failure 403 {object} responses.ErrorResponse "Not the owner"
// @Failure 503 {object} responses.ErrorResponse "Task queue unreachable"
// @Router /v1/skills/{resource_id}/undeploy [post]
func (route *SkillRoute) undeploy(reqCtx *gin.Context) {
	sk, ok := helpers.Typed(reqCtx, skill.FromResource)
	if !ok {
		return
	}
	handle, err := route.skillService.Undeploy(reqCtx.Request.Context(), sk, auth.GetIdentityFromContext(reqCtx))
	if err != nil {
		responses.AbortWithError(reqCtx, err, "e5f6a7b8-c9d0-4e1f-8a2b-3c4d5e6f7a8b")
		return
	}
	reqCtx.JSON(http.StatusAccepted, handle)
}
