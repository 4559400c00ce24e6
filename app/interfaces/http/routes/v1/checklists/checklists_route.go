package checklists

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/checklist"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/interfaces/http/helpers"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

type ChecklistRoute struct {
	authService      *auth.AuthService
	checklistService *checklist.ChecklistService
	crud             *helpers.ResourceCRUD[checklist.Checklist, *checklist.Checklist]
}

func NewChecklistRoute(
	authService *auth.AuthService,
	checklistService *checklist.ChecklistService,
	resources *resource.ResourceService,
	resolver *resource.Resolver,
) *ChecklistRoute {
	return &ChecklistRoute{
		authService:      authService,
		checklistService: checklistService,
		crud:             helpers.NewResourceCRUD[checklist.Checklist, *checklist.Checklist](resource.KindChecklist, resources, resolver),
	}
}

func (route *ChecklistRoute) RegisterRouter(router gin.IRouter) {
	checklistsRouter := router.Group("/checklists")
	optional := route.authService.OptionalIdentityMiddleware()
	required := route.authService.RequiredIdentityMiddleware()

	route.crud.Register(checklistsRouter, optional, required)
	checklistsRouter.POST(helpers.ResourcePath("/run"), required, route.crud.ReadMiddleware(), route.run)
}

// RunChecklist
// @Summary Run a checklist
// @Description Queues a behavioural test run of the checklist against its skill. The task result holds the per capability report.
// @Tags Checklists
// @Security BearerAuth
// @Produce json
// @Param resource_id path string true "Checklist ID"
// @Success 202 {object} task.Handle
// @Failure 401 {object} responses.ErrorResponse "Missing bearer token"
// @Failure 403 {object} responses.ErrorResponse "Checklist is private"
// @Failure 404 {object} responses.ErrorResponse "Checklist not found"
// @Failure 503 {object} responses.ErrorResponse "Task queue unreachable"
// @Router /v1/checklists/{resource_id}/run [post]
func (route *ChecklistRoute) run(reqCtx *gin.Context) {
	c, ok := helpers.Typed(reqCtx, checklist.FromResource)
	if !ok {
		return
	}
	handle, err := route.checklistService.Run(reqCtx.Request.Context(), c, auth.GetIdentityFromContext(reqCtx))
	if err != nil {
		responses.AbortWithError(reqCtx, err, "c7d8e9f0-a1b2-4c3d-8e4f-5a6b7c8d9e0f")
		return
	}
	reqCtx.JSON(http.StatusAccepted, handle)
}
