package models

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/model"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/interfaces/http/helpers"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

type ModelRoute struct {
	authService  *auth.AuthService
	modelService *model.ModelService
	crud         *helpers.ResourceCRUD[model.Model, *model.Model]
}

func NewModelRoute(
	authService *auth.AuthService,
	modelService *model.ModelService,
	resources *resource.ResourceService,
	resolver *resource.Resolver,
) *ModelRoute {
	return &ModelRoute{
		authService:  authService,
		modelService: modelService,
		crud:         helpers.NewResourceCRUD[model.Model, *model.Model](resource.KindModel, resources, resolver),
	}
}

func (route *ModelRoute) RegisterRouter(router gin.IRouter) {
	modelsRouter := router.Group("/models")
	optional := route.authService.OptionalIdentityMiddleware()
	required := route.authService.RequiredIdentityMiddleware()

	route.crud.Register(modelsRouter, optional, required)
	modelsRouter.POST(helpers.ResourcePath("/completions"), required, route.crud.ReadMiddleware(), route.completions)
}

// CreateCompletion
// @Summary Chat completion on a registered model
// @Description Sends the messages to the model's OpenAI compatible endpoint.
// @Tags Models
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param resource_id path string true "Model ID"
// @Param request body model.CompletionRequest true "Completion"
// @Success 200 {object} model.CompletionResponse
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Missing bearer token"
// @Failure 403 {object} responses.ErrorResponse "Model is private"
// @Failure 503 {object} responses.ErrorResponse "Model endpoint unreachable"
// @Router /v1/models/{resource_id}/completions [post]
func (route *ModelRoute) completions(reqCtx *gin.Context) {
	m, ok := helpers.Typed(reqCtx, model.FromResource)
	if !ok {
		return
	}
	var req model.CompletionRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.AbortWithError(reqCtx, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err), "3b4c5d6e-7f8a-4b9c-8d0e-1f2a3b4c5d6e")
		return
	}
	resp, err := route.modelService.Complete(reqCtx.Request.Context(), m, req)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "6d7e8f9a-0b1c-4d2e-9f3a-4b5c6d7e8f9a")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}
