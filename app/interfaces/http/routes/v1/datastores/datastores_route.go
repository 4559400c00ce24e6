package datastores

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/datastore"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/interfaces/http/helpers"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

type DatastoreRoute struct {
	authService      *auth.AuthService
	datastoreService *datastore.DatastoreService
	crud             *helpers.ResourceCRUD[datastore.Datastore, *datastore.Datastore]
}

func NewDatastoreRoute(
	authService *auth.AuthService,
	datastoreService *datastore.DatastoreService,
	resources *resource.ResourceService,
	resolver *resource.Resolver,
) *DatastoreRoute {
	return &DatastoreRoute{
		authService:      authService,
		datastoreService: datastoreService,
		crud:             helpers.NewResourceCRUD[datastore.Datastore, *datastore.Datastore](resource.KindDatastore, resources, resolver),
	}
}

func (route *DatastoreRoute) RegisterRouter(router gin.IRouter) {
	datastoresRouter := router.Group("/datastores")
	optional := route.authService.OptionalIdentityMiddleware()
	required := route.authService.RequiredIdentityMiddleware()

	route.crud.Register(datastoresRouter, optional, required)
	datastoresRouter.POST(helpers.ResourcePath("/search"), optional, route.crud.ReadMiddleware(), route.search)
	datastoresRouter.GET(helpers.ResourcePath("/stats"), optional, route.crud.ReadMiddleware(), route.stats)
}

// SearchDatastore
// @Summary Search a datastore
// @Description Runs a retrieval query against the datastore. Results are cached per query regardless of the caller.
// @Tags Datastores
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param resource_id path string true "Datastore ID"
// @Param request body datastore.SearchRequest true "Search"
// @Success 200 {object} map[string]any "Documents returned by the datastore"
// @Failure 400 {object} responses.ErrorResponse "Invalid search"
// @Failure 403 {object} responses.ErrorResponse "Datastore is private"
// @Failure 404 {object} responses.ErrorResponse "Datastore not found"
// @Failure 503 {object} responses.ErrorResponse "Datastore unreachable"
// @Router /v1/datastores/{resource_id}/search [post]
func (route *DatastoreRoute) search(reqCtx *gin.Context) {
	ds, ok := helpers.Typed(reqCtx, datastore.FromResource)
	if !ok {
		return
	}
	var req datastore.SearchRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.AbortWithError(reqCtx, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err), "f0e1d2c3-b4a5-4968-8776-5a4b3c2d1e0f")
		return
	}
	resp, err := route.datastoreService.Search(reqCtx.Request.Context(), ds, auth.GetIdentityFromContext(reqCtx), req)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "0a1b2c3d-4e5f-4a6b-9c7d-8e9f0a1b2c3d")
		return
	}
	helpers.WriteUpstream(reqCtx, resp)
}

// DatastoreStats
// @Summary Datastore statistics
// @Tags Datastores
// @Produce json
// @Param resource_id path string true "Datastore ID"
// @Success 200 {object} map[string]any "Statistics reported by the datastore"
// @Failure 404 {object} responses.ErrorResponse "Datastore not found"
// @Failure 503 {object} responses.ErrorResponse "Datastore unreachable"
// @Router /v1/datastores/{resource_id}/stats [get]
func (route *DatastoreRoute) stats(reqCtx *gin.Context) {
	ds, ok := helpers.Typed(reqCtx, datastore.FromResource)
	if !ok {
		return
	}
	resp, err := route.datastoreService.Stats(reqCtx.Request.Context(), ds)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "9f8e7d6c-5b4a-4392-8180-7f6e5d4c3b2a")
		return
	}
	helpers.WriteUpstream(reqCtx, resp)
}
