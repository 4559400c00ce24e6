package helpers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

// Entity is a typed view of a resource document.
type Entity interface {
	Validate() error
	ToResource() (*resource.Resource, error)
}

// ResourceCRUD serves list, get, create, update and delete for one resource
// kind. T is the typed entity and PT its pointer, which carries the methods.
type ResourceCRUD[T any, PT interface {
	*T
	Entity
}] struct {
	kind      resource.Kind
	resources *resource.ResourceService
	resolver  *resource.Resolver
}

func NewResourceCRUD[T any, PT interface {
	*T
	Entity
}](kind resource.Kind, resources *resource.ResourceService, resolver *resource.Resolver) *ResourceCRUD[T, PT] {
	return &ResourceCRUD[T, PT]{
		kind:      kind,
		resources: resources,
		resolver:  resolver,
	}
}

// ResourcePath is the path segment of a single resource.
func ResourcePath(suffix string) string {
	return fmt.Sprintf("/:%s%s", resource.ResourceContextKeyID, suffix)
}

// Register mounts the CRUD handlers. optional and required are the auth
// middlewares for read and write routes.
func (h *ResourceCRUD[T, PT]) Register(router gin.IRouter, optional gin.HandlerFunc, required gin.HandlerFunc) {
	router.GET("", optional, h.List)
	router.POST("", required, h.Create)
	router.GET(ResourcePath(""), optional, h.ReadMiddleware(), h.Get)
	router.PUT(ResourcePath(""), required, h.WriteMiddleware(), h.Update)
	router.DELETE(ResourcePath(""), required, h.WriteMiddleware(), h.Delete)
}

func (h *ResourceCRUD[T, PT]) ReadMiddleware() gin.HandlerFunc {
	return h.resolver.ResolveMiddleware(h.kind, false)
}

func (h *ResourceCRUD[T, PT]) WriteMiddleware() gin.HandlerFunc {
	return h.resolver.ResolveMiddleware(h.kind, true)
}

func (h *ResourceCRUD[T, PT]) List(reqCtx *gin.Context) {
	pagination, err := query.GetPaginationFromQuery(reqCtx)
	if err != nil {
		responses.AbortWithError(reqCtx, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err), "4a2b6a9e-93f1-4b70-a0b4-b06d7a5d1f21")
		return
	}
	items, total, err := h.resources.ListVisible(reqCtx.Request.Context(), h.kind, auth.GetIdentityFromContext(reqCtx), pagination)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "8d52f0d3-0e0c-4c57-8e0c-6f7b3c1f6f44")
		return
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, item.View())
	}
	reqCtx.JSON(http.StatusOK, responses.ListResponse[map[string]any]{
		Status:   responses.ResponseCodeOk,
		Offset:   *pagination.Offset,
		PageSize: *pagination.Limit,
		Total:    total,
		Results:  views,
	})
}

func (h *ResourceCRUD[T, PT]) Get(reqCtx *gin.Context) {
	res, ok := resource.GetResourceFromContext(reqCtx)
	if !ok {
		responses.AbortWithError(reqCtx, resource.ErrNotFound, "b7d1f6e2-1a8c-4f0e-9d2a-3c4e5f607182")
		return
	}
	reqCtx.JSON(http.StatusOK, res.View())
}

func (h *ResourceCRUD[T, PT]) Create(reqCtx *gin.Context) {
	r, ok := h.bind(reqCtx)
	if !ok {
		return
	}
	created, err := h.resources.Create(reqCtx.Request.Context(), auth.GetIdentityFromContext(reqCtx), r)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "0f6e3c1d-2b4a-4d8e-a6f1-7c9b8d2e5a30")
		return
	}
	reqCtx.JSON(http.StatusCreated, created.View())
}

func (h *ResourceCRUD[T, PT]) Update(reqCtx *gin.Context) {
	existing, ok := resource.GetResourceFromContext(reqCtx)
	if !ok {
		responses.AbortWithError(reqCtx, resource.ErrNotFound, "5c3e7a91-4d2b-4f6a-8e1c-9b0d2f3a4e56")
		return
	}
	r, ok := h.bind(reqCtx)
	if !ok {
		return
	}
	updated, err := h.resources.Update(reqCtx.Request.Context(), existing, r)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "e2a4c6b8-0d1f-4e3a-9b5c-7d8e9f0a1b2c")
		return
	}
	reqCtx.JSON(http.StatusOK, updated.View())
}

func (h *ResourceCRUD[T, PT]) Delete(reqCtx *gin.Context) {
	existing, ok := resource.GetResourceFromContext(reqCtx)
	if !ok {
		responses.AbortWithError(reqCtx, resource.ErrNotFound, "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d")
		return
	}
	if err := h.resources.Delete(reqCtx.Request.Context(), existing); err != nil {
		responses.AbortWithError(reqCtx, err, "3d2c1b0a-9f8e-4d7c-b6a5-4f3e2d1c0b9a")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

func (h *ResourceCRUD[T, PT]) bind(reqCtx *gin.Context) (*resource.Resource, bool) {
	entity := PT(new(T))
	if err := reqCtx.ShouldBindJSON(entity); err != nil {
		responses.AbortWithError(reqCtx, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err), "6e5d4c3b-2a1f-4e0d-9c8b-7a6f5e4d3c2b")
		return nil, false
	}
	if err := entity.Validate(); err != nil {
		responses.AbortWithError(reqCtx, err, "1b2c3d4e-5f6a-4b7c-8d9e-0f1a2b3c4d5e")
		return nil, false
	}
	r, err := entity.ToResource()
	if err != nil {
		responses.AbortWithError(reqCtx, err, "7f8e9d0c-1b2a-4c3d-8e4f-5a6b7c8d9e0f")
		return nil, false
	}
	return r, true
}

// Typed decodes the resource resolved by ResolveMiddleware.
func Typed[T any](reqCtx *gin.Context, decode func(*resource.Resource) (T, error)) (T, bool) {
	var zero T
	res, ok := resource.GetResourceFromContext(reqCtx)
	if !ok {
		responses.AbortWithError(reqCtx, resource.ErrNotFound, "2e3f4a5b-6c7d-4e8f-9a0b-1c2d3e4f5a6b")
		return zero, false
	}
	typed, err := decode(res)
	if err != nil {
		responses.AbortWithError(reqCtx, err, "8c9d0e1f-2a3b-4c4d-9e5f-6a7b8c9d0e1f")
		return zero, false
	}
	return typed, true
}
