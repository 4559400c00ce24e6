package resource

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/access"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/interfaces/http/responses"
	"square.ai/skill-gateway/app/utils/idgen"
)

const (
	ResourceContextKeyID     = "resource_id"
	ResourceContextKeyEntity = "resource_entity"
)

// Resolver joins storage and access policy: every handler that touches a
// single resource goes through Resolve.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns ErrNotFound for unknown ids regardless of the caller and
// ErrForbidden when the access policy denies.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, id string, identity auth.Identity, writeAccess bool) (*Resource, error) {
	if !idgen.ValidateIDFormat(id, kind.IDPrefix()) {
		return nil, ErrNotFound
	}
	res, err := r.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if decision := access.Authorize(identity, res, writeAccess); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}
	return res, nil
}

// ResolveMiddleware resolves the :resource_id path parameter for the caller
// set by the auth middleware and stores the resource on the gin context.
func (r *Resolver) ResolveMiddleware(kind Kind, writeAccess bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		identity := auth.GetIdentityFromContext(reqCtx)
		res, err := r.Resolve(reqCtx.Request.Context(), kind, reqCtx.Param(ResourceContextKeyID), identity, writeAccess)
		if err != nil {
			responses.AbortWithError(reqCtx, err, "f3b1c2de-6c0a-4a1e-9d41-0a7e3c55b9a2")
			return
		}
		reqCtx.Set(ResourceContextKeyEntity, res)
		reqCtx.Next()
	}
}

func GetResourceFromContext(reqCtx *gin.Context) (*Resource, bool) {
	v, ok := reqCtx.Get(ResourceContextKeyEntity)
	if !ok {
		return nil, false
	}
	res, ok := v.(*Resource)
	return res, ok
}
