package resource

import (
	"context"
	"fmt"

	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/query"
)

var ErrAnonymousOwner = common.NewError(fmt.Errorf("anonymous callers cannot own resources: %w", common.ErrUnauthorized), "d25bfeee-7efd-4d00-8190-8ceb04600451")

// ResourceService holds the lifecycle rules shared by every resource kind.
// Access checks happen before these calls, through the Resolver.
type ResourceService struct {
	repo Repository
}

func NewResourceService(repo Repository) *ResourceService {
	return &ResourceService{
		repo: repo,
	}
}

// ListVisible lists resources of kind the identity owns or that are
// published. Anonymous callers see published resources only.
func (s *ResourceService) ListVisible(ctx context.Context, kind Kind, identity auth.Identity, p *query.Pagination) ([]*Resource, int64, error) {
	filter := Filter{Kind: kind}
	if identity.IsAnonymous() {
		published := true
		filter.Published = &published
	} else {
		username := identity.Username
		filter.VisibleTo = &username
	}
	items, err := s.repo.FindByFilter(ctx, filter, p)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create stores r as a new resource owned by identity; any id or owner on r
// is ignored.
func (s *ResourceService) Create(ctx context.Context, identity auth.Identity, r *Resource) (*Resource, error) {
	if identity.IsAnonymous() {
		return nil, ErrAnonymousOwner
	}
	toCreate := *r
	toCreate.ID = ""
	toCreate.OwnerUsername = identity.Username
	return s.repo.Put(ctx, &toCreate)
}

// Update replaces the fields and visibility of existing with those of
// updated. Id, kind and owner never change.
func (s *ResourceService) Update(ctx context.Context, existing *Resource, updated *Resource) (*Resource, error) {
	toStore := *updated
	toStore.ID = existing.ID
	toStore.Kind = existing.Kind
	toStore.OwnerUsername = existing.OwnerUsername
	return s.repo.Put(ctx, &toStore)
}

func (s *ResourceService) Delete(ctx context.Context, existing *Resource) error {
	return s.repo.Delete(ctx, existing.Kind, existing.ID)
}

// Get loads a resource without an access check, for worker jobs acting on
// behalf of an already authorized request.
func (s *ResourceService) Get(ctx context.Context, kind Kind, id string) (*Resource, error) {
	return s.repo.Get(ctx, kind, id)
}

func (s *ResourceService) Put(ctx context.Context, r *Resource) (*Resource, error) {
	return s.repo.Put(ctx, r)
}

func (s *ResourceService) Find(ctx context.Context, filter Filter, p *query.Pagination) ([]*Resource, error) {
	return s.repo.FindByFilter(ctx, filter, p)
}
