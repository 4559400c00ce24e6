package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/query"
)

type Kind string

const (
	KindSkill     Kind = "skill"
	KindDatastore Kind = "datastore"
	KindModel     Kind = "model"
	KindChecklist Kind = "checklist"
)

// IDPrefix is the prefix of ids the repository generates for this kind.
func (k Kind) IDPrefix() string {
	switch k {
	case KindSkill:
		return "skl"
	case KindDatastore:
		return "dst"
	case KindModel:
		return "mdl"
	case KindChecklist:
		return "chk"
	default:
		return "res"
	}
}

const (
	StoreIDField   = "_id"
	IDField        = "id"
	OwnerField     = "owner_username"
	PublishedField = "published"
)

var (
	ErrNotFound        = common.NewError(fmt.Errorf("resource %w", common.ErrNotFound), "dd9fb12e-7876-4f8c-b477-f37eb2d1d6c2")
	ErrForbidden       = common.NewError(fmt.Errorf("resource access %w", common.ErrForbidden), "e029dcd4-e451-4582-bfe0-001137734ec7")
	ErrInvalidDocument = common.NewError(fmt.Errorf("invalid resource document: %w", common.ErrInvalidArgument), "8d46bc06-a1bf-4402-80ce-eb835c6b1460")
)

// Resource is the generic record behind skills, datastores, models and
// checklists. Type specific attributes live in Fields.
type Resource struct {
	ID            string
	Kind          Kind
	OwnerUsername string
	Published     bool
	Fields        map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *Resource) Owner() string {
	return r.OwnerUsername
}

func (r *Resource) IsPublished() bool {
	return r.Published
}

// View is the public JSON shape: type fields plus id, owner_username and published.
func (r *Resource) View() map[string]any {
	view := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		view[k] = v
	}
	view[IDField] = r.ID
	view[OwnerField] = r.OwnerUsername
	view[PublishedField] = r.Published
	return view
}

func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

type Filter struct {
	Kind          Kind
	OwnerUsername *string
	// VisibleTo matches resources owned by this username or published.
	VisibleTo *string
	Published *bool
	IDs       *[]string
}

type Repository interface {
	Get(ctx context.Context, kind Kind, id string) (*Resource, error)
	// Put creates the resource when ID is empty (the store assigns the id)
	// and otherwise replaces it. Concurrent writers race at last-write-wins.
	Put(ctx context.Context, r *Resource) (*Resource, error)
	Delete(ctx context.Context, kind Kind, id string) error
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Resource, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
