package dbschema

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(ResourceDocument{})
}

// ResourceDocument stores the document shape {_id, owner_username, published,
// ...} in Document and mirrors the fields used for lookups in columns.
type ResourceDocument struct {
	BaseModel
	PublicID      string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind          string         `gorm:"type:varchar(32);index;not null"`
	OwnerUsername string         `gorm:"type:varchar(255);index;not null"`
	Published     bool           `gorm:"index;not null;default:false"`
	Document      datatypes.JSON `gorm:"not null"`
}

func NewSchemaResourceDocument(r *resource.Resource) (*ResourceDocument, error) {
	doc, err := json.Marshal(r.ToDocument())
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", r.ID, err)
	}
	return &ResourceDocument{
		PublicID:      r.ID,
		Kind:          string(r.Kind),
		OwnerUsername: r.OwnerUsername,
		Published:     r.Published,
		Document:      datatypes.JSON(doc),
	}, nil
}

// EtoD decodes the stored document. Ownership and visibility come from the
// columns, which are authoritative.
func (d *ResourceDocument) EtoD() (*resource.Resource, error) {
	doc, err := resource.DecodeDocument(d.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resource.ErrInvalidDocument, err)
	}
	if doc == nil {
		doc = resource.Document{}
	}
	doc[resource.StoreIDField] = d.PublicID
	doc[resource.OwnerField] = d.OwnerUsername
	doc[resource.PublishedField] = d.Published
	r, err := resource.FromDocument(resource.Kind(d.Kind), doc)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = d.CreatedAt
	r.UpdatedAt = d.UpdatedAt
	return r, nil
}
