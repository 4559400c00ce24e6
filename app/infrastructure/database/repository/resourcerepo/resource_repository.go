package resourcerepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/infrastructure/database/dbschema"
	"square.ai/skill-gateway/app/utils/functional"
	"square.ai/skill-gateway/app/utils/idgen"
)

type ResourceGormRepository struct {
	db *gorm.DB
}

var _ resource.Repository = (*ResourceGormRepository)(nil)

// Get implements resource.Repository.
func (repo *ResourceGormRepository) Get(ctx context.Context, kind resource.Kind, id string) (*resource.Resource, error) {
	return repo.get(repo.db.WithContext(ctx), kind, id)
}

// Put implements resource.Repository. The owner of an existing row is kept.
func (repo *ResourceGormRepository) Put(ctx context.Context, r *resource.Resource) (*resource.Resource, error) {
	toStore := *r
	if toStore.ID == "" {
		id, err := idgen.GenerateSecureID(toStore.Kind.IDPrefix(), idgen.DefaultLength)
		if err != nil {
			return nil, err
		}
		toStore.ID = id
	}
	model, err := dbschema.NewSchemaResourceDocument(&toStore)
	if err != nil {
		return nil, err
	}
	model.UpdatedAt = time.Now()
	err = repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"published", "document", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return nil, err
	}
	// read back from the primary so a lagging replica never hides the write
	return repo.get(repo.db.WithContext(ctx).Clauses(dbresolver.Write), toStore.Kind, toStore.ID)
}

// Delete implements resource.Repository.
func (repo *ResourceGormRepository) Delete(ctx context.Context, kind resource.Kind, id string) error {
	result := repo.db.WithContext(ctx).
		Where("public_id = ? AND kind = ?", id, string(kind)).
		Delete(&dbschema.ResourceDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}
	return nil
}

// FindByFilter implements resource.Repository.
func (repo *ResourceGormRepository) FindByFilter(ctx context.Context, filter resource.Filter, p *query.Pagination) ([]*resource.Resource, error) {
	db := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.ResourceDocument{}), filter)
	if p != nil {
		if p.Limit != nil {
			db = db.Limit(*p.Limit)
		}
		if p.Offset != nil {
			db = db.Offset(*p.Offset)
		}
		if p.Order == "desc" {
			db = db.Order("id DESC")
		} else {
			db = db.Order("id ASC")
		}
	} else {
		db = db.Order("id ASC")
	}
	var rows []*dbschema.ResourceDocument
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return functional.MapErr(rows, func(item *dbschema.ResourceDocument) (*resource.Resource, error) {
		return item.EtoD()
	})
}

// Count implements resource.Repository.
func (repo *ResourceGormRepository) Count(ctx context.Context, filter resource.Filter) (int64, error) {
	var count int64
	db := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.ResourceDocument{}), filter)
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ResourceGormRepository) get(db *gorm.DB, kind resource.Kind, id string) (*resource.Resource, error) {
	var model dbschema.ResourceDocument
	err := db.Where("public_id = ? AND kind = ?", id, string(kind)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.EtoD()
}

func (repo *ResourceGormRepository) applyFilter(db *gorm.DB, filter resource.Filter) *gorm.DB {
	if filter.Kind != "" {
		db = db.Where("kind = ?", string(filter.Kind))
	}
	if filter.OwnerUsername != nil {
		db = db.Where("owner_username = ?", *filter.OwnerUsername)
	}
	if filter.Published != nil {
		db = db.Where("published = ?", *filter.Published)
	}
	if filter.VisibleTo != nil {
		db = db.Where("(owner_username = ? OR published = ?)", *filter.VisibleTo, true)
	}
	if filter.IDs != nil {
		db = db.Where("public_id IN ?", *filter.IDs)
	}
	return db
}

func NewResourceGormRepository(db *gorm.DB) resource.Repository {
	return &ResourceGormRepository{
		db: db,
	}
}
