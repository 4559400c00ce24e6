// Package resourcetest provides an in-memory resource.Repository for tests.
package resourcetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/utils/idgen"
)

type MemoryRepository struct {
	mu   sync.Mutex
	docs map[string]stored
	seq  int

	// Gets counts calls to Get, for asserting that lookups hit the store.
	Gets int
}

type stored struct {
	seq       int
	kind      resource.Kind
	doc       resource.Document
	createdAt time.Time
	updatedAt time.Time
}

var _ resource.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]stored)}
}

func (m *MemoryRepository) Get(_ context.Context, kind resource.Kind, id string) (*resource.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	s, ok := m.docs[id]
	if !ok || s.kind != kind {
		return nil, resource.ErrNotFound
	}
	return toResource(s)
}

func (m *MemoryRepository) Put(_ context.Context, r *resource.Resource) (*resource.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	now := time.Now()
	if copied.ID == "" {
		id, err := idgen.GenerateSecureID(copied.Kind.IDPrefix(), idgen.DefaultLength)
		if err != nil {
			return nil, err
		}
		copied.ID = id
	}
	s, exists := m.docs[copied.ID]
	if !exists {
		m.seq++
		s = stored{seq: m.seq, kind: copied.Kind, createdAt: now}
	} else {
		copied.OwnerUsername = s.doc[resource.OwnerField].(string)
	}
	s.doc = cloneDocument(copied.ToDocument())
	s.updatedAt = now
	m.docs[copied.ID] = s
	return toResource(s)
}

func (m *MemoryRepository) Delete(_ context.Context, kind resource.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.docs[id]
	if !ok || s.kind != kind {
		return resource.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryRepository) FindByFilter(_ context.Context, filter resource.Filter, pagination *query.Pagination) ([]*resource.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := m.match(filter)
	if pagination != nil && pagination.Order == "desc" {
		sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	}
	if pagination != nil {
		if pagination.Offset != nil {
			if *pagination.Offset >= len(matched) {
				matched = nil
			} else {
				matched = matched[*pagination.Offset:]
			}
		}
		if pagination.Limit != nil && *pagination.Limit < len(matched) {
			matched = matched[:*pagination.Limit]
		}
	}
	results := make([]*resource.Resource, 0, len(matched))
	for _, s := range matched {
		r, err := toResource(s)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (m *MemoryRepository) Count(_ context.Context, filter resource.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(filter))), nil
}

func (m *MemoryRepository) match(filter resource.Filter) []stored {
	var ids map[string]bool
	if filter.IDs != nil {
		ids = make(map[string]bool, len(*filter.IDs))
		for _, id := range *filter.IDs {
			ids[id] = true
		}
	}
	matched := make([]stored, 0)
	for id, s := range m.docs {
		owner, _ := s.doc[resource.OwnerField].(string)
		published, _ := s.doc[resource.PublishedField].(bool)
		if filter.Kind != "" && s.kind != filter.Kind {
			continue
		}
		if filter.OwnerUsername != nil && owner != *filter.OwnerUsername {
			continue
		}
		if filter.Published != nil && published != *filter.Published {
			continue
		}
		if filter.VisibleTo != nil && !published && owner != *filter.VisibleTo {
			continue
		}
		if ids != nil && !ids[id] {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	return matched
}

func toResource(s stored) (*resource.Resource, error) {
	r, err := resource.FromDocument(s.kind, cloneDocument(s.doc))
	if err != nil {
		return nil, err
	}
	r.CreatedAt = s.createdAt
	r.UpdatedAt = s.updatedAt
	return r, nil
}

func cloneDocument(doc resource.Document) resource.Document {
	out := make(resource.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
