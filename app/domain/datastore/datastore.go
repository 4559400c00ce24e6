package datastore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
	"square.ai/skill-gateway/app/utils/functional"
)

var (
	ErrInvalidDatastore = fmt.Errorf("invalid datastore: %w", resource.ErrInvalidDocument)
	ErrInvalidSearch    = fmt.Errorf("invalid search: %w", common.ErrInvalidArgument)
)

// Datastore is a document index skills retrieve from.
type Datastore struct {
	ID            string `json:"id"`
	OwnerUsername string `json:"owner_username"`
	Published     bool   `json:"published"`

	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	Fields      []string `json:"fields,omitempty"`
}

func (d *Datastore) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDatastore)
	}
	if !strings.HasPrefix(d.URL, "http://") && !strings.HasPrefix(d.URL, "https://") {
		return fmt.Errorf("%w: url must be an http(s) url", ErrInvalidDatastore)
	}
	if len(d.Fields) > 0 {
		d.Fields = functional.Distinct(functional.Map(d.Fields, strings.TrimSpace))
		for _, f := range d.Fields {
			if f == "" {
				return fmt.Errorf("%w: empty field name", ErrInvalidDatastore)
			}
		}
	}
	return nil
}

func FromResource(r *resource.Resource) (*Datastore, error) {
	var d Datastore
	if err := resource.Decode(r, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Datastore) ToResource() (*resource.Resource, error) {
	return resource.Encode(resource.KindDatastore, d)
}

type SearchRequest struct {
	Query     string `json:"query" binding:"required"`
	IndexName string `json:"index_name,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

const (
	defaultTopK = 10
	maxTopK     = 100
)

type DatastoreService struct {
	proxy *httpcache.CachingProxy
}

func NewDatastoreService(proxy *httpcache.CachingProxy) *DatastoreService {
	return &DatastoreService{
		proxy: proxy,
	}
}

// Search is a side effect free POST, so repeated searches are cached.
func (s *DatastoreService) Search(ctx context.Context, d *Datastore, identity auth.Identity, req SearchRequest) (*httpcache.Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidSearch)
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}
	if req.TopK < 0 || req.TopK > maxTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d", ErrInvalidSearch, maxTopK)
	}
	return s.proxy.Call(ctx, httpcache.Request{
		Method: http.MethodPost,
		URL:    strings.TrimRight(d.URL, "/") + "/search",
		Body: map[string]any{
			"query":      req.Query,
			"index_name": req.IndexName,
			"top_k":      req.TopK,
			"user_id":    identity.Username,
		},
		SideEffectFree: true,
	}, "user_id")
}

func (s *DatastoreService) Stats(ctx context.Context, d *Datastore) (*httpcache.Response, error) {
	return s.proxy.Call(ctx, httpcache.Request{
		Method: http.MethodGet,
		URL:    strings.TrimRight(d.URL, "/") + "/stats",
	})
}
