package resourcerepo

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/infrastructure/database"
	"square.ai/skill-gateway/app/infrastructure/database/dbschema"
	"square.ai/skill-gateway/app/utils/ptr"
)

func newTestRepository(t *testing.T) resource.Repository {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&dbschema.ResourceDocument{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewResourceGormRepository(db)
}

func newSkill(owner string, published bool) *resource.Resource {
	return &resource.Resource{
		Kind:          resource.KindSkill,
		OwnerUsername: owner,
		Published:     published,
		Fields: map[string]any{
			"name":       "qa",
			"skill_type": "extractive",
			"url":        "http://qa.skills.svc",
			"default_skill_args": map[string]any{
				"base_model": "bert-base",
				"top_k":      float64(3),
			},
		},
	}
}

func TestPutAssignsIDAndGetRoundTrips(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Put(ctx, newSkill("alice", false))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store assigned id")
	}

	got, err := repo.Get(ctx, resource.KindSkill, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerUsername != "alice" || got.Published {
		t.Errorf("unexpected ownership: %+v", got)
	}
	if !reflect.DeepEqual(got.Fields, created.Fields) {
		t.Errorf("fields drifted: %v vs %v", got.Fields, created.Fields)
	}

	again, err := repo.Put(ctx, got)
	if err != nil {
		t.Fatalf("put again: %v", err)
	}
	if !reflect.DeepEqual(again.ToDocument(), got.ToDocument()) {
		t.Errorf("put(get(id)) changed the document: %v vs %v", again.ToDocument(), got.ToDocument())
	}
	count, err := repo.Count(ctx, resource.Filter{Kind: resource.KindSkill})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
}

func TestPutGetKeepsLargeIntegers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := newSkill("alice", false)
	r.Fields["max_tokens"] = json.Number("9007199254740993")
	created, err := repo.Put(ctx, r)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := repo.Get(ctx, resource.KindSkill, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	again, err := repo.Put(ctx, got)
	if err != nil {
		t.Fatalf("put again: %v", err)
	}
	if n, ok := again.Fields["max_tokens"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Fatalf("max_tokens drifted to %T %v", again.Fields["max_tokens"], again.Fields["max_tokens"])
	}
}

func TestPutUpdatesPublishedAndKeepsOwner(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Put(ctx, newSkill("alice", false))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	created.Published = true
	created.OwnerUsername = "mallory"
	created.Fields["description"] = "answers questions"

	updated, err := repo.Put(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Published {
		t.Error("expected published to be updated")
	}
	if updated.OwnerUsername != "alice" {
		t.Errorf("owner changed to %q", updated.OwnerUsername)
	}
	if updated.Fields["description"] != "answers questions" {
		t.Errorf("fields not updated: %v", updated.Fields)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, resource.KindSkill, "skl_missing"); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, resource.KindSkill, "skl_missing"); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}

	created, err := repo.Put(ctx, newSkill("alice", true))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := repo.Get(ctx, resource.KindDatastore, created.ID); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("kind mismatch: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, resource.KindSkill, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, resource.KindSkill, created.ID); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("after delete: expected ErrNotFound, got %v", err)
	}
}

func TestFindByFilterVisibility(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, r := range []*resource.Resource{
		newSkill("alice", false),
		newSkill("alice", true),
		newSkill("bob", true),
		newSkill("bob", false),
	} {
		if _, err := repo.Put(ctx, r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	visible, err := repo.FindByFilter(ctx, resource.Filter{
		Kind:      resource.KindSkill,
		VisibleTo: ptr.ToString("alice"),
	}, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible skills, got %d", len(visible))
	}
	for _, r := range visible {
		if r.OwnerUsername != "alice" && !r.Published {
			t.Errorf("leaked private resource %s of %s", r.ID, r.OwnerUsername)
		}
	}

	owned, err := repo.Count(ctx, resource.Filter{Kind: resource.KindSkill, OwnerUsername: ptr.ToString("bob")})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if owned != 2 {
		t.Errorf("expected 2 owned by bob, got %d", owned)
	}

	page, err := repo.FindByFilter(ctx, resource.Filter{Kind: resource.KindSkill}, &query.Pagination{
		Limit:  ptr.ToInt(2),
		Offset: ptr.ToInt(1),
		Order:  "desc",
	})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].OwnerUsername != "bob" || !page[0].Published {
		t.Errorf("unexpected first row of desc page: %+v", page[0])
	}
}
