package resource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/resource/resourcetest"
)

var (
	alice = auth.Identity{Realm: "square", Username: "alice"}
	bob   = auth.Identity{Realm: "square", Username: "bob"}
)

func putResource(t *testing.T, repo resource.Repository, owner string, published bool) *resource.Resource {
	t.Helper()
	r, err := repo.Put(context.Background(), &resource.Resource{
		Kind:          resource.KindSkill,
		OwnerUsername: owner,
		Published:     published,
		Fields:        map[string]any{"name": "qa"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestResolveMissingIsNotFoundForEveryone(t *testing.T) {
	resolver := resource.NewResolver(resourcetest.NewMemoryRepository())
	for _, identity := range []auth.Identity{alice, bob, auth.Anonymous()} {
		for _, write := range []bool{false, true} {
			for _, id := range []string{"unknown-id", "skl_doesnotexist"} {
				_, err := resolver.Resolve(context.Background(), resource.KindSkill, id, identity, write)
				if !errors.Is(err, resource.ErrNotFound) {
					t.Fatalf("%s %v %s: expected not found, got %v", identity.Username, write, id, err)
				}
			}
		}
	}
}

func TestResolveAppliesPolicy(t *testing.T) {
	repo := resourcetest.NewMemoryRepository()
	resolver := resource.NewResolver(repo)
	private := putResource(t, repo, "alice", false)
	public := putResource(t, repo, "alice", true)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, resource.KindSkill, private.ID, alice, true); err != nil {
		t.Fatalf("owner write: %v", err)
	}
	if _, err := resolver.Resolve(ctx, resource.KindSkill, private.ID, bob, false); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("non-owner read of private: %v", err)
	}
	if _, err := resolver.Resolve(ctx, resource.KindSkill, public.ID, bob, false); err != nil {
		t.Fatalf("non-owner read of published: %v", err)
	}
	if _, err := resolver.Resolve(ctx, resource.KindSkill, public.ID, bob, true); !errors.Is(err, resource.ErrForbidden) {
		t.Fatalf("non-owner write of published: %v", err)
	}
	if _, err := resolver.Resolve(ctx, resource.KindDatastore, public.ID, alice, false); !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("wrong kind should be not found: %v", err)
	}
}

func TestResolveHitsRepositoryEveryTime(t *testing.T) {
	repo := resourcetest.NewMemoryRepository()
	resolver := resource.NewResolver(repo)
	r := putResource(t, repo, "alice", true)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), resource.KindSkill, r.ID, bob, false); err != nil {
			t.Fatal(err)
		}
	}
	if repo.Gets != 3 {
		t.Fatalf("expected 3 repository lookups, got %d", repo.Gets)
	}
}

func TestOwnerDeleteThenResolveIsNotFound(t *testing.T) {
	repo := resourcetest.NewMemoryRepository()
	resolver := resource.NewResolver(repo)
	r := putResource(t, repo, "alice", false)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, resource.KindSkill, r.ID, alice, true); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, resource.KindSkill, r.ID); err != nil {
		t.Fatal(err)
	}
	for _, identity := range []auth.Identity{alice, bob, auth.Anonymous()} {
		if _, err := resolver.Resolve(ctx, resource.KindSkill, r.ID, identity, false); !errors.Is(err, resource.ErrNotFound) {
			t.Fatalf("%q: expected not found after delete, got %v", identity.Username, err)
		}
	}
}

func TestResolveMiddlewareStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := resourcetest.NewMemoryRepository()
	resolver := resource.NewResolver(repo)
	private := putResource(t, repo, "alice", false)

	engine := gin.New()
	engine.GET("/skills/:resource_id",
		func(c *gin.Context) {
			if user := c.GetHeader("X-User"); user != "" {
				auth.SetIdentityToContext(c, auth.Identity{Username: user})
			}
			c.Next()
		},
		resolver.ResolveMiddleware(resource.KindSkill, false),
		func(c *gin.Context) {
			r, ok := resource.GetResourceFromContext(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, r)
		},
	)

	cases := []struct {
		id, user string
		want     int
	}{
		{private.ID, "alice", http.StatusOK},
		{private.ID, "bob", http.StatusForbidden},
		{private.ID, "", http.StatusForbidden},
		{"skl_missing", "alice", http.StatusNotFound},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", "/skills/"+c.id, nil)
		if c.user != "" {
			req.Header.Set("X-User", c.user)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("%s as %q: got %d want %d", c.id, c.user, rec.Code, c.want)
		}
	}
}
