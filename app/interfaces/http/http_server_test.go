package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"resty.dev/v3"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/checklist"
	"square.ai/skill-gateway/app/domain/datastore"
	"square.ai/skill-gateway/app/domain/model"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/database"
	"square.ai/skill-gateway/app/infrastructure/database/repository/resourcerepo"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
	"square.ai/skill-gateway/app/infrastructure/inference"
	"square.ai/skill-gateway/app/infrastructure/taskqueue"
	"square.ai/skill-gateway/app/interfaces/http/routes/health"
	v1 "square.ai/skill-gateway/app/interfaces/http/routes/v1"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/checklists"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/datastores"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp"
	mcpimpl "square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp/mcp_impl"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/models"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/skills"
	"square.ai/skill-gateway/app/interfaces/http/routes/v1/tasks"
)

const testQueue = "http-test-tasks"

type testEnv struct {
	handler nethttp.Handler
	client  *redis.Client
}

func newTestEnv(t *testing.T) *testEnv {
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
	if err := database.NewDBMigrator(db).Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cacheService := cache.NewRedisCacheService(client)
	repo := resourcerepo.NewResourceGormRepository(db)
	resources := resource.NewResourceService(repo)
	resolver := resource.NewResolver(repo)
	proxy := httpcache.NewCachingProxyWithOptions(cacheService, resty.New(), time.Minute, []int{nethttp.StatusOK})
	tasksService := task.NewTaskService(taskqueue.NewRedisDispatcherWithOptions(client, testQueue, time.Hour))
	modelService := model.NewModelService(inference.NewOpenAIInferenceWithDefaults("http://127.0.0.1:1", ""))
	skillService := skill.NewSkillService(resolver, proxy, tasksService, modelService, cacheService)
	authService := auth.NewAuthService(auth.NewTokenValidator(nil))

	v1Route := v1.NewV1Route(
		skills.NewSkillRoute(authService, skillService, resources, resolver),
		datastores.NewDatastoreRoute(authService, datastore.NewDatastoreService(proxy), resources, resolver),
		models.NewModelRoute(authService, modelService, resources, resolver),
		checklists.NewChecklistRoute(authService, checklist.NewChecklistService(tasksService), resources, resolver),
		tasks.NewTaskRoute(tasksService),
		mcp.NewMCPAPI(mcpimpl.NewSkillMCP(resources, resolver, skillService), authService),
	)
	server := NewHttpServer(v1Route, health.NewHealthRoute(db, cacheService))
	return &testEnv{handler: server.Handler(), client: client}
}

func token(t *testing.T, username string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":                "https://auth.example.com/realms/research",
		"preferred_username": username,
	}).SignedString([]byte("unverified"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, username string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, username))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodGet, "/health/heartbeat", "", nil)
	expectStatus(t, rec, nethttp.StatusOK)
	if decode(t, rec)["is_alive"] != true {
		t.Errorf("unexpected heartbeat %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	rec = env.do(t, nethttp.MethodGet, "/health/readiness", "", nil)
	expectStatus(t, rec, nethttp.StatusOK)
	if decode(t, rec)["is_ready"] != true {
		t.Errorf("unexpected readiness %s", rec.Body.String())
	}
}

func TestSkillLifecycleAndAccess(t *testing.T) {
	env := newTestEnv(t)
	var upstreamCalls atomic.Int32
	upstream := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		upstreamCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[{"prediction_output":{"output":"Paris"}}]}`))
	}))
	defer upstream.Close()

	newSkill := map[string]any{
		"name":       "capitals",
		"skill_type": "extractive",
		"url":        upstream.URL,
		"image":      "registry.example.com/capitals:1",
	}
	expectStatus(t, env.do(t, nethttp.MethodPost, "/v1/skills", "", newSkill), nethttp.StatusUnauthorized)

	rec := env.do(t, nethttp.MethodPost, "/v1/skills", "alice", newSkill)
	expectStatus(t, rec, nethttp.StatusCreated)
	created := decode(t, rec)
	id, _ := created["id"].(string)
	if id == "" || created["owner_username"] != "alice" || created["published"] != false {
		t.Fatalf("unexpected created skill %v", created)
	}
	path := "/v1/skills/" + id

	expectStatus(t, env.do(t, nethttp.MethodGet, path, "", nil), nethttp.StatusForbidden)
	expectStatus(t, env.do(t, nethttp.MethodGet, path, "bob", nil), nethttp.StatusForbidden)
	expectStatus(t, env.do(t, nethttp.MethodGet, path, "alice", nil), nethttp.StatusOK)
	missing := env.do(t, nethttp.MethodGet, "/v1/skills/skl_missing", "alice", nil)
	expectStatus(t, missing, nethttp.StatusNotFound)
	if code := decode(t, missing)["code"]; code != resource.ErrNotFound.GetCode() {
		t.Errorf("missing skill should carry the resource-not-found code, got %v", code)
	}

	if total := decode(t, env.do(t, nethttp.MethodGet, "/v1/skills", "", nil))["total"]; total != float64(0) {
		t.Errorf("anonymous should see no private skills, total=%v", total)
	}
	if total := decode(t, env.do(t, nethttp.MethodGet, "/v1/skills", "alice", nil))["total"]; total != float64(1) {
		t.Errorf("owner should see her skill, total=%v", total)
	}

	newSkill["published"] = true
	newSkill["owner_username"] = "mallory"
	expectStatus(t, env.do(t, nethttp.MethodPut, path, "bob", newSkill), nethttp.StatusForbidden)
	rec = env.do(t, nethttp.MethodPut, path, "alice", newSkill)
	expectStatus(t, rec, nethttp.StatusOK)
	if updated := decode(t, rec); updated["owner_username"] != "alice" || updated["published"] != true {
		t.Fatalf("unexpected update %v", updated)
	}
	expectStatus(t, env.do(t, nethttp.MethodGet, path, "", nil), nethttp.StatusOK)

	query := map[string]any{"query": "capital of France?", "skill_args": map[string]any{"context": "Paris is the capital of France."}}
	rec = env.do(t, nethttp.MethodPost, path+"/query", "bob", query)
	expectStatus(t, rec, nethttp.StatusOK)
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first query should miss the cache")
	}
	first := rec.Body.String()
	rec = env.do(t, nethttp.MethodPost, path+"/query", "carol", query)
	expectStatus(t, rec, nethttp.StatusOK)
	if rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != first {
		t.Errorf("query from another user should be served from cache, got %s %q", rec.Header().Get("X-Cache"), rec.Body.String())
	}
	if n := upstreamCalls.Load(); n != 1 {
		t.Errorf("expected one upstream call, got %d", n)
	}
	expectStatus(t, env.do(t, nethttp.MethodPost, path+"/query", "bob", map[string]any{}), nethttp.StatusBadRequest)

	rec = env.do(t, nethttp.MethodGet, path+"/health", "", nil)
	expectStatus(t, rec, nethttp.StatusOK)
	if decode(t, rec)["known"] != false {
		t.Errorf("health should be unknown before the first check: %s", rec.Body.String())
	}

	expectStatus(t, env.do(t, nethttp.MethodDelete, path, "bob", nil), nethttp.StatusForbidden)
	expectStatus(t, env.do(t, nethttp.MethodDelete, path, "alice", nil), nethttp.StatusNoContent)
	expectStatus(t, env.do(t, nethttp.MethodGet, path, "alice", nil), nethttp.StatusNotFound)
}

func TestDeployTaskRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodPost, "/v1/skills", "alice", map[string]any{
		"name":       "capitals",
		"skill_type": "extractive",
		"image":      "registry.example.com/capitals:1",
	})
	expectStatus(t, rec, nethttp.StatusCreated)
	skillID := decode(t, rec)["id"].(string)

	expectStatus(t, env.do(t, nethttp.MethodPost, "/v1/skills/"+skillID+"/deploy", "bob", nil), nethttp.StatusForbidden)
	rec = env.do(t, nethttp.MethodPost, "/v1/skills/"+skillID+"/deploy", "alice", nil)
	expectStatus(t, rec, nethttp.StatusAccepted)
	handle := decode(t, rec)
	taskID, _ := handle["task_id"].(string)
	if taskID == "" || handle["status"] != string(task.StatePending) {
		t.Fatalf("unexpected handle %v", handle)
	}

	rec = env.do(t, nethttp.MethodGet, "/v1/tasks/"+taskID+"/status", "", nil)
	expectStatus(t, rec, nethttp.StatusOK)
	if decode(t, rec)["status"] != string(task.StatePending) {
		t.Errorf("unexpected status %s", rec.Body.String())
	}
	rec = env.do(t, nethttp.MethodGet, "/v1/tasks/"+taskID+"/result", "", nil)
	expectStatus(t, rec, nethttp.StatusAccepted)

	registry := task.HandlerRegistry{}
	registry.Register(task.OpDeploySkill, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var p skill.DeploymentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return map[string]string{"skill_id": p.SkillID, "url": "http://capitals.skills.svc"}, nil
	})
	worker := taskqueue.NewWorkerWithOptions(env.client, registry, testQueue, time.Second, time.Hour, "test-worker")
	if took, err := worker.ProcessOne(context.Background()); err != nil || !took {
		t.Fatalf("process: took=%v err=%v", took, err)
	}

	rec = env.do(t, nethttp.MethodGet, "/v1/tasks/"+taskID+"/result", "", nil)
	expectStatus(t, rec, nethttp.StatusOK)
	result := decode(t, rec)
	if result["status"] != string(task.StateSuccess) {
		t.Fatalf("unexpected result %v", result)
	}
	if payload, _ := result["result"].(map[string]any); payload["skill_id"] != skillID {
		t.Errorf("unexpected result payload %v", result["result"])
	}

	expectStatus(t, env.do(t, nethttp.MethodGet, "/v1/tasks/unknown/status", "", nil), nethttp.StatusNotFound)
	rec = env.do(t, nethttp.MethodGet, "/v1/tasks/unknown/result", "", nil)
	expectStatus(t, rec, nethttp.StatusNotFound)
	if code := decode(t, rec)["code"]; code != task.ErrTaskNotFound.GetCode() {
		t.Errorf("unknown task should carry the task-not-found code, got %v", code)
	}
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(nethttp.MethodGet, "/v1/skills", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, nethttp.StatusBadRequest)

	req = httptest.NewRequest(nethttp.MethodGet, "/v1/skills", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, nethttp.StatusUnauthorized)
}

func TestMCPMethodGuard(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do(t, nethttp.MethodPost, "/v1/mcp", "", map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}), nethttp.StatusUnauthorized)
	expectStatus(t, env.do(t, nethttp.MethodPost, "/v1/mcp", "alice", map[string]any{"jsonrpc": "2.0", "id": 1, "method": "resources/read"}), nethttp.StatusForbidden)
}
