package skill

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/resource/resourcetest"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/infrastructure/kubernetes"
)

func newTestJobs(t *testing.T) (*DeploymentJobs, *resourcetest.MemoryRepository, *fake.Clientset, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := resourcetest.NewMemoryRepository()
	clientset := fake.NewSimpleClientset()
	jobs := &DeploymentJobs{
		resources: resource.NewResourceService(repo),
		manager:   kubernetes.NewSkillDeploymentManager(kubernetes.NewKubernetesServiceWithClient(clientset, false)),
		locks:     cache.NewRedsync(client),
		namespace: "skills",
		port:      8080,
		lockTTL:   time.Minute,
	}
	return jobs, repo, clientset, mr
}

func storeSkill(t *testing.T, repo resource.Repository, sk *Skill) *Skill {
	t.Helper()
	r, err := sk.ToResource()
	if err != nil {
		t.Fatal(err)
	}
	r.OwnerUsername = "alice"
	stored, err := repo.Put(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	out, err := FromResource(stored)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func payloadFor(t *testing.T, skillID string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(DeploymentPayload{SkillID: skillID, RequestedBy: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDeployJobCreatesWorkloadAndSetsURL(t *testing.T) {
	jobs, repo, clientset, _ := newTestJobs(t)
	ctx := context.Background()
	sk := storeSkill(t, repo, &Skill{Name: "qa", SkillType: SkillTypeExtractive, Image: "registry/qa:1"})

	registry := task.HandlerRegistry{}
	jobs.Register(registry)
	result, err := registry[task.OpDeploySkill](ctx, payloadFor(t, sk.ID))
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	status, ok := result.(*kubernetes.SkillDeploymentStatus)
	if !ok {
		t.Fatalf("unexpected result %T", result)
	}
	name := kubernetes.ResourceName(sk.ID)
	if _, err := clientset.AppsV1().Deployments("skills").Get(ctx, name, metav1.GetOptions{}); err != nil {
		t.Fatalf("deployment missing: %v", err)
	}

	r, err := repo.Get(ctx, resource.KindSkill, sk.ID)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := FromResource(r)
	if err != nil {
		t.Fatal(err)
	}
	if updated.URL != status.URL || updated.OwnerUsername != "alice" {
		t.Errorf("skill not updated with service url: %+v", updated)
	}

	if _, err := registry[task.OpRemoveSkill](ctx, payloadFor(t, sk.ID)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := clientset.AppsV1().Deployments("skills").Get(ctx, name, metav1.GetOptions{}); !apierrors.IsNotFound(err) {
		t.Errorf("deployment still present: %v", err)
	}
	r, _ = repo.Get(ctx, resource.KindSkill, sk.ID)
	removed, _ := FromResource(r)
	if removed.URL != "" {
		t.Errorf("url not cleared: %q", removed.URL)
	}
}

func TestDeployJobFailures(t *testing.T) {
	jobs, repo, _, _ := newTestJobs(t)
	ctx := context.Background()

	if _, err := jobs.Deploy(ctx, payloadFor(t, "skl_missing")); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	sk := storeSkill(t, repo, &Skill{Name: "qa", SkillType: SkillTypeExtractive, URL: "http://external"})
	if _, err := jobs.Deploy(ctx, payloadFor(t, sk.ID)); !errors.Is(err, ErrNotDeployable) {
		t.Errorf("expected ErrNotDeployable, got %v", err)
	}
	// removing a workload of a deleted skill still succeeds
	if _, err := jobs.Remove(ctx, payloadFor(t, "skl_gone")); err != nil {
		t.Errorf("remove of deleted skill: %v", err)
	}
}

func TestDeployJobWaitsForLock(t *testing.T) {
	jobs, repo, _, _ := newTestJobs(t)
	ctx := context.Background()
	sk := storeSkill(t, repo, &Skill{Name: "qa", SkillType: SkillTypeExtractive, Image: "registry/qa:1"})

	held := jobs.locks.NewMutex("skill:deploy:lock:"+sk.ID, redsync.WithExpiry(time.Minute))
	if err := held.LockContext(ctx); err != nil {
		t.Fatal(err)
	}
	shortCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if _, err := jobs.Deploy(shortCtx, payloadFor(t, sk.ID)); err == nil {
		t.Fatal("deploy must not run while another job holds the lock")
	}
	if _, err := held.UnlockContext(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := jobs.Deploy(ctx, payloadFor(t, sk.ID)); err != nil {
		t.Fatalf("deploy after release: %v", err)
	}
}
