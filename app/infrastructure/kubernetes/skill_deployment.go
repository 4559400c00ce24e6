package kubernetes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
)

const (
	SkillIDLabel   = "skill.square.ai/id"
	SkillNameLabel = "skill.square.ai/name"
	ManagedByLabel = "app.kubernetes.io/managed-by"
	managedByValue = "skill-gateway"
	containerName  = "skill"
)

// SkillDeploymentSpec contains specification for running a skill
type SkillDeploymentSpec struct {
	SkillID   string            `json:"skill_id"`
	SkillName string            `json:"skill_name"`
	Namespace string            `json:"namespace"`
	Image     string            `json:"image"`
	Port      int32             `json:"port"`
	Env       map[string]string `json:"env"`
}

type SkillDeploymentStatus struct {
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	URL           string `json:"url"`
	Replicas      int32  `json:"replicas"`
	ReadyReplicas int32  `json:"ready_replicas"`
}

// SkillDeploymentManager creates and removes the Deployment and Service of a skill
type SkillDeploymentManager struct {
	clientset kubernetes.Interface
}

func NewSkillDeploymentManager(ks *KubernetesService) *SkillDeploymentManager {
	return &SkillDeploymentManager{
		clientset: ks.clientset,
	}
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// ResourceName derives a DNS-1123 name from a skill id. Ids are case
// sensitive, so a hash of the raw id keeps distinct ids apart.
func ResourceName(skillID string) string {
	sum := sha256.Sum256([]byte(skillID))
	base := invalidNameChars.ReplaceAllString(strings.ToLower(skillID), "-")
	base = strings.Trim(base, "-")
	if len(base) > 40 {
		base = strings.TrimRight(base[:40], "-")
	}
	return fmt.Sprintf("skill-%s-%s", base, hex.EncodeToString(sum[:])[:8])
}

// ServiceURL is the in-cluster address of the skill's Service.
func ServiceURL(name, namespace string, port int32) string {
	return fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", name, namespace, port)
}

// Deploy creates the skill's Deployment and Service, updating them when they
// already exist.
func (m *SkillDeploymentManager) Deploy(ctx context.Context, spec *SkillDeploymentSpec) (*SkillDeploymentStatus, error) {
	if spec.Image == "" {
		return nil, fmt.Errorf("skill %s has no image to deploy", spec.SkillID)
	}
	name := ResourceName(spec.SkillID)

	deployment := m.buildDeployment(name, spec)
	deployments := m.clientset.AppsV1().Deployments(spec.Namespace)
	existing, err := deployments.Get(ctx, name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		if _, err := deployments.Create(ctx, deployment, metav1.CreateOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create deployment: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	default:
		existing.Labels = deployment.Labels
		existing.Spec = deployment.Spec
		if _, err := deployments.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
			return nil, fmt.Errorf("failed to update deployment: %w", err)
		}
	}

	service := m.buildService(name, spec)
	services := m.clientset.CoreV1().Services(spec.Namespace)
	if _, err := services.Get(ctx, name, metav1.GetOptions{}); apierrors.IsNotFound(err) {
		if _, err := services.Create(ctx, service, metav1.CreateOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return m.Status(ctx, spec.SkillID, spec.Namespace, spec.Port)
}

// Remove deletes the skill's Deployment and Service. Missing objects are not an error.
func (m *SkillDeploymentManager) Remove(ctx context.Context, skillID, namespace string) error {
	name := ResourceName(skillID)
	propagation := metav1.DeletePropagationForeground
	err := m.clientset.AppsV1().Deployments(namespace).Delete(ctx, name, metav1.DeleteOptions{
		PropagationPolicy: &propagation,
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete deployment: %w", err)
	}
	err = m.clientset.CoreV1().Services(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

func (m *SkillDeploymentManager) Status(ctx context.Context, skillID, namespace string, port int32) (*SkillDeploymentStatus, error) {
	name := ResourceName(skillID)
	deployment, err := m.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	}
	status := &SkillDeploymentStatus{
		Name:          name,
		Namespace:     namespace,
		URL:           ServiceURL(name, namespace, port),
		ReadyReplicas: deployment.Status.ReadyReplicas,
	}
	if deployment.Spec.Replicas != nil {
		status.Replicas = *deployment.Spec.Replicas
	}
	return status, nil
}

func (m *SkillDeploymentManager) labels(name string, spec *SkillDeploymentSpec) map[string]string {
	return map[string]string{
		SkillIDLabel:   spec.SkillID,
		SkillNameLabel: name,
		ManagedByLabel: managedByValue,
	}
}

func (m *SkillDeploymentManager) buildDeployment(name string, spec *SkillDeploymentSpec) *appsv1.Deployment {
	labels := m.labels(name, spec)

	env := make([]corev1.EnvVar, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}

	probe := func(period int32) *corev1.Probe {
		return &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/health/heartbeat",
					Port: intstr.FromInt32(spec.Port),
				},
			},
			InitialDelaySeconds: 10,
			PeriodSeconds:       period,
			FailureThreshold:    3,
			TimeoutSeconds:      1,
		}
	}

	container := corev1.Container{
		Name:            containerName,
		Image:           spec.Image,
		ImagePullPolicy: corev1.PullIfNotPresent,
		Ports: []corev1.ContainerPort{
			{
				ContainerPort: spec.Port,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env:            env,
		LivenessProbe:  probe(10),
		ReadinessProbe: probe(5),
	}

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: int32Ptr(1),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{
					SkillNameLabel: name,
				},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
				},
			},
		},
	}
}

func (m *SkillDeploymentManager) buildService(name string, spec *SkillDeploymentSpec) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    m.labels(name, spec),
		},
		Spec: corev1.ServiceSpec{
			Type: corev1.ServiceTypeClusterIP,
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       spec.Port,
					TargetPort: intstr.FromInt32(spec.Port),
					Protocol:   corev1.ProtocolTCP,
				},
			},
			Selector: map[string]string{
				SkillNameLabel: name,
			},
		},
	}
}

func int32Ptr(i int32) *int32 { return &i }
