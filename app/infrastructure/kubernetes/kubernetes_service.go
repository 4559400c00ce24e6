package kubernetes

import (
	"context"
	"fmt"
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubernetesService holds the cluster client used to run skills
type KubernetesService struct {
	clientset   kubernetes.Interface
	isInCluster bool
}

// NewKubernetesService creates a new Kubernetes service instance
func NewKubernetesService() (*KubernetesService, error) {
	var config *rest.Config
	var err error
	var isInCluster bool

	// Try in-cluster config first
	if config, err = rest.InClusterConfig(); err == nil {
		isInCluster = true
	} else {
		kubeconfig := os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			kubeconfig = os.Getenv("HOME") + "/.kube/config"
		}

		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewKubernetesServiceWithClient(clientset, isInCluster), nil
}

func NewKubernetesServiceWithClient(clientset kubernetes.Interface, isInCluster bool) *KubernetesService {
	return &KubernetesService{
		clientset:   clientset,
		isInCluster: isInCluster,
	}
}

// IsInCluster returns true if running inside a Kubernetes cluster
func (ks *KubernetesService) IsInCluster() bool {
	return ks.isInCluster
}

// IsKubernetesAvailable checks if Kubernetes API is accessible
func (ks *KubernetesService) IsKubernetesAvailable(ctx context.Context) bool {
	if ks.clientset == nil {
		return false
	}
	_, err := ks.clientset.Discovery().ServerVersion()
	return err == nil
}
