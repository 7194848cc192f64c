// Package k8s provides the cluster client used during setup: typed access
// for pods plus dynamic access for OLM and platform custom resources.
package k8s

import (
	"fmt"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps the Kubernetes API surface cluster setup needs.
type Client struct {
	Clientset kubernetes.Interface
	Dynamic   dynamic.Interface
}

// NewClient creates a client from a kubeconfig file. An empty path falls
// back to the in-cluster configuration.
func NewClient(kubeconfigPath string) (*Client, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	return NewClientForConfig(cfg)
}

// NewClientForConfig creates a client from an existing REST config.
func NewClientForConfig(cfg *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Client{
		Clientset: clientset,
		Dynamic:   dynamicClient,
	}, nil
}
