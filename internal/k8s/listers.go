package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// CatalogSourceLister lists the names of catalog sources visible
// cluster-wide.
type CatalogSourceLister struct {
	Client *Client
}

func (l CatalogSourceLister) Kind() string { return "catalog source" }

func (l CatalogSourceLister) ListNames(ctx context.Context) ([]string, error) {
	return listNames(ctx, l.Client, CatalogSources)
}

// PackageManifestLister lists the names of package manifests visible
// cluster-wide.
type PackageManifestLister struct {
	Client *Client
}

func (l PackageManifestLister) Kind() string { return "package manifest" }

func (l PackageManifestLister) ListNames(ctx context.Context) ([]string, error) {
	return listNames(ctx, l.Client, PackageManifests)
}

// RunningPodLister lists the names of pods in a namespace that are running
// with exactly one started container. Operator deployments in the platform
// stack run single-container pods, so this doubles as the readiness check.
type RunningPodLister struct {
	Client    *Client
	Namespace string
}

func (l RunningPodLister) Kind() string { return "running pod" }

func (l RunningPodLister) ListNames(ctx context.Context) ([]string, error) {
	podList, err := l.Client.Clientset.CoreV1().Pods(l.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", l.Namespace, err)
	}

	var names []string
	for i := range podList.Items {
		if isRunningSingleContainer(&podList.Items[i]) {
			names = append(names, podList.Items[i].Name)
		}
	}
	return names, nil
}

// listNames lists a cluster-scoped resource via the dynamic client and
// returns the object names.
func listNames(ctx context.Context, c *Client, gvr schema.GroupVersionResource) ([]string, error) {
	list, err := c.Dynamic.Resource(gvr).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", gvr.Resource, err)
	}

	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.GetName())
	}
	return names, nil
}

// isRunningSingleContainer reports whether the pod is running with exactly
// one started container.
func isRunningSingleContainer(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	started := 0
	for _, status := range pod.Status.ContainerStatuses {
		if status.Started != nil && *status.Started {
			started++
		}
	}
	return started == 1
}
