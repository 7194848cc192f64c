package k8s

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"
)

// CreateFromManifest decodes a single-document YAML manifest and creates
// the resource via the dynamic client. The caller owns readiness checking;
// no waiting happens here.
func (c *Client) CreateFromManifest(ctx context.Context, manifest []byte) error {
	var obj unstructured.Unstructured
	if err := yaml.Unmarshal(manifest, &obj.Object); err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}
	if len(obj.Object) == 0 {
		return fmt.Errorf("manifest is empty")
	}

	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return fmt.Errorf("manifest has no kind")
	}
	gvr := schema.GroupVersionResource{
		Group:    gvk.Group,
		Version:  gvk.Version,
		Resource: resourceForKind(gvk.Kind),
	}

	var err error
	if namespace := obj.GetNamespace(); namespace != "" {
		_, err = c.Dynamic.Resource(gvr).Namespace(namespace).Create(ctx, &obj, metav1.CreateOptions{})
	} else {
		_, err = c.Dynamic.Resource(gvr).Create(ctx, &obj, metav1.CreateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to create %s %s: %w", obj.GetKind(), obj.GetName(), err)
	}

	return nil
}

// resourceForKind maps a Kubernetes kind to its resource name. Every kind
// this tool creates pluralizes regularly, so the fallback is lowercase+s.
func resourceForKind(kind string) string {
	switch kind {
	case "DSCInitialization":
		return DSCInitializations.Resource
	case "DataScienceCluster":
		return DataScienceClusters.Resource
	case "Subscription":
		return Subscriptions.Resource
	case "OperatorGroup":
		return OperatorGroups.Resource
	case "CatalogSource":
		return CatalogSources.Resource
	default:
		return strings.ToLower(kind) + "s"
	}
}
