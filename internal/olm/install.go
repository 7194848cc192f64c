// Package olm installs operators through the Operator Lifecycle Manager.
//
// An install creates the target namespace, an operator group, and a
// subscription pinned to a starting CSV with manual install-plan approval,
// then approves the generated install plan and waits for the CSV to reach
// the Succeeded phase.
package olm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/k8s"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/poll"
)

const (
	// DefaultCatalogNamespace is where OpenShift serves its catalog sources.
	DefaultCatalogNamespace = "openshift-marketplace"

	// ApprovalManual gates installs behind explicit install-plan approval.
	ApprovalManual = "Manual"

	defaultInterval = 5 * time.Second
)

// InstallSpec describes one operator installation.
type InstallSpec struct {
	// Name is the package name, used for the subscription and operator
	// group as well.
	Name string
	// Channel is the subscription channel.
	Channel string
	// CatalogSource names the catalog serving the package.
	CatalogSource string
	// CatalogSourceNamespace defaults to openshift-marketplace.
	CatalogSourceNamespace string
	// Namespace is where the operator installs.
	Namespace string
	// StartingCSV pins the exact version to install.
	StartingCSV string
	// Timeout bounds the whole install, approval included.
	Timeout time.Duration
}

// Installer installs operators against a cluster.
type Installer struct {
	Client *k8s.Client
	Log    logr.Logger

	// Interval between readiness probes; defaults to 5s.
	Interval time.Duration
}

// Install runs one operator installation end to end.
func (i *Installer) Install(ctx context.Context, spec InstallSpec) error {
	if spec.CatalogSourceNamespace == "" {
		spec.CatalogSourceNamespace = DefaultCatalogNamespace
	}

	log := i.Log.WithValues("operator", spec.Name, "namespace", spec.Namespace)
	log.Info("installing operator", "channel", spec.Channel, "startingCSV", spec.StartingCSV)

	if err := i.ensureNamespace(ctx, spec.Namespace); err != nil {
		return err
	}
	if err := i.ensureOperatorGroup(ctx, spec); err != nil {
		return err
	}
	if err := i.createSubscription(ctx, spec); err != nil {
		return err
	}
	if err := i.approveInstallPlan(ctx, spec); err != nil {
		return err
	}
	if err := i.waitForCSV(ctx, spec); err != nil {
		return err
	}

	log.Info("operator installed")
	return nil
}

func (i *Installer) interval() time.Duration {
	if i.Interval > 0 {
		return i.Interval
	}
	return defaultInterval
}

func (i *Installer) ensureNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
	_, err := i.Client.Clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// ensureOperatorGroup creates a cluster-wide operator group in the install
// namespace. OLM allows at most one operator group per namespace, so an
// existing one is reused.
func (i *Installer) ensureOperatorGroup(ctx context.Context, spec InstallSpec) error {
	existing, err := i.Client.Dynamic.Resource(k8s.OperatorGroups).Namespace(spec.Namespace).
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list operator groups in %s: %w", spec.Namespace, err)
	}
	if len(existing.Items) > 0 {
		i.Log.V(1).Info("reusing operator group",
			"namespace", spec.Namespace, "name", existing.Items[0].GetName())
		return nil
	}

	// No targetNamespaces: the operator watches all namespaces.
	group := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "operators.coreos.com/v1",
		"kind":       "OperatorGroup",
		"metadata": map[string]interface{}{
			"name":      spec.Name,
			"namespace": spec.Namespace,
		},
		"spec": map[string]interface{}{},
	}}

	_, err = i.Client.Dynamic.Resource(k8s.OperatorGroups).Namespace(spec.Namespace).
		Create(ctx, group, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create operator group for %s: %w", spec.Name, err)
	}
	return nil
}

func (i *Installer) createSubscription(ctx context.Context, spec InstallSpec) error {
	subscription := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "operators.coreos.com/v1alpha1",
		"kind":       "Subscription",
		"metadata": map[string]interface{}{
			"name":      spec.Name,
			"namespace": spec.Namespace,
		},
		"spec": map[string]interface{}{
			"name":                spec.Name,
			"channel":             spec.Channel,
			"source":              spec.CatalogSource,
			"sourceNamespace":     spec.CatalogSourceNamespace,
			"installPlanApproval": ApprovalManual,
			"startingCSV":         spec.StartingCSV,
		},
	}}

	_, err := i.Client.Dynamic.Resource(k8s.Subscriptions).Namespace(spec.Namespace).
		Create(ctx, subscription, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("failed to create subscription for %s: %w", spec.Name, err)
	}
	return nil
}

// approveInstallPlan waits for OLM to generate the install plan for the
// subscription, then approves it.
func (i *Installer) approveInstallPlan(ctx context.Context, spec InstallSpec) error {
	var planName string
	err := poll.Until(ctx,
		fmt.Sprintf("install plan for %s", spec.Name),
		spec.Timeout, i.interval(),
		func(ctx context.Context) (bool, error) {
			sub, err := i.Client.Dynamic.Resource(k8s.Subscriptions).Namespace(spec.Namespace).
				Get(ctx, spec.Name, metav1.GetOptions{})
			if err != nil {
				return false, err
			}
			planName = installPlanName(sub)
			return planName != "", nil
		})
	if err != nil {
		return err
	}

	plan, err := i.Client.Dynamic.Resource(k8s.InstallPlans).Namespace(spec.Namespace).
		Get(ctx, planName, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get install plan %s: %w", planName, err)
	}

	if approved, _, _ := unstructured.NestedBool(plan.Object, "spec", "approved"); approved {
		return nil
	}

	if err := unstructured.SetNestedField(plan.Object, true, "spec", "approved"); err != nil {
		return fmt.Errorf("failed to set approval on install plan %s: %w", planName, err)
	}
	_, err = i.Client.Dynamic.Resource(k8s.InstallPlans).Namespace(spec.Namespace).
		Update(ctx, plan, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to approve install plan %s: %w", planName, err)
	}

	i.Log.Info("approved install plan", "operator", spec.Name, "installPlan", planName)
	return nil
}

// waitForCSV waits for the pinned CSV to reach the Succeeded phase.
func (i *Installer) waitForCSV(ctx context.Context, spec InstallSpec) error {
	return poll.Until(ctx,
		fmt.Sprintf("CSV %s to succeed", spec.StartingCSV),
		spec.Timeout, i.interval(),
		func(ctx context.Context) (bool, error) {
			csv, err := i.Client.Dynamic.Resource(k8s.ClusterServiceVersions).Namespace(spec.Namespace).
				Get(ctx, spec.StartingCSV, metav1.GetOptions{})
			if err != nil {
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			phase, _, _ := unstructured.NestedString(csv.Object, "status", "phase")
			return phase == "Succeeded", nil
		})
}

// installPlanName extracts the generated install plan name from the
// subscription status. OLM reports it under installPlanRef, with the legacy
// installplan field as fallback.
func installPlanName(sub *unstructured.Unstructured) string {
	if name, _, _ := unstructured.NestedString(sub.Object, "status", "installPlanRef", "name"); name != "" {
		return name
	}
	name, _, _ := unstructured.NestedString(sub.Object, "status", "installplan", "name")
	return name
}
