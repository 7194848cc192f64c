package olm

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/k8s"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/poll"
)

const testNamespace = "openshift-operators"

func testSpec() InstallSpec {
	return InstallSpec{
		Name:          "authorino-operator",
		Channel:       "managed-services",
		CatalogSource: "redhat-operators",
		Namespace:     testNamespace,
		StartingCSV:   "authorino-operator.v1.1.2",
		Timeout:       100 * time.Millisecond,
	}
}

func newInstaller(t *testing.T, objects ...runtime.Object) (*Installer, *dynfake.FakeDynamicClient) {
	t.Helper()

	dyn := dynfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			k8s.Subscriptions:          "SubscriptionList",
			k8s.InstallPlans:           "InstallPlanList",
			k8s.ClusterServiceVersions: "ClusterServiceVersionList",
			k8s.OperatorGroups:         "OperatorGroupList",
		}, objects...)

	installer := &Installer{
		Client:   &k8s.Client{Clientset: k8sfake.NewSimpleClientset(), Dynamic: dyn},
		Log:      logr.Discard(),
		Interval: time.Millisecond,
	}
	return installer, dyn
}

func installPlan(name string, approved bool) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "operators.coreos.com/v1alpha1",
		"kind":       "InstallPlan",
		"metadata":   map[string]interface{}{"name": name, "namespace": testNamespace},
		"spec":       map[string]interface{}{"approved": approved},
	}}
}

func csv(name, phase string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "operators.coreos.com/v1alpha1",
		"kind":       "ClusterServiceVersion",
		"metadata":   map[string]interface{}{"name": name, "namespace": testNamespace},
		"status":     map[string]interface{}{"phase": phase},
	}}
}

// linkInstallPlanOnCreate mimics OLM: as soon as a subscription is created,
// its status references a generated install plan.
func linkInstallPlanOnCreate(dyn *dynfake.FakeDynamicClient, planName string) {
	dyn.PrependReactor("create", "subscriptions", func(action k8stesting.Action) (bool, runtime.Object, error) {
		obj := action.(k8stesting.CreateAction).GetObject().(*unstructured.Unstructured)
		_ = unstructured.SetNestedField(obj.Object, planName, "status", "installPlanRef", "name")
		return false, nil, nil
	})
}

func TestInstall(t *testing.T) {
	installer, dyn := newInstaller(t,
		installPlan("install-xyz", false),
		csv("authorino-operator.v1.1.2", "Succeeded"),
	)
	linkInstallPlanOnCreate(dyn, "install-xyz")

	require.NoError(t, installer.Install(context.Background(), testSpec()))

	// The namespace was created.
	_, err := installer.Client.Clientset.CoreV1().Namespaces().
		Get(context.Background(), testNamespace, metav1.GetOptions{})
	require.NoError(t, err)

	// A cluster-wide operator group was created.
	groups, err := dyn.Resource(k8s.OperatorGroups).Namespace(testNamespace).
		List(context.Background(), metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, groups.Items, 1)
	targets, found, _ := unstructured.NestedStringSlice(groups.Items[0].Object, "spec", "targetNamespaces")
	assert.False(t, found, "expected no targetNamespaces, got %v", targets)

	// The subscription pins the version and requires manual approval.
	sub, err := dyn.Resource(k8s.Subscriptions).Namespace(testNamespace).
		Get(context.Background(), "authorino-operator", metav1.GetOptions{})
	require.NoError(t, err)
	approval, _, _ := unstructured.NestedString(sub.Object, "spec", "installPlanApproval")
	assert.Equal(t, ApprovalManual, approval)
	startingCSV, _, _ := unstructured.NestedString(sub.Object, "spec", "startingCSV")
	assert.Equal(t, "authorino-operator.v1.1.2", startingCSV)
	sourceNamespace, _, _ := unstructured.NestedString(sub.Object, "spec", "sourceNamespace")
	assert.Equal(t, DefaultCatalogNamespace, sourceNamespace)

	// The install plan was approved.
	plan, err := dyn.Resource(k8s.InstallPlans).Namespace(testNamespace).
		Get(context.Background(), "install-xyz", metav1.GetOptions{})
	require.NoError(t, err)
	approved, _, _ := unstructured.NestedBool(plan.Object, "spec", "approved")
	assert.True(t, approved)
}

func TestInstall_ReusesExistingOperatorGroup(t *testing.T) {
	existing := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "operators.coreos.com/v1",
		"kind":       "OperatorGroup",
		"metadata":   map[string]interface{}{"name": "global-operators", "namespace": testNamespace},
		"spec":       map[string]interface{}{},
	}}
	installer, dyn := newInstaller(t,
		existing,
		installPlan("install-xyz", true),
		csv("authorino-operator.v1.1.2", "Succeeded"),
	)
	linkInstallPlanOnCreate(dyn, "install-xyz")

	require.NoError(t, installer.Install(context.Background(), testSpec()))

	groups, err := dyn.Resource(k8s.OperatorGroups).Namespace(testNamespace).
		List(context.Background(), metav1.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, groups.Items, 1)
	assert.Equal(t, "global-operators", groups.Items[0].GetName())
}

func TestInstall_TimesOutWithoutInstallPlan(t *testing.T) {
	// OLM never reports an install plan on the subscription.
	installer, _ := newInstaller(t)

	err := installer.Install(context.Background(), testSpec())
	require.Error(t, err)
	assert.True(t, poll.IsTimeout(err))
	assert.Contains(t, err.Error(), "install plan for authorino-operator")
}

func TestWaitForCSV(t *testing.T) {
	tests := []struct {
		name    string
		objects []runtime.Object
		timeout bool
	}{
		{name: "succeeded", objects: []runtime.Object{csv("authorino-operator.v1.1.2", "Succeeded")}},
		{name: "still installing", objects: []runtime.Object{csv("authorino-operator.v1.1.2", "Installing")}, timeout: true},
		{name: "absent", timeout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installer, _ := newInstaller(t, tt.objects...)

			err := installer.waitForCSV(context.Background(), testSpec())
			if tt.timeout {
				assert.True(t, poll.IsTimeout(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstallPlanName(t *testing.T) {
	withRef := &unstructured.Unstructured{Object: map[string]interface{}{
		"status": map[string]interface{}{
			"installPlanRef": map[string]interface{}{"name": "install-new"},
			"installplan":    map[string]interface{}{"name": "install-legacy"},
		},
	}}
	assert.Equal(t, "install-new", installPlanName(withRef))

	legacyOnly := &unstructured.Unstructured{Object: map[string]interface{}{
		"status": map[string]interface{}{
			"installplan": map[string]interface{}{"name": "install-legacy"},
		},
	}}
	assert.Equal(t, "install-legacy", installPlanName(legacyOnly))

	empty := &unstructured.Unstructured{Object: map[string]interface{}{}}
	assert.Equal(t, "", installPlanName(empty))
}
