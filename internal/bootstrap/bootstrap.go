// Package bootstrap sequences cluster setup for the TrustyAI platform
// stack: catalog sources, package manifests, operator installation, pod
// verification, and finally the DSCInitialization and DataScienceCluster
// singletons. The phases run strictly in order and the first failure halts
// the run; there is no rollback.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/config"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/k8s"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/manifests"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/olm"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/poll"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/ui"
)

// NamedResourceLister lists the current names of one kind of cluster
// resource. Implementations exist per concrete kind in the k8s package.
type NamedResourceLister interface {
	Kind() string
	ListNames(ctx context.Context) ([]string, error)
}

// Installer installs one operator through OLM.
type Installer interface {
	Install(ctx context.Context, spec olm.InstallSpec) error
}

// ResourceCreator submits a rendered manifest to the cluster.
type ResourceCreator interface {
	CreateFromManifest(ctx context.Context, manifest []byte) error
}

// Bootstrapper runs the setup sequence against a cluster.
type Bootstrapper struct {
	Operators []config.Operator
	Timeouts  config.Timeouts
	Manifests manifests.Loader
	Log       logr.Logger

	CatalogSources   NamedResourceLister
	PackageManifests NamedResourceLister
	Pods             func(namespace string) NamedResourceLister
	Installer        Installer
	Creator          ResourceCreator
}

// New wires a Bootstrapper against a real cluster client.
func New(client *k8s.Client, operators []config.Operator, timeouts config.Timeouts, loader manifests.Loader, log logr.Logger) *Bootstrapper {
	return &Bootstrapper{
		Operators:        operators,
		Timeouts:         timeouts,
		Manifests:        loader,
		Log:              log,
		CatalogSources:   k8s.CatalogSourceLister{Client: client},
		PackageManifests: k8s.PackageManifestLister{Client: client},
		Pods: func(namespace string) NamedResourceLister {
			return k8s.RunningPodLister{Client: client, Namespace: namespace}
		},
		Installer: &olm.Installer{Client: client, Log: log},
		Creator:   client,
	}
}

// Run executes the full setup sequence. manifestsURL is substituted into
// the DataScienceCluster template.
func (b *Bootstrapper) Run(ctx context.Context, manifestsURL string) error {
	if err := b.AwaitCatalogSources(ctx); err != nil {
		return err
	}
	if err := b.AwaitPackageManifests(ctx); err != nil {
		return err
	}
	if err := b.InstallOperators(ctx); err != nil {
		return err
	}
	if err := b.AwaitOperatorPods(ctx); err != nil {
		return err
	}
	if err := b.InstallDSCInitialization(ctx); err != nil {
		return err
	}
	if err := b.InstallDataScienceCluster(ctx, manifestsURL); err != nil {
		return err
	}

	fmt.Println(ui.Done("cluster setup complete"))
	return nil
}

// AwaitCatalogSources waits until every catalog source referenced by the
// operator config is visible cluster-wide.
func (b *Bootstrapper) AwaitCatalogSources(ctx context.Context) error {
	ui.PrintHeader("Waiting for Catalog Sources")

	wanted := config.CatalogSources(b.Operators)
	var missing []string

	err := poll.Until(ctx,
		fmt.Sprintf("catalog sources %s", strings.Join(wanted, ", ")),
		b.Timeouts.CatalogSourceWait, b.Timeouts.RecheckInterval,
		func(ctx context.Context) (bool, error) {
			available, err := b.CatalogSources.ListNames(ctx)
			if err != nil {
				return false, err
			}
			missing = subtract(wanted, available)
			return len(missing) == 0, nil
		})
	if err != nil {
		if poll.IsTimeout(err) {
			b.Log.Error(err, "catalog sources not found", "missing", missing)
		}
		return err
	}

	b.Log.Info("catalog sources found", "names", wanted)
	return nil
}

// AwaitPackageManifests waits, per operator in listed order, for the
// package manifest matching the operator name to appear.
func (b *Bootstrapper) AwaitPackageManifests(ctx context.Context) error {
	ui.PrintHeader("Waiting for Package Manifests")

	for _, op := range b.Operators {
		err := poll.Until(ctx,
			fmt.Sprintf("package manifest for %s", op.Name),
			b.Timeouts.PackageManifestWait, b.Timeouts.RecheckInterval,
			func(ctx context.Context) (bool, error) {
				available, err := b.PackageManifests.ListNames(ctx)
				if err != nil {
					return false, err
				}
				return contains(available, op.Name), nil
			})
		if err != nil {
			return err
		}
		b.Log.Info("package manifest found", "operator", op.Name)
	}
	return nil
}

// InstallOperators issues one installation per operator, with manual
// install-plan approval and the version pinned through the starting CSV.
func (b *Bootstrapper) InstallOperators(ctx context.Context) error {
	ui.PrintHeader("Installing Operators")

	for _, op := range b.Operators {
		err := b.Installer.Install(ctx, olm.InstallSpec{
			Name:          op.Name,
			Channel:       op.Channel,
			CatalogSource: op.CatalogSource,
			Namespace:     op.Namespace,
			StartingCSV:   op.StartingCSV(),
			Timeout:       b.Timeouts.OperatorInstall,
		})
		if err != nil {
			return fmt.Errorf("installing %s: %w", op.Name, err)
		}
	}
	return nil
}

// AwaitOperatorPods verifies, per operator and expected pod name, that a
// running pod with exactly one started container carries the expected name
// as a substring.
func (b *Bootstrapper) AwaitOperatorPods(ctx context.Context) error {
	ui.PrintHeader("Verifying Operator Pods")

	for _, op := range b.Operators {
		pods := b.Pods(op.Namespace)
		for _, target := range op.CorrespondingPods {
			err := poll.Until(ctx,
				fmt.Sprintf("%s pod in %s", target, op.Namespace),
				b.Timeouts.OperatorPodWait, b.Timeouts.RecheckInterval,
				func(ctx context.Context) (bool, error) {
					running, err := pods.ListNames(ctx)
					if err != nil {
						return false, err
					}
					return containsSubstring(running, target), nil
				})
			if err != nil {
				return err
			}
			b.Log.Info("pod running", "pod", target, "namespace", op.Namespace)
		}
	}
	return nil
}

// InstallDSCInitialization creates the default DSCInitialization singleton.
func (b *Bootstrapper) InstallDSCInitialization(ctx context.Context) error {
	ui.PrintHeader("Installing DSCI")

	doc, err := b.Manifests.Load(manifests.DSCInitializationFile)
	if err != nil {
		return err
	}
	if err := b.Creator.CreateFromManifest(ctx, doc); err != nil {
		return fmt.Errorf("installing DSCInitialization: %w", err)
	}
	return nil
}

// InstallDataScienceCluster creates the DataScienceCluster singleton with
// the TrustyAI manifests URL substituted into the template.
func (b *Bootstrapper) InstallDataScienceCluster(ctx context.Context, manifestsURL string) error {
	ui.PrintHeader("Installing Datascience Cluster")
	b.Log.Info("using TrustyAI manifests", "url", manifestsURL)

	template, err := b.Manifests.Load(manifests.DataScienceClusterFile)
	if err != nil {
		return err
	}
	doc := manifests.Render(template, manifestsURL)
	if err := b.Creator.CreateFromManifest(ctx, doc); err != nil {
		return fmt.Errorf("installing DataScienceCluster: %w", err)
	}
	return nil
}

func contains(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}

func containsSubstring(names []string, want string) bool {
	for _, name := range names {
		if strings.Contains(name, want) {
			return true
		}
	}
	return false
}

// subtract returns the wanted names not present in available, preserving
// order.
func subtract(wanted, available []string) []string {
	present := make(map[string]bool, len(available))
	for _, name := range available {
		present[name] = true
	}

	var missing []string
	for _, name := range wanted {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
