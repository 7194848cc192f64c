package commands

import (
	"github.com/spf13/cobra"

	"github.com/trustyai-explainability/trustyai-cluster-setup/cmd/trustyai-setup/handlers"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/config"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/manifests"
)

// Setup returns the command that runs the full cluster preparation
// sequence.
//
// The sequence waits for the catalog sources and package manifests named in
// the operator config, installs each operator with manual install-plan
// approval pinned to its configured version, verifies the operator pods are
// running, then creates the DSCInitialization and DataScienceCluster
// resources from the bundled templates.
//
// Optional positional argument:
//
//	manifests-url: TrustyAI service operator manifests tarball, substituted
//	into the DataScienceCluster template (default: upstream main tarball)
//
// Optional flags:
//
//	--config, -c: Path to the operator config YAML (default: setup/operators_config.yaml)
//	--manifests-dir: Directory with dsci.yaml / dsc_template.yaml overrides
//	--kubeconfig: Path to a kubeconfig (default: in-cluster or $KUBECONFIG)
//	--verbose, -v: Enable debug logging
func Setup() *cobra.Command {
	var opts handlers.SetupOptions

	cmd := &cobra.Command{
		Use:   "setup [manifests-url]",
		Short: "Install the operator stack and platform resources",
		Long: `Prepare the cluster for TrustyAI testing.

Waits for the required catalog sources and package manifests, installs the
prerequisite operators through OLM, verifies their pods are running, and
creates the DSCInitialization and DataScienceCluster singletons.

Examples:
  # Use the default upstream TrustyAI manifests
  trustyai-setup setup

  # Use manifests from a pull request build
  trustyai-setup setup https://github.com/org/trustyai-service-operator/tarball/pr-42

  # Use a custom operator list
  trustyai-setup setup -c my_operators.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ManifestsURL = manifests.DefaultManifestsURL
			if len(args) == 1 {
				opts.ManifestsURL = args[0]
			}
			return handlers.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigPath, "Path to the operator config file")
	cmd.Flags().StringVar(&opts.ManifestsDir, "manifests-dir", "", "Directory with template overrides")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to a kubeconfig file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
