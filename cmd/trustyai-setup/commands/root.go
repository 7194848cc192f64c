// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the trustyai-setup CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trustyai-setup",
		Short: "Prepare a cluster for the TrustyAI platform stack",
	}

	cmd.AddCommand(Setup())
	cmd.AddCommand(Version())

	return cmd
}
