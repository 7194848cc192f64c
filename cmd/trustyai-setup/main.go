// Package main is the entry point for the trustyai-setup CLI.
//
// trustyai-setup prepares an OpenShift cluster for the TrustyAI platform
// stack: it waits for the required OLM catalog sources and package
// manifests, installs the prerequisite operators, verifies their pods, and
// creates the DSCInitialization and DataScienceCluster resources.
//
// For detailed usage information, run:
//
//	trustyai-setup --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trustyai-explainability/trustyai-cluster-setup/cmd/trustyai-setup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
