// Package handlers implements the execution logic behind the CLI commands.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	ctrlzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/bootstrap"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/config"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/k8s"
	"github.com/trustyai-explainability/trustyai-cluster-setup/internal/manifests"
)

// SetupOptions holds the flag and argument values of the setup command.
type SetupOptions struct {
	ConfigPath   string
	ManifestsDir string
	Kubeconfig   string
	ManifestsURL string
	Verbose      bool
}

// Setup runs the full cluster preparation sequence.
func Setup(ctx context.Context, opts SetupOptions) error {
	log := newLogger(opts.Verbose)

	operators, err := config.Load(opts.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Error(err, "operator config not found; run from the repository root or pass --config")
		}
		return err
	}
	log.Info("loaded operator config", "path", opts.ConfigPath, "operators", len(operators))

	client, err := k8s.NewClient(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("connecting to cluster: %w", err)
	}

	loader := manifests.Loader{Dir: opts.ManifestsDir}
	b := bootstrap.New(client, operators, config.LoadTimeouts(), loader, log)

	return b.Run(ctx, opts.ManifestsURL)
}

// newLogger builds the CLI logger on the controller-runtime zap bridge.
func newLogger(verbose bool) logr.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return ctrlzap.New(ctrlzap.UseDevMode(true), ctrlzap.Level(level))
}
