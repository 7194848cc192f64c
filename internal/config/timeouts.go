package config

import (
	"os"
	"time"
)

// Timeouts holds the wait budgets used while sequencing cluster setup.
// These values can be customized via environment variables.
type Timeouts struct {
	CatalogSourceWait   time.Duration // Budget for all catalog sources to appear
	PackageManifestWait time.Duration // Budget per operator for its package manifest
	OperatorInstall     time.Duration // Budget for one operator install to reach Succeeded
	OperatorPodWait     time.Duration // Budget per expected pod to be running
	RecheckInterval     time.Duration // Sleep between probe attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - TRUSTYAI_SETUP_TIMEOUT_CATALOG_SOURCES (default: 5m)
//   - TRUSTYAI_SETUP_TIMEOUT_PACKAGE_MANIFESTS (default: 15m)
//   - TRUSTYAI_SETUP_TIMEOUT_OPERATOR_INSTALL (default: 10m)
//   - TRUSTYAI_SETUP_TIMEOUT_OPERATOR_PODS (default: 5m)
//   - TRUSTYAI_SETUP_RECHECK_INTERVAL (default: 5s)
func LoadTimeouts() Timeouts {
	return Timeouts{
		CatalogSourceWait:   parseDuration("TRUSTYAI_SETUP_TIMEOUT_CATALOG_SOURCES", 5*time.Minute),
		PackageManifestWait: parseDuration("TRUSTYAI_SETUP_TIMEOUT_PACKAGE_MANIFESTS", 15*time.Minute),
		OperatorInstall:     parseDuration("TRUSTYAI_SETUP_TIMEOUT_OPERATOR_INSTALL", 10*time.Minute),
		OperatorPodWait:     parseDuration("TRUSTYAI_SETUP_TIMEOUT_OPERATOR_PODS", 5*time.Minute),
		RecheckInterval:     parseDuration("TRUSTYAI_SETUP_RECHECK_INTERVAL", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
