// Package config loads and validates the operator configuration document
// that drives cluster setup.
package config

import (
	"fmt"
)

// Operator describes one prerequisite operator to install: which catalog
// and channel it is delivered through, the namespace it installs into, the
// version to pin, and the pod names that prove it is running.
type Operator struct {
	Name              string   `yaml:"name"`
	Channel           string   `yaml:"channel"`
	CatalogSource     string   `yaml:"catalogSource"`
	Namespace         string   `yaml:"namespace"`
	Version           string   `yaml:"version"`
	CorrespondingPods []string `yaml:"correspondingPods"`
}

// StartingCSV returns the pinned cluster service version name for the
// operator, in the <name>.v<version> form OLM expects.
func (o Operator) StartingCSV() string {
	return fmt.Sprintf("%s.v%s", o.Name, o.Version)
}

// Validate checks that the operator entry carries every field setup needs.
func (o Operator) Validate() error {
	switch {
	case o.Name == "":
		return fmt.Errorf("operator entry is missing a name")
	case o.Channel == "":
		return fmt.Errorf("operator %q is missing a channel", o.Name)
	case o.CatalogSource == "":
		return fmt.Errorf("operator %q is missing a catalogSource", o.Name)
	case o.Namespace == "":
		return fmt.Errorf("operator %q is missing a namespace", o.Name)
	case o.Version == "":
		return fmt.Errorf("operator %q is missing a version", o.Name)
	}
	return nil
}

// CatalogSources returns the distinct catalog source names referenced by
// the given operators, in first-seen order.
func CatalogSources(operators []Operator) []string {
	seen := make(map[string]bool, len(operators))
	var sources []string
	for _, op := range operators {
		if seen[op.CatalogSource] {
			continue
		}
		seen[op.CatalogSource] = true
		sources = append(sources, op.CatalogSource)
	}
	return sources
}
