// Package manifests serves the custom-resource templates submitted at the
// end of cluster setup. Default templates are embedded in the binary; a
// manifests directory on disk takes precedence when present.
package manifests

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates
var templates embed.FS

// Placeholder is the token in the DataScienceCluster template that is
// replaced with the TrustyAI manifests URL before submission.
const Placeholder = "TRUSTYAI_REPO_PLACEHOLDER"

// DefaultManifestsURL is the TrustyAI service operator manifests tarball
// used when no URL is passed on the command line.
const DefaultManifestsURL = "https://github.com/trustyai-explainability/trustyai-service-operator/tarball/main"

// Template file names, identical on disk and in the embedded defaults.
const (
	DSCInitializationFile  = "dsci.yaml"
	DataScienceClusterFile = "dsc_template.yaml"
)

// Loader resolves template documents. When Dir is set, files found there
// shadow the embedded defaults.
type Loader struct {
	Dir string
}

// Load returns the named template document.
func (l Loader) Load(name string) ([]byte, error) {
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}

	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown template %s: %w", name, err)
	}
	return data, nil
}

// Render substitutes the manifests URL for every occurrence of
// [Placeholder]. The output is otherwise byte-identical to the template.
func Render(template []byte, url string) []byte {
	return bytes.ReplaceAll(template, []byte(Placeholder), []byte(url))
}
