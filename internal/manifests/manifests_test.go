package manifests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestRender(t *testing.T) {
	template := []byte("uri: TRUSTYAI_REPO_PLACEHOLDER\nother: untouched\n")

	out := Render(template, "https://example.com/tarball/main")

	assert.Equal(t, "uri: https://example.com/tarball/main\nother: untouched\n", string(out))
}

func TestRender_ByteIdenticalOutsidePlaceholder(t *testing.T) {
	template := []byte("a: 1\nuri: TRUSTYAI_REPO_PLACEHOLDER\nb: 2\n")
	url := "https://github.com/org/repo/tarball/branch"

	out := Render(template, url)

	// Splitting both documents at the substitution point, everything
	// outside the token is untouched.
	idx := bytes.Index(template, []byte(Placeholder))
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, template[:idx], out[:idx])
	assert.Equal(t, template[idx+len(Placeholder):], out[idx+len(url):])
	assert.NotContains(t, string(out), Placeholder)
}

func TestRender_NoPlaceholder(t *testing.T) {
	template := []byte("no token here\n")
	assert.Equal(t, template, Render(template, "https://example.com"))
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	var loader Loader

	dsci, err := loader.Load(DSCInitializationFile)
	require.NoError(t, err)
	assert.Contains(t, string(dsci), "kind: DSCInitialization")

	dsc, err := loader.Load(DataScienceClusterFile)
	require.NoError(t, err)
	assert.Contains(t, string(dsc), "kind: DataScienceCluster")
	assert.Contains(t, string(dsc), Placeholder)
}

func TestLoad_DirOverride(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("kind: DSCInitialization\nmetadata:\n  name: custom\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DSCInitializationFile), custom, 0o600))

	loader := Loader{Dir: dir}

	got, err := loader.Load(DSCInitializationFile)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// Files missing from the directory fall back to the embedded default.
	dsc, err := loader.Load(DataScienceClusterFile)
	require.NoError(t, err)
	assert.Contains(t, string(dsc), Placeholder)
}

func TestLoad_Unknown(t *testing.T) {
	var loader Loader
	_, err := loader.Load("nope.yaml")
	assert.Error(t, err)
}

func TestEmbeddedTemplatesAreValidYAML(t *testing.T) {
	var loader Loader
	for _, name := range []string{DSCInitializationFile, DataScienceClusterFile} {
		data, err := loader.Load(name)
		require.NoError(t, err)

		var doc map[string]interface{}
		require.NoError(t, yaml.Unmarshal(Render(data, DefaultManifestsURL), &doc), name)
		assert.NotEmpty(t, doc["kind"], name)
	}
}
