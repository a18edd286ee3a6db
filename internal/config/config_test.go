package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
runSettings:
  concurrency: 4
  rpm: 60
  tpm: 100000
components:
  translator:
    model:
      provider: mock
      name: mock-1
    prompt:
      template: "{{text}}"
promptArtifacts:
  styleGuide: artifacts/style.json
langfuse:
  enabled: false
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	path := writeTemp(t, "config.yaml", sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, doc.RunSettings.Concurrency)
	assert.Equal(t, 1, doc.RunSettings.MaxRepairs)
	assert.Equal(t, 3, doc.RunSettings.JudgeRuns)
	assert.Equal(t, "mock", doc.Components.Translator.Model.Provider)
	assert.True(t, doc.Defaults.HardChecks.NoDisallowedJapanese)
}

func TestLoadMissingTranslatorFails(t *testing.T) {
	path := writeTemp(t, "config.yaml", "runSettings:\n  concurrency: 1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestResolvedPathsAreRelativeToConfigDir(t *testing.T) {
	path := writeTemp(t, "config.yaml", sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "output"), doc.OutputDir())
	assert.Equal(t, filepath.Join(dir, "artifacts/style.json"), doc.ArtifactPaths()["styleGuide"])
}

func TestUsesOpenAIFalseForMockOnlyDocument(t *testing.T) {
	path := writeTemp(t, "config.yaml", sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)
	assert.False(t, doc.UsesOpenAI())
}

func TestLoadJSONDocument(t *testing.T) {
	jsonDoc := `{
		"runSettings": {"concurrency": 2},
		"components": {"translator": {"model": {"provider": "openai", "name": "gpt-4o-mini"}, "prompt": {"template": "x"}}}
	}`
	path := writeTemp(t, "config.json", jsonDoc)
	doc, err := Load(path)
	require.NoError(t, err)
	assert.True(t, doc.UsesOpenAI())
}
