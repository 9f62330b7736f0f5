package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[input]")
	assert.Contains(t, string(data), "[performance]")
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine"), 0o644))

	_, err := execute(t, "init", path)
	require.Error(t, err)

	_, err = execute(t, "init", path, "--force")
	require.NoError(t, err)
}

func TestValidateReportsConfiguration(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	cfg := filepath.Join(t.TempDir(), "config.toml")
	content := `
[input]
directory = "` + inputDir + `"

[output]
directory = "` + outputDir + `"
metadata_file = "` + filepath.Join(outputDir, "metadata.csv") + `"

[xslt]
file_path = "` + filepath.Join(inputDir, "transform.xsl") + `"
`
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	out, err := execute(t, "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration OK")
	assert.Contains(t, out, inputDir)
	assert.Contains(t, out, "striped")
}

func TestValidateFailsOnMissingConfig(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
