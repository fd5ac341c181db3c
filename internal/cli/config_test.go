package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".doxyrst.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileFillsEmptyFields(t *testing.T) {
	path := writeConfig(t, `
specs: docs/yml
xml: docs/build/xml
out: docs/source/generated
headers: include
project: libsemigroups
namespace: libsemigroups
copyright: Copyright (c) 2019 J. D. Mitchell
`)

	cfg := Config{}
	require.NoError(t, loadConfigFile(&cfg, path))
	assert.Equal(t, "docs/yml", cfg.SpecDir)
	assert.Equal(t, "docs/build/xml", cfg.XMLDir)
	assert.Equal(t, "docs/source/generated", cfg.OutDir)
	assert.Equal(t, "include", cfg.HeaderDir)
	assert.Equal(t, "libsemigroups", cfg.Project)
	assert.Equal(t, "libsemigroups", cfg.Namespace)
	assert.Equal(t, "Copyright (c) 2019 J. D. Mitchell", cfg.Copyright)
}

func TestLoadConfigFileFlagsWin(t *testing.T) {
	path := writeConfig(t, `
specs: from-file
project: from-file
`)

	cfg := Config{SpecDir: "from-flag"}
	require.NoError(t, loadConfigFile(&cfg, path))
	assert.Equal(t, "from-flag", cfg.SpecDir, "flag values must not be overridden")
	assert.Equal(t, "from-file", cfg.Project)
}

func TestLoadConfigFileMissingDefaultIsFine(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg := Config{}
	assert.NoError(t, loadConfigFile(&cfg, ""))
}

func TestLoadConfigFileMissingExplicitPathFails(t *testing.T) {
	cfg := Config{}
	assert.Error(t, loadConfigFile(&cfg, filepath.Join(t.TempDir(), "nope.yml")))
}

func TestLoadConfigFileRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "specs: [unclosed")
	cfg := Config{}
	assert.Error(t, loadConfigFile(&cfg, path))
}

func TestValidate(t *testing.T) {
	cfg := Config{
		SpecDir:   "yml",
		XMLDir:    "xml",
		OutDir:    "out",
		Project:   "libsemigroups",
		Namespace: "libsemigroups",
	}
	assert.NoError(t, cfg.Validate())

	cfg.Project = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Project")
}

func TestAttributionHeader(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, ".. This file was auto-generated by doxyrst, do not edit.\n",
		cfg.AttributionHeader())

	cfg.Copyright = "Copyright (c) 2019 J. D. Mitchell"
	header := cfg.AttributionHeader()
	assert.Equal(t, ".. Copyright (c) 2019 J. D. Mitchell\n\n"+
		".. This file was auto-generated by doxyrst, do not edit.\n", header)
}
