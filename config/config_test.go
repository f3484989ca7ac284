package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaultsFromFlags(t *testing.T) {
	c := Defaults()
	err := c.Load([]string{"-threads", "4", "-depth", "2", "-oracle-command", "external"})
	require.NoError(t, err)

	assert.Equal(t, 4, c.Engine.Threads)
	assert.Equal(t, 2, c.Engine.Depth)
	assert.Equal(t, "external", c.OracleCommand)
}

func TestLoadLeavesUnsetFlagsAtDefault(t *testing.T) {
	c := Defaults()
	err := c.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Defaults().Engine, c.Engine)
}

func TestLoadYAMLMergesDefaultsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridgecard.yaml")
	contents := "oraclecommand: external\nengine:\n  threads: 8\n  depth: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	c := Defaults()
	require.NoError(t, c.LoadYAML(path))

	assert.Equal(t, "external", c.OracleCommand)
	assert.Equal(t, 8, c.Engine.Threads)
	assert.Equal(t, 3, c.Engine.Depth)
}

func TestLoadYAMLMissingFileErrors(t *testing.T) {
	c := Defaults()
	err := c.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
