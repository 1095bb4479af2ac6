package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/intensifier/ishell/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the XDG variables at a temp dir so global configs
// on the machine are never read.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, ".local", "share"))
	t.Setenv("ISHELL_CONFIG", "")
	t.Setenv("ISHELL_CONFIG_CONTENT", "")
	t.Setenv("ISHELL_PLATFORM", "")
	t.Setenv("ISHELL_DEBUG", "")
	t.Setenv("ISHELL_LOG_LEVEL", "")
	t.Setenv("ISHELL_MAX_HISTORY", "")
	return tmpDir
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, runtime.GOOS, cfg.Platform)
	assert.Equal(t, DefaultMaxHistoryItems, cfg.MaxHistoryItems)
	assert.Equal(t, "dir", cfg.Scripts.Repository)
	assert.Equal(t, DefaultExclude, cfg.Scripts.Exclude)
	assert.Equal(t, filepath.Join(tmpDir, ".config", "ishell", "scripts"), cfg.Scripts.Dir)
	assert.Equal(t, DefaultSearchResults, cfg.Search.MaxResults)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.True(t, cfg.Environment.AllowsUserScripts())
}

func TestLoadProjectJSONC(t *testing.T) {
	tmpDir := isolate(t)

	content := `{
		// comments are allowed
		"platform": "chrome",
		"maxHistoryItems": 5,
		"environment": {"constrained": true, "userScripts": false},
		"scripts": {
			"repository": "sqlite",
			"exclude": ["**/draft-*.gos"],
			"watch": true
		},
	}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ishell.jsonc"), []byte(content), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "chrome", cfg.Platform)
	assert.Equal(t, 5, cfg.MaxHistoryItems)
	assert.True(t, cfg.Environment.Constrained)
	assert.False(t, cfg.Environment.AllowsUserScripts())
	assert.Equal(t, "sqlite", cfg.Scripts.Repository)
	assert.Equal(t, []string{"**/draft-*.gos"}, cfg.Scripts.Exclude)
	assert.True(t, cfg.Scripts.Watch)
}

func TestLoadInterpolation(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("ISHELL_TEST_SCRIPTS", "/opt/scripts")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "bundle.txt"), []byte("commands-user.yaml\n"), 0644))
	content := `{"scripts": {"dir": "{env:ISHELL_TEST_SCRIPTS}", "bundle": "{file:bundle.txt}"}}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ishell.json"), []byte(content), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/scripts", cfg.Scripts.Dir)
	assert.Equal(t, "commands-user.yaml", cfg.Scripts.Bundle)
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ishell.json"), []byte(`{"platform": "firefox"}`), 0644))
	t.Setenv("ISHELL_PLATFORM", "chrome")
	t.Setenv("ISHELL_DEBUG", "true")
	t.Setenv("ISHELL_LOG_LEVEL", "DEBUG")
	t.Setenv("ISHELL_MAX_HISTORY", "3")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "chrome", cfg.Platform)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 3, cfg.MaxHistoryItems)
}

func TestLoadInlineContentOverridesFiles(t *testing.T) {
	tmpDir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ishell.json"), []byte(`{"maxHistoryItems": 7}`), 0644))
	t.Setenv("ISHELL_CONFIG_CONTENT", `{"maxHistoryItems": 9}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxHistoryItems)
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("ISHELL_MAX_HISTORY", "")
	os.Unsetenv("ISHELL_MAX_HISTORY")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("ISHELL_MAX_HISTORY=4\n"), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxHistoryItems)
}

func TestSave(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "out", "ishell.json")

	require.NoError(t, Save(&types.Config{Platform: "linux", MaxHistoryItems: 11}, path))

	t.Setenv("ISHELL_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "linux", cfg.Platform)
	assert.Equal(t, 11, cfg.MaxHistoryItems)
}

func TestPaths(t *testing.T) {
	tmpDir := isolate(t)

	paths := GetPaths()
	assert.Equal(t, filepath.Join(tmpDir, ".local", "share", "ishell", "storage"), paths.StoragePath())
	assert.Equal(t, filepath.Join(tmpDir, ".local", "share", "ishell", "scripts.db"), paths.DatabasePath())
	assert.Equal(t, filepath.Join(tmpDir, ".config", "ishell", "scripts"), paths.ScriptsPath())
}
