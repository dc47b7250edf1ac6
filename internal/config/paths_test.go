package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths, err := ResolvePaths(PathsConfig{
		BaseDir:    base,
		ReportsDir: "out",
		LogsDir:    abs,
	})
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, DefaultDataDir), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "out"), paths.ReportsDir)
	assert.Equal(t, abs, paths.LogsDir)

	assert.Equal(t, filepath.Join(base, "out", "result.xlsx"), paths.GetReportPath("result.xlsx"))
	assert.Equal(t, filepath.Join(base, "out", "r.csv"), paths.Resolve("r.csv"))
	assert.Equal(t, abs, paths.Resolve(abs))
	assert.Equal(t, filepath.Join(abs, "a.log"), paths.GetLogPath("a.log"))
	assert.Equal(t, filepath.Join(base, DefaultDataDir, "in.csv"), paths.GetDataPath("in.csv"))
}

func TestResolvePaths_ExecutableDirDefault(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{})
	require.NoError(t, err)

	exeDir, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, exeDir, paths.BaseDir)
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(paths.ReportsDir))
	assert.False(t, FileExists(filepath.Join(paths.ReportsDir, "nope")))
}
