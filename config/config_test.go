package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Compiler.Timeout.Duration)
	assert.Equal(t, "import java.util.*;\n", cfg.Fragment.Imports)
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`
[compiler]
release = "17"
options = ["-Xlint:all"]
timeout = "5s"

[classpath]
archives = "build/signatures"

[server]
addr = ":9090"
`), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)

	wantPath, err := filepath.Abs(filepath.Join(root, FileName))
	require.NoError(t, err)
	assert.Equal(t, wantPath, cfg.Path)
	assert.Equal(t, "17", cfg.Compiler.Release)
	assert.Equal(t, []string{"-Xlint:all"}, cfg.Compiler.Options)
	assert.Equal(t, 5*time.Second, cfg.Compiler.Timeout.Duration)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	// Unset keys keep their defaults.
	assert.Equal(t, "javac", cfg.Compiler.Javac)
	assert.Equal(t, "lib", cfg.ClassPath.Libs)
	assert.Equal(t, "Main", cfg.Fragment.Name)

	assert.Equal(t, filepath.Join(filepath.Dir(wantPath), "build", "signatures"), cfg.Resolve(cfg.ClassPath.Archives))
	assert.Equal(t, "/abs", cfg.Resolve("/abs"))
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[compiler\n"), 0o644))
	_, err := LoadFile(bad)
	assert.ErrorContains(t, err, "failed to parse TOML")

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[compiler]\njavc = \"javac\"\n"), 0o644))
	_, err = LoadFile(unknown)
	assert.ErrorContains(t, err, "unknown key compiler.javc")

	duration := filepath.Join(dir, "duration.toml")
	require.NoError(t, os.WriteFile(duration, []byte("[compiler]\ntimeout = \"soon\"\n"), 0o644))
	_, err = LoadFile(duration)
	assert.Error(t, err)
}
