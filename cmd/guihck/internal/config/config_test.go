package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/go-guihck/guihck/pkg/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "guihck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
runtime:
  max_update_passes: 8
  frames: 3
log:
  verbosity: 1
scripts:
  prelude: [a.scm, b.scm]
  require_api: v1.1
`)

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Runtime.MaxUpdatePasses)
	assert.Equal(t, 3, cfg.Runtime.Frames)
	assert.Equal(t, 1, cfg.Log.Verbosity)
	assert.Equal(t, []string{"a.scm", "b.scm"}, cfg.Scripts.Prelude)
	assert.Equal(t, "v1.1", cfg.Scripts.RequireAPI)

	opts := cfg.Options()
	assert.Equal(t, 8, opts.MaxUpdatePasses)
	assert.Equal(t, "v1.1", opts.RequireAPI)
	assert.Equal(t, []string{"a.scm", "b.scm"}, opts.Prelude)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  frames: 7\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Runtime.Frames)
	assert.Equal(t, 4, cfg.Runtime.MaxUpdatePasses)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("GUIHCK_RUNTIME_FRAMES", "12")
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Runtime.Frames)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero passes", "runtime:\n  max_update_passes: 0\n"},
		{"negative frames", "runtime:\n  frames: -1\n"},
		{"verbosity", "log:\n  verbosity: 9\n"},
		{"api version", "scripts:\n  require_api: latest\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load("", dir)
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.KindOf(err))
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "runtime: [unclosed\n")
	_, err := Load("", dir)
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scripts.Prelude = []string{"lib.scm"}

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "max_update_passes: 4")
	assert.NotContains(t, string(out), "require_api")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, *cfg, back)
}
