package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typestate/internal/cli/config"
)

func TestInit_Defaults(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, context.Background(), "init", "--yes", "--config-dir", dir, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+filepath.Join(dir, config.FileName))

	cfg, err := config.Load(config.New(dir))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInit_Existing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("finalize_method: Done\n"), 0644))

	_, stderr, err := execute(t, context.Background(), "init", "--yes", "--config-dir", dir, "--no-color")
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "finalize_method: Done\n", string(data))

	_, _, err = execute(t, context.Background(), "init", "--yes", "--force", "--config-dir", dir)
	require.NoError(t, err)

	cfg, err := config.Load(config.New(dir))
	require.NoError(t, err)
	assert.Equal(t, "Build", cfg.FinalizeMethod)
}

func TestIdentifierValidator(t *testing.T) {
	assert.NoError(t, identifier("Build"))
	assert.NoError(t, identifier("_x1"))
	assert.Error(t, identifier("1x"))
	assert.Error(t, identifier("func"))
	assert.Error(t, identifier(""))
	assert.Error(t, identifier(42))
}
