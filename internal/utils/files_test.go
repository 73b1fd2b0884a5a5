package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPackageDirs(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"main.go",
		"models/user.go",
		"models/user_test.go",
		"schemas/user.typestate.hcl",
		"docs/readme.md",
		"onlytests/a_test.go",
		"testdata/fixture.go",
		"vendor/dep/dep.go",
		".git/hooks.go",
		"_examples/demo.go",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	dirs, err := FindPackageDirs(root, "*.typestate.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "models"),
		filepath.Join(root, "schemas"),
	}, dirs)

	dirs, err = FindPackageDirs(root, "")
	require.NoError(t, err)
	assert.NotContains(t, dirs, filepath.Join(root, "schemas"))
}

func TestFindPackageDirs_Missing(t *testing.T) {
	_, err := FindPackageDirs(filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)
}

func TestSplitRecursive(t *testing.T) {
	tests := []struct {
		in        string
		dir       string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"models/...", "models", true},
		{"models", "models", false},
		{".", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dir, recursive := SplitRecursive(tt.in)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}
