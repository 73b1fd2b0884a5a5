package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typestate/internal/compiler/errors"
)

const userSource = `package models

import "github.com/conduit-lang/typestate/pkg/option"

//typestate:builder
type User struct {
	ID       int64
	Nickname option.Option[string]
}
`

const postSchema = `
package = "models"

import "option" {
  path = "github.com/conduit-lang/typestate/pkg/option"
}

record "Post" {
  field "Title" { type = "string" }
  field "Draft" { type = "option.Option[bool]" }
}
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newSystem(t *testing.T, dir string, configure ...func(*BuildOptions)) *System {
	t.Helper()
	opts := DefaultBuildOptions()
	opts.Dir = dir
	for _, fn := range configure {
		fn(opts)
	}
	sys, err := NewSystem(opts)
	require.NoError(t, err)
	return sys
}

func TestNewSystem_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts *BuildOptions
	}{
		{"non-go output", &BuildOptions{Output: "builders.txt"}},
		{"test output", &BuildOptions{Output: "builders_test.go"}},
		{"output path", &BuildOptions{Output: "gen/builders.go"}},
		{"types with recursion", &BuildOptions{Dir: "./...", Types: []string{"User"}}},
		{"invalid type name", &BuildOptions{Types: []string{"my-type"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSystem(tt.opts)
			assert.Error(t, err)
		})
	}

	sys, err := NewSystem(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, sys.Options().Output)
}

func TestFileStatus_String(t *testing.T) {
	tests := []struct {
		status FileStatus
		want   string
	}{
		{StatusWritten, "written"},
		{StatusUnchanged, "unchanged"},
		{StatusRemoved, "removed"},
		{StatusDryRun, "dry-run"},
		{FileStatus(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"user.go": userSource})

	result, err := newSystem(t, dir).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Packages)
	require.Len(t, result.Files, 1)

	file := result.Files[0]
	assert.Equal(t, filepath.Join(dir, DefaultOutput), file.Path)
	assert.Equal(t, StatusWritten, file.Status)
	assert.Equal(t, []string{"User"}, file.Records)

	content, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, file.Source, content)
	assert.Contains(t, string(content), "func NewUserBuilder() UserBuilderPhase1")

	_, err = os.Stat(file.Path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestRun_UnchangedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"user.go": userSource})
	sys := newSystem(t, dir)

	_, err := sys.Run(context.Background())
	require.NoError(t, err)

	result, err := sys.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusUnchanged, result.Files[0].Status)
	assert.Equal(t, 0, result.Count(StatusWritten))
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"user.go": userSource})

	result, err := newSystem(t, dir, func(o *BuildOptions) { o.DryRun = true }).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusDryRun, result.Files[0].Status)
	assert.NotEmpty(t, result.Files[0].Source)

	_, err = os.Stat(filepath.Join(dir, DefaultOutput))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SchemaAndGoShareMarker(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go":            userSource,
		"post.typestate.hcl": postSchema,
	})
	sys := newSystem(t, dir)

	for i := 0; i < 2; i++ {
		result, err := sys.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Files, 2)
		assert.Equal(t, 2, result.Records())

		goOut := string(result.Files[0].Source)
		schemaOut := string(result.Files[1].Source)
		assert.Equal(t, filepath.Join(dir, "post_typestate.go"), result.Files[1].Path)

		assert.Equal(t, 1, strings.Count(goOut+schemaOut, "type CanBuild struct{}"), "run %d", i)
		assert.Contains(t, schemaOut, "type Post struct")
		assert.Contains(t, schemaOut, "func NewPostBuilder() PostBuilderPhase1")
	}
}

func TestRun_SchemaPackageMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go":            userSource,
		"post.typestate.hcl": strings.Replace(postSchema, `"models"`, `"other"`, 1),
	})

	result, err := newSystem(t, dir).Run(context.Background())
	require.Error(t, err)
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, errors.ErrSchemaSyntax, result.Errors[0].Code)
}

func TestRun_CompilerErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go": "package models\n\n//typestate:builder\ntype User struct {\n",
	})

	result, err := newSystem(t, dir).Run(context.Background())
	require.Error(t, err)

	var list errors.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Equal(t, errors.ErrGoSyntax, list[0].Code)
	assert.False(t, result.Success)
	assert.Empty(t, result.Files)
}

func TestRun_RemovesStaleOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"user.go": userSource})
	sys := newSystem(t, dir)

	_, err := sys.Run(context.Background())
	require.NoError(t, err)

	writeFiles(t, dir, map[string]string{"user.go": "package models\n\ntype User struct{ ID int64 }\n"})

	result, err := sys.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusRemoved, result.Files[0].Status)

	_, err = os.Stat(filepath.Join(dir, DefaultOutput))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_KeepsHandWrittenOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go":     "package models\n\ntype User struct{ ID int64 }\n",
		DefaultOutput: "package models\n\n// hand written\n",
	})

	result, err := newSystem(t, dir).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Files)

	_, err = os.Stat(filepath.Join(dir, DefaultOutput))
	assert.NoError(t, err)
}

func TestRun_Recursive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"models/user.go":             userSource,
		"blog/post.typestate.hcl":    strings.Replace(postSchema, `"models"`, `"blog"`, 1),
		"plain/plain.go":             "package plain\n",
		"testdata/broken/broken.go":  "package broken\n\ntype {",
	})

	result, err := newSystem(t, root+"/...").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Packages)
	assert.Equal(t, 2, result.Records())
}

func TestRun_TypesFlag(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go": "package models\n\ntype User struct{ ID int64 }\n\ntype Post struct{ Title string }\n",
	})

	result, err := newSystem(t, dir, func(o *BuildOptions) { o.Types = []string{"Post"} }).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, []string{"Post"}, result.Files[0].Records)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"user.go": userSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSystem(t, dir).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingDir(t *testing.T) {
	_, err := newSystem(t, filepath.Join(t.TempDir(), "missing")).Run(context.Background())
	assert.Error(t, err)
}
