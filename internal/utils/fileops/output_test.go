package fileops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
)

func TestOutputTreeLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stale"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale", "old.go"), []byte("package old"), 0644))

	tree, err := NewOutputTree(dir)
	require.NoError(t, err)
	require.NoError(t, tree.Clear())
	assert.NoDirExists(t, filepath.Join(dir, "stale"))

	require.NoError(t, tree.Write(&models.GeneratedArtifact{Kind: models.ArtifactIndex, Path: "index.go", Content: "package shop\n"}))
	require.NoError(t, tree.Write(&models.GeneratedArtifact{Kind: models.ArtifactRequestTemplate, Path: "vtl/get-request.vtl", Content: "{}"}))

	err = tree.Write(&models.GeneratedArtifact{Kind: models.ArtifactIndex, Path: "index.go", Content: "again"})
	require.Error(t, err)
	assert.Equal(t, errors.FileSystemErrorCode, errors.CodeOf(err))

	require.NoError(t, tree.Amend("index.go", func(content string) (string, error) {
		return content + "\nvar _ = 1\n", nil
	}))
	content, err := tree.Read("index.go")
	require.NoError(t, err)
	assert.Equal(t, "package shop\n\nvar _ = 1\n", content)

	assert.Error(t, tree.Amend("missing.go", func(s string) (string, error) { return s, nil }))

	assert.Equal(t, []string{"index.go", "vtl/get-request.vtl"}, tree.Written())
	assert.Equal(t, uint64(len("package shop\n\nvar _ = 1\n")+2), tree.Bytes())
	assert.FileExists(t, filepath.Join(dir, "vtl", "get-request.vtl"))
}

func TestOutputTreeRejectsEscapingPaths(t *testing.T) {
	tree, err := NewOutputTree(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, tree.Clear())

	for _, p := range []string{"", "../evil.go", "/abs.go", "a/../../b.go", `win\path.go`} {
		err := tree.Write(&models.GeneratedArtifact{Path: p, Content: "x"})
		assert.Error(t, err, p)
	}
}

func TestValidateOutputDir(t *testing.T) {
	pv := NewPathValidator()

	_, err := pv.ValidateOutputDir("")
	assert.Error(t, err)
	_, err = pv.ValidateOutputDir(string(filepath.Separator))
	assert.Error(t, err)

	abs, err := pv.ValidateOutputDir("generated")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.True(t, strings.HasSuffix(abs, "generated"))
}

func TestOverlap(t *testing.T) {
	root := t.TempDir()
	api := filepath.Join(root, "api")
	pv := NewPathValidator()

	tests := []struct {
		name      string
		dir       string
		protected []string
		want      string
		overlaps  bool
	}{
		{name: "equal", dir: api, protected: []string{api}, want: api, overlaps: true},
		{name: "ancestor", dir: root, protected: []string{api}, want: api, overlaps: true},
		{name: "nested output", dir: filepath.Join(api, "generated"), protected: []string{api}},
		{name: "sibling with shared prefix", dir: filepath.Join(root, "ap"), protected: []string{api}},
		{name: "parent name prefix", dir: filepath.Join(root, "..x"), protected: []string{filepath.Join(root, "..x", "y")}, want: filepath.Join(root, "..x", "y"), overlaps: true},
		{name: "empty protected entries", dir: api, protected: []string{"", filepath.Join(root, "other")}},
		{name: "first match wins", dir: root, protected: []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, want: filepath.Join(root, "a"), overlaps: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pv.Overlap(tt.dir, tt.protected...)
			assert.Equal(t, tt.overlaps, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
