// Package fileops manages the output directory of a generation run.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/toyz/apigen/internal/models"
)

// OutputTree writes the artifacts of one run. Every path is written at most
// once per run; only Amend may change a file afterwards.
type OutputTree struct {
	root          string
	pathValidator *PathValidator
	errorWrapper  *ErrorWrapper
	written       map[string]int
}

// NewOutputTree creates an output tree rooted at dir
func NewOutputTree(dir string) (*OutputTree, error) {
	pathValidator := NewPathValidator()
	root, err := pathValidator.ValidateOutputDir(dir)
	if err != nil {
		return nil, NewErrorWrapper().WrapPathError(dir, err)
	}
	return &OutputTree{
		root:          root,
		pathValidator: pathValidator,
		errorWrapper:  NewErrorWrapper(),
		written:       make(map[string]int),
	}, nil
}

// Root returns the absolute output directory
func (o *OutputTree) Root() string {
	return o.root
}

// Clear removes everything under the output directory and recreates it
func (o *OutputTree) Clear() error {
	if err := os.RemoveAll(o.root); err != nil {
		return o.errorWrapper.WrapDirectoryCleanError(o.root, err)
	}
	if err := os.MkdirAll(o.root, 0755); err != nil {
		return o.errorWrapper.WrapDirectoryCreateError(o.root, err)
	}
	o.written = make(map[string]int)
	return nil
}

// Write stores an artifact. Writing the same path twice in a run fails.
func (o *OutputTree) Write(artifact *models.GeneratedArtifact) error {
	rel, err := o.pathValidator.ValidateRelative(artifact.Path)
	if err != nil {
		return o.errorWrapper.WrapPathError(artifact.Path, err)
	}
	if _, done := o.written[rel]; done {
		return o.errorWrapper.WrapFileWriteError(rel, fmt.Errorf("%s artifact already written in this run", artifact.Kind))
	}
	return o.write(rel, artifact.Content)
}

// Amend rewrites an already written file through fn
func (o *OutputTree) Amend(artifactPath string, fn func(content string) (string, error)) error {
	rel, err := o.pathValidator.ValidateRelative(artifactPath)
	if err != nil {
		return o.errorWrapper.WrapPathError(artifactPath, err)
	}
	if _, done := o.written[rel]; !done {
		return o.errorWrapper.WrapFileWriteError(rel, fmt.Errorf("cannot amend a file that was not written in this run"))
	}

	full := filepath.Join(o.root, filepath.FromSlash(rel))
	current, err := os.ReadFile(full)
	if err != nil {
		return o.errorWrapper.WrapFileReadError(full, err)
	}
	updated, err := fn(string(current))
	if err != nil {
		return err
	}
	if updated == string(current) {
		return nil
	}
	return o.write(rel, updated)
}

// Read returns the content of a file written in this run
func (o *OutputTree) Read(artifactPath string) (string, error) {
	rel, err := o.pathValidator.ValidateRelative(artifactPath)
	if err != nil {
		return "", o.errorWrapper.WrapPathError(artifactPath, err)
	}
	full := filepath.Join(o.root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		return "", o.errorWrapper.WrapFileReadError(full, err)
	}
	return string(content), nil
}

// Written lists the paths written in this run, sorted
func (o *OutputTree) Written() []string {
	paths := make([]string, 0, len(o.written))
	for p := range o.written {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Bytes is the total size of the files currently written
func (o *OutputTree) Bytes() uint64 {
	var total uint64
	for _, size := range o.written {
		total += uint64(size)
	}
	return total
}

func (o *OutputTree) write(rel, content string) error {
	full := filepath.Join(o.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return o.errorWrapper.WrapDirectoryCreateError(filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return o.errorWrapper.WrapFileWriteError(full, err)
	}
	o.written[rel] = len(content)
	return nil
}
