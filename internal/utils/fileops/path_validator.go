package fileops

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PathValidator provides centralized path validation and cleaning functionality
type PathValidator struct{}

// NewPathValidator creates a new PathValidator instance
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// ValidateRelative checks that an artifact path is relative, slash
// separated and stays inside the output directory
func (pv *PathValidator) ValidateRelative(artifactPath string) (string, error) {
	if artifactPath == "" {
		return "", fmt.Errorf("artifact path cannot be empty")
	}
	if strings.Contains(artifactPath, "\\") || path.IsAbs(artifactPath) || filepath.IsAbs(artifactPath) {
		return "", fmt.Errorf("artifact path must be relative and slash separated: %s", artifactPath)
	}

	cleanPath := path.Clean(artifactPath)
	if cleanPath == "." || cleanPath == ".." || strings.HasPrefix(cleanPath, "../") {
		return "", fmt.Errorf("path traversal not allowed in artifact path: %s", artifactPath)
	}
	return cleanPath, nil
}

// ValidateOutputDir refuses output directories that would wipe something
// other than generated output
func (pv *PathValidator) ValidateOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("output directory cannot be empty")
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", dir, err)
	}
	if filepath.Dir(absPath) == absPath {
		return "", fmt.Errorf("refusing to use filesystem root as output directory")
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == absPath {
		return "", fmt.Errorf("refusing to use the home directory as output directory")
	}
	return absPath, nil
}

// Overlap returns the first protected path that dir equals or contains.
// Relative paths are resolved against the working directory.
func (pv *PathValidator) Overlap(dir string, protected ...string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for _, p := range protected {
		if p == "" {
			continue
		}
		absPath, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absDir, absPath)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return p, true
		}
	}
	return "", false
}
