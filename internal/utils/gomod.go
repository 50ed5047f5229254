package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// GoModule is the parsed go.mod of the project being generated for
type GoModule struct {
	Path string // location of go.mod
	Dir  string // module root directory
	File *modfile.File
}

// ModulePath returns the declared module path
func (m *GoModule) ModulePath() string {
	if m == nil || m.File == nil || m.File.Module == nil {
		return ""
	}
	return m.File.Module.Mod.Path
}

// GoVersion returns the go directive, empty when absent
func (m *GoModule) GoVersion() string {
	if m == nil || m.File == nil || m.File.Go == nil {
		return ""
	}
	return m.File.Go.Version
}

// RequiredVersion returns the version the project requires of modulePath
func (m *GoModule) RequiredVersion(modulePath string) (string, bool) {
	if m == nil || m.File == nil {
		return "", false
	}
	for _, req := range m.File.Require {
		if req.Mod.Path == modulePath {
			return req.Mod.Version, true
		}
	}
	return "", false
}

// ImportPathFor returns the import path of dir inside the module
func (m *GoModule) ImportPathFor(dir string) (string, error) {
	rel, err := filepath.Rel(m.Dir, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside module %s", dir, m.ModulePath())
	}
	if rel == "." {
		return m.ModulePath(), nil
	}
	return m.ModulePath() + "/" + rel, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// LoadGoModule finds and parses the go.mod governing startDir
func LoadGoModule(startDir string) (*GoModule, error) {
	path, err := FindGoModFile(startDir)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	file, err := modfile.Parse(path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if file.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", path)
	}

	return &GoModule{Path: path, Dir: filepath.Dir(path), File: file}, nil
}

// Requirement is one require line of a generated go.mod
type Requirement struct {
	Path    string
	Version string
}

// BuildGoMod renders a go.mod file with the given module path, go version
// and requirements. Requirements are written in the order given.
func BuildGoMod(modulePath, goVersion string, requires []Requirement) ([]byte, error) {
	if err := module.CheckImportPath(modulePath); err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", modulePath, err)
	}

	file := new(modfile.File)
	if err := file.AddModuleStmt(modulePath); err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", modulePath, err)
	}
	if goVersion != "" {
		if err := file.AddGoStmt(goVersion); err != nil {
			return nil, fmt.Errorf("invalid go version %q: %w", goVersion, err)
		}
	}
	for _, req := range requires {
		if err := file.AddRequire(req.Path, req.Version); err != nil {
			return nil, fmt.Errorf("invalid requirement %s %s: %w", req.Path, req.Version, err)
		}
	}
	file.Cleanup()

	return modfile.Format(file.Syntax), nil
}
