package templates

import (
	"fmt"
	"sort"
	"strings"
)

// ImportManager collects the imports of one generated file
type ImportManager struct {
	standardImports map[string]bool
	packageImports  map[string]bool
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		standardImports: make(map[string]bool),
		packageImports:  make(map[string]bool),
	}
}

// AddImport adds an import. Paths whose first element has no dot are
// standard library.
func (im *ImportManager) AddImport(importPath string) {
	if importPath == "" {
		return
	}
	if isStandardLibrary(importPath) {
		im.standardImports[importPath] = true
		return
	}
	im.packageImports[importPath] = true
}

// Has reports whether importPath was added
func (im *ImportManager) Has(importPath string) bool {
	return im.standardImports[importPath] || im.packageImports[importPath]
}

// GenerateImports renders the import block, standard library first
func (im *ImportManager) GenerateImports() string {
	if im.isEmpty() {
		return ""
	}

	var std []string
	for imp := range im.standardImports {
		std = append(std, fmt.Sprintf("%q", imp))
	}
	sort.Strings(std)

	var pkgs []string
	for imp := range im.packageImports {
		pkgs = append(pkgs, fmt.Sprintf("%q", imp))
	}
	sort.Strings(pkgs)

	if len(std)+len(pkgs) == 1 {
		return fmt.Sprintf("import %s\n", append(std, pkgs...)[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, imp := range std {
		result.WriteString("\t" + imp + "\n")
	}
	if len(std) > 0 && len(pkgs) > 0 {
		result.WriteString("\n")
	}
	for _, imp := range pkgs {
		result.WriteString("\t" + imp + "\n")
	}
	result.WriteString(")\n")

	return result.String()
}

func (im *ImportManager) isEmpty() bool {
	return len(im.standardImports) == 0 && len(im.packageImports) == 0
}

func isStandardLibrary(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
