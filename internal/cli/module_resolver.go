package cli

import (
	"path/filepath"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/utils"
)

// DefaultGoVersion is written to the generated go.mod when the project's
// go.mod cannot be read
const DefaultGoVersion = "1.22"

// ModuleResolver derives the naming and module path of the generated package
type ModuleResolver struct{}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{}
}

// ProjectModule is the resolved identity of a run's output
type ProjectModule struct {
	Project   models.Project
	GoVersion string
	Module    *utils.GoModule // nil when the declaration is outside any module
}

// Resolve names the generated package after projectName and finds its
// import path. An explicit module wins; otherwise the output directory's
// path inside the project's module is used.
func (r *ModuleResolver) Resolve(projectName, declPath, outputDir, customModule string) (*ProjectModule, error) {
	project := models.Project{
		Name:        projectName,
		PackageName: utils.PackageName(projectName),
		TypeName:    utils.TypeName(projectName),
	}

	gm, err := utils.LoadGoModule(filepath.Dir(declPath))
	if err != nil {
		gm = nil
	}

	switch {
	case customModule != "":
		project.ModulePath = customModule
	case gm != nil:
		importPath, err := gm.ImportPathFor(outputDir)
		if err != nil {
			return nil, errors.ConfigurationError(gm.Path, err.Error()).
				WithSuggestion("Set module in " + ConfigFile + " or pass --module")
		}
		project.ModulePath = importPath
	default:
		project.ModulePath = project.PackageName
	}

	goVersion := gm.GoVersion()
	if goVersion == "" {
		goVersion = DefaultGoVersion
	}
	return &ProjectModule{Project: project, GoVersion: goVersion, Module: gm}, nil
}

// DefaultSearchRoots are searched for type declarations, in order
func DefaultSearchRoots(declPath string, gm *utils.GoModule) []string {
	declDir := filepath.Dir(declPath)
	roots := []string{
		declDir,
		filepath.Join(declDir, "types"),
		filepath.Join(declDir, "interfaces"),
		filepath.Join(declDir, "models"),
	}
	if gm != nil && gm.Dir != declDir {
		roots = append(roots, gm.Dir)
	}
	return roots
}
