package generator

import (
	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/resolver"
	"github.com/toyz/apigen/internal/templates"
	"github.com/toyz/apigen/internal/utils"
)

// RuntimeModule is the module generated clients import at run time
const RuntimeModule = "github.com/toyz/apigen"

// Module versions written into generated manifests
const (
	DefaultRuntimeVersion = "v0.1.0"
	CmpModule             = "github.com/google/go-cmp"
	CmpVersion            = "v0.6.0"
)

// ManifestOptions controls the generated go.mod
type ManifestOptions struct {
	GoVersion      string
	RuntimeVersion string // DefaultRuntimeVersion when empty
	ContractTests  bool   // requires go-cmp
}

// Manifest renders the go.mod of the output module
func Manifest(project models.Project, opts ManifestOptions) (*models.GeneratedArtifact, error) {
	runtime := opts.RuntimeVersion
	if runtime == "" {
		runtime = DefaultRuntimeVersion
	}
	requires := []utils.Requirement{{Path: RuntimeModule, Version: runtime}}
	if opts.ContractTests {
		requires = append(requires, utils.Requirement{Path: CmpModule, Version: CmpVersion})
	}

	content, err := utils.BuildGoMod(project.ModulePath, opts.GoVersion, requires)
	if err != nil {
		return nil, errors.WrapGenerateError("manifest", project.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactManifest, Path: ManifestFile, Content: string(content)}, nil
}

// ReadmeOptions lists the phases that contributed to the output
type ReadmeOptions struct {
	Mocks     bool
	Templates bool
	Tests     bool
}

// Readme renders the README of the output module
func Readme(set *models.EndpointSet, project models.Project, opts ReadmeOptions) (*models.GeneratedArtifact, error) {
	data := templates.ReadmeData{
		Project:    project.Name,
		ModulePath: project.ModulePath,
		ClientType: project.ClientTypeName(),
		MockType:   project.MockTypeName(),
		Mocks:      opts.Mocks,
		Templates:  opts.Templates,
		Tests:      opts.Tests,
	}
	for _, record := range set.All() {
		backend := "compute"
		if store, ok := record.Store(); ok {
			backend = "DynamoDB " + string(store.Action)
		} else if compute, ok := record.Compute(); ok && compute.QueueBacked {
			backend = "queue"
		}
		data.Endpoints = append(data.Endpoints, templates.ReadmeEndpoint{
			Method:  string(record.Method),
			Path:    record.Path,
			Name:    MethodName(record.Name),
			Backend: backend,
		})
	}

	content, err := templates.DefaultTemplateRegistry.Execute(templates.ReadmeTemplate, data)
	if err != nil {
		return nil, errors.WrapGenerateError("README", project.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactReadme, Path: ReadmeFile, Content: content}, nil
}

// IgnoreFile renders the ignore file keeping type resolution out of the output
func IgnoreFile() (*models.GeneratedArtifact, error) {
	content, err := templates.DefaultTemplateRegistry.Execute(templates.IgnoreTemplate, nil)
	if err != nil {
		return nil, errors.WrapTemplateError(templates.IgnoreTemplate, "execute", err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactIgnore, Path: resolver.IgnoreFile, Content: content}, nil
}
