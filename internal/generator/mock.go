package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/parser"
	"github.com/toyz/apigen/internal/resolver"
	"github.com/toyz/apigen/internal/templates"
)

// MockGenerator renders mockApiClient.go from the generated client source
type MockGenerator struct {
	registry *templates.TemplateRegistry
}

// NewMockGenerator creates a mock generator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{registry: templates.DefaultTemplateRegistry}
}

// Generate reads the methods of the project's client type back out of
// clientSource and emits a mock with the same call surface
func (g *MockGenerator) Generate(clientSource string, project models.Project) (*models.GeneratedArtifact, error) {
	signatures, err := parser.ClientMethods(ClientFile, clientSource, project.ClientTypeName())
	if err != nil {
		return nil, errors.WrapGenerateError("mock", project.Name, err)
	}

	imports := templates.NewImportManager()
	imports.AddImport("context")
	imports.AddImport(apiclientImport)

	methods := make([]templates.MockMethodData, 0, len(signatures))
	for _, sig := range signatures {
		for _, text := range []string{sig.ParamsType, sig.ResultType} {
			if strings.Contains(text, "json.") {
				imports.AddImport("encoding/json")
			}
			if strings.Contains(text, resolver.InterfacesPackage+".") {
				imports.AddImport(interfacesImport(project))
			}
		}
		methods = append(methods, templates.MockMethodData{
			Name:       sig.Name,
			ParamsType: sig.ParamsType,
			ResultType: sig.ResultType,
		})
	}

	data := templates.MockData{
		FileData:      templates.NewFileData(project.PackageName, imports),
		MockType:      project.MockTypeName(),
		InterfaceName: project.InterfaceName(),
		Methods:       methods,
	}
	content, err := render(g.registry, templates.MockTemplate, MockFile, data)
	if err != nil {
		return nil, errors.WrapGenerateError("mock", project.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactMockSource, Path: MockFile, Content: content}, nil
}

// MockAssertion is the index line tying the mock to the API interface
func MockAssertion(project models.Project) string {
	return fmt.Sprintf("var _ %s = (*%s)(nil)", project.InterfaceName(), project.MockTypeName())
}

// AmendIndex appends MockAssertion to the index source unless it is already
// there
func AmendIndex(indexSource string, project models.Project) string {
	line := MockAssertion(project)
	if strings.Contains(indexSource, line) {
		return indexSource
	}
	return strings.TrimRight(indexSource, "\n") + "\n" + line + "\n"
}
