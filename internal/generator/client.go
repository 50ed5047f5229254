package generator

import (
	"fmt"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/resolver"
	"github.com/toyz/apigen/internal/templates"
	"github.com/toyz/apigen/internal/utils"
	"github.com/toyz/apigen/pkg/apiclient"
)

// ClientGenerator renders apiClient.go and index.go
type ClientGenerator struct {
	registry *templates.TemplateRegistry
	types    TypeLookup
}

// NewClientGenerator creates a client generator. Endpoint types missing from
// types are given untyped signatures.
func NewClientGenerator(types TypeLookup) *ClientGenerator {
	return &ClientGenerator{
		registry: templates.DefaultTemplateRegistry,
		types:    types,
	}
}

// Generate renders the client source
func (g *ClientGenerator) Generate(set *models.EndpointSet, project models.Project) (*models.GeneratedArtifact, error) {
	methods, err := g.Methods(set)
	if err != nil {
		return nil, err
	}

	imports := templates.NewImportManager()
	imports.AddImport("context")
	imports.AddImport(apiclientImport)
	g.addTypeImports(imports, project, methods, true)

	data := templates.ClientData{
		FileData:   templates.NewFileData(project.PackageName, imports),
		Project:    project.Name,
		ClientType: project.ClientTypeName(),
		Methods:    methods,
	}
	content, err := render(g.registry, templates.ClientTemplate, ClientFile, data)
	if err != nil {
		return nil, errors.WrapGenerateError("client", project.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactClientSource, Path: ClientFile, Content: content}, nil
}

// GenerateIndex renders index.go: payload type aliases, the API interface and
// the client's assertion against it
func (g *ClientGenerator) GenerateIndex(set *models.EndpointSet, project models.Project) (*models.GeneratedArtifact, error) {
	methods, err := g.Methods(set)
	if err != nil {
		return nil, err
	}

	reserved := map[string]bool{
		project.ClientTypeName():          true,
		project.InterfaceName():           true,
		project.MockTypeName():            true,
		"New" + project.ClientTypeName(): true,
		"New" + project.MockTypeName():   true,
	}
	for _, m := range methods {
		reserved[m.ParamsType] = true
	}

	var aliases []templates.AliasData
	for _, name := range set.TypeNames() {
		if !resolved(g.types, name) || reserved[name] {
			continue
		}
		aliases = append(aliases, templates.AliasData{Name: name, Target: resolver.InterfacesPackage + "." + name})
	}

	imports := templates.NewImportManager()
	imports.AddImport("context")
	g.addTypeImports(imports, project, methods, false)
	if len(aliases) > 0 {
		imports.AddImport(interfacesImport(project))
	}

	data := templates.IndexData{
		FileData:      templates.NewFileData(project.PackageName, imports),
		InterfaceName: project.InterfaceName(),
		ClientType:    project.ClientTypeName(),
		Aliases:       aliases,
		Methods:       methods,
	}
	content, err := render(g.registry, templates.IndexTemplate, IndexFile, data)
	if err != nil {
		return nil, errors.WrapGenerateError("index", project.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactIndex, Path: IndexFile, Content: content}, nil
}

// Methods describes one client method per endpoint in declaration order
func (g *ClientGenerator) Methods(set *models.EndpointSet) ([]templates.MethodData, error) {
	seen := make(map[string]string)
	methods := make([]templates.MethodData, 0, set.Len())

	for _, record := range set.All() {
		name := MethodName(record.Name)
		if other, dup := seen[name]; dup {
			return nil, errors.WrapGenerateError("client", record.Name,
				fmt.Errorf("method %s is also generated for endpoint %q", name, other))
		}
		seen[name] = record.Name

		method := templates.MethodData{
			Name:       name,
			Endpoint:   record.Name,
			HTTPMethod: string(record.Method),
			Path:       record.Path,
			ParamsType: name + "Params",
			PathParams: pathParams(record.Path),
		}

		if record.HasInput() {
			method.PayloadField = "Body"
			if record.Method == models.MethodGet {
				method.PayloadField = "Query"
			}
			method.PayloadType = "any"
			if resolved(g.types, record.InputType) {
				method.PayloadType = resolver.InterfacesPackage + "." + record.InputType
			}
		}

		method.OutType, method.ResultType = rawMessage, rawMessage
		if resolved(g.types, record.OutputType) {
			method.OutType = resolver.InterfacesPackage + "." + record.OutputType
			method.ResultType = "*" + method.OutType
			method.Pointer = true
		}

		methods = append(methods, method)
	}
	return methods, nil
}

// addTypeImports adds encoding/json and the interfaces package when the
// method signatures need them. Payload types only appear in the client file.
func (g *ClientGenerator) addTypeImports(imports *templates.ImportManager, project models.Project, methods []templates.MethodData, payloads bool) {
	for _, m := range methods {
		if m.ResultType == rawMessage {
			imports.AddImport("encoding/json")
		}
		if m.Pointer || (payloads && m.PayloadType != "" && m.PayloadType != "any") {
			imports.AddImport(interfacesImport(project))
		}
	}
}

// pathParams maps each distinct {name} segment onto a Params field
func pathParams(template string) []templates.PathParamData {
	var params []templates.PathParamData
	seen := make(map[string]bool)
	for _, key := range apiclient.PathParams(template) {
		if seen[key] {
			continue
		}
		seen[key] = true

		field := utils.TypeName(key)
		if field == "Body" || field == "Query" {
			field += "Param"
		}
		params = append(params, templates.PathParamData{Field: field, Key: key})
	}
	return params
}
