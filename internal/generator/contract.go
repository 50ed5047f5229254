package generator

import (
	"path/filepath"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/parser"
	"github.com/toyz/apigen/internal/templates"
)

// ContractFile is the output path of an endpoint's contract test
func ContractFile(endpoint string) string {
	return endpoint + "_contract_test.go"
}

// ContractGenerator renders one contract test per compute-backed endpoint
type ContractGenerator struct {
	registry *templates.TemplateRegistry
	client   *ClientGenerator
	analyze  HandlerAnalyzer
	decls    map[string]*models.TypeDeclaration
	declDir  string
	mocks    bool
}

// NewContractGenerator creates a contract test generator. Handler entries
// are resolved against declDir; decls supplies payload declarations that
// live outside the handler file.
func NewContractGenerator(declDir string, types TypeLookup, decls map[string]*models.TypeDeclaration) *ContractGenerator {
	return &ContractGenerator{
		registry: templates.DefaultTemplateRegistry,
		client:   NewClientGenerator(types),
		analyze:  parser.AnalyzeHandler,
		decls:    decls,
		declDir:  declDir,
		mocks:    true,
	}
}

// WithMocks selects whether the tests check the mock or the client surface
func (g *ContractGenerator) WithMocks(enabled bool) *ContractGenerator {
	g.mocks = enabled
	return g
}

// WithAnalyzer replaces the handler analyzer
func (g *ContractGenerator) WithAnalyzer(analyze HandlerAnalyzer) *ContractGenerator {
	g.analyze = analyze
	return g
}

// Generate renders the tests. Endpoints whose handler cannot be analysed are
// returned in skipped instead of failing the run.
func (g *ContractGenerator) Generate(set *models.EndpointSet, project models.Project) (artifacts []*models.GeneratedArtifact, skipped []error, err error) {
	methods, err := g.client.Methods(set)
	if err != nil {
		return nil, nil, err
	}

	for i, record := range set.All() {
		compute, ok := record.Compute()
		if !ok {
			continue
		}

		entry := compute.EntrySourcePath
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(g.declDir, entry)
		}
		sig, analyzeErr := g.analyze(entry, compute.Function())
		if analyzeErr != nil {
			skipped = append(skipped, errors.WrapGenerateError("contract test", record.Name, analyzeErr))
			continue
		}

		artifact, renderErr := g.render(record, compute, methods[i], sig, project)
		if renderErr != nil {
			return nil, skipped, renderErr
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, skipped, nil
}

func (g *ContractGenerator) render(record *models.EndpointRecord, compute *models.ComputeBacked, method templates.MethodData, sig *parser.HandlerSignature, project models.Project) (*models.GeneratedArtifact, error) {
	data := templates.ContractData{
		Name:       method.Name,
		Endpoint:   record.Name,
		Entry:      filepath.ToSlash(compute.EntrySourcePath),
		Function:   sig.Function,
		ParamsType: method.ParamsType,
		ResultType: method.ResultType,
		Surface:    "New" + project.MockTypeName() + "()",
	}
	if !g.mocks {
		data.Surface = "(&" + project.ClientTypeName() + "{})"
	}

	// the client payload must be typed unless the handler takes nothing
	if method.PayloadType != "any" || sig.InputType == "" {
		if fields, known := g.shape(sig.InputType, sig.Input); known {
			data.CheckInput, data.Input = true, fields
		}
	}
	if method.Pointer {
		if fields, known := g.shape(sig.OutputType, sig.Output); known {
			data.CheckOutput, data.Output, data.OutputType = true, fields, method.OutType
		}
	}

	imports := templates.NewImportManager()
	imports.AddImport("context")
	imports.AddImport("testing")
	if data.CheckInput || data.CheckOutput {
		imports.AddImport("github.com/google/go-cmp/cmp")
		imports.AddImport("github.com/google/go-cmp/cmp/cmpopts")
		imports.AddImport(apiclientImport)
	}
	if method.ResultType == rawMessage {
		imports.AddImport("encoding/json")
	}
	if method.Pointer {
		imports.AddImport(interfacesImport(project))
	}
	data.FileData = templates.NewFileData(project.PackageName, imports)

	path := ContractFile(record.Name)
	content, err := render(g.registry, templates.ContractTemplate, path, data)
	if err != nil {
		return nil, errors.WrapGenerateError("contract test", record.Name, err)
	}
	return &models.GeneratedArtifact{Kind: models.ArtifactContractTest, Path: path, Content: content}, nil
}

// shape returns the expected fields of a handler payload. A handler without
// the payload expects no fields; an unknown declaration cannot be checked.
func (g *ContractGenerator) shape(typeName string, decl *models.TypeDeclaration) ([]templates.FieldData, bool) {
	if typeName == "" {
		return nil, true
	}
	if decl == nil {
		decl = g.decls[typeName]
	}
	if decl == nil {
		return nil, false
	}
	fields := make([]templates.FieldData, 0, len(decl.Properties))
	for _, p := range decl.Properties {
		fields = append(fields, templates.FieldData{Name: p.Name, Kind: string(p.Kind)})
	}
	return fields, true
}
