package templates

import "fmt"

// Template names
const (
	ClientTemplate   = "client"
	IndexTemplate    = "index"
	MockTemplate     = "mock"
	ContractTemplate = "contract-test"
	ReadmeTemplate   = "readme"
	IgnoreTemplate   = "ignore"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerClientTemplates()
	registry.registerMockTemplates()
	registry.registerProjectTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// Execute renders the named template
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	text, exists := tr.Get(name)
	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return executeTemplate(name, text, data)
}

func (tr *TemplateRegistry) registerClientTemplates() {
	tr.templates[ClientTemplate] = `{{.Header}}
package {{.PackageName}}

{{.Imports}}
{{- range .Methods}}
// {{.ParamsType}} are the call parameters of {{.Name}}
type {{.ParamsType}} struct {
{{- range .PathParams}}
	{{.Field}} apiclient.PathValue
{{- end}}
{{- if .PayloadField}}
	{{.PayloadField}} {{.PayloadType}}
{{- end}}
}
{{end}}
// {{.ClientType}} calls the {{.Project}} API
type {{.ClientType}} struct {
	client *apiclient.Client
}

// New{{.ClientType}} creates a client for the API served at cfg.Domain
func New{{.ClientType}}(ctx context.Context, cfg apiclient.Config) (*{{.ClientType}}, error) {
	client, err := apiclient.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &{{.ClientType}}{client: client}, nil
}
{{range .Methods}}
// {{.Name}} calls {{.HTTPMethod}} {{.Path}}
func (c *{{$.ClientType}}) {{.Name}}(ctx context.Context, params {{.ParamsType}}) ({{.ResultType}}, error) {
{{- if .PathParams}}
	path, err := apiclient.FinalizePath({{quote .Path}}, map[string]apiclient.PathValue{
{{- range .PathParams}}
		{{quote .Key}}: params.{{.Field}},
{{- end}}
	})
	if err != nil {
		return nil, err
	}
{{- else}}
	path := {{quote .Path}}
{{- end}}

	var out {{.OutType}}
	req := apiclient.Request{Method: {{quote .HTTPMethod}}, Path: path{{if .PayloadField}}, {{.PayloadField}}: params.{{.PayloadField}}{{end}}}
	if err := c.client.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return {{if .Pointer}}&out{{else}}out{{end}}, nil
}
{{end}}`

	tr.templates[IndexTemplate] = `{{.Header}}
package {{.PackageName}}

{{.Imports}}
{{- if .Aliases}}
// Payload types declared in the interfaces package
type (
{{- range .Aliases}}
	{{.Name}} = {{.Target}}
{{- end}}
)
{{end}}
// {{.InterfaceName}} is the call surface of {{.ClientType}}
type {{.InterfaceName}} interface {
{{- range .Methods}}
	{{.Name}}(ctx context.Context, params {{.ParamsType}}) ({{.ResultType}}, error)
{{- end}}
}

var _ {{.InterfaceName}} = (*{{.ClientType}})(nil)
`
}

func (tr *TemplateRegistry) registerMockTemplates() {
	tr.templates[MockTemplate] = `{{.Header}}
package {{.PackageName}}

{{.Imports}}
// {{.MockType}} is an in-memory {{.InterfaceName}}. Every method is driven
// by the MockCall field named after it with a Call suffix.
type {{.MockType}} struct {
{{- range .Methods}}
	{{.Name}}Call apiclient.MockCall[{{.ParamsType}}, {{.ResultType}}]
{{- end}}
}

// New{{.MockType}} returns a mock whose methods return zero values until configured
func New{{.MockType}}() *{{.MockType}} {
	return &{{.MockType}}{}
}
{{range .Methods}}
func (m *{{$.MockType}}) {{.Name}}(ctx context.Context, params {{.ParamsType}}) ({{.ResultType}}, error) {
	return m.{{.Name}}Call.Invoke(ctx, params)
}
{{end}}`

	tr.templates[ContractTemplate] = `{{.Header}}
package {{.PackageName}}

{{.Imports}}
// {{.Endpoint}} is served by {{.Function}} in {{.Entry}}
func Test{{.Name}}Contract(t *testing.T) {
	var _ func(context.Context, {{.ParamsType}}) ({{.ResultType}}, error) = {{.Surface}}.{{.Name}}
{{- if .CheckInput}}

	handlerInput := []apiclient.Field{
{{- range .Input}}
		{Name: {{quote .Name}}, Kind: {{kindConst .Kind}}},
{{- end}}
{{- if .Input}}
	{{end}}}
	if diff := cmp.Diff(handlerInput, apiclient.Align(handlerInput, apiclient.PayloadShape[{{.ParamsType}}]()), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("{{.Name}} input differs from the handler (-handler +client):\n%s", diff)
	}
{{- end}}
{{- if .CheckOutput}}

	handlerOutput := []apiclient.Field{
{{- range .Output}}
		{Name: {{quote .Name}}, Kind: {{kindConst .Kind}}},
{{- end}}
{{- if .Output}}
	{{end}}}
	if diff := cmp.Diff(handlerOutput, apiclient.Align(handlerOutput, apiclient.Shape[{{.OutputType}}]()), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("{{.Name}} output differs from the handler (-handler +client):\n%s", diff)
	}
{{- end}}
}
`
}

func (tr *TemplateRegistry) registerProjectTemplates() {
	tr.templates[ReadmeTemplate] = `# {{.Project}} API client

Generated by apigen. Regenerate instead of editing these files.

    import client "{{.ModulePath}}"

    api, err := client.New{{.ClientType}}(ctx, apiclient.Config{Domain: "https://api.example.com"})
{{- if .Mocks}}

Tests can use ` + "`" + `New{{.MockType}}()` + "`" + `, which implements the same interface.
{{- end}}

## Endpoints

| Method | Path | Call | Backend |
| --- | --- | --- | --- |
{{- range .Endpoints}}
| {{.Method}} | ` + "`" + `{{.Path}}` + "`" + ` | {{.Name}} | {{.Backend}} |
{{- end}}

## Layout

- ` + "`" + `apiClient.go` + "`" + `, ` + "`" + `index.go` + "`" + `: client, parameter types and the shared interface
- ` + "`" + `interfaces/` + "`" + `: payload type declarations copied from the project
{{- if .Mocks}}
- ` + "`" + `mockApiClient.go` + "`" + `: configurable mock
{{- end}}
{{- if .Templates}}
- ` + "`" + `vtl/` + "`" + `: API Gateway mapping templates for store-backed endpoints
{{- end}}
{{- if .Tests}}
- ` + "`" + `*_contract_test.go` + "`" + `: checks that handlers and client agree on payload shapes
{{- end}}
`

	tr.templates[IgnoreTemplate] = `# Generated by apigen. Type resolution never searches these paths.
*.go
interfaces/**
vtl/**
go.mod
README.md
`
}

// DefaultTemplateRegistry is the registry used by the generators
var DefaultTemplateRegistry = NewTemplateRegistry()
