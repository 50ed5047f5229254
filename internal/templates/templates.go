package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// Header opens every generated Go source file
const Header = "// Code generated by apigen. DO NOT EDIT.\n// This file was automatically generated and should not be modified manually.\n"

// FileData is embedded by every Go source template's data
type FileData struct {
	Header      string
	PackageName string
	Imports     string
}

// NewFileData fills in the standard header
func NewFileData(packageName string, imports *ImportManager) FileData {
	return FileData{Header: Header, PackageName: packageName, Imports: imports.GenerateImports()}
}

// PathParamData is one {name} segment of an endpoint path
type PathParamData struct {
	Field string // Go field on the Params struct
	Key   string // name inside the braces
}

// MethodData describes one generated client method
type MethodData struct {
	Name         string
	Endpoint     string
	HTTPMethod   string
	Path         string
	ParamsType   string
	PathParams   []PathParamData
	PayloadField string // Body, Query or empty
	PayloadType  string
	ResultType   string // as returned by the method
	OutType      string // decoded into
	Pointer      bool   // ResultType is *OutType
}

// ClientData feeds the client template
type ClientData struct {
	FileData
	Project    string
	ClientType string
	Methods    []MethodData
}

// AliasData re-exports a type from the interfaces package
type AliasData struct {
	Name   string
	Target string
}

// IndexData feeds the index template
type IndexData struct {
	FileData
	InterfaceName string
	ClientType    string
	Aliases       []AliasData
	Methods       []MethodData
}

// MockMethodData is a client method as read back from the client source
type MockMethodData struct {
	Name       string
	ParamsType string
	ResultType string
}

// MockData feeds the mock template
type MockData struct {
	FileData
	MockType      string
	InterfaceName string
	Methods       []MockMethodData
}

// FieldData is one expected property of a handler payload
type FieldData struct {
	Name string
	Kind string
}

// ContractData feeds the contract test template
type ContractData struct {
	FileData
	Name        string
	Endpoint    string
	Entry       string
	Function    string
	ParamsType  string
	ResultType  string
	Surface     string // expression whose method is checked
	CheckInput  bool
	Input       []FieldData
	CheckOutput bool
	OutputType  string
	Output      []FieldData
}

// ReadmeEndpoint is one row of the README endpoint table
type ReadmeEndpoint struct {
	Method  string
	Path    string
	Name    string
	Backend string
}

// ReadmeData feeds the README template
type ReadmeData struct {
	Project    string
	ModulePath string
	ClientType string
	MockType   string
	Mocks      bool
	Templates  bool
	Tests      bool
	Endpoints  []ReadmeEndpoint
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
