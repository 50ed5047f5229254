// Package generator renders the Go sources and project files of a generated
// client package.
package generator

import (
	"go/token"
	"path"

	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/resolver"
	"github.com/toyz/apigen/internal/templates"
	"github.com/toyz/apigen/internal/utils"
)

// Output file names
const (
	ClientFile   = "apiClient.go"
	IndexFile    = "index.go"
	MockFile     = "mockApiClient.go"
	ManifestFile = "go.mod"
	ReadmeFile   = "README.md"
)

const (
	apiclientImport = "github.com/toyz/apigen/pkg/apiclient"
	rawMessage      = "json.RawMessage"
)

// interfacesImport is the import path of the copied type declarations
func interfacesImport(project models.Project) string {
	return path.Join(project.ModulePath, resolver.InterfacesPackage)
}

// MethodName is the client method generated for an endpoint
func MethodName(endpoint string) string {
	return utils.TypeName(endpoint)
}

// resolved reports whether name can be referenced as interfaces.<name>
func resolved(types TypeLookup, name string) bool {
	return name != "" && types != nil && token.IsExported(name) && types.Has(name)
}

// render executes a registry template and formats the result as Go source
func render(registry *templates.TemplateRegistry, name, filename string, data interface{}) (string, error) {
	source, err := registry.Execute(name, data)
	if err != nil {
		return "", err
	}
	return utils.FormatGoCodeString(filename, source)
}
