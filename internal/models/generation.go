package models

// ArtifactKind identifies a generated file
type ArtifactKind string

const (
	ArtifactClientSource     ArtifactKind = "client-source"
	ArtifactMockSource       ArtifactKind = "mock-source"
	ArtifactRequestTemplate  ArtifactKind = "request-template"
	ArtifactResponseTemplate ArtifactKind = "response-template"
	ArtifactIndex            ArtifactKind = "index"
	ArtifactManifest         ArtifactKind = "manifest"
	ArtifactReadme           ArtifactKind = "readme"
	ArtifactIgnore           ArtifactKind = "ignore"
	ArtifactInterface        ArtifactKind = "interface"
	ArtifactContractTest     ArtifactKind = "contract-test"
)

// GeneratedArtifact is one file produced by a run
type GeneratedArtifact struct {
	Kind    ArtifactKind
	Path    string // relative to the output directory
	Content string
}

// Project carries the naming derived from the project name
type Project struct {
	Name        string // as given on the command line
	PackageName string // Go package name of the output
	TypeName    string // exported prefix, e.g. Shop in ShopApiClient
	ModulePath  string // import path of the output module
}

// ClientTypeName is <TypeName>ApiClient
func (p Project) ClientTypeName() string {
	return p.TypeName + "ApiClient"
}

// MockTypeName is Mock<TypeName>ApiClient
func (p Project) MockTypeName() string {
	return "Mock" + p.TypeName + "ApiClient"
}

// InterfaceName is <TypeName>Api
func (p Project) InterfaceName() string {
	return p.TypeName + "Api"
}
