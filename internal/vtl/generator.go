// Package vtl renders API Gateway mapping templates for store-backed
// endpoints.
package vtl

import (
	"fmt"
	"path"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
)

// Dir is the output subdirectory holding the templates
const Dir = "vtl"

// RequestPath returns the output path of an endpoint's request template
func RequestPath(endpoint string) string {
	return path.Join(Dir, endpoint+"-request.vtl")
}

// ResponsePath returns the output path of an endpoint's response template
func ResponsePath(endpoint string) string {
	return path.Join(Dir, endpoint+"-response.vtl")
}

// Generator produces the request and response templates
type Generator struct{}

// NewGenerator creates a template generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders two templates per store-backed endpoint. decls holds the
// resolved output types by name; an endpoint whose output type is missing
// from it gets Fallback for every template it does not override.
func (g *Generator) Generate(set *models.EndpointSet, decls map[string]*models.TypeDeclaration) ([]*models.GeneratedArtifact, error) {
	var artifacts []*models.GeneratedArtifact
	for _, record := range set.All() {
		store, ok := record.Store()
		if !ok {
			continue
		}
		request, response, err := g.render(record, store, decls[record.OutputType])
		if err != nil {
			return nil, errors.WrapGenerateError("mapping templates", record.Name, err)
		}
		artifacts = append(artifacts,
			&models.GeneratedArtifact{Kind: models.ArtifactRequestTemplate, Path: RequestPath(record.Name), Content: request},
			&models.GeneratedArtifact{Kind: models.ArtifactResponseTemplate, Path: ResponsePath(record.Name), Content: response},
		)
	}
	return artifacts, nil
}

func (g *Generator) render(record *models.EndpointRecord, store *models.StoreBacked, decl *models.TypeDeclaration) (string, string, error) {
	request, response := store.RequestTemplate, store.ResponseTemplate

	if decl == nil || !record.HasOutput() {
		if request == "" {
			request = Fallback
		}
		if response == "" {
			response = Fallback
		}
		return request, response, nil
	}

	switch store.Action {
	case models.ActionGetItem:
		if request == "" {
			request = GetItemRequest(store)
		}
		if response == "" {
			response = GetItemResponse(decl)
		}
	case models.ActionQuery:
		if request == "" {
			var err error
			if request, err = QueryRequest(store); err != nil {
				return "", "", err
			}
		}
		if response == "" {
			response = QueryResponse(decl)
		}
	default:
		return "", "", fmt.Errorf("unsupported action %q", store.Action)
	}
	return request, response, nil
}
