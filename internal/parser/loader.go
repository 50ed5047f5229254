package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
)

// EndpointsVar is the package-level variable a declaration module must define
const EndpointsVar = "Endpoints"

// EndpointLoader reads endpoint declarations from a Go source file. The file
// is never compiled: a structural pass walks the syntax tree and a textual
// pass recovers what the tree cannot provide.
type EndpointLoader struct {
	fileSet *token.FileSet
}

// NewEndpointLoader creates a new endpoint loader
func NewEndpointLoader() *EndpointLoader {
	return &EndpointLoader{fileSet: token.NewFileSet()}
}

// Load reads the declaration module at path
func (l *EndpointLoader) Load(path string) (*models.EndpointSet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapLoadFailure(path, err).
			WithSuggestion("Check that the declaration path points to a readable .go file")
	}
	return l.LoadSource(path, string(src))
}

// LoadSource reads endpoint declarations from source text. filename is only
// used for positions and messages.
func (l *EndpointLoader) LoadSource(filename, src string) (*models.EndpointSet, error) {
	set := models.NewEndpointSet()

	file, parseErr := parser.ParseFile(l.fileSet, filename, src, parser.SkipObjectResolution)
	if parseErr == nil {
		records, err := l.structural(file, filename, src)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if err := set.Add(record); err != nil {
				return nil, errors.LoadFailure(filename, err.Error())
			}
		}
	}

	if set.Len() == 0 {
		records, err := textual(filename, src)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if err := set.Add(record); err != nil {
				return nil, errors.LoadFailure(filename, err.Error())
			}
		}
	}

	if set.Len() == 0 {
		reason := fmt.Sprintf("no endpoints declared in a package-level %s variable", EndpointsVar)
		loadErr := errors.LoadFailure(filename, reason).
			WithSuggestion(fmt.Sprintf("Declare var %s = apidecl.Endpoints{...} in the module", EndpointsVar))
		if parseErr != nil {
			loadErr.WithCause(parseErr)
		}
		return nil, loadErr
	}
	return set, nil
}

// structural walks the composite literal bound to the Endpoints variable
func (l *EndpointLoader) structural(file *ast.File, filename, src string) ([]*models.EndpointRecord, error) {
	scope := newFileScope(file)
	value := scope.vars[EndpointsVar]
	lit, ok := unwrapLiteral(value)
	if !ok {
		return nil, nil
	}

	elemArgs := mapElementArgs(lit.Type)

	var records []*models.EndpointRecord
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		name, ok := scope.stringValue(kv.Key)
		if !ok {
			continue
		}

		pos := l.fileSet.Position(kv.Pos())
		loc := errors.SourceLocation{File: filename, Line: pos.Line, Column: pos.Column}

		endpoint, args := scope.endpointLiteral(kv.Value)
		if endpoint != nil && endpoint.Type == nil {
			args = elemArgs
		}
		if args == nil {
			args = typeArgsFromText(src, name)
		}
		if endpoint == nil {
			// the value could not be followed to a literal, so only the
			// textual pass can describe it
			recovered, err := textualEndpoint(filename, src, name)
			if err != nil {
				return nil, err
			}
			if recovered != nil {
				recovered.Line = pos.Line
				records = append(records, recovered)
			}
			continue
		}

		record, err := scope.buildRecord(name, endpoint, args)
		if err != nil {
			return nil, errors.LoadFailure(filename, err.Error()).WithLocation(loc)
		}
		record.Line = pos.Line
		records = append(records, record)
	}
	return records, nil
}

// mapElementArgs returns the type arguments of a map[string]Endpoint[...] type
func mapElementArgs(expr ast.Expr) *typeArgs {
	if m, ok := expr.(*ast.MapType); ok {
		return endpointTypeArgs(m.Value)
	}
	return nil
}

// typeArgs are the three type arguments of an Endpoint instantiation
type typeArgs struct {
	Method string
	Input  string
	Output string
}
