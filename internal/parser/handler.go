package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/toyz/apigen/internal/models"
)

// HandlerSignature describes the payload types of a handler function
type HandlerSignature struct {
	Function   string
	InputType  string // bare type name, empty when the handler takes no payload
	OutputType string // bare type name, empty when the handler returns only error

	// Declarations found in the handler file itself
	Input  *models.TypeDeclaration
	Output *models.TypeDeclaration
}

// AnalyzeHandler finds function in the handler source at path. Parameters of
// type context.Context are skipped and a trailing error result is ignored.
func AnalyzeHandler(path, function string) (*HandlerSignature, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read handler %s: %w", path, err)
	}
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse handler %s: %w", path, err)
	}
	specs := typeSpecs(file)
	addPackageSpecs(specs, path)
	return analyzeHandler(file, specs, path, function)
}

// AnalyzeHandlerSource is AnalyzeHandler over source text. Only the given
// file is consulted for payload declarations.
func AnalyzeHandlerSource(filename, src, function string) (*HandlerSignature, error) {
	file, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse handler %s: %w", filename, err)
	}
	return analyzeHandler(file, typeSpecs(file), filename, function)
}

func analyzeHandler(file *ast.File, specs map[string]*ast.TypeSpec, filename, function string) (*HandlerSignature, error) {

	var fn *ast.FuncDecl
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == function {
			fn = fd
			break
		}
	}
	if fn == nil {
		return nil, fmt.Errorf("function %s not found in %s", function, filename)
	}

	sig := &HandlerSignature{Function: function}
	if fn.Type.Params != nil {
		for _, param := range fn.Type.Params.List {
			if typeString(param.Type) == "context.Context" {
				continue
			}
			sig.InputType = normalizeTypeName(typeString(param.Type))
			break
		}
	}
	if fn.Type.Results != nil {
		for _, result := range fn.Type.Results.List {
			if typeString(result.Type) == "error" {
				continue
			}
			sig.OutputType = normalizeTypeName(typeString(result.Type))
			break
		}
	}

	if _, ok := specs[sig.InputType]; ok {
		sig.Input, _ = declarationFromSpecs(specs, filename, sig.InputType)
	}
	if _, ok := specs[sig.OutputType]; ok {
		sig.Output, _ = declarationFromSpecs(specs, filename, sig.OutputType)
	}
	return sig, nil
}
