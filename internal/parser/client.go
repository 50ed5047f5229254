package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// MethodSignature is a method read back from generated client source
type MethodSignature struct {
	Name       string
	ParamsType string // the parameter following context.Context
	ResultType string // the result preceding error
}

// ClientMethods lists the exported methods declared on *receiver in src, in
// source order
func ClientMethods(filename, src, receiver string) ([]MethodSignature, error) {
	file, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	var methods []MethodSignature
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 || !fn.Name.IsExported() {
			continue
		}
		if typeString(fn.Recv.List[0].Type) != "*"+receiver {
			continue
		}
		methods = append(methods, MethodSignature{
			Name:       fn.Name.Name,
			ParamsType: paramsType(fn.Type.Params),
			ResultType: resultType(fn.Type.Results),
		})
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("no methods of %s found in %s", receiver, filename)
	}
	return methods, nil
}

func paramsType(params *ast.FieldList) string {
	if params == nil {
		return ""
	}
	for _, field := range params.List {
		text := typeString(field.Type)
		if text == "context.Context" {
			continue
		}
		return text
	}
	return ""
}

func resultType(results *ast.FieldList) string {
	if results == nil {
		return ""
	}
	for _, field := range results.List {
		if text := typeString(field.Type); text != "error" {
			return text
		}
	}
	return ""
}
