package resolver

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
)

// sourceFile is a parsed candidate file
type sourceFile struct {
	path  string
	src   []byte
	file  *ast.File
	types map[string]*ast.TypeSpec
}

func (r *Resolver) source(path string) (*sourceFile, error) {
	if sf, ok := r.parsed[path]; ok {
		return sf, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	sf := &sourceFile{path: path, src: src, file: file, types: make(map[string]*ast.TypeSpec)}
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				sf.types[ts.Name.Name] = ts
			}
		}
	}
	r.parsed[path] = sf
	return sf, nil
}

func (sf *sourceFile) typeNames() []string {
	names := make([]string, 0, len(sf.types))
	for name := range sf.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// references lists unqualified type names used by the file's type
// declarations that the file does not declare itself
func (sf *sourceFile) references() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, name := range sf.typeNames() {
		spec := sf.types[name]
		typeParams := make(map[string]bool)
		if spec.TypeParams != nil {
			for _, field := range spec.TypeParams.List {
				for _, n := range field.Names {
					typeParams[n.Name] = true
				}
			}
		}
		ast.Inspect(spec.Type, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.SelectorExpr:
				return false
			case *ast.Field:
				// field names are not references, only their types
				if node.Type != nil {
					ast.Inspect(node.Type, func(inner ast.Node) bool {
						return collectIdent(inner, sf, typeParams, seen, &refs)
					})
				}
				return false
			default:
				return collectIdent(n, sf, typeParams, seen, &refs)
			}
		})
	}
	return refs
}

func collectIdent(n ast.Node, sf *sourceFile, typeParams, seen map[string]bool, refs *[]string) bool {
	switch node := n.(type) {
	case *ast.SelectorExpr:
		return false
	case *ast.Ident:
		name := node.Name
		if predeclared[name] || typeParams[name] || seen[name] {
			return true
		}
		if _, ok := sf.types[name]; ok {
			return true
		}
		seen[name] = true
		*refs = append(*refs, name)
	}
	return true
}

var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true, "complex64": true, "complex128": true,
	"error": true, "float32": true, "float64": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "rune": true, "string": true, "uint": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "uintptr": true, "nil": true, "true": true,
	"false": true, "iota": true,
}
