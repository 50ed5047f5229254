package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/toyz/apigen/internal/models"
)

// ReadTypeDeclaration reads the properties of typeName from a Go source file.
// Named types declared in the other files of the same directory are followed
// too.
func ReadTypeDeclaration(path, typeName string) (*models.TypeDeclaration, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	specs := typeSpecs(file)
	addPackageSpecs(specs, path)
	return declarationFromSpecs(specs, path, typeName)
}

// ReadTypeDeclarationSource is ReadTypeDeclaration over source text. Only
// the given file is consulted.
func ReadTypeDeclarationSource(filename, src, typeName string) (*models.TypeDeclaration, error) {
	file, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return declarationFromSpecs(typeSpecs(file), filename, typeName)
}

func declarationFromSpecs(specs map[string]*ast.TypeSpec, filename, typeName string) (*models.TypeDeclaration, error) {
	spec, ok := specs[typeName]
	if !ok {
		return nil, fmt.Errorf("type %s is not declared in %s", typeName, filename)
	}

	decl := &models.TypeDeclaration{Name: typeName, SourceFile: filename}
	if st, ok := spec.Type.(*ast.StructType); ok {
		decl.Properties = structProperties(st, specs, map[string]bool{typeName: true})
	}
	return decl, nil
}

func typeSpecs(file *ast.File) map[string]*ast.TypeSpec {
	specs := make(map[string]*ast.TypeSpec)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				specs[ts.Name.Name] = ts
			}
		}
	}
	return specs
}

// addPackageSpecs adds the types declared by the other non-test files of
// path's directory. Declarations already in specs win. Files that do not
// parse are skipped.
func addPackageSpecs(specs map[string]*ast.TypeSpec, path string) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	self := filepath.Base(path)
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == self || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			continue
		}
		for typeName, spec := range typeSpecs(file) {
			if _, exists := specs[typeName]; !exists {
				specs[typeName] = spec
			}
		}
	}
}

func structProperties(st *ast.StructType, specs map[string]*ast.TypeSpec, visiting map[string]bool) []models.Property {
	var props []models.Property
	for _, field := range st.Fields.List {
		name, tagged, skip := fieldJSONName(field)
		if skip {
			continue
		}

		if len(field.Names) == 0 {
			embedded := baseName(field.Type)
			if spec, ok := specs[embedded]; ok && !tagged && !visiting[embedded] {
				if inner, ok := spec.Type.(*ast.StructType); ok {
					visiting[embedded] = true
					props = append(props, structProperties(inner, specs, visiting)...)
					delete(visiting, embedded)
					continue
				}
			}
			if !ast.IsExported(embedded) {
				continue
			}
			if name == "" {
				name = embedded
			}
			props = append(props, models.Property{Name: name, Kind: classify(field.Type, specs, 0), GoType: typeString(field.Type)})
			continue
		}

		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			propName := name
			if propName == "" {
				propName = ident.Name
			}
			props = append(props, models.Property{Name: propName, Kind: classify(field.Type, specs, 0), GoType: typeString(field.Type)})
		}
	}
	return props
}

// fieldJSONName returns the json tag name. Empty means the Go name is used.
func fieldJSONName(field *ast.Field) (name string, tagged bool, skip bool) {
	if field.Tag == nil {
		return "", false, false
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", false, false
	}
	tag, ok := reflect.StructTag(raw).Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", true, true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, name != "", false
}

// maxNamedDepth bounds how many named type definitions classify follows
const maxNamedDepth = 4

// selectorKinds are the library types whose JSON encoding is known
var selectorKinds = map[string]models.PropertyKind{
	"time.Time":       models.KindString,
	"time.Duration":   models.KindNumber,
	"time.Month":      models.KindNumber,
	"time.Weekday":    models.KindNumber,
	"json.Number":     models.KindNumber,
	"json.RawMessage": models.KindUnresolved,
}

// classify maps a field type to the JSON kind it encodes as. Named types
// declared in specs are followed to their underlying type. Types that cannot
// be seen from here are unresolved.
func classify(expr ast.Expr, specs map[string]*ast.TypeSpec, depth int) models.PropertyKind {
	switch t := expr.(type) {
	case *ast.ParenExpr:
		return classify(t.X, specs, depth)
	case *ast.StarExpr:
		return classify(t.X, specs, depth)
	case *ast.Ident:
		if kind, ok := builtinKind(t.Name); ok {
			return kind
		}
		spec, ok := specs[t.Name]
		if !ok || depth >= maxNamedDepth {
			return models.KindUnresolved
		}
		if spec.TypeParams != nil {
			return models.KindUnresolved
		}
		if _, isStruct := spec.Type.(*ast.StructType); isStruct {
			return models.KindObject
		}
		return classify(spec.Type, specs, depth+1)
	case *ast.SelectorExpr:
		if kind, ok := selectorKinds[typeString(t)]; ok {
			return kind
		}
		return models.KindUnresolved
	case *ast.ArrayType:
		return models.KindArray
	case *ast.MapType, *ast.StructType:
		return models.KindObject
	default:
		return models.KindUnresolved
	}
}

func builtinKind(name string) (models.PropertyKind, bool) {
	switch name {
	case "string":
		return models.KindString, true
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "byte", "rune":
		return models.KindNumber, true
	case "bool":
		return models.KindBoolean, true
	case "any", "error":
		return models.KindUnresolved, true
	}
	return "", false
}
