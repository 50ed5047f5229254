package parser

import (
	"go/ast"
	"strings"
)

// noneType marks an absent input or output type argument
const noneType = "None"

// typeString renders a type expression the way it appears in source
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.ParenExpr:
		return typeString(t.X)
	case *ast.ArrayType:
		if t.Len != nil {
			return "[" + typeString(t.Len) + "]" + typeString(t.Elt)
		}
		return "[]" + typeString(t.Elt)
	case *ast.BasicLit:
		return t.Value
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	case *ast.IndexExpr:
		return typeString(t.X) + "[" + typeString(t.Index) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, index := range t.Indices {
			args[i] = typeString(index)
		}
		return typeString(t.X) + "[" + strings.Join(args, ", ") + "]"
	case *ast.FuncType:
		return "func(...)"
	case *ast.ChanType:
		return "chan " + typeString(t.Value)
	default:
		return "unknown"
	}
}

// normalizeTypeName reduces a type argument to the bare name the resolver
// searches for. None becomes the empty string.
func normalizeTypeName(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "*")
	if i := strings.LastIndex(text, "."); i >= 0 && !strings.ContainsAny(text, "[]") {
		text = text[i+1:]
	}
	if text == noneType || text == "" {
		return ""
	}
	return text
}
