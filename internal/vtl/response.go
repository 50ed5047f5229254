package vtl

import (
	"fmt"
	"strings"

	"github.com/toyz/apigen/internal/models"
)

// Fallback replaces both templates when the output type is unresolved. The
// store result passes through unchanged.
const Fallback = "## Output type could not be resolved; supply a type declaration and regenerate.\n$input.json('$')"

// NotFound is the fixed payload returned when GetItem finds no item
const NotFound = `{"message":"Item not found"}`

// EmptyCollection is the envelope returned when Query matches nothing
const EmptyCollection = `{"items":[]}`

// rawPath locates the current item in the raw store result for fields that
// are passed through as JSON
type rawPath string

const (
	getItemPath rawPath = `'$.Item.%s'`
	queryPath   rawPath = `"$.Items[$foreach.index].%s"`
)

// fieldClause emits one property of $item. $comma carries the separator so
// the object never ends with one.
func fieldClause(p models.Property, raw rawPath) string {
	name := p.Name
	switch p.Kind {
	case models.KindString:
		return fmt.Sprintf(`#if($item.%[1]s.S)$comma"%[1]s":"$util.escapeJavaScript($item.%[1]s.S)"#set($comma = ",")#end`, name)
	case models.KindNumber:
		return fmt.Sprintf(`#if($item.%[1]s.N)$comma"%[1]s":$item.%[1]s.N#set($comma = ",")#end`, name)
	case models.KindBoolean:
		return fmt.Sprintf(`#if("$!item.%[1]s.BOOL" != "")$comma"%[1]s":$item.%[1]s.BOOL#set($comma = ",")#end`, name)
	default:
		path := fmt.Sprintf(string(raw), name)
		return fmt.Sprintf(`#if("$!item.%[1]s" != "")$comma"%[1]s":$input.json(%[2]s)#set($comma = ",")#end`, name, path)
	}
}

// keyClause emits a key attribute. Keys are always present on a stored item.
func keyClause(p models.Property) string {
	switch p.Kind {
	case models.KindNumber:
		return fmt.Sprintf(`$comma"%[1]s":$item.%[1]s.N#set($comma = ",")`, p.Name)
	case models.KindBoolean:
		return fmt.Sprintf(`$comma"%[1]s":$item.%[1]s.BOOL#set($comma = ",")`, p.Name)
	default:
		return fmt.Sprintf(`$comma"%[1]s":"$util.escapeJavaScript($item.%[1]s.S)"#set($comma = ",")`, p.Name)
	}
}

func writeFields(b *strings.Builder, decl *models.TypeDeclaration, raw rawPath) {
	for _, p := range decl.ValueProperties() {
		b.WriteString(fieldClause(p, raw))
		b.WriteByte('\n')
	}
	for _, p := range decl.KeyProperties() {
		b.WriteString(keyClause(p))
		b.WriteByte('\n')
	}
}

// GetItemResponse maps a single item onto decl, answering 404 when the item
// does not exist
func GetItemResponse(decl *models.TypeDeclaration) string {
	var b strings.Builder
	b.WriteString("#set($item = $input.path('$.Item'))\n")
	b.WriteString("#if(\"$!item\" == \"\")\n")
	b.WriteString("#set($context.responseOverride.status = 404)\n")
	b.WriteString(NotFound + "\n")
	b.WriteString("#else\n")
	b.WriteString("#set($comma = \"\")\n")
	b.WriteString("{\n")
	writeFields(&b, decl, getItemPath)
	b.WriteString("}\n")
	b.WriteString("#end")
	return b.String()
}

// QueryResponse maps every returned item onto decl and adds a nextToken when
// the store reports more results
func QueryResponse(decl *models.TypeDeclaration) string {
	var b strings.Builder
	b.WriteString("#set($items = $input.path('$.Items'))\n")
	b.WriteString("#define($itemFields)\n")
	b.WriteString("#set($comma = \"\")\n")
	writeFields(&b, decl, queryPath)
	b.WriteString("#end\n")
	b.WriteString("#if(\"$!items\" == \"\" || $items.size() == 0)\n")
	b.WriteString(EmptyCollection + "\n")
	b.WriteString("#else\n")
	b.WriteString("{\n")
	b.WriteString("\"items\": [\n")
	b.WriteString("#foreach($item in $items)\n")
	b.WriteString("{$itemFields}#if($foreach.hasNext),#end\n")
	b.WriteString("#end\n")
	b.WriteString("]")
	b.WriteString("#if(\"$!input.path('$.LastEvaluatedKey')\" != \"\"),\n")
	b.WriteString("\"nextToken\": \"$util.urlEncode($util.base64Encode($input.json('$.LastEvaluatedKey')))\"#end\n")
	b.WriteString("}\n")
	b.WriteString("#end")
	return b.String()
}
