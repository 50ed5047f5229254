package templates

import (
	"strconv"
	"text/template"
)

var funcMap = template.FuncMap{
	"quote":     strconv.Quote,
	"kindConst": KindConst,
}

// KindConst maps a property kind onto the apiclient constant naming it
func KindConst(kind string) string {
	switch kind {
	case "string":
		return "apiclient.KindString"
	case "number":
		return "apiclient.KindNumber"
	case "boolean":
		return "apiclient.KindBoolean"
	case "array":
		return "apiclient.KindArray"
	case "object":
		return "apiclient.KindObject"
	default:
		return "apiclient.KindUnresolved"
	}
}
