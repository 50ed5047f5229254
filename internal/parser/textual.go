package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"regexp"
	"strconv"
	"strings"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
)

const (
	wrapperPattern  = `(?:[\w.]+\(\s*)*&?`
	typeArgPattern  = `(?:\w+\.)?Endpoint\[\s*(?:\w+\.)?(\w+)\s*,\s*([\w.*\[\]]+)\s*,\s*([\w.*\[\]]+)\s*\]`
	endpointPattern = `"(\w+)"\s*:\s*` + wrapperPattern + typeArgPattern + `\s*\{`
)

var (
	endpointExpr = regexp.MustCompile(endpointPattern)

	computeExpr  = regexp.MustCompile(`\bCompute\s*:\s*&?(?:\w+\.)?ComputeBacked\s*\{`)
	storeExpr    = regexp.MustCompile(`\bStore\s*:\s*&?(?:\w+\.)?StoreBacked\s*\{`)
	actionExpr   = regexp.MustCompile(`\bAction\s*:\s*(?:(?:\w+\.)?(GetItem|Query)\b|"(GetItem|Query)")`)
	queueExpr    = regexp.MustCompile(`\bQueue\s*:\s*true\b`)
	fieldExprs   = map[string]*regexp.Regexp{}
	limitExprs   = map[string]*regexp.Regexp{}
	mapExprs     = map[string]*regexp.Regexp{}
	stringFields = []string{
		"Path", "Method", "Entry", "Function", "TableName", "PartitionKey", "SortKey",
		"IndexName", "KeyConditionExpression", "FilterExpression", "RequestTemplate", "ResponseTemplate",
	}
)

func init() {
	for _, field := range stringFields {
		fieldExprs[field] = regexp.MustCompile(`\b` + field + `\s*:\s*("(?:\\.|[^"\\])*"|` + "`[^`]*`" + `)`)
	}
	for _, field := range []string{"DefaultLimit", "Limit"} {
		limitExprs[field] = regexp.MustCompile(`\b` + field + `\s*:\s*(\d+)`)
	}
	for _, field := range []string{"ExpressionAttributeNames", "ExpressionAttributeValues"} {
		mapExprs[field] = regexp.MustCompile(`\b` + field + `\s*:\s*`)
	}
}

// typeArgsFromText recovers the type arguments of one endpoint by position
func typeArgsFromText(src, name string) *typeArgs {
	src = stripComments(src)
	expr := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*` + wrapperPattern + typeArgPattern)
	m := expr.FindStringSubmatch(src)
	if m == nil {
		return nil
	}
	return &typeArgs{Method: m[1], Input: m[2], Output: m[3]}
}

// textual extracts every endpoint from raw source. It is used when the
// module does not parse or declares no Endpoints variable.
func textual(filename, src string) ([]*models.EndpointRecord, error) {
	src = stripComments(src)
	var records []*models.EndpointRecord
	for _, m := range endpointExpr.FindAllStringSubmatchIndex(src, -1) {
		record, err := textualMatch(filename, src, m)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// textualEndpoint recovers a single named endpoint
func textualEndpoint(filename, src, name string) (*models.EndpointRecord, error) {
	src = stripComments(src)
	expr := regexp.MustCompile(`"(` + regexp.QuoteMeta(name) + `)"\s*:\s*` + wrapperPattern + typeArgPattern + `\s*\{`)
	m := expr.FindStringSubmatchIndex(src)
	if m == nil {
		return nil, errors.LoadFailure(filename, fmt.Sprintf("endpoint %q could not be read", name)).
			WithSuggestion("Write the endpoint as an apidecl.Endpoint[...]{...} literal")
	}
	return textualMatch(filename, src, m)
}

func textualMatch(filename, src string, m []int) (*models.EndpointRecord, error) {
	name := src[m[2]:m[3]]
	args := &typeArgs{Method: src[m[4]:m[5]], Input: src[m[6]:m[7]], Output: src[m[8]:m[9]]}
	line := strings.Count(src[:m[0]], "\n") + 1
	loc := errors.SourceLocation{File: filename, Line: line}

	open := m[1] - 1
	end := matchBrace(src, open)
	if end < 0 {
		return nil, errors.LoadFailure(filename, fmt.Sprintf("endpoint %q: unterminated literal", name)).WithLocation(loc)
	}
	body := src[open+1 : end]

	var (
		record *models.EndpointRecord
		err    error
	)
	if lit, parseErr := parseLiteralBody(body); parseErr == nil {
		scope := &fileScope{vars: map[string]ast.Expr{}, consts: map[string]ast.Expr{}}
		record, err = scope.buildRecord(name, lit, args)
	} else {
		record, err = recordFromText(name, body, args)
	}
	if err != nil {
		return nil, errors.LoadFailure(filename, err.Error()).WithLocation(loc)
	}
	return record, nil
}

func parseLiteralBody(body string) (*ast.CompositeLit, error) {
	expr, err := parser.ParseExpr("endpoint{" + body + "}")
	if err != nil {
		return nil, err
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("not a composite literal")
	}
	return lit, nil
}

// recordFromText reads an endpoint body field by field with patterns
func recordFromText(name, body string, args *typeArgs) (*models.EndpointRecord, error) {
	record := &models.EndpointRecord{
		Name:       name,
		Path:       textField(body, "Path"),
		InputType:  normalizeTypeName(args.Input),
		OutputType: normalizeTypeName(args.Output),
	}
	method := textField(body, "Method")
	if method == "" {
		method = args.Method
	}

	var compute *models.ComputeBacked
	var store *models.StoreBacked

	if computeExpr.MatchString(body) {
		compute = &models.ComputeBacked{
			EntrySourcePath: textField(body, "Entry"),
			EntryFunction:   textField(body, "Function"),
			QueueBacked:     queueExpr.MatchString(body),
		}
		if compute.EntrySourcePath == "" {
			return nil, fmt.Errorf("endpoint %q: Compute.Entry is required", name)
		}
	}
	if storeExpr.MatchString(body) {
		am := actionExpr.FindStringSubmatch(body)
		if am == nil {
			return nil, fmt.Errorf("endpoint %q: Store.Action is required", name)
		}
		action, err := parseAction(am[1] + am[2])
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", name, err)
		}
		store = &models.StoreBacked{
			Action:                 action,
			TableName:              textField(body, "TableName"),
			PartitionKey:           textField(body, "PartitionKey"),
			SortKey:                textField(body, "SortKey"),
			IndexName:              textField(body, "IndexName"),
			KeyConditionExpression: textField(body, "KeyConditionExpression"),
			FilterExpression:       textField(body, "FilterExpression"),
			RequestTemplate:        textField(body, "RequestTemplate"),
			ResponseTemplate:       textField(body, "ResponseTemplate"),
			DefaultLimit:           textInt(body, "DefaultLimit"),
			Limit:                  textInt(body, "Limit"),
		}

		scope := &fileScope{vars: map[string]ast.Expr{}, consts: map[string]ast.Expr{}}
		if lit, err := textMap(body, "ExpressionAttributeNames"); err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", name, err)
		} else if lit != nil {
			names, err := scope.stringMap(lit)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: ExpressionAttributeNames %w", name, err)
			}
			store.ExpressionAttributeNames = names
		}
		if lit, err := textMap(body, "ExpressionAttributeValues"); err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", name, err)
		} else if lit != nil {
			values, err := scope.attributeValues(lit)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: ExpressionAttributeValues %w", name, err)
			}
			store.ExpressionAttributeValues = values
		}
	}

	return finishRecord(record, method, compute, store)
}

func textField(body, field string) string {
	m := fieldExprs[field].FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	value, err := strconv.Unquote(m[1])
	if err != nil {
		return ""
	}
	return value
}

// textMap returns the map literal assigned to field, or nil when the field
// is absent. Anything other than an inline literal is an error since no
// declarations are available to resolve it.
func textMap(body, field string) (ast.Expr, error) {
	loc := mapExprs[field].FindStringIndex(body)
	if loc == nil {
		return nil, nil
	}
	rest := body[loc[1]:]
	if strings.HasPrefix(rest, "nil") {
		return nil, nil
	}
	open := strings.IndexByte(rest, '{')
	if open < 0 || strings.ContainsAny(rest[:open], ",\n") {
		return nil, fmt.Errorf("%s must be an inline map literal", field)
	}
	end := matchBrace(rest, open)
	if end < 0 {
		return nil, fmt.Errorf("%s: unterminated map literal", field)
	}
	expr, err := parser.ParseExpr(rest[:end+1])
	if err != nil {
		return nil, fmt.Errorf("%s could not be read: %w", field, err)
	}
	return expr, nil
}

func textInt(body, field string) int {
	m := limitExprs[field].FindStringSubmatch(body)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// stripComments blanks out line and block comments. Newlines and offsets
// are kept so positions still refer to the original source. An unterminated
// block comment runs to the end of src.
func stripComments(src string) string {
	out := []byte(src)
	blank := func(from, to int) {
		for j := from; j < to; j++ {
			if out[j] != '\n' {
				out[j] = ' '
			}
		}
	}
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '"', '\'':
			for i++; i < len(src) && src[i] != c && src[i] != '\n'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '`':
			for i++; i < len(src) && src[i] != '`'; i++ {
			}
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				end := strings.IndexByte(src[i:], '\n')
				if end < 0 {
					end = len(src) - i
				}
				blank(i, i+end)
				i += end
			case '*':
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					blank(i, len(src))
					return string(out)
				}
				blank(i, i+end+4)
				i += end + 3
			}
		}
	}
	return string(out)
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// String, rune and comment contents are skipped.
func matchBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'':
			for i++; i < len(src) && src[i] != c; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '`':
			for i++; i < len(src) && src[i] != '`'; i++ {
			}
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				if end := strings.Index(src[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					return -1
				}
			}
		}
	}
	return -1
}
