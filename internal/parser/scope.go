package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/toyz/apigen/internal/models"
)

const maxIdentHops = 8

// fileScope indexes the package-level values of one declaration module so
// identifiers in endpoint literals can be followed to their definitions
type fileScope struct {
	vars   map[string]ast.Expr
	consts map[string]ast.Expr
}

func newFileScope(file *ast.File) *fileScope {
	scope := &fileScope{
		vars:   make(map[string]ast.Expr),
		consts: make(map[string]ast.Expr),
	}
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || (gen.Tok != token.VAR && gen.Tok != token.CONST) {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					break
				}
				if gen.Tok == token.VAR {
					scope.vars[name.Name] = vs.Values[i]
				} else {
					scope.consts[name.Name] = vs.Values[i]
				}
			}
		}
	}
	return scope
}

// resolve follows identifiers to the value they are bound to
func (s *fileScope) resolve(expr ast.Expr) ast.Expr {
	for hops := 0; hops < maxIdentHops; hops++ {
		switch e := expr.(type) {
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			if value, ok := s.consts[e.Name]; ok {
				expr = value
			} else if value, ok := s.vars[e.Name]; ok {
				expr = value
			} else {
				return expr
			}
		default:
			return expr
		}
	}
	return expr
}

func (s *fileScope) stringValue(expr ast.Expr) (string, bool) {
	lit, ok := s.resolve(expr).(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *fileScope) intValue(expr ast.Expr) (int, bool) {
	lit, ok := s.resolve(expr).(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}
	value, err := strconv.ParseInt(lit.Value, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

func (s *fileScope) boolValue(expr ast.Expr) (bool, bool) {
	ident, ok := s.resolve(expr).(*ast.Ident)
	if !ok {
		return false, false
	}
	switch ident.Name {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// unwrapLiteral strips & and parentheses from a composite literal
func unwrapLiteral(expr ast.Expr) (*ast.CompositeLit, bool) {
	for {
		switch e := expr.(type) {
		case *ast.CompositeLit:
			return e, true
		case *ast.UnaryExpr:
			if e.Op != token.AND {
				return nil, false
			}
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		default:
			return nil, false
		}
	}
}

// endpointLiteral finds the Endpoint literal behind a map value. Type
// arguments are nil when the literal's type is elided or not an Endpoint
// instantiation.
func (s *fileScope) endpointLiteral(expr ast.Expr) (*ast.CompositeLit, *typeArgs) {
	expr = s.resolve(expr)
	if call, ok := expr.(*ast.CallExpr); ok {
		for _, arg := range call.Args {
			if lit, args := s.endpointLiteral(arg); lit != nil {
				return lit, args
			}
		}
		return nil, nil
	}

	lit, ok := unwrapLiteral(expr)
	if !ok {
		return nil, nil
	}
	return lit, endpointTypeArgs(lit.Type)
}

func endpointTypeArgs(expr ast.Expr) *typeArgs {
	index, ok := expr.(*ast.IndexListExpr)
	if !ok || len(index.Indices) != 3 || baseName(index.X) != "Endpoint" {
		return nil
	}
	return &typeArgs{
		Method: baseName(index.Indices[0]),
		Input:  typeString(index.Indices[1]),
		Output: typeString(index.Indices[2]),
	}
}

// baseName returns the unqualified name of an identifier or selector
func baseName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.StarExpr:
		return baseName(e.X)
	}
	return ""
}

func (s *fileScope) buildRecord(name string, lit *ast.CompositeLit, args *typeArgs) (*models.EndpointRecord, error) {
	record := &models.EndpointRecord{Name: name}
	var method string
	var compute *models.ComputeBacked
	var store *models.StoreBacked

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("endpoint %q: fields must be keyed", name)
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		switch key.Name {
		case "Path":
			record.Path, _ = s.stringValue(kv.Value)
		case "Method":
			method, _ = s.stringValue(kv.Value)
		case "Compute":
			if isNil(kv.Value) {
				continue
			}
			c, err := s.readCompute(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: %w", name, err)
			}
			compute = c
		case "Store":
			if isNil(kv.Value) {
				continue
			}
			st, err := s.readStore(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: %w", name, err)
			}
			store = st
		}
	}

	if args != nil {
		if method == "" {
			method = args.Method
		} else if args.Method != "" && !strings.EqualFold(method, args.Method) {
			return nil, fmt.Errorf("endpoint %q: Method %q does not match type argument %s", name, method, args.Method)
		}
		record.InputType = normalizeTypeName(args.Input)
		record.OutputType = normalizeTypeName(args.Output)
	}

	return finishRecord(record, method, compute, store)
}

func finishRecord(record *models.EndpointRecord, method string, compute *models.ComputeBacked, store *models.StoreBacked) (*models.EndpointRecord, error) {
	m, err := models.ParseHTTPMethod(strings.ToUpper(method))
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", record.Name, err)
	}
	record.Method = m

	if record.Path == "" {
		return nil, fmt.Errorf("endpoint %q: Path is required", record.Name)
	}

	switch {
	case compute != nil && store != nil:
		return nil, fmt.Errorf("endpoint %q: declares both Compute and Store", record.Name)
	case compute != nil:
		record.Implementation = compute
	case store != nil:
		record.Implementation = store
	default:
		return nil, fmt.Errorf("endpoint %q: declares neither Compute nor Store", record.Name)
	}
	return record, nil
}

func isNil(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == "nil"
}

func (s *fileScope) readCompute(expr ast.Expr) (*models.ComputeBacked, error) {
	lit, ok := unwrapLiteral(s.resolve(expr))
	if !ok {
		return nil, fmt.Errorf("Compute must be a ComputeBacked literal")
	}
	compute := &models.ComputeBacked{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch baseName(kv.Key) {
		case "Entry":
			compute.EntrySourcePath, _ = s.stringValue(kv.Value)
		case "Function":
			compute.EntryFunction, _ = s.stringValue(kv.Value)
		case "Queue":
			compute.QueueBacked, _ = s.boolValue(kv.Value)
		}
	}
	if compute.EntrySourcePath == "" {
		return nil, fmt.Errorf("Compute.Entry is required")
	}
	return compute, nil
}

func (s *fileScope) readStore(expr ast.Expr) (*models.StoreBacked, error) {
	lit, ok := unwrapLiteral(s.resolve(expr))
	if !ok {
		return nil, fmt.Errorf("Store must be a StoreBacked literal")
	}
	store := &models.StoreBacked{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch field := baseName(kv.Key); field {
		case "Action":
			action, err := s.actionValue(kv.Value)
			if err != nil {
				return nil, err
			}
			store.Action = action
		case "TableName":
			store.TableName, _ = s.stringValue(kv.Value)
		case "PartitionKey":
			store.PartitionKey, _ = s.stringValue(kv.Value)
		case "SortKey":
			store.SortKey, _ = s.stringValue(kv.Value)
		case "IndexName":
			store.IndexName, _ = s.stringValue(kv.Value)
		case "KeyConditionExpression":
			store.KeyConditionExpression, _ = s.stringValue(kv.Value)
		case "FilterExpression":
			store.FilterExpression, _ = s.stringValue(kv.Value)
		case "RequestTemplate":
			store.RequestTemplate, _ = s.stringValue(kv.Value)
		case "ResponseTemplate":
			store.ResponseTemplate, _ = s.stringValue(kv.Value)
		case "DefaultLimit":
			store.DefaultLimit, _ = s.intValue(kv.Value)
		case "Limit":
			store.Limit, _ = s.intValue(kv.Value)
		case "ExpressionAttributeNames":
			names, err := s.stringMap(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			store.ExpressionAttributeNames = names
		case "ExpressionAttributeValues":
			values, err := s.attributeValues(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			store.ExpressionAttributeValues = values
		}
	}
	if store.Action == "" {
		return nil, fmt.Errorf("Store.Action is required")
	}
	return store, nil
}

func (s *fileScope) actionValue(expr ast.Expr) (models.StoreAction, error) {
	name, ok := s.stringValue(expr)
	if !ok {
		name = baseName(s.resolve(expr))
	}
	return parseAction(name)
}

func parseAction(name string) (models.StoreAction, error) {
	switch action := models.StoreAction(name); action {
	case models.ActionGetItem, models.ActionQuery:
		return action, nil
	default:
		return "", fmt.Errorf("unsupported store action %q", name)
	}
}

func (s *fileScope) stringMap(expr ast.Expr) (map[string]string, error) {
	lit, ok := unwrapLiteral(s.resolve(expr))
	if !ok {
		return nil, fmt.Errorf("must be a map literal")
	}
	out := make(map[string]string, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, keyOK := s.stringValue(kv.Key)
		value, valueOK := s.stringValue(kv.Value)
		if !keyOK || !valueOK {
			return nil, fmt.Errorf("entries must be string literals")
		}
		out[key] = value
	}
	return out, nil
}

func (s *fileScope) attributeValues(expr ast.Expr) (map[string]types.AttributeValue, error) {
	lit, ok := unwrapLiteral(s.resolve(expr))
	if !ok {
		return nil, fmt.Errorf("must be a map literal")
	}
	out := make(map[string]types.AttributeValue, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := s.stringValue(kv.Key)
		if !ok {
			return nil, fmt.Errorf("keys must be string literals")
		}
		value, err := s.attributeValue(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

// attributeValue reads the scalar AttributeValue members
func (s *fileScope) attributeValue(expr ast.Expr) (types.AttributeValue, error) {
	lit, ok := unwrapLiteral(s.resolve(expr))
	if !ok {
		return nil, fmt.Errorf("must be an AttributeValue literal")
	}

	var value ast.Expr
	for _, elt := range lit.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if baseName(kv.Key) == "Value" {
				value = kv.Value
			}
			continue
		}
		value = elt
	}
	if value == nil {
		return nil, fmt.Errorf("%s has no Value", baseName(lit.Type))
	}

	switch member := baseName(lit.Type); member {
	case "AttributeValueMemberS":
		if v, ok := s.stringValue(value); ok {
			return &types.AttributeValueMemberS{Value: v}, nil
		}
	case "AttributeValueMemberN":
		if v, ok := s.stringValue(value); ok {
			return &types.AttributeValueMemberN{Value: v}, nil
		}
	case "AttributeValueMemberBOOL":
		if v, ok := s.boolValue(value); ok {
			return &types.AttributeValueMemberBOOL{Value: v}, nil
		}
	case "AttributeValueMemberNULL":
		if v, ok := s.boolValue(value); ok {
			return &types.AttributeValueMemberNULL{Value: v}, nil
		}
	default:
		return nil, fmt.Errorf("unsupported attribute value %s", member)
	}
	return nil, fmt.Errorf("%s needs a literal Value", baseName(lit.Type))
}
