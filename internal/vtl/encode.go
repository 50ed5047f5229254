package vtl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var jsonEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// quote renders s as a JSON string literal. Mapping template expressions
// inside s are left untouched.
func quote(s string) string {
	return `"` + jsonEscaper.Replace(s) + `"`
}

// attributeValueJSON renders v in DynamoDB JSON
func attributeValueJSON(v types.AttributeValue) (string, error) {
	switch av := v.(type) {
	case *types.AttributeValueMemberS:
		return `{"S":` + quote(av.Value) + `}`, nil
	case *types.AttributeValueMemberN:
		return `{"N":` + quote(av.Value) + `}`, nil
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf(`{"BOOL":%t}`, av.Value), nil
	case *types.AttributeValueMemberNULL:
		return `{"NULL":true}`, nil
	default:
		return "", fmt.Errorf("unsupported attribute value %T", v)
	}
}

func namesJSON(names map[string]string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(k) + ":" + quote(names[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func valuesJSON(values map[string]types.AttributeValue) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		v, err := attributeValueJSON(values[k])
		if err != nil {
			return "", fmt.Errorf("%s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(k) + ":" + v)
	}
	b.WriteByte('}')
	return b.String(), nil
}
