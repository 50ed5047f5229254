package vtl

import (
	"fmt"
	"strings"

	"github.com/toyz/apigen/internal/models"
)

// cursorClause reads the pagination cursor from the query string on GET and
// from the request body otherwise
const cursorClause = `#if($context.httpMethod == "GET")
#set($cursor = $input.params('cursor'))
#else
#set($cursor = $input.path('$.cursor'))
#end
`

const exclusiveStartKey = `#if("$!cursor" != "")
  ,"ExclusiveStartKey": $util.base64Decode($util.urlDecode($cursor))
#end
`

// GetItemRequest renders the single-line GetItem request body
func GetItemRequest(store *models.StoreBacked) string {
	var b strings.Builder
	b.WriteString(`{"TableName":` + quote(store.TableName) + `,"Key":{"pk":{"S":` + quote(store.PartitionKey) + `}`)
	if store.SortKey != "" {
		b.WriteString(`,"sk":{"S":` + quote(store.SortKey) + `}`)
	}
	b.WriteString(`}}`)
	return b.String()
}

// limitClause sets $limit from the limit query parameter with a default, or
// to a fixed value when the endpoint declares one
func limitClause(store *models.StoreBacked) string {
	if store.Limit > 0 {
		return fmt.Sprintf("#set($limit = %d)\n", store.Limit)
	}
	return fmt.Sprintf("#set($limit = $input.params('limit'))\n#if(\"$!limit\" == \"\")\n#set($limit = %d)\n#end\n", store.EffectiveDefaultLimit())
}

// QueryRequest renders the Query request body with pagination support
func QueryRequest(store *models.StoreBacked) (string, error) {
	var b strings.Builder
	b.WriteString(limitClause(store))
	b.WriteString(cursorClause)
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"TableName\": %s,\n", quote(store.TableName))
	if store.IndexName != "" {
		fmt.Fprintf(&b, "  \"IndexName\": %s,\n", quote(store.IndexName))
	}
	fmt.Fprintf(&b, "  \"KeyConditionExpression\": %s,\n", quote(store.KeyConditionExpression))
	if len(store.ExpressionAttributeNames) > 0 {
		fmt.Fprintf(&b, "  \"ExpressionAttributeNames\": %s,\n", namesJSON(store.ExpressionAttributeNames))
	}
	if len(store.ExpressionAttributeValues) > 0 {
		values, err := valuesJSON(store.ExpressionAttributeValues)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  \"ExpressionAttributeValues\": %s,\n", values)
	}
	if store.FilterExpression != "" {
		fmt.Fprintf(&b, "  \"FilterExpression\": %s,\n", quote(store.FilterExpression))
	}
	b.WriteString("  \"Limit\": $limit\n")
	b.WriteString(exclusiveStartKey)
	b.WriteString("}")
	return b.String(), nil
}
