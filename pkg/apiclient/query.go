package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
)

// EncodeQuery turns a query value into URL values. It accepts url.Values,
// map[string]string or anything that encodes to a JSON object. Arrays become
// repeated keys and nested objects are sent as JSON text.
func EncodeQuery(query any) (url.Values, error) {
	values := url.Values{}
	switch q := query.(type) {
	case nil:
		return values, nil
	case url.Values:
		return q, nil
	case map[string]string:
		for key, value := range q {
			values.Set(key, value)
		}
		return values, nil
	}

	raw, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to encode query: %w", err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return values, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("apiclient: query must encode to a JSON object: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := fields[key].(type) {
		case nil:
		case []any:
			for _, item := range v {
				values.Add(key, queryText(item))
			}
		default:
			values.Set(key, queryText(v))
		}
	}
	return values, nil
}

func queryText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}
