package vtl

import (
	"fmt"
	"sort"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/expressions"
	"github.com/toyz/apigen/internal/models"
)

// Validate checks every store-backed endpoint and returns all violations
// together. Any violation is fatal to the run.
func Validate(set *models.EndpointSet) error {
	var problems *errors.MultipleErrors
	for _, record := range set.All() {
		store, ok := record.Store()
		if !ok {
			continue
		}
		for _, err := range validateStore(record.Name, store) {
			errors.AddToMultiple(&problems, err.WithContext("line", record.Line))
		}
	}
	return problems.ErrorOrNil()
}

func validateStore(name string, store *models.StoreBacked) []*errors.BaseError {
	var problems []*errors.BaseError
	invalid := func(field, reason string) {
		problems = append(problems, errors.InvalidStoreConfig(name, field, reason))
	}

	if store.TableName == "" {
		invalid("TableName", "a table name is required")
	}
	if store.DefaultLimit < 0 {
		invalid("DefaultLimit", "must not be negative")
	}
	if store.Limit < 0 {
		invalid("Limit", "must not be negative")
	}

	switch store.Action {
	case models.ActionGetItem:
		if store.IndexName != "" {
			problems = append(problems, errors.InvalidStoreConfig(name, "IndexName", "GetItem addresses items by primary key and cannot use an index").
				WithSuggestion("Use the Query action to read through an index"))
		}
		if store.PartitionKey == "" && store.RequestTemplate == "" {
			invalid("PartitionKey", "GetItem requires a partition key template")
		}
	case models.ActionQuery:
		if store.RequestTemplate != "" {
			break
		}
		if store.KeyConditionExpression == "" {
			invalid("KeyConditionExpression", "Query requires a key condition expression")
			break
		}
		refs, err := expressions.Placeholders(store.KeyConditionExpression)
		if err != nil {
			invalid("KeyConditionExpression", err.Error())
			break
		}
		filter := expressions.FilterPlaceholders(store.FilterExpression)
		for _, p := range checkPlaceholders(refs, filter, store) {
			invalid(p.field, p.reason)
		}
	default:
		invalid("Action", fmt.Sprintf("unsupported action %q", store.Action))
	}
	return problems
}

type placeholderProblem struct {
	field  string
	reason string
}

// checkPlaceholders reports references that are not declared and
// declarations that nothing references
func checkPlaceholders(keyRefs, filterRefs expressions.Refs, store *models.StoreBacked) []placeholderProblem {
	usedNames := make(map[string]bool)
	usedValues := make(map[string]bool)
	var problems []placeholderProblem

	for _, refs := range []expressions.Refs{keyRefs, filterRefs} {
		for _, n := range refs.Names {
			usedNames[n] = true
			if _, ok := store.ExpressionAttributeNames[n]; !ok {
				problems = append(problems, placeholderProblem{"ExpressionAttributeNames", fmt.Sprintf("%s is used but not declared", n)})
			}
		}
		for _, v := range refs.Values {
			usedValues[v] = true
			if _, ok := store.ExpressionAttributeValues[v]; !ok {
				problems = append(problems, placeholderProblem{"ExpressionAttributeValues", fmt.Sprintf("%s is used but not declared", v)})
			}
		}
	}

	for _, n := range sortedKeys(store.ExpressionAttributeNames) {
		if !usedNames[n] {
			problems = append(problems, placeholderProblem{"ExpressionAttributeNames", fmt.Sprintf("%s is declared but never used", n)})
		}
	}
	values := make([]string, 0, len(store.ExpressionAttributeValues))
	for v := range store.ExpressionAttributeValues {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		if !usedValues[v] {
			problems = append(problems, placeholderProblem{"ExpressionAttributeValues", fmt.Sprintf("%s is declared but never used", v)})
		}
	}
	return problems
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
