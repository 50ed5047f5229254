package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/models"
)

const declarationSource = `package api

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/toyz/apigen/pkg/apidecl"
)

const usersTable = "users"

var listOrders = apidecl.Endpoint[apidecl.GET, apidecl.None, OrderPage]{
	Path:   "/users/{id}/orders",
	Method: "GET",
	Store: &apidecl.StoreBacked{
		Action:                 apidecl.Query,
		TableName:              "orders",
		IndexName:              "gsi1",
		KeyConditionExpression: "#pk = :pk AND begins_with(#sk, :prefix)",
		ExpressionAttributeNames: map[string]string{
			"#pk": "gsi1pk",
			"#sk": "gsi1sk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: "USER#$input.params('id')"},
			":prefix": &types.AttributeValueMemberS{Value: "ORDER#"},
		},
		DefaultLimit: 20,
	},
}

var Endpoints = apidecl.Endpoints{
	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
		Path:   "/users/{id}",
		Method: "GET",
		Store: &apidecl.StoreBacked{
			Action:       apidecl.GetItem,
			TableName:    usersTable,
			PartitionKey: "USER#$input.params('id')",
			SortKey:      "PROFILE",
		},
	},
	"createUser": apidecl.Endpoint[apidecl.POST, *types.CreateUserInput, *User]{
		Path: "/users",
		Compute: &apidecl.ComputeBacked{
			Entry: "handlers/create_user.go",
			Queue: true,
			Bind:  func(r apidecl.Resources) { r.Grant("users", "dynamodb:PutItem") },
		},
	},
	"listOrders": listOrders,
}
`

func TestLoadStructural(t *testing.T) {
	set, err := NewEndpointLoader().LoadSource("api.go", declarationSource)
	require.NoError(t, err)
	require.Equal(t, []string{"getUser", "createUser", "listOrders"}, set.Names())

	getUser, _ := set.Get("getUser")
	assert.Equal(t, "/users/{id}", getUser.Path)
	assert.Equal(t, models.MethodGet, getUser.Method)
	assert.Empty(t, getUser.InputType)
	assert.Equal(t, "User", getUser.OutputType)
	store, ok := getUser.Store()
	require.True(t, ok)
	assert.Equal(t, &models.StoreBacked{
		Action:       models.ActionGetItem,
		TableName:    "users",
		PartitionKey: "USER#$input.params('id')",
		SortKey:      "PROFILE",
	}, store)

	createUser, _ := set.Get("createUser")
	assert.Equal(t, models.MethodPost, createUser.Method)
	assert.Equal(t, "CreateUserInput", createUser.InputType)
	assert.Equal(t, "User", createUser.OutputType)
	compute, ok := createUser.Compute()
	require.True(t, ok)
	assert.Equal(t, "handlers/create_user.go", compute.EntrySourcePath)
	assert.True(t, compute.QueueBacked)
	assert.Equal(t, "Handler", compute.Function())

	listOrders, _ := set.Get("listOrders")
	assert.Equal(t, "OrderPage", listOrders.OutputType)
	query, ok := listOrders.Store()
	require.True(t, ok)
	assert.Equal(t, models.ActionQuery, query.Action)
	assert.Equal(t, "gsi1", query.IndexName)
	assert.Equal(t, 20, query.DefaultLimit)
	assert.Equal(t, map[string]string{"#pk": "gsi1pk", "#sk": "gsi1sk"}, query.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ORDER#"}, query.ExpressionAttributeValues[":prefix"])
}

func TestLoadElidedElementTypes(t *testing.T) {
	src := `package api

var Endpoints = map[string]apidecl.Endpoint[apidecl.GET, apidecl.None, Health]{
	"health": {Path: "/health", Compute: &apidecl.ComputeBacked{Entry: "health.go", Function: "Check"}},
}
`
	set, err := NewEndpointLoader().LoadSource("api.go", src)
	require.NoError(t, err)

	health, ok := set.Get("health")
	require.True(t, ok)
	assert.Equal(t, models.MethodGet, health.Method)
	assert.Equal(t, "Health", health.OutputType)
	compute, _ := health.Compute()
	assert.Equal(t, "Check", compute.Function())
}

func TestLoadTextualFallback(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "unparseable module",
			src: `package api

var Endpoints = apidecl.Endpoints{
	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
		Path:   "/users/{id}",
		Method: "GET",
		Compute: &apidecl.ComputeBacked{Entry: "get_user.go"},
	},
}

func broken( {
`,
		},
		{
			name: "unexported binding",
			src: `package api

var endpoints = apidecl.Endpoints{
	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{Path: "/users/{id}", Compute: &apidecl.ComputeBacked{Entry: "get_user.go"}},
}
`,
		},
		{
			name: "literal body that does not parse",
			src: `package api

var Endpoints = apidecl.Endpoints{
	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
		Path: "/users/{id}",
		Compute: &apidecl.ComputeBacked{
			Entry: "get_user.go",
			Bind:  func(r apidecl.Resources) { r.Grant("users" },
		},
	},
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewEndpointLoader().LoadSource("api.go", tt.src)
			require.NoError(t, err)
			require.Equal(t, 1, set.Len())

			record, _ := set.Get("getUser")
			assert.Equal(t, "/users/{id}", record.Path)
			assert.Equal(t, models.MethodGet, record.Method)
			assert.Equal(t, "User", record.OutputType)
			compute, ok := record.Compute()
			require.True(t, ok)
			assert.Equal(t, "get_user.go", compute.EntrySourcePath)
		})
	}
}

func TestLoadTextualStore(t *testing.T) {
	src := `package api

var endpoints = apidecl.Endpoints{
	"listUsers": apidecl.Endpoint[apidecl.GET, apidecl.None, UserPage]{
		Path: "/users",
		Store: &apidecl.StoreBacked{
			Action:                 apidecl.Query,
			TableName:              "users",
			KeyConditionExpression: "pk = :pk",
			DefaultLimit:           5,
			Limit:                  50,
			Broken:                 func( {},
		},
	},
}
`
	set, err := NewEndpointLoader().LoadSource("api.go", src)
	require.NoError(t, err)

	record, _ := set.Get("listUsers")
	store, ok := record.Store()
	require.True(t, ok)
	assert.Equal(t, models.ActionQuery, store.Action)
	assert.Equal(t, "users", store.TableName)
	assert.Equal(t, "pk = :pk", store.KeyConditionExpression)
	assert.Equal(t, 5, store.DefaultLimit)
	assert.Equal(t, 50, store.Limit)
}

func TestLoadTextualExpressionMaps(t *testing.T) {
	src := `package api

var endpoints = apidecl.Endpoints{
	"listOrders": apidecl.Endpoint[apidecl.GET, apidecl.None, OrderPage]{
		Path: "/users/{id}/orders",
		Store: &apidecl.StoreBacked{
			Action:                 apidecl.Query,
			TableName:              "orders",
			KeyConditionExpression: "#pk = :pk AND #sk > :min",
			ExpressionAttributeNames: map[string]string{
				"#pk": "gsi1pk", // partition
				"#sk": "gsi1sk",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":  &types.AttributeValueMemberS{Value: "USER#$input.params('id')"},
				":min": &types.AttributeValueMemberN{Value: "3"},
			},
			Broken: func( {},
		},
	},
}
`
	set, err := NewEndpointLoader().LoadSource("api.go", src)
	require.NoError(t, err)

	record, _ := set.Get("listOrders")
	store, ok := record.Store()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"#pk": "gsi1pk", "#sk": "gsi1sk"}, store.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":pk":  &types.AttributeValueMemberS{Value: "USER#$input.params('id')"},
		":min": &types.AttributeValueMemberN{Value: "3"},
	}, store.ExpressionAttributeValues)
}

func TestLoadTextualExpressionMapFailures(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"names from a variable", "ExpressionAttributeNames: sharedNames,"},
		{"values from a variable", "ExpressionAttributeValues: sharedValues,"},
		{"names with computed entries", `ExpressionAttributeNames: map[string]string{"#pk": prefix + "pk"},`},
		{"unsupported attribute value", `ExpressionAttributeValues: map[string]types.AttributeValue{":s": &types.AttributeValueMemberSS{Value: []string{"a"}}},`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `package api

var endpoints = apidecl.Endpoints{
	"listOrders": apidecl.Endpoint[apidecl.GET, apidecl.None, OrderPage]{
		Path: "/orders",
		Store: &apidecl.StoreBacked{
			Action:                 apidecl.Query,
			TableName:              "orders",
			KeyConditionExpression: "#pk = :pk",
			` + tt.field + `
			Broken: func( {},
		},
	},
}
`
			_, err := NewEndpointLoader().LoadSource("api.go", src)
			require.Error(t, err)
			assert.Equal(t, errors.LoadFailureCode, errors.CodeOf(err))
			assert.Contains(t, err.Error(), "listOrders")
		})
	}
}

func TestLoadTextualIgnoresComments(t *testing.T) {
	t.Run("commented example with empty endpoints", func(t *testing.T) {
		src := `package api

// Example:
//
//	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
//		Path:    "/users/{id}",
//		Compute: &apidecl.ComputeBacked{Entry: "get_user.go"},
//	},
var Endpoints = apidecl.Endpoints{}
`
		_, err := NewEndpointLoader().LoadSource("api.go", src)
		require.Error(t, err)
		assert.Equal(t, errors.LoadFailureCode, errors.CodeOf(err))
	})

	t.Run("block comment beside a real endpoint", func(t *testing.T) {
		src := `package api

var endpoints = apidecl.Endpoints{
	/*
	"old": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
		Path:    "/old",
		Compute: &apidecl.ComputeBacked{Entry: "old.go"},
	},
	*/
	"getUser": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{
		Path:    "/users/{id}", // "fake": apidecl.Endpoint[apidecl.GET, apidecl.None, User]{}
		Compute: &apidecl.ComputeBacked{Entry: "get_user.go"},
	},
}

func broken( {
`
		set, err := NewEndpointLoader().LoadSource("api.go", src)
		require.NoError(t, err)
		assert.Equal(t, []string{"getUser"}, set.Names())
	})
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"line comment", "a // b\nc", "a     \nc"},
		{"block comment keeps newlines", "a /* b\nc */ d", "a     \n     d"},
		{"slashes inside strings", `x := "http://host" // c`, `x := "http://host"     `},
		{"raw strings", "x := `/* not */`", "x := `/* not */`"},
		{"rune literal", `x := '/' // c`, `x := '/'     `},
		{"unterminated block", "a /* b", "a     "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripComments(tt.src)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.src))
		})
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "no endpoints", src: "package api\n\nvar Endpoints = apidecl.Endpoints{}\n"},
		{name: "not go", src: "export const endpoints = {}"},
		{
			name: "neither implementation",
			src:  "package api\n\nvar Endpoints = apidecl.Endpoints{\n\t\"a\": apidecl.Endpoint[apidecl.GET, apidecl.None, apidecl.None]{Path: \"/a\"},\n}\n",
		},
		{
			name: "both implementations",
			src: "package api\n\nvar Endpoints = apidecl.Endpoints{\n\t\"a\": apidecl.Endpoint[apidecl.GET, apidecl.None, apidecl.None]{Path: \"/a\", " +
				"Compute: &apidecl.ComputeBacked{Entry: \"a.go\"}, Store: &apidecl.StoreBacked{Action: apidecl.GetItem}},\n}\n",
		},
		{
			name: "method mismatch",
			src:  "package api\n\nvar Endpoints = apidecl.Endpoints{\n\t\"a\": apidecl.Endpoint[apidecl.GET, apidecl.None, apidecl.None]{Path: \"/a\", Method: \"POST\", Compute: &apidecl.ComputeBacked{Entry: \"a.go\"}},\n}\n",
		},
		{
			name: "value cannot be followed",
			src:  "package api\n\nvar Endpoints = apidecl.Endpoints{\n\t\"a\": makeEndpoint(\"/a\"),\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndpointLoader().LoadSource("api.go", tt.src)
			require.Error(t, err)
			assert.Equal(t, errors.LoadFailureCode, errors.CodeOf(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewEndpointLoader().Load(filepath.Join(t.TempDir(), "missing.go"))
	require.Error(t, err)
	assert.Equal(t, errors.LoadFailureCode, errors.CodeOf(err))
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.go")
	require.NoError(t, os.WriteFile(path, []byte(declarationSource), 0644))

	set, err := NewEndpointLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())

	record, _ := set.Get("getUser")
	assert.Equal(t, 32, record.Line)
}
