package generator

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/parser"
	"github.com/toyz/apigen/internal/utils"
)

type typeSet map[string]bool

func (s typeSet) Has(name string) bool { return s[name] }

var shopProject = models.Project{
	Name:        "shop",
	PackageName: "shop",
	TypeName:    "Shop",
	ModulePath:  "example.com/shop/client",
}

func shopEndpoints(t *testing.T) *models.EndpointSet {
	t.Helper()
	set := models.NewEndpointSet()
	records := []*models.EndpointRecord{
		{
			Name: "getUser", Path: "/users/{id}", Method: models.MethodGet, OutputType: "User",
			Implementation: &models.StoreBacked{Action: models.ActionGetItem, TableName: "users", PartitionKey: "USER#$input.params('id')"},
		},
		{
			Name: "createUser", Path: "/users", Method: models.MethodPost, InputType: "CreateUserInput", OutputType: "User",
			Implementation: &models.ComputeBacked{EntrySourcePath: "handlers/create_user.go"},
		},
		{
			Name: "listOrders", Path: "/users/{userId}/orders", Method: models.MethodGet, InputType: "OrderFilter",
			Implementation: &models.ComputeBacked{EntrySourcePath: "handlers/orders.go", EntryFunction: "List", QueueBacked: true},
		},
		{
			Name: "deleteUser", Path: "/users/{id}", Method: models.MethodDelete,
			Implementation: &models.ComputeBacked{EntrySourcePath: "handlers/missing.go"},
		},
	}
	for _, r := range records {
		require.NoError(t, set.Add(r))
	}
	return set
}

var shopTypes = typeSet{"User": true, "CreateUserInput": true}

func TestClientGenerate(t *testing.T) {
	artifact, err := NewClientGenerator(shopTypes).Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)

	assert.Equal(t, ClientFile, artifact.Path)
	assert.Equal(t, models.ArtifactClientSource, artifact.Kind)
	require.NoError(t, utils.ValidateGoCode(artifact.Content))

	content := artifact.Content
	assert.Contains(t, content, "// Code generated by apigen. DO NOT EDIT.")
	assert.Contains(t, content, "package shop\n")
	assert.Contains(t, content, `"example.com/shop/client/interfaces"`)
	assert.Contains(t, content, `"github.com/toyz/apigen/pkg/apiclient"`)
	assert.Contains(t, content, `"encoding/json"`)

	assert.Contains(t, content, "type GetUserParams struct {\n\tId apiclient.PathValue\n}")
	assert.Contains(t, content, "type CreateUserParams struct {\n\tBody interfaces.CreateUserInput\n}")
	assert.Regexp(t, regexp.MustCompile(`type ListOrdersParams struct \{\n\tUserId\s+apiclient.PathValue\n\tQuery\s+any\n\}`), content)
	assert.Contains(t, content, "type DeleteUserParams struct {\n\tId apiclient.PathValue\n}")

	assert.Contains(t, content, "func NewShopApiClient(ctx context.Context, cfg apiclient.Config) (*ShopApiClient, error) {")
	assert.Contains(t, content, "func (c *ShopApiClient) GetUser(ctx context.Context, params GetUserParams) (*interfaces.User, error) {")
	assert.Contains(t, content, "func (c *ShopApiClient) ListOrders(ctx context.Context, params ListOrdersParams) (json.RawMessage, error) {")
	assert.Contains(t, content, `apiclient.FinalizePath("/users/{id}", map[string]apiclient.PathValue{`)
	assert.Contains(t, content, `"id": params.Id,`)
	assert.Contains(t, content, `path := "/users"`)
	assert.Contains(t, content, `req := apiclient.Request{Method: "POST", Path: path, Body: params.Body}`)
	assert.Contains(t, content, `req := apiclient.Request{Method: "GET", Path: path, Query: params.Query}`)
	assert.Contains(t, content, `req := apiclient.Request{Method: "DELETE", Path: path}`)
	assert.Contains(t, content, "return &out, nil")
}

func TestClientGenerateIsDeterministic(t *testing.T) {
	first, err := NewClientGenerator(shopTypes).Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)
	second, err := NewClientGenerator(shopTypes).Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
}

func TestClientWithoutResolvedTypes(t *testing.T) {
	artifact, err := NewClientGenerator(nil).Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)

	assert.NotContains(t, artifact.Content, "interfaces")
	assert.Contains(t, artifact.Content, "func (c *ShopApiClient) GetUser(ctx context.Context, params GetUserParams) (json.RawMessage, error) {")
	assert.Contains(t, artifact.Content, "type CreateUserParams struct {\n\tBody any\n}")
}

func TestClientMethodCollision(t *testing.T) {
	set := models.NewEndpointSet()
	require.NoError(t, set.Add(&models.EndpointRecord{Name: "getUser", Path: "/a", Method: models.MethodGet, Implementation: &models.ComputeBacked{EntrySourcePath: "a.go"}}))
	require.NoError(t, set.Add(&models.EndpointRecord{Name: "get-user", Path: "/b", Method: models.MethodGet, Implementation: &models.ComputeBacked{EntrySourcePath: "b.go"}}))

	_, err := NewClientGenerator(nil).Generate(set, shopProject)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GetUser")
}

func TestPathParams(t *testing.T) {
	params := pathParams("/orgs/{org_id}/items/{body}/{org_id}")
	require.Len(t, params, 2)
	assert.Equal(t, "OrgId", params[0].Field)
	assert.Equal(t, "org_id", params[0].Key)
	assert.Equal(t, "BodyParam", params[1].Field)
}

func TestGenerateIndex(t *testing.T) {
	artifact, err := NewClientGenerator(shopTypes).GenerateIndex(shopEndpoints(t), shopProject)
	require.NoError(t, err)
	require.NoError(t, utils.ValidateGoCode(artifact.Content))

	content := artifact.Content
	assert.Equal(t, IndexFile, artifact.Path)
	assert.Regexp(t, `User\s+= interfaces.User`, content)
	assert.Regexp(t, `CreateUserInput\s+= interfaces.CreateUserInput`, content)
	assert.NotContains(t, content, "OrderFilter")
	assert.Contains(t, content, "type ShopApi interface {")
	assert.Contains(t, content, "DeleteUser(ctx context.Context, params DeleteUserParams) (json.RawMessage, error)")
	assert.Contains(t, content, "var _ ShopApi = (*ShopApiClient)(nil)")
	assert.NotContains(t, content, "MockShopApiClient")
}

func TestMockGenerate(t *testing.T) {
	set := shopEndpoints(t)
	client, err := NewClientGenerator(shopTypes).Generate(set, shopProject)
	require.NoError(t, err)

	mock, err := NewMockGenerator().Generate(client.Content, shopProject)
	require.NoError(t, err)
	assert.Equal(t, MockFile, mock.Path)
	assert.Equal(t, models.ArtifactMockSource, mock.Kind)
	require.NoError(t, utils.ValidateGoCode(mock.Content))

	assert.Contains(t, mock.Content, "type MockShopApiClient struct {")
	assert.Regexp(t, `GetUserCall\s+apiclient.MockCall\[GetUserParams, \*interfaces.User\]`, mock.Content)
	assert.Contains(t, mock.Content, "func NewMockShopApiClient() *MockShopApiClient {")
	assert.Contains(t, mock.Content, "return m.ListOrdersCall.Invoke(ctx, params)")
	assert.Contains(t, mock.Content, `"example.com/shop/client/interfaces"`)

	clientMethods, err := parser.ClientMethods(ClientFile, client.Content, shopProject.ClientTypeName())
	require.NoError(t, err)
	mockMethods, err := parser.ClientMethods(MockFile, mock.Content, shopProject.MockTypeName())
	require.NoError(t, err)
	assert.Equal(t, clientMethods, mockMethods)

	var names []string
	for _, m := range mockMethods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"GetUser", "CreateUser", "ListOrders", "DeleteUser"}, names)
}

func TestMockGenerateWithoutClientMethods(t *testing.T) {
	_, err := NewMockGenerator().Generate("package shop\n", shopProject)
	assert.Error(t, err)
}

func TestAmendIndex(t *testing.T) {
	index := "package shop\n\nvar _ ShopApi = (*ShopApiClient)(nil)\n"

	once := AmendIndex(index, shopProject)
	assert.Equal(t, index+"var _ ShopApi = (*MockShopApiClient)(nil)\n", once)

	twice := AmendIndex(once, shopProject)
	assert.Equal(t, once, twice)
}

func stubAnalyzer(sigs map[string]*parser.HandlerSignature) HandlerAnalyzer {
	return func(path, function string) (*parser.HandlerSignature, error) {
		key := fmt.Sprintf("%s#%s", path, function)
		if sig, ok := sigs[key]; ok {
			return sig, nil
		}
		return nil, fmt.Errorf("function %s not found in %s", function, path)
	}
}

func TestContractGenerate(t *testing.T) {
	decls := map[string]*models.TypeDeclaration{
		"User": {Name: "User", Properties: []models.Property{
			{Name: "id", Kind: models.KindString},
			{Name: "age", Kind: models.KindNumber},
		}},
	}
	analyzer := stubAnalyzer(map[string]*parser.HandlerSignature{
		"/decl/handlers/create_user.go#Handler": {
			Function:   "Handler",
			InputType:  "CreateUserInput",
			OutputType: "User",
			Input: &models.TypeDeclaration{Name: "CreateUserInput", Properties: []models.Property{
				{Name: "name", Kind: models.KindString},
			}},
		},
		"/decl/handlers/orders.go#List": {Function: "List", InputType: "OrderFilter"},
	})

	gen := NewContractGenerator("/decl", shopTypes, decls).WithAnalyzer(analyzer)
	artifacts, skipped, err := gen.Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)

	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Error(), "deleteUser")

	require.Len(t, artifacts, 2)
	create, orders := artifacts[0], artifacts[1]

	assert.Equal(t, "createUser_contract_test.go", create.Path)
	assert.Equal(t, models.ArtifactContractTest, create.Kind)
	require.NoError(t, utils.ValidateGoCode(create.Content))
	assert.Contains(t, create.Content, "func TestCreateUserContract(t *testing.T) {")
	assert.Contains(t, create.Content, "var _ func(context.Context, CreateUserParams) (*interfaces.User, error) = NewMockShopApiClient().CreateUser")
	assert.Contains(t, create.Content, `{Name: "name", Kind: apiclient.KindString},`)
	assert.Contains(t, create.Content, "apiclient.PayloadShape[CreateUserParams]()")
	assert.Contains(t, create.Content, `{Name: "age", Kind: apiclient.KindNumber},`)
	assert.Contains(t, create.Content, "apiclient.Shape[interfaces.User]()")
	assert.Contains(t, create.Content, `"github.com/google/go-cmp/cmp/cmpopts"`)

	// untyped input and output leave only the signature check
	assert.Equal(t, "listOrders_contract_test.go", orders.Path)
	require.NoError(t, utils.ValidateGoCode(orders.Content))
	assert.Contains(t, orders.Content, "var _ func(context.Context, ListOrdersParams) (json.RawMessage, error) = NewMockShopApiClient().ListOrders")
	assert.NotContains(t, orders.Content, "cmp.Diff")
	assert.NotContains(t, orders.Content, "go-cmp")
}

func TestContractWithoutMocks(t *testing.T) {
	analyzer := stubAnalyzer(map[string]*parser.HandlerSignature{
		"/decl/handlers/create_user.go#Handler": {Function: "Handler"},
	})
	gen := NewContractGenerator("/decl", shopTypes, nil).WithAnalyzer(analyzer).WithMocks(false)
	artifacts, _, err := gen.Generate(shopEndpoints(t), shopProject)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	content := artifacts[0].Content
	assert.Contains(t, content, "= (&ShopApiClient{}).CreateUser")
	// the handler takes no payload but the client sends one
	assert.Contains(t, content, "handlerInput := []apiclient.Field{}")
	assert.Contains(t, content, "handlerOutput := []apiclient.Field{}")
}

func TestManifest(t *testing.T) {
	artifact, err := Manifest(shopProject, ManifestOptions{GoVersion: "1.22", ContractTests: true})
	require.NoError(t, err)
	assert.Equal(t, ManifestFile, artifact.Path)
	assert.Contains(t, artifact.Content, "module example.com/shop/client\n")
	assert.Contains(t, artifact.Content, "go 1.22\n")
	assert.Contains(t, artifact.Content, "github.com/toyz/apigen v0.1.0")
	assert.Contains(t, artifact.Content, "github.com/google/go-cmp v0.6.0")

	artifact, err = Manifest(shopProject, ManifestOptions{GoVersion: "1.22", RuntimeVersion: "v0.3.1"})
	require.NoError(t, err)
	assert.Contains(t, artifact.Content, "github.com/toyz/apigen v0.3.1")
	assert.NotContains(t, artifact.Content, "go-cmp")

	_, err = Manifest(models.Project{Name: "bad", ModulePath: "not a path"}, ManifestOptions{})
	assert.Error(t, err)
}

func TestReadmeAndIgnore(t *testing.T) {
	readme, err := Readme(shopEndpoints(t), shopProject, ReadmeOptions{Mocks: true, Templates: true})
	require.NoError(t, err)
	assert.Equal(t, ReadmeFile, readme.Path)
	assert.Contains(t, readme.Content, "# shop API client")
	assert.Contains(t, readme.Content, "| GET | `/users/{id}` | GetUser | DynamoDB GetItem |")
	assert.Contains(t, readme.Content, "| GET | `/users/{userId}/orders` | ListOrders | queue |")
	assert.Contains(t, readme.Content, "NewMockShopApiClient()")
	assert.Contains(t, readme.Content, "`vtl/`")
	assert.NotContains(t, readme.Content, "_contract_test.go")

	ignore, err := IgnoreFile()
	require.NoError(t, err)
	assert.Equal(t, ".apigenignore", ignore.Path)
	assert.Contains(t, ignore.Content, "interfaces/**\n")
	assert.Contains(t, ignore.Content, "*.go\n")
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "GetUser", MethodName("getUser"))
	assert.Equal(t, "ListOrders", MethodName("list-orders"))
}
