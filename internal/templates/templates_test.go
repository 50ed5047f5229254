package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportManager(t *testing.T) {
	tests := []struct {
		name     string
		add      func(im *ImportManager)
		expected string
	}{
		{
			name:     "empty",
			add:      func(im *ImportManager) {},
			expected: "",
		},
		{
			name:     "single import",
			add:      func(im *ImportManager) { im.AddImport("context") },
			expected: "import \"context\"\n",
		},
		{
			name: "standard library first and deduplicated",
			add: func(im *ImportManager) {
				im.AddImport("github.com/toyz/apigen/pkg/apiclient")
				im.AddImport("encoding/json")
				im.AddImport("context")
				im.AddImport("context")
				im.AddImport("example.com/shop/interfaces")
			},
			expected: "import (\n\t\"context\"\n\t\"encoding/json\"\n\n\t\"example.com/shop/interfaces\"\n\t\"github.com/toyz/apigen/pkg/apiclient\"\n)\n",
		},
		{
			name: "third party only",
			add: func(im *ImportManager) {
				im.AddImport("github.com/google/go-cmp/cmp")
				im.AddImport("")
			},
			expected: "import \"github.com/google/go-cmp/cmp\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := NewImportManager()
			tt.add(im)
			assert.Equal(t, tt.expected, im.GenerateImports())
		})
	}
}

func TestImportManagerHas(t *testing.T) {
	im := NewImportManager()
	im.AddImport("context")
	im.AddImport("example.com/x")

	assert.True(t, im.Has("context"))
	assert.True(t, im.Has("example.com/x"))
	assert.False(t, im.Has("testing"))
}

func TestTemplateRegistry(t *testing.T) {
	registry := NewTemplateRegistry()

	for _, name := range []string{ClientTemplate, IndexTemplate, MockTemplate, ContractTemplate, ReadmeTemplate, IgnoreTemplate} {
		text, ok := registry.Get(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, text, name)
	}

	_, ok := registry.Get("missing")
	assert.False(t, ok)

	_, err := registry.Execute("missing", nil)
	assert.Error(t, err)
}

func TestExecuteMockTemplate(t *testing.T) {
	imports := NewImportManager()
	imports.AddImport("context")

	out, err := DefaultTemplateRegistry.Execute(MockTemplate, MockData{
		FileData:      NewFileData("shop", imports),
		MockType:      "MockShopApiClient",
		InterfaceName: "ShopApi",
		Methods: []MockMethodData{
			{Name: "Ping", ParamsType: "PingParams", ResultType: "json.RawMessage"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, Header)
	assert.Contains(t, out, "package shop\n")
	assert.Contains(t, out, "\tPingCall apiclient.MockCall[PingParams, json.RawMessage]\n")
	assert.Contains(t, out, "func (m *MockShopApiClient) Ping(ctx context.Context, params PingParams) (json.RawMessage, error) {")
}

func TestExecuteTemplateErrors(t *testing.T) {
	_, err := executeTemplate("broken", "{{.Missing", nil)
	assert.Error(t, err)

	_, err = executeTemplate("field", "{{.Missing}}", struct{}{})
	assert.Error(t, err)
}

func TestKindConst(t *testing.T) {
	assert.Equal(t, "apiclient.KindString", KindConst("string"))
	assert.Equal(t, "apiclient.KindObject", KindConst("object"))
	assert.Equal(t, "apiclient.KindUnresolved", KindConst("whatever"))
}
