package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mod/modfile"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		project     string
		packageName string
		typeName    string
	}{
		{project: "shop", packageName: "shop", typeName: "Shop"},
		{project: "my-shop", packageName: "myshop", typeName: "MyShop"},
		{project: "petStore", packageName: "petstore", typeName: "PetStore"},
		{project: "order_service v2", packageName: "orderservicev2", typeName: "OrderServiceV2"},
		{project: "3d-prints", packageName: "api3dprints", typeName: "Api3dPrints"},
		{project: "--", packageName: "api", typeName: "Api"},
	}
	for _, tt := range tests {
		t.Run(tt.project, func(t *testing.T) {
			assert.Equal(t, tt.packageName, PackageName(tt.project))
			assert.Equal(t, tt.typeName, TypeName(tt.project))
		})
	}

	assert.Equal(t, "GetUser", Exported("getUser"))
	assert.Equal(t, "", Exported(""))
}

func TestFormatGoSource(t *testing.T) {
	src := "package shop\nimport (\n\"fmt\"\n\"context\"\n)\nfunc  F(ctx context.Context) {fmt.Println(ctx)}\n"
	formatted, err := FormatGoSource("apiClient.go", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "package shop\n\nimport (\n\t\"context\"\n\t\"fmt\"\n)\n\nfunc F(ctx context.Context) { fmt.Println(ctx) }\n", string(formatted))

	_, err = FormatGoSource("broken.go", []byte("package shop\nfunc {"))
	assert.Error(t, err)
}

func TestLoadGoModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(
		"module example.com/shop\n\ngo 1.24\n\nrequire github.com/toyz/apigen v0.3.0\n"), 0644))
	nested := filepath.Join(root, "api", "decl")
	require.NoError(t, os.MkdirAll(nested, 0755))

	mod, err := LoadGoModule(nested)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", mod.ModulePath())
	assert.Equal(t, "1.24", mod.GoVersion())

	version, ok := mod.RequiredVersion("github.com/toyz/apigen")
	assert.True(t, ok)
	assert.Equal(t, "v0.3.0", version)

	importPath, err := mod.ImportPathFor(filepath.Join(root, "api", "client"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/api/client", importPath)

	_, err = mod.ImportPathFor(filepath.Dir(root))
	assert.Error(t, err)
}

func TestBuildGoMod(t *testing.T) {
	content, err := BuildGoMod("example.com/shop/client", "1.24", []Requirement{
		{Path: "github.com/toyz/apigen", Version: "v0.1.0"},
		{Path: "github.com/google/go-cmp", Version: "v0.6.0"},
	})
	require.NoError(t, err)

	parsed, err := modfile.Parse("go.mod", content, nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/client", parsed.Module.Mod.Path)
	assert.Equal(t, "1.24", parsed.Go.Version)
	require.Len(t, parsed.Require, 2)
	assert.Equal(t, "github.com/toyz/apigen", parsed.Require[0].Mod.Path)

	again, err := BuildGoMod("example.com/shop/client", "1.24", []Requirement{
		{Path: "github.com/toyz/apigen", Version: "v0.1.0"},
		{Path: "github.com/google/go-cmp", Version: "v0.6.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, content, again)

	_, err = BuildGoMod("", "1.24", nil)
	assert.Error(t, err)
}

func TestDiagnosticLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticWarn)
	d.SetOutput(&out, &errOut)

	d.Error("boom %d", 1)
	d.Warn("careful")
	d.Info("hidden")
	d.Verbose("hidden too")

	assert.Equal(t, "[ERROR] boom 1\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n", out.String())
}

func TestDiagnosticSummarySorted(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Summary("Summary", map[string]interface{}{"b": 2, "a": 1})
	assert.Equal(t, "\nSummary\n   a: 1\n   b: 2\n\n", out.String())
}

func TestDiagnosticList(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Subsection("Failed phases")
	d.Indent()
	d.List("%s", "mocks")
	d.Info("nested")
	d.Unindent()
	d.Unindent()
	d.List("top")

	assert.Equal(t, "\nFailed phases:\n  - mocks\n  [INFO] nested\n- top\n", out.String())
}
