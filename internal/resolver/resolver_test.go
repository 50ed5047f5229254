package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apigen/internal/models"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func fixture(t *testing.T) string {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"types/user.go":       "package types\n\ntype User struct {\n\tName string `json:\"name\"`\n}\n",
		"types/order_item.go": "package types\n\n// OrderItem is a line item\ntype OrderItem struct {\n\tSKU   string\n\tPrice Money\n\tNotes []Note\n}\n",
		"types/money.go":      "package types\n\ntype Money struct {\n\tAmount int64\n}\n",
		"types/user_test.go":  "package types\n\ntype TestOnly struct{}\n",
		"models/all.go":       "package models\n\ntype (\n\tInvoice struct {\n\t\tTotal int\n\t}\n)\n",
		"models/IAccount.go":  "package models\n\ntype Account struct{}\n",
		"models/account.go":   "package models\n\ntype Account struct{ Legacy bool }\n",
		"vendor/lib/x.go":     "package lib\n\ntype Hidden struct{}\n",
		".cache/y.go":         "package cache\n\ntype Hidden struct{}\n",
		".apigenignore":       "# generated output\ngenerated/\nlegacy_*.go\n",
		"generated/client.go": "package generated\n\ntype Ghost struct{}\n",
		"pkg/legacy_ghost.go": "package pkg\n\ntype Phantom struct{}\n",
		"pkg/decoy.go":        "package pkg\n\n// type Decoy is only mentioned here\nvar x = 1\n",
	})
	return root
}

func TestResolve(t *testing.T) {
	root := fixture(t)
	r := New([]string{filepath.Join(root, "missing"), filepath.Join(root, "types"), filepath.Join(root, "models"), root})

	tests := []struct {
		name     string
		typeName string
		want     string
	}{
		{name: "lower-case variant", typeName: "User", want: "types/user.go"},
		{name: "snake case variant", typeName: "OrderItem", want: "types/order_item.go"},
		{name: "variant order beats later variants", typeName: "Account", want: "models/account.go"},
		{name: "full scan with grouped declaration", typeName: "Invoice", want: "models/all.go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Resolve(tt.typeName)
			path, ok := result.Value()
			require.True(t, ok, result.Reason())
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), path)
		})
	}

	for _, name := range []string{"TestOnly", "Hidden", "Ghost", "Phantom", "Decoy", "", "[]User"} {
		_, ok := r.Resolve(name).Value()
		assert.False(t, ok, name)
	}
	assert.Contains(t, r.Resolve("Ghost").Reason(), "no declaration of Ghost")
}

func TestFileVariants(t *testing.T) {
	assert.Equal(t, []string{
		"UserProfile.go", "userprofile.go", "UserProfileInterface.go", "IUserProfile.go", "UserProfileType.go", "user_profile.go",
	}, FileVariants("UserProfile"))
	assert.Equal(t, []string{"User.go", "user.go", "UserInterface.go", "IUser.go", "UserType.go"}, FileVariants("User"))
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"User":        "user",
		"UserProfile": "user_profile",
		"APIKey":      "api_key",
		"OAuth2Token": "o_auth2_token",
		"getUser":     "get_user",
	}
	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestResolveAllFollowsPackageReferences(t *testing.T) {
	root := fixture(t)
	r := New([]string{filepath.Join(root, "types"), root})

	set := r.ResolveAll([]string{"OrderItem", "User", "Missing"})
	assert.Equal(t, []string{
		filepath.Join(root, "types", "order_item.go"),
		filepath.Join(root, "types", "user.go"),
		filepath.Join(root, "types", "money.go"),
	}, set.Files)
	assert.Equal(t, filepath.Join(root, "types", "money.go"), set.Types["Money"])
	assert.True(t, set.Has("User"))
	assert.False(t, set.Has("Missing"))

	require.Contains(t, set.Unresolved, "Missing")
	require.Contains(t, set.Unresolved, "Note")
	assert.Contains(t, set.Unresolved["Note"], "order_item.go refers to Note")
	assert.NotContains(t, set.Unresolved, "Money")
}

func TestCopyRewritesPackageClause(t *testing.T) {
	root := fixture(t)
	r := New([]string{root})

	artifacts, err := r.CopyAll([]string{filepath.Join(root, "types", "order_item.go")})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	artifact := artifacts[0]
	assert.Equal(t, models.ArtifactInterface, artifact.Kind)
	assert.Equal(t, "interfaces/order_item.go", artifact.Path)
	assert.Equal(t, "// Code generated by apigen from order_item.go. DO NOT EDIT.\n\n"+
		"package interfaces\n\n// OrderItem is a line item\ntype OrderItem struct {\n\tSKU   string\n\tPrice Money\n\tNotes []Note\n}\n",
		artifact.Content)
}

func TestCopyAllDeduplicatesNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/types.go": "package a\n\ntype A struct{}\n",
		"b/types.go": "package b\n\ntype B struct{}\n",
	})
	r := New([]string{root})

	a := filepath.Join(root, "a", "types.go")
	b := filepath.Join(root, "b", "types.go")
	artifacts, err := r.CopyAll([]string{a, b, a})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "interfaces/types.go", artifacts[0].Path)
	assert.Equal(t, "interfaces/b_types.go", artifacts[1].Path)
}
