package utils

import (
	"fmt"
	"go/parser"
	"go/token"

	"golang.org/x/tools/imports"
)

// FormatGoSource formats generated Go source and orders its imports.
// Imports are never added or resolved, so the result does not depend on
// the local module cache.
func FormatGoSource(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax in %s: %w", filename, parseErr)
		}
		return source, fmt.Errorf("failed to format %s: %w", filename, err)
	}
	return formatted, nil
}

// FormatGoCodeString formats Go source code from a string and returns a string
func FormatGoCodeString(filename, source string) (string, error) {
	formatted, err := FormatGoSource(filename, []byte(source))
	return string(formatted), err
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
