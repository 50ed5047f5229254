package utils

import (
	"strings"
	"unicode"
)

// PackageName derives a Go package name from a project name: lower case,
// letters and digits only
func PackageName(project string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(project) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return "api"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "api" + name
	}
	return name
}

// TypeName derives the exported type prefix from a project name, splitting
// words on anything that is not a letter or digit
func TypeName(project string) string {
	words := strings.FieldsFunc(project, func(r rune) bool {
		return r >= unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	var b strings.Builder
	for _, word := range words {
		b.WriteString(Exported(word))
	}
	name := b.String()
	if name == "" {
		return "Api"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "Api" + name
	}
	return name
}

// Exported upper-cases the first character of name
func Exported(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
