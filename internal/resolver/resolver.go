// Package resolver locates the source files that declare the payload types
// named by endpoint declarations.
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/toyz/apigen/internal/models"
)

// Resolver searches an ordered list of roots for type declarations
type Resolver struct {
	roots  []string
	cache  map[string]models.Resolution[string]
	parsed map[string]*sourceFile
}

// New creates a resolver over roots. Roots that do not exist are skipped
// when searching.
func New(roots []string) *Resolver {
	return &Resolver{
		roots:  append([]string(nil), roots...),
		cache:  make(map[string]models.Resolution[string]),
		parsed: make(map[string]*sourceFile),
	}
}

// Roots returns the search roots in order
func (r *Resolver) Roots() []string {
	return r.roots
}

// Resolve returns the path of the file declaring typeName. Filename variants
// are tried in every root first, then every .go file is scanned.
func (r *Resolver) Resolve(typeName string) models.Resolution[string] {
	if cached, ok := r.cache[typeName]; ok {
		return cached
	}

	result := r.resolve(typeName)
	r.cache[typeName] = result
	return result
}

func (r *Resolver) resolve(typeName string) models.Resolution[string] {
	if typeName == "" || !isIdentifier(typeName) {
		return models.Unresolved[string](fmt.Sprintf("%q is not a named type", typeName))
	}

	for _, root := range r.roots {
		ignore := loadIgnore(root)
		for _, candidate := range FileVariants(typeName) {
			path := filepath.Join(root, candidate)
			if ignore.matches(path, false) {
				continue
			}
			if r.declares(path, typeName) {
				return models.Resolved(path)
			}
		}
	}

	for _, root := range r.roots {
		if path, ok := r.scan(root, typeName); ok {
			return models.Resolved(path)
		}
	}

	return models.Unresolved[string](fmt.Sprintf("no declaration of %s under %s", typeName, strings.Join(r.roots, ", ")))
}

// FileVariants lists the file names tried before the full scan, in order
func FileVariants(typeName string) []string {
	candidates := []string{
		typeName + ".go",
		strings.ToLower(typeName) + ".go",
		typeName + "Interface.go",
		"I" + typeName + ".go",
		typeName + "Type.go",
		snakeCase(typeName) + ".go",
	}

	seen := make(map[string]bool, len(candidates))
	variants := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			variants = append(variants, c)
		}
	}
	return variants
}

// scan walks root in lexical order looking for a declaration header
func (r *Resolver) scan(root, typeName string) (string, bool) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", false
	}

	header := "type " + typeName
	var found string
	rules := newIgnoreRules()

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if rules.matches(path, true) {
				return filepath.SkipDir
			}
			rules.load(path)
			return nil
		}
		if !isSourceFile(d.Name()) || rules.matches(path, false) {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(src), typeName) {
			return nil
		}
		// a header match is confirmed against the syntax tree so that
		// grouped declarations and comments are handled
		if strings.Contains(string(src), header) || strings.Contains(string(src), "type (") {
			if r.declares(path, typeName) {
				found = path
				return filepath.SkipAll
			}
		}
		return nil
	})

	return found, found != ""
}

func (r *Resolver) declares(path, typeName string) bool {
	sf, err := r.source(path)
	if err != nil {
		return false
	}
	_, ok := sf.types[typeName]
	return ok
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return s != ""
}

// snakeCase turns UserProfile into user_profile and APIKey into api_key
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolvedSet is the outcome of resolving a group of type names together
type ResolvedSet struct {
	Files      []string          // declaring files, in first-resolved order
	Types      map[string]string // type name to declaring file
	Unresolved map[string]string // type name to reason
}

// Has reports whether name was resolved
func (s *ResolvedSet) Has(name string) bool {
	_, ok := s.Types[name]
	return ok
}

// ResolveAll resolves names and then the package-local types each declaring
// file refers to but does not declare, until nothing new is found.
func (r *Resolver) ResolveAll(names []string) *ResolvedSet {
	set := &ResolvedSet{Types: make(map[string]string), Unresolved: make(map[string]string)}
	seenFiles := make(map[string]bool)

	addFile := func(path string) {
		if seenFiles[path] {
			return
		}
		seenFiles[path] = true
		set.Files = append(set.Files, path)
		if sf, err := r.source(path); err == nil {
			for _, name := range sf.typeNames() {
				if _, ok := set.Types[name]; !ok {
					set.Types[name] = path
				}
			}
		}
	}

	for _, name := range names {
		if _, ok := set.Types[name]; ok {
			continue
		}
		result := r.Resolve(name)
		if path, ok := result.Value(); ok {
			addFile(path)
			continue
		}
		set.Unresolved[name] = result.Reason()
	}

	for i := 0; i < len(set.Files); i++ {
		path := set.Files[i]
		sf, err := r.source(path)
		if err != nil {
			continue
		}
		for _, ref := range sf.references() {
			if _, ok := set.Types[ref]; ok {
				continue
			}
			if sibling, ok := r.sibling(filepath.Dir(path), ref); ok {
				addFile(sibling)
				continue
			}
			if _, reported := set.Unresolved[ref]; !reported {
				set.Unresolved[ref] = fmt.Sprintf("%s refers to %s, which is not declared in its package", filepath.Base(path), ref)
			}
		}
	}

	for name := range set.Unresolved {
		if _, ok := set.Types[name]; ok {
			delete(set.Unresolved, name)
		}
	}
	return set
}

// sibling finds typeName among the other files of dir
func (r *Resolver) sibling(dir, typeName string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isSourceFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if r.declares(path, typeName) {
			return path, true
		}
	}
	return "", false
}
