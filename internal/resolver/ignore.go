package resolver

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// IgnoreFile lists paths the resolver never reads, one pattern per line.
// Patterns are doublestar globs relative to the directory holding the file.
// A pattern without a slash matches the base name at any depth and a
// trailing slash restricts it to directories.
const IgnoreFile = ".apigenignore"

type ignoreRule struct {
	base    string
	pattern string
	dirOnly bool
}

type ignoreRules struct {
	rules []ignoreRule
}

func newIgnoreRules() *ignoreRules {
	return &ignoreRules{}
}

// loadIgnore reads the ignore file of a single directory
func loadIgnore(dir string) *ignoreRules {
	rules := newIgnoreRules()
	rules.load(dir)
	return rules
}

// load adds the patterns of dir's ignore file, if it has one
func (r *ignoreRules) load(dir string) {
	f, err := os.Open(filepath.Join(dir, IgnoreFile))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule := ignoreRule{base: dir, pattern: strings.TrimPrefix(line, "/")}
		if strings.HasSuffix(rule.pattern, "/") {
			rule.dirOnly = true
			rule.pattern = strings.TrimSuffix(rule.pattern, "/")
		}
		r.rules = append(r.rules, rule)
	}
}

func (r *ignoreRules) matches(path string, isDir bool) bool {
	for _, rule := range r.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		rel, err := filepath.Rel(rule.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		target := rel
		if !strings.Contains(rule.pattern, "/") && rule.pattern != "**" {
			target = filepath.Base(path)
		}
		if ok, err := doublestar.Match(rule.pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}
