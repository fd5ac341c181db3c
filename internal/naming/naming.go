// Package naming maps qualified C++ symbol names to filesystem-safe page
// names. Operator spellings are rewritten to named tokens before the general
// non-word fallback so that overloaded operators get readable filenames.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

// operatorRule rewrites one operator spelling. Rules are applied in order;
// the order matters because some spellings are prefixes of others
// (operator< vs operator<<).
type operatorRule struct {
	name    string
	pattern *regexp.Regexp
	repl    string
}

var operatorRules = []operatorRule{
	{"star", regexp.MustCompile(`operator\s*\*`), "operator_star"},
	{"not-equal", regexp.MustCompile(`operator!=`), "operator_not_eq"},
	{"call", regexp.MustCompile(`operator\(\)`), "call_operator"},
	{"less", regexp.MustCompile(`operator<$`), "operator_less"},
	{"insertion", regexp.MustCompile(`operator<<`), "insertion_operator"},
	{"equal-to", regexp.MustCompile(`operator==`), "operator_equal_to"},
	{"greater", regexp.MustCompile(`operator>`), "operator_greater"},
}

var nonWord = regexp.MustCompile(`[^0-9A-Za-z_]`)

// FileBase converts a qualified symbol name into a lowercase base name that
// is safe to use as a filename. It is pure and idempotent.
func FileBase(name string) string {
	for _, r := range operatorRules {
		name = r.pattern.ReplaceAllString(name, r.repl)
	}
	name = nonWord.ReplaceAllString(name, "_")
	return strings.ToLower(name)
}

// OverviewFile returns the path of the top-level page for name.
func OverviewFile(outDir, name string) string {
	return filepath.Join(outDir, FileBase(name)+".rst")
}

// SubpageFile returns the path of the page holding one named section of a
// class or namespace.
func SubpageFile(outDir, class, section string) string {
	return filepath.Join(outDir, FileBase(class+"::"+section)+".rst")
}

// StripNamespace removes a leading root:: qualifier from name, if present.
func StripNamespace(root, name string) string {
	if name == "" {
		return name
	}
	parts := strings.Split(name, "::")
	if parts[0] == root {
		return strings.Join(parts[1:], "::")
	}
	return name
}

// Unqualified returns the last ::-separated segment of name.
func Unqualified(name string) string {
	if name == "" {
		return name
	}
	parts := strings.Split(name, "::")
	return parts[len(parts)-1]
}
