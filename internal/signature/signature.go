// Package signature splits raw C++ function signatures into a bare name and
// a canonical parameter string. The canonical spacing matches what doxygen
// itself emits, so a normalized signature can be used verbatim as an overload
// key against the symbol database.
package signature

import (
	"regexp"
	"strings"
)

// paramRule is one named rewrite applied during parameter normalization.
// Each rule is idempotent on its own and the ordered composition stays
// idempotent, which the tests pin down rule by rule.
type paramRule struct {
	name  string
	apply func(string) string
}

var multiSpace = regexp.MustCompile(`\s{2,}`)
var commaSpace = regexp.MustCompile(`\s*,\s*`)

var paramRules = []paramRule{
	{"collapse-spaces", func(s string) string { return multiSpace.ReplaceAllString(s, " ") }},
	{"space-after-lt", spaceAfterLT},
	{"space-before-gt", spaceBeforeGT},
	{"space-before-amp", spaceBeforeAmp},
	{"space-after-amp", spaceAfterAmp},
	{"trim-commas", func(s string) string { return commaSpace.ReplaceAllString(s, ",") }},
	{"tighten-fnptr", tightenFnPtr},
}

// NormalizeParams rewrites the inside of a parameter list to doxygen's
// canonical spacing. Idempotent.
func NormalizeParams(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range paramRules {
		s = r.apply(s)
	}
	return s
}

// Extract splits a signature into its bare name and normalized parameter
// suffix. ok is false when the entry has no parameter list at all, meaning
// the name needs no overload disambiguation. A leading template clause is
// skipped when recovering the name.
func Extract(entry string) (name, params string, ok bool) {
	entry = strings.TrimSpace(entry)
	l := strings.Index(entry, "(")
	if l == -1 {
		return entry, "", false
	}
	r := strings.LastIndex(entry, ")")
	if r < l {
		return entry, "", false
	}
	params = "(" + NormalizeParams(entry[l+1:r]) + entry[r:]
	if strings.HasPrefix(entry, "template") {
		sp := strings.LastIndex(entry[:l], " ")
		return entry[sp+1 : l], params, true
	}
	return entry[:l], params, true
}

func spaceAfterLT(s string) string {
	var b strings.Builder
	for i, c := range []byte(s) {
		b.WriteByte(c)
		if c == '<' && i+1 < len(s) && !isSpace(s[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func spaceBeforeGT(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '>' && i > 0 && !isSpace(s[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func spaceBeforeAmp(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && i > 0 && !isSpace(s[i-1]) && s[i-1] != '&' {
			b.WriteByte(' ')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func spaceAfterAmp(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] == '&' && i+1 < len(s) && !isSpace(s[i+1]) && s[i+1] != '&' {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// tightenFnPtr undoes the spacing rules at the tail of a function-pointer
// parameter such as std::function<void(bool&)>: doxygen's own output does
// not carry the spaces in "& ) >". Compatibility patch for that one quirk,
// applied after everything else; do not generalize it.
func tightenFnPtr(s string) string {
	if strings.HasSuffix(s, "& ) >") {
		return strings.TrimSuffix(s, "& ) >") + "&)>"
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
