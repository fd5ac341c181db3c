// Package symboldb resolves qualified C++ names to their doxygen descriptor
// nodes. Descriptor files are loaded lazily: the first lookup of a name walks
// outward through its enclosing scopes until a compound file exists on disk,
// parses it once, and indexes every public member it contains. Entries are
// only ever added within a run, never evicted.
package symboldb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/example/doxyrst/internal/doxml"
)

// ErrNotFound is returned when no descriptor entry exists for a key. Callers
// are expected to convert it into a warning, not abort the run.
var ErrNotFound = errors.New("no descriptor entry")

// ErrAmbiguous is returned when an overloaded function is looked up without
// a parameter signature.
var ErrAmbiguous = errors.New("overloaded symbol requires a parameter signature")

// DB is the process-lifetime symbol cache. Not safe for concurrent use; the
// generator is strictly sequential.
type DB struct {
	xmlDir string

	// entries holds compounds and non-overloadable members keyed by
	// qualified name; overloads holds functions keyed by qualified name,
	// then by normalized parameter signature.
	entries   map[string]*doxml.Node
	overloads map[string]map[string]*doxml.Node

	loaded    map[string]struct{}
	scannedNS bool
}

// Open returns an empty database over a directory of doxygen XML files.
func Open(xmlDir string) *DB {
	return &DB{
		xmlDir:    xmlDir,
		entries:   make(map[string]*doxml.Node),
		overloads: make(map[string]map[string]*doxml.Node),
		loaded:    make(map[string]struct{}),
	}
}

// Lookup resolves a qualified name, optionally disambiguated by a normalized
// parameter signature. An empty params means "not a function overload".
func (db *DB) Lookup(name, params string) (*doxml.Node, error) {
	if err := db.ensure(name); err != nil {
		return nil, err
	}
	if params != "" {
		if m, ok := db.overloads[name]; ok {
			if n, ok := m[params]; ok {
				return n, nil
			}
		}
		return nil, fmt.Errorf("%s%s: %w", name, params, ErrNotFound)
	}
	if n, ok := db.entries[name]; ok {
		return n, nil
	}
	if _, ok := db.overloads[name]; ok {
		return nil, fmt.Errorf("%s: %w", name, ErrAmbiguous)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Kind returns the descriptor kind of a symbol. Friend entries are re-tagged
// as functions. An entry without a kind attribute is an error the caller
// should downgrade to a warning.
func (db *DB) Kind(name, params string) (string, error) {
	n, err := db.Lookup(name, params)
	if err != nil {
		return "", err
	}
	if !n.HasAttr("kind") {
		return "", fmt.Errorf("could not determine the kind of %s", name)
	}
	kind := n.Attr("kind")
	if kind == "friend" {
		kind = "function"
	}
	return kind, nil
}

// IsTypedef reports whether the symbol is a type alias.
func (db *DB) IsTypedef(name, params string) (bool, error) {
	n, err := db.Lookup(name, params)
	if err != nil {
		return false, err
	}
	return n.Attr("kind") == "typedef", nil
}

// IsInherited reports whether the symbol's definition lives in a different
// compound than the one it was looked up through.
func (db *DB) IsInherited(name, params string) (bool, error) {
	n, err := db.Lookup(name, params)
	if err != nil {
		return false, err
	}
	def := n.Find("definition")
	if def == nil {
		return false, fmt.Errorf("could not determine if %s is inherited", name)
	}
	words := strings.Split(def.AllText(), " ")
	qualified := words[0]
	if len(words) > 1 {
		qualified = words[1]
	}
	segs := strings.Split(name, "::")
	enclosing := strings.Join(segs[:len(segs)-1], "::") + "::"
	return !strings.HasPrefix(qualified, enclosing), nil
}

// IsDeprecated reports whether the symbol's definition starts with the given
// deprecation macro.
func (db *DB) IsDeprecated(name, params, macro string) (bool, error) {
	n, err := db.Lookup(name, params)
	if err != nil {
		return false, err
	}
	def := n.Find("definition")
	if def == nil {
		return false, nil
	}
	return strings.HasPrefix(def.AllText(), macro), nil
}

// TemplateParams renders the "template <...> <return-type> " prefix used as
// a link target for templated members, or "" when the symbol is not
// templated.
func (db *DB) TemplateParams(name, params string) (string, error) {
	n, err := db.Lookup(name, params)
	if err != nil {
		return "", err
	}
	tpl := n.Find("templateparamlist")
	if tpl == nil {
		return "", nil
	}
	var tparams []string
	for _, p := range tpl.FindAll("param") {
		s := ""
		if t := p.FindChild("type"); t != nil {
			s = t.AllText()
		}
		if d := p.FindChild("declname"); d != nil {
			s += " " + d.AllText()
		}
		if d := p.FindChild("defval"); d != nil {
			s += " = " + d.AllText()
		}
		tparams = append(tparams, s)
	}
	return fmt.Sprintf("template <%s> %s ", strings.Join(tparams, ", "), db.returns(n)), nil
}

// KeysUnder returns every indexed key scoped under name, with overloads
// expanded to name+params form, sorted. Used by the spec/database
// cross-check.
func (db *DB) KeysUnder(name string) []string {
	prefix := name + "::"
	var out []string
	for k := range db.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	for k, m := range db.overloads {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for p := range m {
			out = append(out, k+p)
		}
	}
	sort.Strings(out)
	return out
}

func (db *DB) returns(n *doxml.Node) string {
	if n.Attr("kind") == "typedef" {
		return ""
	}
	if t := n.FindChild("type"); t != nil {
		return t.AllText()
	}
	return ""
}

func (db *DB) has(name string) bool {
	if _, ok := db.entries[name]; ok {
		return true
	}
	_, ok := db.overloads[name]
	return ok
}

// ensure populates the cache for name if it is not yet indexed: walk outward
// through enclosing scopes looking for a compound file, else fall back to
// scanning the namespace files.
func (db *DB) ensure(name string) error {
	if db.has(name) {
		return nil
	}
	class := name
	for {
		if _, ok := db.compoundFile(class); ok {
			break
		}
		pos := strings.LastIndex(class, "::")
		if pos == -1 {
			break
		}
		class = class[:pos]
	}
	if path, ok := db.compoundFile(class); ok {
		if _, done := db.loaded[class]; !done {
			return db.loadCompound(class, path)
		}
		return nil
	}
	if !db.has(class) {
		// Broad fallback: any namespace-scoped member with a literally
		// matching qualified name wins, first file in lexical order
		// first. See the ambiguity test before changing this.
		return db.scanNamespaces()
	}
	return nil
}

// compoundFile maps a qualified name to its doxygen compound filename:
// underscores are doubled, "::" becomes "_1_1" and capitals are lowered
// behind an extra underscore. Classes are tried before structs.
func (db *DB) compoundFile(name string) (string, bool) {
	mangled := mangle(name)
	for _, prefix := range []string{"class", "struct"} {
		path := filepath.Join(db.xmlDir, prefix+mangled+".xml")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func mangle(name string) string {
	name = strings.ReplaceAll(name, "_", "__")
	name = strings.ReplaceAll(name, "::", "_1_1")
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (db *DB) loadCompound(class, path string) error {
	db.loaded[class] = struct{}{}
	root, err := doxml.ParseFile(path)
	if err != nil {
		return err
	}
	if cd := root.Find("compounddef"); cd != nil {
		db.entries[class] = cd
	}
	for _, x := range root.FindAll("memberdef") {
		if x.HasAttr("prot") && x.Attr("prot") != "public" {
			continue
		}
		nameNode := x.Find("name")
		if nameNode == nil {
			continue
		}
		memName := class + "::" + strings.TrimSpace(nameNode.AllText())
		if x.HasAttr("kind") && x.Attr("kind") != "function" && x.Attr("kind") != "friend" {
			db.entries[memName] = x
			continue
		}
		// Doxygen occasionally duplicates members, so an existing
		// params key is overwritten without complaint.
		if db.overloads[memName] == nil {
			db.overloads[memName] = make(map[string]*doxml.Node)
		}
		db.overloads[memName][paramsKey(x)] = x
	}
	return nil
}

// paramsKey builds the overload-disambiguation string for a function member:
// parameter types joined by commas (template parameters excluded), plus the
// qualifier suffixes doxygen reflects in attributes or the argsstring.
func paramsKey(x *doxml.Node) string {
	var tparamTypes map[string]struct{}
	if tpl := x.Find("templateparamlist"); tpl != nil {
		tparamTypes = make(map[string]struct{})
		for _, p := range tpl.FindAll("param") {
			if t := p.FindChild("type"); t != nil {
				tparamTypes[strings.TrimSpace(t.AllText())] = struct{}{}
			}
		}
	}
	var types []string
	for _, p := range x.FindAll("param") {
		t := p.FindChild("type")
		if t == nil {
			continue
		}
		text := strings.TrimSpace(t.AllText())
		if tparamTypes != nil {
			if _, ok := tparamTypes[text]; ok {
				continue
			}
		}
		types = append(types, text)
	}
	key := "(" + strings.Join(types, ",") + ")"

	args := ""
	if a := x.Find("argsstring"); a != nil {
		args = a.AllText()
	}
	if x.Attr("const") == "yes" || strings.HasSuffix(args, " const") {
		key += " const"
	}
	if x.Attr("noexcept") == "yes" {
		key += " noexcept"
	}
	switch {
	case strings.HasSuffix(args, "=default"):
		key += " = default"
	case strings.HasSuffix(args, "=delete"):
		key += " = delete"
	case strings.HasSuffix(args, " override"):
		key += " override"
	case strings.HasSuffix(args, "=0"):
		key += " = 0"
	}
	return key
}

func (db *DB) scanNamespaces() error {
	if db.scannedNS {
		return nil
	}
	db.scannedNS = true
	files, err := os.ReadDir(db.xmlDir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", db.xmlDir, err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasPrefix(f.Name(), "namespace") {
			continue
		}
		root, err := doxml.ParseFile(filepath.Join(db.xmlDir, f.Name()))
		if err != nil {
			continue
		}
		nsNode := root.Find("compoundname")
		if nsNode == nil {
			continue
		}
		ns := strings.TrimSpace(nsNode.AllText())
		for _, x := range root.FindAll("memberdef") {
			nameNode := x.Find("name")
			if nameNode == nil {
				continue
			}
			key := ns + "::" + strings.TrimSpace(nameNode.AllText())
			if !db.has(key) {
				db.entries[key] = x
			}
		}
	}
	return nil
}
