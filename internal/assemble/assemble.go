// Package assemble composes the generated pages: one overview per primary
// symbol plus one subpage per named member group, resolved against the
// symbol database and rendered through the markup renderer. Every
// recoverable failure is downgraded to a warning at the per-symbol boundary
// so one undocumented member never aborts the run.
package assemble

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/doxyrst/internal/naming"
	"github.com/example/doxyrst/internal/pagespec"
	"github.com/example/doxyrst/internal/report"
	"github.com/example/doxyrst/internal/rst"
	"github.com/example/doxyrst/internal/signature"
	"github.com/example/doxyrst/internal/symboldb"
)

// noDocMarker stands in for a brief description that could not be resolved.
const noDocMarker = "(no documentation found)"

// Assembler turns page specifications into written pages.
type Assembler struct {
	DB       *symboldb.DB
	Renderer *rst.Renderer
	Writer   *Writer
	Reporter *report.Reporter
	OutDir   string
	// Header is the attribution block prepended to every generated file.
	Header string
}

// ProcessFile handles one page-specification file end to end: cross-check,
// overview page, subpages. The returned error covers unreadable or malformed
// specs only; resolution failures become warnings.
func (a *Assembler) ProcessFile(path string) error {
	page, err := pagespec.Load(path)
	if err != nil {
		return err
	}
	a.crossCheck(page)
	if err := a.overview(page); err != nil {
		return err
	}
	return a.subpages(page)
}

// overview writes the top-level page: title, the embedding directive for the
// whole symbol, one two-column member table per section and a hidden toctree
// of the subpages.
func (a *Assembler) overview(page *pagespec.Page) error {
	name := page.Name
	var out strings.Builder
	out.WriteString(a.Header)
	out.WriteString(rst.Section(naming.StripNamespace(a.Renderer.RootNamespace, name), '='))

	kind, err := a.DB.Kind(name, "")
	if err != nil {
		a.Reporter.Warnf(page.File, "no doxygen output found for %s", name)
		return nil
	}
	out.WriteString(a.Renderer.Directive(kind, name, ""))
	out.WriteString(fmt.Sprintf("\n.. cpp:namespace:: %s\n\n", name))

	toc := "\n.. toctree::\n   :hidden:\n"
	for _, sect := range page.Sections {
		out.WriteString(rst.Section(sect.Title, '-'))
		toc += "\n   " + filepath.Base(naming.SubpageFile(a.OutDir, name, sect.Title))
		if sect.Members == nil {
			continue
		}
		out.WriteString(".. list-table::\n   :widths: 50 50\n   :header-rows: 0\n\n")
		for _, thing := range memberTexts(sect.Members) {
			out.WriteString(a.overviewRow(page, thing))
		}
	}
	if page.Sections != nil {
		out.WriteString(toc + "\n")
	}
	return a.Writer.Write(naming.OverviewFile(a.OutDir, name), out.String())
}

// overviewRow renders one member table row: a :cpp:member: link paired with
// the member's rendered brief description.
func (a *Assembler) overviewRow(page *pagespec.Page, thing string) string {
	thingName, thingParams, _ := signature.Extract(thing)

	title := ""
	if thing == naming.Unqualified(page.Name)+"()" {
		// The default constructor needs a qualified link target but keeps
		// its short title.
		title = thing
		thing = thingName + "::" + thing
	}
	qualified := page.Name + "::" + thingName
	tparams := a.templateParams(page.File, qualified, thingParams)
	if tparams != "" {
		// Sphinx treats a leading < as markup, so the first one in a
		// templated title is escaped and the link goes through the
		// template-prefixed target.
		title = strings.Replace(thing, "<", `\<`, 1)
	}
	brief := a.brief(page.File, qualified, thingParams)

	if title != "" {
		return fmt.Sprintf("   * - :cpp:member:`%s <%s%s>`\n     - %s\n", title, tparams, thing, brief)
	}
	return fmt.Sprintf("   * - :cpp:member:`%s`\n     - %s\n", thing, brief)
}

// subpages writes one page per section that lists members: a leading prose
// entry is injected verbatim, then each member gets its embedding directive,
// disambiguated by its normalized parameter signature.
func (a *Assembler) subpages(page *pagespec.Page) error {
	for _, sect := range page.Sections {
		if sect.Members == nil {
			continue
		}
		var out strings.Builder
		out.WriteString(a.Header)
		out.WriteString(rst.Section(sect.Title, '='))
		out.WriteString(fmt.Sprintf(".. cpp:namespace:: %s\n\n", a.Renderer.RootNamespace))

		members := sect.Members
		if members[0].Prose {
			out.WriteString(members[0].Text + "\n\n")
			members = members[1:]
		}
		out.WriteString(".. cpp:namespace-pop::\n\n")

		for _, thing := range sortedTexts(members) {
			thingName, thingParams, _ := signature.Extract(thing)
			if thingParams == "(bool(*)())" {
				// Doxygen only matches the function-pointer overload when
				// the pointer is named; quirk of its lookup, not ours.
				thing = thingName + "(bool (*func)())"
			}
			qualified := page.Name + "::" + thingName
			kind, err := a.DB.Kind(qualified, thingParams)
			if err != nil {
				// Report under the qualified name so a member already
				// reported from the overview table is not counted twice.
				a.Reporter.MissingDoc(page.File, qualified, thingParams)
				continue
			}
			out.WriteString(a.Renderer.Directive(kind, page.Name, thing))
		}
		if err := a.Writer.Write(naming.SubpageFile(a.OutDir, page.Name, sect.Title), out.String()); err != nil {
			return err
		}
	}
	return nil
}

// crossCheck warns about every database entry scoped under the primary name
// that the specification does not reference. Destructors, double-namespace
// artifacts and pure-virtual markers are noise in the doxygen output and are
// filtered before comparison.
func (a *Assembler) crossCheck(page *pagespec.Page) {
	if _, err := a.DB.Lookup(page.Name, ""); err != nil {
		return
	}
	want := map[string]struct{}{page.Name: {}}
	for _, sect := range page.Sections {
		for _, m := range sect.Members {
			if m.Prose {
				continue
			}
			n, p, ok := signature.Extract(m.Text)
			key := n
			if ok {
				key = n + p
			}
			want[page.Name+"::"+key] = struct{}{}
		}
	}
	destructor := "~" + naming.Unqualified(page.Name)
	for _, k := range a.DB.KeysUnder(page.Name) {
		if strings.Contains(k, destructor) || strings.Contains(k, "::::") || strings.HasSuffix(k, "= 0") {
			continue
		}
		if _, ok := want[k]; !ok {
			a.Reporter.Warnf(page.File, "missing doc, found %q in doxygen output but not in yml file", k)
		}
	}
}

func (a *Assembler) templateParams(file, name, params string) string {
	tparams, err := a.DB.TemplateParams(name, params)
	if err != nil {
		a.Reporter.MissingDoc(file, name, params)
		return ""
	}
	return tparams
}

func (a *Assembler) brief(file, name, params string) string {
	node, err := a.DB.Lookup(name, params)
	if err != nil {
		a.Reporter.MissingDoc(file, name, params)
		return noDocMarker
	}
	bd := node.FindChild("briefdescription")
	if bd == nil {
		a.Reporter.MissingDoc(file, name, params)
		return noDocMarker
	}
	return a.Renderer.Render(bd, rst.NewContext())
}

// memberTexts returns the sorted member signatures of a section, dropping a
// leading prose entry.
func memberTexts(members []pagespec.Member) []string {
	if len(members) > 0 && members[0].Prose {
		members = members[1:]
	}
	return sortedTexts(members)
}

func sortedTexts(members []pagespec.Member) []string {
	texts := make([]string, 0, len(members))
	for _, m := range members {
		texts = append(texts, m.Text)
	}
	sort.Strings(texts)
	return texts
}
