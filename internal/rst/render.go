// Package rst renders doxygen descriptor trees into Sphinx reStructuredText.
// Rendering is a recursive descent dispatching on element tags; tags with no
// rule recurse into their children with no added markup, so unrecognized
// structure degrades to flattened text instead of erroring. Pin new tags
// with tests rather than removing that fallthrough.
package rst

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/example/doxyrst/internal/doxml"
)

// prefixes maps a compound/member kind to the Sphinx C++ directive opening
// its definition block.
var prefixes = map[string]string{
	"class":     ".. cpp:class:: ",
	"struct":    ".. cpp:struct:: ",
	"namespace": ".. cpp:namespace:: ",
	"function":  ".. cpp:function:: ",
	"friend":    ".. cpp:function:: ",
	"variable":  ".. cpp:member:: ",
	"typedef":   ".. cpp:type:: ",
	"enum":      ".. cpp:enum:: ",
}

// Renderer converts descriptor nodes to reStructuredText.
type Renderer struct {
	// Project is the project name stamped into doxygen directives.
	Project string
	// RootNamespace is the library namespace that bounds how much
	// qualifying scope a definition keeps (e.g. "libsemigroups").
	RootNamespace string
	// DetailNamespace marks internal implementation scopes whose alias
	// targets are hidden (e.g. "detail::").
	DetailNamespace string
}

// Render converts one descriptor node into markup. ctx carries the ancestry;
// the stack depth is identical before and after the call for every input.
func (r *Renderer) Render(n *doxml.Node, ctx *Context) string {
	ctx.push(n.Tag)
	isEnum := n.Attr("kind") == "enum"
	if isEnum {
		ctx.push("enum")
	}

	var b strings.Builder
	children := n.Children
	switch n.Tag {
	case "compounddef":
		b.WriteString(prefixes[n.Attr("kind")])
		children = hoistFirst(children, "templateparamlist")
	case "memberdef":
		b.WriteString(prefixes[n.Attr("kind")])
	}
	if isEnum {
		children = reorderEnum(children)
	}

	for _, x := range children {
		r.renderChild(&b, x, ctx)
	}

	if isEnum {
		ctx.pop()
	}
	if ctx.pop() == "itemizedlist" {
		b.WriteString("\n\n" + ctx.Indent())
	}
	return b.String()
}

func (r *Renderer) renderChild(b *strings.Builder, x *doxml.Node, ctx *Context) {
	if x.IsText() {
		t := strings.TrimSpace(x.Text)
		if t != "." && t != "" && !startsUpper(t) {
			b.WriteString(" ")
		}
		b.WriteString(t)
		return
	}

	inEnum := ctx.Contains("enum")
	switch {
	case inEnum && x.Tag == "name":
		b.WriteString(strings.TrimSpace(x.AllText()))
	case inEnum && x.Tag == "enumvalue":
		b.WriteString("\n\n" + ctx.Indent() + ".. cpp:enumerator:: ")
		b.WriteString(r.Render(x, ctx))
	case x.Tag == "definition":
		r.renderDefinition(b, x)
	case x.Tag == "argsstring":
		b.WriteString(x.AllText())
	case x.Tag == "briefdescription":
		b.WriteString("\n\n" + ctx.Indent() + r.Render(x, ctx))
	case x.Tag == "detaileddescription":
		b.WriteString("\n" + ctx.Indent() + r.Render(x, ctx))
	case x.Tag == "templateparamlist":
		b.WriteString("template <" + templateParams(x) + ">")
	case x.Tag == "computeroutput":
		if t := x.AllText(); len(t) != 0 {
			b.WriteString(" ``" + t + "``")
		}
	case x.Tag == "formula":
		b.WriteString(" :math:`" + strings.ReplaceAll(x.AllText(), "$", "") + "`")
	case x.Tag == "title":
		b.WriteString(fmt.Sprintf("\n\n%s:%s: ", ctx.Indent(), strings.ToLower(x.AllText())))
	case x.Tag == "para":
		b.WriteString(r.Render(x, ctx))
		if top := ctx.top(); top == "detaileddescription" || top == "briefdescription" {
			b.WriteString("\n\n" + ctx.Indent())
		}
	case x.Tag == "simplesect" && x.Attr("kind") == "return":
		b.WriteString("\n\n" + ctx.Indent() + ":returns: " + r.Render(x, ctx))
	case x.Tag == "simplesect" && x.Attr("kind") == "par":
		b.WriteString(r.Render(x, ctx))
	case x.Tag == "simplesect" && x.Attr("kind") == "see":
		b.WriteString("\n\n" + ctx.Indent() + ".. seealso:: " + r.Render(x, ctx))
	case x.Tag == "parameterlist":
		r.renderParameterList(b, x, ctx)
	case x.Tag == "ref":
		kindref := "any"
		if x.Attr("kindref") == "member" {
			kindref = "member"
		}
		b.WriteString(fmt.Sprintf(" :cpp:%s:`%s` ", kindref, x.AllText()))
	case x.Tag == "emphasis":
		b.WriteString(" *" + x.AllText() + "*")
	case x.Tag == "bold":
		b.WriteString("\n\n" + ctx.Indent() + "**" + x.AllText() + "**")
	case x.Tag == "compoundname":
		t := x.AllText()
		b.WriteString(t[strings.LastIndex(t, "::")+2:])
	case x.Tag == "ulink":
		b.WriteString(fmt.Sprintf(" `%s <%s>`_", x.AllText(), x.Attr("url")))
	case x.Tag == "itemizedlist":
		b.WriteString("\n" + r.Render(x, ctx))
	case x.Tag == "listitem":
		b.WriteString("\n" + ctx.Indent() + "* " + r.Render(x, ctx))
	case x.Tag == "programlisting":
		b.WriteString("\n\n" + ctx.Indent() + ".. code-block::\n" + r.Render(x, ctx))
	case x.Tag == "codeline":
		b.WriteString("\n" + ctx.Indent() + r.Render(x, ctx))
	case x.Tag == "highlight":
		b.WriteString(r.Render(x, ctx))
	case x.Tag == "sp":
		b.WriteString(" ")
	default:
		// Unknown tags flatten to their children's text.
		b.WriteString(r.Render(x, ctx))
	}
}

func (r *Renderer) renderParameterList(b *strings.Builder, x *doxml.Node, ctx *Context) {
	switch x.Attr("kind") {
	case "templateparam":
		for _, y := range x.FindAll("parameteritem") {
			b.WriteString("\n\n" + ctx.Indent())
			b.WriteString(fmt.Sprintf(":tparam %s: %s",
				findText(y, "parametername"),
				r.renderFound(y, "parameterdescription", ctx)))
		}
	case "param":
		// Doxygen repeats the description under each item; the first one
		// in document order is the one rendered.
		for _, y := range x.FindAll("parameteritem") {
			b.WriteString("\n\n" + ctx.Indent())
			b.WriteString(fmt.Sprintf(":param %s: %s",
				findText(y, "parametername"),
				r.renderFound(x, "parameterdescription", ctx)))
		}
	case "exception":
		for _, y := range x.FindAll("parameteritem") {
			b.WriteString("\n\n" + ctx.Indent())
			b.WriteString(":throws:\n" + ctx.Indent() + "   ")
			b.WriteString(r.renderFound(y, "parametername", ctx))
			b.WriteString(r.renderFound(y, "parameterdescription", ctx))
		}
	default:
		b.WriteString(r.Render(x, ctx))
	}
}

// renderDefinition recovers the display name from a raw definition string:
// alias definitions keep their right-hand side unless it points into an
// internal namespace, assignment operators render the left-hand type through
// its &, constructors render bare, and everything else keeps the qualifying
// scope up to and including the root namespace.
func (r *Renderer) renderDefinition(b *strings.Builder, x *doxml.Node) {
	text := x.AllText()
	if strings.HasPrefix(text, "using") {
		lhs, rhs, _ := strings.Cut(text, "=")
		lhs = strings.TrimSpace(lhs[strings.LastIndex(lhs, "::")+2:])
		if !strings.Contains(rhs, r.DetailNamespace) {
			rhs = strings.TrimSpace(strings.ReplaceAll(rhs, "typename", ""))
			rhs = strings.TrimSpace(strings.ReplaceAll(rhs, "typedef", ""))
			b.WriteString(lhs + " = " + rhs)
		} else {
			b.WriteString(strings.TrimSpace(strings.ReplaceAll(lhs, "using", "")))
		}
		return
	}
	y := strings.Split(text, "::")
	last := y[len(y)-1]
	switch {
	case last == "operator=":
		// Assignment operator: the left-hand type through its &.
		b.WriteString(y[0][:strings.Index(y[0], "&")+1])
	case len(y) < 2 || !strings.HasPrefix(y[len(y)-2], last):
		// Not a constructor: keep scope up to the root namespace.
		var parts []string
		for _, z := range y {
			parts = append(parts, z)
			if strings.HasSuffix(z, r.RootNamespace) {
				break
			}
		}
		scope := strings.Join(parts, "::")
		b.WriteString(scope[:strings.LastIndex(scope, " ")+1])
	}
	b.WriteString(last)
}

// templateParams formats the "type declname" pairs of a templateparamlist.
func templateParams(x *doxml.Node) string {
	var params []string
	for _, y := range x.FindAll("param") {
		s := ""
		if t := y.FindChild("type"); t != nil {
			s = t.AllText()
		}
		if d := y.FindChild("declname"); d != nil {
			s += " " + d.AllText()
		}
		params = append(params, s)
	}
	return strings.Join(params, ", ")
}

// hoistFirst moves the first child with the given tag to the front.
func hoistFirst(children []*doxml.Node, tag string) []*doxml.Node {
	for i, c := range children {
		if c.Tag == tag {
			out := make([]*doxml.Node, 0, len(children))
			out = append(out, c)
			out = append(out, children[:i]...)
			out = append(out, children[i+1:]...)
			return out
		}
	}
	return children
}

// reorderEnum puts the name and brief description first so the enum header
// renders before its enumerator entries regardless of source order.
func reorderEnum(children []*doxml.Node) []*doxml.Node {
	var name, brief *doxml.Node
	for _, c := range children {
		switch c.Tag {
		case "name":
			if name == nil {
				name = c
			}
		case "briefdescription":
			if brief == nil {
				brief = c
			}
		}
	}
	if name == nil {
		return children
	}
	out := make([]*doxml.Node, 0, len(children))
	out = append(out, name)
	if brief != nil {
		out = append(out, brief)
	}
	for _, c := range children {
		if c.Tag != "name" && c.Tag != "briefdescription" {
			out = append(out, c)
		}
	}
	return out
}

func findText(n *doxml.Node, tag string) string {
	if f := n.Find(tag); f != nil {
		return f.AllText()
	}
	return ""
}

func (r *Renderer) renderFound(n *doxml.Node, tag string, ctx *Context) string {
	if f := n.Find(tag); f != nil {
		return r.Render(f, ctx)
	}
	return ""
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
