// Package pagespec loads the declarative YAML files describing how a
// symbol's members are grouped into documentation pages. A file holds a
// single top-level key (the qualified primary name) mapping to an ordered
// list of sections; order is significant everywhere, so decoding goes
// through yaml.Node instead of Go maps.
package pagespec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Member is one entry of a section: a member-signature string, or a prose
// block injected verbatim into the subpage.
type Member struct {
	Text  string
	Prose bool
}

// Section is one named group of member references. Members is nil when the
// section renders its default listing.
type Section struct {
	Title   string
	Members []Member
}

// Page is the parsed specification for one primary symbol. Sections is nil
// when the file maps the symbol to nothing. Immutable after load.
type Page struct {
	// File is the path the page was loaded from, used to attribute
	// warnings.
	File     string
	Name     string
	Sections []Section
}

// Load parses one page-specification file.
func Load(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page spec: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse %s: empty document", path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode || len(root.Content) < 2 {
		return nil, fmt.Errorf("parse %s: expected a single-key mapping", path)
	}
	page := &Page{File: path, Name: root.Content[0].Value}

	value := root.Content[1]
	if isNull(value) {
		return page, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse %s: expected a section list under %q", path, page.Name)
	}
	for _, item := range value.Content {
		sect, err := parseSection(path, item)
		if err != nil {
			return nil, err
		}
		page.Sections = append(page.Sections, sect)
	}
	return page, nil
}

func parseSection(path string, item *yaml.Node) (Section, error) {
	if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
		return Section{}, fmt.Errorf("parse %s: each section must be a single-key mapping", path)
	}
	sect := Section{Title: item.Content[0].Value}
	value := item.Content[1]
	if isNull(value) {
		return sect, nil
	}
	if value.Kind != yaml.SequenceNode {
		return Section{}, fmt.Errorf("parse %s: section %q must map to null or a list", path, sect.Title)
	}
	for _, entry := range value.Content {
		switch entry.Kind {
		case yaml.ScalarNode:
			sect.Members = append(sect.Members, Member{Text: entry.Value})
		case yaml.SequenceNode:
			// Prose injection: a one-element list holding a string.
			if len(entry.Content) != 1 || entry.Content[0].Kind != yaml.ScalarNode {
				return Section{}, fmt.Errorf("parse %s: section %q: prose entry must be a single string", path, sect.Title)
			}
			sect.Members = append(sect.Members, Member{Text: entry.Content[0].Value, Prose: true})
		default:
			return Section{}, fmt.Errorf("parse %s: section %q: unsupported entry", path, sect.Title)
		}
	}
	return sect, nil
}

func isNull(n *yaml.Node) bool {
	return n.Tag == "!!null" || (n.Kind == 0 && n.Value == "")
}
