package rst

import (
	"fmt"
	"strings"
)

// Section renders an RST section heading underlined with sym.
func Section(name string, sym byte) string {
	return "\n" + name + "\n" + strings.Repeat(string(sym), len(name)) + "\n"
}

// Directive emits the breathe directive embedding the doxygen documentation
// of a symbol. entry disambiguates a member of class; when empty the
// directive targets class itself.
func (r *Renderer) Directive(kind, class, entry string) string {
	if entry != "" {
		return fmt.Sprintf("\n.. doxygen%s:: %s::%s\n   :project: %s\n", kind, class, entry, r.Project)
	}
	return fmt.Sprintf("\n.. doxygen%s:: %s\n   :project: %s\n", kind, class, r.Project)
}
