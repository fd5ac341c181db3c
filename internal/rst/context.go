package rst

import "strings"

// Context is the ancestry stack threaded through rendering. Tags are pushed
// on entry to an element and popped on exit; the stack must balance exactly
// around every recursive call, including early returns.
type Context struct {
	stack []string
}

// NewContext returns an empty render context.
func NewContext() *Context { return &Context{} }

func (c *Context) push(tag string) { c.stack = append(c.stack, tag) }

func (c *Context) pop() string {
	if len(c.stack) == 0 {
		return ""
	}
	tag := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return tag
}

func (c *Context) top() string {
	if len(c.stack) == 0 {
		return ""
	}
	return c.stack[len(c.stack)-1]
}

// Contains reports whether tag appears anywhere in the ancestry.
func (c *Context) Contains(tag string) bool {
	for _, t := range c.stack {
		if t == tag {
			return true
		}
	}
	return false
}

// Depth returns the number of stack entries, for the balance tests.
func (c *Context) Depth() int { return len(c.stack) }

// Indent returns the current indentation: three spaces per ancestor that
// opens an indented scope.
func (c *Context) Indent() string {
	n := 0
	for _, t := range c.stack {
		switch t {
		case "memberdef", "compounddef", "parameterdescription", "programlisting":
			n++
		}
	}
	return strings.Repeat(" ", 3*n)
}
