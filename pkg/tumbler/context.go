package tumbler

import "strings"

// Context is the override-aware stack of settings accumulated along one path
// of the combination tree. A Context extends its parent by reference: child
// derivation never copies or mutates the parent, so parent contexts may be
// safely shared across sibling branches. The parent must outlive any child
// that references it.
//
// A Context is mutable (via Push) only while it is being built; once it has
// been handed to the engine or used to derive children it is treated as
// read-only by convention.
type Context struct {
	parent   *Context
	settings []Setting
}

// NewContext creates a context extending parent (which may be nil) with the
// given initial settings, in push order.
func NewContext(parent *Context, initial ...Setting) *Context {
	return &Context{
		parent:   parent,
		settings: append([]Setting(nil), initial...),
	}
}

// Push appends a setting. Only valid while building a context that has not
// yet been shared with children.
func (c *Context) Push(s Setting) {
	c.settings = append(c.settings, s)
}

// NewChild returns a new context consisting of the receiver's settings plus
// the given settings, without mutating the receiver.
func (c *Context) NewChild(settings ...Setting) *Context {
	return NewContext(c, settings...)
}

// Lookup scans from the most recently pushed setting to the least recently
// pushed one, across the whole parent chain, and returns the value of the
// first setting matching both name and kind. Nested contexts therefore
// override their ancestors.
func (c *Context) Lookup(name string, kind SettingKind) (interface{}, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		for i := len(cur.settings) - 1; i >= 0; i-- {
			s := cur.settings[i]
			if s.Name() == name && s.Kind() == kind {
				return s.Value(), true
			}
		}
	}
	return nil, false
}

// Serialize concatenates the rendered text of every setting in reverse push
// order: the most recently pushed setting is rendered first, so later (more
// specific) declarations appear earlier in the emitted artifact. This
// ordering is an externally observable contract of the generated scripts
// and must not be changed. Settings that render to nothing are skipped.
func (c *Context) Serialize() string {
	var b strings.Builder
	for cur := c; cur != nil; cur = cur.parent {
		for i := len(cur.settings) - 1; i >= 0; i-- {
			line := cur.settings[i].Render()
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Len returns the total number of settings visible from this context,
// including inherited ones.
func (c *Context) Len() int {
	n := 0
	for cur := c; cur != nil; cur = cur.parent {
		n += len(cur.settings)
	}
	return n
}
