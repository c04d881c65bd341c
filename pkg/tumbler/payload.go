package tumbler

import "sort"

// TestTarget identifies the invocable target of a test entry: a type plus a
// method name. Entries without a target carry raw inline instructions
// instead.
type TestTarget struct {
	// Type is the type whose method is invoked.
	Type string `json:"type"`

	// Method is the method name to invoke.
	Method string `json:"method"`
}

// TestEntry is one named unit of the payload. Entries are pure data: they
// are only interpreted by the artifact consumer at serialization time.
type TestEntry struct {
	// Name is the unique test entry name. Emission order across entries is
	// lexicographic by name.
	Name string `json:"name"`

	// Target is the type+method to invoke, if any.
	Target *TestTarget `json:"target,omitempty"`

	// Inline is raw inline source invoked instead of a target.
	Inline string `json:"inline,omitempty"`

	// Prologue is optional source text emitted before the accumulated
	// settings.
	Prologue string `json:"prologue,omitempty"`

	// Trailing is optional source text emitted after the invocation.
	Trailing string `json:"trailing,omitempty"`

	// Requires lists auxiliary library paths the generated script loads
	// before invoking the target.
	Requires []string `json:"requires,omitempty"`
}

// Clone returns an independent deep copy of the entry.
func (e *TestEntry) Clone() *TestEntry {
	clone := *e
	if e.Target != nil {
		target := *e.Target
		clone.Target = &target
	}
	clone.Requires = append([]string(nil), e.Requires...)
	return &clone
}

// Payload is the set of test entries threaded through the recursion. Each
// branch of the engine operates on its own deep copy, so sibling branches
// never observe each other's mutations. Providers may add, remove, or alter
// entries in their branch's copy to specialize which tests apply to a
// variant.
type Payload struct {
	entries map[string]*TestEntry
}

// NewPayload creates an empty payload.
func NewPayload() *Payload {
	return &Payload{entries: make(map[string]*TestEntry)}
}

// Register adds a test entry. Registering a second entry under an existing
// name fails with a duplicate-test error; entries are never silently merged.
func (p *Payload) Register(e *TestEntry) error {
	if _, exists := p.entries[e.Name]; exists {
		return NewDuplicateTestError(e.Name)
	}
	p.entries[e.Name] = e
	return nil
}

// Put adds or replaces a test entry. Providers use this to specialize an
// entry for the branch they are constructing.
func (p *Payload) Put(e *TestEntry) {
	p.entries[e.Name] = e
}

// Remove deletes a test entry by name.
func (p *Payload) Remove(name string) {
	delete(p.entries, name)
}

// Get returns the entry with the given name.
func (p *Payload) Get(name string) (*TestEntry, bool) {
	e, ok := p.entries[name]
	return e, ok
}

// Names returns all entry names in ascending lexicographic order.
func (p *Payload) Names() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (p *Payload) Len() int {
	return len(p.entries)
}

// Clone returns a deep copy of the payload: a new map with independent
// entries.
func (p *Payload) Clone() *Payload {
	clone := &Payload{entries: make(map[string]*TestEntry, len(p.entries))}
	for name, e := range p.entries {
		clone.entries[name] = e.Clone()
	}
	return clone
}
