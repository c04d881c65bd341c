package emitter

import (
	"fmt"
	"strings"

	"go.starlark.net/syntax"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

// ScriptExtension is the file extension of emitted artifacts.
const ScriptExtension = ".star"

// BuildScript assembles the artifact body for one test entry: the suite
// prologue, the entry prologue, the serialized context (most specific
// settings first), required library declarations, the target invocation,
// and any trailing inline code. Sections are separated by blank lines and
// empty sections are skipped, so the output is stable for identical inputs.
func BuildScript(suitePrologue string, entry *tumbler.TestEntry, tc *tumbler.Context) string {
	sections := make([]string, 0, 5)

	if s := strings.TrimRight(suitePrologue, "\n"); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimRight(entry.Prologue, "\n"); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimRight(tc.Serialize(), "\n"); s != "" {
		sections = append(sections, s)
	}
	if len(entry.Requires) > 0 {
		lines := make([]string, len(entry.Requires))
		for i, lib := range entry.Requires {
			lines[i] = fmt.Sprintf("require(%s)", tumbler.RenderLiteral(lib))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if s := renderInvocation(entry); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimRight(entry.Trailing, "\n"); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// renderInvocation renders the entry's invocable target. Entries with a
// type+method target invoke the method on a fresh instance; entries
// without one carry raw inline instructions.
func renderInvocation(entry *tumbler.TestEntry) string {
	if entry.Target != nil {
		return fmt.Sprintf("%s().%s()", entry.Target.Type, entry.Target.Method)
	}
	return strings.TrimRight(entry.Inline, "\n")
}

// CheckSyntax parses the artifact body as Starlark and reports the first
// syntax error, naming the artifact. A malformed artifact aborts the run
// before anything is written for it.
func CheckSyntax(filename, body string) error {
	_, err := syntax.Parse(filename, body, 0)
	if err != nil {
		return fmt.Errorf("artifact %s is not valid Starlark: %w", filename, err)
	}
	return nil
}

// NormalizeFilename appends the script extension to a test entry name
// unless it is already present.
func NormalizeFilename(name string) string {
	if strings.HasSuffix(name, ScriptExtension) {
		return name
	}
	return name + ScriptExtension
}
