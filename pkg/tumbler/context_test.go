package tumbler

import (
	"strings"
	"testing"
)

func TestContextLookupOverride(t *testing.T) {
	parent := NewContext(nil, NewGlobalBinding("driver", "1.0"))
	child := parent.NewChild(NewGlobalBinding("driver", "2.0"))

	value, found := child.Lookup("driver", KindBinding)
	if !found {
		t.Fatal("expected lookup to find driver binding")
	}
	if value != "2.0" {
		t.Errorf("expected child value 2.0, got %v", value)
	}

	// Deriving a child never mutates the parent
	value, found = parent.Lookup("driver", KindBinding)
	if !found || value != "1.0" {
		t.Errorf("expected parent value 1.0, got %v (found=%v)", value, found)
	}
}

func TestContextLookupKindsDoNotAlias(t *testing.T) {
	ctx := NewContext(nil,
		NewGlobalBinding("FOO", "binding-value"),
		NewEnvVar("FOO", "env-value"),
	)

	value, found := ctx.Lookup("FOO", KindBinding)
	if !found || value != "binding-value" {
		t.Errorf("binding lookup returned %v (found=%v)", value, found)
	}

	value, found = ctx.Lookup("FOO", KindEnvVar)
	if !found || value != "env-value" {
		t.Errorf("env lookup returned %v (found=%v)", value, found)
	}

	if _, found := ctx.Lookup("FOO", KindImport); found {
		t.Error("import lookup should not match env or binding settings")
	}
}

func TestContextLookupNotFound(t *testing.T) {
	ctx := NewContext(nil, NewGlobalBinding("a", 1))
	if _, found := ctx.Lookup("b", KindBinding); found {
		t.Error("expected lookup miss for unknown name")
	}
}

func TestContextLookupMostRecentWins(t *testing.T) {
	ctx := NewContext(nil)
	ctx.Push(NewGlobalBinding("x", "first"))
	ctx.Push(NewGlobalBinding("x", "second"))

	value, found := ctx.Lookup("x", KindBinding)
	if !found || value != "second" {
		t.Errorf("expected most recently pushed value, got %v", value)
	}
}

func TestContextSerializeReverseOrder(t *testing.T) {
	ctx := NewContext(nil)
	ctx.Push(NewGlobalBinding("first", 1))
	ctx.Push(NewGlobalBinding("second", 2))

	out := ctx.Serialize()
	firstIdx := strings.Index(out, "first = 1")
	secondIdx := strings.Index(out, "second = 2")
	if firstIdx < 0 || secondIdx < 0 {
		t.Fatalf("serialized output missing settings: %q", out)
	}
	// Most recently pushed renders first
	if secondIdx > firstIdx {
		t.Errorf("expected later setting before earlier one, got %q", out)
	}
}

func TestContextSerializeChildBeforeParent(t *testing.T) {
	parent := NewContext(nil, NewGlobalBinding("outer", "p"))
	child := parent.NewChild(NewGlobalBinding("inner", "c"))

	out := child.Serialize()
	innerIdx := strings.Index(out, "inner")
	outerIdx := strings.Index(out, "outer")
	if innerIdx < 0 || outerIdx < 0 {
		t.Fatalf("serialized output missing settings: %q", out)
	}
	if innerIdx > outerIdx {
		t.Errorf("expected child settings before parent settings, got %q", out)
	}
}

func TestContextSerializeSkipsMeta(t *testing.T) {
	ctx := NewContext(nil,
		NewGlobalBinding("visible", 1),
		NewMetaInfo("hidden", "signal"),
	)

	out := ctx.Serialize()
	if strings.Contains(out, "hidden") || strings.Contains(out, "signal") {
		t.Errorf("meta settings must never be emitted, got %q", out)
	}
	if !strings.Contains(out, "visible = 1") {
		t.Errorf("expected binding in output, got %q", out)
	}
}

func TestContextMetaLookup(t *testing.T) {
	parent := NewContext(nil, NewMetaInfo("mode", "fast"))
	child := parent.NewChild(NewGlobalBinding("x", 1))

	value, found := child.Lookup("mode", KindMeta)
	if !found || value != "fast" {
		t.Errorf("expected inherited meta value, got %v (found=%v)", value, found)
	}
}

func TestContextLen(t *testing.T) {
	parent := NewContext(nil, NewGlobalBinding("a", 1), NewGlobalBinding("b", 2))
	child := parent.NewChild(NewGlobalBinding("c", 3))

	if got := child.Len(); got != 3 {
		t.Errorf("expected 3 visible settings, got %d", got)
	}
	if got := parent.Len(); got != 2 {
		t.Errorf("expected parent untouched with 2 settings, got %d", got)
	}
}
