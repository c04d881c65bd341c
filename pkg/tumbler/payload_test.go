package tumbler

import (
	"errors"
	"testing"
)

func TestPayloadRegisterDuplicate(t *testing.T) {
	p := NewPayload()
	if err := p.Register(&TestEntry{Name: "Foo", Inline: "pass"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	err := p.Register(&TestEntry{Name: "Foo", Inline: "other"})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if !IsDuplicateTest(err) {
		t.Errorf("expected duplicate_test class, got %v", err)
	}

	var genErr *GenError
	if !errors.As(err, &genErr) || genErr.Name != "Foo" {
		t.Errorf("expected error to name the duplicate entry, got %v", err)
	}

	// The original entry survives untouched
	entry, ok := p.Get("Foo")
	if !ok || entry.Inline != "pass" {
		t.Errorf("original entry was altered: %+v", entry)
	}
}

func TestPayloadNamesSorted(t *testing.T) {
	p := NewPayload()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := p.Register(&TestEntry{Name: name, Inline: "pass"}); err != nil {
			t.Fatal(err)
		}
	}

	names := p.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestPayloadCloneIsolation(t *testing.T) {
	p := NewPayload()
	entry := &TestEntry{
		Name:     "Foo",
		Target:   &TestTarget{Type: "Suite", Method: "run"},
		Requires: []string{"lib/a.star"},
	}
	if err := p.Register(entry); err != nil {
		t.Fatal(err)
	}

	clone := p.Clone()

	// Mutate the clone's entry in every way a provider could
	cloned, _ := clone.Get("Foo")
	cloned.Target.Method = "changed"
	cloned.Requires[0] = "lib/changed.star"
	clone.Remove("Foo")
	clone.Put(&TestEntry{Name: "Bar", Inline: "pass"})

	original, ok := p.Get("Foo")
	if !ok {
		t.Fatal("original payload lost its entry")
	}
	if original.Target.Method != "run" {
		t.Error("clone mutation leaked into original target")
	}
	if original.Requires[0] != "lib/a.star" {
		t.Error("clone mutation leaked into original requires")
	}
	if _, ok := p.Get("Bar"); ok {
		t.Error("entry added to clone appeared in original")
	}
}
