package providers

import (
	"context"
	"testing"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

func bindingSpec(name string) SettingSpec {
	return SettingSpec{Kind: tumbler.KindBinding, SettingName: name}
}

func scriptRequest(t *testing.T, path []string, tc *tumbler.Context, names ...string) tumbler.ProvideRequest {
	t.Helper()
	payload := tumbler.NewPayload()
	for _, name := range names {
		if err := payload.Register(&tumbler.TestEntry{Name: name, Inline: "pass"}); err != nil {
			t.Fatal(err)
		}
	}
	if tc == nil {
		tc = tumbler.NewContext(nil)
	}
	return tumbler.ProvideRequest{Path: path, Context: tc, Payload: payload}
}

func TestScriptProviderMainPhase(t *testing.T) {
	src := `
def main(path, lookup, tests):
    return {"v1": "1.0", "v2": "2.0"}
`
	p, err := NewScriptProviderFromSource("versions", bindingSpec("version"), "versions.star", src)
	if err != nil {
		t.Fatal(err)
	}

	variants, err := p.Main(context.Background(), scriptRequest(t, nil, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants["v1"].Render() != `version = "1.0"` {
		t.Errorf("unexpected render: %q", variants["v1"].Render())
	}
}

func TestScriptProviderMissingPhaseContributesNothing(t *testing.T) {
	src := `
def main(path, lookup, tests):
    return {"only": 1}
`
	p, err := NewScriptProviderFromSource("partial", bindingSpec("x"), "partial.star", src)
	if err != nil {
		t.Fatal(err)
	}

	variants, err := p.Initial(context.Background(), scriptRequest(t, nil, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if variants != nil {
		t.Errorf("undefined phase must contribute nothing, got %v", variants)
	}
}

func TestScriptProviderNoneReturn(t *testing.T) {
	src := `
def main(path, lookup, tests):
    return None
`
	p, err := NewScriptProviderFromSource("silent", bindingSpec("x"), "silent.star", src)
	if err != nil {
		t.Fatal(err)
	}

	variants, err := p.Main(context.Background(), scriptRequest(t, nil, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 0 {
		t.Errorf("None return must produce no variants, got %v", variants)
	}
}

func TestScriptProviderSeesPath(t *testing.T) {
	src := `
def main(path, lookup, tests):
    if len(path) > 0 and path[0] == "legacy":
        return {}
    return {"modern": True}
`
	p, err := NewScriptProviderFromSource("pathy", bindingSpec("mode"), "pathy.star", src)
	if err != nil {
		t.Fatal(err)
	}

	variants, err := p.Main(context.Background(), scriptRequest(t, []string{"legacy"}, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 0 {
		t.Errorf("expected empty mapping on legacy path, got %v", variants)
	}

	variants, err = p.Main(context.Background(), scriptRequest(t, []string{"current"}, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 1 {
		t.Errorf("expected one variant off the legacy path, got %v", variants)
	}
}

func TestScriptProviderLookup(t *testing.T) {
	src := `
def main(path, lookup, tests):
    driver = lookup("DRIVER", "env")
    if driver == None:
        return {"default": "none"}
    return {"for_" + driver: driver}
`
	p, err := NewScriptProviderFromSource("dependent", bindingSpec("sel"), "dependent.star", src)
	if err != nil {
		t.Fatal(err)
	}

	tc := tumbler.NewContext(nil, tumbler.NewEnvVar("DRIVER", "v2"))
	variants, err := p.Main(context.Background(), scriptRequest(t, nil, tc, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := variants["for_v2"]; !ok {
		t.Errorf("expected variant keyed by looked-up value, got %v", variants)
	}

	variants, err = p.Main(context.Background(), scriptRequest(t, nil, nil, "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := variants["default"]; !ok {
		t.Errorf("expected default variant for missing setting, got %v", variants)
	}
}

func TestScriptProviderMutatesPayload(t *testing.T) {
	src := `
def main(path, lookup, tests):
    tests.pop("Slow", None)
    tests["Extra"] = {"inline": "check_extra()"}
    tests["Fast"]["trailing"] = "teardown()"
    return {"only": 1}
`
	p, err := NewScriptProviderFromSource("filter", bindingSpec("x"), "filter.star", src)
	if err != nil {
		t.Fatal(err)
	}

	req := scriptRequest(t, nil, nil, "Fast", "Slow")
	if _, err := p.Main(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if _, ok := req.Payload.Get("Slow"); ok {
		t.Error("removed entry still present in payload")
	}
	extra, ok := req.Payload.Get("Extra")
	if !ok || extra.Inline != "check_extra()" {
		t.Errorf("added entry missing or wrong: %+v", extra)
	}
	fast, ok := req.Payload.Get("Fast")
	if !ok || fast.Trailing != "teardown()" {
		t.Errorf("mutated entry not synced: %+v", fast)
	}
}

func TestScriptProviderBadReturnValue(t *testing.T) {
	src := `
def main(path, lookup, tests):
    return ["not", "a", "dict"]
`
	p, err := NewScriptProviderFromSource("bad", bindingSpec("x"), "bad.star", src)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Main(context.Background(), scriptRequest(t, nil, nil, "Foo")); err == nil {
		t.Error("non-dict return must fail")
	}
}

func TestScriptProviderLoadFailure(t *testing.T) {
	if _, err := NewScriptProviderFromSource("broken", bindingSpec("x"), "broken.star", "def broken(:\n"); err == nil {
		t.Error("malformed script must fail to load")
	}
}

func TestScriptProviderRuntimeFailure(t *testing.T) {
	src := `
def main(path, lookup, tests):
    fail("nothing to enumerate")
`
	p, err := NewScriptProviderFromSource("failing", bindingSpec("x"), "failing.star", src)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Main(context.Background(), scriptRequest(t, nil, nil, "Foo")); err == nil {
		t.Error("script failure must propagate")
	}
}
