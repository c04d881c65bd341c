package providers

import (
	"testing"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

func TestSettingSpecBuildEnv(t *testing.T) {
	spec := SettingSpec{Kind: tumbler.KindEnvVar, SettingName: "DRIVER"}

	s, err := spec.Build("1.0")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Render(); got != `setenv("DRIVER", "1.0")` {
		t.Errorf("unexpected render: %q", got)
	}

	// nil value unsets the variable
	s, err = spec.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Render(); got != `unsetenv("DRIVER")` {
		t.Errorf("unexpected render: %q", got)
	}

	if _, err := (SettingSpec{Kind: tumbler.KindEnvVar}).Build("x"); err == nil {
		t.Error("env spec without a name must fail")
	}
}

func TestSettingSpecBuildBinding(t *testing.T) {
	spec := SettingSpec{Kind: tumbler.KindBinding, SettingName: "timeout"}
	s, err := spec.Build(30)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind() != tumbler.KindBinding || s.Name() != "timeout" {
		t.Errorf("unexpected setting: kind=%s name=%s", s.Kind(), s.Name())
	}
}

func TestSettingSpecBuildImport(t *testing.T) {
	spec := SettingSpec{Kind: tumbler.KindImport}

	s, err := spec.Build("lib/all.star")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Render(); got != `require("lib/all.star")` {
		t.Errorf("unexpected render: %q", got)
	}

	s, err = spec.Build([]interface{}{"lib/checks.star", "check"})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Render(); got != `load("lib/checks.star", "check")` {
		t.Errorf("unexpected render: %q", got)
	}

	if _, err := spec.Build(42); err == nil {
		t.Error("non-string import value must fail")
	}
	if _, err := spec.Build([]interface{}{}); err == nil {
		t.Error("empty import list must fail")
	}
}

func TestSettingSpecBuildMeta(t *testing.T) {
	spec := SettingSpec{Kind: tumbler.KindMeta, SettingName: "hint"}
	s, err := spec.Build("fast")
	if err != nil {
		t.Fatal(err)
	}
	if s.Render() != "" {
		t.Error("meta settings must render empty")
	}
}

func TestSettingSpecBuildUnknownKind(t *testing.T) {
	if _, err := (SettingSpec{Kind: "bogus", SettingName: "x"}).Build("v"); err == nil {
		t.Error("unknown kind must fail")
	}
}
