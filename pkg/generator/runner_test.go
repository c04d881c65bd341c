package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/providers"
	"github.com/crossgen/crossgen/pkg/telemetry"
	"github.com/crossgen/crossgen/pkg/tumbler"
)

func quietTelemetry() *telemetry.Telemetry {
	return &telemetry.Telemetry{Logger: telemetry.NopLogger()}
}

func matrixRef(name, envVar string, values map[string]interface{}) config.ProviderRef {
	return config.ProviderRef{
		Name:    name,
		Kind:    "matrix",
		Setting: &providers.SettingSpec{Kind: tumbler.KindEnvVar, SettingName: envVar},
		Values:  values,
	}
}

func TestRunnerEndToEnd(t *testing.T) {
	base := t.TempDir()
	cfg := &config.SuiteConfig{
		Name:     "matrix-suite",
		Prologue: "# generated",
		Output:   config.OutputConfig{Dir: "out"},
		Tests: []config.TestConfig{
			{Name: "Smoke", Target: &config.TargetConfig{Type: "Smoke", Method: "run"}},
			{Name: "Deep", Inline: "deep_check()"},
		},
		Providers: []config.ProviderRef{
			matrixRef("drivers", "DRIVER", map[string]interface{}{"v1": "1.0", "v2": "2.0"}),
			matrixRef("modes", "MODE", map[string]interface{}{"batch": "b", "stream": "s"}),
		},
	}

	runner := NewRunner(cfg, base, nil, quietTelemetry())
	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.Leaves != 4 {
		t.Errorf("expected 4 leaves, got %d", result.Leaves)
	}
	if result.Artifacts != 8 {
		t.Errorf("expected 8 artifacts, got %d", result.Artifacts)
	}

	body, err := os.ReadFile(filepath.Join(base, "out", "v1", "batch", "Smoke.star"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# generated\n\nsetenv(\"MODE\", \"b\")\nsetenv(\"DRIVER\", \"1.0\")\n\nSmoke().run()\n"
	if string(body) != want {
		t.Errorf("unexpected artifact body:\n%q\nwant\n%q", body, want)
	}
}

func TestRunnerZeroDimensions(t *testing.T) {
	base := t.TempDir()
	cfg := &config.SuiteConfig{
		Name:   "flat",
		Output: config.OutputConfig{Dir: "out"},
		Tests:  []config.TestConfig{{Name: "Only", Inline: "pass"}},
	}

	result, err := NewRunner(cfg, base, nil, quietTelemetry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Leaves != 1 || result.Artifacts != 1 {
		t.Errorf("expected a single leaf and artifact, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(base, "out", "Only.star")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestRunnerEmptyRun(t *testing.T) {
	base := t.TempDir()
	cfg := &config.SuiteConfig{
		Name:   "pruned",
		Output: config.OutputConfig{Dir: "out"},
		Tests:  []config.TestConfig{{Name: "Only", Inline: "pass"}},
		Providers: []config.ProviderRef{
			matrixRef("empty", "X", nil),
		},
	}

	result, err := NewRunner(cfg, base, nil, quietTelemetry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Leaves != 0 || result.Artifacts != 0 {
		t.Errorf("expected fully pruned run, got %+v", result)
	}
}

func TestRunnerOutputConflictAbortsBeforeWriting(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "out"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &config.SuiteConfig{
		Name:   "conflict",
		Output: config.OutputConfig{Dir: "out"},
		Tests:  []config.TestConfig{{Name: "Only", Inline: "pass"}},
	}

	_, err := NewRunner(cfg, base, nil, quietTelemetry()).Run(context.Background())
	if err == nil {
		t.Fatal("expected existing output directory to abort the run")
	}
	if !tumbler.IsOutputConflict(err) {
		t.Errorf("expected output_conflict class, got %v", err)
	}

	entries, readErr := os.ReadDir(filepath.Join(base, "out"))
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("nothing may be written after a preflight conflict, found %v", entries)
	}
}

func TestRunnerDuplicateTestNames(t *testing.T) {
	base := t.TempDir()
	cfg := &config.SuiteConfig{
		Name:   "dupes",
		Output: config.OutputConfig{Dir: "out"},
		Tests: []config.TestConfig{
			{Name: "Same", Inline: "pass"},
			{Name: "Same", Inline: "fail"},
		},
	}

	_, err := NewRunner(cfg, base, nil, quietTelemetry()).Run(context.Background())
	if err == nil {
		t.Fatal("expected duplicate test names to fail")
	}
	if !tumbler.IsDuplicateTest(err) {
		t.Errorf("expected duplicate_test class, got %v", err)
	}
}

func TestRunnerRegistryRef(t *testing.T) {
	base := t.TempDir()
	registry := providers.NewRegistry(nil)
	err := registry.Register(providers.NewEnvMatrixProvider("shared", "SHARED", map[string]interface{}{
		"a": "1",
	}))
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.SuiteConfig{
		Name:      "registry",
		Output:    config.OutputConfig{Dir: "out"},
		Tests:     []config.TestConfig{{Name: "Only", Inline: "pass"}},
		Providers: []config.ProviderRef{{Name: "shared"}},
	}

	result, err := NewRunner(cfg, base, registry, quietTelemetry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Artifacts != 1 {
		t.Errorf("expected one artifact, got %d", result.Artifacts)
	}

	cfg.Providers = []config.ProviderRef{{Name: "unknown"}}
	cfg.Output.OverwriteDir = true
	if _, err := NewRunner(cfg, base, registry, quietTelemetry()).Run(context.Background()); err == nil {
		t.Error("expected unknown registry ref to fail")
	}
}

func TestRunnerScriptRefAndProviderDirs(t *testing.T) {
	base := t.TempDir()

	// Inline script ref, path relative to the suite base directory
	if err := os.WriteFile(filepath.Join(base, "versions.star"), []byte(`
def main(path, lookup, tests):
    return {"v1": "1.0"}
`), 0644); err != nil {
		t.Fatal(err)
	}

	// Script-provider bundle discovered via provider_dirs
	bundleDir := filepath.Join(base, "bundles", "modes")
	if err := os.MkdirAll(bundleDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, providers.ManifestFilename), []byte(`
name: modes
setting:
  kind: env
  name: MODE
script: provider.star
`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "provider.star"), []byte(`
def main(path, lookup, tests):
    return {"batch": "b", "stream": "s"}
`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.SuiteConfig{
		Name:         "scripted",
		Output:       config.OutputConfig{Dir: "out"},
		Tests:        []config.TestConfig{{Name: "Only", Inline: "pass"}},
		ProviderDirs: []string{"bundles"},
		Providers: []config.ProviderRef{
			{
				Name:    "versions",
				Kind:    "script",
				Setting: &providers.SettingSpec{Kind: tumbler.KindBinding, SettingName: "version"},
				Script:  "versions.star",
			},
			{Name: "modes"},
		},
	}

	result, err := NewRunner(cfg, base, nil, quietTelemetry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Leaves != 2 || result.Artifacts != 2 {
		t.Errorf("expected 1x2 tree, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(base, "out", "v1", "stream", "Only.star")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}
