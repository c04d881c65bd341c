package config

import "github.com/crossgen/crossgen/pkg/providers"

// SuiteConfig is the caller-facing configuration surface for a generation
// run: the input tests, the ordered variant providers, and the output
// destination with its overwrite permissions.
type SuiteConfig struct {
	// Name identifies the suite in logs and events.
	Name string `json:"name" validate:"required"`

	// Prologue is optional source text emitted at the top of every
	// generated artifact.
	Prologue string `json:"prologue,omitempty"`

	// Output configures the artifact destination.
	Output OutputConfig `json:"output" validate:"required"`

	// Tests are the input test cases. Names must be unique; duplicates are
	// rejected at registration time.
	Tests []TestConfig `json:"tests" validate:"required,min=1,dive"`

	// Providers is the ordered list of variant dimensions. Order is the
	// recursion order of the engine.
	Providers []ProviderRef `json:"providers,omitempty" validate:"dive"`

	// ProviderDirs are directories scanned for script-provider bundles
	// before the provider list is resolved.
	ProviderDirs []string `json:"provider_dirs,omitempty"`
}

// OutputConfig configures the artifact destination root.
type OutputConfig struct {
	// Dir is the destination root for generated artifacts.
	Dir string `json:"dir" validate:"required"`

	// OverwriteDir permits generating into an existing output directory.
	OverwriteDir bool `json:"overwrite_dir,omitempty"`

	// OverwriteFiles permits replacing individual existing artifacts.
	OverwriteFiles bool `json:"overwrite_files,omitempty"`
}

// TestConfig declares one input test case.
type TestConfig struct {
	// Name is the unique test name; it becomes the artifact file name.
	Name string `json:"name" validate:"required"`

	// Target is the type+method the generated script invokes.
	Target *TargetConfig `json:"target,omitempty"`

	// Inline is raw source invoked instead of a target.
	Inline string `json:"inline,omitempty"`

	// Prologue is emitted before the accumulated settings.
	Prologue string `json:"prologue,omitempty"`

	// Trailing is emitted after the invocation.
	Trailing string `json:"trailing,omitempty"`

	// Requires lists auxiliary libraries the script loads.
	Requires []string `json:"requires,omitempty"`
}

// TargetConfig is a type+method invocation target.
type TargetConfig struct {
	// Type is the type whose method is invoked.
	Type string `json:"type" validate:"required"`

	// Method is the method name to invoke.
	Method string `json:"method" validate:"required"`
}

// ProviderRef declares one dimension of the combination tree. A ref either
// names a provider registered out of band (kind absent or "registry"),
// declares an inline matrix (kind "matrix"), or points at a provider
// script (kind "script").
type ProviderRef struct {
	// Name is the provider name; for registry refs it must match a
	// registered provider.
	Name string `json:"name" validate:"required"`

	// Kind selects how the provider is built: registry, matrix, or script.
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=registry matrix script"`

	// Setting describes how variant values become context settings, for
	// matrix and script refs.
	Setting *providers.SettingSpec `json:"setting,omitempty"`

	// Values is the variant table for matrix refs.
	Values map[string]interface{} `json:"values,omitempty"`

	// Script is the provider script path for script refs, relative to the
	// suite configuration file.
	Script string `json:"script,omitempty"`
}
