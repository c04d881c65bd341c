package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a script-provider bundle: a directory containing a
// manifest.yaml and the provider's Starlark script.
type Manifest struct {
	// Name is the provider name used in suite configuration.
	Name string `yaml:"name"`

	// Description describes the dimension this provider contributes.
	Description string `yaml:"description,omitempty"`

	// Setting describes how variant values become context settings.
	Setting SettingSpec `yaml:"setting"`

	// Script is the provider script path, relative to the manifest.
	Script string `yaml:"script"`
}

// ManifestFilename is the expected manifest file name inside a bundle.
const ManifestFilename = "manifest.yaml"

// LoadManifest reads and validates a provider manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s: name is required", path)
	}
	if m.Script == "" {
		return nil, fmt.Errorf("manifest %s: script is required", path)
	}
	if m.Setting.Kind == "" {
		return nil, fmt.Errorf("manifest %s: setting.kind is required", path)
	}

	return &m, nil
}

// NewProviderFromManifest loads the script provider a manifest describes.
func NewProviderFromManifest(manifestPath string) (*ScriptProvider, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	scriptPath := m.Script
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(filepath.Dir(manifestPath), scriptPath)
	}

	return NewScriptProvider(m.Name, m.Setting, scriptPath)
}
