package tumbler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SettingKind identifies the concrete kind of a Setting. Lookups are scoped
// by (name, kind) pairs so that kinds never alias each other: an environment
// variable named "FOO" and a global binding named "FOO" do not collide.
type SettingKind string

const (
	// KindEnvVar is a scoped environment variable assignment or removal.
	KindEnvVar SettingKind = "env"

	// KindBinding is a process-wide named binding in the generated script.
	KindBinding SettingKind = "binding"

	// KindImport is a module import declaration in the generated script.
	KindImport SettingKind = "import"

	// KindMeta carries inter-provider signaling only and is never emitted.
	KindMeta SettingKind = "meta"
)

// Setting is one named, typed declaration contributed to a Context.
// Settings are immutable after construction. The closed set of
// implementations is EnvVar, GlobalBinding, ModuleImport, and MetaInfo.
type Setting interface {
	// Name returns the setting name used for (name, kind) lookup.
	Name() string

	// Kind returns the setting kind used for (name, kind) lookup.
	Kind() SettingKind

	// Value returns the setting value for lookup consumers.
	Value() interface{}

	// Render returns the setting as literal source text in the generated
	// script, or the empty string for settings that are never emitted.
	Render() string
}

// EnvVar declares an environment variable for the scope of a generated test
// script. When Unset is false the variable is assigned Val and the harness
// tears the assignment down afterwards; when Unset is true the variable is
// removed for the scope, with any prior value restored on exit.
type EnvVar struct {
	VarName string
	Val     interface{}
	Unset   bool
}

// NewEnvVar creates a setting that assigns an environment variable.
func NewEnvVar(name string, value interface{}) *EnvVar {
	return &EnvVar{VarName: name, Val: value}
}

// NewEnvVarUnset creates a setting that removes an environment variable
// for the scope of the generated script.
func NewEnvVarUnset(name string) *EnvVar {
	return &EnvVar{VarName: name, Unset: true}
}

// Name implements Setting.
func (s *EnvVar) Name() string { return s.VarName }

// Kind implements Setting.
func (s *EnvVar) Kind() SettingKind { return KindEnvVar }

// Value implements Setting.
func (s *EnvVar) Value() interface{} { return s.Val }

// Render implements Setting.
func (s *EnvVar) Render() string {
	if s.Unset {
		return fmt.Sprintf("unsetenv(%s)", RenderLiteral(s.VarName))
	}
	return fmt.Sprintf("setenv(%s, %s)", RenderLiteral(s.VarName), RenderLiteral(s.Val))
}

// GlobalBinding declares a process-wide named binding in the generated script.
type GlobalBinding struct {
	BindName string
	Val      interface{}
}

// NewGlobalBinding creates a global binding setting.
func NewGlobalBinding(name string, value interface{}) *GlobalBinding {
	return &GlobalBinding{BindName: name, Val: value}
}

// Name implements Setting.
func (s *GlobalBinding) Name() string { return s.BindName }

// Kind implements Setting.
func (s *GlobalBinding) Kind() SettingKind { return KindBinding }

// Value implements Setting.
func (s *GlobalBinding) Value() interface{} { return s.Val }

// Render implements Setting.
func (s *GlobalBinding) Render() string {
	return fmt.Sprintf("%s = %s", s.BindName, RenderLiteral(s.Val))
}

// ModuleImport declares an import of a module with a symbol argument list.
// With one or more arguments it renders as a Starlark load statement; with
// none it renders as a harness-level require call, since load demands at
// least one symbol.
type ModuleImport struct {
	ModName string
	Args    []string
}

// NewModuleImport creates a module import setting.
func NewModuleImport(name string, args ...string) *ModuleImport {
	return &ModuleImport{ModName: name, Args: args}
}

// Name implements Setting.
func (s *ModuleImport) Name() string { return s.ModName }

// Kind implements Setting.
func (s *ModuleImport) Kind() SettingKind { return KindImport }

// Value implements Setting.
func (s *ModuleImport) Value() interface{} { return s.Args }

// Render implements Setting.
func (s *ModuleImport) Render() string {
	if len(s.Args) == 0 {
		return fmt.Sprintf("require(%s)", RenderLiteral(s.ModName))
	}
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, RenderLiteral(s.ModName))
	for _, arg := range s.Args {
		parts = append(parts, RenderLiteral(arg))
	}
	return fmt.Sprintf("load(%s)", strings.Join(parts, ", "))
}

// MetaInfo carries a value between providers along one path of the
// combination tree. It renders to nothing and never appears in artifacts.
type MetaInfo struct {
	MetaName string
	Val      interface{}
}

// NewMetaInfo creates a meta-information setting.
func NewMetaInfo(name string, value interface{}) *MetaInfo {
	return &MetaInfo{MetaName: name, Val: value}
}

// Name implements Setting.
func (s *MetaInfo) Name() string { return s.MetaName }

// Kind implements Setting.
func (s *MetaInfo) Kind() SettingKind { return KindMeta }

// Value implements Setting.
func (s *MetaInfo) Value() interface{} { return s.Val }

// Render implements Setting.
func (s *MetaInfo) Render() string { return "" }

// RenderLiteral renders a Go value as a deterministic Starlark literal.
// Map keys are emitted in sorted order so identical inputs always produce
// byte-identical artifacts.
func RenderLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(val)
	case []string:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = RenderLiteral(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []interface{}:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = RenderLiteral(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = RenderLiteral(k) + ": " + RenderLiteral(val[k])
		}
		return "{" + strings.Join(items, ", ") + "}"
	default:
		// Unknown types fall back to their quoted string form so rendering
		// stays total and deterministic.
		return strconv.Quote(fmt.Sprintf("%v", val))
	}
}
