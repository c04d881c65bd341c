package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

// Phase function names a provider script may define. Scripts implement any
// subset; missing functions simply contribute nothing to the merged
// variant mapping for their dimension.
const (
	phaseFuncInitial = "initial"
	phaseFuncMain    = "main"
	phaseFuncFinal   = "final"
)

// ScriptProvider is a dimension implemented as a Starlark script. The
// script is executed once at load time; each phase call invokes the
// matching global function with three arguments:
//
//	def main(path, lookup, tests):
//	    ...
//	    return {"variant_a": "1.0", "variant_b": "2.0"}
//
// path is the accumulated variant path (list of strings), lookup is a
// function lookup(name, kind) over the branch context (returns None when
// not found), and tests is a mutable dict of test entries keyed by name.
// Removing, altering, or adding entries in tests specializes the payload
// for the branch being constructed. The return value is a dict of variant
// name to value (wrapped in the provider's setting spec) or None.
type ScriptProvider struct {
	name     string
	spec     SettingSpec
	filename string
	globals  starlark.StringDict
}

// NewScriptProvider loads a provider script from disk.
func NewScriptProvider(name string, spec SettingSpec, scriptPath string) (*ScriptProvider, error) {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider script: %w", err)
	}
	return NewScriptProviderFromSource(name, spec, filepath.Base(scriptPath), string(src))
}

// NewScriptProviderFromSource loads a provider script from source text.
func NewScriptProviderFromSource(name string, spec SettingSpec, filename, src string) (*ScriptProvider, error) {
	thread := &starlark.Thread{
		Name: "crossgen:" + name,
		Print: func(_ *starlark.Thread, msg string) {
			// Suppressed; provider scripts have no stdout
		},
	}

	predeclared := starlark.StringDict{
		"struct": starlarkstruct.Default,
	}

	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("provider script %s failed to load: %w", filename, err)
	}

	return &ScriptProvider{
		name:     name,
		spec:     spec,
		filename: filename,
		globals:  globals,
	}, nil
}

// Name implements tumbler.Provider.
func (p *ScriptProvider) Name() string { return p.name }

// Initial implements tumbler.InitialPhase.
func (p *ScriptProvider) Initial(ctx context.Context, req tumbler.ProvideRequest) (tumbler.Variants, error) {
	return p.callPhase(ctx, phaseFuncInitial, req)
}

// Main implements tumbler.MainPhase.
func (p *ScriptProvider) Main(ctx context.Context, req tumbler.ProvideRequest) (tumbler.Variants, error) {
	return p.callPhase(ctx, phaseFuncMain, req)
}

// Final implements tumbler.FinalPhase.
func (p *ScriptProvider) Final(ctx context.Context, req tumbler.ProvideRequest) (tumbler.Variants, error) {
	return p.callPhase(ctx, phaseFuncFinal, req)
}

// callPhase invokes one phase function if the script defines it, syncs any
// payload mutations back, and converts the returned dict into variants.
func (p *ScriptProvider) callPhase(ctx context.Context, phase string, req tumbler.ProvideRequest) (tumbler.Variants, error) {
	fn, ok := p.globals[phase]
	if !ok {
		return nil, nil
	}
	callable, ok := fn.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("provider script %s: %q is not callable", p.filename, phase)
	}

	pathList := make([]starlark.Value, len(req.Path))
	for i, seg := range req.Path {
		pathList[i] = starlark.String(seg)
	}

	testsDict, err := payloadToDict(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to convert payload: %w", err)
	}

	thread := &starlark.Thread{
		Name: "crossgen:" + p.name + ":" + phase,
		Print: func(_ *starlark.Thread, msg string) {
			// Suppressed
		},
	}

	args := starlark.Tuple{
		starlark.NewList(pathList),
		newLookupBuiltin(req.Context),
		testsDict,
	}

	result, err := starlark.Call(thread, callable, args, nil)
	if err != nil {
		return nil, fmt.Errorf("phase %s failed: %w", phase, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := syncPayload(req.Payload, testsDict); err != nil {
		return nil, fmt.Errorf("phase %s produced an invalid test entry: %w", phase, err)
	}

	return p.variantsFromResult(phase, result)
}

// variantsFromResult converts a phase's return value into variants. None
// contributes nothing; any other non-dict value is an error.
func (p *ScriptProvider) variantsFromResult(phase string, result starlark.Value) (tumbler.Variants, error) {
	if result == starlark.None {
		return nil, nil
	}
	dict, ok := result.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("phase %s must return a dict or None, got %s", phase, result.Type())
	}

	variants := make(tumbler.Variants, dict.Len())
	for _, item := range dict.Items() {
		name, ok := item[0].(starlark.String)
		if !ok {
			return nil, fmt.Errorf("phase %s variant names must be strings, got %s", phase, item[0].Type())
		}
		value, err := fromStarlarkValue(item[1])
		if err != nil {
			return nil, fmt.Errorf("phase %s variant %s: %w", phase, name, err)
		}
		setting, err := p.spec.Build(value)
		if err != nil {
			return nil, fmt.Errorf("phase %s variant %s: %w", phase, name, err)
		}
		variants[string(name)] = setting
	}
	return variants, nil
}

// newLookupBuiltin returns a lookup(name, kind) function over the branch
// context. Missing settings return None.
func newLookupBuiltin(tc *tumbler.Context) *starlark.Builtin {
	return starlark.NewBuiltin("lookup", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name, kind string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "kind", &kind); err != nil {
			return nil, err
		}
		value, found := tc.Lookup(name, tumbler.SettingKind(kind))
		if !found {
			return starlark.None, nil
		}
		return toStarlarkValue(value)
	})
}

// payloadToDict converts the payload into a mutable Starlark dict keyed by
// entry name.
func payloadToDict(p *tumbler.Payload) (*starlark.Dict, error) {
	dict := starlark.NewDict(p.Len())
	for _, name := range p.Names() {
		entry, _ := p.Get(name)
		entryDict, err := entryToDict(entry)
		if err != nil {
			return nil, err
		}
		if err := dict.SetKey(starlark.String(name), entryDict); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// entryToDict converts one test entry into a Starlark dict.
func entryToDict(e *tumbler.TestEntry) (*starlark.Dict, error) {
	dict := starlark.NewDict(6)

	set := func(key string, v starlark.Value) error {
		return dict.SetKey(starlark.String(key), v)
	}

	if err := set("name", starlark.String(e.Name)); err != nil {
		return nil, err
	}
	if e.Target != nil {
		target := starlark.NewDict(2)
		if err := target.SetKey(starlark.String("type"), starlark.String(e.Target.Type)); err != nil {
			return nil, err
		}
		if err := target.SetKey(starlark.String("method"), starlark.String(e.Target.Method)); err != nil {
			return nil, err
		}
		if err := set("target", target); err != nil {
			return nil, err
		}
	}
	if e.Inline != "" {
		if err := set("inline", starlark.String(e.Inline)); err != nil {
			return nil, err
		}
	}
	if e.Prologue != "" {
		if err := set("prologue", starlark.String(e.Prologue)); err != nil {
			return nil, err
		}
	}
	if e.Trailing != "" {
		if err := set("trailing", starlark.String(e.Trailing)); err != nil {
			return nil, err
		}
	}
	if len(e.Requires) > 0 {
		requires, err := toStarlarkValue(e.Requires)
		if err != nil {
			return nil, err
		}
		if err := set("requires", requires); err != nil {
			return nil, err
		}
	}

	return dict, nil
}

// syncPayload reflects script mutations of the tests dict back into the
// branch payload: removed names are removed, remaining and new names are
// rebuilt from their dict state.
func syncPayload(p *tumbler.Payload, tests *starlark.Dict) error {
	seen := make(map[string]bool, tests.Len())

	for _, item := range tests.Items() {
		name, ok := item[0].(starlark.String)
		if !ok {
			return fmt.Errorf("test entry names must be strings, got %s", item[0].Type())
		}
		entryDict, ok := item[1].(*starlark.Dict)
		if !ok {
			return fmt.Errorf("test entry %s must be a dict, got %s", name, item[1].Type())
		}
		entry, err := entryFromDict(string(name), entryDict)
		if err != nil {
			return err
		}
		p.Put(entry)
		seen[string(name)] = true
	}

	var removed []string
	for _, name := range p.Names() {
		if !seen[name] {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	for _, name := range removed {
		p.Remove(name)
	}

	return nil
}

// entryFromDict rebuilds a test entry from its dict state.
func entryFromDict(name string, dict *starlark.Dict) (*tumbler.TestEntry, error) {
	entry := &tumbler.TestEntry{Name: name}

	getString := func(key string) (string, error) {
		v, found, err := dict.Get(starlark.String(key))
		if err != nil || !found {
			return "", err
		}
		s, ok := v.(starlark.String)
		if !ok {
			return "", fmt.Errorf("test entry %s field %s must be a string, got %s", name, key, v.Type())
		}
		return string(s), nil
	}

	var err error
	if entry.Inline, err = getString("inline"); err != nil {
		return nil, err
	}
	if entry.Prologue, err = getString("prologue"); err != nil {
		return nil, err
	}
	if entry.Trailing, err = getString("trailing"); err != nil {
		return nil, err
	}

	if v, found, err := dict.Get(starlark.String("target")); err != nil {
		return nil, err
	} else if found && v != starlark.None {
		targetDict, ok := v.(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("test entry %s target must be a dict, got %s", name, v.Type())
		}
		target := &tumbler.TestTarget{}
		if tv, found, err := targetDict.Get(starlark.String("type")); err == nil && found {
			if s, ok := tv.(starlark.String); ok {
				target.Type = string(s)
			}
		}
		if mv, found, err := targetDict.Get(starlark.String("method")); err == nil && found {
			if s, ok := mv.(starlark.String); ok {
				target.Method = string(s)
			}
		}
		entry.Target = target
	}

	if v, found, err := dict.Get(starlark.String("requires")); err != nil {
		return nil, err
	} else if found && v != starlark.None {
		list, ok := v.(*starlark.List)
		if !ok {
			return nil, fmt.Errorf("test entry %s requires must be a list, got %s", name, v.Type())
		}
		for i := 0; i < list.Len(); i++ {
			s, ok := list.Index(i).(starlark.String)
			if !ok {
				return nil, fmt.Errorf("test entry %s requires must contain strings", name)
			}
			entry.Requires = append(entry.Requires, string(s))
		}
	}

	return entry, nil
}
