// Package config provides CUE parsing and validation for crossgen suite
// configurations.
//
// A suite configuration names the input test cases, the ordered list of
// variant providers (the dimensions of the combination tree), the output
// directory, and the two overwrite-permission flags. A typical suite:
//
//	name: "smoke"
//	output: {
//	    dir: "out/smoke"
//	    overwrite_dir:   false
//	    overwrite_files: false
//	}
//	tests: [
//	    {name: "Foo", target: {type: "FooSuite", method: "run"}},
//	    {name: "Bar", inline: "check(1 + 1 == 2)"},
//	]
//	providers: [
//	    {
//	        name: "driver"
//	        kind: "matrix"
//	        setting: {kind: "binding", name: "driver_version"}
//	        values: {v1: "1.0", v2: "2.0"}
//	    },
//	    {name: "platform"},  // resolved from the registry
//	]
//
// Multiple files may be loaded at once; CUE unification merges them, which
// keeps environment-specific overrides in separate files. After decoding,
// struct-level constraints are enforced with go-playground/validator plus
// the cross-field checks CUE tags cannot express. Every failure surfaces
// as a configuration error before any generation work begins.
package config
