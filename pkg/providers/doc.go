// Package providers contains the variant-provider implementations and the
// registry that generation runs resolve them from.
//
// Two families of providers exist. MatrixProvider is a static table of
// variant name to value, declared directly in the suite configuration.
// ScriptProvider is a dimension implemented as a Starlark script that may
// define any subset of the three phase functions (initial, main, final);
// scripts inspect the variant path and branch context, may specialize the
// branch's test payload in place, and return the variant mapping for their
// dimension. Script providers are discovered from bundle directories, each
// holding a manifest.yaml and the script itself.
package providers
