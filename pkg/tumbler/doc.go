// Package tumbler implements the recursive variant tumbling engine at the
// core of crossgen: a combinatorial tree walk that expands an ordered list
// of variant-providing dimensions into every combination, accumulating an
// override-aware context of settings along each path and invoking a
// terminal consumer at every leaf.
//
// # Components
//
// Context: an ordered, append-only stack of named, typed settings with
// last-write-wins lookup and deterministic serialization. Child contexts
// extend their parent by reference, so ancestors are shared across sibling
// branches without copying.
//
// Setting: a closed set of renderable declarations — EnvVar, GlobalBinding,
// ModuleImport, MetaInfo — each rendering itself to deterministic Starlark
// source text (MetaInfo renders to nothing and only signals between
// providers).
//
// Payload: the set of named test entries threaded through the recursion.
// Every branch owns an independent deep copy, so a provider specializing
// the payload for one variant can never affect a sibling.
//
// Provider: one dimension of the combination tree. A provider implements
// any subset of the three ordered phases (initial, main, final); the phase
// results are merged, and an empty merged mapping prunes the subtree.
//
// Engine: the depth-first recursive driver. Variant order within a
// dimension is ascending lexicographic, and test entries emit in
// lexicographic name order, so two runs with identical inputs produce
// byte-identical artifacts.
//
// # Failure semantics
//
// All errors are fatal to the run. Generation is a one-shot step; a
// partially expanded tree has no safe recovery, and partial output already
// written is left in place for the caller to discard.
package tumbler
