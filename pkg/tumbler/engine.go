package tumbler

import (
	"context"
	"sort"

	"github.com/crossgen/crossgen/pkg/telemetry"
)

// Consumer is the terminal callback of the combination tree, invoked exactly
// once per leaf with the final accumulated path, context, and payload.
type Consumer interface {
	Consume(ctx context.Context, path []string, tc *Context, payload *Payload) error
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(ctx context.Context, path []string, tc *Context, payload *Payload) error

// Consume implements Consumer.
func (f ConsumerFunc) Consume(ctx context.Context, path []string, tc *Context, payload *Payload) error {
	return f(ctx, path, tc, payload)
}

// Engine enumerates the full combination tree over an ordered list of
// variant providers and invokes a consumer at every leaf. Execution is
// single-threaded, synchronous, depth-first recursion: branch order must be
// deterministic because downstream artifacts are compared by exact path and
// exact content.
type Engine struct {
	consumer Consumer
	log      *telemetry.Logger
	metrics  *telemetry.Metrics

	// leaves counts consumer invocations of the current run.
	leaves int
}

// NewEngine creates an engine that invokes consumer at every leaf. A nil
// logger or metrics collector disables the corresponding output.
func NewEngine(consumer Consumer, logger *telemetry.Logger, metrics *telemetry.Metrics) *Engine {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Engine{
		consumer: consumer,
		log:      logger.NewComponentLogger("tumbler"),
		metrics:  metrics,
	}
}

// Leaves returns the number of leaves the last call to Tumble visited.
// Tracked on the engine so callers can report a diagnostic when a run
// produced nothing.
func (e *Engine) Leaves() int {
	return e.leaves
}

// Tumble recurses depth-first over the provider list. At each depth it asks
// the head provider for variants (all phases merged); for each variant name
// in ascending lexicographic order it derives a child context from the
// variant's setting, deep-clones the payload, and recurses into the tail.
// When the provider list is exhausted the consumer runs with the accumulated
// state, so a zero-dimension run still emits the base test set exactly once.
//
// An empty merged mapping prunes the whole subtree: no leaf is reached
// through this path and the consumer never runs for it. Any provider or
// consumer error aborts the entire run; a partially expanded tree has no
// safe recovery.
func (e *Engine) Tumble(ctx context.Context, providers []Provider, path []string, tc *Context, payload *Payload) error {
	e.leaves = 0
	return e.tumble(ctx, providers, path, tc, payload)
}

func (e *Engine) tumble(ctx context.Context, providers []Provider, path []string, tc *Context, payload *Payload) error {
	if len(providers) == 0 {
		e.leaves++
		e.metrics.LeafVisited()
		e.log.WithPath(path).Debug("Visiting leaf")
		return e.consumer.Consume(ctx, path, tc, payload)
	}

	head, rest := providers[0], providers[1:]

	variants, err := provide(ctx, head, ProvideRequest{
		Path:    path,
		Context: tc,
		Payload: payload,
	})
	e.metrics.ProviderCall(head.Name(), err)
	if err != nil {
		return err
	}

	if len(variants) == 0 {
		e.log.WithProvider(head.Name()).WithPath(path).
			Debug("Provider produced no variants, pruning subtree")
		return nil
	}
	e.metrics.DimensionExpanded(head.Name(), len(variants))

	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		childPath := make([]string, 0, len(path)+1)
		childPath = append(childPath, path...)
		childPath = append(childPath, name)

		if err := e.tumble(ctx, rest, childPath, tc.NewChild(variants[name]), payload.Clone()); err != nil {
			return err
		}
	}

	return nil
}
