package tumbler

import "context"

// Phase identifies one of the three ordered provider phases. For every
// dimension the phases run in the fixed order initial, main, final;
// providers implement only the phases they need.
type Phase string

const (
	// PhaseInitial runs first for a dimension.
	PhaseInitial Phase = "initial"

	// PhaseMain runs second for a dimension.
	PhaseMain Phase = "main"

	// PhaseFinal runs last for a dimension.
	PhaseFinal Phase = "final"
)

// Variants maps a variant name to the setting that variant contributes to
// its branch's context.
type Variants map[string]Setting

// ProvideRequest carries the state of the branch currently being
// constructed into a provider phase. Providers may mutate Payload in place;
// the engine hands each branch its own deep copy, so mutations never leak
// between siblings. Context is read-only.
type ProvideRequest struct {
	// Path is the accumulated variant path from the root to this dimension.
	Path []string

	// Context is the accumulated settings along the path.
	Context *Context

	// Payload is the branch-local set of test entries.
	Payload *Payload
}

// Provider supplies the variants for one dimension of the combination tree.
// A provider additionally implements any subset of InitialPhase, MainPhase,
// and FinalPhase; a provider implementing none of them produces no variants
// and prunes every path that reaches it.
type Provider interface {
	// Name identifies the provider in configuration, logs, and errors.
	Name() string
}

// InitialPhase is the capability for the initial provider phase.
type InitialPhase interface {
	Initial(ctx context.Context, req ProvideRequest) (Variants, error)
}

// MainPhase is the capability for the main provider phase.
type MainPhase interface {
	Main(ctx context.Context, req ProvideRequest) (Variants, error)
}

// FinalPhase is the capability for the final provider phase.
type FinalPhase interface {
	Final(ctx context.Context, req ProvideRequest) (Variants, error)
}

// provide runs all phases the provider implements, in fixed order, and
// merges the produced mappings into one. When two phases produce an entry
// for the same variant name the later phase wins. An empty merged mapping
// prunes the combination tree at this dimension.
func provide(ctx context.Context, p Provider, req ProvideRequest) (Variants, error) {
	merged := make(Variants)

	if ip, ok := p.(InitialPhase); ok {
		vs, err := ip.Initial(ctx, req)
		if err != nil {
			return nil, NewProviderError("initial phase failed", err).
				WithName(p.Name()).WithPath(req.Path)
		}
		mergeVariants(merged, vs)
	}

	if mp, ok := p.(MainPhase); ok {
		vs, err := mp.Main(ctx, req)
		if err != nil {
			return nil, NewProviderError("main phase failed", err).
				WithName(p.Name()).WithPath(req.Path)
		}
		mergeVariants(merged, vs)
	}

	if fp, ok := p.(FinalPhase); ok {
		vs, err := fp.Final(ctx, req)
		if err != nil {
			return nil, NewProviderError("final phase failed", err).
				WithName(p.Name()).WithPath(req.Path)
		}
		mergeVariants(merged, vs)
	}

	return merged, nil
}

func mergeVariants(dst, src Variants) {
	for name, setting := range src {
		dst[name] = setting
	}
}
