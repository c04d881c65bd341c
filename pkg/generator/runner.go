// Package generator wires a suite configuration to the tumbling engine:
// it populates the provider registry, registers the input tests, runs the
// engine with the emitter as consumer, and reports the run outcome.
package generator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/emitter"
	"github.com/crossgen/crossgen/pkg/providers"
	"github.com/crossgen/crossgen/pkg/telemetry"
	"github.com/crossgen/crossgen/pkg/tumbler"
)

// Result summarizes a completed generation run.
type Result struct {
	// RunID is the unique identifier of this run.
	RunID string

	// Leaves is the number of combination-tree leaves visited.
	Leaves int

	// Artifacts is the number of artifact files written.
	Artifacts int

	// Duration is the wall-clock duration of the run.
	Duration time.Duration
}

// Runner executes generation runs for one suite configuration.
type Runner struct {
	cfg      *config.SuiteConfig
	baseDir  string
	registry *providers.Registry
	tel      *telemetry.Telemetry
}

// NewRunner creates a runner. baseDir anchors relative paths in the
// configuration (provider scripts, provider directories, output dir) to
// the suite file's location, so runs are reproducible from any working
// directory.
func NewRunner(cfg *config.SuiteConfig, baseDir string, registry *providers.Registry, tel *telemetry.Telemetry) *Runner {
	if registry == nil {
		registry = providers.NewRegistry(tel.Logger)
	}
	return &Runner{
		cfg:      cfg,
		baseDir:  baseDir,
		registry: registry,
		tel:      tel,
	}
}

// Run executes one generation run. Any failure aborts the run; partial
// output already written is left in place and the caller should treat the
// output directory as invalid.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	start := time.Now()

	log := r.tel.Logger.NewComponentLogger("generator").WithRunID(runID)
	log.WithField("suite", r.cfg.Name).Info("Starting generation run")

	r.tel.Metrics.RunStarted()
	r.tel.Events.Publish(telemetry.Event{
		Type:    telemetry.EventTypeRunStarted,
		RunID:   runID,
		Message: "generation run started",
		Data:    map[string]interface{}{"suite": r.cfg.Name},
	})

	result, err := r.run(ctx, runID, log)
	duration := time.Since(start)

	if err != nil {
		r.tel.Metrics.RunCompleted("failure", duration)
		r.tel.Events.Publish(telemetry.Event{
			Type:    telemetry.EventTypeRunFailed,
			RunID:   runID,
			Message: err.Error(),
		})
		log.WithError(err).Error("Generation run failed")
		return nil, err
	}

	result.RunID = runID
	result.Duration = duration

	r.tel.Metrics.RunCompleted("success", duration)
	r.tel.Events.Publish(telemetry.Event{
		Type:    telemetry.EventTypeRunCompleted,
		RunID:   runID,
		Message: "generation run completed",
		Data: map[string]interface{}{
			"leaves":    result.Leaves,
			"artifacts": result.Artifacts,
		},
	})

	log.WithField("leaves", result.Leaves).
		WithField("artifacts", result.Artifacts).
		Info("Generation run completed")

	return result, nil
}

func (r *Runner) run(ctx context.Context, runID string, log *telemetry.Logger) (*Result, error) {
	for _, dir := range r.cfg.ProviderDirs {
		if err := r.registry.ScanDirectory(r.resolve(dir)); err != nil {
			return nil, err
		}
	}

	provs, err := r.buildProviders()
	if err != nil {
		return nil, err
	}

	payload := tumbler.NewPayload()
	for _, tc := range r.cfg.Tests {
		if err := payload.Register(entryFromConfig(tc)); err != nil {
			return nil, err
		}
	}

	em := emitter.New(emitter.Options{
		OutputDir:      r.resolve(r.cfg.Output.Dir),
		OverwriteDir:   r.cfg.Output.OverwriteDir,
		OverwriteFiles: r.cfg.Output.OverwriteFiles,
		Prologue:       r.cfg.Prologue,
	}, r.tel.Logger, r.tel.Metrics, r.tel.Events)

	if err := em.Preflight(); err != nil {
		return nil, err
	}

	engine := tumbler.NewEngine(em, r.tel.Logger, r.tel.Metrics)
	if err := engine.Tumble(ctx, provs, nil, tumbler.NewContext(nil), payload); err != nil {
		return nil, err
	}

	if em.Written() == 0 {
		log.Warn("Run produced no artifacts; every dimension pruned its subtree")
		r.tel.Events.Publish(telemetry.Event{
			Type:    telemetry.EventTypeRunEmpty,
			RunID:   runID,
			Message: "run produced no artifacts",
		})
	}

	return &Result{
		Leaves:    engine.Leaves(),
		Artifacts: em.Written(),
	}, nil
}

// buildProviders turns the suite's ordered provider refs into provider
// instances, preserving order.
func (r *Runner) buildProviders() ([]tumbler.Provider, error) {
	provs := make([]tumbler.Provider, 0, len(r.cfg.Providers))
	for _, ref := range r.cfg.Providers {
		switch ref.Kind {
		case "matrix":
			provs = append(provs, providers.NewMatrixProvider(ref.Name, *ref.Setting, ref.Values))
		case "script":
			p, err := providers.NewScriptProvider(ref.Name, *ref.Setting, r.resolve(ref.Script))
			if err != nil {
				return nil, tumbler.NewConfigurationError("failed to load provider script", err).
					WithName(ref.Name)
			}
			provs = append(provs, p)
		default:
			p, err := r.registry.Get(ref.Name)
			if err != nil {
				return nil, err
			}
			provs = append(provs, p)
		}
	}
	return provs, nil
}

// resolve anchors a relative path to the suite's base directory.
func (r *Runner) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || r.baseDir == "" {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

func entryFromConfig(tc config.TestConfig) *tumbler.TestEntry {
	entry := &tumbler.TestEntry{
		Name:     tc.Name,
		Inline:   tc.Inline,
		Prologue: tc.Prologue,
		Trailing: tc.Trailing,
		Requires: append([]string(nil), tc.Requires...),
	}
	if tc.Target != nil {
		entry.Target = &tumbler.TestTarget{
			Type:   tc.Target.Type,
			Method: tc.Target.Method,
		}
	}
	return entry
}
