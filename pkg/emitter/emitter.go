// Package emitter turns combination-tree leaves into test-script artifacts
// on disk. It implements the tumbler.Consumer contract: one directory per
// variant path, one Starlark file per test entry, written atomically and
// guarded against clobbering a previous run's output.
package emitter

import (
	"context"
	"os"
	"path/filepath"

	"github.com/crossgen/crossgen/pkg/telemetry"
	"github.com/crossgen/crossgen/pkg/tumbler"
)

// Options configures artifact emission.
type Options struct {
	// OutputDir is the destination root for generated artifacts.
	OutputDir string

	// OverwriteDir permits generating into an output directory that
	// already exists.
	OverwriteDir bool

	// OverwriteFiles permits replacing individual artifact files that
	// already exist.
	OverwriteFiles bool

	// Prologue is optional source text emitted at the top of every
	// artifact, before any entry-specific content.
	Prologue string
}

// Emitter writes one artifact per test entry at every leaf of the
// combination tree. Its only side effects are filesystem writes under
// OutputDir.
type Emitter struct {
	opts    Options
	log     *telemetry.Logger
	metrics *telemetry.Metrics
	events  *telemetry.EventPublisher

	written int
}

// New creates an emitter. A nil logger disables logging; metrics and
// events may also be nil.
func New(opts Options, logger *telemetry.Logger, metrics *telemetry.Metrics, events *telemetry.EventPublisher) *Emitter {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Emitter{
		opts:    opts,
		log:     logger.NewComponentLogger("emitter"),
		metrics: metrics,
		events:  events,
	}
}

// Preflight verifies the output directory before any generation work. A
// pre-existing directory without overwrite permission aborts the run here,
// so a stale tree is never silently merged with a new one.
func (em *Emitter) Preflight() error {
	if em.opts.OutputDir == "" {
		return tumbler.NewConfigurationError("output directory is required", nil)
	}

	info, err := os.Stat(em.opts.OutputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return tumbler.NewConfigurationError("cannot stat output directory", err).
			WithName(em.opts.OutputDir)
	}
	if !info.IsDir() {
		return tumbler.NewOutputConflictError("output path exists and is not a directory", em.opts.OutputDir)
	}
	if !em.opts.OverwriteDir {
		return tumbler.NewOutputConflictError("output directory already exists", em.opts.OutputDir)
	}
	return nil
}

// Written returns the number of artifacts written so far.
func (em *Emitter) Written() int {
	return em.written
}

// Consume implements tumbler.Consumer. For each test entry, sorted by
// name, it builds the artifact body, syntax-checks it, and writes it
// atomically under OutputDir joined with the variant path. A pre-existing
// artifact without file overwrite permission fails the run with the
// conflicting path.
func (em *Emitter) Consume(ctx context.Context, path []string, tc *tumbler.Context, payload *tumbler.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(append([]string{em.opts.OutputDir}, path...)...)

	for _, name := range payload.Names() {
		entry, _ := payload.Get(name)

		filename := NormalizeFilename(name)
		target := filepath.Join(dir, filename)

		if _, err := os.Stat(target); err == nil && !em.opts.OverwriteFiles {
			return tumbler.NewOutputConflictError("artifact already exists", target).
				WithPath(path)
		}

		body := BuildScript(em.opts.Prologue, entry, tc)
		if err := CheckSyntax(filename, body); err != nil {
			return tumbler.NewConfigurationError("generated artifact failed syntax check", err).
				WithName(name).WithPath(path)
		}

		if err := writeAtomic(target, []byte(body)); err != nil {
			return tumbler.NewConfigurationError("failed to write artifact", err).
				WithName(target).WithPath(path)
		}

		em.written++
		em.metrics.ArtifactWritten(len(body))
		em.events.Publish(telemetry.Event{
			Type:     telemetry.EventTypeArtifactWritten,
			Path:     path,
			Artifact: target,
			Message:  "artifact written",
		})
		em.log.WithArtifact(target).Debug("Artifact written")
	}

	return nil
}

// writeAtomic writes content to target via a temporary file and rename,
// creating parent directories as needed.
func writeAtomic(target string, content []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
