package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-playground/validator/v10"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

// Parser parses and validates CUE suite configuration files.
type Parser struct {
	ctx       *cue.Context
	validator *validator.Validate
}

// NewParser creates a new suite configuration parser.
func NewParser() *Parser {
	return &Parser{
		ctx:       cuecontext.New(),
		validator: validator.New(),
	}
}

// Load parses one or more CUE files, unifies them, and decodes the result
// into a SuiteConfig. All failures are configuration errors reported
// before any generation work begins.
func (p *Parser) Load(paths ...string) (*SuiteConfig, error) {
	if len(paths) == 0 {
		return nil, tumbler.NewConfigurationError("no configuration files given", nil)
	}

	var merged cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, tumbler.NewConfigurationError("failed to read configuration", err).
				WithName(path)
		}

		v := p.ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, tumbler.NewConfigurationError(
				fmt.Sprintf("failed to parse configuration: %s", cueerrors.Details(err, nil)), err).
				WithName(path)
		}

		if i == 0 {
			merged = v
		} else {
			merged = merged.Unify(v)
		}
	}

	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, tumbler.NewConfigurationError(
			fmt.Sprintf("configuration is not concrete: %s", cueerrors.Details(err, nil)), err)
	}

	var cfg SuiteConfig
	if err := merged.Decode(&cfg); err != nil {
		return nil, tumbler.NewConfigurationError("failed to decode configuration", err)
	}

	if err := p.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadBytes parses a single in-memory CUE document. Used by tests and by
// callers embedding suite configuration.
func (p *Parser) LoadBytes(filename string, data []byte) (*SuiteConfig, error) {
	v := p.ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, tumbler.NewConfigurationError(
			fmt.Sprintf("failed to parse configuration: %s", cueerrors.Details(err, nil)), err).
			WithName(filename)
	}

	var cfg SuiteConfig
	if err := v.Decode(&cfg); err != nil {
		return nil, tumbler.NewConfigurationError("failed to decode configuration", err).
			WithName(filename)
	}

	if err := p.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints the CUE decode cannot express:
// required fields, provider ref shapes, and per-test invariants.
func (p *Parser) Validate(cfg *SuiteConfig) error {
	if err := p.validator.Struct(cfg); err != nil {
		return tumbler.NewConfigurationError("configuration validation failed", err)
	}

	for _, test := range cfg.Tests {
		if test.Target == nil && test.Inline == "" {
			return tumbler.NewConfigurationError("test needs a target or inline source", nil).
				WithName(test.Name)
		}
		if test.Target != nil && test.Inline != "" {
			return tumbler.NewConfigurationError("test cannot have both a target and inline source", nil).
				WithName(test.Name)
		}
	}

	for _, ref := range cfg.Providers {
		switch ref.Kind {
		case "", "registry":
			// Resolved against the registry at run time
		case "matrix":
			if ref.Setting == nil {
				return tumbler.NewConfigurationError("matrix provider needs a setting spec", nil).
					WithName(ref.Name)
			}
		case "script":
			if ref.Script == "" {
				return tumbler.NewConfigurationError("script provider needs a script path", nil).
					WithName(ref.Name)
			}
			if ref.Setting == nil {
				return tumbler.NewConfigurationError("script provider needs a setting spec", nil).
					WithName(ref.Name)
			}
		}
	}

	return nil
}
