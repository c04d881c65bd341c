package providers

import (
	"context"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

// MatrixProvider is a dimension backed by a static variant table from
// configuration: each variant name maps to a fixed value, wrapped in the
// configured setting kind. It implements only the main phase.
type MatrixProvider struct {
	name   string
	spec   SettingSpec
	values map[string]interface{}
}

// NewMatrixProvider creates a matrix provider. An empty values table is
// legal and prunes every path that reaches this dimension.
func NewMatrixProvider(name string, spec SettingSpec, values map[string]interface{}) *MatrixProvider {
	return &MatrixProvider{
		name:   name,
		spec:   spec,
		values: values,
	}
}

// NewEnvMatrixProvider creates a matrix provider whose variants set (or,
// for nil values, unset) one environment variable.
func NewEnvMatrixProvider(name, varName string, values map[string]interface{}) *MatrixProvider {
	return NewMatrixProvider(name, SettingSpec{
		Kind:        tumbler.KindEnvVar,
		SettingName: varName,
	}, values)
}

// Name implements tumbler.Provider.
func (p *MatrixProvider) Name() string { return p.name }

// Main implements tumbler.MainPhase.
func (p *MatrixProvider) Main(_ context.Context, _ tumbler.ProvideRequest) (tumbler.Variants, error) {
	variants := make(tumbler.Variants, len(p.values))
	for variantName, value := range p.values {
		setting, err := p.spec.Build(value)
		if err != nil {
			return nil, err
		}
		variants[variantName] = setting
	}
	return variants, nil
}
