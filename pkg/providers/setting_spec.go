package providers

import (
	"fmt"

	"github.com/crossgen/crossgen/pkg/tumbler"
)

// SettingSpec describes how a provider's variant values become context
// settings. Kind selects the setting kind; SettingName names the setting
// for env, binding, and meta kinds. Import settings take their module name
// from the variant value instead.
type SettingSpec struct {
	// Kind is the setting kind (env, binding, import, meta).
	Kind tumbler.SettingKind `json:"kind" yaml:"kind" validate:"required,oneof=env binding import meta"`

	// SettingName is the setting name for env, binding, and meta kinds.
	SettingName string `json:"name" yaml:"name"`
}

// Build derives the setting a variant contributes to its branch's context.
//
// For env settings a nil value means "unset the variable for the scope".
// For import settings the value is either the module name or a list whose
// head is the module name and whose tail is the symbol argument list.
func (s SettingSpec) Build(value interface{}) (tumbler.Setting, error) {
	switch s.Kind {
	case tumbler.KindEnvVar:
		if s.SettingName == "" {
			return nil, fmt.Errorf("env setting requires a name")
		}
		if value == nil {
			return tumbler.NewEnvVarUnset(s.SettingName), nil
		}
		return tumbler.NewEnvVar(s.SettingName, value), nil

	case tumbler.KindBinding:
		if s.SettingName == "" {
			return nil, fmt.Errorf("binding setting requires a name")
		}
		return tumbler.NewGlobalBinding(s.SettingName, value), nil

	case tumbler.KindImport:
		switch v := value.(type) {
		case string:
			return tumbler.NewModuleImport(v), nil
		case []string:
			if len(v) == 0 {
				return nil, fmt.Errorf("import setting requires a module name")
			}
			return tumbler.NewModuleImport(v[0], v[1:]...), nil
		case []interface{}:
			if len(v) == 0 {
				return nil, fmt.Errorf("import setting requires a module name")
			}
			parts := make([]string, len(v))
			for i, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("import setting arguments must be strings, got %T", item)
				}
				parts[i] = str
			}
			return tumbler.NewModuleImport(parts[0], parts[1:]...), nil
		default:
			return nil, fmt.Errorf("import setting value must be a module name or list, got %T", value)
		}

	case tumbler.KindMeta:
		if s.SettingName == "" {
			return nil, fmt.Errorf("meta setting requires a name")
		}
		return tumbler.NewMetaInfo(s.SettingName, value), nil

	default:
		return nil, fmt.Errorf("unknown setting kind: %s", s.Kind)
	}
}
