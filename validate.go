package widgetconfig

import "fmt"

// Validate checks a normalized configuration (the output of MakeCompatible in
// map form) and returns the first violation as a *ConfigurationError. It
// performs declarative validation only and never mutates config.
func Validate(config map[string]any) error {
	groups, ok := asSlice(config[FieldConfigGroups])
	if !ok {
		return newConfigurationError(ErrNotAnArray, -1, FieldConfigGroups, "array")
	}
	if len(groups) == 0 {
		return newConfigurationError(ErrEmptyArray, -1, FieldConfigGroups, "array")
	}

	views := make([]map[string]any, len(groups))
	for i, group := range groups {
		// a group that is not an object cannot carry any required field
		views[i], _ = asMap(group)
	}

	for i, group := range views {
		for _, field := range requiredGroupFields {
			if _, present := group[field]; !present {
				return newConfigurationError(ErrMissingRequiredField, i, field, "")
			}
		}
	}

	for i, group := range views {
		for _, expected := range expectedTypes {
			value, present := group[expected.field]
			if !present {
				continue
			}
			if typeOf(value) != expected.typeName {
				return newConfigurationError(ErrWrongType, i, expected.field, expected.typeName)
			}
		}
	}

	for i, group := range views {
		for _, field := range globalFields {
			if _, present := group[field]; present {
				return newConfigurationError(ErrMisplacedGlobalField, i, field, "")
			}
		}
	}

	return nil
}

// typeOf classifies a value using the primitive type names legacy configs
// were validated against.
func typeOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	}
	if isSequence(value) {
		return "array"
	}
	if _, ok := asMap(value); ok {
		return "object"
	}
	return fmt.Sprintf("%T", value)
}
