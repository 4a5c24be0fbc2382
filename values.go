package widgetconfig

import (
	"encoding/json"
	"math"
	"reflect"
)

// asSlice views any slice or array value as []any. Strings are not
// sequences here, so a scalar selector is never split into characters.
func asSlice(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func isSequence(value any) bool {
	_, ok := asSlice(value)
	return ok
}

// truthy mirrors the loose truthiness legacy configs were written against.
func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		return typed != ""
	case json.Number:
		f, err := typed.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan, reflect.Map, reflect.Slice:
		// empty maps and slices are still truthy, only nil references are not
		return !rv.IsNil()
	default:
		return true
	}
}

// asIndex reads a numeric positional tag. Non-integral and non-numeric values
// are rejected.
func asIndex(value any) (int, bool) {
	if value == nil {
		return 0, false
	}
	if number, ok := value.(json.Number); ok {
		if i, err := number.Int64(); err == nil {
			return int(i), true
		}
		f, err := number.Float64()
		if err != nil {
			return 0, false
		}
		return floatIndex(f)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt32 {
			return 0, false
		}
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return floatIndex(rv.Float())
	default:
		return 0, false
	}
}

func floatIndex(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case ConfigGroup:
		return map[string]any(typed), true
	case RawConfig:
		return map[string]any(typed), true
	case Factorized:
		return map[string]any(typed), true
	default:
		return nil, false
	}
}
