// Package clone copies plain configuration data (maps, slices, arrays and
// primitives) while passing every other value through by reference.
package clone

import "reflect"

// Value returns a deep copy of v. Maps, slices and arrays are rebuilt
// recursively; funcs, pointers, channels, structs and any other value that is
// not plain data keep their identity in the copy.
func Value(v any) any {
	if v == nil {
		return nil
	}
	return cloneValue(reflect.ValueOf(v), visited{}).Interface()
}

// Map deep copies every entry of src except the keys listed in opaque, which
// are carried over by reference.
func Map(src map[string]any, opaque map[string]struct{}) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	seen := visited{}
	seen.add(reflect.ValueOf(src), reflect.ValueOf(dst))
	for key, value := range src {
		if _, ok := opaque[key]; ok {
			dst[key] = value
			continue
		}
		if value == nil {
			dst[key] = nil
			continue
		}
		dst[key] = cloneValue(reflect.ValueOf(value), seen).Interface()
	}
	return dst
}

// IsPlain reports whether v would be rebuilt by Value rather than shared.
func IsPlain(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array,
		reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// visited maps source maps and slices to their copies, so shared and cyclic
// references come out with the same shape instead of recursing forever.
type visited map[visitKey]reflect.Value

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

func keyOf(v reflect.Value) visitKey {
	return visitKey{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
}

func (seen visited) add(src, dst reflect.Value) {
	seen[keyOf(src)] = dst
}

func (seen visited) lookup(v reflect.Value) (reflect.Value, bool) {
	dst, ok := seen[keyOf(v)]
	return dst, ok
}

func cloneValue(v reflect.Value, seen visited) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type()).Elem()
		clone.Set(cloneValue(v.Elem(), seen))
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if dst, ok := seen.lookup(v); ok {
			return dst
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		seen.add(v, clone)
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value(), seen))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if v.Len() == 0 {
			return reflect.MakeSlice(v.Type(), 0, 0)
		}
		if dst, ok := seen.lookup(v); ok {
			return dst
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		seen.add(v, clone)
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i), seen))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i), seen))
		}
		return clone
	default:
		// primitives are immutable; everything else is an external handle
		return v
	}
}
