package widgetconfig

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened field descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatJSONSchema represents a JSON Schema document.
	SchemaFormatJSONSchema SchemaFormat = "jsonschema"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Document must be JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator transforms a configuration value into a schema document.
type SchemaGenerator interface {
	Generate(value any) (SchemaDocument, error)
}

// FieldDescriptor describes a path and the inferred type.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

// Describe lists the field paths of a compatible config in canonical form.
func Describe(config CompatibleConfig) []FieldDescriptor {
	doc, _ := DefaultSchemaGenerator().Generate(config.Map())
	return doc.Document.([]FieldDescriptor)
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(value any) (SchemaDocument, error) {
	descriptors := deriveFieldDescriptors(value, "")
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "null"}}
	}

	if typed, ok := asMap(value); ok {
		if len(typed) == 0 {
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	}

	if items, ok := asSlice(value); ok {
		// groups are described element by element, other arrays by kind
		if prefix == FieldConfigGroups {
			var fields []FieldDescriptor
			for i, item := range items {
				fields = append(fields, deriveFieldDescriptors(item, fmt.Sprintf("%s[%d]", prefix, i))...)
			}
			if fields == nil {
				return []FieldDescriptor{{Path: prefix, Type: "[]"}}
			}
			return fields
		}
		elementType := "any"
		if len(items) > 0 {
			elementType = typeOf(items[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	}

	if prefix == "" {
		return nil
	}
	return []FieldDescriptor{{Path: prefix, Type: typeOf(value)}}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
