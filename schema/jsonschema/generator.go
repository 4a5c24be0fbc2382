// Package jsonschema generates JSON Schema documents for the typed widget
// configuration descriptors.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"

	invopop "github.com/invopop/jsonschema"

	widgetconfig "github.com/goliatone/go-widgetconfig"
)

// Document is the typed shape of a compatible configuration: global fields at
// the top level next to configGroups.
type Document struct {
	widgetconfig.Globals
	ConfigGroups []widgetconfig.Group `json:"configGroups" jsonschema:"required,minItems=1"`
}

// Generator reflects Go types into JSON Schema.
type Generator struct {
	reflector *invopop.Reflector
}

// New returns a Generator tuned for widget configuration documents.
func New() *Generator {
	return &Generator{
		reflector: &invopop.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            false,
			ExpandedStruct:            true,
			Mapper: func(t reflect.Type) *invopop.Schema {
				if t == reflect.TypeOf((*any)(nil)).Elem() {
					return &invopop.Schema{}
				}
				return nil
			},
		},
	}
}

// Generate returns the schema for value's type. A nil value yields the schema
// of Document.
func (g *Generator) Generate(value any) (widgetconfig.SchemaDocument, error) {
	if value == nil {
		value = &Document{}
	}
	schema := g.reflector.Reflect(value)
	raw, err := json.Marshal(schema)
	if err != nil {
		return widgetconfig.SchemaDocument{}, fmt.Errorf("jsonschema: marshal: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return widgetconfig.SchemaDocument{}, fmt.Errorf("jsonschema: decode: %w", err)
	}
	return widgetconfig.SchemaDocument{
		Format:   widgetconfig.SchemaFormatJSONSchema,
		Document: doc,
	}, nil
}

var _ widgetconfig.SchemaGenerator = (*Generator)(nil)
