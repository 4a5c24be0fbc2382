package jsonschema

import (
	"slices"
	"testing"

	widgetconfig "github.com/goliatone/go-widgetconfig"
)

func TestGenerateDocumentSchema(t *testing.T) {
	doc, err := New().Generate(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Format != widgetconfig.SchemaFormatJSONSchema {
		t.Fatalf("expected format %q, got %q", widgetconfig.SchemaFormatJSONSchema, doc.Format)
	}

	schema, ok := doc.Document.(map[string]any)
	if !ok {
		t.Fatalf("expected schema map, got %T", doc.Document)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties, got %#v", schema)
	}
	for _, field := range []string{"merchantID", "minPrice", "configGroups"} {
		if _, ok := props[field]; !ok {
			t.Errorf("expected property %q in schema", field)
		}
	}
	required, _ := schema["required"].([]any)
	if !slices.Contains(required, any("configGroups")) {
		t.Fatalf("expected configGroups to be required, got %v", required)
	}
}

func TestGenerateGroupSchemaRequiresTarget(t *testing.T) {
	doc, err := New().Generate(&widgetconfig.Group{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	schema := doc.Document.(map[string]any)

	// the root may be a $ref into $defs depending on reflector settings
	if defs, ok := schema["$defs"].(map[string]any); ok {
		if group, ok := defs["Group"].(map[string]any); ok {
			schema = group
		}
	}
	required, _ := schema["required"].([]any)
	if !slices.Contains(required, any("targetXPath")) {
		t.Fatalf("expected targetXPath to be required, got %#v", schema)
	}
}
