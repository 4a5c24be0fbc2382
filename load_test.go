package widgetconfig

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"config.yaml": FormatYAML,
		"config.YML":  FormatYAML,
		"config.json": FormatJSON,
		"config":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}

func TestLoadRawConfigYAML(t *testing.T) {
	raw, err := LoadRawConfig(filepath.Join("testdata", "multi_target.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := MakeCompatible(raw)
	if result.Globals[FieldMerchantID] != "M1" {
		t.Fatalf("unexpected globals %v", result.Globals)
	}
	want := []ConfigGroup{
		{
			FieldTargetXPath:          "/product/price",
			FieldRenderToPath:         "../..",
			FieldCustomClasses:        []any{map[string]any{"xpath": "/product", "className": "wide"}},
			FieldIgnoredPriceElements: ".price-ignore",
		},
		{
			FieldTargetXPath:          "/cart/total",
			FieldRenderToPath:         DefaultRenderToPath,
			FieldCustomClasses:        []any{map[string]any{"xpath": "/product", "className": "wide"}},
			FieldIgnoredPriceElements: ".price-ignore",
		},
	}
	if diff := cmp.Diff(want, result.ConfigGroups); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRawConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "invalid json", data: "{", format: FormatJSON},
		{name: "invalid yaml", data: "a: [", format: FormatYAML},
		{name: "null document", data: "null", format: FormatJSON},
		{name: "trailing garbage", data: `{"targetXPath": "/a"} trailing`, format: FormatJSON},
		{name: "second document", data: `{"targetXPath": "/a"}{"targetXPath": "/b"}`, format: FormatJSON},
		{name: "unknown format", data: "{}", format: Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRawConfig([]byte(tt.data), tt.format); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseCompatibleConfig(t *testing.T) {
	data := []byte(`{"merchantID":"M1","configGroups":[{"targetXPath":"/a"},"bogus"]}`)

	config, doc, err := ParseCompatibleConfig(data, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Globals[FieldMerchantID] != "M1" || len(config.ConfigGroups) != 1 {
		t.Fatalf("unexpected config %+v", config)
	}
	if err := Validate(doc); err == nil {
		t.Fatalf("expected the raw document to keep the malformed group")
	}
}
