package widgetconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMakeCompatibleFixture(t *testing.T) {
	type testCase struct {
		Name   string         `json:"name"`
		Input  map[string]any `json:"input"`
		Expect map[string]any `json:"expect"`
	}
	type fixture struct {
		Description string     `json:"description"`
		Cases       []testCase `json:"cases"`
	}

	fx := loadFixture[fixture](t, "legacy_configs.json")
	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			result := MakeCompatible(RawConfig(tc.Input))
			got := roundTrip(t, result.Map())
			want := roundTrip(t, tc.Expect)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("compatible config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMakeCompatibleGroupsCarryNoGlobals(t *testing.T) {
	config := RawConfig{
		FieldMerchantID:           "M1",
		FieldForcedShow:           true,
		FieldAPModalHTML:          "<div>modal</div>",
		FieldTargetXPath:          []any{"/a", "/b"},
		FieldCustomClasses:        []any{map[string]any{"className": "x", FieldTargetXPathIndex: 1}},
		FieldIgnoredPriceElements: ".price-ignore",
	}

	result := MakeCompatible(config)
	if len(result.ConfigGroups) != 2 {
		t.Fatalf("expected two groups, got %d", len(result.ConfigGroups))
	}
	for i, group := range result.ConfigGroups {
		for _, field := range GlobalFields() {
			if _, ok := group[field]; ok {
				t.Fatalf("group %d carries global field %q", i, field)
			}
		}
	}
	if err := result.Validate(); err != nil {
		t.Fatalf("expected normalized config to validate, got %v", err)
	}
	if _, ok := config[FieldMerchantID]; !ok {
		t.Fatalf("expected input to keep its global fields")
	}
}

func TestMakeCompatibleScalarReturnsResidual(t *testing.T) {
	config := RawConfig{FieldMerchantID: "M1", FieldTargetXPath: "/a"}

	result := MakeCompatible(config)
	if len(result.ConfigGroups) != 1 {
		t.Fatalf("expected one group, got %d", len(result.ConfigGroups))
	}
	if diff := cmp.Diff(ConfigGroup{FieldTargetXPath: "/a"}, result.ConfigGroups[0]); diff != "" {
		t.Fatalf("group mismatch (-want +got):\n%s", diff)
	}
}
