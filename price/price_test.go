package price

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseString(t *testing.T) {
	cases := []struct {
		name         string
		in           string
		includeComma bool
		want         string
	}{
		{"dollars", "$120.00", false, "120.00"},
		{"thousands without comma", "$1,299.99", false, "1299.99"},
		{"thousands with comma", "$1,299.99", true, "1,299.99"},
		{"rupee abbreviation", "Rs. 450", false, "450"},
		{"parenthesised", "(USD). 12", false, "12"},
		{"no digits", "free", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseString(tc.in, tc.includeComma); got != tc.want {
				t.Fatalf("ParseString(%q, %v) = %q, want %q", tc.in, tc.includeComma, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$120.00", "120"},
		{"Rs. 1,450.50", "1450.5"},
		{"$1.234.56", "1.234"},
		{".99 cents", "0.99"},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseWithoutAmount(t *testing.T) {
	_, err := Parse("call for price")
	if !errors.Is(err, ErrNoAmount) {
		t.Fatalf("expected ErrNoAmount, got %v", err)
	}
}

func TestBoundsContains(t *testing.T) {
	bounds, err := BoundsFromValues(35, "2500")
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}

	if !bounds.Contains(decimal.NewFromInt(35)) {
		t.Fatalf("expected inclusive min")
	}
	if !bounds.Contains(decimal.NewFromInt(2500)) {
		t.Fatalf("expected inclusive max")
	}
	if bounds.Contains(decimal.RequireFromString("34.99")) {
		t.Fatalf("expected amount below min to be excluded")
	}
	if bounds.Contains(decimal.NewFromInt(2501)) {
		t.Fatalf("expected amount above max to be excluded")
	}
}

func TestBoundsOpenEnds(t *testing.T) {
	bounds, err := BoundsFromValues(nil, json.Number("10.5"))
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if bounds.Min != nil {
		t.Fatalf("expected open min")
	}
	if !bounds.Contains(decimal.NewFromInt(-100)) {
		t.Fatalf("expected open min to accept any low amount")
	}
	if bounds.Contains(decimal.NewFromInt(11)) {
		t.Fatalf("expected max to apply")
	}

	if _, err := BoundsFromValues(true, nil); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}
