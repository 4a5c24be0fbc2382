package widgetconfig

import "strings"

// Globals is the typed view of the factorized page-wide fields.
type Globals struct {
	MerchantID       string   `mapstructure:"merchantID" json:"merchantID,omitempty"`
	ForcedShow       bool     `mapstructure:"forcedShow" json:"forcedShow,omitempty"`
	MinPrice         *float64 `mapstructure:"minPrice" json:"minPrice,omitempty"`
	MaxPrice         *float64 `mapstructure:"maxPrice" json:"maxPrice,omitempty"`
	NumberOfPayments int      `mapstructure:"numberOfPayments" json:"numberOfPayments,omitempty"`
	AltLightboxHTML  string   `mapstructure:"altLightboxHTML" json:"altLightboxHTML,omitempty"`
	APModalHTML      string   `mapstructure:"apModalHTML" json:"apModalHTML,omitempty"`
	QPModalHTML      string   `mapstructure:"qpModalHTML" json:"qpModalHTML,omitempty"`
	NoGTM            bool     `mapstructure:"noGtm" json:"noGtm,omitempty"`
	NoTracking       bool     `mapstructure:"noTracking" json:"noTracking,omitempty"`
	TestID           string   `mapstructure:"testID" json:"testID,omitempty"`
}

// Group is the typed view of a ConfigGroup handed to renderers.
type Group struct {
	TargetXPath string `mapstructure:"targetXPath" json:"targetXPath" jsonschema:"required"`
	// RenderToPath is nil when the group renders with no relative placement.
	RenderToPath          *string        `mapstructure:"renderToPath" json:"renderToPath,omitempty"`
	URLMatch              string         `mapstructure:"urlMatch" json:"urlMatch,omitempty"`
	RelatedElementActions []any          `mapstructure:"relatedElementActions" json:"relatedElementActions,omitempty"`
	CustomClasses         []CustomClass  `mapstructure:"customClasses" json:"customClasses,omitempty"`
	IgnoredPriceElements  []string       `mapstructure:"ignoredPriceElements" json:"ignoredPriceElements,omitempty"`
	Extra                 map[string]any `mapstructure:",remain" json:"-"`
}

// RenderSegments breaks the group's render path into its segments. A group
// without a render path yields nil.
func (g Group) RenderSegments() []string {
	if g.RenderToPath == nil {
		return nil
	}
	return BreakXPath(*g.RenderToPath)
}

// CustomClass is a styling override applied to elements of one target.
type CustomClass struct {
	XPath     string         `mapstructure:"xpath" json:"xpath,omitempty"`
	ClassName string         `mapstructure:"className" json:"className,omitempty"`
	Extra     map[string]any `mapstructure:",remain" json:"-"`
}

// BreakXPath splits a slash separated path into its non-empty segments, so
// "./.class1/#id" yields [".", ".class1", "#id"].
func BreakXPath(xpath string) []string {
	parts := strings.Split(xpath, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
