package widgetconfig

// Field names recognised by the normalization pipeline.
const (
	FieldConfigGroups          = "configGroups"
	FieldTargetXPath           = "targetXPath"
	FieldRenderToPath          = "renderToPath"
	FieldURLMatch              = "urlMatch"
	FieldRelatedElementActions = "relatedElementActions"
	FieldCustomClasses         = "customClasses"
	FieldTargetXPathIndex      = "targetXPathIndex"
	FieldIgnoredPriceElements  = "ignoredPriceElements"

	FieldMerchantID       = "merchantID"
	FieldForcedShow       = "forcedShow"
	FieldMinPrice         = "minPrice"
	FieldMaxPrice         = "maxPrice"
	FieldNumberOfPayments = "numberOfPayments"
	FieldAltLightboxHTML  = "altLightboxHTML"
	FieldAPModalHTML      = "apModalHTML"
	FieldQPModalHTML      = "qpModalHTML"
	FieldNoGTM            = "noGtm"
	FieldNoTracking       = "noTracking"
	FieldTestID           = "testID"
)

// DefaultRenderToPath places the widget after the parent of the located
// target.
const DefaultRenderToPath = ".."

// globalFields is the closed set of page-wide fields that never belong to a
// config group.
var globalFields = []string{
	FieldMerchantID,
	FieldForcedShow,
	FieldMinPrice,
	FieldMaxPrice,
	FieldNumberOfPayments,
	FieldAltLightboxHTML,
	FieldAPModalHTML,
	FieldQPModalHTML,
	FieldNoGTM,
	FieldNoTracking,
	FieldTestID,
}

var globalFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(globalFields))
	for _, name := range globalFields {
		set[name] = struct{}{}
	}
	return set
}()

// GlobalFields returns the globally scoped field names in declaration order.
func GlobalFields() []string {
	return append([]string(nil), globalFields...)
}

// IsGlobalField reports whether name is a globally scoped field.
func IsGlobalField(name string) bool {
	_, ok := globalFieldSet[name]
	return ok
}

// expectedTypes lists group fields whose type is checked during validation.
var expectedTypes = []struct {
	field    string
	typeName string
}{
	{FieldTargetXPath, "string"},
	{FieldRenderToPath, "string"},
	{FieldURLMatch, "string"},
}

var requiredGroupFields = []string{FieldTargetXPath}
