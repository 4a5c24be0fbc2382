package widgetconfig

// Factorize lifts the globally scoped fields out of config. It returns the
// lifted values and a residual copy of config without them; config itself is
// left untouched. Fields absent from config are absent from both results, a
// field present with a nil value is still lifted.
//
// Callers used to a factorize step that strips the globals from its input
// should continue with the residual: it is the input minus every lifted field.
//
// The lifted values are assumed uniform across every target of one
// configuration: one merchant, one forced-show policy, one modal.
func Factorize(config RawConfig) (Factorized, RawConfig) {
	factorized := Factorized{}
	if config == nil {
		return factorized, nil
	}

	residual := make(RawConfig, len(config))
	for key, value := range config {
		if IsGlobalField(key) {
			factorized[key] = value
			continue
		}
		residual[key] = value
	}
	return factorized, residual
}
