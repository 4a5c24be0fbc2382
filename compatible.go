package widgetconfig

// MakeCompatible converts a legacy configuration into the canonical shape:
// global fields are lifted first, then the residual configuration is split
// into per-target groups, so no group can carry a global field.
func MakeCompatible(config RawConfig) CompatibleConfig {
	return makeCompatible(defaultSplitter, config)
}

func makeCompatible(splitter *Splitter, config RawConfig) CompatibleConfig {
	globals, residual := Factorize(config)
	return CompatibleConfig{
		Globals:      globals,
		ConfigGroups: splitter.Split(residual),
	}
}
