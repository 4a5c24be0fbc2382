package widgetconfig

import (
	"encoding/json"

	"github.com/goliatone/go-widgetconfig/internal/clone"
)

// CloneFunc deep copies a single configuration value.
type CloneFunc func(value any) any

// SplitOption configures a Splitter.
type SplitOption func(*Splitter)

// WithOpaqueFields marks top-level fields whose values are external handles
// (element references, callbacks). They are shared with every derived group
// and never entered into recursive copying.
func WithOpaqueFields(names ...string) SplitOption {
	return func(s *Splitter) {
		if s.opaque == nil {
			s.opaque = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			if name != "" {
				s.opaque[name] = struct{}{}
			}
		}
	}
}

// WithCloneFunc replaces the default plain-data copier.
func WithCloneFunc(fn CloneFunc) SplitOption {
	return func(s *Splitter) {
		s.cloneFunc = fn
	}
}

// Splitter expands a multi-target configuration into one ConfigGroup per
// target selector.
type Splitter struct {
	opaque    map[string]struct{}
	cloneFunc CloneFunc
}

// NewSplitter constructs a Splitter.
func NewSplitter(opts ...SplitOption) *Splitter {
	s := &Splitter{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var defaultSplitter = NewSplitter()

// Split expands config using the default Splitter.
func Split(config RawConfig) []ConfigGroup {
	return defaultSplitter.Split(config)
}

// Split returns the config groups derived from config's targetXPath:
//   - absent: no groups.
//   - scalar: config itself as the only group, no copy is made.
//   - array: one deep copy per selector, in selector order, with the
//     positional companion fields resolved for that selector.
//
// Malformed companion fields fall back to defaults; Split never fails and
// never mutates config.
func (s *Splitter) Split(config RawConfig) []ConfigGroup {
	groups := []ConfigGroup{}
	if config == nil {
		return groups
	}
	xpath, present := config[FieldTargetXPath]
	if !present {
		return groups
	}
	if !isSequence(xpath) {
		return append(groups, ConfigGroup(config))
	}

	for _, target := range JoinTargets(config) {
		group := ConfigGroup(s.copyConfig(config))
		s.applyTarget(group, target, config)
		groups = append(groups, group)
	}
	return groups
}

// JoinTargets resolves every positional field of a multi-target config into
// one Target per targetXPath entry. It returns nil when targetXPath is not an
// array.
func JoinTargets(config RawConfig) []Target {
	xpaths, ok := asSlice(config[FieldTargetXPath])
	if !ok {
		return nil
	}

	renderPaths, renderIsArray := asSlice(config[FieldRenderToPath])
	relatedActions, relatedIsArray := asSlice(config[FieldRelatedElementActions])
	tagged := partitionCustomClasses(config[FieldCustomClasses], len(xpaths))

	targets := make([]Target, len(xpaths))
	for i, xpath := range xpaths {
		target := Target{
			Index:        i,
			XPath:        xpath,
			RenderToPath: DefaultRenderToPath,
		}

		if renderIsArray && i < len(renderPaths) {
			if truthy(renderPaths[i]) {
				target.RenderToPath = renderPaths[i]
			} else {
				target.RenderToPath = nil
			}
		}

		if relatedIsArray && i < len(relatedActions) && isSequence(relatedActions[i]) {
			target.RelatedElementActions = relatedActions[i]
			target.HasRelatedActions = true
		}

		if classes, ok := tagged[i]; ok {
			target.CustomClasses = classes
			target.HasCustomClasses = true
		}

		targets[i] = target
	}
	return targets
}

// partitionCustomClasses groups tagged custom classes by target index with
// the tag removed. Untagged entries and tags outside [0, n) are not
// distributed.
func partitionCustomClasses(value any, n int) map[int][]any {
	classes, ok := asSlice(value)
	if !ok {
		return nil
	}
	grouped := make(map[int][]any)
	for _, entry := range classes {
		class, ok := asMap(entry)
		if !ok || !isNumber(class[FieldTargetXPathIndex]) {
			continue
		}
		index, ok := asIndex(class[FieldTargetXPathIndex])
		if !ok || index < 0 || index >= n {
			continue
		}
		grouped[index] = append(grouped[index], stripTargetIndex(class))
	}
	return grouped
}

func (s *Splitter) applyTarget(group ConfigGroup, target Target, original RawConfig) {
	group[FieldTargetXPath] = target.XPath
	group[FieldRenderToPath] = target.RenderToPath

	if target.HasRelatedActions {
		group[FieldRelatedElementActions] = s.copyValue(target.RelatedElementActions)
	}

	if target.HasCustomClasses {
		group[FieldCustomClasses] = target.CustomClasses
	} else if classes, ok := asSlice(group[FieldCustomClasses]); ok {
		stripped := make([]any, len(classes))
		for i, entry := range classes {
			stripped[i] = entry
			if class, ok := asMap(entry); ok && isNumber(class[FieldTargetXPathIndex]) {
				stripped[i] = stripTargetIndex(class)
			}
		}
		group[FieldCustomClasses] = stripped
	}

	if ignored := original[FieldIgnoredPriceElements]; truthy(ignored) {
		group[FieldIgnoredPriceElements] = ignored
	}
}

func (s *Splitter) copyConfig(config RawConfig) RawConfig {
	if s.cloneFunc == nil {
		return RawConfig(clone.Map(config, s.opaque))
	}
	out := make(RawConfig, len(config))
	for key, value := range config {
		if _, ok := s.opaque[key]; ok {
			out[key] = value
			continue
		}
		out[key] = s.cloneFunc(value)
	}
	return out
}

func (s *Splitter) copyValue(value any) any {
	if s.cloneFunc != nil {
		return s.cloneFunc(value)
	}
	return clone.Value(value)
}

func stripTargetIndex(class map[string]any) map[string]any {
	out := make(map[string]any, len(class))
	for key, value := range class {
		if key == FieldTargetXPathIndex {
			continue
		}
		out[key] = clone.Value(value)
	}
	return out
}

func isNumber(value any) bool {
	if _, ok := value.(json.Number); ok {
		return true
	}
	return typeOf(value) == "number"
}
