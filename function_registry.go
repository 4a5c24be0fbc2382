package widgetconfig

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-widgetconfig/price"
)

// Function is a helper callable by name from selection rules.
type Function func(args ...any) (any, error)

// Variadic marks a registered function that accepts any number of arguments.
const Variadic = -1

type ruleFunction struct {
	name  string
	arity int
	fn    Function
}

// FunctionRegistry holds the helpers exposed to selection rules. Names are
// case sensitive and must be valid identifiers in every rule engine.
type FunctionRegistry struct {
	mu      sync.RWMutex
	entries map[string]ruleFunction
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{entries: make(map[string]ruleFunction)}
}

// DefaultFunctionRegistry returns a registry holding the widget helpers every
// evaluator exposes:
//
//	parsePrice(text)                 page price text as a number, e.g. "$1,200.50" -> 1200.5
//	breakXPath(path)                 render path segments, e.g. "../.price" -> ["..", ".price"]
//	withinBounds(amount, min, max)   inclusive range check where a null bound is open
func DefaultFunctionRegistry() *FunctionRegistry {
	r := NewFunctionRegistry()
	r.mustRegister("parsePrice", 1, parsePriceFunction)
	r.mustRegister("breakXPath", 1, breakXPathFunction)
	r.mustRegister("withinBounds", 3, withinBoundsFunction)
	return r
}

// Register stores a variadic fn under name. Registering a taken name fails.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	return r.RegisterArity(name, Variadic, fn)
}

// RegisterArity stores fn under name, rejecting calls that do not pass exactly
// arity arguments. Fixed arity functions get typed overloads in CEL.
func (r *FunctionRegistry) RegisterArity(name string, arity int, fn Function) error {
	if fn == nil {
		return fmt.Errorf("widgetconfig: function %q is nil", name)
	}
	if !isIdentifier(name) {
		return fmt.Errorf("widgetconfig: function name %q is not an identifier", name)
	}
	if arity < Variadic {
		return fmt.Errorf("widgetconfig: function %q has invalid arity %d", name, arity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]ruleFunction)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("widgetconfig: function %q already registered", name)
	}
	r.entries[name] = ruleFunction{name: name, arity: arity, fn: fn}
	return nil
}

func (r *FunctionRegistry) mustRegister(name string, arity int, fn Function) {
	if err := r.RegisterArity(name, arity, fn); err != nil {
		panic(err)
	}
}

// Clone returns an independent copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{entries: make(map[string]ruleFunction, len(r.entries))}
	for name, entry := range r.entries {
		clone.entries[name] = entry
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	entry, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("widgetconfig: function %q not registered", name)
	}
	if entry.arity != Variadic && len(args) != entry.arity {
		return nil, fmt.Errorf("widgetconfig: function %q takes %d arguments, got %d", name, entry.arity, len(args))
	}
	return entry.fn(args...)
}

// Arity reports how many arguments name accepts, or Variadic.
func (r *FunctionRegistry) Arity(name string) (int, bool) {
	entry, ok := r.lookup(name)
	return entry.arity, ok
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *FunctionRegistry) lookup(name string) (ruleFunction, bool) {
	if r == nil {
		return ruleFunction{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// withDefaults layers r over the widget helpers. Entries in r replace a
// helper of the same name.
func (r *FunctionRegistry) withDefaults() *FunctionRegistry {
	merged := DefaultFunctionRegistry()
	if r == nil {
		return merged
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, entry := range r.entries {
		merged.entries[name] = entry
	}
	return merged
}

// WithFunctionRegistry exposes registry functions to selection rules run by
// the default engine.
func WithFunctionRegistry(registry *FunctionRegistry) SelectorOption {
	return func(cfg *selectorConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers a variadic fn under name for selection rules
// run by the default engine. NewSelector fails if name cannot be registered.
func WithCustomFunction(name string, fn Function) SelectorOption {
	return func(cfg *selectorConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil && cfg.err == nil {
			cfg.err = err
		}
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func parsePriceFunction(args ...any) (any, error) {
	text, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("parsePrice: expected string, got %T", args[0])
	}
	amount, err := price.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsePrice: %w", err)
	}
	return amount.InexactFloat64(), nil
}

func breakXPathFunction(args ...any) (any, error) {
	path, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("breakXPath: expected string, got %T", args[0])
	}
	segments := BreakXPath(path)
	out := make([]any, len(segments))
	for i, segment := range segments {
		out[i] = segment
	}
	return out, nil
}

func withinBoundsFunction(args ...any) (any, error) {
	bounds, err := price.BoundsFromValues(args[1], args[2])
	if err != nil {
		return nil, fmt.Errorf("withinBounds: %w", err)
	}
	amount, err := price.FromValue(args[0])
	if err != nil {
		return nil, fmt.Errorf("withinBounds: amount: %w", err)
	}
	if amount == nil {
		return false, nil
	}
	return bounds.Contains(*amount), nil
}
