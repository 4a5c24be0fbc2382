package widgetconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-widgetconfig/price"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoEvaluator reports that no rule engine could be constructed.
	ErrNoEvaluator = errors.New("widgetconfig: evaluator not configured")
	// ErrRuleResult reports a selection rule that did not produce a boolean.
	ErrRuleResult = errors.New("widgetconfig: selection rule must return a boolean")
)

// Page describes the host page a widget is about to render on.
type Page struct {
	URL string
	// PriceText is the rendered price string, parsed with price.Parse.
	PriceText string
	Args      map[string]any
}

// SelectorOption configures a Selector.
type SelectorOption func(*selectorConfig)

type selectorConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
	rule         string
	priceBounds  bool
	err          error
}

// WithEvaluator sets the engine used for selection rules. The expr engine is
// used when none is configured.
func WithEvaluator(e Evaluator) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.evaluator = e
	}
}

// WithRule filters groups with expr. The rule sees group, globals, target,
// url, price, priceText and index as variables plus the registry helpers
// (parsePrice, breakXPath, withinBounds), and must return a boolean.
func WithRule(expr string) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.rule = strings.TrimSpace(expr)
	}
}

// WithPriceBounds drops every group when the page price falls outside the
// merchant minPrice/maxPrice globals.
func WithPriceBounds(enabled bool) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.priceBounds = enabled
	}
}

// WithEvaluatorLogger attaches an evaluator logger to the Selector.
func WithEvaluatorLogger(logger EvaluatorLogger) SelectorOption {
	return func(cfg *selectorConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// Selector picks the config groups that apply to a page.
type Selector struct {
	cfg      selectorConfig
	engine   string
	compiled CompiledRule
}

// NewSelector constructs a Selector, compiling the configured rule up front.
func NewSelector(opts ...SelectorOption) (*Selector, error) {
	cfg := selectorConfig{logger: noopEvaluatorLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	s := &Selector{cfg: cfg}
	if cfg.rule == "" {
		return s, nil
	}

	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	s.engine = evaluatorEngineName(evaluator)
	compiled, err := evaluator.Compile(cfg.rule)
	if err != nil {
		return nil, wrapEvaluationError(s.engine, cfg.rule, "compile", err)
	}
	s.compiled = compiled
	return s, nil
}

// Select returns the groups of config applicable to page, in order. A group
// with a urlMatch only applies when the page URL contains it.
func (s *Selector) Select(config CompatibleConfig, page Page) ([]ConfigGroup, error) {
	amount, hasAmount := parsePagePrice(page.PriceText)

	selected := []ConfigGroup{}
	if s.cfg.priceBounds && hasAmount {
		bounds, err := price.BoundsFromValues(config.Globals[FieldMinPrice], config.Globals[FieldMaxPrice])
		if err != nil {
			return nil, fmt.Errorf("widgetconfig: price bounds: %w", err)
		}
		if !bounds.Contains(amount) {
			return selected, nil
		}
	}

	var priceValue any
	if hasAmount {
		priceValue = amount.InexactFloat64()
	}

	for i, group := range config.ConfigGroups {
		if !matchesURL(group, page.URL) {
			continue
		}
		if s.compiled == nil {
			selected = append(selected, group)
			continue
		}
		ok, err := s.evaluateRule(i, group, config.Globals, page, priceValue)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, group)
		}
	}
	return selected, nil
}

func (s *Selector) evaluateRule(index int, group ConfigGroup, globals Factorized, page Page, priceValue any) (bool, error) {
	ctx := RuleContext{
		Snapshot: map[string]any{
			"group":     map[string]any(group),
			"globals":   map[string]any(globals),
			"target":    groupTarget(group),
			"url":       page.URL,
			"price":     priceValue,
			"priceText": page.PriceText,
			"index":     index,
		},
		Args:  page.Args,
		Label: fmt.Sprintf("group:%d", index),
	}.withDefaults()

	start := time.Now()
	value, err := s.compiled.Evaluate(ctx)
	err = wrapEvaluationError(s.engine, s.cfg.rule, ctx.label(), err)
	if err == nil {
		if _, isBool := value.(bool); !isBool {
			err = wrapEvaluationError(s.engine, s.cfg.rule, ctx.label(), fmt.Errorf("%w, got %T", ErrRuleResult, value))
		}
	}
	s.cfg.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   s.engine,
		Expr:     s.cfg.rule,
		Label:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

func (s *Selector) resolveEvaluator() (Evaluator, error) {
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if s.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(s.cfg.programCache))
	}
	if s.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(s.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	s.cfg.evaluator = evaluator
	return evaluator, nil
}

func matchesURL(group ConfigGroup, url string) bool {
	match, ok := group[FieldURLMatch].(string)
	if !ok || match == "" {
		return true
	}
	return strings.Contains(url, match)
}

func parsePagePrice(text string) (decimal.Decimal, bool) {
	if strings.TrimSpace(text) == "" {
		return decimal.Zero, false
	}
	amount, err := price.Parse(text)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// groupTarget is the group's single targetXPath, or "" when it has none.
func groupTarget(group ConfigGroup) string {
	target, _ := group[FieldTargetXPath].(string)
	return target
}

func evaluatorEngineName(e Evaluator) string {
	if named, ok := e.(interface{ engineName() string }); ok {
		return named.engineName()
	}
	return "custom"
}
