//go:build js_eval

package widgetconfig

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs selection rules as JavaScript expressions with goja. Each
// evaluation gets a fresh runtime holding the snapshot and the registry
// helpers as globals.
type jsEvaluator struct {
	cfg jsEvaluatorConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{cfg: newJSEvaluatorConfig(opts)}
}

func (e *jsEvaluator) engineName() string { return "js" }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.program(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "compile", err)
	}
	return &jsCompiledRule{evaluator: e, expression: expression, program: program}, nil
}

func (e *jsEvaluator) program(expression string) (*goja.Program, error) {
	key := "js:" + expression
	if e.cfg.cache != nil {
		if cached, ok := e.cfg.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("rule", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
	if err != nil {
		return nil, err
	}
	if e.cfg.cache != nil {
		e.cfg.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) runtime(ctx RuleContext) (*goja.Runtime, error) {
	vm := goja.New()
	globals := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if ctx.Label != "" {
		globals["label"] = ctx.Label
	}
	for key, value := range snapshotAsMap(ctx.Snapshot) {
		globals[key] = value
	}
	for _, name := range e.cfg.functions.Names() {
		name := name
		globals[name] = func(arguments ...any) (any, error) {
			return e.cfg.functions.Call(name, arguments...)
		}
	}
	for key, value := range globals {
		if err := vm.Set(key, value); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return vm, nil
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vm, err := r.evaluator.runtime(ctx)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.label(), err)
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.label(), err)
	}
	return value.Export(), nil
}
