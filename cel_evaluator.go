package widgetconfig

import (
	"fmt"
	"sort"
	"strings"
	"time"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// maxVariadicCELArgs bounds the overloads declared for a variadic registry
// function, since CEL has no variadic calls.
const maxVariadicCELArgs = 3

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry adds registry functions next to the widget helpers.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.functions = registry.withDefaults()
	}
}

// celEvaluator runs selection rules with cel-go. Every binding is declared
// with the CEL type of its Go value, so "index" is an int, "group" a
// map(string, dyn) and "priceText" a string, and rules are type checked
// against the page they run for.
type celEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{functions: DefaultFunctionRegistry()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) engineName() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile reports syntax errors up front. Type checking waits for the first
// evaluation, when the binding types are known.
func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "compile", issues.Err())
	}
	return &celCompiledRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) bindings(ctx RuleContext) map[string]any {
	bindings := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if ctx.Label != "" {
		bindings["label"] = ctx.Label
	}
	for key, value := range snapshotAsMap(ctx.Snapshot) {
		bindings[key] = value
	}
	return bindings
}

func (e *celEvaluator) program(expression string, bindings map[string]any) (celgo.Program, error) {
	key := e.cacheKey(expression, bindings)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := celgo.NewEnv(e.envOptions(bindings)...)
	if err != nil {
		return nil, err
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *celEvaluator) envOptions(bindings map[string]any) []celgo.EnvOption {
	opts := make([]celgo.EnvOption, 0, len(bindings))
	for name, value := range bindings {
		opts = append(opts, celgo.Variable(name, celType(value)))
	}
	for _, name := range e.functions.Names() {
		arity, _ := e.functions.Arity(name)
		arities := []int{arity}
		if arity == Variadic {
			arities = arities[:0]
			for n := 1; n <= maxVariadicCELArgs; n++ {
				arities = append(arities, n)
			}
		}
		overloads := make([]celgo.FunctionOpt, 0, len(arities))
		for _, n := range arities {
			params := make([]*celgo.Type, n)
			for i := range params {
				params[i] = celgo.DynType
			}
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("%s_dyn_%d", name, n),
				params,
				celgo.DynType,
				celgo.FunctionBinding(e.dispatch(name)),
			))
		}
		opts = append(opts, celgo.Function(name, overloads...))
	}
	return opts
}

func (e *celEvaluator) dispatch(name string) functions.FunctionOp {
	return func(values ...ref.Val) ref.Val {
		args := make([]any, len(values))
		for i, value := range values {
			args[i] = value.Value()
		}
		result, err := e.functions.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

// cacheKey covers every binding name and type plus the function names, since
// a CEL program is only valid for the environment it was checked against.
func (e *celEvaluator) cacheKey(expression string, bindings map[string]any) string {
	decls := make([]string, 0, len(bindings))
	for name, value := range bindings {
		decls = append(decls, name+" "+celType(value).String())
	}
	sort.Strings(decls)
	return "cel:" + strings.Join(decls, ",") + "|" + strings.Join(e.functions.Names(), ",") + ":" + expression
}

func celType(value any) *celgo.Type {
	switch value.(type) {
	case string:
		return celgo.StringType
	case bool:
		return celgo.BoolType
	case int, int32, int64:
		return celgo.IntType
	case float32, float64:
		return celgo.DoubleType
	case time.Time:
		return celgo.TimestampType
	case map[string]any:
		return celgo.MapType(celgo.StringType, celgo.DynType)
	case []any:
		return celgo.ListType(celgo.DynType)
	default:
		return celgo.DynType
	}
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	bindings := r.evaluator.bindings(ctx)
	program, err := r.evaluator.program(r.expression, bindings)
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.label(), err)
	}
	out, _, err := program.Eval(bindings)
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.label(), err)
	}
	return out.Value(), nil
}

func snapshotAsMap(value any) map[string]any {
	if m, ok := asMap(value); ok && m != nil {
		return m
	}
	return map[string]any{}
}
