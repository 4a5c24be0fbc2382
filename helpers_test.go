package widgetconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}

// roundTrip normalizes Go values into their JSON decoded shape so they can
// be compared against fixtures.
func roundTrip(t *testing.T, value any) any {
	t.Helper()
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

type capturingEvaluator struct {
	contexts []RuleContext
	result   any
}

func (c *capturingEvaluator) Evaluate(ctx RuleContext, _ string) (any, error) {
	c.contexts = append(c.contexts, ctx)
	return c.result, nil
}

func (c *capturingEvaluator) Compile(expr string, _ ...CompileOption) (CompiledRule, error) {
	if expr == "" {
		return nil, fmt.Errorf("capturing evaluator requires an expression")
	}
	return capturingRule{evaluator: c}, nil
}

type capturingRule struct {
	evaluator *capturingEvaluator
}

func (r capturingRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.Evaluate(ctx, "")
}
