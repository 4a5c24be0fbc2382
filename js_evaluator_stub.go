//go:build !js_eval

package widgetconfig

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag,
// which links the goja runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSEvaluatorConfig(opts)
	return nil
}
