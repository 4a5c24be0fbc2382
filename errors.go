package widgetconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failure kinds. ConfigurationError unwraps to one of these.
var (
	ErrNotAnArray           = errors.New("widgetconfig: configGroups must be an array")
	ErrEmptyArray           = errors.New("widgetconfig: configGroups must have at least one config object")
	ErrMissingRequiredField = errors.New("widgetconfig: missing required field")
	ErrWrongType            = errors.New("widgetconfig: wrong field type")
	ErrMisplacedGlobalField = errors.New("widgetconfig: global field inside config group")
)

// ConfigurationError describes the first violation found by Validate.
type ConfigurationError struct {
	Kind     error
	Field    string
	Group    int
	Expected string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrNotAnArray, ErrEmptyArray:
		return e.Kind.Error()
	case ErrMissingRequiredField:
		return fmt.Sprintf("widgetconfig: %s must be specified in all configs in configGroups (group %d)", e.Field, e.Group)
	case ErrWrongType:
		return fmt.Sprintf("widgetconfig: %s must be of type %s (group %d)", e.Field, e.Expected, e.Group)
	case ErrMisplacedGlobalField:
		return fmt.Sprintf("widgetconfig: %s is not a property of a configGroup, specify it at the outermost layer (group %d)", e.Field, e.Group)
	default:
		return fmt.Sprintf("widgetconfig: invalid configuration field=%s group=%d: %v", e.Field, e.Group, e.Kind)
	}
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newConfigurationError(kind error, group int, field, expected string) error {
	return &ConfigurationError{
		Kind:     kind,
		Field:    field,
		Group:    group,
		Expected: expected,
	}
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Label  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("widgetconfig: %s evaluator %s label=%s: %v", e.Engine, describeExpression(e.Expr), e.Label, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "widgetconfig:") {
		return err
	}
	return fmt.Errorf("widgetconfig: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, label string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Label == "" {
			evalErr.Label = label
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Label:  label,
		Err:    err,
	}
}
