// Package hydrate decodes loosely typed configuration maps into typed
// descriptors.
package hydrate

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-widgetconfig/internal/clone"
)

// PreHook lets callers rewrite the payload before decoding. It receives a
// private copy of the caller's payload.
type PreHook func(map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded struct.
type PostHook[T any] func(*T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts configuration maps into T.
type Decoder[T any] struct {
	preHooks   []PreHook
	postHooks  []PostHook[T]
	decodeHook []mapstructure.DecodeHookFunc
	strict     bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDecodeHook appends a mapstructure decode hook.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.decodeHook = append(d.decodeHook, hook)
		}
	}
}

// WithStrict disables weak typing and rejects unused keys.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode is shorthand for NewDecoder[T](opts...).Decode(payload).
func Decode[T any](payload map[string]any, opts ...DecoderOption[T]) (T, error) {
	return NewDecoder(opts...).Decode(payload)
}

// Decode converts payload into T applying configured hooks. The payload is
// never mutated.
func (d *Decoder[T]) Decode(payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil")
	}

	current := clone.Value(payload).(map[string]any)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook failed: %w", err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	hooks := append([]mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
	}, d.decodeHook...)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
		WeaklyTypedInput: !d.strict,
		ErrorUnused:      d.strict,
		Result:           &result,
	})
	if err != nil {
		return zero, fmt.Errorf("hydrate: build decoder: %w", err)
	}
	if err := decoder.Decode(current); err != nil {
		return zero, fmt.Errorf("hydrate: decode: %w", err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(&result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook failed: %w", err)
		}
	}

	return result, nil
}
