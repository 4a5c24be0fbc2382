package widgetconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-widgetconfig/pkg/activity"
)

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }

func (l *recordingLogger) record(level, msg string) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func TestNormalizerEmitsNormalizedEvent(t *testing.T) {
	capture := &activity.CaptureHook{}
	normalizer := NewNormalizer(
		WithValidation(true),
		WithActivityHooks(capture),
		WithActivityChannel("widgets"),
		WithActor("actor-1", "tenant-1"),
	)

	result, err := normalizer.Normalize(context.Background(), RawConfig{
		FieldMerchantID:  "M1",
		FieldTargetXPath: []any{"/a", "/b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ConfigGroups) != 2 {
		t.Fatalf("expected two groups, got %d", len(result.ConfigGroups))
	}

	event, ok := capture.Last()
	if !ok {
		t.Fatalf("expected an activity event")
	}
	if event.Verb != activity.VerbConfigNormalized || event.ObjectID != "M1" || event.Channel != "widgets" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.ActorID != "actor-1" || event.TenantID != "tenant-1" {
		t.Fatalf("unexpected identity %+v", event)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, event.Metadata["targets"]); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if _, ok := event.Metadata["run_id"].(string); !ok {
		t.Fatalf("expected run id metadata")
	}
}

func TestNormalizerRejectsInvalidOutput(t *testing.T) {
	capture := &activity.CaptureHook{}
	logger := &recordingLogger{}
	normalizer := NewNormalizer(
		WithValidation(true),
		WithLogger(logger),
		WithActivityHooks(capture),
	)

	_, err := normalizer.Normalize(context.Background(), RawConfig{FieldMerchantID: "M1"})
	if !errors.Is(err, ErrEmptyArray) {
		t.Fatalf("expected ErrEmptyArray, got %v", err)
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != activity.VerbConfigRejected {
		t.Fatalf("expected a rejected event, got %v", verbs)
	}
	want := []logEntry{{"debug", "config normalized"}, {"warn", "normalized config rejected"}}
	if diff := cmp.Diff(want, logger.entries, cmp.AllowUnexported(logEntry{})); diff != "" {
		t.Fatalf("log entries mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizerSkipsValidationByDefault(t *testing.T) {
	normalizer := NewNormalizer()
	result, err := normalizer.Normalize(context.Background(), RawConfig{FieldMerchantID: "M1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ConfigGroups) != 0 {
		t.Fatalf("expected no groups, got %d", len(result.ConfigGroups))
	}
}

func TestNormalizerHookErrorsAreLogged(t *testing.T) {
	logger := &recordingLogger{}
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	normalizer := NewNormalizer(WithLogger(logger), WithActivityHooks(capture))

	if _, err := normalizer.Normalize(context.Background(), RawConfig{FieldTargetXPath: "/a"}); err != nil {
		t.Fatalf("expected hook errors not to fail normalization, got %v", err)
	}
	last := logger.entries[len(logger.entries)-1]
	if last.level != "error" || last.msg != "activity emit failed" {
		t.Fatalf("expected emit failure to be logged, got %+v", last)
	}
}

func TestNormalizerForwardsSplitOptions(t *testing.T) {
	handle := map[string]any{"node": "shared"}
	normalizer := NewNormalizer(WithSplitOptions(WithOpaqueFields("anchor")))

	result, err := normalizer.Normalize(context.Background(), RawConfig{
		FieldTargetXPath: []any{"/a", "/b"},
		"anchor":         handle,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handle["node"] = "changed"
	for i, group := range result.ConfigGroups {
		if group["anchor"].(map[string]any)["node"] != "changed" {
			t.Fatalf("group %d: expected opaque field to be shared", i)
		}
	}
}

func TestDecode(t *testing.T) {
	config := MakeCompatible(RawConfig{
		FieldMerchantID:           "M1",
		FieldMinPrice:             "25",
		FieldNumberOfPayments:     float64(4),
		FieldTargetXPath:          []any{"/product/price", "/cart/total"},
		FieldRenderToPath:         []any{"./.sezzle/#widget", ""},
		FieldIgnoredPriceElements: ".price-ignore",
		FieldCustomClasses: []any{
			map[string]any{"xpath": "/product", "className": "wide", FieldTargetXPathIndex: 0},
		},
		"theme": "dark",
	})

	globals, groups, err := Decode(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if globals.MerchantID != "M1" || globals.NumberOfPayments != 4 {
		t.Fatalf("unexpected globals %+v", globals)
	}
	if globals.MinPrice == nil || *globals.MinPrice != 25 || globals.MaxPrice != nil {
		t.Fatalf("unexpected price bounds %+v", globals)
	}
	if len(groups) != 2 {
		t.Fatalf("expected two groups, got %d", len(groups))
	}

	first, second := groups[0], groups[1]
	if diff := cmp.Diff([]string{".", ".sezzle", "#widget"}, first.RenderSegments()); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if second.RenderToPath != nil || second.RenderSegments() != nil {
		t.Fatalf("expected null render path, got %v", second.RenderToPath)
	}
	if diff := cmp.Diff([]CustomClass{{XPath: "/product", ClassName: "wide"}}, first.CustomClasses, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("custom classes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".price-ignore"}, second.IgnoredPriceElements); diff != "" {
		t.Fatalf("ignored elements mismatch (-want +got):\n%s", diff)
	}
	if first.Extra["theme"] != "dark" {
		t.Fatalf("expected unknown fields in Extra, got %v", first.Extra)
	}
}

func TestBreakXPath(t *testing.T) {
	tests := map[string][]string{
		"..":            {".."},
		"./.class1/#id": {".", ".class1", "#id"},
		"//div//span/":  {"div", "span"},
		"":              {},
	}
	for input, want := range tests {
		if diff := cmp.Diff(want, BreakXPath(input)); diff != "" {
			t.Fatalf("%q mismatch (-want +got):\n%s", input, diff)
		}
	}
}
