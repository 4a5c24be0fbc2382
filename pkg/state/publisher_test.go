package state

import (
	"context"
	"errors"
	"testing"
	"time"

	widgetconfig "github.com/goliatone/go-widgetconfig"
	"github.com/goliatone/go-widgetconfig/pkg/activity"
)

func newPublisher(hooks ...activity.ActivityHook) (Publisher, *MemoryStore[Record]) {
	store := NewMemoryStore[Record]()
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return Publisher{
		Store:      store,
		Normalizer: widgetconfig.NewNormalizer(widgetconfig.WithActivityHooks(hooks...)),
		Now:        func() time.Time { return fixed },
	}, store
}

func TestPublisherPublish(t *testing.T) {
	capture := &activity.CaptureHook{}
	publisher, store := newPublisher(capture)
	ref := Ref{MerchantID: "M1"}

	record, meta, err := publisher.Publish(context.Background(), ref, widgetconfig.RawConfig{
		widgetconfig.FieldMerchantID:  "M1",
		widgetconfig.FieldTargetXPath: []any{"/a", "/b"},
	}, Meta{Extra: map[string]string{"source": "test"}})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(record.Config.ConfigGroups) != 2 {
		t.Fatalf("expected two groups, got %d", len(record.Config.ConfigGroups))
	}
	if meta.SnapshotID == "" || meta.ETag == "" || meta.Extra["source"] != "test" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !meta.UpdatedAt.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected injected clock, got %v", meta.UpdatedAt)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored record, got %d", store.Len())
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != activity.VerbConfigNormalized {
		t.Fatalf("expected one normalized event, got %v", verbs)
	}
}

func TestPublisherRejectsInvalidConfig(t *testing.T) {
	publisher, store := newPublisher()
	ref := Ref{MerchantID: "M1"}

	_, _, err := publisher.Publish(context.Background(), ref, widgetconfig.RawConfig{
		widgetconfig.FieldMerchantID: "M1",
	}, Meta{})
	if !errors.Is(err, widgetconfig.ErrEmptyArray) {
		t.Fatalf("expected ErrEmptyArray, got %v", err)
	}

	_, _, err = publisher.Publish(context.Background(), ref, widgetconfig.RawConfig{
		widgetconfig.FieldMerchantID:  "M2",
		widgetconfig.FieldTargetXPath: "/a",
	}, Meta{})
	if err == nil {
		t.Fatalf("expected merchant mismatch error")
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing to be stored, got %d", store.Len())
	}
}

func TestPublisherMutateChecksETag(t *testing.T) {
	publisher, _ := newPublisher()
	ref := Ref{TenantID: "acme", MerchantID: "M1"}

	_, first, err := publisher.Publish(context.Background(), ref, widgetconfig.RawConfig{
		widgetconfig.FieldMerchantID:  "M1",
		widgetconfig.FieldTargetXPath: "/a",
	}, Meta{})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	record, second, err := publisher.Mutate(context.Background(), ref, Meta{ETag: first.ETag}, func(raw widgetconfig.RawConfig) error {
		raw[widgetconfig.FieldTargetXPath] = []any{"/a", "/b"}
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if len(record.Config.ConfigGroups) != 2 {
		t.Fatalf("expected two groups after mutation, got %d", len(record.Config.ConfigGroups))
	}
	if second.ETag == first.ETag || second.SnapshotID == first.SnapshotID {
		t.Fatalf("expected fresh snapshot metadata, got %+v", second)
	}

	_, _, err = publisher.Mutate(context.Background(), ref, Meta{ETag: first.ETag}, func(widgetconfig.RawConfig) error {
		return nil
	})
	if !errors.Is(err, ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	stored, _, ok, err := publisher.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if _, isList := stored.Raw[widgetconfig.FieldTargetXPath].([]any); !isList {
		t.Fatalf("expected stored raw config to reflect the mutation, got %v", stored.Raw)
	}
}

func TestPublisherMutatorError(t *testing.T) {
	publisher, store := newPublisher()
	boom := errors.New("boom")
	_, _, err := publisher.Mutate(context.Background(), Ref{MerchantID: "M1"}, Meta{}, func(widgetconfig.RawConfig) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing to be stored")
	}

	if _, _, err := (Publisher{}).Publish(context.Background(), Ref{MerchantID: "M1"}, nil, Meta{}); err == nil {
		t.Fatalf("expected missing store error")
	}
}

func TestPublisherStoresCopyOfInput(t *testing.T) {
	publisher, _ := newPublisher()
	ref := Ref{MerchantID: "M1"}
	raw := widgetconfig.RawConfig{
		widgetconfig.FieldMerchantID:  "M1",
		widgetconfig.FieldTargetXPath: []any{"/a", "/b"},
		widgetconfig.FieldURLMatch:    "/cart",
	}

	if _, _, err := publisher.Publish(context.Background(), ref, raw, Meta{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	raw[widgetconfig.FieldURLMatch] = "/changed"
	raw[widgetconfig.FieldTargetXPath].([]any)[0] = "/changed"

	record, _, ok, err := publisher.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if record.Raw[widgetconfig.FieldURLMatch] != "/cart" {
		t.Fatalf("stored raw followed caller edit: %v", record.Raw[widgetconfig.FieldURLMatch])
	}
	if got := record.Raw[widgetconfig.FieldTargetXPath].([]any)[0]; got != "/a" {
		t.Fatalf("stored targets followed caller edit: %v", got)
	}
}
