package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	widgetconfig "github.com/goliatone/go-widgetconfig"
	"github.com/goliatone/go-widgetconfig/internal/clone"
)

// Publisher normalizes legacy configurations and stores the result.
type Publisher struct {
	Store      Store[Record]
	Normalizer *widgetconfig.Normalizer
	Now        func() time.Time
}

// Publish normalizes raw, validates the result and saves it under ref. When
// meta.ETag is set it must match the stored ETag. The returned Meta carries a
// fresh snapshot id and ETag. The stored record holds a copy of raw, so later
// edits to the caller's map do not leak into it.
func (p Publisher) Publish(ctx context.Context, ref Ref, raw widgetconfig.RawConfig, meta Meta) (Record, Meta, error) {
	if err := p.ready(); err != nil {
		return Record{}, Meta{}, err
	}
	_, loadedMeta, _, err := p.Store.Load(ctx, ref)
	if err != nil {
		return Record{}, Meta{}, fmt.Errorf("state: load %s: %w", ref.MerchantID, err)
	}
	return p.save(ctx, ref, widgetconfig.RawConfig(clone.Map(raw, nil)), loadedMeta, meta)
}

// Load returns the stored record for ref.
func (p Publisher) Load(ctx context.Context, ref Ref) (Record, Meta, bool, error) {
	if p.Store == nil {
		return Record{}, Meta{}, false, fmt.Errorf("state: store is required")
	}
	return p.Store.Load(ctx, ref)
}

// Mutate loads the legacy input stored for ref, applies fn to a copy and
// republishes it. A missing record starts from an empty configuration.
func (p Publisher) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (Record, Meta, error) {
	if err := p.ready(); err != nil {
		return Record{}, Meta{}, err
	}
	if fn == nil {
		return Record{}, Meta{}, fmt.Errorf("state: mutator is required")
	}

	record, loadedMeta, ok, err := p.Store.Load(ctx, ref)
	if err != nil {
		return Record{}, Meta{}, fmt.Errorf("state: load %s: %w", ref.MerchantID, err)
	}
	raw := widgetconfig.RawConfig{}
	if ok && record.Raw != nil {
		raw = widgetconfig.RawConfig(clone.Map(record.Raw, nil))
	}
	if err := fn(raw); err != nil {
		return Record{}, loadedMeta, err
	}
	return p.save(ctx, ref, raw, loadedMeta, meta)
}

func (p Publisher) save(ctx context.Context, ref Ref, raw widgetconfig.RawConfig, loadedMeta, meta Meta) (Record, Meta, error) {
	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return Record{}, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	config, err := p.Normalizer.Normalize(ctx, raw)
	if err != nil {
		return Record{}, loadedMeta, err
	}
	if err := config.Validate(); err != nil {
		return Record{}, loadedMeta, err
	}
	if merchant, _ := config.Globals[widgetconfig.FieldMerchantID].(string); merchant != "" && merchant != ref.MerchantID {
		return Record{}, loadedMeta, fmt.Errorf("state: config merchant %q does not match ref %q", merchant, ref.MerchantID)
	}

	next := mergeMeta(loadedMeta, meta)
	next.SnapshotID = uuid.NewString()
	next.ETag = uuid.NewString()
	next.UpdatedAt = p.now()

	record := Record{Raw: raw, Config: config}
	saved, err := p.Store.Save(ctx, ref, record, next)
	if err != nil {
		return Record{}, loadedMeta, fmt.Errorf("state: save %s: %w", ref.MerchantID, err)
	}
	return record, saved, nil
}

func (p Publisher) ready() error {
	if p.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if p.Normalizer == nil {
		return fmt.Errorf("state: normalizer is required")
	}
	return nil
}

func (p Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
