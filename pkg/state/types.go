package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	widgetconfig "github.com/goliatone/go-widgetconfig"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies the stored configuration of one merchant.
type Ref struct {
	TenantID   string
	MerchantID string
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	merchant := strings.TrimSpace(r.MerchantID)
	if merchant == "" {
		return "", fmt.Errorf("state: merchant id is required")
	}
	if strings.Contains(merchant, "/") {
		return "", fmt.Errorf("state: merchant id %q must not contain '/'", merchant)
	}
	tenant := strings.TrimSpace(r.TenantID)
	if tenant == "" {
		return "merchant/" + merchant, nil
	}
	return fmt.Sprintf("tenant/%s/merchant/%s", tenant, merchant), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Record is the stored form of a configuration: the legacy input as
// submitted and its normalized output.
type Record struct {
	Raw    widgetconfig.RawConfig       `json:"raw"`
	Config widgetconfig.CompatibleConfig `json:"-"`
}

// Store loads and saves one snapshot for a single Ref.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Mutator edits a legacy configuration in place before it is republished.
type Mutator func(widgetconfig.RawConfig) error

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
