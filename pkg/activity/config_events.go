package activity

import (
	"strings"
	"time"
)

// Verbs and object types emitted for configuration lifecycle events.
const (
	VerbConfigNormalized = "config.normalized"
	VerbConfigRejected   = "config.rejected"
	ObjectTypeConfig     = "widget.config"
)

// ConfigEventInput describes a single normalization run.
type ConfigEventInput struct {
	ActorID    string
	TenantID   string
	MerchantID string
	RunID      string
	Channel    string
	Groups     int
	Targets    []string
	Globals    []string
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildConfigNormalizedEvent constructs the event for a successful run.
func BuildConfigNormalizedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbConfigNormalized, input)
}

// BuildConfigRejectedEvent constructs the event for a run whose output failed
// validation.
func BuildConfigRejectedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbConfigRejected, input)
}

func buildConfigEvent(verb string, input ConfigEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["groups"] = input.Groups
	if len(input.Targets) > 0 {
		metadata["targets"] = append([]string{}, input.Targets...)
	}
	if len(input.Globals) > 0 {
		metadata["globals"] = append([]string{}, input.Globals...)
	}
	if runID := strings.TrimSpace(input.RunID); runID != "" {
		metadata["run_id"] = runID
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	// merchant id identifies the config; anonymous configs fall back to the run
	objectID := strings.TrimSpace(input.MerchantID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.RunID)
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeConfig,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
