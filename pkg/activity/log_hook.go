package activity

import (
	"context"
	"sort"
)

// Logger is the structured logger LogHook writes to.
type Logger interface {
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// LogHook writes every event as a structured log line. Rejections are logged
// at warn level.
type LogHook struct {
	Logger Logger
}

// Notify logs event.
func (h LogHook) Notify(_ context.Context, event Event) error {
	if h.Logger == nil {
		return nil
	}
	keyvals := []any{
		"verb", event.Verb,
		"object", event.ObjectType + ":" + event.ObjectID,
		"channel", event.Channel,
	}
	if event.ActorID != "" {
		keyvals = append(keyvals, "actor", event.ActorID)
	}
	keys := make([]string, 0, len(event.Metadata))
	for key := range event.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		keyvals = append(keyvals, key, event.Metadata[key])
	}

	if event.Verb == VerbConfigRejected {
		h.Logger.Warn("activity", keyvals...)
		return nil
	}
	h.Logger.Info("activity", keyvals...)
	return nil
}
