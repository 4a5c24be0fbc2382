package widgetconfig

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-widgetconfig/internal/hydrate"
	"github.com/goliatone/go-widgetconfig/pkg/activity"
	"github.com/google/uuid"
)

// Normalizer runs MakeCompatible for host applications, adding optional
// validation, logging and activity reporting around the pure pipeline.
type Normalizer struct {
	cfg      normalizerConfig
	splitter *Splitter
	emitter  *activity.Emitter
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	cfg := applyOptions(opts)
	return &Normalizer{
		cfg:      cfg,
		splitter: NewSplitter(cfg.splitOptions...),
		emitter:  activity.NewEmitter(cfg.activityHooks, cfg.activity),
	}
}

// Normalize converts raw into its compatible form. When validation is enabled
// a failing result is returned together with the *ConfigurationError.
func (n *Normalizer) Normalize(ctx context.Context, raw RawConfig) (CompatibleConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	log := n.cfg.logger

	result := makeCompatible(n.splitter, raw)
	merchantID, _ := result.Globals[FieldMerchantID].(string)

	log.Debug("config normalized",
		"run", runID,
		"merchant", merchantID,
		"globals", len(result.Globals),
		"groups", len(result.ConfigGroups),
	)

	var validationErr error
	if n.cfg.validate {
		validationErr = result.Validate()
		if validationErr != nil {
			log.Warn("normalized config rejected", "run", runID, "merchant", merchantID, "error", validationErr)
		}
	}

	input := activity.ConfigEventInput{
		ActorID:    n.cfg.actorID,
		TenantID:   n.cfg.tenantID,
		MerchantID: merchantID,
		RunID:      runID,
		Groups:     len(result.ConfigGroups),
		Targets:    groupTargets(result.ConfigGroups),
		Globals:    sortedKeys(result.Globals),
		Err:        validationErr,
	}
	event := activity.BuildConfigNormalizedEvent(input)
	if validationErr != nil {
		event = activity.BuildConfigRejectedEvent(input)
	}
	if err := n.emitter.Emit(ctx, event); err != nil {
		log.Error("activity emit failed", "run", runID, "error", err)
	}

	return result, validationErr
}

// Decode converts a compatible config into typed descriptors.
func (n *Normalizer) Decode(config CompatibleConfig) (Globals, []Group, error) {
	return Decode(config)
}

// Decode converts a compatible config into typed descriptors. Unknown group
// fields are kept by reference in Group.Extra.
func Decode(config CompatibleConfig) (Globals, []Group, error) {
	globals, err := hydrate.Decode[Globals](map[string]any(config.Globals))
	if err != nil {
		return Globals{}, nil, fmt.Errorf("widgetconfig: decode globals: %w", err)
	}
	groups := make([]Group, 0, len(config.ConfigGroups))
	for i, raw := range config.ConfigGroups {
		group, err := hydrate.Decode[Group](map[string]any(raw))
		if err != nil {
			return Globals{}, nil, fmt.Errorf("widgetconfig: decode group %d: %w", i, err)
		}
		groups = append(groups, group)
	}
	return globals, groups, nil
}

func groupTargets(groups []ConfigGroup) []string {
	targets := make([]string, 0, len(groups))
	for _, group := range groups {
		if xpath, ok := group[FieldTargetXPath].(string); ok {
			targets = append(targets, xpath)
		}
	}
	return targets
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
