package widgetconfig

import (
	"time"

	"github.com/goliatone/go-widgetconfig/pkg/activity"
)

// RawConfig is a legacy, loosely shaped widget configuration. Fields such as
// targetXPath may hold a single value or a positional array.
type RawConfig map[string]any

// ConfigGroup is the canonical configuration for a single widget target.
type ConfigGroup map[string]any

// Factorized holds the page-wide values lifted out of a configuration.
type Factorized map[string]any

// CompatibleConfig is the normalized configuration consumed by renderers.
type CompatibleConfig struct {
	Globals      Factorized
	ConfigGroups []ConfigGroup
}

// Map renders the compatible configuration in its canonical map form with the
// global fields at the top level next to configGroups.
func (c CompatibleConfig) Map() map[string]any {
	out := make(map[string]any, len(c.Globals)+1)
	for key, value := range c.Globals {
		out[key] = value
	}
	groups := make([]any, 0, len(c.ConfigGroups))
	for _, group := range c.ConfigGroups {
		groups = append(groups, map[string]any(group))
	}
	out[FieldConfigGroups] = groups
	return out
}

// Validate checks the canonical form of c.
func (c CompatibleConfig) Validate() error {
	return Validate(c.Map())
}

// Target joins the per-index inputs of a multi-target configuration.
type Target struct {
	Index int
	XPath any

	// RenderToPath is nil when the positional entry was present but falsy.
	RenderToPath any

	RelatedElementActions any
	HasRelatedActions     bool

	CustomClasses    []any
	HasCustomClasses bool
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Label    string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) label() string {
	if ctx.Label != "" {
		return ctx.Label
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Normalizer.
type Option func(*normalizerConfig)

type normalizerConfig struct {
	logger        Logger
	validate      bool
	splitOptions  []SplitOption
	activityHooks activity.Hooks
	activity      activity.Config
	actorID       string
	tenantID      string
}

func applyOptions(opts []Option) normalizerConfig {
	cfg := normalizerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// WithLogger attaches a structured logger to the Normalizer.
func WithLogger(logger Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.logger = logger
	}
}

// WithValidation toggles validation of the normalized output.
func WithValidation(enabled bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.validate = enabled
	}
}

// WithSplitOptions forwards options to the Splitter used by the Normalizer.
func WithSplitOptions(opts ...SplitOption) Option {
	return func(cfg *normalizerConfig) {
		cfg.splitOptions = append(cfg.splitOptions, opts...)
	}
}

// WithActivityHooks registers hooks notified after each normalization.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *normalizerConfig) {
		cfg.activityHooks = append(cfg.activityHooks, hooks...)
		cfg.activity.Enabled = true
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *normalizerConfig) {
		cfg.activity.Channel = channel
	}
}

// WithActor records the actor and tenant identifiers on emitted events.
func WithActor(actorID, tenantID string) Option {
	return func(cfg *normalizerConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}
