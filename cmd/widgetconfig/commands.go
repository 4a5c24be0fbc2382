package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	widgetconfig "github.com/goliatone/go-widgetconfig"
	"github.com/goliatone/go-widgetconfig/pkg/activity"
	"github.com/goliatone/go-widgetconfig/schema/jsonschema"
)

func normalizeCmd() *cobra.Command {
	var (
		validate bool
		opaque   []string
		audit    bool
	)
	cmd := &cobra.Command{
		Use:   "normalize <config-file>",
		Short: "Convert a legacy configuration into canonical config groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			raw, err := widgetconfig.LoadRawConfig(args[0])
			if err != nil {
				return err
			}
			opts := []widgetconfig.Option{
				widgetconfig.WithLogger(log),
				widgetconfig.WithValidation(validate),
				widgetconfig.WithSplitOptions(widgetconfig.WithOpaqueFields(opaque...)),
			}
			if audit {
				opts = append(opts, widgetconfig.WithActivityHooks(activity.LogHook{Logger: log}))
			}
			normalizer := widgetconfig.NewNormalizer(opts...)
			result, err := normalizer.Normalize(cmd.Context(), raw)
			if err != nil {
				return err
			}
			log.Info("normalized", "file", args[0], "groups", len(result.ConfigGroups))
			return writeOutput(cmd.OutOrStdout(), result.Map())
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", true, "Validate the normalized output")
	cmd.Flags().StringSliceVar(&opaque, "opaque", nil, "Top-level fields shared by reference across groups")
	cmd.Flags().BoolVar(&audit, "audit", false, "Log an activity event for the run")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration already in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			_, doc, err := widgetconfig.ParseCompatibleConfig(data, widgetconfig.FormatFromPath(args[0]))
			if err != nil {
				return err
			}
			if err := widgetconfig.Validate(doc); err != nil {
				log.Error("invalid configuration", "file", args[0], "error", err)
				return err
			}
			log.Info("configuration is valid", "file", args[0])
			return nil
		},
	}
}

func selectCmd() *cobra.Command {
	var (
		url       string
		priceText string
		rule      string
		engine    string
		bounds    bool
		cacheSize int
	)
	cmd := &cobra.Command{
		Use:   "select <config-file>",
		Short: "Preview which config groups apply to a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			raw, err := widgetconfig.LoadRawConfig(args[0])
			if err != nil {
				return err
			}
			config := widgetconfig.MakeCompatible(raw)

			cache, err := widgetconfig.NewLRUProgramCache(cacheSize)
			if err != nil {
				return err
			}
			evaluator, err := buildEvaluator(engine, cache)
			if err != nil {
				return err
			}
			selector, err := widgetconfig.NewSelector(
				widgetconfig.WithEvaluator(evaluator),
				widgetconfig.WithProgramCache(cache),
				widgetconfig.WithRule(rule),
				widgetconfig.WithPriceBounds(bounds),
				widgetconfig.WithEvaluatorLogger(widgetconfig.LoggerEvaluatorAdapter(log)),
			)
			if err != nil {
				return err
			}
			groups, err := selector.Select(config, widgetconfig.Page{URL: url, PriceText: priceText})
			if err != nil {
				return err
			}
			log.Info("selected", "groups", len(groups), "of", len(config.ConfigGroups))
			return writeOutput(cmd.OutOrStdout(), groups)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Page URL matched against urlMatch")
	cmd.Flags().StringVar(&priceText, "price", "", "Rendered price text, e.g. \"$120.00\"")
	cmd.Flags().StringVar(&rule, "rule", "", "Selection rule, e.g. \"price > 50\"")
	cmd.Flags().StringVar(&engine, "engine", "expr", "Rule engine: expr, cel or js")
	cmd.Flags().BoolVar(&bounds, "bounds", false, "Apply merchant minPrice/maxPrice")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 128, "Compiled rule cache size")
	return cmd
}

func buildEvaluator(engine string, cache widgetconfig.ProgramCache) (widgetconfig.Evaluator, error) {
	switch strings.ToLower(engine) {
	case "", "expr":
		return widgetconfig.NewExprEvaluator(widgetconfig.ExprWithProgramCache(cache)), nil
	case "cel":
		return widgetconfig.NewCELEvaluator(widgetconfig.CELWithProgramCache(cache)), nil
	case "js":
		evaluator := widgetconfig.NewJSEvaluator(widgetconfig.JSWithProgramCache(cache))
		if evaluator == nil {
			return nil, fmt.Errorf("js engine unavailable, rebuild with -tags js_eval")
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}

func schemaCmd() *cobra.Command {
	var describe string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the canonical configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if describe != "" {
				raw, err := widgetconfig.LoadRawConfig(describe)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), widgetconfig.Describe(widgetconfig.MakeCompatible(raw)))
			}
			doc, err := jsonschema.New().Generate(nil)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), doc.Document)
		},
	}
	cmd.Flags().StringVar(&describe, "describe", "", "List the field paths of a normalized config file instead")
	return cmd
}
