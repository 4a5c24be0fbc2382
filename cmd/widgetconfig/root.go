package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetconfig/pkg/logger"
)

type globalFlags struct {
	logLevel string
	logJSON  bool
	output   string
}

var flags globalFlags

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "widgetconfig",
		Short:         "Normalize legacy price widget configurations",
		Long:          "Convert legacy multi-target widget configurations into canonical config groups, validate them and preview group selection.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Emit logs as JSON")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "json", "Output format: json or yaml")

	cmd.AddCommand(
		normalizeCmd(),
		validateCmd(),
		selectCmd(),
		schemaCmd(),
	)
	return cmd
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.Level(flags.logLevel),
		Output: cmd.ErrOrStderr(),
		JSON:   flags.logJSON,
		Prefix: "widgetconfig",
	})
}

func writeOutput(w io.Writer, value any) error {
	switch flags.output {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", flags.output)
	}
}
