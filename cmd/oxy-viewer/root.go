package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oxy-viewer",
	Short: "oxy-viewer displays a 3D model with fallback to a default asset and a placeholder",
	Long: `oxy-viewer opens a window showing one glTF model. A model that cannot be loaded is
replaced by the default asset, and a procedural placeholder when that fails too.`,
	SilenceUsage: true,
	RunE:         runView,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML settings file")
	flags.String("models", "", "Directory holding the model assets (overrides models_dir)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("metrics-addr", "", "Address serving Prometheus metrics, e.g. :9090 (overrides metrics_addr)")

	addViewFlags(rootCmd)
}

// newLogger builds the logger selected by --log-level.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(logging.ParseLevel(level))
}

// resolveSettings loads the --config file and applies the flags the user set on top of it.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	s, err := config.LoadSettings(path)
	if err != nil {
		return s, err
	}

	if flags.Changed("models") {
		s.ModelsDir, _ = flags.GetString("models")
	}
	if flags.Changed("metrics-addr") {
		s.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if f := flags.Lookup("base-url"); f != nil && f.Changed {
		s.BaseURL = f.Value.String()
	}
	if f := flags.Lookup("watch"); f != nil && f.Changed {
		s.Watch, _ = flags.GetBool("watch")
	}
	return s, s.Validate()
}
