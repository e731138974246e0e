package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/server"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the viewer window",
	Long: `Opens the viewer window and loads the model named by the embedding parameters.

The embedding parameters are a query string: "model=chair.glb" selects the model and a
"hideUI" key hides the catalog panel. Keys 1-9 load catalog models, H toggles the panel,
R toggles auto-rotation and Esc quits.`,
	Example: `  oxy-viewer view --embed "model=chair.glb"
  oxy-viewer view --base-url http://localhost:8080/models --embed "model=sofa.glb&hideUI"`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addViewFlags(viewCmd)
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("embed", "", `Embedding parameters as a query string, e.g. "model=chair.glb&hideUI"`)
	cmd.Flags().String("base-url", "", "Fetch models over HTTP from this URL instead of the models directory")
	cmd.Flags().Bool("watch", false, "Reload the displayed model when its file changes")
}

func runView(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	embed, _ := cmd.Flags().GetString("embed")
	cfg := config.ResolveQuery(embed, settings.DefaultAsset)

	win, err := window.NewWindow(
		window.WithTitle(settings.Window.Title),
		window.WithSize(settings.Window.Width, settings.Window.Height),
		window.WithMinSize(320, 240),
	)
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}

	v, err := engine.NewViewer(settings, cfg, win, engine.WithLogger(logger))
	if err != nil {
		_ = win.Close()
		return err
	}
	defer v.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.MetricsAddr != "" {
		srv := server.NewServer(nil, settings.Catalog, settings.DefaultAsset,
			server.WithMetricsHandler(v.Metrics().Handler()),
			server.WithLogger(logger),
		)
		go func() {
			if err := srv.Serve(ctx, settings.MetricsAddr); err != nil {
				logger.Error("metrics server failed", "addr", settings.MetricsAddr, "error", err)
			}
		}()
	}

	logger.Info("viewer started", "model", cfg.RequestedAsset(), "hide_ui", cfg.UIHidden(),
		"models_dir", settings.ModelsDir, "base_url", settings.BaseURL)
	if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
