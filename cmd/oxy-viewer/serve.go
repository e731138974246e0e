package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-viewer/engine/metrics"
	"github.com/Carmen-Shannon/oxy-viewer/engine/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the models directory over HTTP",
	Long: `Serves the models directory, the catalog and Prometheus metrics over HTTP so viewers
started with --base-url can load models remotely.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)
		addr, _ := cmd.Flags().GetString("addr")

		m := metrics.NewMetrics(metrics.WithRuntimeCollectors())
		srv := server.NewServer(os.DirFS(settings.ModelsDir), settings.Catalog, settings.DefaultAsset,
			server.WithMetricsHandler(m.Handler()),
			server.WithLogger(logger),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("serving models", "addr", addr, "models_dir", settings.ModelsDir)
		if err := srv.Serve(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
