package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvscope/internal/charts"
	"github.com/KaramelBytes/csvscope/internal/metrics"
	"github.com/KaramelBytes/csvscope/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		f, err := charts.ParseFormat(cfg.ChartFormat)
		if err != nil {
			return err
		}
		var m *metrics.Metrics
		if cfg.MetricsEnabled {
			m = metrics.New()
		}
		srv, err := web.New(web.Config{
			PreviewRows:    cfg.PreviewRows,
			MaxBytes:       cfg.MaxBytes,
			MaxRows:        cfg.MaxRows,
			Chart:          charts.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight, Format: f},
			MetricsEnabled: cfg.MetricsEnabled,
		}, newFetcher(), log, m)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8501)")
}
