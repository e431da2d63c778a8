package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/csvscope/internal/config"
	"github.com/KaramelBytes/csvscope/internal/dataset"
	"github.com/KaramelBytes/csvscope/internal/logging"
	"github.com/KaramelBytes/csvscope/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides for config values (applied only when set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagMaxBytes         int64
	flagFilter           string

	// Loaded configuration
	cfg *cfgpkg.Global
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "csvscope",
	Short:         "csvscope: quick exploratory analysis of CSV datasets",
	Long:          `csvscope loads a CSV file or URL, summarizes its columns and renders histogram, scatter, box and correlation charts, either from the command line or through a small web dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if dataset.IsWarning(err) {
			fmt.Fprintln(os.Stderr, "⚠ Warning:", err)
		} else {
			fmt.Fprintln(os.Stderr, "✗ Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.csvscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds for URL sources (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max fetch attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagMaxBytes, "max-bytes", 0, "maximum dataset size in bytes (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFilter, "filter", "", `boolean row filter, e.g. 'region == "east"' (==, !=, in, contains, matches; no ordering operators)`)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("max-bytes") && flagMaxBytes > 0 {
		cfg.MaxBytes = flagMaxBytes
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logging.NewLogger(level, cfg.LogFormat, false)
}

// defaults returns the configuration Load would produce without a file or env.
func defaults() *cfgpkg.Global {
	return &cfgpkg.Global{
		ListenAddr:       ":8501",
		HTTPTimeoutSec:   30,
		RetryMaxAttempts: 1,
		RetryBaseDelayMs: 500,
		RetryMaxDelayMs:  4000,
		MaxBytes:         100 << 20,
		PreviewRows:      10,
		ChartWidth:       720,
		ChartHeight:      480,
		ChartFormat:      "png",
		LogLevel:         "info",
		LogFormat:        "text",
		MetricsEnabled:   true,
	}
}

func newFetcher() *dataset.HTTPFetcher {
	return dataset.NewHTTPFetcher(cfg.HTTPTimeout(), cfg.MaxBytes, cfg.RetryMaxAttempts, cfg.RetryBaseDelay(), cfg.RetryMaxDelay())
}

// loadTable resolves a positional argument: anything containing "://" is fetched
// as a URL, everything else is read from disk as an upload.
func loadTable(ctx context.Context, arg string) (*dataset.Table, error) {
	opt := dataset.Options{
		MaxBytes: cfg.MaxBytes,
		MaxRows:  cfg.MaxRows,
		Fetcher:  newFetcher(),
		Filter:   flagFilter,
	}
	var src dataset.Source
	if utils.IsURL(arg) {
		src.URL = arg
	} else {
		b, err := utils.ReadFileLimited(arg, cfg.MaxBytes)
		if err != nil {
			return nil, err
		}
		src.Upload = b
		src.UploadName = filepath.Base(arg)
	}
	t, err := dataset.Resolve(ctx, src, opt)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("no data source given")
	}
	if t.Truncated > 0 {
		log.WithFields(logrus.Fields{"source": arg, "dropped_rows": t.Truncated}).Warn("dataset truncated")
		fmt.Fprintf(os.Stderr, "⚠ Warning: kept the first %d rows, dropped %d\n", t.Rows, t.Truncated)
	}
	return t, nil
}
