package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvscope/internal/analysis"
	"github.com/KaramelBytes/csvscope/internal/charts"
	"github.com/KaramelBytes/csvscope/internal/utils"
)

var (
	plotX      string
	plotY      string
	plotOutput string
	plotFormat string
)

var plotCmd = &cobra.Command{
	Use:   "plot <histogram|scatter|box|heatmap|all> <file|url>",
	Short: "Render a chart to an image file",
	Long: `Render one chart kind to the --output file. Unset --x/--y fall back to the
first eligible column. With "all", every applicable chart is written into the
--output directory as <kind>.<format>.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if plotOutput == "" {
			return fmt.Errorf("--output is required")
		}
		format := plotFormat
		if format == "" {
			if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(plotOutput)), "."); ext == "png" || ext == "svg" {
				format = ext
			} else {
				format = cfg.ChartFormat
			}
		}
		f, err := charts.ParseFormat(format)
		if err != nil {
			return err
		}
		opt := charts.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight, Format: f}

		var reqs []charts.Request
		all := strings.EqualFold(args[0], "all")
		if !all {
			kind, err := charts.ParseKind(args[0])
			if err != nil {
				return err
			}
			reqs = []charts.Request{{Kind: kind, X: plotX, Y: plotY}}
		}

		t, err := loadTable(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		cs := analysis.Classify(t)
		if all {
			reqs = charts.Defaults(cs)
		} else {
			reqs[0] = withDefaults(reqs[0], charts.Defaults(cs))
		}

		for _, req := range reqs {
			path := plotOutput
			if all {
				path = filepath.Join(plotOutput, string(req.Kind)+"."+string(f))
			}
			img, err := charts.Render(t, req, opt)
			if err != nil {
				if all {
					log.WithFields(logrus.Fields{"kind": req.Kind, "error": err}).Warn("chart skipped")
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s: %v\n", req.Kind, err)
					continue
				}
				return err
			}
			if err := utils.SafeWriteFile(path, img.Data); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s → %s\n", req.Caption(), path)
		}
		return nil
	},
}

// withDefaults fills unset selections from the default request of the same kind.
func withDefaults(req charts.Request, defaults []charts.Request) charts.Request {
	for _, d := range defaults {
		if d.Kind != req.Kind {
			continue
		}
		if req.X == "" {
			req.X = d.X
		}
		if req.Y == "" {
			req.Y = d.Y
		}
	}
	return req
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotX, "x", "", "x column (histogram/scatter value, box category)")
	plotCmd.Flags().StringVar(&plotY, "y", "", "y column (scatter y, box value)")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "output file (directory for \"all\")")
	plotCmd.Flags().StringVar(&plotFormat, "format", "", "image format: png|svg (default from extension or config)")
}
