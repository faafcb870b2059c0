// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/config"
	"github.com/invowk/medkit/internal/report"
)

func newReportCommand(app *App) *cobra.Command {
	var (
		days  int
		ratio float64
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize expired, expiring, low and empty packages",
		Long: `Print a summary of the inventory: counts per variant, expired packages,
packages expiring soon, packages running low and empty packages.

Thresholds come from the report section of the configuration unless
overridden by flags.`,
		Example: `  medkit report
  medkit report --days 7 --ratio 0.5
  medkit report --raw > report.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				thresholds := s.cfg.Report
				if cmd.Flags().Changed("days") {
					thresholds.ExpiringWithinDays = days
				}
				if cmd.Flags().Changed("ratio") {
					thresholds.LowStockRatio = ratio
				}
				if valid, errs := thresholds.IsValid(); !valid {
					return errs[0]
				}

				summary := report.Build(s.manager.Packages(), report.Options{
					Today:              s.manager.Factory().Today(),
					ExpiringWithinDays: thresholds.ExpiringWithinDays,
					LowStockRatio:      thresholds.LowStockRatio,
				})
				md := summary.Markdown()
				if raw {
					fmt.Fprint(app.stdout, md)
					return nil
				}
				out, err := report.Render(md, report.RenderOptions{
					Style: glamourStyle(s.cfg.UI.ColorScheme),
					Width: width,
				})
				if err != nil {
					return fmt.Errorf("render report: %w", err)
				}
				fmt.Fprint(app.stdout, out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", config.DefaultExpiringWithinDays, "days ahead that count as expiring soon")
	cmd.Flags().Float64Var(&ratio, "ratio", config.DefaultLowStockRatio, "share of capacity below which a package is low")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal rendering")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cs config.ColorScheme) string {
	switch cs {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return cs.String()
	default:
		return "auto"
	}
}
