// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/store"
	"github.com/invowk/medkit/pkg/medicine"
)

func newListCommand(app *App) *cobra.Command {
	var (
		expired bool
		variant string
		title   string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List medicine packages",
		Example: `  medkit list
  medkit list --expired
  medkit list --variant drops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f store.Filter
			if variant != "" {
				v, err := medicine.ParseVariant(variant)
				if err != nil {
					return app.fail(err)
				}
				f.Variant = &v
			}
			if cmd.Flags().Changed("title") {
				normalized := medicine.NormalizeTitle(title)
				f.Title = &normalized
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				var packages []medicine.Package
				if expired {
					packages = matching(s.manager.Expired(), f)
				} else {
					packages = s.manager.Query(f)
				}
				if len(packages) == 0 {
					fmt.Fprintln(app.stdout, SubtitleStyle.Render("No packages found."))
					return nil
				}
				fmt.Fprintln(app.stdout, packageTable(packages, s.manager.Factory().Today()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only list packages expiring today or earlier")
	cmd.Flags().StringVar(&variant, "variant", "", "only list this dosage form")
	cmd.Flags().StringVar(&title, "title", "", "only list packages with this exact title")
	return cmd
}

func matching(packages []medicine.Package, f store.Filter) []medicine.Package {
	out := packages[:0:0]
	for _, p := range packages {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// packageTable renders packages as a bordered table. Expired rows are red
// and empty rows are muted.
func packageTable(packages []medicine.Package, today time.Time) *table.Table {
	styles := make([]lipgloss.Style, 0, len(packages))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "VARIANT", "TITLE", "EXPIRES", "LEFT")
	for _, p := range packages {
		t.Row(
			strconv.Itoa(p.ID()),
			p.Variant().String(),
			p.Title(),
			medicine.FormatDate(p.ExpirationDate()),
			fmt.Sprintf("%s/%s %s", formatAmount(p.CurrentQuantity()), formatAmount(p.Capacity()), p.Variant().Unit()),
		)
		switch {
		case !p.ExpirationDate().After(today):
			styles = append(styles, tableExpiredStyle)
		case p.IsEmpty():
			styles = append(styles, tableEmptyStyle)
		default:
			styles = append(styles, tableCellStyle)
		}
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return tableHeaderStyle
		}
		if row >= 0 && row < len(styles) {
			return styles[row]
		}
		return tableCellStyle
	})
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
