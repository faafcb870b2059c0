// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/pkg/medicine"
)

func newTakeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "take <id> [units]",
		Short: "Consume units from a package",
		Long: `Consume units from a package: tablets for pills, drops for drops
(one drop is 0.05 ml). Units default to 1.

The request is refused, leaving the package unchanged, when the package is
expired, empty, or holds less than requested. A refusal is reported but is
not an error.`,
		Example: `  medkit take 1
  medkit take 4 10`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.fail(err)
			}
			units := 1.0
			if len(args) == 2 {
				if units, err = parseUnits(args[1]); err != nil {
					return app.fail(err)
				}
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				p, taken, err := s.manager.Consume(id, units)
				if err != nil {
					return err
				}
				if !taken {
					fmt.Fprintf(app.stderr, "%s nothing taken from %s: %s\n", WarningStyle.Render("Refused:"),
						CmdStyle.Render(fmt.Sprintf("#%d", p.ID())), refusalReason(p, units))
					return nil
				}
				s.dirty = true
				fmt.Fprintf(app.stdout, "%s Took %s %s from %s; %s %s left\n", SuccessStyle.Render("✓"),
					formatAmount(units), unitNoun(p.Variant(), units), CmdStyle.Render(fmt.Sprintf("#%d", p.ID())),
					formatAmount(p.CurrentQuantity()), p.Variant().Unit())
				return nil
			})
		},
	}
}

func parseID(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, &medicine.Error{Op: "parse", Field: "id", Kind: medicine.KindFormat, Value: arg, Reason: "expected a number"}
	}
	return medicine.ValidateID(n)
}

func parseUnits(arg string) (float64, error) {
	units, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, &medicine.Error{Op: "parse", Field: "units", Kind: medicine.KindFormat, Value: arg, Reason: "expected a number"}
	}
	if units <= 0 {
		return 0, &medicine.Error{Op: "parse", Field: "units", Kind: medicine.KindRange, Value: units, Reason: "must be positive"}
	}
	return units, nil
}

func refusalReason(p medicine.Package, units float64) string {
	switch {
	case p.IsExpired():
		return "the package expired on " + medicine.FormatDate(p.ExpirationDate())
	case p.IsEmpty():
		return "the package is empty"
	default:
		return fmt.Sprintf("only %s %s left, %s %s requested", formatAmount(p.CurrentQuantity()), p.Variant().Unit(),
			formatAmount(units), unitNoun(p.Variant(), units))
	}
}

func unitNoun(v medicine.Variant, units float64) string {
	noun := "tablet"
	if v == medicine.VariantDrops {
		noun = "drop"
	}
	if units != 1 {
		noun += "s"
	}
	return noun
}
