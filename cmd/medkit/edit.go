// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/pkg/medicine"
)

func newEditCommand(app *App) *cobra.Command {
	var (
		fields packageFlags
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id|title>",
		Short: "Change fields of a medicine package",
		Long: `Change one or more fields of a stored package.

Only the flags you pass are changed. Changing --variant rebuilds the package
as the other dosage form under the same ID. When a title matches several
packages, --all edits every one of them; otherwise the command refuses.`,
		Example: `  medkit edit 3 --quantity 12
  medkit edit aspirin --expires 2027-01-31
  medkit edit 5 --variant drops --capacity 15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := fields.editRequest(cmd)
			if err != nil {
				return app.fail(err)
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				targets, err := selectTargets(s, args[0], all)
				if err != nil {
					return err
				}
				for _, target := range targets {
					p, err := s.manager.Edit(target.ID(), req)
					if err != nil {
						return err
					}
					s.dirty = true
					fmt.Fprintf(app.stdout, "%s Updated %s %s\n", SuccessStyle.Render("✓"),
						CmdStyle.Render(fmt.Sprintf("#%d", p.ID())), p)
				}
				return nil
			})
		},
	}
	fields.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "edit every package matching the title")
	return cmd
}

// selectTargets resolves ref to packages. More than one match without all
// fails, so a title never silently acts on several packages.
func selectTargets(s *session, ref string, all bool) ([]medicine.Package, error) {
	targets, err := s.manager.Select(ref)
	if err != nil {
		return nil, err
	}
	if len(targets) > 1 && !all {
		return nil, &medicine.Error{Op: "select", Field: "title", Kind: medicine.KindConflict, Value: ref,
			Reason: fmt.Sprintf("matches %d packages; pass an id or --all", len(targets))}
	}
	return targets, nil
}
