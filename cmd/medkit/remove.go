// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "remove <id|title>",
		Aliases: []string{"rm"},
		Short:   "Remove medicine packages",
		Long: `Remove a package by ID or by title.

Removed IDs are never handed out again. When a title matches several
packages, --all removes every one of them; otherwise the command refuses.`,
		Example: `  medkit remove 3
  medkit remove "eye drops" --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				targets, err := selectTargets(s, args[0], all)
				if err != nil {
					return err
				}
				for _, target := range targets {
					if err := s.manager.Remove(target.ID()); err != nil {
						return err
					}
					s.dirty = true
					fmt.Fprintf(app.stdout, "%s Removed %s %s\n", SuccessStyle.Render("✓"),
						CmdStyle.Render(fmt.Sprintf("#%d", target.ID())), target)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove every package matching the title")
	return cmd
}
